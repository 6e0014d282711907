package notify

import (
	"github.com/likbrus/likbrus.github.io/internal/model"

	"github.com/asaskevich/EventBus"
	"github.com/rs/zerolog/log"
)

// TopicChange is the in-process topic every change event is published on.
const TopicChange = "change"

// Bus is the in-process side of the change feed. Long-lived consumers such
// as the Hub and the audit log subscribe once at startup.
type Bus struct {
	eb EventBus.Bus
}

func NewBus() *Bus {
	return &Bus{eb: EventBus.New()}
}

func (b *Bus) Dispatch(ev model.ChangeEvent) {
	b.eb.Publish(TopicChange, ev)
}

// Subscribe registers fn for every change event. fn runs synchronously on
// the dispatching goroutine and must not block.
func (b *Bus) Subscribe(fn func(model.ChangeEvent)) error {
	return b.eb.Subscribe(TopicChange, fn)
}

// WaitAsync blocks until asynchronous handlers have drained.
func (b *Bus) WaitAsync() { b.eb.WaitAsync() }

// AuditLog writes every change to the debug log.
func AuditLog(bus *Bus) error {
	return bus.eb.SubscribeAsync(TopicChange, func(ev model.ChangeEvent) {
		log.Debug().
			Str("table", ev.Table).
			Str("op", ev.Op).
			Str("row_id", ev.RowID).
			Int64("seq", ev.Seq).
			Msg("change")
	}, false)
}
