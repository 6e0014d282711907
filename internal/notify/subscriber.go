package notify

import (
	"context"
	"encoding/json"

	"github.com/likbrus/likbrus.github.io/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Subscriber forwards every change published on Redis into the local bus.
type Subscriber struct {
	rdb *redis.Client
	bus *Bus
}

func NewSubscriber(rdb *redis.Client, bus *Bus) *Subscriber {
	return &Subscriber{rdb: rdb, bus: bus}
}

// Start subscribes and pumps messages until ctx is cancelled.
func (s *Subscriber) Start(ctx context.Context) error {
	ps := s.rdb.PSubscribe(ctx, ChannelPrefix+"*")
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return err
	}
	go s.run(ctx, ps)
	log.Info().Msg("change feed subscriber started")
	return nil
}

func (s *Subscriber) run(ctx context.Context, ps *redis.PubSub) {
	defer ps.Close()
	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("change feed subscriber shutting down")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var ev model.ChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Error().Err(err).Str("channel", msg.Channel).Msg("bad change event")
				continue
			}
			s.bus.Dispatch(ev)
		}
	}
}
