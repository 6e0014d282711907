package notify

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/likbrus/likbrus.github.io/internal/model"

	"github.com/redis/go-redis/v9"
)

const (
	// SeqKey holds the monotonically increasing feed version.
	SeqKey = "changes:seq"
	// ChannelPrefix is followed by the table name.
	ChannelPrefix = "changes:"
)

// Publisher stamps change events with the next feed version and publishes
// them on Redis pub/sub so every server instance sees them.
type Publisher struct {
	rdb *redis.Client
}

func NewPublisher(rdb *redis.Client) *Publisher {
	return &Publisher{rdb: rdb}
}

func (p *Publisher) Publish(ctx context.Context, ev model.ChangeEvent) (int64, error) {
	seq, err := p.rdb.Incr(ctx, SeqKey).Result()
	if err != nil {
		return 0, err
	}
	ev.Seq = seq
	data, err := json.Marshal(ev)
	if err != nil {
		return 0, err
	}
	if err := p.rdb.Publish(ctx, ChannelPrefix+ev.Table, data).Err(); err != nil {
		return 0, err
	}
	return seq, nil
}

// Version returns the last assigned sequence, 0 before the first change.
func (p *Publisher) Version(ctx context.Context) (int64, error) {
	v, err := p.rdb.Get(ctx, SeqKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}
