package service

import (
	"context"

	"github.com/likbrus/likbrus.github.io/internal/model"

	"github.com/rs/zerolog/log"
)

// ChangeNotifier publishes committed mutations to the change feed and
// exposes the current feed version.
type ChangeNotifier interface {
	Publish(ctx context.Context, ev model.ChangeEvent) (int64, error)
	Version(ctx context.Context) (int64, error)
}

// EmailQueue enqueues outgoing mail for the worker pool.
type EmailQueue interface {
	EnqueueEmail(ctx context.Context, payload interface{}) error
}

// publish is best-effort: the mutation is already committed, so a feed
// failure is logged and reported as version 0.
func publish(ctx context.Context, n ChangeNotifier, ev model.ChangeEvent) int64 {
	if n == nil {
		return 0
	}
	seq, err := n.Publish(ctx, ev)
	if err != nil {
		log.Warn().Err(err).Str("table", ev.Table).Str("op", ev.Op).Msg("change feed publish failed")
		return 0
	}
	return seq
}

func currentVersion(ctx context.Context, n ChangeNotifier) int64 {
	if n == nil {
		return 0
	}
	v, err := n.Version(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("change feed version unavailable")
		return 0
	}
	return v
}
