package infra

import (
	"errors"
	"sync"
	"time"
)

// BreakerState is the position of a Breaker.
type BreakerState int

const (
	BreakerClosed   BreakerState = iota // calls pass through
	BreakerOpen                         // calls fail fast
	BreakerHalfOpen                     // probe calls decide
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half-open"
	}
	return "unknown"
}

// ErrBreakerOpen is returned without calling through while the breaker is open.
var ErrBreakerOpen = errors.New("circuit breaker is open")

// BreakerConfig tunes a Breaker. Zero values fall back to 5 failures,
// 2 probe successes and a 60s cool-down.
type BreakerConfig struct {
	MaxFailures  int
	ProbeSuccess int
	CoolDown     time.Duration
}

// Breaker guards calls to a flaky dependency (the SMTP relay) so a dead
// relay does not tie up every worker.
type Breaker struct {
	mu       sync.Mutex
	cfg      BreakerConfig
	state    BreakerState
	failures int
	probes   int
	openedAt time.Time
	now      func() time.Time
}

func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 5
	}
	if cfg.ProbeSuccess <= 0 {
		cfg.ProbeSuccess = 2
	}
	if cfg.CoolDown <= 0 {
		cfg.CoolDown = 60 * time.Second
	}
	return &Breaker{cfg: cfg, now: time.Now}
}

func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current()
}

// current must be called with mu held.
func (b *Breaker) current() BreakerState {
	if b.state == BreakerOpen && b.now().Sub(b.openedAt) >= b.cfg.CoolDown {
		b.state = BreakerHalfOpen
		b.probes = 0
	}
	return b.state
}

// Do runs fn unless the breaker is open and records the outcome.
func (b *Breaker) Do(fn func() error) error {
	b.mu.Lock()
	if b.current() == BreakerOpen {
		b.mu.Unlock()
		return ErrBreakerOpen
	}
	b.mu.Unlock()

	err := fn()

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.trip()
		return err
	}
	b.settle()
	return nil
}

func (b *Breaker) trip() {
	b.failures++
	if b.state == BreakerHalfOpen || b.failures >= b.cfg.MaxFailures {
		b.state = BreakerOpen
		b.openedAt = b.now()
		b.failures = 0
		b.probes = 0
	}
}

func (b *Breaker) settle() {
	if b.state != BreakerHalfOpen {
		b.failures = 0
		return
	}
	b.probes++
	if b.probes >= b.cfg.ProbeSuccess {
		b.state = BreakerClosed
		b.failures = 0
	}
}
