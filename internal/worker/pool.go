package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueEmail = "jobs:email"

	JobTypeEmail = "email"

	// MaxAttempts is how many times a job runs before it lands in the DLQ.
	MaxAttempts = 3

	popTimeout   = 5 * time.Second
	errorBackoff = time.Second
)

// ErrPermanent marks a job failure that retrying cannot fix.
var ErrPermanent = errors.New("permanent job failure")

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueEmail pushes an email job to Redis.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload interface{}) error {
	return d.enqueue(ctx, QueueEmail, JobTypeEmail, payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return pushJob(ctx, d.rdb, queue, Job{Type: jobType, Payload: data})
}

func pushJob(ctx context.Context, rdb *redis.Client, queue string, job Job) error {
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return rdb.LPush(ctx, queue, encoded).Err()
}

// Handler processes one job payload.
type Handler func(ctx context.Context, payload json.RawMessage) error

// Pool consumes the job queues with a fixed number of goroutines.
type Pool struct {
	rdb      *redis.Client
	size     int
	handlers map[string]Handler
	queues   map[string]string // job type -> queue
	wg       sync.WaitGroup
}

func NewPool(rdb *redis.Client, size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{
		rdb:      rdb,
		size:     size,
		handlers: make(map[string]Handler),
		queues:   make(map[string]string),
	}
}

// Handle registers h for jobs of jobType arriving on queue.
func (p *Pool) Handle(queue, jobType string, h Handler) {
	p.handlers[jobType] = h
	p.queues[jobType] = queue
}

// Start launches the workers. Each goroutine blocks on BRPOP, zero CPU when idle.
func (p *Pool) Start(ctx context.Context) {
	queues := p.queueNames()
	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go p.run(ctx, i, queues)
	}
	log.Info().Int("workers", p.size).Strs("queues", queues).Msg("worker pool started")
}

// Wait blocks until every worker has returned after ctx cancellation.
func (p *Pool) Wait() { p.wg.Wait() }

func (p *Pool) queueNames() []string {
	seen := map[string]bool{}
	var out []string
	for _, q := range p.queues {
		if !seen[q] {
			seen[q] = true
			out = append(out, q)
		}
	}
	return out
}

func (p *Pool) run(ctx context.Context, id int, queues []string) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			log.Info().Int("worker", id).Msg("worker shutting down")
			return
		default:
			// Blocking pop; waits up to popTimeout then loops to check ctx
			result, err := p.rdb.BRPop(ctx, popTimeout, queues...).Result()
			if d := popRetryDelay(ctx, err); d > 0 {
				log.Warn().Err(err).Int("worker", id).Dur("backoff", d).Msg("queue pop failed")
				select {
				case <-ctx.Done():
				case <-time.After(d):
				}
				continue
			}
			if err != nil || len(result) < 2 {
				continue
			}
			p.process(ctx, result[0], result[1])
		}
	}
}

// popRetryDelay is how long a worker pauses after a BRPOP error. An empty
// queue (redis.Nil) or a cancelled ctx loops straight back.
func popRetryDelay(ctx context.Context, err error) time.Duration {
	if err == nil || errors.Is(err, redis.Nil) || ctx.Err() != nil {
		return 0
	}
	return errorBackoff
}

func (p *Pool) process(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		SendToDLQ(ctx, p.rdb, queue, "unknown", json.RawMessage(raw), "unmarshal: "+err.Error(), 0)
		return
	}
	h, ok := p.handlers[job.Type]
	if !ok {
		SendToDLQ(ctx, p.rdb, queue, job.Type, job.Payload, "no handler registered", job.Attempts)
		return
	}

	job.Attempts++
	err := h(ctx, job.Payload)
	switch decide(err, job.Attempts) {
	case outcomeDone:
		log.Debug().Str("type", job.Type).Int("attempts", job.Attempts).Msg("job done")
	case outcomeRetry:
		log.Warn().Err(err).Str("type", job.Type).Int("attempts", job.Attempts).Msg("job failed, requeueing")
		if perr := pushJob(ctx, p.rdb, queue, job); perr != nil {
			log.Error().Err(perr).Str("queue", queue).Msg("requeue failed")
		}
	case outcomeDead:
		SendToDLQ(ctx, p.rdb, queue, job.Type, job.Payload, err.Error(), job.Attempts)
	}
}

type outcome int

const (
	outcomeDone outcome = iota
	outcomeRetry
	outcomeDead
)

func decide(err error, attempts int) outcome {
	switch {
	case err == nil:
		return outcomeDone
	case errors.Is(err, ErrPermanent), attempts >= MaxAttempts:
		return outcomeDead
	default:
		return outcomeRetry
	}
}
