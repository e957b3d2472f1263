package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueEmail = "jobs:email"

	// MaxAttempts is how many times a job runs before it is moved to the DLQ.
	MaxAttempts = 3
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// Handler processes one job payload. A non-nil error schedules a retry.
type Handler interface {
	Process(ctx context.Context, payload json.RawMessage) error
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP. A nil Dispatcher, or one without a
// Redis client, silently drops jobs: notifications are best effort.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueEmail pushes an email job to Redis.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload EmailJobPayload) error {
	return d.enqueue(ctx, QueueEmail, Job{Type: JobTypeEmail}, payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue string, job Job, payload interface{}) error {
	if d == nil || d.rdb == nil {
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job.Payload = data
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// Pool consumes job queues with a fixed number of goroutines.
type Pool struct {
	rdb      *redis.Client
	size     int
	handlers map[string]Handler
}

func NewPool(rdb *redis.Client, size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{rdb: rdb, size: size, handlers: make(map[string]Handler)}
}

// Register binds a job type to its handler. Call before Start.
func (p *Pool) Register(jobType string, h Handler) {
	p.handlers[jobType] = h
}

// Start launches the workers. Each goroutine blocks on BRPOP, zero CPU when idle.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.size; i++ {
		go p.run(ctx, i)
	}
	log.Info().Msgf("worker pool started with %d workers", p.size)
}

func (p *Pool) run(ctx context.Context, id int) {
	queues := []string{QueueEmail}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop: waits up to 5s then loops to check ctx
			result, err := p.rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue
			}
			if len(result) < 2 {
				continue
			}
			job, res := p.processJob(ctx, result[1])
			p.settle(ctx, result[0], job, res)
		}
	}
}

type outcome int

const (
	outcomeDone outcome = iota
	outcomeRetry
	outcomeDead
)

type jobResult struct {
	outcome outcome
	reason  string
}

// processJob runs the job's handler and decides what happens next. It never
// touches Redis so the retry policy can be exercised without a server.
func (p *Pool) processJob(ctx context.Context, raw string) (Job, jobResult) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		return job, jobResult{outcome: outcomeDead, reason: "invalid envelope: " + err.Error()}
	}
	h, ok := p.handlers[job.Type]
	if !ok {
		return job, jobResult{outcome: outcomeDead, reason: "no handler for " + job.Type}
	}

	job.Attempts++
	if err := h.Process(ctx, job.Payload); err != nil {
		if job.Attempts >= MaxAttempts {
			return job, jobResult{outcome: outcomeDead, reason: err.Error()}
		}
		return job, jobResult{outcome: outcomeRetry, reason: err.Error()}
	}
	return job, jobResult{outcome: outcomeDone}
}

func (p *Pool) settle(ctx context.Context, queue string, job Job, res jobResult) {
	switch res.outcome {
	case outcomeDone:
		log.Info().Str("type", job.Type).Str("queue", queue).Msg("job processed")
	case outcomeRetry:
		log.Warn().Str("type", job.Type).Int("attempt", job.Attempts).Str("reason", res.reason).Msg("job failed, retrying")
		encoded, err := json.Marshal(job)
		if err == nil {
			err = p.rdb.LPush(ctx, queue, encoded).Err()
		}
		if err != nil {
			deadLetter(ctx, p.rdb, queue, job, "requeue failed: "+err.Error())
		}
	case outcomeDead:
		deadLetter(ctx, p.rdb, queue, job, res.reason)
	}
}
