package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueReport = "jobs:report"
	QueueAlert  = "jobs:alert"

	maxAttempts = 3
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// Handler processes one job payload. A returned error requeues the job until
// maxAttempts, then moves it to the DLQ.
type Handler func(ctx context.Context, payload json.RawMessage) error

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueReport pushes a traceability report export job to Redis.
func (d *Dispatcher) EnqueueReport(ctx context.Context, payload interface{}) error {
	return d.enqueue(ctx, QueueReport, "report", payload)
}

// EnqueueAlert pushes a certificate-expiry alert job to Redis.
func (d *Dispatcher) EnqueueAlert(ctx context.Context, payload interface{}) error {
	return d.enqueue(ctx, QueueAlert, "alert", payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// Handlers maps queue name to the processor consuming it.
type Handlers map[string]Handler

// StartWorkerPool launches numWorkers goroutines consuming all queues.
// Each goroutine blocks on BRPOP — zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, numWorkers int, handlers Handlers) {
	queues := make([]string, 0, len(handlers))
	for q := range handlers {
		queues = append(queues, q)
	}
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, i, queues, handlers)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, id int, queues []string, handlers Handlers) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, result[0], result[1], handlers)
		}
	}
}

func processJob(ctx context.Context, rdb *redis.Client, queue, raw string, handlers Handlers) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}

	handler, ok := handlers[queue]
	if !ok {
		log.Error().Str("queue", queue).Str("type", job.Type).Msg("no handler for queue")
		return
	}

	if err := handler(ctx, job.Payload); err != nil {
		job.Attempts++
		if job.Attempts >= maxAttempts {
			SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, err.Error(), job.Attempts)
			return
		}
		log.Warn().
			Str("queue", queue).
			Str("type", job.Type).
			Int("attempts", job.Attempts).
			Err(err).
			Msg("job failed, requeueing")
		if encoded, merr := json.Marshal(job); merr == nil {
			_ = rdb.LPush(ctx, queue, encoded).Err()
		}
		return
	}

	log.Info().Str("type", job.Type).Str("queue", queue).Msg("job processed")
}
