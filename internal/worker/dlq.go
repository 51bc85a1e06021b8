package worker

// Jobs that exhaust their retries land in a dead-letter list, one per source
// queue (dlq:{queue}), where an operator can inspect or requeue them.

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DLQPrefix = "dlq:"

// DLQEntry wraps a failed job with enough context to diagnose it later.
type DLQEntry struct {
	OriginalQueue string          `json:"original_queue"`
	JobType       string          `json:"job_type"`
	Payload       json.RawMessage `json:"payload"`
	Reason        string          `json:"reason"`
	FailedAt      time.Time       `json:"failed_at"`
	Attempts      int             `json:"attempts"`
}

// SendToDLQ parks a failed job. Errors here are logged and swallowed: losing
// a report or alert job must never take the worker down.
func SendToDLQ(ctx context.Context, rdb *redis.Client, queue string, jobType string, payload json.RawMessage, reason string, attempts int) {
	entry := DLQEntry{
		OriginalQueue: queue,
		JobType:       jobType,
		Payload:       payload,
		Reason:        reason,
		FailedAt:      time.Now().UTC(),
		Attempts:      attempts,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: marshal entry")
		return
	}

	if err := rdb.LPush(ctx, DLQPrefix+queue, data).Err(); err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: push")
		return
	}

	log.Warn().
		Str("queue", queue).
		Str("job_type", jobType).
		Str("reason", reason).
		Int("attempts", attempts).
		Msg("dlq: job moved to dead letter queue")
}

// RequeueFromDLQ pops the oldest dead-lettered job and puts it back on its
// source queue with a fresh attempt counter. Returns redis.Nil when empty.
func RequeueFromDLQ(ctx context.Context, rdb *redis.Client, queue string) error {
	data, err := rdb.RPop(ctx, DLQPrefix+queue).Result()
	if err != nil {
		return err
	}

	var entry DLQEntry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		return err
	}

	job := Job{Type: entry.JobType, Payload: entry.Payload}
	raw, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return rdb.LPush(ctx, entry.OriginalQueue, raw).Err()
}

// DLQLength reports the backlog of a dead-letter list for monitoring.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, DLQPrefix+queue).Result()
}
