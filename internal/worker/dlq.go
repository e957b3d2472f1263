package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// DLQPrefix namespaces dead letter lists: dlq:{original_queue}.
const DLQPrefix = "dlq:"

// DeadJob is a notification that exhausted MaxAttempts. Client and reference
// are lifted out of the payload so an operator can tell which client missed
// which order or payment notice without decoding it.
type DeadJob struct {
	Queue     string          `json:"queue"`
	JobType   string          `json:"job_type"`
	ClientID  string          `json:"client_id,omitempty"`
	Reference string          `json:"reference,omitempty"`
	Payload   json.RawMessage `json:"payload"`
	Reason    string          `json:"reason"`
	Attempts  int             `json:"attempts"`
	FailedAt  time.Time       `json:"failed_at"`
}

func newDeadJob(queue string, job Job, reason string, now time.Time) DeadJob {
	d := DeadJob{
		Queue:    queue,
		JobType:  job.Type,
		Payload:  job.Payload,
		Reason:   reason,
		Attempts: job.Attempts,
		FailedAt: now.UTC(),
	}
	if job.Type == JobTypeEmail {
		var p EmailJobPayload
		if json.Unmarshal(job.Payload, &p) == nil {
			d.ClientID = p.ClientID
			d.Reference = p.Reference.String()
		}
	}
	return d
}

// deadLetter parks a failed job on its queue's dead letter list.
func deadLetter(ctx context.Context, rdb *redis.Client, queue string, job Job, reason string) {
	dead := newDeadJob(queue, job, reason, time.Now())
	data, err := json.Marshal(dead)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: marshal")
		return
	}
	key := DLQPrefix + queue
	if err := rdb.LPush(ctx, key, data).Err(); err != nil {
		log.Error().Err(err).Str("dlq_key", key).Str("ref", dead.Reference).Msg("dlq: push")
		return
	}
	log.Warn().
		Str("queue", queue).
		Str("client_id", dead.ClientID).
		Str("ref", dead.Reference).
		Str("reason", reason).
		Int("attempts", dead.Attempts).
		Msg("dlq: notification dead-lettered")
}

// DLQLength reports the number of dead jobs for a queue (0 without Redis).
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	if rdb == nil {
		return 0, nil
	}
	return rdb.LLen(ctx, DLQPrefix+queue).Result()
}
