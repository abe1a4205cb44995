// -----------------------------------------------------------------------------
// Queue Package
// -----------------------------------------------------------------------------
// Background jobs (attendee mail) run outside the request that triggered
// them. Drivers:
//
//	MemoryQueue - in-process, lost on restart (memory / file store drivers)
//	RedisQueue  - lists + sorted sets in Redis, survives restarts
//
// Usage:
//
//	q := queue.NewMemoryQueue(logger)
//	q.Push(ctx, job, "mail")
//
//	worker := queue.NewWorker(q, logger)
//	worker.Start("mail")
//	defer worker.Stop()
// -----------------------------------------------------------------------------

package queue

import (
	"context"
	"time"
)

// pollTimeout bounds one blocking Pop.
const pollTimeout = time.Second

// Queue is implemented by every driver.
type Queue interface {
	// Push adds job to queue immediately.
	Push(ctx context.Context, job Job, queue string) error

	// Later adds job to queue once delay has passed.
	Later(ctx context.Context, delay time.Duration, job Job, queue string) error

	// Pop waits up to pollTimeout for a job. A nil job with a nil error means
	// the queue stayed empty.
	Pop(ctx context.Context, queue string) (Job, error)

	// Delete acknowledges a handled job.
	Delete(ctx context.Context, queue string, job Job) error

	// Release puts a failed job back with one more attempt recorded, or
	// moves it to the failed list once its attempts are used up.
	Release(ctx context.Context, queue string, job Job, delay time.Duration) error

	// Size counts waiting jobs, delayed ones included.
	Size(ctx context.Context, queue string) (int64, error)
}
