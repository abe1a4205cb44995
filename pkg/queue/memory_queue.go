package queue

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

const memoryQueueCapacity = 1024

// MemoryQueue keeps jobs in buffered channels, one per queue name.
type MemoryQueue struct {
	mu      sync.Mutex
	queues  map[string]chan Job
	delayed map[string]int64
	failed  []Job
	logger  *log.Logger
}

func NewMemoryQueue(logger *log.Logger) *MemoryQueue {
	return &MemoryQueue{
		queues:  make(map[string]chan Job),
		delayed: make(map[string]int64),
		logger:  logger,
	}
}

func (q *MemoryQueue) channel(queue string) chan Job {
	q.mu.Lock()
	defer q.mu.Unlock()

	ch, ok := q.queues[queue]
	if !ok {
		ch = make(chan Job, memoryQueueCapacity)
		q.queues[queue] = ch
	}
	return ch
}

func (q *MemoryQueue) Push(ctx context.Context, job Job, queue string) error {
	if job.GetID() == "" {
		job.SetID(uuid.NewString())
	}
	job.SetQueue(queue)

	select {
	case q.channel(queue) <- job:
		return nil
	case <-ctx.Done():
		q.logger.Printf("❌ Job push cancelled: %s (queue: %s)", job.GetID(), queue)
		return ctx.Err()
	}
}

func (q *MemoryQueue) Later(ctx context.Context, delay time.Duration, job Job, queue string) error {
	if delay <= 0 {
		return q.Push(ctx, job, queue)
	}

	q.addDelayed(queue, 1)
	time.AfterFunc(delay, func() {
		defer q.addDelayed(queue, -1)
		if err := q.Push(context.Background(), job, queue); err != nil {
			q.logger.Printf("❌ Delayed job lost: %s (queue: %s): %v", job.GetID(), queue, err)
		}
	})
	return nil
}

func (q *MemoryQueue) addDelayed(queue string, n int64) {
	q.mu.Lock()
	q.delayed[queue] += n
	q.mu.Unlock()
}

func (q *MemoryQueue) Pop(ctx context.Context, queue string) (Job, error) {
	timer := time.NewTimer(pollTimeout)
	defer timer.Stop()

	select {
	case job := <-q.channel(queue):
		return job, nil
	case <-timer.C:
		return nil, nil
	case <-ctx.Done():
		return nil, nil
	}
}

// Delete is a no-op: a popped job is already off the channel.
func (q *MemoryQueue) Delete(ctx context.Context, queue string, job Job) error {
	return nil
}

func (q *MemoryQueue) Release(ctx context.Context, queue string, job Job, delay time.Duration) error {
	job.SetAttempts(job.GetAttempts() + 1)

	if job.GetAttempts() >= job.GetMaxAttempts() {
		q.mu.Lock()
		q.failed = append(q.failed, job)
		q.mu.Unlock()
		q.logger.Printf("⚠️  Job failed (max attempts): %s (queue: %s, attempts: %d)", job.GetID(), queue, job.GetAttempts())
		return nil
	}

	return q.Later(ctx, delay, job, queue)
}

func (q *MemoryQueue) Size(ctx context.Context, queue string) (int64, error) {
	ch := q.channel(queue)

	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(ch)) + q.delayed[queue], nil
}

// Failed returns the jobs that used up their attempts.
func (q *MemoryQueue) Failed() []Job {
	q.mu.Lock()
	defer q.mu.Unlock()

	return append([]Job(nil), q.failed...)
}
