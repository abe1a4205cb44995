// -----------------------------------------------------------------------------
// Queue Worker
// -----------------------------------------------------------------------------
// Pops jobs from one or more queues, one goroutine per queue, and retries
// failures after retryDelay until the job's attempts are used up.
// -----------------------------------------------------------------------------

package queue

import (
	"context"
	"log"
	"sync"
	"time"
)

const defaultJobTimeout = 30 * time.Second

type Worker struct {
	queue      Queue
	logger     *log.Logger
	retryDelay time.Duration
	jobTimeout time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewWorker(queue Queue, logger *log.Logger) *Worker {
	return &Worker{
		queue:      queue,
		logger:     logger,
		retryDelay: 90 * time.Second,
		jobTimeout: defaultJobTimeout,
	}
}

// SetRetryDelay sets the wait before a failed job runs again.
func (w *Worker) SetRetryDelay(delay time.Duration) *Worker {
	w.retryDelay = delay
	return w
}

// SetJobTimeout bounds a single Handle call.
func (w *Worker) SetJobTimeout(timeout time.Duration) *Worker {
	w.jobTimeout = timeout
	return w
}

// Start processes queues in the background until Stop.
func (w *Worker) Start(queues ...string) {
	if len(queues) == 0 {
		queues = []string{"default"}
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel

	w.logger.Printf("🚀 Queue worker started (queues: %v, retry delay: %v)", queues, w.retryDelay)

	for _, name := range queues {
		w.wg.Add(1)
		go w.processQueue(ctx, name)
	}
}

// Stop waits for the jobs in progress to finish.
func (w *Worker) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	w.wg.Wait()
	w.logger.Println("✅ Queue worker stopped")
}

func (w *Worker) processQueue(ctx context.Context, name string) {
	defer w.wg.Done()

	for {
		if ctx.Err() != nil {
			return
		}

		job, err := w.queue.Pop(ctx, name)
		if err != nil {
			w.logger.Printf("❌ Job pop failed [%s]: %v", name, err)
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}
		if job == nil {
			continue
		}

		w.processJob(name, job)
	}
}

// processJob runs one job. It is not tied to the worker's context so a
// job in progress completes during Stop.
func (w *Worker) processJob(name string, job Job) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), w.jobTimeout)
	defer cancel()

	err := job.Handle(ctx)
	if err == nil {
		w.logger.Printf("✅ Job completed: %s %s (queue: %s, %v)", job.Type(), job.GetID(), name, time.Since(start))
		if delErr := w.queue.Delete(ctx, name, job); delErr != nil {
			w.logger.Printf("⚠️  Job delete failed: %v", delErr)
		}
		return
	}

	w.logger.Printf("❌ Job failed: %s %s (queue: %s, attempt %d/%d): %v",
		job.Type(), job.GetID(), name, job.GetAttempts()+1, job.GetMaxAttempts(), err)

	if job.GetAttempts()+1 >= job.GetMaxAttempts() {
		job.Failed(err)
		if relErr := w.queue.Release(ctx, name, job, 0); relErr != nil {
			w.logger.Printf("❌ Job release failed: %v", relErr)
		}
		return
	}

	if relErr := w.queue.Release(ctx, name, job, w.retryDelay); relErr != nil {
		w.logger.Printf("❌ Job release failed: %v", relErr)
	}
}

// Stats reports the size of each queue.
func (w *Worker) Stats(ctx context.Context, queues ...string) map[string]int64 {
	stats := make(map[string]int64, len(queues))
	for _, name := range queues {
		size, err := w.queue.Size(ctx, name)
		if err != nil {
			size = -1
		}
		stats[name] = size
	}
	return stats
}
