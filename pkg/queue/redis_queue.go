// -----------------------------------------------------------------------------
// Redis Queue Driver
// -----------------------------------------------------------------------------
// Redis data structures (all under prefix):
//
//	queues:{name}          - list, FIFO of ready jobs
//	queues:{name}:delayed  - sorted set scored by available-at unix time
//	queues:{name}:reserved - hash job id → payload of jobs being handled
//	queues:failed          - list of jobs that used up their attempts
// -----------------------------------------------------------------------------

package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type RedisQueue struct {
	client   *redis.Client
	registry *Registry
	logger   *log.Logger
	prefix   string
	now      func() time.Time
}

// NewRedisQueue creates a Redis queue. registry rebuilds popped jobs.
//
//	q := queue.NewRedisQueue(client, registry, logger, "doujindesk:")
func NewRedisQueue(client *redis.Client, registry *Registry, logger *log.Logger, prefix string) *RedisQueue {
	return &RedisQueue{
		client:   client,
		registry: registry,
		logger:   logger,
		prefix:   prefix,
		now:      time.Now,
	}
}

func (r *RedisQueue) queueKey(queue string) string {
	return r.prefix + "queues:" + queue
}

func (r *RedisQueue) delayedKey(queue string) string {
	return r.prefix + "queues:" + queue + ":delayed"
}

func (r *RedisQueue) reservedKey(queue string) string {
	return r.prefix + "queues:" + queue + ":reserved"
}

func (r *RedisQueue) failedKey() string {
	return r.prefix + "queues:failed"
}

func (r *RedisQueue) Push(ctx context.Context, job Job, queue string) error {
	return r.Later(ctx, 0, job, queue)
}

func (r *RedisQueue) Later(ctx context.Context, delay time.Duration, job Job, queue string) error {
	if job.GetID() == "" {
		job.SetID(uuid.NewString())
	}
	job.SetQueue(queue)

	data, err := r.encode(job, delay)
	if err != nil {
		r.logger.Printf("❌ Job encode failed: %v", err)
		return err
	}

	if delay > 0 {
		availableAt := r.now().Add(delay).Unix()
		err = r.client.ZAdd(ctx, r.delayedKey(queue), redis.Z{
			Score:  float64(availableAt),
			Member: data,
		}).Err()
		if err != nil {
			r.logger.Printf("❌ Delayed job push failed [%s]: %v", queue, err)
			return fmt.Errorf("delayed job push failed: %w", err)
		}

		r.logger.Printf("✅ Delayed job pushed: %s (queue: %s, delay: %v)", job.GetID(), queue, delay)
		return nil
	}

	if err := r.client.RPush(ctx, r.queueKey(queue), data).Err(); err != nil {
		r.logger.Printf("❌ Job push failed [%s]: %v", queue, err)
		return fmt.Errorf("job push failed: %w", err)
	}

	r.logger.Printf("✅ Job pushed: %s (queue: %s)", job.GetID(), queue)
	return nil
}

func (r *RedisQueue) Pop(ctx context.Context, queue string) (Job, error) {
	if err := r.migrateDelayedJobs(ctx, queue); err != nil {
		r.logger.Printf("⚠️  Delayed job migration failed [%s]: %v", queue, err)
	}

	result, err := r.client.BLPop(ctx, pollTimeout, r.queueKey(queue)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) || ctx.Err() != nil {
			return nil, nil
		}
		return nil, fmt.Errorf("job pop failed: %w", err)
	}

	// result[0] is the key, result[1] the payload
	data := result[1]

	var payload JobPayload
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		return nil, fmt.Errorf("job decode failed: %w", err)
	}

	job, err := r.registry.Create(payload.Type)
	if err != nil {
		return nil, err
	}
	job.SetID(payload.ID)
	job.SetQueue(payload.Queue)
	job.SetAttempts(payload.Attempts)
	if err := job.SetPayload(payload.Payload); err != nil {
		return nil, fmt.Errorf("job %s payload: %w", payload.ID, err)
	}

	if err := r.client.HSet(ctx, r.reservedKey(queue), payload.ID, data).Err(); err != nil {
		r.logger.Printf("⚠️  Job reserve failed: %s: %v", payload.ID, err)
	}

	r.logger.Printf("🔄 Job popped: %s (queue: %s, attempts: %d)", job.GetID(), queue, job.GetAttempts())
	return job, nil
}

func (r *RedisQueue) Delete(ctx context.Context, queue string, job Job) error {
	if err := r.client.HDel(ctx, r.reservedKey(queue), job.GetID()).Err(); err != nil {
		return fmt.Errorf("job delete failed: %w", err)
	}
	return nil
}

func (r *RedisQueue) Release(ctx context.Context, queue string, job Job, delay time.Duration) error {
	if err := r.client.HDel(ctx, r.reservedKey(queue), job.GetID()).Err(); err != nil {
		r.logger.Printf("⚠️  Job unreserve failed: %s: %v", job.GetID(), err)
	}

	job.SetAttempts(job.GetAttempts() + 1)

	if job.GetAttempts() >= job.GetMaxAttempts() {
		data, err := r.encode(job, 0)
		if err != nil {
			return err
		}
		if err := r.client.RPush(ctx, r.failedKey(), data).Err(); err != nil {
			return fmt.Errorf("failed job push failed: %w", err)
		}
		r.logger.Printf("⚠️  Job failed (max attempts): %s (queue: %s, attempts: %d)", job.GetID(), queue, job.GetAttempts())
		return nil
	}

	return r.Later(ctx, delay, job, queue)
}

func (r *RedisQueue) Size(ctx context.Context, queue string) (int64, error) {
	ready, err := r.client.LLen(ctx, r.queueKey(queue)).Result()
	if err != nil {
		return 0, err
	}

	delayed, err := r.client.ZCard(ctx, r.delayedKey(queue)).Result()
	if err != nil {
		return 0, err
	}

	return ready + delayed, nil
}

// migrateDelayedJobs moves due delayed jobs onto the ready list.
func (r *RedisQueue) migrateDelayedJobs(ctx context.Context, queue string) error {
	jobs, err := r.client.ZRangeByScore(ctx, r.delayedKey(queue), &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(r.now().Unix(), 10),
	}).Result()
	if err != nil || len(jobs) == 0 {
		return err
	}

	for _, data := range jobs {
		// only the caller that removes the entry moves it
		removed, err := r.client.ZRem(ctx, r.delayedKey(queue), data).Result()
		if err != nil {
			return err
		}
		if removed == 0 {
			continue
		}
		if err := r.client.RPush(ctx, r.queueKey(queue), data).Err(); err != nil {
			return err
		}
	}

	r.logger.Printf("🔄 Migrated %d delayed jobs (queue: %s)", len(jobs), queue)
	return nil
}

func (r *RedisQueue) encode(job Job, delay time.Duration) (string, error) {
	jobData, err := job.GetPayload()
	if err != nil {
		return "", fmt.Errorf("job payload: %w", err)
	}

	now := r.now()
	payload := JobPayload{
		ID:          job.GetID(),
		Type:        job.Type(),
		Queue:       job.GetQueue(),
		Payload:     jobData,
		Attempts:    job.GetAttempts(),
		MaxAttempts: job.GetMaxAttempts(),
		CreatedAt:   now.UTC(),
		AvailableAt: now.Add(delay).UTC(),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("job encode failed: %w", err)
	}
	return string(data), nil
}
