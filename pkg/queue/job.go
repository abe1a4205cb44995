package queue

import (
	"context"
	"encoding/json"
	"time"
)

// DefaultMaxAttempts applies when a job does not set MaxAttempts.
const DefaultMaxAttempts = 3

// Job is a unit of background work.
type Job interface {
	// Type names the job in the Registry.
	Type() string

	// Handle does the work. An error schedules a retry.
	Handle(ctx context.Context) error

	// Failed runs once the last attempt failed.
	Failed(err error)

	// GetPayload / SetPayload serialize the job's own fields.
	GetPayload() ([]byte, error)
	SetPayload(data []byte) error

	GetID() string
	SetID(id string)
	GetAttempts() int
	SetAttempts(attempts int)
	GetQueue() string
	SetQueue(queue string)
	GetMaxAttempts() int
}

// BaseJob implements the metadata half of Job. Embed it:
//
//	type SendMailJob struct {
//	    queue.BaseJob
//	    To string `json:"to"`
//	}
type BaseJob struct {
	ID          string `json:"-"`
	Queue       string `json:"-"`
	Attempts    int    `json:"-"`
	MaxAttempts int    `json:"-"`
}

func (b *BaseJob) GetID() string            { return b.ID }
func (b *BaseJob) SetID(id string)          { b.ID = id }
func (b *BaseJob) GetAttempts() int         { return b.Attempts }
func (b *BaseJob) SetAttempts(attempts int) { b.Attempts = attempts }
func (b *BaseJob) GetQueue() string         { return b.Queue }
func (b *BaseJob) SetQueue(queue string)    { b.Queue = queue }

func (b *BaseJob) GetMaxAttempts() int {
	if b.MaxAttempts <= 0 {
		return DefaultMaxAttempts
	}
	return b.MaxAttempts
}

// JobPayload is the stored envelope of a job.
type JobPayload struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Queue       string          `json:"queue"`
	Payload     json.RawMessage `json:"payload"`
	Attempts    int             `json:"attempts"`
	MaxAttempts int             `json:"max_attempts"`
	CreatedAt   time.Time       `json:"created_at"`
	AvailableAt time.Time       `json:"available_at"`
}
