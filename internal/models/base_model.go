// internal/models/base_model.go
//
// Shared fields for every entity kept by the DoujinDesk stores.
//
// Usage:
//
//	type Circle struct {
//	    models.BaseModel
//	    Name string
//	}
//
// The embedding entity gets ID, CreatedAt and UpdatedAt.

package models

import "time"

// BaseModel carries the identity and timestamps of a record.
//
// Fields:
//   - ID:        string → unique identifier (time+random or uuid derived)
//   - CreatedAt: time   → creation time
//   - UpdatedAt: time   → last mutation time
type BaseModel struct {
	ID        string    `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Initialize sets CreatedAt and UpdatedAt to now.
// Called before a record is first stored.
func (m *BaseModel) Initialize(now time.Time) {
	m.CreatedAt = now
	m.UpdatedAt = now
}

// Touch refreshes UpdatedAt.
func (m *BaseModel) Touch(now time.Time) {
	m.UpdatedAt = now
}
