package models

import "time"

// Program represents a named health initiative clients can enroll in.
// The name is unique across all programs; created_at is server-assigned.
type Program struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
