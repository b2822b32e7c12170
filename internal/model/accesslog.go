package model

import (
	"time"
)

// AccessLog is an append-only audit record of one access attempt.
// Entries are never mutated or deleted by the service.
type AccessLog struct {
	ID        string    `db:"id"`
	Token     string    `db:"token"`
	UserID    int64     `db:"user_id"`  // link owner, 0 when the token resolved to nothing
	Identity  string    `db:"identity"` // requesting network origin
	Success   bool      `db:"success"`
	ErrorKind *string   `db:"error_kind"`
	CreatedAt time.Time `db:"created_at"`
}
