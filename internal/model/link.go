package model

import (
	"time"
)

// Link is the capability record behind a share link. The token maps
// immutably to exactly one file; the proof key is never stored, it is
// re-derived from (token, file_id, master secret) on every access.
type Link struct {
	Token        string     `db:"token"`
	FileID       string     `db:"file_id"`
	FileUniqueID string     `db:"file_unique_id"`
	UserID       int64      `db:"user_id"`
	IsPremium    bool       `db:"is_premium"` // tier at issuance time
	CreatedAt    time.Time  `db:"created_at"`
	ExpiryAt     *time.Time `db:"expiry_at"` // nil = never expires
	AccessCount  int64      `db:"access_count"`
	LastAccessed *time.Time `db:"last_accessed"`
}

func (l *Link) IsExpired() bool {
	return l.ExpiryAt != nil && time.Now().After(*l.ExpiryAt)
}
