package model

import (
	"time"
)

// User is a bot account identified by its numeric messenger user id.
type User struct {
	UserID        int64      `db:"user_id"`
	Username      *string    `db:"username"`
	FirstName     *string    `db:"first_name"`
	IsPremium     bool       `db:"is_premium"`
	PremiumExpiry *time.Time `db:"premium_expiry"` // nil = indefinite premium
	JoinedAt      time.Time  `db:"joined_at"`
	LastActiveAt  time.Time  `db:"last_active_at"`
}

// HasActivePremium reports whether premium is currently in effect. A user
// whose premium_expiry has passed is treated as free here even before the
// background sweep demotes the record.
func (u *User) HasActivePremium() bool {
	if !u.IsPremium {
		return false
	}
	return u.PremiumExpiry == nil || time.Now().Before(*u.PremiumExpiry)
}
