package service

import (
	"log/slog"
	"time"

	"github.com/filegate/filegate/internal/repository"
)

// RateLimiter counts a link owner's successful accesses within a rolling
// window, read back from the audit log. A small overcount under concurrent
// bursts is accepted; this is abuse mitigation, not a billing quota.
type RateLimiter struct {
	logs          repository.AccessLogRepository
	limit         int
	window        time.Duration
	failOpen      bool
	exemptPremium bool
}

func NewRateLimiter(logs repository.AccessLogRepository, limit int, window time.Duration, failOpen, exemptPremium bool) *RateLimiter {
	return &RateLimiter{
		logs:          logs,
		limit:         limit,
		window:        window,
		failOpen:      failOpen,
		exemptPremium: exemptPremium,
	}
}

// Allow reports whether another access for this owner is within the limit.
// When the counter itself fails the configured fail-open/fail-closed policy
// decides; the default is fail-open.
func (rl *RateLimiter) Allow(userID int64, premium bool) bool {
	if rl.limit <= 0 {
		return true
	}
	if rl.exemptPremium && premium {
		return true
	}

	count, err := rl.logs.CountSuccessSince(userID, time.Now().Add(-rl.window))
	if err != nil {
		slog.Error("rate limit counter failed", "error", err, "user_id", userID, "fail_open", rl.failOpen)
		return rl.failOpen
	}

	if count >= int64(rl.limit) {
		slog.Warn("rate limit exceeded", "user_id", userID, "count", count, "limit", rl.limit)
		return false
	}

	return true
}
