package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/filegate/filegate/internal/repository"
)

// Notifier delivers an out-of-band message to a user. Implementations live
// outside this package; the sweeper only needs delivery.
type Notifier interface {
	Notify(ctx context.Context, userID int64, message string) error
}

const premiumExpiredMessage = "Your premium subscription has expired. " +
	"Links you create from now on will use the free-tier expiry window. " +
	"Contact the bot owner to renew."

// Sweeper owns the two periodic maintenance tasks: reclaiming expired links
// and demoting lapsed premium accounts. Each task is single-flight; a run is
// skipped if the previous run of the same task is still active. The two
// tasks run on independent schedules and may overlap each other.
type Sweeper struct {
	links    repository.LinkRepository
	users    repository.UserRepository
	notifier Notifier

	linkInterval    time.Duration
	premiumInterval time.Duration

	linkRunning    atomic.Bool
	premiumRunning atomic.Bool

	stop chan struct{}
	wg   sync.WaitGroup
}

func NewSweeper(links repository.LinkRepository, users repository.UserRepository, notifier Notifier, linkInterval, premiumInterval time.Duration) *Sweeper {
	return &Sweeper{
		links:           links,
		users:           users,
		notifier:        notifier,
		linkInterval:    linkInterval,
		premiumInterval: premiumInterval,
		stop:            make(chan struct{}),
	}
}

// Start launches both task loops. Call Stop to shut them down.
func (s *Sweeper) Start() {
	s.wg.Add(2)

	go s.loop("link reclamation", s.linkInterval, func(ctx context.Context) {
		_, err := s.ReclaimExpiredLinks(ctx)
		if err != nil {
			slog.Error("link reclamation failed", "error", err)
		}
	})

	go s.loop("premium demotion", s.premiumInterval, func(ctx context.Context) {
		_, err := s.DemoteExpiredPremium(ctx)
		if err != nil {
			slog.Error("premium demotion failed", "error", err)
		}
	})

	slog.Info("sweeper started", "link_interval", s.linkInterval, "premium_interval", s.premiumInterval)
}

// Stop signals both loops and waits for any in-flight run to finish.
func (s *Sweeper) Stop() {
	close(s.stop)
	s.wg.Wait()
	slog.Info("sweeper stopped")
}

func (s *Sweeper) loop(name string, interval time.Duration, run func(context.Context)) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			run(context.Background())
		case <-s.stop:
			slog.Debug("sweep loop exiting", "task", name)
			return
		}
	}
}

// ReclaimExpiredLinks deletes every link whose expiry has passed. Idempotent:
// a second run right after finds nothing to delete. Skips if a previous
// reclamation is still running.
func (s *Sweeper) ReclaimExpiredLinks(ctx context.Context) (int64, error) {
	if !s.linkRunning.CompareAndSwap(false, true) {
		slog.Warn("link reclamation already running, skipping")
		return 0, nil
	}
	defer s.linkRunning.Store(false)

	deleted, err := s.links.DeleteExpired()
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired links: %w", err)
	}

	if deleted > 0 {
		slog.Info("expired links reclaimed", "count", deleted)
	}

	return deleted, nil
}

// DemoteExpiredPremium transitions every lapsed premium account back to the
// free tier and notifies the user. One failed notification is logged and
// never aborts the batch. Skips if a previous demotion is still running.
func (s *Sweeper) DemoteExpiredPremium(ctx context.Context) (int, error) {
	if !s.premiumRunning.CompareAndSwap(false, true) {
		slog.Warn("premium demotion already running, skipping")
		return 0, nil
	}
	defer s.premiumRunning.Store(false)

	expired, err := s.users.ExpiredPremium()
	if err != nil {
		return 0, fmt.Errorf("failed to list expired premium users: %w", err)
	}

	demoted := 0
	for _, user := range expired {
		err = s.users.ClearPremium(user.UserID)
		if err != nil {
			slog.Error("failed to demote user", "error", err, "user_id", user.UserID)
			continue
		}
		demoted++

		if s.notifier != nil {
			err = s.notifier.Notify(ctx, user.UserID, premiumExpiredMessage)
			if err != nil {
				slog.Error("failed to notify demoted user", "error", err, "user_id", user.UserID)
			}
		}
	}

	if demoted > 0 {
		slog.Info("expired premium users demoted", "count", demoted)
	}

	return demoted, nil
}
