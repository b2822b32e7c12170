package service

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/filegate/filegate/internal/model"
	"github.com/filegate/filegate/internal/repository"
)

type UserService struct {
	users repository.UserRepository
	files repository.FileRepository
	links repository.LinkRepository
}

func NewUserService(users repository.UserRepository, files repository.FileRepository, links repository.LinkRepository) *UserService {
	return &UserService{
		users: users,
		files: files,
		links: links,
	}
}

func (s *UserService) GetOrCreate(userID int64, username, firstName string) (*model.User, error) {
	user, err := s.users.GetOrCreate(userID, username, firstName)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create user: %w", err)
	}

	err = s.users.TouchLastActive(userID)
	if err != nil {
		slog.Warn("failed to update last active", "error", err, "user_id", userID)
	}

	return user, nil
}

// IsPremium reports the user's current tier. Lapsed premium reads as free
// immediately; the actual true->false record transition is left to the
// background sweep.
func (s *UserService) IsPremium(userID int64) bool {
	user, err := s.users.ByID(userID)
	if err != nil {
		return false
	}
	return user.HasActivePremium()
}

// GrantPremium marks the user premium for the given number of days.
// days <= 0 grants indefinite premium.
func (s *UserService) GrantPremium(userID int64, days int) error {
	var expiry *time.Time
	if days > 0 {
		e := time.Now().AddDate(0, 0, days)
		expiry = &e
	}

	err := s.users.SetPremium(userID, expiry)
	if err != nil {
		return fmt.Errorf("failed to grant premium: %w", err)
	}

	slog.Info("premium granted", "user_id", userID, "days", days)
	return nil
}

func (s *UserService) RevokePremium(userID int64) error {
	err := s.users.ClearPremium(userID)
	if err != nil {
		return fmt.Errorf("failed to revoke premium: %w", err)
	}

	slog.Info("premium revoked", "user_id", userID)
	return nil
}

type UserStats struct {
	UserID        int64      `json:"user_id"`
	Username      *string    `json:"username"`
	IsPremium     bool       `json:"is_premium"`
	PremiumExpiry *time.Time `json:"premium_expiry"`
	JoinedAt      time.Time  `json:"joined_at"`
	TotalFiles    int64      `json:"total_files"`
	TotalLinks    int64      `json:"total_links"`
}

func (s *UserService) Stats(userID int64) (*UserStats, error) {
	user, err := s.users.ByID(userID)
	if err != nil {
		return nil, err
	}

	fileCount, err := s.files.CountByUploader(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count files: %w", err)
	}

	linkCount, err := s.links.CountByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count links: %w", err)
	}

	return &UserStats{
		UserID:        user.UserID,
		Username:      user.Username,
		IsPremium:     user.HasActivePremium(),
		PremiumExpiry: user.PremiumExpiry,
		JoinedAt:      user.JoinedAt,
		TotalFiles:    fileCount,
		TotalLinks:    linkCount,
	}, nil
}

type ServiceStats struct {
	TotalUsers   int64 `json:"total_users"`
	PremiumUsers int64 `json:"premium_users"`
	TotalFiles   int64 `json:"total_files"`
	TotalLinks   int64 `json:"total_links"`
	TodayUsers   int64 `json:"today_users"`
	TodayFiles   int64 `json:"today_files"`
}

func (s *UserService) ServiceStats() (*ServiceStats, error) {
	stats := &ServiceStats{}

	var err error
	if stats.TotalUsers, err = s.users.Count(); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if stats.PremiumUsers, err = s.users.CountPremium(); err != nil {
		return nil, fmt.Errorf("failed to count premium users: %w", err)
	}
	if stats.TotalFiles, err = s.files.Count(); err != nil {
		return nil, fmt.Errorf("failed to count files: %w", err)
	}
	if stats.TotalLinks, err = s.links.Count(); err != nil {
		return nil, fmt.Errorf("failed to count links: %w", err)
	}

	now := time.Now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if stats.TodayUsers, err = s.users.CountJoinedSince(todayStart); err != nil {
		return nil, fmt.Errorf("failed to count today's users: %w", err)
	}
	if stats.TodayFiles, err = s.files.CountCreatedSince(todayStart); err != nil {
		return nil, fmt.Errorf("failed to count today's files: %w", err)
	}

	return stats, nil
}
