package service

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/filegate/filegate/internal/model"
	"github.com/filegate/filegate/internal/repository"
)

// issueAttempts bounds token regeneration on the (astronomically unlikely)
// uniqueness conflict before issuance is reported as failed.
const issueAttempts = 5

var (
	ErrIssuanceFailed = errors.New("link issuance failed")
	ErrNotLinkOwner   = errors.New("not the link owner")
)

// IssuedLink is what the uploader gets back: the capability pair plus the
// formatted links that embed it.
type IssuedLink struct {
	Token        string     `json:"token"`
	Key          string     `json:"key"`
	TelegramLink string     `json:"telegram_link"`
	StreamLink   string     `json:"stream_link"`
	DownloadLink string     `json:"download_link"`
	IsPremium    bool       `json:"is_premium"`
	ExpiryAt     *time.Time `json:"expiry_at"`
}

type LinkService struct {
	links       repository.LinkRepository
	secret      string
	baseURL     string
	botUsername string
	freeExpiry  time.Duration
	adminUserID int64
}

func NewLinkService(links repository.LinkRepository, secret, baseURL, botUsername string, freeExpiry time.Duration, adminUserID int64) *LinkService {
	return &LinkService{
		links:       links,
		secret:      secret,
		baseURL:     baseURL,
		botUsername: botUsername,
		freeExpiry:  freeExpiry,
		adminUserID: adminUserID,
	}
}

// Issue creates a capability link for a stored file. Premium links never
// expire; free links expire after the configured window. The derived key is
// returned to the caller and never stored.
func (s *LinkService) Issue(fileID, fileUniqueID string, userID int64, premium bool) (*IssuedLink, error) {
	now := time.Now()

	var expiryAt *time.Time
	if !premium {
		expiry := now.Add(s.freeExpiry)
		expiryAt = &expiry
	}

	for attempt := 1; attempt <= issueAttempts; attempt++ {
		token, err := GenerateToken()
		if err != nil {
			return nil, fmt.Errorf("failed to generate token: %w", err)
		}

		link := &model.Link{
			Token:        token,
			FileID:       fileID,
			FileUniqueID: fileUniqueID,
			UserID:       userID,
			IsPremium:    premium,
			CreatedAt:    now,
			ExpiryAt:     expiryAt,
		}

		err = s.links.Create(link)
		if errors.Is(err, repository.ErrDuplicateToken) {
			slog.Warn("token collision, regenerating", "attempt", attempt)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to persist link: %w", err)
		}

		key := DeriveKey(token, fileID, s.secret)
		return &IssuedLink{
			Token:        token,
			Key:          key,
			TelegramLink: fmt.Sprintf("https://t.me/%s?start=%s", s.botUsername, token),
			StreamLink:   fmt.Sprintf("%s/stream/%s?key=%s", s.baseURL, token, key),
			DownloadLink: fmt.Sprintf("%s/download/%s?key=%s", s.baseURL, token, key),
			IsPremium:    premium,
			ExpiryAt:     expiryAt,
		}, nil
	}

	return nil, fmt.Errorf("exhausted %d attempts: %w", issueAttempts, ErrIssuanceFailed)
}

// UserLinks returns the caller's live links, newest first.
func (s *LinkService) UserLinks(userID int64, limit int) ([]*model.Link, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return s.links.ByUser(userID, limit)
}

// Delete removes a link. Only the owner or an administrative caller may
// delete; anyone else gets ErrNotLinkOwner and the link stays untouched.
// Both admin notions count: the token's admin claim and the configured
// admin user id.
func (s *LinkService) Delete(token string, userID int64, admin bool) error {
	link, err := s.links.ByToken(token)
	if err != nil {
		return err
	}

	if link.UserID != userID && !admin && userID != s.adminUserID {
		slog.Warn("unauthorized link delete attempt", "token_prefix", tokenPrefix(token), "user_id", userID)
		return ErrNotLinkOwner
	}

	deleted, err := s.links.Delete(token)
	if err != nil {
		return err
	}
	if !deleted {
		return repository.ErrLinkNotFound
	}

	slog.Info("link deleted", "token_prefix", tokenPrefix(token), "user_id", userID)
	return nil
}

// tokenPrefix keeps log lines auditable without reproducing a full
// capability identifier.
func tokenPrefix(token string) string {
	if len(token) <= 8 {
		return token
	}
	return token[:8]
}
