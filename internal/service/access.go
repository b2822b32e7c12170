package service

import (
	"errors"
	"log/slog"

	"github.com/filegate/filegate/internal/model"
	"github.com/filegate/filegate/internal/repository"
)

// ErrorKind names the failure categories surfaced at the web boundary.
type ErrorKind string

const (
	ErrorInvalidToken ErrorKind = "invalid_token"
	ErrorInvalidKey   ErrorKind = "invalid_key"
	ErrorExpired      ErrorKind = "expired"
	ErrorFileNotFound ErrorKind = "file_not_found"
	ErrorAccessDenied ErrorKind = "access_denied"
	ErrorServerError  ErrorKind = "server_error"
)

// AccessResult is the outcome of one verification. On success Link and File
// are set; otherwise Kind carries the failure category.
type AccessResult struct {
	OK   bool
	Kind ErrorKind
	Link *model.Link
	File *model.File
}

// AccessGateway orchestrates request-time verification: token lookup, key
// check, rate check, file lookup, counter increment. Every branch is
// recorded in the audit log.
type AccessGateway struct {
	links   repository.LinkRepository
	files   repository.FileRepository
	logs    repository.AccessLogRepository
	limiter *RateLimiter
	secret  string
}

func NewAccessGateway(links repository.LinkRepository, files repository.FileRepository, logs repository.AccessLogRepository, limiter *RateLimiter, secret string) *AccessGateway {
	return &AccessGateway{
		links:   links,
		files:   files,
		logs:    logs,
		limiter: limiter,
		secret:  secret,
	}
}

// Verify checks a presented token/key pair and admits or rejects the
// request. Expired tokens and tokens that never existed both come back as
// invalid_token, so a caller cannot probe whether a token was ever issued.
func (g *AccessGateway) Verify(token, key, identity string) *AccessResult {
	link, err := g.links.ByToken(token)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			g.logAttempt(token, 0, identity, false, ErrorInvalidToken)
			return &AccessResult{Kind: ErrorInvalidToken}
		}
		slog.Error("link lookup failed", "error", err, "token_prefix", tokenPrefix(token))
		g.logAttempt(token, 0, identity, false, ErrorServerError)
		return &AccessResult{Kind: ErrorServerError}
	}

	if !VerifyKey(token, link.FileID, g.secret, key) {
		slog.Warn("invalid key presented", "token_prefix", tokenPrefix(token), "identity", identity)
		g.logAttempt(token, link.UserID, identity, false, ErrorInvalidKey)
		return &AccessResult{Kind: ErrorInvalidKey}
	}

	if !g.limiter.Allow(link.UserID, link.IsPremium) {
		g.logAttempt(token, link.UserID, identity, false, ErrorAccessDenied)
		return &AccessResult{Kind: ErrorAccessDenied}
	}

	file, err := g.files.ByID(link.FileID)
	if err != nil {
		if errors.Is(err, repository.ErrFileNotFound) {
			// Valid capability but the underlying object is gone: a
			// data-integrity inconsistency worth its own category.
			slog.Error("link points at missing file", "token_prefix", tokenPrefix(token), "file_id", link.FileID)
			g.logAttempt(token, link.UserID, identity, false, ErrorFileNotFound)
			return &AccessResult{Kind: ErrorFileNotFound}
		}
		slog.Error("file lookup failed", "error", err, "file_id", link.FileID)
		g.logAttempt(token, link.UserID, identity, false, ErrorServerError)
		return &AccessResult{Kind: ErrorServerError}
	}

	_, err = g.links.IncrementAccessCount(token)
	if err != nil {
		// The link raced away (expired or deleted) between lookup and
		// increment; report it exactly like a token that never existed.
		if errors.Is(err, repository.ErrLinkNotFound) {
			g.logAttempt(token, link.UserID, identity, false, ErrorInvalidToken)
			return &AccessResult{Kind: ErrorInvalidToken}
		}
		slog.Error("access count increment failed", "error", err, "token_prefix", tokenPrefix(token))
		g.logAttempt(token, link.UserID, identity, false, ErrorServerError)
		return &AccessResult{Kind: ErrorServerError}
	}

	g.logAttempt(token, link.UserID, identity, true, "")
	return &AccessResult{OK: true, Link: link, File: file}
}

// logAttempt appends to the audit log. Audit failures are logged locally and
// never alter the access decision already made.
func (g *AccessGateway) logAttempt(token string, userID int64, identity string, success bool, kind ErrorKind) {
	entry := &model.AccessLog{
		Token:    token,
		UserID:   userID,
		Identity: identity,
		Success:  success,
	}
	if kind != "" {
		k := string(kind)
		entry.ErrorKind = &k
	}

	err := g.logs.Append(entry)
	if err != nil {
		slog.Error("audit log write failed", "error", err, "token_prefix", tokenPrefix(token))
	}
}
