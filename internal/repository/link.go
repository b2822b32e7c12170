package repository

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/filegate/filegate/internal/model"
)

var (
	ErrLinkNotFound   = errors.New("link not found")
	ErrDuplicateToken = errors.New("token already exists")
)

// LinkRepository is the persistent store for capability links. A row whose
// expiry_at has passed is invisible to all readers; the sweep deletes rows
// with the same predicate, so read-time and sweep-time expiry agree.
type LinkRepository interface {
	Create(link *model.Link) error
	ByToken(token string) (*model.Link, error)
	IncrementAccessCount(token string) (int64, error)
	Delete(token string) (bool, error)
	ByUser(userID int64, limit int) ([]*model.Link, error)
	CountByUser(userID int64) (int64, error)
	Count() (int64, error)
	DeleteExpired() (int64, error)
}

type linkRepository struct {
	db *sqlx.DB
}

func NewLinkRepository(db *sqlx.DB) LinkRepository {
	return &linkRepository{db: db}
}

// Create inserts a new link, returning ErrDuplicateToken when the token is
// already taken. The PRIMARY KEY on token makes this insert-if-absent.
func (r *linkRepository) Create(link *model.Link) error {
	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO links (token, file_id, file_unique_id, user_id, is_premium, created_at, expiry_at, access_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0)
	`
	_, err := r.db.Exec(query,
		link.Token,
		link.FileID,
		link.FileUniqueID,
		link.UserID,
		link.IsPremium,
		link.CreatedAt,
		link.ExpiryAt,
	)
	if err != nil {
		// Works for both SQLite and PostgreSQL
		errStr := err.Error()
		if strings.Contains(errStr, "UNIQUE constraint failed") || strings.Contains(errStr, "duplicate key value") {
			return ErrDuplicateToken
		}
		return err
	}

	return nil
}

// ByToken returns the link for a token. Expired rows read as absent, so a
// caller cannot tell an expired token from one that never existed.
func (r *linkRepository) ByToken(token string) (*model.Link, error) {
	link := &model.Link{}
	query := `SELECT * FROM links WHERE token = $1 AND (expiry_at IS NULL OR expiry_at > $2)`

	err := r.db.Get(link, query, token, time.Now())
	if err == sql.ErrNoRows {
		return nil, ErrLinkNotFound
	}

	return link, err
}

// IncrementAccessCount bumps the counter in a single UPDATE and returns the
// new count. Concurrent callers never lose an update; there is no
// read-modify-write anywhere in this path.
func (r *linkRepository) IncrementAccessCount(token string) (int64, error) {
	var count int64
	now := time.Now()

	query := `
		UPDATE links
		SET access_count = access_count + 1, last_accessed = $1
		WHERE token = $2 AND (expiry_at IS NULL OR expiry_at > $1)
		RETURNING access_count
	`

	err := r.db.Get(&count, query, now, token)
	if err == sql.ErrNoRows {
		return 0, ErrLinkNotFound
	}
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *linkRepository) Delete(token string) (bool, error) {
	result, err := r.db.Exec(`DELETE FROM links WHERE token = $1`, token)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

func (r *linkRepository) ByUser(userID int64, limit int) ([]*model.Link, error) {
	var links []*model.Link
	query := `
		SELECT * FROM links
		WHERE user_id = $1 AND (expiry_at IS NULL OR expiry_at > $2)
		ORDER BY created_at DESC
		LIMIT $3
	`

	err := r.db.Select(&links, query, userID, time.Now(), limit)
	if err != nil {
		return nil, err
	}

	return links, nil
}

func (r *linkRepository) CountByUser(userID int64) (int64, error) {
	var count int64
	err := r.db.Get(&count, `SELECT COUNT(*) FROM links WHERE user_id = $1`, userID)
	return count, err
}

func (r *linkRepository) Count() (int64, error) {
	var count int64
	err := r.db.Get(&count, `SELECT COUNT(*) FROM links`)
	return count, err
}

// DeleteExpired removes every link whose expiry has passed. Running it again
// immediately is a no-op.
func (r *linkRepository) DeleteExpired() (int64, error) {
	result, err := r.db.Exec(`DELETE FROM links WHERE expiry_at IS NOT NULL AND expiry_at <= $1`, time.Now())
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}
