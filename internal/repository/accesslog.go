package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/filegate/filegate/internal/model"
)

// AccessLogRepository is append-only. Nothing in the service mutates or
// deletes entries once written.
type AccessLogRepository interface {
	Append(entry *model.AccessLog) error
	CountSuccessSince(userID int64, since time.Time) (int64, error)
}

type accessLogRepository struct {
	db *sqlx.DB
}

func NewAccessLogRepository(db *sqlx.DB) AccessLogRepository {
	return &accessLogRepository{db: db}
}

func (r *accessLogRepository) Append(entry *model.AccessLog) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO access_logs (id, token, user_id, identity, success, error_kind, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(query,
		entry.ID,
		entry.Token,
		entry.UserID,
		entry.Identity,
		entry.Success,
		entry.ErrorKind,
		entry.CreatedAt,
	)
	return err
}

// CountSuccessSince counts verified successful accesses for an owner within
// the rolling window. Used by the rate limiter.
func (r *accessLogRepository) CountSuccessSince(userID int64, since time.Time) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM access_logs WHERE user_id = $1 AND success = TRUE AND created_at >= $2`

	err := r.db.Get(&count, query, userID, since)
	return count, err
}
