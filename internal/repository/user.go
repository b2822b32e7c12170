package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/filegate/filegate/internal/model"
)

var (
	ErrUserNotFound = errors.New("user not found")
)

type UserRepository interface {
	GetOrCreate(userID int64, username, firstName string) (*model.User, error)
	ByID(userID int64) (*model.User, error)
	SetPremium(userID int64, expiry *time.Time) error
	ClearPremium(userID int64) error
	ExpiredPremium() ([]*model.User, error)
	TouchLastActive(userID int64) error
	Count() (int64, error)
	CountPremium() (int64, error)
	CountJoinedSince(since time.Time) (int64, error)
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

// GetOrCreate returns the existing user or creates a fresh free-tier record.
// The insert is conflict-tolerant so two concurrent first contacts for the
// same user both succeed; the loser of the race reads the winner's row.
func (r *userRepository) GetOrCreate(userID int64, username, firstName string) (*model.User, error) {
	var uname, fname *string
	if username != "" {
		uname = &username
	}
	if firstName != "" {
		fname = &firstName
	}

	now := time.Now()
	query := `
		INSERT INTO users (user_id, username, first_name, is_premium, premium_expiry, joined_at, last_active_at)
		VALUES ($1, $2, $3, FALSE, NULL, $4, $4)
		ON CONFLICT (user_id) DO NOTHING
	`
	_, err := r.db.Exec(query, userID, uname, fname, now)
	if err != nil {
		return nil, err
	}

	return r.ByID(userID)
}

func (r *userRepository) ByID(userID int64) (*model.User, error) {
	user := &model.User{}
	query := `SELECT * FROM users WHERE user_id = $1`

	err := r.db.Get(user, query, userID)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}

	return user, err
}

// SetPremium marks the user premium until expiry (nil = indefinite),
// creating the record if the user has never been seen.
func (r *userRepository) SetPremium(userID int64, expiry *time.Time) error {
	now := time.Now()
	query := `
		INSERT INTO users (user_id, is_premium, premium_expiry, joined_at, last_active_at)
		VALUES ($1, TRUE, $2, $3, $3)
		ON CONFLICT (user_id) DO UPDATE SET is_premium = TRUE, premium_expiry = $2
	`
	_, err := r.db.Exec(query, userID, expiry, now)
	return err
}

func (r *userRepository) ClearPremium(userID int64) error {
	query := `UPDATE users SET is_premium = FALSE, premium_expiry = NULL WHERE user_id = $1`
	_, err := r.db.Exec(query, userID)
	return err
}

// ExpiredPremium lists premium users whose expiry has passed. Indefinite
// premium (NULL expiry) is never returned.
func (r *userRepository) ExpiredPremium() ([]*model.User, error) {
	var users []*model.User
	query := `SELECT * FROM users WHERE is_premium = TRUE AND premium_expiry IS NOT NULL AND premium_expiry <= $1`

	err := r.db.Select(&users, query, time.Now())
	if err != nil {
		return nil, err
	}

	return users, nil
}

func (r *userRepository) TouchLastActive(userID int64) error {
	_, err := r.db.Exec(`UPDATE users SET last_active_at = $1 WHERE user_id = $2`, time.Now(), userID)
	return err
}

func (r *userRepository) Count() (int64, error) {
	var count int64
	err := r.db.Get(&count, `SELECT COUNT(*) FROM users`)
	return count, err
}

func (r *userRepository) CountPremium() (int64, error) {
	var count int64
	err := r.db.Get(&count, `SELECT COUNT(*) FROM users WHERE is_premium = TRUE`)
	return count, err
}

func (r *userRepository) CountJoinedSince(since time.Time) (int64, error) {
	var count int64
	err := r.db.Get(&count, `SELECT COUNT(*) FROM users WHERE joined_at >= $1`, since)
	return count, err
}
