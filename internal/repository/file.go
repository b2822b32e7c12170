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
	ErrFileNotFound  = errors.New("file not found")
	ErrDuplicateFile = errors.New("file already exists")
)

type FileRepository interface {
	Create(file *model.File) error
	ByID(fileID string) (*model.File, error)
	ByUniqueID(fileUniqueID string) (*model.File, error)
	Delete(fileID string) error
	CountByUploader(userID int64) (int64, error)
	Count() (int64, error)
	CountCreatedSince(since time.Time) (int64, error)
}

type fileRepository struct {
	db *sqlx.DB
}

func NewFileRepository(db *sqlx.DB) FileRepository {
	return &fileRepository{db: db}
}

func (r *fileRepository) Create(file *model.File) error {
	query := `
		INSERT INTO files (file_id, file_unique_id, uploader_id, name, mime_type, size, storage_path, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(query,
		file.FileID,
		file.FileUniqueID,
		file.UploaderID,
		file.Name,
		file.MimeType,
		file.Size,
		file.StoragePath,
		file.CreatedAt,
	)
	if err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "UNIQUE constraint failed") || strings.Contains(errStr, "duplicate key value") {
			return ErrDuplicateFile
		}
		return err
	}

	return nil
}

func (r *fileRepository) ByID(fileID string) (*model.File, error) {
	file := &model.File{}
	query := `SELECT * FROM files WHERE file_id = $1`

	err := r.db.Get(file, query, fileID)
	if err == sql.ErrNoRows {
		return nil, ErrFileNotFound
	}

	return file, err
}

func (r *fileRepository) ByUniqueID(fileUniqueID string) (*model.File, error) {
	file := &model.File{}
	query := `SELECT * FROM files WHERE file_unique_id = $1`

	err := r.db.Get(file, query, fileUniqueID)
	if err == sql.ErrNoRows {
		return nil, ErrFileNotFound
	}

	return file, err
}

func (r *fileRepository) Delete(fileID string) error {
	_, err := r.db.Exec(`DELETE FROM files WHERE file_id = $1`, fileID)
	return err
}

func (r *fileRepository) CountByUploader(userID int64) (int64, error) {
	var count int64
	err := r.db.Get(&count, `SELECT COUNT(*) FROM files WHERE uploader_id = $1`, userID)
	return count, err
}

func (r *fileRepository) Count() (int64, error) {
	var count int64
	err := r.db.Get(&count, `SELECT COUNT(*) FROM files`)
	return count, err
}

func (r *fileRepository) CountCreatedSince(since time.Time) (int64, error) {
	var count int64
	err := r.db.Get(&count, `SELECT COUNT(*) FROM files WHERE created_at >= $1`, since)
	return count, err
}
