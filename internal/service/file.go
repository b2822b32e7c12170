package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/filegate/filegate/internal/model"
	"github.com/filegate/filegate/internal/repository"
	"github.com/filegate/filegate/internal/storage"
)

type FileService struct {
	files   repository.FileRepository
	storage storage.Storage
}

func NewFileService(files repository.FileRepository, storage storage.Storage) *FileService {
	return &FileService{
		files:   files,
		storage: storage,
	}
}

// Save stores the bytes in object storage and records the file. The
// returned FileID is the opaque handle links refer to.
func (s *FileService) Save(ctx context.Context, uploaderID int64, name, mimeType string, size int64, r io.Reader) (*model.File, error) {
	fileID := uuid.New().String()
	ext := filepath.Ext(name)
	storagePath := fmt.Sprintf("files/%s%s", fileID, ext)

	err := s.storage.Save(ctx, storagePath, r)
	if err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	file := &model.File{
		FileID:       fileID,
		FileUniqueID: uuid.New().String(),
		UploaderID:   uploaderID,
		Name:         name,
		MimeType:     mimeType,
		Size:         size,
		StoragePath:  storagePath,
		CreatedAt:    time.Now(),
	}

	err = s.files.Create(file)
	if err != nil {
		// DB insert failed: clean up the orphaned object (best effort)
		delErr := s.storage.Delete(ctx, storagePath)
		if delErr != nil {
			slog.Error("failed to delete file from storage during cleanup", "error", delErr, "path", storagePath)
		}
		return nil, fmt.Errorf("failed to create file record: %w", err)
	}

	return file, nil
}

// Open streams the stored bytes for a file record.
func (s *FileService) Open(ctx context.Context, file *model.File) (io.ReadCloser, error) {
	return s.storage.Open(ctx, file.StoragePath)
}

func (s *FileService) ByID(fileID string) (*model.File, error) {
	return s.files.ByID(fileID)
}

// Delete removes a file from storage and database.
func (s *FileService) Delete(ctx context.Context, fileID string) error {
	file, err := s.files.ByID(fileID)
	if err != nil {
		return fmt.Errorf("failed to get file: %w", err)
	}

	delErr := s.storage.Delete(ctx, file.StoragePath)
	if delErr != nil {
		slog.Error("failed to delete file from storage", "error", delErr, "path", file.StoragePath)
	}

	err = s.files.Delete(fileID)
	if err != nil {
		return fmt.Errorf("failed to delete file record: %w", err)
	}

	return nil
}
