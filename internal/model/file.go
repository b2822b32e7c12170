package model

import (
	"time"
)

// File describes a stored object. FileID is the opaque handle embedded in
// link records; StoragePath locates the bytes in object storage.
type File struct {
	FileID       string    `db:"file_id"`
	FileUniqueID string    `db:"file_unique_id"`
	UploaderID   int64     `db:"uploader_id"`
	Name         string    `db:"name"`
	MimeType     string    `db:"mime_type"`
	Size         int64     `db:"size"`
	StoragePath  string    `db:"storage_path"`
	CreatedAt    time.Time `db:"created_at"`
}
