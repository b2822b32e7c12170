package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/filegate/filegate/internal/ctxkeys"
	"github.com/filegate/filegate/internal/service"
)

// FileHandler accepts uploads from the bot-facing API and returns the link
// set for the stored file.
type FileHandler struct {
	files         *service.FileService
	links         *service.LinkService
	users         *service.UserService
	maxUploadSize int64
}

func NewFileHandler(files *service.FileService, links *service.LinkService, users *service.UserService, maxUploadSize int64) *FileHandler {
	return &FileHandler{
		files:         files,
		links:         links,
		users:         users,
		maxUploadSize: maxUploadSize,
	}
}

// Upload stores the bytes, records the file, and issues a capability link in
// one flow. multipart field name: "file".
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	id := ctxkeys.IdentityFrom(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing or oversized file field"})
		return
	}
	defer func() { _ = file.Close() }()

	_, err = h.users.GetOrCreate(id.UserID, r.FormValue("username"), r.FormValue("first_name"))
	if err != nil {
		slog.Error("failed to record uploader", "error", err, "user_id", id.UserID)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	stored, err := h.files.Save(r.Context(), id.UserID, header.Filename, header.Header.Get("Content-Type"), header.Size, file)
	if err != nil {
		slog.Error("upload failed", "error", err, "user_id", id.UserID)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to store file"})
		return
	}

	premium := h.users.IsPremium(id.UserID)

	issued, err := h.links.Issue(stored.FileID, stored.FileUniqueID, id.UserID, premium)
	if err != nil {
		// Issuance is a hard failure; surface it rather than leaving an
		// unreachable file behind silently.
		slog.Error("link issuance failed after upload", "error", err, "file_id", stored.FileID)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to issue link"})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"file_id":   stored.FileID,
		"file_name": stored.Name,
		"size":      stored.Size,
		"links":     issued,
	})
}

// IssueLink creates an additional link for an already stored file the caller
// uploaded.
func (h *FileHandler) IssueLink(w http.ResponseWriter, r *http.Request) {
	id := ctxkeys.IdentityFrom(r.Context())

	var req struct {
		FileID string `json:"file_id"`
	}
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil || req.FileID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file_id is required"})
		return
	}

	stored, err := h.files.ByID(req.FileID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "file not found"})
		return
	}
	if stored.UploaderID != id.UserID && !id.Admin {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "not the uploader"})
		return
	}

	premium := h.users.IsPremium(id.UserID)

	issued, err := h.links.Issue(stored.FileID, stored.FileUniqueID, id.UserID, premium)
	if err != nil {
		if errors.Is(err, service.ErrIssuanceFailed) {
			slog.Error("link issuance exhausted retries", "file_id", stored.FileID)
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to issue link"})
		return
	}

	writeJSON(w, http.StatusCreated, issued)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
