package handler

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/filegate/filegate/internal/middleware"
	"github.com/filegate/filegate/internal/service"
)

// AccessHandler serves the public stream and download endpoints. The token
// travels as a path segment, the key as a query parameter.
type AccessHandler struct {
	gateway *service.AccessGateway
	files   *service.FileService
}

func NewAccessHandler(gateway *service.AccessGateway, files *service.FileService) *AccessHandler {
	return &AccessHandler{
		gateway: gateway,
		files:   files,
	}
}

// Stream serves the file inline so browsers can play it.
func (h *AccessHandler) Stream(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, false)
}

// Download serves the file as an attachment.
func (h *AccessHandler) Download(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, true)
}

func (h *AccessHandler) serve(w http.ResponseWriter, r *http.Request, attachment bool) {
	token := r.PathValue("token")
	key := r.URL.Query().Get("key")
	identity := middleware.ClientIP(r)

	result := h.gateway.Verify(token, key, identity)
	if !result.OK {
		renderErrorPage(w, result.Kind)
		return
	}

	reader, err := h.files.Open(r.Context(), result.File)
	if err != nil {
		// The admission decision stands; this is a delivery failure.
		slog.Error("failed to open file for delivery", "error", err, "file_id", result.File.FileID)
		renderErrorPage(w, service.ErrorServerError)
		return
	}
	defer func() { _ = reader.Close() }()

	w.Header().Set("Content-Type", result.File.MimeType)
	w.Header().Set("Content-Length", strconv.FormatInt(result.File.Size, 10))
	if attachment {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.File.Name))
	} else {
		w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", result.File.Name))
	}

	_, err = io.Copy(w, reader)
	if err != nil {
		// Client went away mid-transfer; the counter increment stands.
		slog.Debug("transfer aborted", "error", err, "file_id", result.File.FileID)
	}
}
