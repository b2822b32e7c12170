package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/filegate/filegate/internal/ctxkeys"
	"github.com/filegate/filegate/internal/repository"
	"github.com/filegate/filegate/internal/service"
)

type LinkHandler struct {
	links *service.LinkService
}

func NewLinkHandler(links *service.LinkService) *LinkHandler {
	return &LinkHandler{links: links}
}

type linkSummary struct {
	Token       string     `json:"token"`
	FileID      string     `json:"file_id"`
	IsPremium   bool       `json:"is_premium"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiryAt    *time.Time `json:"expiry_at"`
	AccessCount int64      `json:"access_count"`
}

// List returns the caller's live links, newest first.
func (h *LinkHandler) List(w http.ResponseWriter, r *http.Request) {
	id := ctxkeys.IdentityFrom(r.Context())

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	links, err := h.links.UserLinks(id.UserID, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list links"})
		return
	}

	summaries := make([]linkSummary, 0, len(links))
	for _, l := range links {
		summaries = append(summaries, linkSummary{
			Token:       l.Token,
			FileID:      l.FileID,
			IsPremium:   l.IsPremium,
			CreatedAt:   l.CreatedAt,
			ExpiryAt:    l.ExpiryAt,
			AccessCount: l.AccessCount,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"links": summaries})
}

// Delete removes one of the caller's links. Owners and the administrator
// only; anyone else gets 403 and the link stays.
func (h *LinkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := ctxkeys.IdentityFrom(r.Context())
	token := r.PathValue("token")

	err := h.links.Delete(token, id.UserID, id.Admin)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "link not found"})
			return
		}
		if errors.Is(err, service.ErrNotLinkOwner) {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "not the link owner"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete link"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
