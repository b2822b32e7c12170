package handler

import (
	"net/http"

	"github.com/filegate/filegate/internal/ctxkeys"
	"github.com/filegate/filegate/internal/service"
)

// MeHandler serves the authenticated caller's own account view.
type MeHandler struct {
	users *service.UserService
}

func NewMeHandler(users *service.UserService) *MeHandler {
	return &MeHandler{users: users}
}

func (h *MeHandler) Stats(w http.ResponseWriter, r *http.Request) {
	id := ctxkeys.IdentityFrom(r.Context())

	stats, err := h.users.Stats(id.UserID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "account not found"})
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
