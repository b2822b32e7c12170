package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/filegate/filegate/internal/service"
)

// AdminHandler exposes administrative operations: premium management and
// service-wide statistics.
type AdminHandler struct {
	users *service.UserService
}

func NewAdminHandler(users *service.UserService) *AdminHandler {
	return &AdminHandler{users: users}
}

// GrantPremium marks a user premium for the requested number of days
// (0 = indefinite).
func (h *AdminHandler) GrantPremium(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.PathValue("user_id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user id"})
		return
	}

	var req struct {
		Days int `json:"days"`
	}
	err = json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	err = h.users.GrantPremium(userID, req.Days)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to grant premium"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "granted", "user_id": userID, "days": req.Days})
}

func (h *AdminHandler) RevokePremium(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.PathValue("user_id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user id"})
		return
	}

	err = h.users.RevokePremium(userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to revoke premium"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "revoked", "user_id": userID})
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.users.ServiceStats()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to gather stats"})
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
