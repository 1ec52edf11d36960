package handlers

import (
	"net/http"

	"github.com/go-chi/chi"
)

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		writeInfraError(w, r, err)
		return
	}
	if user == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": false,
			"reason":  "UserDoesNotExist",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "user": user})
}
