package handlers

import (
	"encoding/json"
	"net/http"
)

func (h *Handler) ListFriends(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		http.Error(w, "Authentication Failed", http.StatusUnauthorized)
		return
	}

	friends, err := h.friends.ListFriends(r.Context(), userID)
	if err != nil {
		writeInfraError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"friends": friends})
}

func (h *Handler) ListFriendRequests(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		http.Error(w, "Authentication Failed", http.StatusUnauthorized)
		return
	}

	requests, err := h.friends.ListRequests(r.Context(), userID)
	if err != nil {
		writeInfraError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"requests": requests})
}

func (h *Handler) SendFriendRequest(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		http.Error(w, "Authentication Failed", http.StatusUnauthorized)
		return
	}

	var body struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.UserID == "" {
		http.Error(w, "Missing Fields", http.StatusBadRequest)
		return
	}

	// Make sure the target exists before creating the edge.
	target, err := h.users.GetByID(r.Context(), body.UserID)
	if err != nil {
		writeInfraError(w, r, err)
		return
	}
	if target == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": false,
			"reason":  "UserDoesNotExist",
		})
		return
	}

	if err := h.friends.SendRequest(r.Context(), userID, body.UserID); err != nil {
		writeInfraError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (h *Handler) AcceptFriendRequest(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		http.Error(w, "Authentication Failed", http.StatusUnauthorized)
		return
	}

	var body struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.UserID == "" {
		http.Error(w, "Missing Fields", http.StatusBadRequest)
		return
	}

	accepted, err := h.friends.AcceptRequest(r.Context(), userID, body.UserID)
	if err != nil {
		writeInfraError(w, r, err)
		return
	}
	if !accepted {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": false,
			"reason":  "RequestDoesNotExist",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (h *Handler) RemoveFriend(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		http.Error(w, "Authentication Failed", http.StatusUnauthorized)
		return
	}

	var body struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.UserID == "" {
		http.Error(w, "Missing Fields", http.StatusBadRequest)
		return
	}

	if err := h.friends.RemoveFriend(r.Context(), userID, body.UserID); err != nil {
		writeInfraError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
