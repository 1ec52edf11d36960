package handlers

import (
	"encoding/json"
	"net/http"
)

// GetGame is the polling surface: the caller's active game, or an explicit
// id via ?gameId= for historical lookups.
func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		http.Error(w, "Authentication Failed", http.StatusUnauthorized)
		return
	}

	gameID := r.URL.Query().Get("gameId")
	if gameID == "" {
		gameID = r.URL.Query().Get("gameid")
	}

	outcome, err := h.play.CurrentGame(r.Context(), userID, gameID)
	if err != nil {
		writeInfraError(w, r, err)
		return
	}
	writeOutcome(w, outcome)
}

func (h *Handler) ListInvites(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		http.Error(w, "Authentication Failed", http.StatusUnauthorized)
		return
	}

	invites, err := h.play.ListInvites(r.Context(), userID)
	if err != nil {
		writeInfraError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"invites": invites})
}

func (h *Handler) SendInvite(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		http.Error(w, "Authentication Failed", http.StatusUnauthorized)
		return
	}

	var body struct {
		RecipientID string `json:"recipientId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.RecipientID == "" {
		http.Error(w, "Missing Fields", http.StatusBadRequest)
		return
	}

	outcome, err := h.play.Invite(r.Context(), userID, body.RecipientID)
	if err != nil {
		writeInfraError(w, r, err)
		return
	}
	writeOutcome(w, outcome)
}

func (h *Handler) AcceptInvite(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		http.Error(w, "Authentication Failed", http.StatusUnauthorized)
		return
	}

	var body struct {
		GameID string `json:"gameId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.GameID == "" {
		http.Error(w, "Missing Fields", http.StatusBadRequest)
		return
	}

	outcome, err := h.play.AcceptInvite(r.Context(), userID, body.GameID)
	if err != nil {
		writeInfraError(w, r, err)
		return
	}
	writeOutcome(w, outcome)
}

func (h *Handler) RejectInvite(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		http.Error(w, "Authentication Failed", http.StatusUnauthorized)
		return
	}

	var body struct {
		GameID string `json:"gameId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.GameID == "" {
		http.Error(w, "Missing Fields", http.StatusBadRequest)
		return
	}

	outcome, err := h.play.RejectInvite(r.Context(), userID, body.GameID)
	if err != nil {
		writeInfraError(w, r, err)
		return
	}
	writeOutcome(w, outcome)
}

func (h *Handler) ChangeTeam(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		http.Error(w, "Authentication Failed", http.StatusUnauthorized)
		return
	}

	outcome, err := h.play.ChangeTeam(r.Context(), userID)
	if err != nil {
		writeInfraError(w, r, err)
		return
	}
	writeOutcome(w, outcome)
}

func (h *Handler) ScorePoint(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		http.Error(w, "Authentication Failed", http.StatusUnauthorized)
		return
	}

	var body struct {
		Side string `json:"side"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Side == "" {
		http.Error(w, "Missing Fields", http.StatusBadRequest)
		return
	}

	outcome, err := h.play.ScorePoint(r.Context(), userID, body.Side)
	if err != nil {
		writeInfraError(w, r, err)
		return
	}
	writeOutcome(w, outcome)
}

func (h *Handler) StartGame(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		http.Error(w, "Authentication Failed", http.StatusUnauthorized)
		return
	}

	outcome, err := h.play.StartGame(r.Context(), userID)
	if err != nil {
		writeInfraError(w, r, err)
		return
	}
	writeOutcome(w, outcome)
}

func (h *Handler) EndGame(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		http.Error(w, "Authentication Failed", http.StatusUnauthorized)
		return
	}

	outcome, err := h.play.EndGame(r.Context(), userID)
	if err != nil {
		writeInfraError(w, r, err)
		return
	}
	writeOutcome(w, outcome)
}

func (h *Handler) CreateGame(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		http.Error(w, "Authentication Failed", http.StatusUnauthorized)
		return
	}

	var body struct {
		CourtID    string `json:"courtId"`
		ScoreLimit int    `json:"scoreLimit"`
		TimeLimit  int    `json:"timeLimit"`
		TeamSize   int    `json:"teamSize"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.CourtID == "" {
		http.Error(w, "Missing Fields", http.StatusBadRequest)
		return
	}

	outcome, err := h.play.CreateGame(r.Context(), userID, body.CourtID,
		body.ScoreLimit, body.TimeLimit, body.TeamSize)
	if err != nil {
		writeInfraError(w, r, err)
		return
	}
	writeOutcome(w, outcome)
}

// Owner reports whether the caller owns their current game.
func (h *Handler) Owner(w http.ResponseWriter, r *http.Request) {
	userID, err := h.userID(r)
	if err != nil {
		http.Error(w, "Authentication Failed", http.StatusUnauthorized)
		return
	}

	outcome, err := h.play.CurrentGame(r.Context(), userID, "")
	if err != nil {
		writeInfraError(w, r, err)
		return
	}
	if !outcome.OK {
		writeOutcome(w, outcome)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"isOwner": outcome.Game.OwnerID == userID,
	})
}
