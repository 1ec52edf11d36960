package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/courtside/hoop-services/internal/playsvc/service"
	"github.com/courtside/hoop-services/internal/playsvc/store"
	"github.com/go-chi/jwtauth"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	tokenAuth *jwtauth.JWTAuth
	play      *service.PlayService
	courts    *store.CourtStore
	users     *store.UserStore
	friends   *store.FriendStore
}

func NewHandler(play *service.PlayService, courts *store.CourtStore,
	users *store.UserStore, friends *store.FriendStore) *Handler {
	return &Handler{
		play:    play,
		courts:  courts,
		users:   users,
		friends: friends,
	}
}

// userID pulls the authenticated user out of the verified JWT claims.
func (h *Handler) userID(r *http.Request) (string, error) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return "", err
	}
	id, _ := claims["user_id"].(string)
	if id == "" {
		return "", errors.New("missing user_id claim")
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

// writeOutcome sends the uniform outcome shape. Domain rejections are still
// HTTP 200; clients branch on the reason string.
func writeOutcome(w http.ResponseWriter, outcome *service.Outcome) {
	writeJSON(w, http.StatusOK, outcome)
}

// writeInfraError maps an infrastructure fault to a generic 500; domain
// reasons never travel this path.
func writeInfraError(w http.ResponseWriter, r *http.Request, err error) {
	log.Errorf("%s %s failed: %v", r.Method, r.URL.Path, err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "service unavailable"})
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
