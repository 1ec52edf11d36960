package handlers

import (
	"os"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) SetRoutes(r *chi.Mux) {
	r.Route("/v1", func(r chi.Router) {

		// public routes here
		r.Get("/health", h.HealthHandler)

		// Secure routes
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(h.tokenAuth))
			r.Use(jwtauth.Authenticator)

			r.Route("/play", func(r chi.Router) {
				r.Get("/game", h.GetGame)
				r.Get("/invite/list", h.ListInvites)
				r.Post("/invite/send", h.SendInvite)
				r.Post("/invite/accept", h.AcceptInvite)
				r.Post("/invite/reject", h.RejectInvite)
				r.Get("/changeteam", h.ChangeTeam)
				r.Post("/scorepoint", h.ScorePoint)
				r.Post("/startgame", h.StartGame)
				r.Post("/endgame", h.EndGame)
				r.Post("/creategame", h.CreateGame)
				r.Get("/owner", h.Owner)
			})

			r.Route("/court", func(r chi.Router) {
				r.Post("/find", h.FindCourtByHoops)
				r.Get("/{courtID}", h.GetCourt)
			})

			r.Route("/friends", func(r chi.Router) {
				r.Get("/", h.ListFriends)
				r.Get("/requests", h.ListFriendRequests)
				r.Post("/request", h.SendFriendRequest)
				r.Post("/accept", h.AcceptFriendRequest)
				r.Post("/remove", h.RemoveFriend)
			})

			r.Get("/user/{userID}", h.GetUser)
		})
	})
}

func (h *Handler) InitAuth() {
	var jwtKey = os.Getenv("JWT_SECRET_KEY")
	h.tokenAuth = jwtauth.New("HS256", []byte(jwtKey), nil)

	expirationTime := time.Now().Add(7 * 24 * time.Hour).Unix()

	_, tokenString, _ := h.tokenAuth.Encode(map[string]interface{}{
		"user_id": "smoke-test-user",
		"exp":     expirationTime,
	})

	// For debugging only, comment it out in production
	log.Infof("DEBUG: JWT for testing expires soon : %s", tokenString)
}
