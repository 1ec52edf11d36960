package comm

import "time"

// Game lifecycle event types published on the play.game.* topics.
const (
	GameCreated = "created"
	GameStarted = "started"
	GameScored  = "scored"
	GameEnded   = "ended"
)

// GameEvent is the payload handed off to external consumers (the limit
// scheduler, audit sinks) whenever a game crosses a lifecycle boundary.
type GameEvent struct {
	Type       string    `json:"type"`
	GameID     string    `json:"game_id"`
	CourtID    string    `json:"court_id"`
	OwnerID    string    `json:"owner_id"`
	Team1Score int       `json:"team1_score"`
	Team2Score int       `json:"team2_score"`
	Timestamp  time.Time `json:"timestamp"`
}

// ServiceHeartbeat is published periodically so the control plane can track
// live service instances.
type ServiceHeartbeat struct {
	ID        string    `json:"id"` // service instance id
	Timestamp time.Time `json:"timestamp"`
}

// ServiceShutdown announces a graceful stop.
type ServiceShutdown struct {
	ID string `json:"id"` // service instance id
}
