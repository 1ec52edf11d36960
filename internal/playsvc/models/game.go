package models

import (
	"slices"
	"time"
)

// Defaults applied at creation when the caller leaves a limit unset.
const (
	DefaultScoreLimit = 21
	DefaultTimeLimit  = 900 // seconds
	DefaultTeamSize   = 3
)

const (
	SideTeam1 = "team1"
	SideTeam2 = "team2"
)

// GameRecord is the volatile mirror of one in-progress match. The durable
// archive record holds the same identity fields plus the final scores; this
// copy is the one mutated by every roster and score operation.
type GameRecord struct {
	ID          string     `json:"id"`
	CourtID     string     `json:"courtId"`
	OwnerID     string     `json:"ownerId"`
	ScoreLimit  int        `json:"scoreLimit"`
	TimeLimit   int        `json:"timeLimit"` // seconds
	TeamSize    int        `json:"teamSize"`
	Team1       []string   `json:"team1"`
	Team2       []string   `json:"team2"`
	Team1Score  int        `json:"team1Score"`
	Team2Score  int        `json:"team2Score"`
	StartTime   *time.Time `json:"startTime,omitempty"`
	OpenInvites []string   `json:"openInvites,omitempty"`
}

// NewGameRecord builds the mirror for a freshly created game. The owner is
// seeded onto team1; zero limits fall back to the defaults.
func NewGameRecord(id, courtID, ownerID string, scoreLimit, timeLimit, teamSize int) *GameRecord {
	if scoreLimit <= 0 {
		scoreLimit = DefaultScoreLimit
	}
	if timeLimit <= 0 {
		timeLimit = DefaultTimeLimit
	}
	if teamSize <= 0 {
		teamSize = DefaultTeamSize
	}

	return &GameRecord{
		ID:         id,
		CourtID:    courtID,
		OwnerID:    ownerID,
		ScoreLimit: scoreLimit,
		TimeLimit:  timeLimit,
		TeamSize:   teamSize,
		Team1:      []string{ownerID},
		Team2:      []string{},
	}
}

func (g *GameRecord) Started() bool {
	return g.StartTime != nil
}

func (g *GameRecord) OnTeam(playerID string) bool {
	return slices.Contains(g.Team1, playerID) || slices.Contains(g.Team2, playerID)
}

// InviteIndex returns the position of playerID in the open invite list, or
// -1 when the player has no outstanding invite to this game.
func (g *GameRecord) InviteIndex(playerID string) int {
	return slices.Index(g.OpenInvites, playerID)
}

// PlaceOnShorterTeam adds the player to whichever roster is behind. A tie
// goes to team1; only a strictly larger team1 sends the player to team2.
func (g *GameRecord) PlaceOnShorterTeam(playerID string) {
	if len(g.Team1) > len(g.Team2) {
		g.Team2 = append(g.Team2, playerID)
	} else {
		g.Team1 = append(g.Team1, playerID)
	}
}

// SwitchTeam moves the player to the opposite roster. It reports false when
// the player is on neither team.
func (g *GameRecord) SwitchTeam(playerID string) bool {
	if i := slices.Index(g.Team1, playerID); i >= 0 {
		g.Team1 = slices.Delete(g.Team1, i, i+1)
		g.Team2 = append(g.Team2, playerID)
		return true
	}
	if i := slices.Index(g.Team2, playerID); i >= 0 {
		g.Team2 = slices.Delete(g.Team2, i, i+1)
		g.Team1 = append(g.Team1, playerID)
		return true
	}
	return false
}

// AddPoint increments the chosen side's score. It reports false for an
// unknown side value.
func (g *GameRecord) AddPoint(side string) bool {
	switch side {
	case SideTeam1:
		g.Team1Score++
	case SideTeam2:
		g.Team2Score++
	default:
		return false
	}
	return true
}

// Players returns every rostered player, team1 first.
func (g *GameRecord) Players() []string {
	players := make([]string, 0, len(g.Team1)+len(g.Team2))
	players = append(players, g.Team1...)
	players = append(players, g.Team2...)
	return players
}
