package service

import "github.com/courtside/hoop-services/internal/playsvc/models"

// Reason is a stable string clients branch on. These values are part of the
// wire contract; do not reword them.
type Reason string

const (
	ReasonNotInGame           Reason = "NotInGame"
	ReasonGameDoesNotExist    Reason = "GameDoesNotExist"
	ReasonAlreadyInvited      Reason = "AlreadyInvited"
	ReasonInviteDoesNotExist  Reason = "InviteDoesNotExist"
	ReasonNotOwner            Reason = "NotOwner"
	ReasonGameAlreadyStarted  Reason = "GameAlreadyStarted"
	ReasonGameNotStarted      Reason = "GameNotStarted"
	ReasonTeamTooLarge        Reason = "TeamTooLarge"
	ReasonTeamsUnbalanced     Reason = "TeamsUnbalanced"
	ReasonInvalidTeamValue    Reason = "InvalidTeamValue"
	ReasonCourtInUse          Reason = "CourtInUse"
	ReasonCourtDoesNotExist   Reason = "CourtDoesNotExist"
	ReasonPlayerAlreadyInGame Reason = "PlayerAlreadyInGame"
)

// Outcome is the uniform result of every play operation. A failed
// precondition is a normal outcome, not a Go error; errors are reserved for
// infrastructure faults.
type Outcome struct {
	OK     bool               `json:"success"`
	Reason Reason             `json:"reason,omitempty"`
	Game   *models.GameRecord `json:"game,omitempty"`
}

func succeeded(game *models.GameRecord) *Outcome {
	return &Outcome{OK: true, Game: game}
}

func rejected(reason Reason) *Outcome {
	return &Outcome{OK: false, Reason: reason}
}
