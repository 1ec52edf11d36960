package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/courtside/hoop-services/internal/comm"
	"github.com/courtside/hoop-services/internal/kv"
	"github.com/courtside/hoop-services/internal/playsvc/models"
	"github.com/courtside/hoop-services/internal/playsvc/store"
	log "github.com/sirupsen/logrus"
)

const (
	opTimeout = 10 * time.Second
	leaseTTL  = 5 * time.Second
)

// GameArchive is the durable system of record for games. It assigns every
// game identifier and keeps the finalized results.
type GameArchive interface {
	CreateGameRecord(ctx context.Context, courtID, ownerID string, scoreLimit, timeLimit, teamSize int) (string, error)
	FindActiveGameByCourt(ctx context.Context, courtID string) (string, error)
	FinalizeGame(ctx context.Context, gameID string, team1Score, team2Score int) error
}

// CourtFinder resolves court identifiers against durable storage.
type CourtFinder interface {
	FindCourt(ctx context.Context, courtID string) (*models.Court, error)
}

// EventPublisher hands lifecycle events to external consumers. Publishing is
// fire-and-forget from the service's point of view.
type EventPublisher interface {
	PublishGameEvent(event comm.GameEvent)
}

// PlayService coordinates every multi-key transition of a live game. The
// volatile store has no transactions, so each mutating operation serializes
// itself with kv leases, always acquired in the same order: the game lease
// first, then session leases, then invite leases. Invite and session leases
// for different players are taken one at a time.
type PlayService struct {
	kv       kv.Store
	sessions *store.SessionStore
	invites  *store.InviteStore
	games    *store.GameStore
	archive  GameArchive
	courts   CourtFinder
	events   EventPublisher // optional
}

func NewPlayService(kvStore kv.Store, archive GameArchive, courts CourtFinder, events EventPublisher) *PlayService {
	return &PlayService{
		kv:       kvStore,
		sessions: store.NewSessionStore(kvStore),
		invites:  store.NewInviteStore(kvStore),
		games:    store.NewGameStore(kvStore),
		archive:  archive,
		courts:   courts,
		events:   events,
	}
}

// Sessions exposes read access to the player -> game index.
func (s *PlayService) Sessions() *store.SessionStore { return s.sessions }

// CurrentGame returns the state of gameID, or of the player's active game
// when gameID is empty. This is the polling surface for clients.
func (s *PlayService) CurrentGame(ctx context.Context, playerID, gameID string) (*Outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if gameID == "" {
		bound, err := s.sessions.ActiveGame(ctx, playerID)
		if err != nil {
			return nil, err
		}
		if bound == "" {
			return rejected(ReasonNotInGame), nil
		}
		gameID = bound
	}

	game, err := s.games.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return rejected(ReasonGameDoesNotExist), nil
	}
	return succeeded(game), nil
}

// ListInvites returns the games the player has been invited to, oldest
// first.
func (s *PlayService) ListInvites(ctx context.Context, playerID string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return s.invites.List(ctx, playerID)
}

// CreateGame allocates a durable game record for the court, mirrors it into
// the volatile store and binds the owner to it. The owner's session lease
// covers the whole check-then-create sequence so the owner cannot end up in
// two games.
func (s *PlayService) CreateGame(ctx context.Context, ownerID, courtID string, scoreLimit, timeLimit, teamSize int) (*Outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	lease, err := s.kv.Acquire(ctx, store.SessionLeaseKey(ownerID), leaseTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to lease session for %s: %w", ownerID, err)
	}
	defer lease.Release(ctx)

	bound, err := s.sessions.ActiveGame(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if bound != "" {
		return rejected(ReasonPlayerAlreadyInGame), nil
	}

	court, err := s.courts.FindCourt(ctx, courtID)
	if err != nil {
		return nil, err
	}
	if court == nil {
		return rejected(ReasonCourtDoesNotExist), nil
	}

	occupied, err := s.archive.FindActiveGameByCourt(ctx, courtID)
	if err != nil {
		return nil, err
	}
	if occupied != "" {
		return rejected(ReasonCourtInUse), nil
	}

	if scoreLimit <= 0 {
		scoreLimit = models.DefaultScoreLimit
	}
	if timeLimit <= 0 {
		timeLimit = models.DefaultTimeLimit
	}
	if teamSize <= 0 {
		teamSize = models.DefaultTeamSize
	}

	gameID, err := s.archive.CreateGameRecord(ctx, courtID, ownerID, scoreLimit, timeLimit, teamSize)
	if err != nil {
		return nil, err
	}

	game := models.NewGameRecord(gameID, courtID, ownerID, scoreLimit, timeLimit, teamSize)

	// Mirror first, bind last: a crash between the two leaves no pointer at
	// a game that was never live.
	if err := s.games.Put(ctx, game); err != nil {
		return nil, err
	}
	if err := s.sessions.Bind(ctx, ownerID, gameID); err != nil {
		return nil, err
	}

	s.publish(comm.GameCreated, game)
	return succeeded(game), nil
}

// Invite records an outstanding invite on both sides: the game's open invite
// list and the recipient's registry entry. Only the owner of a forming game
// may invite.
func (s *PlayService) Invite(ctx context.Context, ownerID, recipientID string) (*Outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	gameID, err := s.sessions.ActiveGame(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if gameID == "" {
		return rejected(ReasonNotInGame), nil
	}

	gameLease, err := s.kv.Acquire(ctx, store.GameLeaseKey(gameID), leaseTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to lease game %s: %w", gameID, err)
	}
	defer gameLease.Release(ctx)

	game, err := s.games.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return rejected(ReasonGameDoesNotExist), nil
	}
	if game.OwnerID != ownerID {
		return rejected(ReasonNotOwner), nil
	}
	if game.Started() {
		return rejected(ReasonGameAlreadyStarted), nil
	}
	if game.InviteIndex(recipientID) >= 0 {
		return rejected(ReasonAlreadyInvited), nil
	}
	if game.OnTeam(recipientID) {
		return rejected(ReasonPlayerAlreadyInGame), nil
	}

	inviteLease, err := s.kv.Acquire(ctx, store.InviteLeaseKey(recipientID), leaseTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to lease invites for %s: %w", recipientID, err)
	}
	defer inviteLease.Release(ctx)

	// Registry side first; the accept path treats a half-written invite as
	// nonexistent either way.
	if err := s.invites.Add(ctx, recipientID, gameID); err != nil {
		if errors.Is(err, store.ErrDuplicateInvite) {
			log.Warnf("invite registry for %s already holds game %s missing from the game record", recipientID, gameID)
			return rejected(ReasonAlreadyInvited), nil
		}
		return nil, err
	}

	game.OpenInvites = append(game.OpenInvites, recipientID)
	if err := s.games.Put(ctx, game); err != nil {
		return nil, err
	}

	return succeeded(game), nil
}

// AcceptInvite moves the player from invited to rostered. The invite must be
// present on both sides; a mismatch means a stale or half-written invite and
// reads as the invite not existing.
func (s *PlayService) AcceptInvite(ctx context.Context, playerID, gameID string) (*Outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	gameLease, err := s.kv.Acquire(ctx, store.GameLeaseKey(gameID), leaseTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to lease game %s: %w", gameID, err)
	}
	defer gameLease.Release(ctx)

	sessionLease, err := s.kv.Acquire(ctx, store.SessionLeaseKey(playerID), leaseTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to lease session for %s: %w", playerID, err)
	}
	defer sessionLease.Release(ctx)

	inviteLease, err := s.kv.Acquire(ctx, store.InviteLeaseKey(playerID), leaseTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to lease invites for %s: %w", playerID, err)
	}
	defer inviteLease.Release(ctx)

	pending, err := s.invites.List(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(pending, gameID) {
		return rejected(ReasonInviteDoesNotExist), nil
	}

	game, err := s.games.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return rejected(ReasonGameDoesNotExist), nil
	}

	idx := game.InviteIndex(playerID)
	if idx < 0 {
		log.Warnf("invite for player %s to game %s present in registry but not on the game record", playerID, gameID)
		return rejected(ReasonInviteDoesNotExist), nil
	}

	bound, err := s.sessions.ActiveGame(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if bound != "" {
		return rejected(ReasonPlayerAlreadyInGame), nil
	}

	game.OpenInvites = slices.Delete(game.OpenInvites, idx, idx+1)
	if len(game.OpenInvites) == 0 {
		game.OpenInvites = nil
	}
	game.PlaceOnShorterTeam(playerID)

	// Roster write first, pointer after, registry cleanup last.
	if err := s.games.Put(ctx, game); err != nil {
		return nil, err
	}
	if err := s.sessions.Bind(ctx, playerID, gameID); err != nil {
		return nil, err
	}
	if _, err := s.invites.Remove(ctx, playerID, gameID); err != nil {
		return nil, err
	}

	return succeeded(game), nil
}

// RejectInvite removes the invite from both sides without touching rosters.
func (s *PlayService) RejectInvite(ctx context.Context, playerID, gameID string) (*Outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	gameLease, err := s.kv.Acquire(ctx, store.GameLeaseKey(gameID), leaseTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to lease game %s: %w", gameID, err)
	}
	defer gameLease.Release(ctx)

	inviteLease, err := s.kv.Acquire(ctx, store.InviteLeaseKey(playerID), leaseTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to lease invites for %s: %w", playerID, err)
	}
	defer inviteLease.Release(ctx)

	pending, err := s.invites.List(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(pending, gameID) {
		return rejected(ReasonInviteDoesNotExist), nil
	}

	game, err := s.games.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}
	idx := -1
	if game != nil {
		idx = game.InviteIndex(playerID)
	}
	if idx < 0 {
		log.Warnf("invite for player %s to game %s present in registry but not on the game record", playerID, gameID)
		return rejected(ReasonInviteDoesNotExist), nil
	}

	game.OpenInvites = slices.Delete(game.OpenInvites, idx, idx+1)
	if len(game.OpenInvites) == 0 {
		game.OpenInvites = nil
	}
	if err := s.games.Put(ctx, game); err != nil {
		return nil, err
	}
	if _, err := s.invites.Remove(ctx, playerID, gameID); err != nil {
		return nil, err
	}

	return succeeded(nil), nil
}

// ChangeTeam flips the player to the other roster of their bound game.
func (s *PlayService) ChangeTeam(ctx context.Context, playerID string) (*Outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	gameID, err := s.sessions.ActiveGame(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if gameID == "" {
		return rejected(ReasonNotInGame), nil
	}

	gameLease, err := s.kv.Acquire(ctx, store.GameLeaseKey(gameID), leaseTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to lease game %s: %w", gameID, err)
	}
	defer gameLease.Release(ctx)

	game, err := s.games.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return rejected(ReasonGameDoesNotExist), nil
	}
	if !game.SwitchTeam(playerID) {
		return rejected(ReasonNotInGame), nil
	}

	if err := s.games.Put(ctx, game); err != nil {
		return nil, err
	}
	return succeeded(game), nil
}

// ScorePoint increments one side's score. Only the owner of a started game
// may score; the score limit itself is enforced by the external scheduler
// listening for scored events.
func (s *PlayService) ScorePoint(ctx context.Context, actorID, side string) (*Outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	gameID, err := s.sessions.ActiveGame(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if gameID == "" {
		return rejected(ReasonNotInGame), nil
	}

	gameLease, err := s.kv.Acquire(ctx, store.GameLeaseKey(gameID), leaseTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to lease game %s: %w", gameID, err)
	}
	defer gameLease.Release(ctx)

	game, err := s.games.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return rejected(ReasonGameDoesNotExist), nil
	}
	if game.OwnerID != actorID {
		return rejected(ReasonNotOwner), nil
	}
	if !game.Started() {
		return rejected(ReasonGameNotStarted), nil
	}
	if !game.AddPoint(side) {
		return rejected(ReasonInvalidTeamValue), nil
	}

	if err := s.games.Put(ctx, game); err != nil {
		return nil, err
	}

	s.publish(comm.GameScored, game)
	return succeeded(game), nil
}

// StartGame moves the game from forming to active: invites are swept out of
// every recipient's registry, the open invite list is cleared and the clock
// starts. The registry sweep is best effort; a failed removal is logged and
// the start proceeds.
func (s *PlayService) StartGame(ctx context.Context, ownerID string) (*Outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	gameID, err := s.sessions.ActiveGame(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if gameID == "" {
		return rejected(ReasonNotInGame), nil
	}

	gameLease, err := s.kv.Acquire(ctx, store.GameLeaseKey(gameID), leaseTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to lease game %s: %w", gameID, err)
	}
	defer gameLease.Release(ctx)

	game, err := s.games.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return rejected(ReasonGameDoesNotExist), nil
	}
	if game.OwnerID != ownerID {
		return rejected(ReasonNotOwner), nil
	}
	if game.Started() {
		return rejected(ReasonGameAlreadyStarted), nil
	}
	if len(game.Team1) > game.TeamSize || len(game.Team2) > game.TeamSize {
		return rejected(ReasonTeamTooLarge), nil
	}
	if len(game.Team1) != len(game.Team2) {
		return rejected(ReasonTeamsUnbalanced), nil
	}

	for _, invitee := range game.OpenInvites {
		if err := s.dropInvite(ctx, invitee, gameID); err != nil {
			log.Warnf("failed to clean up invite for %s at start of game %s: %v", invitee, gameID, err)
		}
	}
	game.OpenInvites = nil

	now := time.Now().UTC()
	game.StartTime = &now

	if err := s.games.Put(ctx, game); err != nil {
		return nil, err
	}

	s.publish(comm.GameStarted, game)
	return succeeded(game), nil
}

// EndGame releases every player, finalizes the durable record and deletes
// the volatile mirror.
func (s *PlayService) EndGame(ctx context.Context, actorID string) (*Outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	gameID, err := s.sessions.ActiveGame(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if gameID == "" {
		return rejected(ReasonNotInGame), nil
	}

	gameLease, err := s.kv.Acquire(ctx, store.GameLeaseKey(gameID), leaseTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to lease game %s: %w", gameID, err)
	}
	defer gameLease.Release(ctx)

	game, err := s.games.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return rejected(ReasonGameDoesNotExist), nil
	}
	if game.OwnerID != actorID {
		return rejected(ReasonNotOwner), nil
	}

	for _, playerID := range game.Players() {
		if err := s.unbindPlayer(ctx, playerID); err != nil {
			return nil, err
		}
	}

	if err := s.archive.FinalizeGame(ctx, gameID, game.Team1Score, game.Team2Score); err != nil {
		return nil, err
	}
	if err := s.games.Delete(ctx, gameID); err != nil {
		return nil, err
	}

	s.publish(comm.GameEnded, game)
	return succeeded(nil), nil
}

// dropInvite removes one registry entry under its own lease; the caller
// already holds the game lease.
func (s *PlayService) dropInvite(ctx context.Context, playerID, gameID string) error {
	lease, err := s.kv.Acquire(ctx, store.InviteLeaseKey(playerID), leaseTTL)
	if err != nil {
		return err
	}
	defer lease.Release(ctx)

	_, err = s.invites.Remove(ctx, playerID, gameID)
	return err
}

func (s *PlayService) unbindPlayer(ctx context.Context, playerID string) error {
	lease, err := s.kv.Acquire(ctx, store.SessionLeaseKey(playerID), leaseTTL)
	if err != nil {
		return err
	}
	defer lease.Release(ctx)

	return s.sessions.Unbind(ctx, playerID)
}

func (s *PlayService) publish(eventType string, game *models.GameRecord) {
	if s.events == nil {
		return
	}
	s.events.PublishGameEvent(comm.GameEvent{
		Type:       eventType,
		GameID:     game.ID,
		CourtID:    game.CourtID,
		OwnerID:    game.OwnerID,
		Team1Score: game.Team1Score,
		Team2Score: game.Team2Score,
		Timestamp:  time.Now().UTC(),
	})
}
