package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/courtside/hoop-services/internal/kv"
)

// ErrAlreadyBound is returned by Bind when the player already points at a
// game. The store has no test-and-set; callers serialize via a lease on
// SessionLeaseKey before calling.
var ErrAlreadyBound = errors.New("player already bound to a game")

// SessionStore maintains the player -> active game pointer. A player is
// bound to at most one game at a time.
type SessionStore struct {
	kv kv.Store
}

func NewSessionStore(store kv.Store) *SessionStore {
	return &SessionStore{kv: store}
}

// ActiveGame returns the game the player is bound to, or "" when the player
// is not in any game.
func (s *SessionStore) ActiveGame(ctx context.Context, playerID string) (string, error) {
	value, err := s.kv.Get(ctx, PlayerKey(playerID))
	if errors.Is(err, kv.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session for %s: %w", playerID, err)
	}
	return string(value), nil
}

func (s *SessionStore) Bind(ctx context.Context, playerID, gameID string) error {
	current, err := s.ActiveGame(ctx, playerID)
	if err != nil {
		return err
	}
	if current != "" {
		return ErrAlreadyBound
	}
	if err := s.kv.Set(ctx, PlayerKey(playerID), []byte(gameID)); err != nil {
		return fmt.Errorf("failed to bind %s: %w", playerID, err)
	}
	return nil
}

// Unbind is idempotent; unbinding an unbound player is not an error.
func (s *SessionStore) Unbind(ctx context.Context, playerID string) error {
	if err := s.kv.Delete(ctx, PlayerKey(playerID)); err != nil {
		return fmt.Errorf("failed to unbind %s: %w", playerID, err)
	}
	return nil
}
