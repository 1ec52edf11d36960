package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/courtside/hoop-services/internal/kv"
	"github.com/courtside/hoop-services/internal/playsvc/models"
)

// GameStore holds the volatile mirror of every in-progress game.
type GameStore struct {
	kv kv.Store
}

func NewGameStore(store kv.Store) *GameStore {
	return &GameStore{kv: store}
}

// Get returns the mirror for gameID, or nil when no such game is live.
func (s *GameStore) Get(ctx context.Context, gameID string) (*models.GameRecord, error) {
	value, err := s.kv.Get(ctx, GameKey(gameID))
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil // game not live
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read game %s: %w", gameID, err)
	}

	game := &models.GameRecord{}
	if err := json.Unmarshal(value, game); err != nil {
		return nil, fmt.Errorf("failed to decode game %s: %w", gameID, err)
	}
	return game, nil
}

func (s *GameStore) Put(ctx context.Context, game *models.GameRecord) error {
	value, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("failed to encode game %s: %w", game.ID, err)
	}
	if err := s.kv.Set(ctx, GameKey(game.ID), value); err != nil {
		return fmt.Errorf("failed to write game %s: %w", game.ID, err)
	}
	return nil
}

func (s *GameStore) Delete(ctx context.Context, gameID string) error {
	if err := s.kv.Delete(ctx, GameKey(gameID)); err != nil {
		return fmt.Errorf("failed to delete game %s: %w", gameID, err)
	}
	return nil
}
