package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/courtside/hoop-services/internal/kv"
)

// ErrDuplicateInvite is returned by Add when the game is already in the
// player's invite list.
var ErrDuplicateInvite = errors.New("game already in invite list")

// inviteRecord is the stored shape of one player's pending invites.
type inviteRecord struct {
	OpenInvites []string `json:"openInvites"`
}

// InviteStore maintains the invitee -> pending invite list mapping. The
// entry for a player exists only while they have at least one invite.
type InviteStore struct {
	kv kv.Store
}

func NewInviteStore(store kv.Store) *InviteStore {
	return &InviteStore{kv: store}
}

// List returns the player's pending invites in the order they arrived.
// A player with no invites gets an empty list.
func (s *InviteStore) List(ctx context.Context, playerID string) ([]string, error) {
	record, err := s.load(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return []string{}, nil
	}
	return record.OpenInvites, nil
}

func (s *InviteStore) Add(ctx context.Context, playerID, gameID string) error {
	record, err := s.load(ctx, playerID)
	if err != nil {
		return err
	}
	if record == nil {
		record = &inviteRecord{}
	}
	if slices.Contains(record.OpenInvites, gameID) {
		return ErrDuplicateInvite
	}
	record.OpenInvites = append(record.OpenInvites, gameID)
	return s.save(ctx, playerID, record)
}

// Remove takes the game out of the player's invite list and reports whether
// it was present. The registry entry is deleted outright when the list
// drains, so listing stays cheap for players with nothing pending.
func (s *InviteStore) Remove(ctx context.Context, playerID, gameID string) (bool, error) {
	record, err := s.load(ctx, playerID)
	if err != nil {
		return false, err
	}
	if record == nil {
		return false, nil
	}

	i := slices.Index(record.OpenInvites, gameID)
	if i < 0 {
		return false, nil
	}
	record.OpenInvites = slices.Delete(record.OpenInvites, i, i+1)

	if len(record.OpenInvites) == 0 {
		if err := s.kv.Delete(ctx, InviteKey(playerID)); err != nil {
			return false, fmt.Errorf("failed to delete invite entry for %s: %w", playerID, err)
		}
		return true, nil
	}
	return true, s.save(ctx, playerID, record)
}

func (s *InviteStore) load(ctx context.Context, playerID string) (*inviteRecord, error) {
	value, err := s.kv.Get(ctx, InviteKey(playerID))
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read invites for %s: %w", playerID, err)
	}

	record := &inviteRecord{}
	if err := json.Unmarshal(value, record); err != nil {
		return nil, fmt.Errorf("failed to decode invites for %s: %w", playerID, err)
	}
	return record, nil
}

func (s *InviteStore) save(ctx context.Context, playerID string, record *inviteRecord) error {
	value, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode invites for %s: %w", playerID, err)
	}
	if err := s.kv.Set(ctx, InviteKey(playerID), value); err != nil {
		return fmt.Errorf("failed to write invites for %s: %w", playerID, err)
	}
	return nil
}
