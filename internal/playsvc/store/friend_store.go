package store

import (
	"context"
	"fmt"

	"github.com/courtside/hoop-services/internal/playsvc/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FriendStore struct {
	db *pgxpool.Pool
}

func NewFriendStore(db *pgxpool.Pool) *FriendStore {
	return &FriendStore{db: db}
}

// ListFriends returns confirmed friends of the user, whichever side of the
// edge they sit on.
func (s *FriendStore) ListFriends(ctx context.Context, userID string) ([]*models.Friend, error) {
	query := `
		SELECT u.user_id, u.username
		FROM friendships f
		JOIN users u
		  ON u.user_id = CASE WHEN f.friend1 = $1 THEN f.friend2 ELSE f.friend1 END
		WHERE (f.friend1 = $1 OR f.friend2 = $1)
		  AND f.is_request = false
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	defer rows.Close()

	var friends []*models.Friend
	for rows.Next() {
		f := &models.Friend{}
		if err := rows.Scan(&f.UserID, &f.Username); err != nil {
			return nil, err
		}
		friends = append(friends, f)
	}

	return friends, nil
}

// ListRequests returns users who have requested friendship with userID and
// are waiting on an answer.
func (s *FriendStore) ListRequests(ctx context.Context, userID string) ([]*models.Friend, error) {
	query := `
		SELECT u.user_id, u.username
		FROM friendships f
		JOIN users u ON u.user_id = f.friend1
		WHERE f.friend2 = $1 AND f.is_request = true
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friend requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.Friend
	for rows.Next() {
		f := &models.Friend{}
		if err := rows.Scan(&f.UserID, &f.Username); err != nil {
			return nil, err
		}
		requests = append(requests, f)
	}

	return requests, nil
}

func (s *FriendStore) SendRequest(ctx context.Context, fromID, toID string) error {
	query := `
		INSERT INTO friendships (friend1, friend2, is_request)
		VALUES ($1, $2, true)
	`
	if _, err := s.db.Exec(ctx, query, fromID, toID); err != nil {
		return fmt.Errorf("failed to create friend request: %w", err)
	}
	return nil
}

// AcceptRequest confirms a pending request from fromID to userID. It reports
// false when no such request exists.
func (s *FriendStore) AcceptRequest(ctx context.Context, userID, fromID string) (bool, error) {
	query := `
		UPDATE friendships
		SET is_request = false
		WHERE friend1 = $1 AND friend2 = $2 AND is_request = true
	`
	tag, err := s.db.Exec(ctx, query, fromID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to accept friend request: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *FriendStore) RemoveFriend(ctx context.Context, userID, otherID string) error {
	query := `
		DELETE FROM friendships
		WHERE (friend1 = $1 AND friend2 = $2) OR (friend1 = $2 AND friend2 = $1)
	`
	if _, err := s.db.Exec(ctx, query, userID, otherID); err != nil {
		return fmt.Errorf("failed to remove friend: %w", err)
	}
	return nil
}
