package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/courtside/hoop-services/internal/playsvc/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserStore struct {
	db *pgxpool.Pool
}

func NewUserStore(db *pgxpool.Pool) *UserStore {
	return &UserStore{db: db}
}

func (r *UserStore) GetByID(ctx context.Context, userID string) (*models.User, error) {
	row := r.db.QueryRow(ctx, `
        SELECT user_id, username, email, avatar, created_at, updated_at
        FROM users
        WHERE user_id = $1
    `, userID)

	u := &models.User{}
	err := row.Scan(
		&u.UserID,
		&u.Username,
		&u.Email,
		&u.Avatar,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // user not found
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return u, nil
}
