package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/courtside/hoop-services/internal/playsvc/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CourtStore struct {
	db *pgxpool.Pool
}

func NewCourtStore(db *pgxpool.Pool) *CourtStore {
	return &CourtStore{db: db}
}

// FindCourt returns nil, nil when no court exists with the given id.
func (s *CourtStore) FindCourt(ctx context.Context, courtID string) (*models.Court, error) {
	query := `
		SELECT id, name, lat, lng, hoop_ids, created_at, updated_at
		FROM courts
		WHERE id = $1
	`

	court := &models.Court{}
	err := s.db.QueryRow(ctx, query, courtID).Scan(
		&court.ID,
		&court.Name,
		&court.Latitude,
		&court.Longitude,
		&court.HoopIDs,
		&court.CreatedAt,
		&court.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // court not found
		}
		return nil, fmt.Errorf("failed to get court by ID: %w", err)
	}

	return court, nil
}

// FindCourtByHoops resolves a court from the pair of hoop markers the mobile
// client scanned.
func (s *CourtStore) FindCourtByHoops(ctx context.Context, hoopA, hoopB string) (*models.Court, error) {
	query := `
		SELECT id, name, lat, lng, hoop_ids, created_at, updated_at
		FROM courts
		WHERE hoop_ids @> ARRAY[$1, $2]::text[]
		LIMIT 1
	`

	court := &models.Court{}
	err := s.db.QueryRow(ctx, query, hoopA, hoopB).Scan(
		&court.ID,
		&court.Name,
		&court.Latitude,
		&court.Longitude,
		&court.HoopIDs,
		&court.CreatedAt,
		&court.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get court by hoops: %w", err)
	}

	return court, nil
}
