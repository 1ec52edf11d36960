package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// archivedGame is the durable system-of-record document for a game. It is
// created active, then finalized with the closing scores when the game ends.
type archivedGame struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	CourtID    string             `bson:"courtId"`
	OwnerID    string             `bson:"ownerId"`
	ScoreLimit int                `bson:"scoreLimit"`
	TimeLimit  int                `bson:"timeLimit"`
	TeamSize   int                `bson:"teamSize"`
	Team1Score int                `bson:"team1Score"`
	Team2Score int                `bson:"team2Score"`
	IsActive   bool               `bson:"isActive"`
	CreatedAt  time.Time          `bson:"createdAt"`
}

// ArchiveStore talks to the durable game collection. It is the id assignment
// authority: every game identifier in the system originates here.
type ArchiveStore struct {
	games *mongo.Collection
}

func NewArchiveStore(db *mongo.Database) *ArchiveStore {
	return &ArchiveStore{games: db.Collection("games")}
}

// CreateGameRecord inserts the durable record for a new game and returns its
// assigned identifier.
func (s *ArchiveStore) CreateGameRecord(ctx context.Context, courtID, ownerID string, scoreLimit, timeLimit, teamSize int) (string, error) {
	doc := archivedGame{
		CourtID:    courtID,
		OwnerID:    ownerID,
		ScoreLimit: scoreLimit,
		TimeLimit:  timeLimit,
		TeamSize:   teamSize,
		IsActive:   true,
		CreatedAt:  time.Now().UTC(),
	}

	result, err := s.games.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("failed to create game record: %w", err)
	}

	id, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", result.InsertedID)
	}
	return id.Hex(), nil
}

// FindActiveGameByCourt returns the id of the active game bound to the
// court, or "" when the court is free.
func (s *ArchiveStore) FindActiveGameByCourt(ctx context.Context, courtID string) (string, error) {
	doc := archivedGame{}
	err := s.games.FindOne(ctx, bson.M{"courtId": courtID, "isActive": true}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to find active game for court %s: %w", courtID, err)
	}
	return doc.ID.Hex(), nil
}

// FinalizeGame persists the closing scores and marks the record inactive.
func (s *ArchiveStore) FinalizeGame(ctx context.Context, gameID string, team1Score, team2Score int) error {
	id, err := primitive.ObjectIDFromHex(gameID)
	if err != nil {
		return fmt.Errorf("invalid game id %s: %w", gameID, err)
	}

	update := bson.M{"$set": bson.M{
		"team1Score": team1Score,
		"team2Score": team2Score,
		"isActive":   false,
	}}
	if _, err := s.games.UpdateByID(ctx, id, update); err != nil {
		return fmt.Errorf("failed to finalize game %s: %w", gameID, err)
	}
	return nil
}
