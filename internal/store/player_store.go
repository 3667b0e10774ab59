package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/crewlink/crewlink-server/internal/models"
)

type PlayerStore struct {
	coll *mongo.Collection
}

func NewPlayerStore(db *mongo.Database) *PlayerStore {
	return &PlayerStore{coll: db.Collection("players")}
}

func (s *PlayerStore) Get(ctx context.Context, id string) (*models.Player, error) {
	player := &models.Player{}
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(player)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil // player not found
		}
		return nil, fmt.Errorf("failed to get player by ID: %w", err)
	}
	return player, nil
}

// GetByDevice resolves the unique player for a (game, device) pair.
func (s *PlayerStore) GetByDevice(ctx context.Context, gameID, deviceID string) (*models.Player, error) {
	player := &models.Player{}
	err := s.coll.FindOne(ctx, bson.M{"game_id": gameID, "device_id": deviceID}).Decode(player)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get player by device: %w", err)
	}
	return player, nil
}

func (s *PlayerStore) ListByGame(ctx context.Context, gameID string) ([]*models.Player, error) {
	cur, err := s.coll.Find(ctx, bson.M{"game_id": gameID})
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer cur.Close(ctx)

	var players []*models.Player
	if err := cur.All(ctx, &players); err != nil {
		return nil, fmt.Errorf("failed to decode players: %w", err)
	}
	return players, nil
}

func (s *PlayerStore) Create(ctx context.Context, p *models.Player) error {
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	if _, err := s.coll.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("failed to insert player: %w", err)
	}
	return nil
}

func (s *PlayerStore) Update(ctx context.Context, p *models.Player) error {
	p.UpdatedAt = time.Now()
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return fmt.Errorf("failed to update player: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("failed to update player %s: no document matched", p.ID)
	}
	return nil
}

func (s *PlayerStore) Delete(ctx context.Context, id string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete player: %w", err)
	}
	return nil
}

func (s *PlayerStore) DeleteByGame(ctx context.Context, gameID string) error {
	if _, err := s.coll.DeleteMany(ctx, bson.M{"game_id": gameID}); err != nil {
		return fmt.Errorf("failed to delete players for game %s: %w", gameID, err)
	}
	return nil
}
