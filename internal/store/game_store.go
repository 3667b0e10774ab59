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

type GameStore struct {
	coll *mongo.Collection
}

func NewGameStore(db *mongo.Database) *GameStore {
	return &GameStore{coll: db.Collection("games")}
}

func (s *GameStore) Get(ctx context.Context, id string) (*models.Game, error) {
	game := &models.Game{}
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(game)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil // game not found
		}
		return nil, fmt.Errorf("failed to get game by ID: %w", err)
	}
	return game, nil
}

func (s *GameStore) GetByJoinCode(ctx context.Context, code string) (*models.Game, error) {
	game := &models.Game{}
	err := s.coll.FindOne(ctx, bson.M{"join_code": code}).Decode(game)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get game by join code: %w", err)
	}
	return game, nil
}

func (s *GameStore) Create(ctx context.Context, g *models.Game) error {
	g.CreatedAt = time.Now()
	g.UpdatedAt = g.CreatedAt
	if _, err := s.coll.InsertOne(ctx, g); err != nil {
		return fmt.Errorf("failed to insert game: %w", err)
	}
	return nil
}

func (s *GameStore) Update(ctx context.Context, g *models.Game) error {
	g.UpdatedAt = time.Now()
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": g.ID}, g)
	if err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("failed to update game %s: no document matched", g.ID)
	}
	return nil
}

func (s *GameStore) Delete(ctx context.Context, id string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}
	return nil
}

func (s *GameStore) ListByStatus(ctx context.Context, statuses ...models.GameStatus) ([]*models.Game, error) {
	cur, err := s.coll.Find(ctx, bson.M{"status": bson.M{"$in": statuses}})
	if err != nil {
		return nil, fmt.Errorf("failed to list games by status: %w", err)
	}
	defer cur.Close(ctx)

	var games []*models.Game
	if err := cur.All(ctx, &games); err != nil {
		return nil, fmt.Errorf("failed to decode games: %w", err)
	}
	return games, nil
}
