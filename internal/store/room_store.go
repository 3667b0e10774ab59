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

type RoomStore struct {
	coll *mongo.Collection
}

func NewRoomStore(db *mongo.Database) *RoomStore {
	return &RoomStore{coll: db.Collection("rooms")}
}

func (s *RoomStore) Get(ctx context.Context, id string) (*models.Room, error) {
	room := &models.Room{}
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(room)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get room by ID: %w", err)
	}
	return room, nil
}

// GetByToken resolves a room by its QR token within one game.
func (s *RoomStore) GetByToken(ctx context.Context, gameID, token string) (*models.Room, error) {
	room := &models.Room{}
	err := s.coll.FindOne(ctx, bson.M{"game_id": gameID, "qr_token": token}).Decode(room)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get room by token: %w", err)
	}
	return room, nil
}

func (s *RoomStore) ListByGame(ctx context.Context, gameID string) ([]*models.Room, error) {
	cur, err := s.coll.Find(ctx, bson.M{"game_id": gameID})
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	defer cur.Close(ctx)

	var rooms []*models.Room
	if err := cur.All(ctx, &rooms); err != nil {
		return nil, fmt.Errorf("failed to decode rooms: %w", err)
	}
	return rooms, nil
}

func (s *RoomStore) Create(ctx context.Context, r *models.Room) error {
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt
	if _, err := s.coll.InsertOne(ctx, r); err != nil {
		return fmt.Errorf("failed to insert room: %w", err)
	}
	return nil
}

func (s *RoomStore) Delete(ctx context.Context, id string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	return nil
}

func (s *RoomStore) DeleteByGame(ctx context.Context, gameID string) error {
	if _, err := s.coll.DeleteMany(ctx, bson.M{"game_id": gameID}); err != nil {
		return fmt.Errorf("failed to delete rooms for game %s: %w", gameID, err)
	}
	return nil
}
