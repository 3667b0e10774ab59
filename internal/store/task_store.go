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

type TaskStore struct {
	coll *mongo.Collection
}

func NewTaskStore(db *mongo.Database) *TaskStore {
	return &TaskStore{coll: db.Collection("tasks")}
}

func (s *TaskStore) Get(ctx context.Context, id string) (*models.Task, error) {
	task := &models.Task{}
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(task)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get task by ID: %w", err)
	}
	return task, nil
}

func (s *TaskStore) ListByGame(ctx context.Context, gameID string) ([]*models.Task, error) {
	cur, err := s.coll.Find(ctx, bson.M{"game_id": gameID})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer cur.Close(ctx)

	var tasks []*models.Task
	if err := cur.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskStore) Create(ctx context.Context, t *models.Task) error {
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	if _, err := s.coll.InsertOne(ctx, t); err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

func (s *TaskStore) Delete(ctx context.Context, id string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

func (s *TaskStore) DeleteByGame(ctx context.Context, gameID string) error {
	if _, err := s.coll.DeleteMany(ctx, bson.M{"game_id": gameID}); err != nil {
		return fmt.Errorf("failed to delete tasks for game %s: %w", gameID, err)
	}
	return nil
}
