package game

import (
	"context"

	"github.com/crewlink/crewlink-server/internal/models"
)

// Store interfaces over the document store. Implementations return
// (nil, nil) when a document is absent; the engine turns that into a
// NotFoundError with context.

type GameStore interface {
	Get(ctx context.Context, id string) (*models.Game, error)
	GetByJoinCode(ctx context.Context, code string) (*models.Game, error)
	Create(ctx context.Context, g *models.Game) error
	Update(ctx context.Context, g *models.Game) error
	Delete(ctx context.Context, id string) error
	ListByStatus(ctx context.Context, statuses ...models.GameStatus) ([]*models.Game, error)
}

type PlayerStore interface {
	Get(ctx context.Context, id string) (*models.Player, error)
	GetByDevice(ctx context.Context, gameID, deviceID string) (*models.Player, error)
	ListByGame(ctx context.Context, gameID string) ([]*models.Player, error)
	Create(ctx context.Context, p *models.Player) error
	Update(ctx context.Context, p *models.Player) error
	Delete(ctx context.Context, id string) error
	DeleteByGame(ctx context.Context, gameID string) error
}

type RoomStore interface {
	Get(ctx context.Context, id string) (*models.Room, error)
	GetByToken(ctx context.Context, gameID, token string) (*models.Room, error)
	ListByGame(ctx context.Context, gameID string) ([]*models.Room, error)
	Create(ctx context.Context, r *models.Room) error
	Delete(ctx context.Context, id string) error
	DeleteByGame(ctx context.Context, gameID string) error
}

type TaskStore interface {
	Get(ctx context.Context, id string) (*models.Task, error)
	ListByGame(ctx context.Context, gameID string) ([]*models.Task, error)
	Create(ctx context.Context, t *models.Task) error
	Delete(ctx context.Context, id string) error
	DeleteByGame(ctx context.Context, gameID string) error
}

// Stores bundles the four entity stores the engine operates on.
type Stores struct {
	Games   GameStore
	Players PlayerStore
	Rooms   RoomStore
	Tasks   TaskStore
}
