package store

import (
	"context"
	"sync"

	"github.com/crewlink/crewlink-server/internal/models"
)

// MemoryStore is an in-memory document store used by tests and local
// development. Documents are copied on the way in and out so callers
// hold snapshots, matching the read-modify-write contract of the
// mongo-backed stores.
type MemoryStore struct {
	mu      sync.RWMutex
	games   map[string]*models.Game
	players map[string]*models.Player
	rooms   map[string]*models.Room
	tasks   map[string]*models.Task
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		games:   make(map[string]*models.Game),
		players: make(map[string]*models.Player),
		rooms:   make(map[string]*models.Room),
		tasks:   make(map[string]*models.Task),
	}
}

func (s *MemoryStore) Games() *MemoryGames     { return &MemoryGames{s} }
func (s *MemoryStore) Players() *MemoryPlayers { return &MemoryPlayers{s} }
func (s *MemoryStore) Rooms() *MemoryRooms     { return &MemoryRooms{s} }
func (s *MemoryStore) Tasks() *MemoryTasks     { return &MemoryTasks{s} }

type MemoryGames struct{ s *MemoryStore }

func (g *MemoryGames) Get(_ context.Context, id string) (*models.Game, error) {
	g.s.mu.RLock()
	defer g.s.mu.RUnlock()
	if game, ok := g.s.games[id]; ok {
		return game.Clone(), nil
	}
	return nil, nil
}

func (g *MemoryGames) GetByJoinCode(_ context.Context, code string) (*models.Game, error) {
	g.s.mu.RLock()
	defer g.s.mu.RUnlock()
	for _, game := range g.s.games {
		if game.JoinCode == code {
			return game.Clone(), nil
		}
	}
	return nil, nil
}

func (g *MemoryGames) Create(_ context.Context, game *models.Game) error {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()
	g.s.games[game.ID] = game.Clone()
	return nil
}

func (g *MemoryGames) Update(_ context.Context, game *models.Game) error {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()
	g.s.games[game.ID] = game.Clone()
	return nil
}

func (g *MemoryGames) Delete(_ context.Context, id string) error {
	g.s.mu.Lock()
	defer g.s.mu.Unlock()
	delete(g.s.games, id)
	return nil
}

func (g *MemoryGames) ListByStatus(_ context.Context, statuses ...models.GameStatus) ([]*models.Game, error) {
	g.s.mu.RLock()
	defer g.s.mu.RUnlock()
	var out []*models.Game
	for _, game := range g.s.games {
		for _, st := range statuses {
			if game.Status == st {
				out = append(out, game.Clone())
				break
			}
		}
	}
	return out, nil
}

type MemoryPlayers struct{ s *MemoryStore }

func (p *MemoryPlayers) Get(_ context.Context, id string) (*models.Player, error) {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()
	if pl, ok := p.s.players[id]; ok {
		return pl.Clone(), nil
	}
	return nil, nil
}

func (p *MemoryPlayers) GetByDevice(_ context.Context, gameID, deviceID string) (*models.Player, error) {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()
	for _, pl := range p.s.players {
		if pl.GameID == gameID && pl.DeviceID == deviceID {
			return pl.Clone(), nil
		}
	}
	return nil, nil
}

func (p *MemoryPlayers) ListByGame(_ context.Context, gameID string) ([]*models.Player, error) {
	p.s.mu.RLock()
	defer p.s.mu.RUnlock()
	var out []*models.Player
	for _, pl := range p.s.players {
		if pl.GameID == gameID {
			out = append(out, pl.Clone())
		}
	}
	return out, nil
}

func (p *MemoryPlayers) Create(_ context.Context, pl *models.Player) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	p.s.players[pl.ID] = pl.Clone()
	return nil
}

func (p *MemoryPlayers) Update(_ context.Context, pl *models.Player) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	p.s.players[pl.ID] = pl.Clone()
	return nil
}

func (p *MemoryPlayers) Delete(_ context.Context, id string) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	delete(p.s.players, id)
	return nil
}

func (p *MemoryPlayers) DeleteByGame(_ context.Context, gameID string) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	for id, pl := range p.s.players {
		if pl.GameID == gameID {
			delete(p.s.players, id)
		}
	}
	return nil
}

type MemoryRooms struct{ s *MemoryStore }

func (r *MemoryRooms) Get(_ context.Context, id string) (*models.Room, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if rm, ok := r.s.rooms[id]; ok {
		return rm.Clone(), nil
	}
	return nil, nil
}

func (r *MemoryRooms) GetByToken(_ context.Context, gameID, token string) (*models.Room, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, rm := range r.s.rooms {
		if rm.GameID == gameID && rm.QRToken == token {
			return rm.Clone(), nil
		}
	}
	return nil, nil
}

func (r *MemoryRooms) ListByGame(_ context.Context, gameID string) ([]*models.Room, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*models.Room
	for _, rm := range r.s.rooms {
		if rm.GameID == gameID {
			out = append(out, rm.Clone())
		}
	}
	return out, nil
}

func (r *MemoryRooms) Create(_ context.Context, rm *models.Room) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.rooms[rm.ID] = rm.Clone()
	return nil
}

func (r *MemoryRooms) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.rooms, id)
	return nil
}

func (r *MemoryRooms) DeleteByGame(_ context.Context, gameID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, rm := range r.s.rooms {
		if rm.GameID == gameID {
			delete(r.s.rooms, id)
		}
	}
	return nil
}

type MemoryTasks struct{ s *MemoryStore }

func (t *MemoryTasks) Get(_ context.Context, id string) (*models.Task, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	if tk, ok := t.s.tasks[id]; ok {
		return tk.Clone(), nil
	}
	return nil, nil
}

func (t *MemoryTasks) ListByGame(_ context.Context, gameID string) ([]*models.Task, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	var out []*models.Task
	for _, tk := range t.s.tasks {
		if tk.GameID == gameID {
			out = append(out, tk.Clone())
		}
	}
	return out, nil
}

func (t *MemoryTasks) Create(_ context.Context, tk *models.Task) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	t.s.tasks[tk.ID] = tk.Clone()
	return nil
}

func (t *MemoryTasks) Delete(_ context.Context, id string) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	delete(t.s.tasks, id)
	return nil
}

func (t *MemoryTasks) DeleteByGame(_ context.Context, gameID string) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	for id, tk := range t.s.tasks {
		if tk.GameID == gameID {
			delete(t.s.tasks, id)
		}
	}
	return nil
}
