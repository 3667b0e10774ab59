package game

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/crewlink/crewlink-server/internal/models"
	"github.com/crewlink/crewlink-server/internal/store"
)

type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *eventRecorder) Publish(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *eventRecorder) last(t EventType) *Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Type == t {
			e := r.events[i]
			return &e
		}
	}
	return nil
}

// fakeScheduler captures timer callbacks so tests control when the
// discussion and voting deadlines "fire".
type fakeScheduler struct {
	mu  sync.Mutex
	fns []func()
}

func (s *fakeScheduler) add(_ time.Duration, fn func()) {
	s.mu.Lock()
	s.fns = append(s.fns, fn)
	s.mu.Unlock()
}

// fireAll runs every pending callback once. Callbacks scheduled while
// firing are kept for the next call.
func (s *fakeScheduler) fireAll() {
	s.mu.Lock()
	fns := s.fns
	s.fns = nil
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

type fixture struct {
	t     *testing.T
	ctx   context.Context
	svc   *Service
	rec   *eventRecorder
	sched *fakeScheduler
	now   time.Time

	game    *models.Game
	players []*models.Player
	room    *models.Room
	tasks   []*models.Task
}

func newFixture(t *testing.T) *fixture {
	mem := store.NewMemoryStore()
	st := Stores{Games: mem.Games(), Players: mem.Players(), Rooms: mem.Rooms(), Tasks: mem.Tasks()}

	f := &fixture{
		t:     t,
		ctx:   context.Background(),
		rec:   &eventRecorder{},
		sched: &fakeScheduler{},
		now:   time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC),
	}

	svc := NewService(st, rand.New(rand.NewSource(42)), f.rec)
	svc.now = func() time.Time { return f.now }
	svc.schedule = f.sched.add
	f.svc = svc
	return f
}

func (f *fixture) advance(d time.Duration) { f.now = f.now.Add(d) }

func (f *fixture) createGame(settings *models.GameSettings) {
	g, err := f.svc.CreateGame(f.ctx, "friday night", "admin-1", settings)
	require.NoError(f.t, err)
	f.game = g
}

func (f *fixture) addPlayers(n int) {
	for i := 0; i < n; i++ {
		p, err := f.svc.JoinGame(f.ctx, f.game.JoinCode, fmt.Sprintf("player-%d", i), fmt.Sprintf("device-%d", i))
		require.NoError(f.t, err)
		f.players = append(f.players, p)
	}
}

func (f *fixture) addRoomAndTasks(taskCount int) {
	room, err := f.svc.CreateRoom(f.ctx, f.game.ID, "kitchen", "", nil)
	require.NoError(f.t, err)
	f.room = room

	for i := 0; i < taskCount; i++ {
		task, err := f.svc.CreateTask(f.ctx, f.game.ID, room.ID, fmt.Sprintf("task-%d", i), "",
			models.Verification{Method: models.VerifyManual}, nil)
		require.NoError(f.t, err)
		f.tasks = append(f.tasks, task)
	}
}

func (f *fixture) start() {
	g, err := f.svc.StartGame(f.ctx, f.game.ID)
	require.NoError(f.t, err)
	f.game = g
}

// startedGame builds the common scenario: n players, n tasks, defaults
// plus any settings override, started.
func startedGame(t *testing.T, n int, settings *models.GameSettings) *fixture {
	f := newFixture(t)
	f.createGame(settings)
	f.addPlayers(n)
	f.addRoomAndTasks(n)
	f.start()
	return f
}

func (f *fixture) reloadGame() *models.Game {
	g, err := f.svc.GetGame(f.ctx, f.game.ID)
	require.NoError(f.t, err)
	return g
}

func (f *fixture) reloadPlayers() []*models.Player {
	players, err := f.svc.ListPlayers(f.ctx, f.game.ID)
	require.NoError(f.t, err)
	return players
}

func (f *fixture) reloadPlayer(id string) *models.Player {
	p, err := f.svc.GetPlayer(f.ctx, f.game.ID, id)
	require.NoError(f.t, err)
	return p
}

func (f *fixture) byRole(role models.Role) []*models.Player {
	var out []*models.Player
	for _, p := range f.reloadPlayers() {
		if p.Role == role {
			out = append(out, p)
		}
	}
	return out
}

func (f *fixture) impostor() *models.Player { return f.byRole(models.RoleImpostor)[0] }
func (f *fixture) crewmate() *models.Player { return f.byRole(models.RoleCrewmate)[0] }

// moveToRoom scans the fixture room's QR token for each given player.
func (f *fixture) moveToRoom(playerIDs ...string) {
	for _, id := range playerIDs {
		_, err := f.svc.UpdateLocation(f.ctx, f.game.ID, id, f.room.QRToken)
		require.NoError(f.t, err)
	}
}

func (f *fixture) alive() []*models.Player {
	var out []*models.Player
	for _, p := range f.reloadPlayers() {
		if p.IsAlive {
			out = append(out, p)
		}
	}
	return out
}
