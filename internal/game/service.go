package game

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/crewlink/crewlink-server/internal/models"
)

// joinCodeAlphabet avoids easily confused characters.
const joinCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const joinCodeLen = 6

// Service is the authoritative game engine. Every mutation — whether it
// arrives over HTTP, over a websocket, or from a timer — goes through
// one method here under the per-game lock, so the read-modify-write
// span of each operation is serialized per game.
type Service struct {
	store Stores
	sinks []Sink
	locks *keyedLocks

	rnd   *rand.Rand
	rndMu sync.Mutex

	// test seams; production values set by NewService
	now      func() time.Time
	schedule func(d time.Duration, fn func())
}

// NewService builds the engine. rnd may be nil, in which case a
// time-seeded source is used; tests pass a seeded source so role and
// task assignment is deterministic.
func NewService(st Stores, rnd *rand.Rand, sinks ...Sink) *Service {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		store:    st,
		sinks:    sinks,
		locks:    newKeyedLocks(),
		rnd:      rnd,
		now:      time.Now,
		schedule: func(d time.Duration, fn func()) { time.AfterFunc(d, fn) },
	}
}

// shuffle runs fn under the rand mutex; the per-game lock does not
// cover the shared random source.
func (s *Service) shuffle(n int, swap func(i, j int)) {
	s.rndMu.Lock()
	s.rnd.Shuffle(n, swap)
	s.rndMu.Unlock()
}

func (s *Service) randIntn(n int) int {
	s.rndMu.Lock()
	defer s.rndMu.Unlock()
	return s.rnd.Intn(n)
}

func (s *Service) newJoinCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 10; attempt++ {
		var b strings.Builder
		for i := 0; i < joinCodeLen; i++ {
			b.WriteByte(joinCodeAlphabet[s.randIntn(len(joinCodeAlphabet))])
		}
		code := b.String()

		existing, err := s.store.Games.GetByJoinCode(ctx, code)
		if err != nil {
			return "", internal("failed to check join code", err)
		}
		if existing == nil {
			return code, nil
		}
	}
	return "", internal("failed to generate join code", errJoinCodeExhausted)
}

var errJoinCodeExhausted = &StateConflictError{Msg: "join code space exhausted"}

// loadGame fetches a game or returns a NotFoundError.
func (s *Service) loadGame(ctx context.Context, id string) (*models.Game, error) {
	g, err := s.store.Games.Get(ctx, id)
	if err != nil {
		return nil, internal("failed to load game", err)
	}
	if g == nil {
		return nil, notFound("game", id)
	}
	return g, nil
}

func (s *Service) loadPlayer(ctx context.Context, gameID, playerID string) (*models.Player, error) {
	p, err := s.store.Players.Get(ctx, playerID)
	if err != nil {
		return nil, internal("failed to load player", err)
	}
	if p == nil || p.GameID != gameID {
		return nil, notFound("player", playerID)
	}
	return p, nil
}

func validateSettings(st models.GameSettings) error {
	switch {
	case st.ImpostorCount < 1:
		return invalidf("impostor count must be at least 1")
	case st.DiscussionTimeSec < 30:
		return invalidf("discussion time must be at least 30 seconds")
	case st.VotingTimeSec < 15:
		return invalidf("voting time must be at least 15 seconds")
	case st.KillCooldownSec < 10:
		return invalidf("kill cooldown must be at least 10 seconds")
	case st.EmergencyMeetingsPerPlayer < 0:
		return invalidf("emergency meetings per player cannot be negative")
	}
	return nil
}

// CreateGame creates a game in setup owned by the given admin.
func (s *Service) CreateGame(ctx context.Context, name, createdBy string, settings *models.GameSettings) (*models.Game, error) {
	if name == "" {
		return nil, invalidf("game name is required")
	}

	st := models.DefaultSettings()
	if settings != nil {
		st = *settings
	}
	if err := validateSettings(st); err != nil {
		return nil, err
	}

	code, err := s.newJoinCode(ctx)
	if err != nil {
		return nil, err
	}

	g := &models.Game{
		ID:        uuid.New().String(),
		JoinCode:  code,
		Name:      name,
		Status:    models.StatusSetup,
		Settings:  st,
		CreatedBy: createdBy,
	}
	g.AppendEvent(models.GameEvent{Type: "game-created", Actor: createdBy, Timestamp: s.now()})

	if err := s.store.Games.Create(ctx, g); err != nil {
		return nil, internal("failed to create game", err)
	}

	log.Infof("game %s created with join code %s", g.ID, g.JoinCode)
	return g, nil
}

func (s *Service) GetGame(ctx context.Context, id string) (*models.Game, error) {
	return s.loadGame(ctx, id)
}

func (s *Service) GetGameByJoinCode(ctx context.Context, code string) (*models.Game, error) {
	g, err := s.store.Games.GetByJoinCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, internal("failed to load game", err)
	}
	if g == nil {
		return nil, notFound("game", code)
	}
	return g, nil
}

// UpdateGame changes the name and/or settings. Settings are immutable
// while a game is live; updates are accepted only in setup or completed.
func (s *Service) UpdateGame(ctx context.Context, id string, name *string, settings *models.GameSettings) (*models.Game, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	g, err := s.loadGame(ctx, id)
	if err != nil {
		return nil, err
	}
	if !g.InSetup() && !g.Completed() {
		return nil, conflictf("game settings can only be changed in setup or after completion")
	}

	if name != nil {
		if *name == "" {
			return nil, invalidf("game name cannot be empty")
		}
		g.Name = *name
	}
	if settings != nil {
		if err := validateSettings(*settings); err != nil {
			return nil, err
		}
		g.Settings = *settings
	}

	if err := s.store.Games.Update(ctx, g); err != nil {
		return nil, internal("failed to update game", err)
	}

	s.publish(Event{Type: EventGameUpdated, GameID: g.ID, Game: g})
	return g, nil
}

// DeleteGame removes the game and cascades to its players, rooms and
// tasks.
func (s *Service) DeleteGame(ctx context.Context, id string) error {
	unlock := s.locks.lock(id)
	defer unlock()

	g, err := s.loadGame(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.Players.DeleteByGame(ctx, g.ID); err != nil {
		return internal("failed to delete players", err)
	}
	if err := s.store.Tasks.DeleteByGame(ctx, g.ID); err != nil {
		return internal("failed to delete tasks", err)
	}
	if err := s.store.Rooms.DeleteByGame(ctx, g.ID); err != nil {
		return internal("failed to delete rooms", err)
	}
	if err := s.store.Games.Delete(ctx, g.ID); err != nil {
		return internal("failed to delete game", err)
	}

	log.Infof("game %s deleted", id)
	return nil
}

// EndGame force-completes a game from any non-completed state. Used by
// the admin; no winner is recorded.
func (s *Service) EndGame(ctx context.Context, id, endedBy string) (*models.Game, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	g, err := s.loadGame(ctx, id)
	if err != nil {
		return nil, err
	}
	if g.Completed() {
		return nil, conflictf("game is already completed")
	}

	now := s.now()
	g.Status = models.StatusCompleted
	g.EndTime = &now
	g.Meeting = nil
	g.WinReason = "ended-by-admin"
	g.AppendEvent(models.GameEvent{Type: "game-ended", Actor: endedBy, Message: "ended by admin", Timestamp: now})

	if err := s.store.Games.Update(ctx, g); err != nil {
		return nil, internal("failed to end game", err)
	}

	s.publish(Event{Type: EventGameEnded, GameID: g.ID, Reason: g.WinReason, Game: g})
	return g, nil
}

// JoinGame adds a player to a game in setup, or reconnects the existing
// player for the same (game, device) pair in any state.
func (s *Service) JoinGame(ctx context.Context, joinCode, name, deviceID string) (*models.Player, error) {
	if name == "" {
		return nil, invalidf("player name is required")
	}
	if deviceID == "" {
		return nil, invalidf("device id is required")
	}

	g, err := s.GetGameByJoinCode(ctx, joinCode)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(g.ID)
	defer unlock()

	// the lookup above ran outside the lock and only resolved the code
	// to an id; re-read under the lock so the setup check and the
	// write-back below cannot race a concurrent start
	g, err = s.loadGame(ctx, g.ID)
	if err != nil {
		return nil, err
	}

	// device pairs update in place so a rejoining phone keeps its player
	existing, err := s.store.Players.GetByDevice(ctx, g.ID, deviceID)
	if err != nil {
		return nil, internal("failed to look up player by device", err)
	}
	if existing != nil {
		existing.Name = name
		existing.Connected = true
		if err := s.store.Players.Update(ctx, existing); err != nil {
			return nil, internal("failed to update player", err)
		}
		s.publish(Event{Type: EventPlayerJoined, GameID: g.ID, ActorID: existing.ID, ActorName: existing.Name})
		return existing, nil
	}

	if !g.InSetup() {
		return nil, conflictf("game has already started")
	}

	players, err := s.store.Players.ListByGame(ctx, g.ID)
	if err != nil {
		return nil, internal("failed to list players", err)
	}
	if len(players) >= len(models.Colors) {
		return nil, conflictf("game is full")
	}

	color, err := pickColor(players)
	if err != nil {
		return nil, err
	}

	p := &models.Player{
		ID:        uuid.New().String(),
		GameID:    g.ID,
		Name:      name,
		DeviceID:  deviceID,
		IsAlive:   true,
		Color:     color,
		Connected: true,
	}
	if err := s.store.Players.Create(ctx, p); err != nil {
		return nil, internal("failed to create player", err)
	}

	g.AppendEvent(models.GameEvent{Type: "player-joined", Actor: p.ID, Message: p.Name, Timestamp: s.now()})
	if err := s.store.Games.Update(ctx, g); err != nil {
		log.Errorf("failed to log join for game %s: %v", g.ID, err)
	}

	s.publish(Event{Type: EventPlayerJoined, GameID: g.ID, ActorID: p.ID, ActorName: p.Name})
	return p, nil
}

// pickColor returns the first palette color not yet taken in the game.
func pickColor(players []*models.Player) (string, error) {
	taken := make(map[string]bool, len(players))
	for _, p := range players {
		taken[p.Color] = true
	}
	for _, c := range models.Colors {
		if !taken[c] {
			return c, nil
		}
	}
	return "", conflictf("no player colors left")
}

// LeaveGame removes a player while the game is in setup; once the game
// is live the player record stays (roles are fixed) and the player is
// only marked disconnected.
func (s *Service) LeaveGame(ctx context.Context, gameID, playerID string) error {
	unlock := s.locks.lock(gameID)
	defer unlock()

	g, err := s.loadGame(ctx, gameID)
	if err != nil {
		return err
	}
	p, err := s.loadPlayer(ctx, gameID, playerID)
	if err != nil {
		return err
	}

	if g.InSetup() {
		if err := s.store.Players.Delete(ctx, p.ID); err != nil {
			return internal("failed to delete player", err)
		}
	} else {
		p.Connected = false
		if err := s.store.Players.Update(ctx, p); err != nil {
			return internal("failed to update player", err)
		}
	}

	g.AppendEvent(models.GameEvent{Type: "player-left", Actor: p.ID, Message: p.Name, Timestamp: s.now()})
	if err := s.store.Games.Update(ctx, g); err != nil {
		log.Errorf("failed to log leave for game %s: %v", g.ID, err)
	}

	s.publish(Event{Type: EventPlayerLeft, GameID: g.ID, ActorID: p.ID, ActorName: p.Name})
	return nil
}

func (s *Service) GetPlayer(ctx context.Context, gameID, playerID string) (*models.Player, error) {
	return s.loadPlayer(ctx, gameID, playerID)
}

func (s *Service) GetPlayerByDevice(ctx context.Context, gameID, deviceID string) (*models.Player, error) {
	p, err := s.store.Players.GetByDevice(ctx, gameID, deviceID)
	if err != nil {
		return nil, internal("failed to load player", err)
	}
	if p == nil {
		return nil, notFound("player", deviceID)
	}
	return p, nil
}

func (s *Service) ListPlayers(ctx context.Context, gameID string) ([]*models.Player, error) {
	if _, err := s.loadGame(ctx, gameID); err != nil {
		return nil, err
	}
	players, err := s.store.Players.ListByGame(ctx, gameID)
	if err != nil {
		return nil, internal("failed to list players", err)
	}
	return players, nil
}

// SetConnected flags a player's realtime connection state without any
// gameplay effect.
func (s *Service) SetConnected(ctx context.Context, gameID, playerID string, connected bool) error {
	unlock := s.locks.lock(gameID)
	defer unlock()

	p, err := s.loadPlayer(ctx, gameID, playerID)
	if err != nil {
		return err
	}
	p.Connected = connected
	if err := s.store.Players.Update(ctx, p); err != nil {
		return internal("failed to update player", err)
	}
	return nil
}
