package game

import (
	"context"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/crewlink/crewlink-server/internal/models"
)

// Room and task management. Both are setup-time only: once a game is
// live the physical layout and task pool are fixed.

func (s *Service) CreateRoom(ctx context.Context, gameID, name, description string, entities []string) (*models.Room, error) {
	if name == "" {
		return nil, invalidf("room name is required")
	}

	unlock := s.locks.lock(gameID)
	defer unlock()

	g, err := s.loadGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if !g.InSetup() {
		return nil, conflictf("rooms can only be added while the game is in setup")
	}

	r := &models.Room{
		ID:                 uuid.New().String(),
		GameID:             g.ID,
		Name:               name,
		Description:        description,
		AutomationEntities: entities,
		QRToken:            uuid.New().String(),
	}
	if err := s.store.Rooms.Create(ctx, r); err != nil {
		return nil, internal("failed to create room", err)
	}

	log.Infof("room %s (%s) added to game %s", r.ID, r.Name, g.ID)
	return r, nil
}

func (s *Service) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	r, err := s.store.Rooms.Get(ctx, id)
	if err != nil {
		return nil, internal("failed to load room", err)
	}
	if r == nil {
		return nil, notFound("room", id)
	}
	return r, nil
}

func (s *Service) ListRooms(ctx context.Context, gameID string) ([]*models.Room, error) {
	if _, err := s.loadGame(ctx, gameID); err != nil {
		return nil, err
	}
	rooms, err := s.store.Rooms.ListByGame(ctx, gameID)
	if err != nil {
		return nil, internal("failed to list rooms", err)
	}
	return rooms, nil
}

func (s *Service) DeleteRoom(ctx context.Context, id string) error {
	r, err := s.GetRoom(ctx, id)
	if err != nil {
		return err
	}

	unlock := s.locks.lock(r.GameID)
	defer unlock()

	g, err := s.loadGame(ctx, r.GameID)
	if err != nil {
		return err
	}
	if !g.InSetup() {
		return conflictf("rooms can only be removed while the game is in setup")
	}

	if err := s.store.Rooms.Delete(ctx, r.ID); err != nil {
		return internal("failed to delete room", err)
	}
	return nil
}

func validVerifyMethod(m models.VerifyMethod) bool {
	switch m {
	case models.VerifyQRCode, models.VerifyManual, models.VerifyHomeAssistant, models.VerifyTimer:
		return true
	}
	return false
}

func (s *Service) CreateTask(ctx context.Context, gameID, roomID, name, description string, verification models.Verification, automation map[string]string) (*models.Task, error) {
	if name == "" {
		return nil, invalidf("task name is required")
	}
	if !validVerifyMethod(verification.Method) {
		return nil, invalidf("unknown verification method %q", verification.Method)
	}

	unlock := s.locks.lock(gameID)
	defer unlock()

	g, err := s.loadGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if !g.InSetup() {
		return nil, conflictf("tasks can only be added while the game is in setup")
	}

	room, err := s.store.Rooms.Get(ctx, roomID)
	if err != nil {
		return nil, internal("failed to load room", err)
	}
	if room == nil || room.GameID != g.ID {
		return nil, notFound("room", roomID)
	}

	t := &models.Task{
		ID:               uuid.New().String(),
		GameID:           g.ID,
		RoomID:           room.ID,
		Name:             name,
		Description:      description,
		Verification:     verification,
		AutomationConfig: automation,
	}
	if err := s.store.Tasks.Create(ctx, t); err != nil {
		return nil, internal("failed to create task", err)
	}

	log.Infof("task %s (%s) added to game %s room %s", t.ID, t.Name, g.ID, room.ID)
	return t, nil
}

func (s *Service) GetTask(ctx context.Context, id string) (*models.Task, error) {
	t, err := s.store.Tasks.Get(ctx, id)
	if err != nil {
		return nil, internal("failed to load task", err)
	}
	if t == nil {
		return nil, notFound("task", id)
	}
	return t, nil
}

func (s *Service) ListTasks(ctx context.Context, gameID string) ([]*models.Task, error) {
	if _, err := s.loadGame(ctx, gameID); err != nil {
		return nil, err
	}
	tasks, err := s.store.Tasks.ListByGame(ctx, gameID)
	if err != nil {
		return nil, internal("failed to list tasks", err)
	}
	return tasks, nil
}

func (s *Service) DeleteTask(ctx context.Context, id string) error {
	t, err := s.GetTask(ctx, id)
	if err != nil {
		return err
	}

	unlock := s.locks.lock(t.GameID)
	defer unlock()

	g, err := s.loadGame(ctx, t.GameID)
	if err != nil {
		return err
	}
	if !g.InSetup() {
		return conflictf("tasks can only be removed while the game is in setup")
	}

	if err := s.store.Tasks.Delete(ctx, t.ID); err != nil {
		return internal("failed to delete task", err)
	}
	return nil
}
