package game

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/crewlink/crewlink-server/internal/models"
)

const (
	minPlayers        = 4
	impostorTaskCount = 3
	crewmateTaskCount = 4
)

// StartGame runs the one-shot role and task assignment and moves the
// game from setup to in-progress. Player writes happen before the game
// write; a failure partway is surfaced as an UnexpectedError with no
// automatic rollback, but the assignment is retry-safe because a fresh
// Start recomputes every player from scratch while the game is still
// in setup.
func (s *Service) StartGame(ctx context.Context, gameID string) (*models.Game, error) {
	unlock := s.locks.lock(gameID)
	defer unlock()

	g, err := s.loadGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if !g.InSetup() {
		return nil, conflictf("game has already started")
	}

	players, err := s.store.Players.ListByGame(ctx, g.ID)
	if err != nil {
		return nil, internal("failed to list players", err)
	}
	tasks, err := s.store.Tasks.ListByGame(ctx, g.ID)
	if err != nil {
		return nil, internal("failed to list tasks", err)
	}

	if len(players) < minPlayers {
		return nil, conflictf("not enough players: need at least %d, have %d", minPlayers, len(players))
	}
	if len(tasks) < len(players) {
		return nil, conflictf("not enough tasks: need at least %d, have %d", len(players), len(tasks))
	}
	if g.Settings.ImpostorCount*2 >= len(players) {
		return nil, conflictf("impostor count %d is too high for %d players", g.Settings.ImpostorCount, len(players))
	}

	taskPool := make([]string, len(tasks))
	for i, t := range tasks {
		taskPool[i] = t.ID
	}

	s.assignRoles(players, g.Settings.ImpostorCount)

	now := s.now()
	for _, p := range players {
		p.AssignedTasks = s.sampleTasks(taskPool, taskQuota(p.Role))
		p.CompletedTasks = nil
		p.IsAlive = true
		p.EmergencyMeetingsLeft = g.Settings.EmergencyMeetingsPerPlayer
		p.LastKillAt = nil

		if err := s.store.Players.Update(ctx, p); err != nil {
			return nil, internal("failed to persist player assignment", err)
		}
	}

	g.Status = models.StatusInProgress
	g.StartTime = &now
	g.CurrentRound = 1
	g.AppendEvent(models.GameEvent{Type: "game-started", Timestamp: now})

	if err := s.store.Games.Update(ctx, g); err != nil {
		return nil, internal("failed to persist game start", err)
	}

	log.Infof("game %s started with %d players, %d impostors", g.ID, len(players), g.Settings.ImpostorCount)
	s.publish(Event{Type: EventGameStarted, GameID: g.ID, Game: g})
	return g, nil
}

// assignRoles shuffles the roster uniformly and marks the first
// impostorCount players as impostors.
func (s *Service) assignRoles(players []*models.Player, impostorCount int) {
	s.shuffle(len(players), func(i, j int) {
		players[i], players[j] = players[j], players[i]
	})
	for i, p := range players {
		if i < impostorCount {
			p.Role = models.RoleImpostor
		} else {
			p.Role = models.RoleCrewmate
		}
	}
}

func taskQuota(role models.Role) int {
	if role == models.RoleImpostor {
		return impostorTaskCount
	}
	return crewmateTaskCount
}

// sampleTasks shuffles a copy of the pool and takes a prefix. The pool
// is shared across players: two players may get the same task.
func (s *Service) sampleTasks(pool []string, n int) []string {
	ids := append([]string(nil), pool...)
	s.shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})
	if n > len(ids) {
		n = len(ids)
	}
	return ids[:n]
}
