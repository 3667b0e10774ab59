package game

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/crewlink/crewlink-server/internal/models"
)

// Kill eliminates a crewmate (or a fellow impostor — the engine does
// not stop friendly fire). Both players must be in the same room and
// the actor's cooldown must have elapsed.
func (s *Service) Kill(ctx context.Context, gameID, actorID, targetID string) (*models.Player, error) {
	unlock := s.locks.lock(gameID)
	defer unlock()

	g, err := s.loadGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if g.Status != models.StatusInProgress {
		return nil, conflictf("kills are only possible while the game is in progress")
	}

	actor, err := s.loadPlayer(ctx, gameID, actorID)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleImpostor {
		return nil, conflictf("only impostors can kill")
	}
	if !actor.IsAlive {
		return nil, conflictf("dead impostors cannot kill")
	}

	now := s.now()
	if actor.LastKillAt != nil {
		ready := actor.LastKillAt.Add(time.Duration(g.Settings.KillCooldownSec) * time.Second)
		if now.Before(ready) {
			return nil, conflictf("kill cooldown: %d seconds remaining", int(ready.Sub(now).Seconds())+1)
		}
	}

	target, err := s.loadPlayer(ctx, gameID, targetID)
	if err != nil {
		return nil, err
	}
	if !target.IsAlive {
		return nil, conflictf("%s is already dead", target.Name)
	}
	if actor.CurrentRoomID == "" || target.CurrentRoomID == "" || actor.CurrentRoomID != target.CurrentRoomID {
		return nil, conflictf("target is not in the same room")
	}

	target.IsAlive = false
	if err := s.store.Players.Update(ctx, target); err != nil {
		return nil, internal("failed to persist kill", err)
	}
	actor.LastKillAt = &now
	if err := s.store.Players.Update(ctx, actor); err != nil {
		return nil, internal("failed to persist kill cooldown", err)
	}

	players, err := s.store.Players.ListByGame(ctx, g.ID)
	if err != nil {
		return nil, internal("failed to list players", err)
	}

	g.AppendEvent(models.GameEvent{
		Type:      "player-killed",
		Actor:     actor.ID,
		Target:    target.ID,
		RoomID:    actor.CurrentRoomID,
		Timestamp: now,
	})
	won := s.applyWin(g, players, triggerKill)

	if err := s.store.Games.Update(ctx, g); err != nil {
		return nil, internal("failed to persist kill log", err)
	}

	s.publish(Event{
		Type:       EventPlayerKilled,
		GameID:     g.ID,
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		TargetID:   target.ID,
		TargetName: target.Name,
	})
	if won {
		s.publish(Event{Type: EventGameEnded, GameID: g.ID, Winner: g.Winner, Reason: g.WinReason, Game: g})
	}
	return target, nil
}

// CompleteTask records a task completion for the acting player and
// re-evaluates the win condition. Each assigned task counts once.
func (s *Service) CompleteTask(ctx context.Context, gameID, playerID, taskID string) (*models.Player, error) {
	unlock := s.locks.lock(gameID)
	defer unlock()

	g, err := s.loadGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if g.Status != models.StatusInProgress {
		return nil, conflictf("tasks can only be completed while the game is in progress")
	}

	p, err := s.loadPlayer(ctx, gameID, playerID)
	if err != nil {
		return nil, err
	}
	if !p.IsAlive {
		return nil, conflictf("dead players cannot complete tasks")
	}
	if !p.IsAssigned(taskID) {
		return nil, conflictf("task is not assigned to %s", p.Name)
	}
	if p.HasCompleted(taskID) {
		return nil, conflictf("task already completed")
	}

	now := s.now()
	p.CompletedTasks = append(p.CompletedTasks, models.TaskCompletion{TaskID: taskID, CompletedAt: now})
	if err := s.store.Players.Update(ctx, p); err != nil {
		return nil, internal("failed to persist task completion", err)
	}

	players, err := s.store.Players.ListByGame(ctx, g.ID)
	if err != nil {
		return nil, internal("failed to list players", err)
	}

	g.AppendEvent(models.GameEvent{Type: "task-completed", Actor: p.ID, TaskID: taskID, Timestamp: now})
	won := s.applyWin(g, players, triggerTask)

	if err := s.store.Games.Update(ctx, g); err != nil {
		return nil, internal("failed to persist task log", err)
	}

	s.publish(Event{Type: EventTaskCompleted, GameID: g.ID, ActorID: p.ID, ActorName: p.Name})
	if won {
		s.publish(Event{Type: EventGameEnded, GameID: g.ID, Winner: g.Winner, Reason: g.WinReason, Game: g})
	}
	return p, nil
}

// UpdateLocation moves a player to the room whose QR token they
// scanned. Dead players keep moving; their ghosts still roam the house.
func (s *Service) UpdateLocation(ctx context.Context, gameID, playerID, roomToken string) (*models.Room, error) {
	unlock := s.locks.lock(gameID)
	defer unlock()

	g, err := s.loadGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if !g.Playing() {
		return nil, conflictf("location updates are only accepted while the game is live")
	}

	p, err := s.loadPlayer(ctx, gameID, playerID)
	if err != nil {
		return nil, err
	}

	room, err := s.store.Rooms.GetByToken(ctx, g.ID, roomToken)
	if err != nil {
		return nil, internal("failed to resolve room token", err)
	}
	if room == nil {
		return nil, notFound("room", roomToken)
	}

	p.CurrentRoomID = room.ID
	if err := s.store.Players.Update(ctx, p); err != nil {
		return nil, internal("failed to persist location", err)
	}

	log.Debugf("player %s moved to room %s in game %s", p.ID, room.ID, g.ID)
	s.publish(Event{Type: EventLocationChanged, GameID: g.ID, ActorID: p.ID, ActorName: p.Name, Message: room.Name})
	return room, nil
}

// Chat appends a chat line to the game log and fans it out.
func (s *Service) Chat(ctx context.Context, gameID, playerID, message string) error {
	if message == "" {
		return invalidf("chat message is empty")
	}

	unlock := s.locks.lock(gameID)
	defer unlock()

	g, err := s.loadGame(ctx, gameID)
	if err != nil {
		return err
	}
	if g.Completed() {
		return conflictf("game is completed")
	}

	p, err := s.loadPlayer(ctx, gameID, playerID)
	if err != nil {
		return err
	}

	g.AppendEvent(models.GameEvent{Type: "chat", Actor: p.ID, Message: message, Timestamp: s.now()})
	if err := s.store.Games.Update(ctx, g); err != nil {
		return internal("failed to persist chat", err)
	}

	s.publish(Event{Type: EventChatMessage, GameID: g.ID, ActorID: p.ID, ActorName: p.Name, Message: message})
	return nil
}
