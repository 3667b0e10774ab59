package game

import "github.com/crewlink/crewlink-server/internal/models"

// WinCondition is the outcome of evaluating the current roster.
type WinCondition int

const (
	WinNone WinCondition = iota
	WinImpostorsEliminated
	WinImpostorsMajority
	WinTasksComplete
)

// EvaluateWin is a pure function of the roster, invoked after every
// kill, ejection and task completion.
func EvaluateWin(players []*models.Player) WinCondition {
	aliveImpostors, aliveCrewmates := 0, 0
	for _, p := range players {
		if !p.IsAlive {
			continue
		}
		switch p.Role {
		case models.RoleImpostor:
			aliveImpostors++
		case models.RoleCrewmate:
			aliveCrewmates++
		}
	}

	if len(players) == 0 {
		return WinNone
	}

	if aliveImpostors == 0 {
		return WinImpostorsEliminated
	}

	if aliveImpostors >= aliveCrewmates {
		return WinImpostorsMajority
	}

	allDone := true
	for _, p := range players {
		if p.Role == models.RoleCrewmate && !p.AllTasksDone() {
			allDone = false
			break
		}
	}
	if allDone {
		return WinTasksComplete
	}

	return WinNone
}

// winTrigger names the action that caused a win check; it becomes the
// recorded reason rather than being re-derived later.
type winTrigger string

const (
	triggerKill     winTrigger = "kill"
	triggerEjection winTrigger = "ejection"
	triggerTask     winTrigger = "task"
)

// applyWin evaluates the roster and, on a win, mutates the game to its
// terminal state. The caller persists the game and publishes the
// game-ended event after its own mutation commits.
func (s *Service) applyWin(g *models.Game, players []*models.Player, trigger winTrigger) bool {
	cond := EvaluateWin(players)
	if cond == WinNone {
		return false
	}

	reason := "elimination"
	switch {
	case cond == WinTasksComplete:
		reason = "tasks"
	case trigger == triggerEjection:
		reason = "ejection"
	}

	now := s.now()
	g.Status = models.StatusCompleted
	g.EndTime = &now
	g.Meeting = nil
	g.Winner = cond.Winner()
	g.WinReason = reason
	g.AppendEvent(models.GameEvent{
		Type:      "game-ended",
		Message:   string(g.Winner) + " win by " + reason,
		Timestamp: now,
	})
	return true
}

func (c WinCondition) Winner() models.Winner {
	switch c {
	case WinImpostorsEliminated, WinTasksComplete:
		return models.WinnerCrewmates
	case WinImpostorsMajority:
		return models.WinnerImpostors
	default:
		return models.WinnerNone
	}
}
