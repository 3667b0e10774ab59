package game

import (
	"context"

	"github.com/crewlink/crewlink-server/internal/models"
)

// PlayerStats is the per-player slice of the stats payload. Roles are
// included because stats are an admin/read-only view; live clients get
// redacted player info through their own endpoints.
type PlayerStats struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Color          string      `json:"color"`
	Role           models.Role `json:"role,omitempty"`
	IsAlive        bool        `json:"is_alive"`
	TasksAssigned  int         `json:"tasks_assigned"`
	TasksCompleted int         `json:"tasks_completed"`
	Connected      bool        `json:"connected"`
}

type GameStats struct {
	Game           *models.Game       `json:"game"`
	PlayerCount    int                `json:"player_count"`
	AliveCount     int                `json:"alive_count"`
	AliveImpostors int                `json:"alive_impostors"`
	AliveCrewmates int                `json:"alive_crewmates"`
	TaskProgress   float64            `json:"task_progress"` // crewmate completions / assignments
	Players        []PlayerStats      `json:"players"`
	Events         []models.GameEvent `json:"events"`
}

// Stats is a read-only snapshot; it takes no lock and never mutates.
func (s *Service) Stats(ctx context.Context, gameID string) (*GameStats, error) {
	g, err := s.loadGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	players, err := s.store.Players.ListByGame(ctx, gameID)
	if err != nil {
		return nil, internal("failed to list players", err)
	}

	stats := &GameStats{
		Game:        g,
		PlayerCount: len(players),
		Events:      g.Events,
	}

	assigned, completed := 0, 0
	for _, p := range players {
		if p.IsAlive {
			stats.AliveCount++
			switch p.Role {
			case models.RoleImpostor:
				stats.AliveImpostors++
			case models.RoleCrewmate:
				stats.AliveCrewmates++
			}
		}
		if p.Role == models.RoleCrewmate {
			assigned += len(p.AssignedTasks)
			completed += len(p.CompletedTasks)
		}
		stats.Players = append(stats.Players, PlayerStats{
			ID:             p.ID,
			Name:           p.Name,
			Color:          p.Color,
			Role:           p.Role,
			IsAlive:        p.IsAlive,
			TasksAssigned:  len(p.AssignedTasks),
			TasksCompleted: len(p.CompletedTasks),
			Connected:      p.Connected,
		})
	}
	if assigned > 0 {
		stats.TaskProgress = float64(completed) / float64(assigned)
	}

	return stats, nil
}
