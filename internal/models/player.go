package models

import "time"

type Role string

const (
	RoleCrewmate Role = "crewmate"
	RoleImpostor Role = "impostor"
)

// Colors is the palette assigned to players, one color per player per game.
var Colors = []string{
	"red", "blue", "green", "pink", "orange", "yellow",
	"black", "white", "purple", "brown", "cyan", "lime",
}

type TaskCompletion struct {
	TaskID      string    `bson:"task_id" json:"task_id"`
	CompletedAt time.Time `bson:"completed_at" json:"completed_at"`
}

type Player struct {
	ID                    string           `bson:"_id" json:"id"`
	GameID                string           `bson:"game_id" json:"game_id"`
	Name                  string           `bson:"name" json:"name"`
	DeviceID              string           `bson:"device_id" json:"device_id"` // one per physical device per game
	Role                  Role             `bson:"role,omitempty" json:"role,omitempty"`
	IsAlive               bool             `bson:"is_alive" json:"is_alive"`
	Color                 string           `bson:"color" json:"color"`
	AssignedTasks         []string         `bson:"assigned_tasks" json:"assigned_tasks"`
	CompletedTasks        []TaskCompletion `bson:"completed_tasks" json:"completed_tasks"`
	EmergencyMeetingsLeft int              `bson:"emergency_meetings_left" json:"emergency_meetings_left"`
	LastKillAt            *time.Time       `bson:"last_kill_at,omitempty" json:"last_kill_at,omitempty"`
	CurrentRoomID         string           `bson:"current_room_id,omitempty" json:"current_room_id,omitempty"`
	Connected             bool             `bson:"connected" json:"connected"`
	CreatedAt             time.Time        `bson:"created_at" json:"created_at"`
	UpdatedAt             time.Time        `bson:"updated_at" json:"updated_at"`
}

func (p *Player) IsAssigned(taskID string) bool {
	for _, id := range p.AssignedTasks {
		if id == taskID {
			return true
		}
	}
	return false
}

func (p *Player) HasCompleted(taskID string) bool {
	for _, tc := range p.CompletedTasks {
		if tc.TaskID == taskID {
			return true
		}
	}
	return false
}

// AllTasksDone reports whether every assigned task has a completion entry.
func (p *Player) AllTasksDone() bool {
	for _, id := range p.AssignedTasks {
		if !p.HasCompleted(id) {
			return false
		}
	}
	return true
}
