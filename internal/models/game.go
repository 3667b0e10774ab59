package models

import "time"

type GameStatus string

const (
	StatusSetup      GameStatus = "setup"
	StatusInProgress GameStatus = "in-progress"
	StatusDiscussion GameStatus = "discussion"
	StatusVoting     GameStatus = "voting"
	StatusCompleted  GameStatus = "completed"
)

type Winner string

const (
	WinnerNone      Winner = ""
	WinnerCrewmates Winner = "crewmates"
	WinnerImpostors Winner = "impostors"
)

// GameSettings are fixed once the game leaves setup, except via an
// explicit update while the game is in setup or completed.
type GameSettings struct {
	ImpostorCount              int `bson:"impostor_count" json:"impostor_count"`
	DiscussionTimeSec          int `bson:"discussion_time_sec" json:"discussion_time_sec"`
	VotingTimeSec              int `bson:"voting_time_sec" json:"voting_time_sec"`
	KillCooldownSec            int `bson:"kill_cooldown_sec" json:"kill_cooldown_sec"`
	EmergencyMeetingsPerPlayer int `bson:"emergency_meetings_per_player" json:"emergency_meetings_per_player"`
}

func DefaultSettings() GameSettings {
	return GameSettings{
		ImpostorCount:              1,
		DiscussionTimeSec:          60,
		VotingTimeSec:              30,
		KillCooldownSec:            30,
		EmergencyMeetingsPerPlayer: 1,
	}
}

type GameEvent struct {
	Type      string    `bson:"type" json:"type"`
	Actor     string    `bson:"actor,omitempty" json:"actor,omitempty"`
	Target    string    `bson:"target,omitempty" json:"target,omitempty"`
	RoomID    string    `bson:"room_id,omitempty" json:"room_id,omitempty"`
	TaskID    string    `bson:"task_id,omitempty" json:"task_id,omitempty"`
	Message   string    `bson:"message,omitempty" json:"message,omitempty"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

type MeetingReason string

const (
	MeetingReasonReport    MeetingReason = "report"
	MeetingReasonEmergency MeetingReason = "emergency"
)

// Meeting is the transient discussion/voting sub-state. It exists only
// while game status is discussion or voting and is cleared on resolution.
// A vote value of nil means the voter chose to skip.
type Meeting struct {
	ID                 string             `bson:"id" json:"id"`
	CalledBy           string             `bson:"called_by" json:"called_by"`
	Reason             MeetingReason      `bson:"reason" json:"reason"`
	ReportedBody       string             `bson:"reported_body,omitempty" json:"reported_body,omitempty"`
	OpensAt            time.Time          `bson:"opens_at" json:"opens_at"`
	DiscussionDeadline time.Time          `bson:"discussion_deadline" json:"discussion_deadline"`
	VotingDeadline     time.Time          `bson:"voting_deadline" json:"voting_deadline"`
	Votes              map[string]*string `bson:"votes" json:"votes"`
}

// AllVoted reports whether every id in alive has a vote recorded.
func (m *Meeting) AllVoted(alive []string) bool {
	for _, id := range alive {
		if _, ok := m.Votes[id]; !ok {
			return false
		}
	}
	return len(alive) > 0
}

type Game struct {
	ID           string       `bson:"_id" json:"id"`
	JoinCode     string       `bson:"join_code" json:"join_code"` // short unique code players scan or type
	Name         string       `bson:"name" json:"name"`
	Status       GameStatus   `bson:"status" json:"status"`
	Settings     GameSettings `bson:"settings" json:"settings"`
	StartTime    *time.Time   `bson:"start_time,omitempty" json:"start_time,omitempty"`
	EndTime      *time.Time   `bson:"end_time,omitempty" json:"end_time,omitempty"`
	CurrentRound int          `bson:"current_round" json:"current_round"`
	Meeting      *Meeting     `bson:"meeting,omitempty" json:"meeting,omitempty"`
	Events       []GameEvent  `bson:"events" json:"events"`
	CreatedBy    string       `bson:"created_by" json:"created_by"` // admin id
	Winner       Winner       `bson:"winner,omitempty" json:"winner,omitempty"`
	WinReason    string       `bson:"win_reason,omitempty" json:"win_reason,omitempty"`
	CreatedAt    time.Time    `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `bson:"updated_at" json:"updated_at"`
}

func (g *Game) InSetup() bool   { return g.Status == StatusSetup }
func (g *Game) Completed() bool { return g.Status == StatusCompleted }
func (g *Game) InMeeting() bool { return g.Status == StatusDiscussion || g.Status == StatusVoting }

// Playing reports whether live player actions (kill, task, location,
// report) are currently accepted at all.
func (g *Game) Playing() bool {
	return g.Status == StatusInProgress || g.InMeeting()
}

func (g *Game) AppendEvent(e GameEvent) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	g.Events = append(g.Events, e)
}
