package comm

import (
	"encoding/json"

	"github.com/crewlink/crewlink-server/internal/models"
)

// WSMessage is the envelope for every websocket frame. Data carries a
// type-specific payload.
type WSMessage struct {
	Type     string          `json:"type"` // e.g. "player-auth", "kill", "vote"
	Data     json.RawMessage `json:"data,omitempty"`
	SocketId string          `json:"socketid,omitempty"`
}

// inbound payloads

type AdminAuth struct {
	Token string `json:"token"`
}

type PlayerAuth struct {
	GameID   string `json:"game_id"`
	DeviceID string `json:"device_id"`
}

type AdminJoinGame struct {
	GameID string `json:"game_id"`
}

type MeetingCall struct {
	Reason         string `json:"reason"` // "report" or "emergency"
	ReportedBodyID string `json:"reported_body_id,omitempty"`
}

type VoteSubmit struct {
	TargetID string `json:"target_id"` // player id, "skip", or empty for skip
}

type TaskComplete struct {
	TaskID string `json:"task_id"`
}

type KillRequest struct {
	TargetID string `json:"target_id"`
}

type LocationUpdate struct {
	RoomToken string `json:"room_token"`
}

type ChatMessage struct {
	Message string `json:"message"`
}

// outbound payloads

type AuthResult struct {
	OK       bool           `json:"ok"`
	PlayerID string         `json:"player_id,omitempty"`
	Player   *models.Player `json:"player,omitempty"`
	Error    string         `json:"error,omitempty"`
}

type GameData struct {
	Game    *models.Game     `json:"game"`
	Players []*models.Player `json:"players,omitempty"`
}

type MeetingData struct {
	Meeting    *models.Meeting `json:"meeting"`
	CalledBy   string          `json:"called_by_name,omitempty"`
	Reason     string          `json:"reason,omitempty"`
	Voter      string          `json:"voter,omitempty"`
	VotesCast  int             `json:"votes_cast,omitempty"`
	Ejected    string          `json:"ejected,omitempty"`
	EjectedID  string          `json:"ejected_id,omitempty"`
	VoteCounts map[string]int  `json:"vote_counts,omitempty"`
}

type KillData struct {
	ActorName  string `json:"actor_name"`
	TargetID   string `json:"target_id"`
	TargetName string `json:"target_name"`
}

type GameEndData struct {
	Winner string `json:"winner"`
	Reason string `json:"reason"`
}

type ChatData struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Message  string `json:"message"`
}

type ErrorData struct {
	Error string `json:"error"`
}
