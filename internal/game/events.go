package game

import "github.com/crewlink/crewlink-server/internal/models"

// EventType names an outbound notification. The engine publishes these
// to registered sinks after the triggering mutation has been persisted;
// sink delivery is fire-and-forget.
type EventType string

const (
	EventPlayerJoined    EventType = "player-joined"
	EventPlayerLeft      EventType = "player-left"
	EventGameStarted     EventType = "game-started"
	EventGameUpdated     EventType = "game-updated"
	EventMeetingStarted  EventType = "meeting-started"
	EventVotingStarted   EventType = "voting-started"
	EventVoteRecorded    EventType = "vote-recorded"
	EventMeetingResolved EventType = "meeting-resolved"
	EventPlayerKilled    EventType = "player-killed"
	EventTaskCompleted   EventType = "task-completed"
	EventLocationChanged EventType = "location-changed"
	EventGameEnded       EventType = "game-ended"
	EventChatMessage     EventType = "chat-message"
)

// Event is the outbound notification the engine fans out to its sinks.
// ActorID/TargetID are player ids; names are resolved at publish time so
// sinks (notably the automation bridge) do not need a store round trip.
type Event struct {
	Type       EventType      `json:"type"`
	GameID     string         `json:"game_id"`
	ActorID    string         `json:"actor_id,omitempty"`
	ActorName  string         `json:"actor_name,omitempty"`
	TargetID   string         `json:"target_id,omitempty"`
	TargetName string         `json:"target_name,omitempty"`
	Winner     models.Winner  `json:"winner,omitempty"`
	Reason     string         `json:"reason,omitempty"`
	Message    string         `json:"message,omitempty"`
	Counts     map[string]int `json:"counts,omitempty"` // vote tally buckets on meeting resolution
	Game       *models.Game   `json:"game,omitempty"`
	Meeting    *models.Meeting `json:"meeting,omitempty"`
}

// Sink receives engine events. Implementations must swallow their own
// failures; a sink error never reaches the player action that caused it.
type Sink interface {
	Publish(e Event)
}

func (s *Service) publish(e Event) {
	for _, sink := range s.sinks {
		sink.Publish(e)
	}
}

// AddSink registers an additional event sink. Not safe to call once the
// service is handling traffic.
func (s *Service) AddSink(sink Sink) {
	s.sinks = append(s.sinks, sink)
}
