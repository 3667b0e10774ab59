package bridge

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"github.com/crewlink/crewlink-server/internal/game"
)

// Bridge forwards game events to the smart-home automation side over
// NATS pub/sub and an optional HTTP webhook. Delivery is strictly
// best-effort: every failure is logged and swallowed, so a dead bridge
// never blocks a kill or an ejection.
type Bridge struct {
	nc     *nats.Conn
	url    string
	token  string
	client *http.Client
}

func New(nc *nats.Conn) *Bridge {
	return &Bridge{
		nc:     nc,
		url:    os.Getenv("BRIDGE_URL"),
		token:  os.Getenv("BRIDGE_TOKEN"),
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

// notification is the small structured payload the automation side
// receives.
type notification struct {
	Event      string `json:"event"`
	GameID     string `json:"game_id"`
	ActorName  string `json:"actor_name,omitempty"`
	TargetName string `json:"target_name,omitempty"`
	Winner     string `json:"winner,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// Publish implements game.Sink. Only kill, ejection and game-end
// reach the automation side.
func (b *Bridge) Publish(e game.Event) {
	var n notification
	switch e.Type {
	case game.EventPlayerKilled:
		n = notification{Event: "kill", GameID: e.GameID, ActorName: e.ActorName, TargetName: e.TargetName}
	case game.EventMeetingResolved:
		if e.TargetID == "" {
			return // no ejection, nothing for the house to do
		}
		n = notification{Event: "ejection", GameID: e.GameID, TargetName: e.TargetName}
	case game.EventGameEnded:
		n = notification{Event: "game-end", GameID: e.GameID, Winner: string(e.Winner), Reason: e.Reason}
	default:
		return
	}

	go b.deliver(n)
}

func (b *Bridge) deliver(n notification) {
	payload, err := json.Marshal(n)
	if err != nil {
		log.Errorf("bridge: failed to marshal notification: %v", err)
		return
	}

	if b.nc != nil {
		if err := b.nc.Publish("bridge.events."+n.Event, payload); err != nil {
			log.Errorf("bridge: NATS publish failed for %s: %v", n.Event, err)
		}
	}

	if b.url == "" {
		return
	}

	req, err := http.NewRequest(http.MethodPost, b.url+"/api/events", bytes.NewReader(payload))
	if err != nil {
		log.Errorf("bridge: failed to build webhook request: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if b.token != "" {
		req.Header.Set("Authorization", "Bearer "+b.token)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		log.Errorf("bridge: webhook delivery failed for %s: %v", n.Event, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.Errorf("bridge: webhook returned %d for %s", resp.StatusCode, n.Event)
	}
}
