package models

import "time"

type VerifyMethod string

const (
	VerifyQRCode        VerifyMethod = "qrcode"
	VerifyManual        VerifyMethod = "manual"
	VerifyHomeAssistant VerifyMethod = "home-assistant"
	VerifyTimer         VerifyMethod = "timer"
)

// Verification describes how a task completion is proven. The payload
// depends on the method: a QR token for qrcode, an entity id for
// home-assistant, a duration in seconds for timer.
type Verification struct {
	Method  VerifyMethod `bson:"method" json:"method"`
	Payload string       `bson:"payload,omitempty" json:"payload,omitempty"`
}

type Task struct {
	ID               string            `bson:"_id" json:"id"`
	GameID           string            `bson:"game_id" json:"game_id"`
	RoomID           string            `bson:"room_id" json:"room_id"`
	Name             string            `bson:"name" json:"name"`
	Description      string            `bson:"description,omitempty" json:"description,omitempty"`
	Verification     Verification      `bson:"verification" json:"verification"`
	AutomationConfig map[string]string `bson:"automation_config,omitempty" json:"automation_config,omitempty"`
	CreatedAt        time.Time         `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time         `bson:"updated_at" json:"updated_at"`
}
