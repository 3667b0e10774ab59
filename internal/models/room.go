package models

import "time"

type Room struct {
	ID                 string    `bson:"_id" json:"id"`
	GameID             string    `bson:"game_id" json:"game_id"`
	Name               string    `bson:"name" json:"name"`
	Description        string    `bson:"description,omitempty" json:"description,omitempty"`
	AutomationEntities []string  `bson:"automation_entities,omitempty" json:"automation_entities,omitempty"` // smart-home entity ids bound to this room
	QRToken            string    `bson:"qr_token" json:"qr_token"`                                           // scanned by players on entry
	CreatedAt          time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time `bson:"updated_at" json:"updated_at"`
}
