package protocol

import (
	"github.com/dkeye/LiveTranslate/internal/domain"
	"github.com/goccy/go-json"
)

type JoinRoom struct {
	Room    domain.RoomID        `json:"roomId"`
	Profile domain.ProfileUpdate `json:"profile"`
}

type SetLanguage struct {
	Language string `json:"language"`
}

type SignalOut struct {
	To     domain.ConnectionID `json:"to"`
	Signal json.RawMessage     `json:"signal"`
}

type SignalIn struct {
	From   domain.ConnectionID `json:"from"`
	Signal json.RawMessage     `json:"signal"`
}

type ScreenShareSignal struct {
	From   domain.ConnectionID `json:"from,omitempty"`
	Signal json.RawMessage     `json:"signal"`
}

type ScreenShareStatus struct {
	From    domain.ConnectionID `json:"from,omitempty"`
	Sharing bool                `json:"sharing"`
}

type Connected struct {
	ID domain.ConnectionID `json:"id"`
}

type UserLeft struct {
	ID domain.ConnectionID `json:"id"`
}

type RoomUsers struct {
	Room  domain.RoomID       `json:"roomId"`
	Users []domain.MemberInfo `json:"users"`
}

type LanguageChanged struct {
	ID       domain.ConnectionID `json:"id"`
	Language string              `json:"language"`
}

type WhoAmI struct {
	ID      domain.ConnectionID `json:"id"`
	Profile domain.Profile      `json:"profile"`
	Room    domain.RoomID       `json:"roomId,omitempty"`
}

// Server-stamped fields of chat and translation payloads. They overwrite
// whatever the client put under the same keys.
const (
	FieldFrom      = "from"
	FieldTimestamp = "timestamp"
)
