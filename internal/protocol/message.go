// Package protocol defines the JSON messages exchanged over the signaling
// socket. Every frame is an Envelope: {"type": "...", "data": {...}}.
package protocol

import (
	"fmt"

	"github.com/goccy/go-json"
)

type MessageType string

// Client to server.
const (
	TypeJoinRoom          MessageType = "join-room"
	TypeLeaveRoom         MessageType = "leave-room"
	TypeSetLanguage       MessageType = "set-language"
	TypePing              MessageType = "ping"
	TypeWhoAmI            MessageType = "whoami"
	TypeSignal            MessageType = "signal"
	TypeChatMessage       MessageType = "chat-message"
	TypeTranslationResult MessageType = "translation-result"
	TypeScreenShareSignal MessageType = "screen-share-signal"
	TypeScreenShareStatus MessageType = "screen-share-status"
)

// Server to client. signal, chat-message, translation-result and
// screen-share-signal keep their inbound names.
const (
	TypeConnected           MessageType = "connected"
	TypePong                MessageType = "pong"
	TypeUserJoined          MessageType = "user-joined"
	TypeUserLeft            MessageType = "user-left"
	TypeRoomUsers           MessageType = "room-users"
	TypeUserLanguageChanged MessageType = "user-language-changed"
	TypeScreenSharingStatus MessageType = "screen-sharing-status"
)

type Envelope struct {
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Encode wraps v into an envelope of type t.
func Encode(t MessageType, v any) ([]byte, error) {
	env := Envelope{Type: t}
	if v != nil {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("protocol: marshal %s: %w", t, err)
		}
		env.Data = data
	}
	return json.Marshal(env)
}

// Decode parses the envelope only; Data is decoded later by DecodeData.
func Decode(b []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return env, fmt.Errorf("protocol: bad envelope: %w", err)
	}
	if env.Type == "" {
		return env, fmt.Errorf("protocol: missing type")
	}
	return env, nil
}

func DecodeData[T any](env Envelope) (T, error) {
	var v T
	if len(env.Data) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(env.Data, &v); err != nil {
		return v, fmt.Errorf("protocol: bad %s payload: %w", env.Type, err)
	}
	return v, nil
}

// DecodeObject decodes a payload that must be a JSON object.
func DecodeObject(env Envelope) (map[string]any, error) {
	var obj map[string]any
	if err := json.Unmarshal(env.Data, &obj); err != nil || obj == nil {
		return nil, fmt.Errorf("protocol: %s payload must be an object", env.Type)
	}
	return obj, nil
}
