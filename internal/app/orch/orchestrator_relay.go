package orch

import (
	"slices"

	"github.com/dkeye/LiveTranslate/internal/domain"
	"github.com/dkeye/LiveTranslate/internal/metrics"
	"github.com/dkeye/LiveTranslate/internal/protocol"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

const chatTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// roomMates returns the room of id and everybody else in it.
// ok is false when id is not in a room; callers drop the event then.
func (o *Orchestrator) roomMates(id domain.ConnectionID, t protocol.MessageType) (domain.RoomID, []domain.ConnectionID, bool) {
	room, ok := o.Registry.RoomOf(id)
	if !ok {
		metrics.IncDropped(metrics.ReasonNotInRoom)
		log.Debug().Str("module", "orch").Str("sid", string(id)).Str("type", string(t)).Msg("sender not in room")
		return "", nil, false
	}
	members := o.Rooms.MembersOf(room)
	return room, slices.DeleteFunc(members, func(m domain.ConnectionID) bool { return m == id }), true
}

// Signal forwards a WebRTC negotiation message to a single peer.
// The target only has to exist; it may sit in another room while the
// sender is switching rooms.
func (o *Orchestrator) Signal(from domain.ConnectionID, to domain.ConnectionID, signal json.RawMessage) {
	o.mu.Lock()
	defer o.mu.Unlock()
	room, ok := o.Registry.RoomOf(from)
	if !ok {
		metrics.IncDropped(metrics.ReasonNotInRoom)
		return
	}
	if to == "" || !o.Registry.Has(to) {
		metrics.IncDropped(metrics.ReasonUnknownTarget)
		log.Debug().Str("module", "orch").Str("sid", string(from)).Str("to", string(to)).Msg("signal target gone")
		return
	}
	o.sendTo(room, []domain.ConnectionID{to}, protocol.TypeSignal, protocol.SignalIn{From: from, Signal: signal})
}

// Chat broadcasts a chat message with a server timestamp.
func (o *Orchestrator) Chat(from domain.ConnectionID, payload map[string]any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	room, mates, ok := o.roomMates(from, protocol.TypeChatMessage)
	if !ok {
		return
	}
	payload[protocol.FieldFrom] = from
	payload[protocol.FieldTimestamp] = o.now().UTC().Format(chatTimeLayout)
	o.sendTo(room, mates, protocol.TypeChatMessage, payload)
}

// SetLanguage stores the preference and tells the room about it.
func (o *Orchestrator) SetLanguage(from domain.ConnectionID, language string) {
	if language == "" {
		metrics.IncDropped(metrics.ReasonBadPayload)
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Registry.SetProfile(from, domain.ProfileUpdate{Language: &language})
	room, mates, ok := o.roomMates(from, protocol.TypeSetLanguage)
	if !ok {
		return
	}
	o.sendTo(room, mates, protocol.TypeUserLanguageChanged, protocol.LanguageChanged{ID: from, Language: language})
}

// TranslationResult shares a translation produced by the sender's client.
func (o *Orchestrator) TranslationResult(from domain.ConnectionID, payload map[string]any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	room, mates, ok := o.roomMates(from, protocol.TypeTranslationResult)
	if !ok {
		return
	}
	payload[protocol.FieldFrom] = from
	o.sendTo(room, mates, protocol.TypeTranslationResult, payload)
}

func (o *Orchestrator) ScreenShareSignal(from domain.ConnectionID, signal json.RawMessage) {
	o.mu.Lock()
	defer o.mu.Unlock()
	room, mates, ok := o.roomMates(from, protocol.TypeScreenShareSignal)
	if !ok {
		return
	}
	o.sendTo(room, mates, protocol.TypeScreenShareSignal, protocol.ScreenShareSignal{From: from, Signal: signal})
}

func (o *Orchestrator) ScreenShareStatus(from domain.ConnectionID, sharing bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	room, mates, ok := o.roomMates(from, protocol.TypeScreenShareStatus)
	if !ok {
		return
	}
	o.sendTo(room, mates, protocol.TypeScreenSharingStatus, protocol.ScreenShareStatus{From: from, Sharing: sharing})
}
