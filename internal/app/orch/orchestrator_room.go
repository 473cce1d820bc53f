package orch

import (
	"github.com/dkeye/LiveTranslate/internal/core"
	"github.com/dkeye/LiveTranslate/internal/domain"
	"github.com/dkeye/LiveTranslate/internal/protocol"
	"github.com/rs/zerolog/log"
)

// Connect registers a new transport session and tells it its id.
func (o *Orchestrator) Connect(conn core.SignalConnection, identity string) domain.ConnectionID {
	o.mu.Lock()
	defer o.mu.Unlock()
	id := o.Registry.Register(conn, identity)
	o.sendTo("", []domain.ConnectionID{id}, protocol.TypeConnected, protocol.Connected{ID: id})
	o.updateGauges()
	return id
}

// Join moves id into room. Existing members learn about the newcomer and the
// newcomer receives the list of existing members; both come from the same
// membership snapshot.
func (o *Orchestrator) Join(id domain.ConnectionID, room domain.RoomID, upd domain.ProfileUpdate) {
	if room == "" {
		log.Debug().Str("module", "orch").Str("sid", string(id)).Msg("join without room dropped")
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.Registry.Has(id) {
		return
	}
	o.Registry.SetProfile(id, upd)

	prev, inRoom := o.Registry.RoomOf(id)
	rejoin := inRoom && prev == room
	if inRoom && !rejoin {
		o.leaveLocked(id, prev)
	}

	others := o.Rooms.Join(room, id)
	o.Registry.SetRoom(id, room)

	if !rejoin {
		profile, _ := o.Registry.Profile(id)
		o.sendTo(room, others, protocol.TypeUserJoined, domain.MemberInfo{ID: id, Profile: profile})
	}

	users := make([]domain.MemberInfo, 0, len(others))
	for _, other := range others {
		p, ok := o.Registry.Profile(other)
		if !ok {
			continue
		}
		users = append(users, domain.MemberInfo{ID: other, Profile: p})
	}
	o.sendTo(room, []domain.ConnectionID{id}, protocol.TypeRoomUsers, protocol.RoomUsers{Room: room, Users: users})
	o.updateGauges()

	log.Info().Str("module", "orch").Str("sid", string(id)).Str("room", string(room)).Int("others", len(others)).Bool("rejoin", rejoin).Msg("joined room")
}

// Leave takes id out of its room without closing the connection.
func (o *Orchestrator) Leave(id domain.ConnectionID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if room, ok := o.Registry.RoomOf(id); ok {
		o.leaveLocked(id, room)
		o.updateGauges()
	}
}

// Disconnect removes every trace of id. Calling it again is a no-op.
func (o *Orchestrator) Disconnect(id domain.ConnectionID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.Registry.Has(id) {
		return
	}
	if room, ok := o.Registry.RoomOf(id); ok {
		o.leaveLocked(id, room)
	}
	o.Registry.Unregister(id)
	o.updateGauges()
}

func (o *Orchestrator) leaveLocked(id domain.ConnectionID, room domain.RoomID) {
	o.Rooms.Leave(room, id)
	o.Registry.ClearRoom(id)
	o.sendTo(room, o.Rooms.MembersOf(room), protocol.TypeUserLeft, protocol.UserLeft{ID: id})
	log.Info().Str("module", "orch").Str("sid", string(id)).Str("room", string(room)).Msg("left room")
}

// Describe reports what the server knows about id.
func (o *Orchestrator) Describe(id domain.ConnectionID) (protocol.WhoAmI, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	p, ok := o.Registry.Profile(id)
	if !ok {
		return protocol.WhoAmI{}, false
	}
	room, _ := o.Registry.RoomOf(id)
	return protocol.WhoAmI{ID: id, Profile: p, Room: room}, true
}

func (o *Orchestrator) ListRooms() []core.RoomInfo {
	return o.Rooms.List()
}
