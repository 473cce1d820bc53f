package app

import (
	"sync"

	"github.com/dkeye/LiveTranslate/internal/core"
	"github.com/dkeye/LiveTranslate/internal/domain"
	"github.com/rs/zerolog/log"
)

type sessionEntry struct {
	Room     domain.RoomID
	Signal   core.SignalConnection
	Profile  domain.Profile
	Identity string
}

// Registry tracks every live connection and the single room it occupies.
type Registry struct {
	mu       sync.RWMutex
	sessions map[domain.ConnectionID]*sessionEntry
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[domain.ConnectionID]*sessionEntry),
	}
}

// Register allocates a fresh connection id bound to conn.
// identity is the authenticated display name, empty for anonymous callers.
func (r *Registry) Register(conn core.SignalConnection, identity string) domain.ConnectionID {
	id := domain.NewConnectionID()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = &sessionEntry{
		Signal:   conn,
		Profile:  domain.DefaultProfile(),
		Identity: identity,
	}
	log.Info().Str("module", "app.registry").Str("sid", string(id)).Bool("authenticated", identity != "").Msg("registered")
	return id
}

// Unregister drops all state of id. Calling it twice is a no-op.
func (r *Registry) Unregister(id domain.ConnectionID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return false
	}
	delete(r.sessions, id)
	log.Info().Str("module", "app.registry").Str("sid", string(id)).Msg("unregistered")
	return true
}

func (r *Registry) Has(id domain.ConnectionID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sessions[id]
	return ok
}

func (r *Registry) SetProfile(id domain.ConnectionID, upd domain.ProfileUpdate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[id]; ok {
		e.Profile = upd.Apply(e.Profile)
	}
}

// Profile returns the profile other members see. An authenticated identity
// wins over the client-supplied name.
func (r *Registry) Profile(id domain.ConnectionID) (domain.Profile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[id]
	if !ok {
		return domain.Profile{}, false
	}
	p := e.Profile
	if e.Identity != "" {
		p.Name = e.Identity
	}
	return p, true
}

func (r *Registry) Signal(id domain.ConnectionID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[id]; ok {
		return e.Signal, true
	}
	return nil, false
}

// RoomOf reports the room of id; ok is false when id is unknown or in no room.
func (r *Registry) RoomOf(id domain.ConnectionID) (domain.RoomID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[id]
	if !ok || e.Room == "" {
		return "", false
	}
	return e.Room, true
}

func (r *Registry) SetRoom(id domain.ConnectionID, room domain.RoomID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return false
	}
	e.Room = room
	log.Debug().Str("module", "app.registry").Str("sid", string(id)).Str("room", string(room)).Msg("updated room")
	return true
}

func (r *Registry) ClearRoom(id domain.ConnectionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[id]; ok {
		e.Room = ""
	}
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
