package app

import (
	"slices"
	"sync"

	"github.com/dkeye/LiveTranslate/internal/core"
	"github.com/dkeye/LiveTranslate/internal/domain"
	"github.com/rs/zerolog/log"
)

// RoomManagerImpl keeps members of each room in join order.
// A room exists only while it has at least one member.
type RoomManagerImpl struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID][]domain.ConnectionID
}

func NewRoomManager() *RoomManagerImpl {
	return &RoomManagerImpl{rooms: make(map[domain.RoomID][]domain.ConnectionID)}
}

var _ core.RoomDirectory = (*RoomManagerImpl)(nil)

// Join appends id to room and returns the members that were already there.
func (f *RoomManagerImpl) Join(room domain.RoomID, id domain.ConnectionID) []domain.ConnectionID {
	f.mu.Lock()
	defer f.mu.Unlock()
	members := f.rooms[room]
	others := slices.Clone(members)
	if slices.Contains(members, id) {
		others = slices.DeleteFunc(others, func(m domain.ConnectionID) bool { return m == id })
	} else {
		if len(members) == 0 {
			log.Info().Str("module", "app.rooms").Str("room", string(room)).Msg("room created")
		}
		f.rooms[room] = append(members, id)
	}
	return others
}

// Leave removes id from room. It reports whether id was a member.
func (f *RoomManagerImpl) Leave(room domain.RoomID, id domain.ConnectionID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	members, ok := f.rooms[room]
	if !ok {
		return false
	}
	i := slices.Index(members, id)
	if i < 0 {
		return false
	}
	members = slices.Delete(members, i, i+1)
	if len(members) == 0 {
		delete(f.rooms, room)
		log.Info().Str("module", "app.rooms").Str("room", string(room)).Msg("room deleted")
		return true
	}
	f.rooms[room] = members
	return true
}

func (f *RoomManagerImpl) MembersOf(room domain.RoomID) []domain.ConnectionID {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return slices.Clone(f.rooms[room])
}

func (f *RoomManagerImpl) Has(room domain.RoomID) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.rooms[room]
	return ok
}

func (f *RoomManagerImpl) List() []core.RoomInfo {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]core.RoomInfo, 0, len(f.rooms))
	for name, members := range f.rooms {
		out = append(out, core.RoomInfo{Name: name, MemberCount: len(members)})
	}
	slices.SortFunc(out, func(a, b core.RoomInfo) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})
	return out
}

func (f *RoomManagerImpl) Count() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.rooms)
}
