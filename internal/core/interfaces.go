package core

import "github.com/dkeye/LiveTranslate/internal/domain"

type RoomInfo struct {
	Name        domain.RoomID `json:"name"`
	MemberCount int           `json:"client_count"`
}

// RoomDirectory owns room membership. It never touches transport resources.
type RoomDirectory interface {
	Join(room domain.RoomID, id domain.ConnectionID) []domain.ConnectionID
	Leave(room domain.RoomID, id domain.ConnectionID) bool
	MembersOf(room domain.RoomID) []domain.ConnectionID
	Has(room domain.RoomID) bool
	List() []RoomInfo
	Count() int
}
