// Package domain contains entity without logic, just meta-data
package domain

import (
	"bytes"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

type ConnectionID string

// NewConnectionID allocates a fresh random identity for a transport session.
func NewConnectionID() ConnectionID {
	return ConnectionID(uuid.NewString())
}

// RoomID is the external meeting identifier. Clients may send it as a JSON
// string or number; numbers are kept as their decimal text.
type RoomID string

func (r *RoomID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*r = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*r = RoomID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	if i, err := n.Int64(); err == nil {
		*r = RoomID(strconv.FormatInt(i, 10))
		return nil
	}
	*r = RoomID(n.String())
	return nil
}
