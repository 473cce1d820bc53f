package app

import (
	"testing"

	"github.com/dkeye/LiveTranslate/internal/core"
	"github.com/dkeye/LiveTranslate/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopConn struct{}

func (nopConn) TrySend(core.Frame) error { return nil }
func (nopConn) Close()                   {}

func TestRegistryRegisterDefaults(t *testing.T) {
	r := NewRegistry()
	id := r.Register(nopConn{}, "")

	require.True(t, r.Has(id))
	p, ok := r.Profile(id)
	require.True(t, ok)
	assert.Equal(t, domain.DefaultProfile(), p)

	_, inRoom := r.RoomOf(id)
	assert.False(t, inRoom)
	assert.Equal(t, 1, r.Count())
}

func TestRegistryIdentityWinsOverClientName(t *testing.T) {
	r := NewRegistry()
	id := r.Register(nopConn{}, "ana@example.com")
	name, lang := "Somebody", "de"
	r.SetProfile(id, domain.ProfileUpdate{Name: &name, Language: &lang})

	p, _ := r.Profile(id)
	assert.Equal(t, "ana@example.com", p.Name)
	assert.Equal(t, "de", p.Language)
}

func TestRegistryUnregisterIdempotent(t *testing.T) {
	r := NewRegistry()
	id := r.Register(nopConn{}, "")
	r.SetRoom(id, "100")

	assert.True(t, r.Unregister(id))
	assert.False(t, r.Unregister(id))
	assert.False(t, r.Has(id))
	assert.Equal(t, 0, r.Count())
}

func TestRegistryUnknownIDIsNoop(t *testing.T) {
	r := NewRegistry()
	name := "x"
	r.SetProfile("missing", domain.ProfileUpdate{Name: &name})
	r.ClearRoom("missing")
	assert.False(t, r.SetRoom("missing", "1"))
	_, ok := r.Profile("missing")
	assert.False(t, ok)
	_, ok = r.Signal("missing")
	assert.False(t, ok)
}
