package orch

import (
	"sync"
	"testing"

	"github.com/dkeye/LiveTranslate/internal/core"
	"github.com/dkeye/LiveTranslate/internal/protocol"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
	full   bool
	closed bool
}

func (c *fakeConn) TrySend(f core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return core.ErrClosed
	}
	if c.full {
		return core.ErrBackpressure
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// take returns every envelope received so far and forgets them.
func (c *fakeConn) take(t *testing.T) []protocol.Envelope {
	t.Helper()
	c.mu.Lock()
	frames := c.frames
	c.frames = nil
	c.mu.Unlock()
	out := make([]protocol.Envelope, 0, len(frames))
	for _, f := range frames {
		env, err := protocol.Decode(f)
		require.NoError(t, err)
		out = append(out, env)
	}
	return out
}

func decode[T any](t *testing.T, env protocol.Envelope) T {
	t.Helper()
	v, err := protocol.DecodeData[T](env)
	require.NoError(t, err)
	return v
}

func decodeMap(t *testing.T, env protocol.Envelope) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &m))
	return m
}

func types(envs []protocol.Envelope) []protocol.MessageType {
	out := make([]protocol.MessageType, 0, len(envs))
	for _, e := range envs {
		out = append(out, e.Type)
	}
	return out
}
