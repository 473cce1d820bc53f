package client

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	router "github.com/dkeye/LiveTranslate/internal/adapters/http"
	"github.com/dkeye/LiveTranslate/internal/app"
	"github.com/dkeye/LiveTranslate/internal/app/orch"
	"github.com/dkeye/LiveTranslate/internal/config"
	"github.com/dkeye/LiveTranslate/internal/domain"
	"github.com/dkeye/LiveTranslate/internal/protocol"
	"github.com/gin-gonic/gin"
	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitFor = 2 * time.Second

func startServer(t *testing.T) (string, *orch.Orchestrator) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Mode:   "test",
		Secret: "test-secret",
		Signal: config.SignalConfig{
			ReadLimit:  65536,
			PingPeriod: time.Second,
			PongWait:   5 * time.Second,
			SendBuffer: 64,
		},
	}
	o := orch.New(app.SimplePolicy{})
	ctx, cancel := context.WithCancel(context.Background())
	srv := httptest.NewServer(router.SetupRouter(ctx, cfg, o, nil))
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws/signal", o
}

func dial(t *testing.T, url string) *Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()
	c, err := Dial(ctx, url, nil)
	require.NoError(t, err)
	require.NotEmpty(t, c.ID())
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func join(t *testing.T, c *Client, room domain.RoomID, name string) []domain.MemberInfo {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()
	var upd domain.ProfileUpdate
	if name != "" {
		upd.Name = &name
	}
	users, err := c.JoinAndWait(ctx, room, upd)
	require.NoError(t, err)
	return users
}

func collect(c *Client, types ...protocol.MessageType) chan protocol.Envelope {
	ch := make(chan protocol.Envelope, 32)
	for _, typ := range types {
		c.Subscribe(typ, func(env protocol.Envelope) { ch <- env })
	}
	return ch
}

func next(t *testing.T, ch chan protocol.Envelope) protocol.Envelope {
	t.Helper()
	select {
	case env := <-ch:
		return env
	case <-time.After(waitFor):
		t.Fatal("timed out waiting for event")
	}
	return protocol.Envelope{}
}

func expectNone(t *testing.T, ch chan protocol.Envelope) {
	t.Helper()
	select {
	case env := <-ch:
		t.Fatalf("unexpected event %s", env.Type)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestMeetingOverWebSocket(t *testing.T) {
	url, o := startServer(t)
	relayed := []protocol.MessageType{
		protocol.TypeUserJoined, protocol.TypeUserLeft, protocol.TypeChatMessage,
		protocol.TypeSignal, protocol.TypeTranslationResult,
	}

	a := dial(t, url)
	aEvents := collect(a, relayed...)
	assert.Empty(t, join(t, a, "100", "Ana"))

	b := dial(t, url)
	bEvents := collect(b, relayed...)
	users := join(t, b, "100", "Ben")
	require.Len(t, users, 1)
	assert.Equal(t, a.ID(), users[0].ID)
	assert.Equal(t, "Ana", users[0].Profile.Name)

	env := next(t, aEvents)
	require.Equal(t, protocol.TypeUserJoined, env.Type)
	joined, err := protocol.DecodeData[domain.MemberInfo](env)
	require.NoError(t, err)
	assert.Equal(t, b.ID(), joined.ID)
	assert.Equal(t, "Ben", joined.Profile.Name)
	assert.Equal(t, []domain.ConnectionID{b.ID()}, a.Peers())
	assert.Equal(t, []domain.ConnectionID{a.ID()}, b.Peers())

	c := dial(t, url)
	cEvents := collect(c, relayed...)
	assert.Empty(t, join(t, c, "200", ""))

	// chat
	require.NoError(t, a.SendChat("hi"))
	env = next(t, bEvents)
	require.Equal(t, protocol.TypeChatMessage, env.Type)
	msg, err := protocol.DecodeData[ChatMessage](env)
	require.NoError(t, err)
	assert.Equal(t, a.ID(), msg.From)
	assert.Equal(t, "hi", msg.Text)
	_, err = time.Parse(time.RFC3339, msg.Timestamp)
	assert.NoError(t, err)

	// signal
	require.NoError(t, a.SendDescription(b.ID(), webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: "v=0"}))
	env = next(t, bEvents)
	require.Equal(t, protocol.TypeSignal, env.Type)
	sig, err := protocol.DecodeData[protocol.SignalIn](env)
	require.NoError(t, err)
	assert.Equal(t, a.ID(), sig.From)
	ps, err := DecodePeerSignal(sig.Signal)
	require.NoError(t, err)
	require.NotNil(t, ps.Description)
	assert.Equal(t, "v=0", ps.Description.SDP)

	// translation
	require.NoError(t, b.ShareTranslation(Translation{Original: "hola", Translated: "hello"}))
	env = next(t, aEvents)
	shared, err := protocol.DecodeData[SharedTranslation](env)
	require.NoError(t, err)
	assert.Equal(t, b.ID(), shared.From)
	assert.Equal(t, "hello", shared.Translated)

	expectNone(t, aEvents)
	expectNone(t, cEvents)

	// B leaves by disconnecting
	require.NoError(t, b.Close())
	env = next(t, aEvents)
	require.Equal(t, protocol.TypeUserLeft, env.Type)
	left, err := protocol.DecodeData[protocol.UserLeft](env)
	require.NoError(t, err)
	assert.Equal(t, b.ID(), left.ID)
	require.Eventually(t, func() bool {
		return len(o.Rooms.MembersOf("100")) == 1
	}, waitFor, 10*time.Millisecond)
	assert.Empty(t, a.Peers())

	require.NoError(t, a.Close())
	require.Eventually(t, func() bool { return !o.Rooms.Has("100") }, waitFor, 10*time.Millisecond)

	d := dial(t, url)
	assert.Empty(t, join(t, d, "100", ""))
}

func TestPingAndWhoAmI(t *testing.T) {
	url, _ := startServer(t)
	a := dial(t, url)
	events := collect(a, protocol.TypePong, protocol.TypeWhoAmI)

	require.NoError(t, a.Ping())
	assert.Equal(t, protocol.TypePong, next(t, events).Type)

	join(t, a, "7", "Ana")
	require.NoError(t, a.SetLanguage("de"))
	require.NoError(t, a.WhoAmI())
	env := next(t, events)
	require.Equal(t, protocol.TypeWhoAmI, env.Type)
	who, err := protocol.DecodeData[protocol.WhoAmI](env)
	require.NoError(t, err)
	assert.Equal(t, protocol.WhoAmI{ID: a.ID(), Profile: domain.Profile{Name: "Ana", Language: "de"}, Room: "7"}, who)
}

func TestLeaveRoomKeepsConnection(t *testing.T) {
	url, o := startServer(t)
	a := dial(t, url)
	b := dial(t, url)
	aEvents := collect(a, protocol.TypeUserLeft, protocol.TypeScreenSharingStatus)
	join(t, a, "1", "")
	join(t, b, "1", "")

	require.NoError(t, b.ScreenShareStatus(true))
	env := next(t, aEvents)
	st, err := protocol.DecodeData[protocol.ScreenShareStatus](env)
	require.NoError(t, err)
	assert.Equal(t, protocol.ScreenShareStatus{From: b.ID(), Sharing: true}, st)

	require.NoError(t, b.LeaveRoom())
	assert.Equal(t, protocol.TypeUserLeft, next(t, aEvents).Type)
	assert.True(t, o.Registry.Has(b.ID()))

	// no longer in a room: relays are dropped
	require.NoError(t, b.ScreenShareStatus(false))
	expectNone(t, aEvents)
}
