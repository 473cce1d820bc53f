// Package client is a Go signaling client: it keeps the peer list of the
// current room and exposes server events through subscriptions.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/dkeye/LiveTranslate/internal/domain"
	"github.com/dkeye/LiveTranslate/internal/protocol"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var ErrClosed = errors.New("client closed")

const writeWait = 5 * time.Second

type Client struct {
	conn *websocket.Conn
	id   domain.ConnectionID
	subs *subscriptions

	writeMu sync.Mutex

	mu    sync.RWMutex
	room  domain.RoomID
	peers []domain.ConnectionID

	done      chan struct{}
	closeOnce sync.Once
}

// Dial connects to the signaling endpoint and waits for the server to
// assign an id.
func Dial(ctx context.Context, url string, header http.Header) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
	}
	_, data, err := conn.ReadMessage()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("read greeting: %w", err)
	}
	env, err := protocol.Decode(data)
	if err != nil || env.Type != protocol.TypeConnected {
		_ = conn.Close()
		return nil, fmt.Errorf("unexpected greeting %q: %w", env.Type, err)
	}
	hello, err := protocol.DecodeData[protocol.Connected](env)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	_ = conn.SetReadDeadline(time.Time{})

	c := &Client{
		conn: conn,
		id:   hello.ID,
		subs: newSubscriptions(),
		done: make(chan struct{}),
	}
	conn.SetPingHandler(func(appData string) error {
		c.writeMu.Lock()
		defer c.writeMu.Unlock()
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(writeWait))
	})
	go c.readLoop()
	return c, nil
}

func (c *Client) ID() domain.ConnectionID { return c.id }

// Done is closed once the connection is gone.
func (c *Client) Done() <-chan struct{} { return c.done }

func (c *Client) Room() domain.RoomID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.room
}

// Peers lists the other members of the current room in arrival order.
func (c *Client) Peers() []domain.ConnectionID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.peers)
}

// Subscribe registers fn for every event of type t.
func (c *Client) Subscribe(t protocol.MessageType, fn Handler) *Subscription {
	return c.subs.add(t, fn)
}

// On subscribes with a handler that receives the decoded payload.
// Payloads that do not decode into T are logged and skipped.
func On[T any](c *Client, t protocol.MessageType, fn func(T)) *Subscription {
	return c.Subscribe(t, func(env protocol.Envelope) {
		v, err := protocol.DecodeData[T](env)
		if err != nil {
			log.Warn().Err(err).Str("module", "client").Msg("decode event")
			return
		}
		fn(v)
	})
}

func (c *Client) readLoop() {
	defer c.shutdown()
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			log.Debug().Err(err).Str("module", "client").Str("sid", string(c.id)).Msg("read loop done")
			return
		}
		env, err := protocol.Decode(data)
		if err != nil {
			log.Warn().Err(err).Str("module", "client").Msg("bad frame")
			continue
		}
		c.track(env)
		c.subs.publish(env)
	}
}

// track keeps the peer list in step with membership events.
func (c *Client) track(env protocol.Envelope) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch env.Type {
	case protocol.TypeRoomUsers:
		ru, err := protocol.DecodeData[protocol.RoomUsers](env)
		if err != nil {
			return
		}
		c.room = ru.Room
		c.peers = c.peers[:0]
		for _, u := range ru.Users {
			c.peers = append(c.peers, u.ID)
		}
	case protocol.TypeUserJoined:
		m, err := protocol.DecodeData[domain.MemberInfo](env)
		if err == nil && !slices.Contains(c.peers, m.ID) {
			c.peers = append(c.peers, m.ID)
		}
	case protocol.TypeUserLeft:
		u, err := protocol.DecodeData[protocol.UserLeft](env)
		if err == nil {
			c.peers = slices.DeleteFunc(c.peers, func(id domain.ConnectionID) bool { return id == u.ID })
		}
	}
}

func (c *Client) send(t protocol.MessageType, v any) error {
	b, err := protocol.Encode(t, v)
	if err != nil {
		return err
	}
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
		return fmt.Errorf("send %s: %w", t, err)
	}
	return nil
}

func (c *Client) JoinRoom(room domain.RoomID, profile domain.ProfileUpdate) error {
	return c.send(protocol.TypeJoinRoom, protocol.JoinRoom{Room: room, Profile: profile})
}

// JoinAndWait joins room and returns the members that were already there.
func (c *Client) JoinAndWait(ctx context.Context, room domain.RoomID, profile domain.ProfileUpdate) ([]domain.MemberInfo, error) {
	got := make(chan protocol.RoomUsers, 1)
	sub := On(c, protocol.TypeRoomUsers, func(ru protocol.RoomUsers) {
		if ru.Room != room {
			return
		}
		select {
		case got <- ru:
		default:
		}
	})
	defer sub.Unsubscribe()

	if err := c.JoinRoom(room, profile); err != nil {
		return nil, err
	}
	select {
	case ru := <-got:
		return ru.Users, nil
	case <-c.done:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Client) LeaveRoom() error {
	if err := c.send(protocol.TypeLeaveRoom, nil); err != nil {
		return err
	}
	c.mu.Lock()
	c.room = ""
	c.peers = nil
	c.mu.Unlock()
	return nil
}

// Signal sends an opaque negotiation payload to one peer.
func (c *Client) Signal(to domain.ConnectionID, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal signal: %w", err)
	}
	return c.send(protocol.TypeSignal, protocol.SignalOut{To: to, Signal: raw})
}

func (c *Client) SendChat(text string) error {
	return c.send(protocol.TypeChatMessage, map[string]any{"text": text})
}

func (c *Client) SetLanguage(language string) error {
	return c.send(protocol.TypeSetLanguage, protocol.SetLanguage{Language: language})
}

// Translation is the payload shared after a local translation finished.
type Translation struct {
	Original       string `json:"original"`
	Translated     string `json:"translated"`
	SourceLanguage string `json:"sourceLanguage,omitempty"`
	TargetLanguage string `json:"targetLanguage,omitempty"`
	Timestamp      string `json:"timestamp,omitempty"`
}

// SharedTranslation is a Translation received from a peer.
type SharedTranslation struct {
	Translation
	From domain.ConnectionID `json:"from"`
}

// ChatMessage is a chat line received from a peer.
type ChatMessage struct {
	From      domain.ConnectionID `json:"from"`
	Text      string              `json:"text"`
	Timestamp string              `json:"timestamp"`
}

func (c *Client) ShareTranslation(t Translation) error {
	return c.send(protocol.TypeTranslationResult, t)
}

func (c *Client) ScreenShareSignal(payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal screen share signal: %w", err)
	}
	return c.send(protocol.TypeScreenShareSignal, protocol.ScreenShareSignal{Signal: raw})
}

func (c *Client) ScreenShareStatus(sharing bool) error {
	return c.send(protocol.TypeScreenShareStatus, protocol.ScreenShareStatus{Sharing: sharing})
}

func (c *Client) Ping() error { return c.send(protocol.TypePing, nil) }

func (c *Client) WhoAmI() error { return c.send(protocol.TypeWhoAmI, nil) }

// Close sends a close frame and tears the connection down.
func (c *Client) Close() error {
	c.writeMu.Lock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
	c.writeMu.Unlock()
	c.shutdown()
	return nil
}

func (c *Client) shutdown() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}
