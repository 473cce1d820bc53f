package client

import (
	"sync"

	"github.com/dkeye/LiveTranslate/internal/protocol"
	"github.com/rs/zerolog/log"
)

type Handler func(protocol.Envelope)

// Subscription is the handle returned by Subscribe. Each call to Subscribe
// yields its own handle even for the same handler.
type Subscription struct {
	id    uint64
	typ   protocol.MessageType
	owner *subscriptions
	once  sync.Once
}

// Unsubscribe stops further deliveries. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() { s.owner.remove(s.typ, s.id) })
}

type subEntry struct {
	id uint64
	fn Handler
}

type subscriptions struct {
	mu       sync.RWMutex
	next     uint64
	handlers map[protocol.MessageType][]subEntry
}

func newSubscriptions() *subscriptions {
	return &subscriptions{handlers: make(map[protocol.MessageType][]subEntry)}
}

func (s *subscriptions) add(t protocol.MessageType, fn Handler) *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.handlers[t] = append(s.handlers[t], subEntry{id: s.next, fn: fn})
	return &Subscription{id: s.next, typ: t, owner: s}
}

func (s *subscriptions) remove(t protocol.MessageType, id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.handlers[t]
	for i, e := range list {
		if e.id == id {
			s.handlers[t] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(s.handlers[t]) == 0 {
		delete(s.handlers, t)
	}
}

func (s *subscriptions) count(t protocol.MessageType) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.handlers[t])
}

// publish calls handlers in subscription order. The list is copied so a
// handler may unsubscribe itself.
func (s *subscriptions) publish(env protocol.Envelope) {
	s.mu.RLock()
	list := append([]subEntry(nil), s.handlers[env.Type]...)
	s.mu.RUnlock()
	for _, e := range list {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Error().Interface("panic", r).Str("module", "client").Str("type", string(env.Type)).Msg("handler panic")
				}
			}()
			e.fn(env)
		}()
	}
}
