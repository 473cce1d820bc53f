package client

import (
	"testing"

	"github.com/dkeye/LiveTranslate/internal/protocol"
	"github.com/stretchr/testify/assert"
)

func TestSubscriptionsOrderAndRelease(t *testing.T) {
	s := newSubscriptions()
	var calls []string
	h := func(name string) Handler {
		return func(protocol.Envelope) { calls = append(calls, name) }
	}

	first := s.add(protocol.TypeUserJoined, h("first"))
	second := s.add(protocol.TypeUserJoined, h("second"))
	dup := s.add(protocol.TypeUserJoined, h("first"))
	s.add(protocol.TypeUserLeft, h("left"))

	s.publish(protocol.Envelope{Type: protocol.TypeUserJoined})
	assert.Equal(t, []string{"first", "second", "first"}, calls)

	calls = nil
	dup.Unsubscribe()
	dup.Unsubscribe()
	s.publish(protocol.Envelope{Type: protocol.TypeUserJoined})
	assert.Equal(t, []string{"first", "second"}, calls)

	first.Unsubscribe()
	second.Unsubscribe()
	assert.Equal(t, 0, s.count(protocol.TypeUserJoined))
	assert.Equal(t, 1, s.count(protocol.TypeUserLeft))
}

func TestHandlerMayUnsubscribeItself(t *testing.T) {
	s := newSubscriptions()
	n := 0
	var sub *Subscription
	sub = s.add(protocol.TypePong, func(protocol.Envelope) {
		n++
		sub.Unsubscribe()
	})
	s.publish(protocol.Envelope{Type: protocol.TypePong})
	s.publish(protocol.Envelope{Type: protocol.TypePong})
	assert.Equal(t, 1, n)
}

func TestHandlerPanicDoesNotStopOthers(t *testing.T) {
	s := newSubscriptions()
	reached := false
	s.add(protocol.TypePong, func(protocol.Envelope) { panic("boom") })
	s.add(protocol.TypePong, func(protocol.Envelope) { reached = true })
	s.publish(protocol.Envelope{Type: protocol.TypePong})
	assert.True(t, reached)
}
