// Package orch coordinates room membership and relays client events.
//
// Every exported method takes the orchestrator lock for its whole duration,
// so a membership change and the notifications derived from it are observed
// by all connections as one step. Delivery only enqueues frames on
// non-blocking per-connection queues; no network I/O happens under the lock.
package orch

import (
	"errors"
	"sync"
	"time"

	"github.com/dkeye/LiveTranslate/internal/app"
	"github.com/dkeye/LiveTranslate/internal/core"
	"github.com/dkeye/LiveTranslate/internal/domain"
	"github.com/dkeye/LiveTranslate/internal/metrics"
	"github.com/dkeye/LiveTranslate/internal/protocol"
	"github.com/rs/zerolog/log"
)

type Orchestrator struct {
	Registry *app.Registry
	Rooms    core.RoomDirectory
	Policy   app.Policy
	// Now stamps chat messages; time.Now when nil.
	Now func() time.Time

	mu sync.Mutex
}

func New(policy app.Policy) *Orchestrator {
	return &Orchestrator{
		Registry: app.NewRegistry(),
		Rooms:    app.NewRoomManager(),
		Policy:   policy,
	}
}

func (o *Orchestrator) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// sendTo encodes v once and enqueues it for every target.
// Unknown targets are skipped. It returns the number of successful enqueues.
func (o *Orchestrator) sendTo(room domain.RoomID, targets []domain.ConnectionID, t protocol.MessageType, v any) int {
	if len(targets) == 0 {
		return 0
	}
	frame, err := protocol.Encode(t, v)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Str("type", string(t)).Msg("encode")
		return 0
	}
	sent := 0
	for _, id := range targets {
		conn, ok := o.Registry.Signal(id)
		if !ok {
			continue
		}
		if err := conn.TrySend(frame); err != nil {
			o.onSendError(room, id, conn, err)
			continue
		}
		sent++
	}
	metrics.AddRelayed(string(t), sent)
	return sent
}

func (o *Orchestrator) onSendError(room domain.RoomID, id domain.ConnectionID, conn core.SignalConnection, err error) {
	if errors.Is(err, core.ErrClosed) {
		// disconnect is already on its way
		return
	}
	metrics.IncDropped(metrics.ReasonBackpressure)
	action := app.DropFrame
	if o.Policy != nil {
		action = o.Policy.OnBackPressure(room, id)
	}
	log.Warn().Err(err).Str("module", "orch").Str("sid", string(id)).Str("room", string(room)).Int("action", int(action)).Msg("send failed")
	if action == app.KickMember {
		// Closing the transport ends its read loop, which reports Disconnect.
		conn.Close()
	}
}

func (o *Orchestrator) updateGauges() {
	metrics.SetConnections(o.Registry.Count())
	metrics.SetRooms(o.Rooms.Count())
}
