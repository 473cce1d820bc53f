package signal

import (
	"context"
	"time"

	"github.com/dkeye/LiveTranslate/internal/domain"
	"github.com/dkeye/LiveTranslate/internal/metrics"
	"github.com/dkeye/LiveTranslate/internal/protocol"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()
	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.writeWait())); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(ctl.writeWait())); err != nil {
				log.Debug().Err(err).Str("module", "signal").Msg("writePump ping")
				return
			}
		}
	}
}

// readPump owns the connection lifetime: whatever ends it, graceful close or
// a broken socket, ends in exactly one Disconnect.
func (ctl *SignalWSController) readPump(ctx context.Context, sid domain.ConnectionID, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
		ctl.Orch.Disconnect(sid)
		ctl.limiter.Forget(sid)
		c.Close()
	}()

	c.conn.SetReadLimit(ctl.cfg.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(ctl.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(ctl.cfg.PongWait))
	})

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
					log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump read error")
				}
				return
			}
			_ = c.conn.SetReadDeadline(time.Now().Add(ctl.cfg.PongWait))
			ctl.handleSignal(sid, c, data)
		}
	}
}

func (ctl *SignalWSController) handleSignal(sid domain.ConnectionID, c *WsSignalConn, data []byte) {
	if !ctl.limiter.Allow(sid) {
		metrics.IncDropped(metrics.ReasonRateLimited)
		log.Debug().Str("module", "signal").Str("sid", string(sid)).Msg("rate limited")
		return
	}
	env, err := protocol.Decode(data)
	if err != nil {
		metrics.IncDropped(metrics.ReasonBadPayload)
		log.Debug().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("bad json")
		return
	}

	switch env.Type {
	case protocol.TypeJoinRoom:
		ctl.handleJoin(sid, env)
	case protocol.TypeLeaveRoom:
		ctl.handleLeave(sid)
	case protocol.TypePing:
		ctl.handlePing(c)
	case protocol.TypeWhoAmI:
		ctl.handleWhoAmI(sid, c)
	case protocol.TypeSetLanguage:
		ctl.handleSetLanguage(sid, env)
	case protocol.TypeSignal:
		ctl.handlePeerSignal(sid, env)
	case protocol.TypeChatMessage:
		ctl.handleChat(sid, env)
	case protocol.TypeTranslationResult:
		ctl.handleTranslation(sid, env)
	case protocol.TypeScreenShareSignal:
		ctl.handleScreenShareSignal(sid, env)
	case protocol.TypeScreenShareStatus:
		ctl.handleScreenShareStatus(sid, env)
	default:
		log.Warn().Str("module", "signal").Str("type", string(env.Type)).Msg("unknown signal")
	}
}

func (ctl *SignalWSController) sendJSON(c *WsSignalConn, t protocol.MessageType, v any) {
	b, err := protocol.Encode(t, v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}

func badPayload(sid domain.ConnectionID, env protocol.Envelope, err error) {
	metrics.IncDropped(metrics.ReasonBadPayload)
	log.Debug().Err(err).Str("module", "signal").Str("sid", string(sid)).Str("type", string(env.Type)).Msg("bad payload")
}
