package signal

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/dkeye/LiveTranslate/internal/app/orch"
	"github.com/dkeye/LiveTranslate/internal/config"
	"github.com/dkeye/LiveTranslate/internal/core"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type SignalWSController struct {
	Orch    *orch.Orchestrator
	cfg     config.SignalConfig
	limiter *RoomRateLimiter
	// Identity resolves the authenticated display name of the caller.
	Identity func(c *gin.Context) string

	upgrader websocket.Upgrader
}

func NewSignalWSController(o *orch.Orchestrator, cfg config.SignalConfig, checkOrigin func(r *http.Request) bool) *SignalWSController {
	if checkOrigin == nil {
		checkOrigin = func(r *http.Request) bool { return true }
	}
	if cfg.PingPeriod <= 0 {
		cfg.PingPeriod = 54 * time.Second
	}
	if cfg.PongWait <= cfg.PingPeriod {
		cfg.PongWait = cfg.PingPeriod * 10 / 9
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 64
	}
	return &SignalWSController{
		Orch:     o,
		cfg:      cfg,
		limiter:  NewRoomRateLimiter(cfg.RateLimit, cfg.RateInterval),
		upgrader: websocket.Upgrader{CheckOrigin: checkOrigin},
	}
}

// WsSignalConn is the transport endpoint of one client.
// It implements core.SignalConnection.
type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrClosed
	}
	select {
	case c.send <- f:
	default:
		return core.ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	conn := &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, ctl.cfg.SendBuffer),
	}

	identity := ""
	if ctl.Identity != nil {
		identity = ctl.Identity(c)
	}
	sid := ctl.Orch.Connect(conn, identity)
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("remote", c.ClientIP()).Msg("new WS connection")

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go func() {
		defer cancel()
		ctl.readPump(ctx, sid, conn)
	}()
}

func (ctl *SignalWSController) writeWait() time.Duration {
	if ctl.cfg.WriteWait > 0 {
		return ctl.cfg.WriteWait
	}
	return 5 * time.Second
}
