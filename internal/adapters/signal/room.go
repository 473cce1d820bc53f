package signal

import (
	"github.com/dkeye/LiveTranslate/internal/domain"
	"github.com/dkeye/LiveTranslate/internal/protocol"
	"github.com/rs/zerolog/log"
)

func (ctl *SignalWSController) handleJoin(sid domain.ConnectionID, env protocol.Envelope) {
	p, err := protocol.DecodeData[protocol.JoinRoom](env)
	if err != nil {
		badPayload(sid, env, err)
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", string(p.Room)).Msg("join")
	ctl.Orch.Join(sid, p.Room, p.Profile)
}

// handleLeave leaves the current room; the connection stays open.
func (ctl *SignalWSController) handleLeave(sid domain.ConnectionID) {
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("leave")
	ctl.Orch.Leave(sid)
}
