package signal

import (
	"github.com/dkeye/LiveTranslate/internal/domain"
	"github.com/dkeye/LiveTranslate/internal/protocol"
)

func (ctl *SignalWSController) handleSetLanguage(sid domain.ConnectionID, env protocol.Envelope) {
	p, err := protocol.DecodeData[protocol.SetLanguage](env)
	if err != nil {
		badPayload(sid, env, err)
		return
	}
	ctl.Orch.SetLanguage(sid, p.Language)
}

func (ctl *SignalWSController) handleWhoAmI(sid domain.ConnectionID, conn *WsSignalConn) {
	who, ok := ctl.Orch.Describe(sid)
	if !ok {
		return
	}
	ctl.sendJSON(conn, protocol.TypeWhoAmI, who)
}
