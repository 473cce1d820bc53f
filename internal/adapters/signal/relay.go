package signal

import (
	"github.com/dkeye/LiveTranslate/internal/domain"
	"github.com/dkeye/LiveTranslate/internal/protocol"
)

func (ctl *SignalWSController) handlePeerSignal(sid domain.ConnectionID, env protocol.Envelope) {
	p, err := protocol.DecodeData[protocol.SignalOut](env)
	if err != nil {
		badPayload(sid, env, err)
		return
	}
	ctl.Orch.Signal(sid, p.To, p.Signal)
}

func (ctl *SignalWSController) handleChat(sid domain.ConnectionID, env protocol.Envelope) {
	obj, err := protocol.DecodeObject(env)
	if err != nil {
		badPayload(sid, env, err)
		return
	}
	ctl.Orch.Chat(sid, obj)
}

func (ctl *SignalWSController) handleTranslation(sid domain.ConnectionID, env protocol.Envelope) {
	obj, err := protocol.DecodeObject(env)
	if err != nil {
		badPayload(sid, env, err)
		return
	}
	ctl.Orch.TranslationResult(sid, obj)
}

func (ctl *SignalWSController) handleScreenShareSignal(sid domain.ConnectionID, env protocol.Envelope) {
	p, err := protocol.DecodeData[protocol.ScreenShareSignal](env)
	if err != nil {
		badPayload(sid, env, err)
		return
	}
	ctl.Orch.ScreenShareSignal(sid, p.Signal)
}

func (ctl *SignalWSController) handleScreenShareStatus(sid domain.ConnectionID, env protocol.Envelope) {
	p, err := protocol.DecodeData[protocol.ScreenShareStatus](env)
	if err != nil {
		badPayload(sid, env, err)
		return
	}
	ctl.Orch.ScreenShareStatus(sid, p.Sharing)
}
