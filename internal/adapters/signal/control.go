package signal

import "github.com/dkeye/LiveTranslate/internal/protocol"

func (ctl *SignalWSController) handlePing(conn *WsSignalConn) {
	ctl.sendJSON(conn, protocol.TypePong, nil)
}
