package client

import (
	"fmt"

	"github.com/dkeye/LiveTranslate/internal/domain"
	"github.com/goccy/go-json"
	"github.com/pion/webrtc/v4"
)

const candidateType = "candidate"

// PeerSignal is one negotiation step: a session description or a trickled
// ICE candidate, in the shape browsers exchange them.
type PeerSignal struct {
	Description *webrtc.SessionDescription
	Candidate   *webrtc.ICECandidateInit
}

type candidateEnvelope struct {
	Type      string                  `json:"type"`
	Candidate webrtc.ICECandidateInit `json:"candidate"`
}

func (s PeerSignal) MarshalJSON() ([]byte, error) {
	switch {
	case s.Description != nil:
		return json.Marshal(s.Description)
	case s.Candidate != nil:
		return json.Marshal(candidateEnvelope{Type: candidateType, Candidate: *s.Candidate})
	}
	return nil, fmt.Errorf("empty peer signal")
}

// DecodePeerSignal parses a signal payload received from a peer.
func DecodePeerSignal(raw []byte) (PeerSignal, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return PeerSignal{}, fmt.Errorf("peer signal: %w", err)
	}
	if head.Type == candidateType {
		var ce candidateEnvelope
		if err := json.Unmarshal(raw, &ce); err != nil {
			return PeerSignal{}, fmt.Errorf("peer candidate: %w", err)
		}
		return PeerSignal{Candidate: &ce.Candidate}, nil
	}
	var sd webrtc.SessionDescription
	if err := json.Unmarshal(raw, &sd); err != nil {
		return PeerSignal{}, fmt.Errorf("peer description: %w", err)
	}
	if sd.Type == webrtc.SDPTypeUnknown {
		return PeerSignal{}, fmt.Errorf("peer signal: unknown type %q", head.Type)
	}
	return PeerSignal{Description: &sd}, nil
}

func (c *Client) SendDescription(to domain.ConnectionID, sd webrtc.SessionDescription) error {
	return c.Signal(to, PeerSignal{Description: &sd})
}

func (c *Client) SendCandidate(to domain.ConnectionID, ci webrtc.ICECandidateInit) error {
	return c.Signal(to, PeerSignal{Candidate: &ci})
}
