package protocol

import (
	"github.com/muurk/ledbadge/internal/display"
)

// BridgeMessage is one display message in the JSON bridge protocol.
type BridgeMessage struct {
	Text    string   `json:"text"`
	Speed   int      `json:"speed"`
	Mode    string   `json:"mode"`
	Effects []string `json:"effects,omitempty"`
}

// BridgeRequest is sent by a WebSocket sink to a network display bridge.
type BridgeRequest struct {
	ID       uint32          `json:"id"`
	Messages []BridgeMessage `json:"messages"`
}

// BridgeAck is the bridge's reply to a BridgeRequest.
// Exactly one of Message (OK) or Error (!OK) is set.
type BridgeAck struct {
	ID      uint32 `json:"id"`
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Kind    string `json:"kind,omitempty"` // Error category, e.g. "SpeedOutOfRange" or "SinkFailure"
}

// NewBridgeRequest converts a validated program into its JSON form.
func NewBridgeRequest(id uint32, prog display.Program) BridgeRequest {
	req := BridgeRequest{ID: id, Messages: make([]BridgeMessage, 0, prog.Len())}
	for _, cmd := range prog.Commands() {
		req.Messages = append(req.Messages, BridgeMessage{
			Text:    cmd.Text(),
			Speed:   int(cmd.Speed()),
			Mode:    cmd.Mode().String(),
			Effects: cmd.Effects().Names(),
		})
	}
	return req
}

// Requests converts the messages back into raw display requests.
// The receiving side must validate them; nothing on the wire is trusted.
func (r BridgeRequest) Requests() []display.Request {
	reqs := make([]display.Request, len(r.Messages))
	for i, m := range r.Messages {
		reqs[i] = display.NewRequest(m.Text, float64(m.Speed), m.Mode, m.Effects...)
	}
	return reqs
}
