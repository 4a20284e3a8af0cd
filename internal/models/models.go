package models

import (
	"encoding/json"
	"errors"
)

// SignalType addresses one of the two signaling mailboxes in a room.
type SignalType string

const (
	SignalOffer  SignalType = "offer"
	SignalAnswer SignalType = "answer"
)

// ParseSignalType validates the {type} path segment of the signaling API.
func ParseSignalType(s string) (SignalType, error) {
	switch SignalType(s) {
	case SignalOffer, SignalAnswer:
		return SignalType(s), nil
	default:
		return "", ErrInvalidType
	}
}

// Validation errors surfaced by the signaling API as machine-readable codes.
var (
	ErrInvalidRoom = errors.New("invalid_room")
	ErrInvalidType = errors.New("invalid_type")
)

/*** HTTP API shapes ***/

type OKResponse struct {
	OK bool `json:"ok"`
}

type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

type CreateRoomResponse struct {
	Code string `json:"code"`
}

// PendingResponse is what a signal read returns before the peer has posted.
type PendingResponse struct {
	Pending bool `json:"pending"`
}

type StatsResponse struct {
	Rooms    int `json:"rooms"`
	Sessions int `json:"sessions"`
}

/*** WebSocket protocol ***/

// Peer is one entry of a presence snapshot.
type Peer struct {
	ID    string `json:"id"`
	Color string `json:"color"`
}

// ClientFrame is the envelope for every client->server message. Payload
// fields stay raw so wrong-shaped messages can be dropped without failing
// the read loop.
type ClientFrame struct {
	Type      string          `json:"type"`
	Code      json.RawMessage `json:"code,omitempty"`
	Selection json.RawMessage `json:"selection,omitempty"`
	Role      string          `json:"role,omitempty"`
}

const (
	FrameWelcome  = "welcome"
	FrameInit     = "init"
	FramePresence = "presence"
	FrameCode     = "code"
	FrameCursor   = "cursor"
	FramePing     = "ping"
	FrameHello    = "hello"
)

type WelcomeFrame struct {
	Type  string `json:"type"`
	ID    string `json:"id"`
	Color string `json:"color"`
}

// InitFrame delivers the current document to a joiner. The document travels
// in the "code" field, same as live updates.
type InitFrame struct {
	Type string `json:"type"`
	Code string `json:"code"`
}

type PresenceFrame struct {
	Type    string `json:"type"`
	Clients []Peer `json:"clients"`
}

type CodeFrame struct {
	Type string `json:"type"`
	Code string `json:"code"`
}

type CursorFrame struct {
	Type      string          `json:"type"`
	ID        string          `json:"id"`
	Selection json.RawMessage `json:"selection"`
}
