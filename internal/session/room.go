package session

import (
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"teamcreate/internal/models"
)

// Palette holds the display colors handed out to participants. With six or
// fewer peers in a room every color is distinct; beyond that duplicates are
// allowed.
var Palette = [...]string{"#e6194b", "#3cb44b", "#ffe119", "#4363d8", "#f58231", "#911eb4"}

// Room holds the signaling mailboxes, the authoritative document and the
// connected clients for one room code.
type Room struct {
	Code string

	mu        sync.Mutex
	offer     json.RawMessage
	answer    json.RawMessage
	document  string
	clients   map[*Client]struct{}
	updatedAt time.Time
	now       func() time.Time
}

func newRoom(code string, now func() time.Time) *Room {
	return &Room{
		Code:      code,
		clients:   make(map[*Client]struct{}),
		updatedAt: now(),
		now:       now,
	}
}

// Touch marks the room as freshly mutated for TTL purposes.
func (r *Room) Touch() {
	r.mu.Lock()
	r.updatedAt = r.now()
	r.mu.Unlock()
}

func (r *Room) UpdatedAt() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.updatedAt
}

func (r *Room) expired(now time.Time, ttl time.Duration) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return now.Sub(r.updatedAt) >= ttl
}

// SetSignal stores a payload verbatim in the offer or answer mailbox,
// replacing any prior value.
func (r *Room) SetSignal(t models.SignalType, payload json.RawMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch t {
	case models.SignalOffer:
		r.offer = payload
	case models.SignalAnswer:
		r.answer = payload
	}
	r.updatedAt = r.now()
}

// Signal returns the stored payload for t, or ok=false while the peer has
// not posted yet. Reading never touches the TTL clock.
func (r *Room) Signal(t models.SignalType) (json.RawMessage, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var p json.RawMessage
	switch t {
	case models.SignalOffer:
		p = r.offer
	case models.SignalAnswer:
		p = r.answer
	}
	return p, p != nil
}

// SetDocument replaces the document content, last write wins.
func (r *Room) SetDocument(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.document = text
	r.updatedAt = r.now()
}

func (r *Room) Document() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.document
}

// Join adds c to the room and assigns it a color not currently in use when
// one is free; with the palette exhausted it picks at random.
func (r *Room) Join(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.Color = r.pickColorLocked()
	r.clients[c] = struct{}{}
	r.updatedAt = r.now()
}

func (r *Room) pickColorLocked() string {
	used := make(map[string]bool, len(r.clients))
	for c := range r.clients {
		used[c.Color] = true
	}
	free := make([]string, 0, len(Palette))
	for _, color := range Palette {
		if !used[color] {
			free = append(free, color)
		}
	}
	if len(free) == 0 {
		return Palette[rand.Intn(len(Palette))]
	}
	return free[rand.Intn(len(free))]
}

// Leave removes c and returns how many clients remain.
func (r *Room) Leave(c *Client) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, c)
	r.updatedAt = r.now()
	return len(r.clients)
}

func (r *Room) ClientCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// Presence returns the current id/color snapshot, one entry per client.
func (r *Room) Presence() []models.Peer {
	r.mu.Lock()
	defer r.mu.Unlock()
	peers := make([]models.Peer, 0, len(r.clients))
	for c := range r.clients {
		peers = append(peers, models.Peer{ID: c.ID, Color: c.Color})
	}
	return peers
}

// Broadcast sends frame to every client except the sender. The client list
// is snapshotted under the lock so a disconnect during the send cannot skip
// or double-visit a recipient; the sends themselves run unlocked.
func (r *Room) Broadcast(sender *Client, frame any) int {
	r.mu.Lock()
	targets := make([]*Client, 0, len(r.clients))
	for c := range r.clients {
		if sender != nil && c.ID == sender.ID {
			continue
		}
		targets = append(targets, c)
	}
	r.mu.Unlock()

	for _, c := range targets {
		c.Send(frame)
	}
	return len(targets)
}
