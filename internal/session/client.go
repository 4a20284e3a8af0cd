package session

import (
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Client is one live participant connection within a room.
type Client struct {
	ID    string
	Color string

	conn *websocket.Conn
	mu   sync.Mutex
	hook func(any)
}

func NewClient(conn *websocket.Conn) *Client {
	return &Client{ID: uuid.NewString(), conn: conn}
}

// SetSendHook replaces the default WebSocket sender (used in tests).
func (c *Client) SetSendHook(fn func(any)) {
	c.mu.Lock()
	c.hook = fn
	c.mu.Unlock()
}

// Send writes one frame to the peer. Write failures are swallowed: a dead
// connection is cleaned up by its own read loop, never by a broadcaster.
func (c *Client) Send(frame any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hook != nil {
		c.hook(frame)
		return
	}
	if c.conn == nil {
		return
	}
	_ = c.conn.WriteJSON(frame)
}
