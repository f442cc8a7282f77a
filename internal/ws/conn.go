package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Conn wraps a websocket connection with a write mutex so hub pushes and
// handler-side replies never interleave on the wire.
type Conn struct {
	mu sync.Mutex
	ws *websocket.Conn
}

func NewConn(ws *websocket.Conn) *Conn {
	return &Conn{ws: ws}
}

// WriteEvent serializes v as JSON onto the connection with a bounded
// deadline. A timed-out or failed write leaves the connection unusable;
// callers are expected to unregister it.
func (c *Conn) WriteEvent(v any, timeout time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if timeout > 0 {
		_ = c.ws.SetWriteDeadline(time.Now().Add(timeout))
	}
	return c.ws.WriteJSON(v)
}

// ReadEvent decodes the next inbound JSON frame.
func (c *Conn) ReadEvent(v any) error {
	return c.ws.ReadJSON(v)
}

func (c *Conn) Close() error {
	return c.ws.Close()
}
