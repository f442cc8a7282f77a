package ws

import (
	"log"
	"sync"
	"time"
)

// userChannel holds the live connections of a single user. The channel is
// created on first registration and retained (possibly empty) for the life
// of the process; its own mutex serializes handle mutations and push loops
// so different users' channels proceed fully in parallel.
type userChannel struct {
	mu       sync.Mutex
	conns    map[*Conn]struct{}
	lastSeen time.Time
}

// Hub maps user identities to their live connections and delivers events to
// every connection a user has open. Delivery is at-most-once-while-connected:
// with no live handles the event is dropped, and missed traffic is recovered
// through the store's history and list queries.
type Hub struct {
	mu       sync.RWMutex
	channels map[int64]*userChannel
	byConn   map[*Conn]int64

	writeTimeout time.Duration

	// Presence hooks, invoked on first-handle-in / last-handle-out.
	// Default stubs do nothing.
	OnOnline  func(userID int64)
	OnOffline func(userID int64)
}

func NewHub(writeTimeout time.Duration) *Hub {
	return &Hub{
		channels:     make(map[int64]*userChannel),
		byConn:       make(map[*Conn]int64),
		writeTimeout: writeTimeout,
	}
}

// channel returns the user's channel, creating it on first use.
func (h *Hub) channel(userID int64) *userChannel {
	h.mu.RLock()
	ch := h.channels[userID]
	h.mu.RUnlock()
	if ch != nil {
		return ch
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if ch = h.channels[userID]; ch == nil {
		ch = &userChannel{conns: make(map[*Conn]struct{})}
		h.channels[userID] = ch
	}
	return ch
}

// Register adds a connection under the user's channel. Idempotent if the
// connection is already present.
func (h *Hub) Register(userID int64, conn *Conn) {
	ch := h.channel(userID)

	h.mu.Lock()
	h.byConn[conn] = userID
	h.mu.Unlock()

	ch.mu.Lock()
	_, present := ch.conns[conn]
	ch.conns[conn] = struct{}{}
	ch.lastSeen = time.Now()
	first := !present && len(ch.conns) == 1
	ch.mu.Unlock()

	if first && h.OnOnline != nil {
		h.OnOnline(userID)
	}
}

// Unregister removes the connection from whichever user owns it. Unknown
// connections are ignored.
func (h *Hub) Unregister(conn *Conn) {
	h.mu.Lock()
	userID, ok := h.byConn[conn]
	if ok {
		delete(h.byConn, conn)
	}
	ch := h.channels[userID]
	h.mu.Unlock()
	if !ok || ch == nil {
		return
	}

	ch.mu.Lock()
	_, present := ch.conns[conn]
	delete(ch.conns, conn)
	ch.lastSeen = time.Now()
	last := present && len(ch.conns) == 0
	ch.mu.Unlock()

	if last && h.OnOffline != nil {
		h.OnOffline(userID)
	}
}

// Push delivers the event to every live connection of the user. A failed or
// timed-out write drops that handle only; remaining handles still receive
// the event. With no live handles the event is dropped.
func (h *Hub) Push(userID int64, event any) {
	h.mu.RLock()
	ch := h.channels[userID]
	h.mu.RUnlock()
	if ch == nil {
		return
	}

	var failed []*Conn
	ch.mu.Lock()
	for conn := range ch.conns {
		if err := conn.WriteEvent(event, h.writeTimeout); err != nil {
			log.Printf("hub: push to user %d: %v", userID, err)
			failed = append(failed, conn)
		}
	}
	ch.mu.Unlock()

	for _, conn := range failed {
		conn.Close()
		h.Unregister(conn)
	}
}

// IsOnline reports whether the user has at least one live connection.
func (h *Hub) IsOnline(userID int64) bool {
	return h.Connections(userID) > 0
}

// Connections returns the number of live connections for the user.
func (h *Hub) Connections(userID int64) int {
	h.mu.RLock()
	ch := h.channels[userID]
	h.mu.RUnlock()
	if ch == nil {
		return 0
	}
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return len(ch.conns)
}

// LastSeen returns the time of the user's latest register/unregister, zero
// if the user never connected.
func (h *Hub) LastSeen(userID int64) time.Time {
	h.mu.RLock()
	ch := h.channels[userID]
	h.mu.RUnlock()
	if ch == nil {
		return time.Time{}
	}
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.lastSeen
}
