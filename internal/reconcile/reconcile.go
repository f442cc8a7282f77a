// Package reconcile implements the client-side view of one conversation:
// optimistic messages rendered at submit time, merged with the confirmed
// copies pushed by the server.
package reconcile

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"fitsocial/internal/domain"
)

// DefaultWindow is the tolerance used to match a confirmed message against
// a provisional one when no client tag round-trips. The exact threshold is
// a policy parameter, not a contract.
const DefaultWindow = 5 * time.Second

// State of a displayed entry.
type State int

const (
	StatePending State = iota
	StateConfirmed
	StateFailed
)

// Entry is one displayed message. Provisional entries carry a negative
// temporary id, disjoint from server-assigned ids, until reconciled.
type Entry struct {
	ID        int64
	SenderID  int64
	Content   string
	SentAt    time.Time
	State     State
	ClientTag string
}

// Conversation holds the optimistic/confirmed merge state for one peer.
type Conversation struct {
	mu         sync.Mutex
	selfID     int64
	peerID     int64
	window     time.Duration
	nextTempID int64
	entries    []*Entry
	open       bool
	unread     int

	// onMarkRead fires when a confirmed incoming message arrives while the
	// conversation is open, so the client issues the mark-as-read call.
	onMarkRead func(peerID int64)
}

func NewConversation(selfID, peerID int64, window time.Duration, onMarkRead func(peerID int64)) *Conversation {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Conversation{
		selfID:     selfID,
		peerID:     peerID,
		window:     window,
		nextTempID: -1,
		onMarkRead: onMarkRead,
	}
}

// SendLocal creates the provisional entry for a just-submitted message and
// appends it immediately. The returned client tag must travel with the send
// request so the confirmation reconciles exactly.
func (c *Conversation) SendLocal(content string) *Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := &Entry{
		ID:        c.nextTempID,
		SenderID:  c.selfID,
		Content:   content,
		SentAt:    time.Now(),
		State:     StatePending,
		ClientTag: uuid.NewString(),
	}
	c.nextTempID--
	c.entries = append(c.entries, e)
	return e
}

// Confirm merges a server-confirmed message. A match against a pending entry
// (by client tag, or by sender + content within the tolerance window)
// replaces that entry in place; otherwise the message appends as new.
// Incoming messages bump the unread indicator, or trigger the mark-read
// callback when the conversation is currently open.
func (c *Conversation) Confirm(m *domain.Message) {
	c.mu.Lock()

	if e := c.matchPending(m); e != nil {
		e.ID = m.ID
		e.SentAt = m.CreatedAt
		e.State = StateConfirmed
		c.mu.Unlock()
		return
	}

	content := ""
	if m.Content != nil {
		content = *m.Content
	} else if m.AttachmentName != nil {
		content = *m.AttachmentName
	}
	tag := ""
	if m.ClientTag != nil {
		tag = *m.ClientTag
	}
	c.entries = append(c.entries, &Entry{
		ID:        m.ID,
		SenderID:  m.SenderID,
		Content:   content,
		SentAt:    m.CreatedAt,
		State:     StateConfirmed,
		ClientTag: tag,
	})

	incoming := m.RecipientID == c.selfID
	open := c.open
	if incoming && !open {
		c.unread++
	}
	c.mu.Unlock()

	if incoming && open && c.onMarkRead != nil {
		c.onMarkRead(c.peerID)
	}
}

// matchPending is called with the lock held.
func (c *Conversation) matchPending(m *domain.Message) *Entry {
	if m.SenderID != c.selfID {
		return nil
	}
	if m.ClientTag != nil && *m.ClientTag != "" {
		for _, e := range c.entries {
			if e.State == StatePending && e.ClientTag == *m.ClientTag {
				return e
			}
		}
	}
	if m.Content == nil {
		return nil
	}
	for _, e := range c.entries {
		if e.State != StatePending || e.Content != *m.Content {
			continue
		}
		d := m.CreatedAt.Sub(e.SentAt)
		if d < 0 {
			d = -d
		}
		if d <= c.window {
			return e
		}
	}
	return nil
}

// SetOpen records whether this conversation is the one currently on screen.
// Opening it clears the unread indicator and fires the mark-read callback if
// anything was pending.
func (c *Conversation) SetOpen(open bool) {
	c.mu.Lock()
	wasUnread := c.unread
	c.open = open
	if open {
		c.unread = 0
	}
	c.mu.Unlock()

	if open && wasUnread > 0 && c.onMarkRead != nil {
		c.onMarkRead(c.peerID)
	}
}

// Unread returns the conversation's unread indicator.
func (c *Conversation) Unread() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unread
}

// Entries returns a snapshot of the displayed sequence in order.
func (c *Conversation) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, len(c.entries))
	for i, e := range c.entries {
		out[i] = *e
	}
	return out
}

// ExpirePending flips provisional entries older than maxAge to the failed
// state so the UI can mark them. Returns how many entries changed.
func (c *Conversation) ExpirePending(maxAge time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	n := 0
	for _, e := range c.entries {
		if e.State == StatePending && e.SentAt.Before(cutoff) {
			e.State = StateFailed
			n++
		}
	}
	return n
}
