package service

import (
	"time"

	"fitsocial/internal/domain"
)

// Pusher delivers an event to every live connection of a user. Satisfied by
// *ws.Hub; delivery is best-effort and never returns an error to callers.
type Pusher interface {
	Push(userID int64, event any)
}

// NewMessageEvent is the payload pushed to both parties when a message is
// persisted.
type NewMessageEvent struct {
	Type           string    `json:"type"`
	ID             int64     `json:"id"`
	SenderID       int64     `json:"sender_id"`
	RecipientID    int64     `json:"recipient_id"`
	Content        *string   `json:"content,omitempty"`
	AttachmentKind *string   `json:"attachment_kind,omitempty"`
	AttachmentURL  *string   `json:"attachment_url,omitempty"`
	AttachmentName *string   `json:"attachment_name,omitempty"`
	ClientTag      *string   `json:"client_tag,omitempty"`
	IsRead         bool      `json:"is_read"`
	Timestamp      time.Time `json:"timestamp"`
}

func newMessageEvent(m *domain.Message) NewMessageEvent {
	return NewMessageEvent{
		Type:           "new_message",
		ID:             m.ID,
		SenderID:       m.SenderID,
		RecipientID:    m.RecipientID,
		Content:        m.Content,
		AttachmentKind: m.AttachmentKind,
		AttachmentURL:  m.AttachmentURL,
		AttachmentName: m.AttachmentName,
		ClientTag:      m.ClientTag,
		IsRead:         m.IsRead,
		Timestamp:      m.CreatedAt,
	}
}

// NewNotificationEvent is the payload pushed to the recipient when a
// notification is persisted.
type NewNotificationEvent struct {
	Type         string    `json:"type"`
	ID           int64     `json:"id"`
	Notification string    `json:"notification_type"`
	Title        string    `json:"title"`
	Body         string    `json:"body"`
	RefID        *int64    `json:"ref_id,omitempty"`
	RefKind      *string   `json:"ref_kind,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

func newNotificationEvent(n *domain.Notification) NewNotificationEvent {
	return NewNotificationEvent{
		Type:         "new_notification",
		ID:           n.ID,
		Notification: n.Type,
		Title:        n.Title,
		Body:         n.Body,
		RefID:        n.RefID,
		RefKind:      n.RefKind,
		Timestamp:    n.CreatedAt,
	}
}

// UnreadCountEvent carries the reconciled unread total, pushed on reconnect
// and after read transitions.
type UnreadCountEvent struct {
	Type  string `json:"type"`
	Total int    `json:"total"`
}

func NewUnreadCountEvent(total int) UnreadCountEvent {
	return UnreadCountEvent{Type: "unread_count", Total: total}
}
