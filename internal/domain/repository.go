package domain

import (
	"context"
)

// UserRepository defines the identity reads this core needs.
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	GetStats(ctx context.Context, userID int64) (*UserStats, error)
}

// MessageRepository defines persistence operations for direct messages.
// Create assigns the authoritative id and timestamp; the commit order of
// Create calls is the delivery order.
type MessageRepository interface {
	Create(ctx context.Context, m *Message) error
	ListBetween(ctx context.Context, userA, userB int64, limit int) ([]*Message, error)
	// MarkReadFrom flips every unread message from senderID to recipientID
	// to read and returns how many rows changed.
	MarkReadFrom(ctx context.Context, recipientID, senderID int64) (int64, error)
	CountUnread(ctx context.Context, recipientID int64) (int, error)
	// UnreadBySender returns the per-sender unread counts for a recipient.
	UnreadBySender(ctx context.Context, recipientID int64) (map[int64]int, error)
}

// NotificationRepository defines persistence operations for notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	ListForUser(ctx context.Context, userID int64, limit int) ([]*Notification, error)
	CountUnread(ctx context.Context, userID int64) (int, error)
	MarkAllRead(ctx context.Context, userID int64) error
}

// AchievementRepository defines catalog reads and unlock writes.
type AchievementRepository interface {
	ListDefinitions(ctx context.Context) ([]*AchievementDefinition, error)
	ListUnlocked(ctx context.Context, userID int64) (map[int64]bool, error)
	// InsertUnlock records the unlock and reports whether a new row was
	// written. A duplicate unlock returns (false, nil).
	InsertUnlock(ctx context.Context, userID, achievementID int64) (bool, error)
}
