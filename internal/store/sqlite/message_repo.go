package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fitsocial/internal/domain"
)

type MessageRepo struct {
	db *sql.DB
}

func NewMessageRepo(db *sql.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

var _ domain.MessageRepository = (*MessageRepo)(nil)

// Create persists the message and assigns its id and timestamp. The
// autoincrement id is the per-conversation ordering truth.
func (r *MessageRepo) Create(ctx context.Context, m *domain.Message) error {
	m.CreatedAt = time.Now().UTC()
	query := `
		INSERT INTO messages (sender_id, recipient_id, content, attachment_kind, attachment_url, attachment_name, client_tag, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?)
	`
	res, err := r.db.ExecContext(ctx, query,
		m.SenderID,
		m.RecipientID,
		m.Content,
		m.AttachmentKind,
		m.AttachmentURL,
		m.AttachmentName,
		m.ClientTag,
		m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	m.ID = id
	m.IsRead = false
	return nil
}

// ListBetween returns the most recent messages exchanged between two users,
// in chronological order.
func (r *MessageRepo) ListBetween(ctx context.Context, userA, userB int64, limit int) ([]*domain.Message, error) {
	query := `
		SELECT id, sender_id, recipient_id, content, attachment_kind, attachment_url, attachment_name, client_tag, is_read, created_at
		FROM messages
		WHERE (sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)
		ORDER BY id DESC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, userA, userB, userB, userA, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var res []*domain.Message
	for rows.Next() {
		m := &domain.Message{}
		if err := rows.Scan(
			&m.ID,
			&m.SenderID,
			&m.RecipientID,
			&m.Content,
			&m.AttachmentKind,
			&m.AttachmentURL,
			&m.AttachmentName,
			&m.ClientTag,
			&m.IsRead,
			&m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		res = append(res, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	// Reverse to chronological order (query returns DESC).
	for i, j := 0, len(res)-1; i < j; i, j = i+1, j-1 {
		res[i], res[j] = res[j], res[i]
	}
	return res, nil
}

func (r *MessageRepo) MarkReadFrom(ctx context.Context, recipientID, senderID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE messages SET is_read = 1
		WHERE recipient_id = ? AND sender_id = ? AND is_read = 0
	`, recipientID, senderID)
	if err != nil {
		return 0, fmt.Errorf("mark read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func (r *MessageRepo) CountUnread(ctx context.Context, recipientID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM messages WHERE recipient_id = ? AND is_read = 0
	`, recipientID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return count, nil
}

func (r *MessageRepo) UnreadBySender(ctx context.Context, recipientID int64) (map[int64]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT sender_id, COUNT(*) FROM messages
		WHERE recipient_id = ? AND is_read = 0
		GROUP BY sender_id
	`, recipientID)
	if err != nil {
		return nil, fmt.Errorf("unread by sender: %w", err)
	}
	defer rows.Close()

	res := make(map[int64]int)
	for rows.Next() {
		var senderID int64
		var count int
		if err := rows.Scan(&senderID, &count); err != nil {
			return nil, fmt.Errorf("scan unread count: %w", err)
		}
		res[senderID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("unread by sender: %w", err)
	}
	return res, nil
}
