package service

import (
	"context"
	"fmt"
	"log"

	"fitsocial/internal/domain"
)

const maxContentRunes = 5000

// MessageService routes direct messages: validate, persist, then push the
// authoritative copy to both parties' live channels. The store's commit
// order is the delivery order; the push is a best-effort fast path on top
// of the durable row.
type MessageService struct {
	messages domain.MessageRepository
	unread   *UnreadService
	pusher   Pusher

	HistoryLimit int
}

func NewMessageService(messages domain.MessageRepository, unread *UnreadService, pusher Pusher, historyLimit int) *MessageService {
	return &MessageService{
		messages:     messages,
		unread:       unread,
		pusher:       pusher,
		HistoryLimit: historyLimit,
	}
}

type SendInput struct {
	SenderID       int64
	RecipientID    int64
	Content        string
	AttachmentKind string
	AttachmentURL  string
	AttachmentName string
	// ClientTag is the client-generated correlation token, echoed back in
	// the confirmed message so optimistic entries reconcile exactly.
	ClientTag string
}

// Send validates and persists the message, then pushes it to the recipient's
// and the sender's channels. Persistence failure aborts and is surfaced;
// push failures are handled inside the hub and never fail the send.
func (s *MessageService) Send(ctx context.Context, in SendInput) (*domain.Message, error) {
	if in.SenderID == 0 || in.RecipientID == 0 {
		return nil, fmt.Errorf("%w: sender and recipient are required", domain.ErrInvalidPayload)
	}
	hasContent := in.Content != ""
	hasAttachment := in.AttachmentKind != "" || in.AttachmentURL != ""
	if hasContent == hasAttachment {
		return nil, fmt.Errorf("%w: exactly one of content or attachment is required", domain.ErrInvalidPayload)
	}
	if hasAttachment {
		if in.AttachmentKind != domain.AttachmentImage && in.AttachmentKind != domain.AttachmentAudio {
			return nil, fmt.Errorf("%w: attachment kind must be image or audio", domain.ErrInvalidPayload)
		}
		if in.AttachmentURL == "" {
			return nil, fmt.Errorf("%w: attachment url is required", domain.ErrInvalidPayload)
		}
	}
	if len([]rune(in.Content)) > maxContentRunes {
		return nil, fmt.Errorf("%w: content exceeds %d characters", domain.ErrInvalidPayload, maxContentRunes)
	}

	msg := &domain.Message{
		SenderID:    in.SenderID,
		RecipientID: in.RecipientID,
	}
	if hasContent {
		msg.Content = &in.Content
	} else {
		msg.AttachmentKind = &in.AttachmentKind
		msg.AttachmentURL = &in.AttachmentURL
		if in.AttachmentName != "" {
			msg.AttachmentName = &in.AttachmentName
		}
	}
	if in.ClientTag != "" {
		msg.ClientTag = &in.ClientTag
	}

	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("persist message: %w", err)
	}

	event := newMessageEvent(msg)
	s.pusher.Push(msg.RecipientID, event)
	if msg.SenderID != msg.RecipientID {
		s.pusher.Push(msg.SenderID, event)
	}

	// Decoupled from delivery; the counter is a cache and can never fail
	// the send.
	s.unread.Increment(msg.RecipientID, msg.SenderID)

	return msg, nil
}

// MarkRead flips the owner's unread messages from one sender to read and
// pushes the reconciled total back to the owner's channels.
func (s *MessageService) MarkRead(ctx context.Context, ownerID, fromID int64) error {
	if err := s.unread.MarkRead(ctx, ownerID, fromID); err != nil {
		return err
	}
	s.pusher.Push(ownerID, NewUnreadCountEvent(s.unread.Get(ownerID)))
	return nil
}

// History returns the recent messages between two users in chronological
// order. This is the recovery path for traffic missed while disconnected.
func (s *MessageService) History(ctx context.Context, userA, userB int64, limit int) ([]*domain.Message, error) {
	if limit <= 0 || limit > s.HistoryLimit {
		limit = s.HistoryLimit
	}
	msgs, err := s.messages.ListBetween(ctx, userA, userB, limit)
	if err != nil {
		log.Printf("messages: history %d<->%d: %v", userA, userB, err)
		return nil, err
	}
	return msgs, nil
}
