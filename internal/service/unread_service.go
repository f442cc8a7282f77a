package service

import (
	"context"
	"fmt"
	"sync"

	"fitsocial/internal/domain"
)

type unreadPair struct {
	owner int64
	from  int64
}

// UnreadService maintains per-user unread message counters. The in-memory
// counts are a cache over the persisted read flags; Recompute rebuilds them
// from the store and must be called after any connection gap before the
// cached total is trusted.
type UnreadService struct {
	messages domain.MessageRepository

	mu     sync.Mutex
	pairs  map[unreadPair]int
	totals map[int64]int
}

func NewUnreadService(messages domain.MessageRepository) *UnreadService {
	return &UnreadService{
		messages: messages,
		pairs:    make(map[unreadPair]int),
		totals:   make(map[int64]int),
	}
}

// Increment bumps the owner's counter for messages from a given sender.
func (s *UnreadService) Increment(ownerID, fromID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pairs[unreadPair{ownerID, fromID}]++
	s.totals[ownerID]++
}

// MarkRead persists the unread -> read transition for every message from
// fromID to ownerID and zeroes the pair-scoped count and the total
// consistently. Marking an already-read pair is a no-op.
func (s *UnreadService) MarkRead(ctx context.Context, ownerID, fromID int64) error {
	if _, err := s.messages.MarkReadFrom(ctx, ownerID, fromID); err != nil {
		return fmt.Errorf("mark read: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := unreadPair{ownerID, fromID}
	if n := s.pairs[key]; n > 0 {
		s.totals[ownerID] -= n
		if s.totals[ownerID] < 0 {
			s.totals[ownerID] = 0
		}
	}
	delete(s.pairs, key)
	return nil
}

// Get returns the owner's cached unread total.
func (s *UnreadService) Get(ownerID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totals[ownerID]
}

// GetFrom returns the owner's cached unread count for one sender.
func (s *UnreadService) GetFrom(ownerID, fromID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pairs[unreadPair{ownerID, fromID}]
}

// Recompute replaces the owner's cached counts with the authoritative values
// derived from persisted read flags.
func (s *UnreadService) Recompute(ctx context.Context, ownerID int64) (int, error) {
	bySender, err := s.messages.UnreadBySender(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("recompute unread: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.pairs {
		if key.owner == ownerID {
			delete(s.pairs, key)
		}
	}
	total := 0
	for fromID, n := range bySender {
		s.pairs[unreadPair{ownerID, fromID}] = n
		total += n
	}
	s.totals[ownerID] = total
	return total, nil
}
