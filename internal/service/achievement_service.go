package service

import (
	"context"
	"log"
	"sync"
	"time"

	"fitsocial/internal/domain"
)

const evaluateTimeout = 10 * time.Second

// AchievementService evaluates the static achievement catalog against a
// user's aggregate counters and emits unlock notifications. Evaluations
// triggered by domain events run on a small worker pool; the uniqueness
// constraint on the unlock row is the sole guard against double-unlocking,
// so concurrent evaluations for the same user are safe.
type AchievementService struct {
	achievements domain.AchievementRepository
	users        domain.UserRepository
	notifier     *NotificationService

	jobs chan int64
	wg   sync.WaitGroup
	once sync.Once
}

func NewAchievementService(achievements domain.AchievementRepository, users domain.UserRepository, notifier *NotificationService, workers, queue int) *AchievementService {
	if workers <= 0 {
		workers = 2
	}
	if queue <= 0 {
		queue = 64
	}
	s := &AchievementService{
		achievements: achievements,
		users:        users,
		notifier:     notifier,
		jobs:         make(chan int64, queue),
	}
	for i := 0; i < workers; i++ {
		s.wg.Add(1)
		go s.worker()
	}
	return s
}

func (s *AchievementService) worker() {
	defer s.wg.Done()
	for userID := range s.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), evaluateTimeout)
		if _, err := s.Evaluate(ctx, userID); err != nil {
			log.Printf("achievements: evaluate user %d: %v", userID, err)
		}
		cancel()
	}
}

// Trigger enqueues an evaluation for the user. Never blocks the caller: a
// full queue drops the job with a log line, and a missed evaluation is
// picked up by the next trigger for the same user.
func (s *AchievementService) Trigger(userID int64) {
	select {
	case s.jobs <- userID:
	default:
		log.Printf("achievements: queue full, dropping evaluation for user %d", userID)
	}
}

// Close stops the worker pool after draining queued evaluations.
func (s *AchievementService) Close() {
	s.once.Do(func() {
		close(s.jobs)
	})
	s.wg.Wait()
}

// Evaluate takes one snapshot of the user's counters, unlocks every
// definition the user newly qualifies for, and returns those definitions.
// A definition already unlocked (including by a concurrent evaluation that
// won the insert) produces neither a row nor a notification.
func (s *AchievementService) Evaluate(ctx context.Context, userID int64) ([]*domain.AchievementDefinition, error) {
	stats, err := s.users.GetStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	defs, err := s.achievements.ListDefinitions(ctx)
	if err != nil {
		return nil, err
	}
	unlocked, err := s.achievements.ListUnlocked(ctx, userID)
	if err != nil {
		return nil, err
	}

	var newly []*domain.AchievementDefinition
	for _, def := range defs {
		if unlocked[def.ID] {
			continue
		}
		if counterFor(stats, def.Category) < def.Threshold {
			continue
		}
		inserted, err := s.achievements.InsertUnlock(ctx, userID, def.ID)
		if err != nil {
			return newly, err
		}
		if !inserted {
			// Lost the race to another evaluation; not an error.
			continue
		}
		if _, err := s.notifier.AchievementUnlocked(ctx, userID, def); err != nil {
			log.Printf("achievements: notify unlock %q for user %d: %v", def.Name, userID, err)
		}
		newly = append(newly, def)
	}
	return newly, nil
}

func counterFor(stats *domain.UserStats, category string) int {
	switch category {
	case domain.AchievementCategoryPosts:
		return stats.Posts
	case domain.AchievementCategoryFollowers:
		return stats.Followers
	case domain.AchievementCategoryLikes:
		return stats.Likes
	case domain.AchievementCategoryRoutines:
		return stats.Routines
	default:
		return 0
	}
}
