package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fitsocial/internal/domain"
)

type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

var _ domain.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	u := &domain.User{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, username, display_name, is_active, created_at FROM users WHERE id = ?
	`, id).Scan(&u.ID, &u.Username, &u.DisplayName, &u.IsActive, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetStats reads the aggregate-counter snapshot in a single round-trip.
// Users with no stats row yet report zero counters.
func (r *UserRepo) GetStats(ctx context.Context, userID int64) (*domain.UserStats, error) {
	s := &domain.UserStats{UserID: userID}
	err := r.db.QueryRowContext(ctx, `
		SELECT posts, followers, likes, routines FROM user_stats WHERE user_id = ?
	`, userID).Scan(&s.Posts, &s.Followers, &s.Likes, &s.Routines)
	if errors.Is(err, sql.ErrNoRows) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user stats: %w", err)
	}
	return s, nil
}
