package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"fitsocial/internal/domain"
)

type AchievementRepo struct {
	db *sql.DB
}

func NewAchievementRepo(db *sql.DB) *AchievementRepo {
	return &AchievementRepo{db: db}
}

var _ domain.AchievementRepository = (*AchievementRepo)(nil)

func (r *AchievementRepo) ListDefinitions(ctx context.Context) ([]*domain.AchievementDefinition, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, category, threshold, icon FROM achievement_definitions ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list achievement definitions: %w", err)
	}
	defer rows.Close()

	var res []*domain.AchievementDefinition
	for rows.Next() {
		d := &domain.AchievementDefinition{}
		if err := rows.Scan(&d.ID, &d.Name, &d.Category, &d.Threshold, &d.Icon); err != nil {
			return nil, fmt.Errorf("scan achievement definition: %w", err)
		}
		res = append(res, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list achievement definitions: %w", err)
	}
	return res, nil
}

func (r *AchievementRepo) ListUnlocked(ctx context.Context, userID int64) (map[int64]bool, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT achievement_id FROM achievement_unlocks WHERE user_id = ?
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list unlocks: %w", err)
	}
	defer rows.Close()

	res := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan unlock: %w", err)
		}
		res[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list unlocks: %w", err)
	}
	return res, nil
}

// InsertUnlock writes the unlock row. The primary key over
// (user_id, achievement_id) makes concurrent duplicate inserts a no-op;
// callers learn via the bool whether this invocation won the row.
func (r *AchievementRepo) InsertUnlock(ctx context.Context, userID, achievementID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO achievement_unlocks (user_id, achievement_id) VALUES (?, ?)
	`, userID, achievementID)
	if err != nil {
		return false, fmt.Errorf("insert unlock: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
