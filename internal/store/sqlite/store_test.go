package sqlite_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"fitsocial/internal/domain"
	"fitsocial/internal/store/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	if err := sqlite.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedUsers(t *testing.T, db *sql.DB, usernames ...string) {
	t.Helper()
	for i, name := range usernames {
		if _, err := db.Exec(`INSERT INTO users (id, username, is_active) VALUES (?, ?, 1)`, i+1, name); err != nil {
			t.Fatalf("seed user %s: %v", name, err)
		}
	}
}

func textMessage(sender, recipient int64, content string) *domain.Message {
	return &domain.Message{SenderID: sender, RecipientID: recipient, Content: &content}
}

func TestMessageRepo(t *testing.T) {
	db := openTestDB(t)
	seedUsers(t, db, "ana", "beto")
	repo := sqlite.NewMessageRepo(db)
	ctx := context.Background()

	t.Run("CreateAssignsIdentity", func(t *testing.T) {
		m := textMessage(1, 2, "Hola")
		assert.NoError(t, repo.Create(ctx, m))
		assert.Positive(t, m.ID)
		assert.False(t, m.IsRead)
		assert.False(t, m.CreatedAt.IsZero())
	})

	t.Run("ListBetweenIsCommitOrdered", func(t *testing.T) {
		assert.NoError(t, repo.Create(ctx, textMessage(1, 2, "primero")))
		assert.NoError(t, repo.Create(ctx, textMessage(2, 1, "segundo")))
		assert.NoError(t, repo.Create(ctx, textMessage(1, 2, "tercero")))

		msgs, err := repo.ListBetween(ctx, 1, 2, 10)
		assert.NoError(t, err)
		for i := 1; i < len(msgs); i++ {
			assert.Greater(t, msgs[i].ID, msgs[i-1].ID)
		}
		last := msgs[len(msgs)-1]
		assert.Equal(t, "tercero", *last.Content)
	})

	t.Run("MarkReadFromCountsTransitions", func(t *testing.T) {
		db := openTestDB(t)
		seedUsers(t, db, "ana", "beto", "carla")
		repo := sqlite.NewMessageRepo(db)

		assert.NoError(t, repo.Create(ctx, textMessage(1, 2, "uno")))
		assert.NoError(t, repo.Create(ctx, textMessage(1, 2, "dos")))
		assert.NoError(t, repo.Create(ctx, textMessage(3, 2, "tres")))

		n, err := repo.MarkReadFrom(ctx, 2, 1)
		assert.NoError(t, err)
		assert.Equal(t, int64(2), n)

		// Redundant call flips nothing.
		n, err = repo.MarkReadFrom(ctx, 2, 1)
		assert.NoError(t, err)
		assert.Zero(t, n)

		count, err := repo.CountUnread(ctx, 2)
		assert.NoError(t, err)
		assert.Equal(t, 1, count)

		bySender, err := repo.UnreadBySender(ctx, 2)
		assert.NoError(t, err)
		assert.Equal(t, map[int64]int{3: 1}, bySender)
	})
}

func TestNotificationRepo(t *testing.T) {
	db := openTestDB(t)
	seedUsers(t, db, "ana")
	repo := sqlite.NewNotificationRepo(db)
	ctx := context.Background()

	refID := int64(7)
	refKind := domain.RefKindPost
	n := &domain.Notification{
		RecipientID: 1,
		Type:        domain.NotificationNewLike,
		Title:       "Nuevo me gusta",
		Body:        "Ana le ha dado me gusta a tu publicación",
		RefID:       &refID,
		RefKind:     &refKind,
	}
	assert.NoError(t, repo.Create(ctx, n))
	assert.Positive(t, n.ID)

	count, err := repo.CountUnread(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, 1, count)

	list, err := repo.ListForUser(ctx, 1, 10)
	assert.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, int64(7), *list[0].RefID)

	assert.NoError(t, repo.MarkAllRead(ctx, 1))
	count, err = repo.CountUnread(ctx, 1)
	assert.NoError(t, err)
	assert.Zero(t, count)
}

func TestAchievementRepo(t *testing.T) {
	db := openTestDB(t)
	seedUsers(t, db, "ana")
	repo := sqlite.NewAchievementRepo(db)
	ctx := context.Background()

	defs, err := repo.ListDefinitions(ctx)
	assert.NoError(t, err)
	assert.NotEmpty(t, defs)

	t.Run("InsertUnlockIsIdempotent", func(t *testing.T) {
		inserted, err := repo.InsertUnlock(ctx, 1, defs[0].ID)
		assert.NoError(t, err)
		assert.True(t, inserted)

		// The duplicate insert is swallowed, not an error.
		inserted, err = repo.InsertUnlock(ctx, 1, defs[0].ID)
		assert.NoError(t, err)
		assert.False(t, inserted)

		unlocked, err := repo.ListUnlocked(ctx, 1)
		assert.NoError(t, err)
		assert.True(t, unlocked[defs[0].ID])
		assert.Len(t, unlocked, 1)
	})
}

func TestUserRepo(t *testing.T) {
	db := openTestDB(t)
	seedUsers(t, db, "ana")
	repo := sqlite.NewUserRepo(db)
	ctx := context.Background()

	u, err := repo.GetByID(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, "ana", u.Username)

	_, err = repo.GetByID(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// No stats row yet reads as zero counters.
	stats, err := repo.GetStats(ctx, 1)
	assert.NoError(t, err)
	assert.Zero(t, stats.Followers)

	_, err = db.Exec(`INSERT INTO user_stats (user_id, posts, followers, likes, routines) VALUES (1, 2, 3, 4, 5)`)
	assert.NoError(t, err)

	stats, err = repo.GetStats(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, 3, stats.Followers)
	assert.Equal(t, 5, stats.Routines)
}
