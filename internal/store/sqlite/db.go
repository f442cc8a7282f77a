package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Open opens a SQLite database with the given DSN.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return db, nil
}

// Migrate creates the messaging/notification schema. Idempotent; the wider
// CRUD schema (posts, comments, follows, ...) lives in the main application
// and is not managed here.
func Migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY,
			username VARCHAR(50) UNIQUE NOT NULL,
			display_name VARCHAR(100),
			is_active BOOLEAN DEFAULT TRUE,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		// Aggregate counters maintained by the CRUD layer; the achievement
		// evaluator reads one row as its snapshot.
		`CREATE TABLE IF NOT EXISTS user_stats (
			user_id INTEGER PRIMARY KEY,
			posts INTEGER NOT NULL DEFAULT 0,
			followers INTEGER NOT NULL DEFAULT 0,
			likes INTEGER NOT NULL DEFAULT 0,
			routines INTEGER NOT NULL DEFAULT 0,
			FOREIGN KEY (user_id) REFERENCES users(id)
		);`,
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY,
			sender_id INTEGER NOT NULL,
			recipient_id INTEGER NOT NULL,
			content TEXT DEFAULT NULL,
			attachment_kind VARCHAR(10) DEFAULT NULL,
			attachment_url TEXT DEFAULT NULL,
			attachment_name TEXT DEFAULT NULL,
			client_tag VARCHAR(64) DEFAULT NULL,
			is_read BOOLEAN DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (sender_id) REFERENCES users(id),
			FOREIGN KEY (recipient_id) REFERENCES users(id)
		);`,
		`CREATE TABLE IF NOT EXISTS notifications (
			id INTEGER PRIMARY KEY,
			recipient_id INTEGER NOT NULL,
			type VARCHAR(30) NOT NULL,
			title VARCHAR(100) NOT NULL,
			body TEXT NOT NULL,
			ref_id INTEGER DEFAULT NULL,
			ref_kind VARCHAR(20) DEFAULT NULL,
			is_read BOOLEAN DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (recipient_id) REFERENCES users(id)
		);`,
		`CREATE TABLE IF NOT EXISTS achievement_definitions (
			id INTEGER PRIMARY KEY,
			name VARCHAR(100) UNIQUE NOT NULL,
			category VARCHAR(20) NOT NULL,
			threshold INTEGER NOT NULL,
			icon VARCHAR(100) NOT NULL DEFAULT ''
		);`,
		`CREATE TABLE IF NOT EXISTS achievement_unlocks (
			user_id INTEGER NOT NULL,
			achievement_id INTEGER NOT NULL,
			unlocked_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, achievement_id),
			FOREIGN KEY (user_id) REFERENCES users(id),
			FOREIGN KEY (achievement_id) REFERENCES achievement_definitions(id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_sender_recipient ON messages(sender_id, recipient_id, created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_recipient_unread ON messages(recipient_id, is_read);`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_recipient ON notifications(recipient_id, is_read, created_at DESC);`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	return SeedAchievements(db)
}

// SeedAchievements loads the static achievement catalog. Safe to run on
// every startup.
func SeedAchievements(db *sql.DB) error {
	seed := []struct {
		name      string
		category  string
		threshold int
		icon      string
	}{
		{"Primer paso", "posts", 1, "footsteps-outline"},
		{"Creador de contenido", "posts", 10, "create-outline"},
		{"Social", "followers", 10, "people-outline"},
		{"Influencer", "followers", 50, "megaphone-outline"},
		{"Popular", "likes", 50, "heart-outline"},
		{"Entrenador", "routines", 5, "barbell-outline"},
	}
	for _, a := range seed {
		_, err := db.Exec(
			`INSERT OR IGNORE INTO achievement_definitions (name, category, threshold, icon) VALUES (?, ?, ?, ?)`,
			a.name, a.category, a.threshold, a.icon,
		)
		if err != nil {
			return fmt.Errorf("seed achievements: %w", err)
		}
	}
	return nil
}
