package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS profiles (
		user_id TEXT PRIMARY KEY,
		profile TEXT,
		tasks TEXT NOT NULL DEFAULT '[]',
		food_guide TEXT NOT NULL DEFAULT '[]',
		checkins TEXT NOT NULL DEFAULT '[]',
		points INTEGER NOT NULL DEFAULT 0 CHECK (points >= 0),
		motivation TEXT NOT NULL DEFAULT '',
		updated_at TEXT NOT NULL
	)`,
}

// OpenSQLite opens the account and snapshot database and creates its tables. Use ":memory:"
// for a throwaway database.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A second connection to ":memory:" would see an empty database.
	db.SetMaxOpenConns(1)

	for _, stmt := range sqliteSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create sqlite schema: %w", err)
		}
	}
	return db, nil
}
