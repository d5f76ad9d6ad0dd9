package repository

import (
	"context"
	"fmt"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id                 BIGSERIAL PRIMARY KEY,
		username           TEXT NOT NULL UNIQUE,
		email              TEXT NOT NULL DEFAULT '',
		total_carbon_saved DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (total_carbon_saved >= 0),
		streak             INTEGER NOT NULL DEFAULT 0 CHECK (streak >= 0),
		longest_streak     INTEGER NOT NULL DEFAULT 0,
		last_activity_date TEXT,
		created_at         TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_users_leaderboard ON users (total_carbon_saved DESC, last_activity_date)`,
	`CREATE TABLE IF NOT EXISTS carbon_log (
		id            BIGSERIAL PRIMARY KEY,
		user_id       BIGINT NOT NULL REFERENCES users(id),
		amount        DOUBLE PRECISION NOT NULL CHECK (amount >= 0),
		activity      TEXT NOT NULL DEFAULT '',
		activity_date TEXT NOT NULL,
		logged_at     TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_carbon_log_user_id ON carbon_log (user_id, id)`,
	`CREATE TABLE IF NOT EXISTS challenge_of_day (
		date         TEXT PRIMARY KEY,
		challenge_id INTEGER NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS user_challenges (
		user_id      BIGINT NOT NULL REFERENCES users(id),
		date         TEXT NOT NULL,
		challenge_id INTEGER NOT NULL,
		completed_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (user_id, date)
	)`,
	`CREATE TABLE IF NOT EXISTS reminders (
		id            TEXT PRIMARY KEY,
		user_id       BIGINT NOT NULL REFERENCES users(id),
		habit         TEXT NOT NULL,
		frequency     TEXT NOT NULL CHECK (frequency IN ('hourly', 'daily', 'weekly')),
		enabled       BOOLEAN NOT NULL DEFAULT TRUE,
		last_reminded TIMESTAMPTZ,
		version       BIGINT NOT NULL DEFAULT 0,
		created_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reminders_user_id ON reminders (user_id)`,
}

var sqliteSchema = []string{
	`PRAGMA foreign_keys = ON`,
	`PRAGMA busy_timeout = 5000`,
	`CREATE TABLE IF NOT EXISTS users (
		id                 INTEGER PRIMARY KEY AUTOINCREMENT,
		username           TEXT NOT NULL UNIQUE,
		email              TEXT NOT NULL DEFAULT '',
		total_carbon_saved REAL NOT NULL DEFAULT 0 CHECK (total_carbon_saved >= 0),
		streak             INTEGER NOT NULL DEFAULT 0 CHECK (streak >= 0),
		longest_streak     INTEGER NOT NULL DEFAULT 0,
		last_activity_date TEXT,
		created_at         DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_users_leaderboard ON users (total_carbon_saved DESC, last_activity_date)`,
	`CREATE TABLE IF NOT EXISTS carbon_log (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id       INTEGER NOT NULL REFERENCES users(id),
		amount        REAL NOT NULL CHECK (amount >= 0),
		activity      TEXT NOT NULL DEFAULT '',
		activity_date TEXT NOT NULL,
		logged_at     DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_carbon_log_user_id ON carbon_log (user_id, id)`,
	`CREATE TABLE IF NOT EXISTS challenge_of_day (
		date         TEXT PRIMARY KEY,
		challenge_id INTEGER NOT NULL,
		created_at   DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS user_challenges (
		user_id      INTEGER NOT NULL REFERENCES users(id),
		date         TEXT NOT NULL,
		challenge_id INTEGER NOT NULL,
		completed_at DATETIME NOT NULL,
		PRIMARY KEY (user_id, date)
	)`,
	`CREATE TABLE IF NOT EXISTS reminders (
		id            TEXT PRIMARY KEY,
		user_id       INTEGER NOT NULL REFERENCES users(id),
		habit         TEXT NOT NULL,
		frequency     TEXT NOT NULL CHECK (frequency IN ('hourly', 'daily', 'weekly')),
		enabled       BOOLEAN NOT NULL DEFAULT 1,
		last_reminded DATETIME,
		version       INTEGER NOT NULL DEFAULT 0,
		created_at    DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reminders_user_id ON reminders (user_id)`,
}

func (r *Repository) migrate(ctx context.Context) error {
	schema := postgresSchema
	if r.driver == DriverSQLite {
		schema = sqliteSchema
	}

	for i, stmt := range schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration step %d: %w", i, err)
		}
	}

	return nil
}
