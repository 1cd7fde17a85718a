package db

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		emoji TEXT NOT NULL DEFAULT '',
		duration TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		position INTEGER NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS deck_sessions (
		id TEXT PRIMARY KEY,
		started_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		ended_at TIMESTAMPTZ,
		xp INTEGER NOT NULL DEFAULT 0,
		coins INTEGER NOT NULL DEFAULT 0,
		level INTEGER NOT NULL DEFAULT 1,
		tasks_completed INTEGER NOT NULL DEFAULT 0,
		quest_achieved BOOLEAN NOT NULL DEFAULT FALSE,
		theme_unlocked BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS task_resolutions (
		session_id TEXT NOT NULL REFERENCES deck_sessions(id) ON DELETE CASCADE,
		task_id TEXT NOT NULL,
		outcome TEXT NOT NULL,
		xp_awarded INTEGER NOT NULL,
		coins_awarded INTEGER NOT NULL,
		level_after INTEGER NOT NULL,
		resolved_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (session_id, task_id)
	)`,
}

// Migrate creates the tables the deck needs if they are missing.
func Migrate(ctx context.Context, q Querier, log *zap.Logger) error {
	for i, stmt := range schema {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate statement %d: %w", i, err)
		}
	}
	log.Info("database schema ready", zap.Int("statements", len(schema)))
	return nil
}
