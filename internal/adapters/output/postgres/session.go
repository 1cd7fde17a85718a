package postgres

import (
	"context"

	"dopamine-deck/internal/core/domain/entities"
	"dopamine-deck/internal/core/domain/exceptions"
	"dopamine-deck/internal/infrastructure/db"

	"go.uber.org/zap"
)

type SessionRepository struct {
	db  db.Querier
	log *zap.Logger
}

func NewSessionRepository(db db.Querier, log *zap.Logger) *SessionRepository {
	if log == nil {
		panic("logger is nil")
	}
	if db == nil {
		log.Fatal("database querier is nil")
	}
	return &SessionRepository{
		db:  db,
		log: log,
	}
}

func (r *SessionRepository) Open(ctx context.Context, session *entities.Session) error {
	query := `INSERT INTO deck_sessions (id, started_at)
		VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING`

	if _, err := r.db.Exec(ctx, query, session.ID, session.StartedAt); err != nil {
		r.log.Error("failed to open session", zap.String("session_id", session.ID), zap.Error(err))
		return err
	}
	return nil
}

func (r *SessionRepository) Close(ctx context.Context, sessionID string, state entities.ProgressionState) error {
	query := `UPDATE deck_sessions
		SET ended_at = NOW(), xp = $2, coins = $3, level = $4, tasks_completed = $5,
			quest_achieved = $6, theme_unlocked = $7
		WHERE id = $1 AND ended_at IS NULL`

	tag, err := r.db.Exec(ctx, query,
		sessionID,
		state.XP,
		state.Coins,
		state.Level,
		state.TasksCompletedToday,
		state.QuestAchieved,
		state.ThemeUnlocked,
	)
	if err != nil {
		r.log.Error("failed to close session", zap.String("session_id", sessionID), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return exceptions.ErrSessionNotFound
	}
	return nil
}

// ApplyTotals stores the running totals after a resolution.
func (r *SessionRepository) ApplyTotals(ctx context.Context, record *entities.ResolutionRecord) error {
	query := `UPDATE deck_sessions
		SET xp = $2, coins = $3, level = $4, tasks_completed = $5
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		record.SessionID,
		record.XPTotal,
		record.CoinsTotal,
		record.LevelAfter,
		record.Completed,
	)
	if err != nil {
		r.log.Error("failed to apply session totals", zap.String("session_id", record.SessionID), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return exceptions.ErrSessionNotFound
	}
	return nil
}
