package postgres

import (
	"context"

	"dopamine-deck/internal/core/domain/entities"
	"dopamine-deck/internal/infrastructure/db"

	"go.uber.org/zap"
)

type ResolutionRepository struct {
	db  db.Querier
	log *zap.Logger
}

func NewResolutionRepository(db db.Querier, log *zap.Logger) *ResolutionRepository {
	if log == nil {
		panic("logger is nil")
	}
	if db == nil {
		log.Fatal("database querier is nil")
	}
	return &ResolutionRepository{
		db:  db,
		log: log,
	}
}

func (r *ResolutionRepository) Insert(ctx context.Context, record *entities.ResolutionRecord) (bool, error) {
	query := `INSERT INTO task_resolutions
		(session_id, task_id, outcome, xp_awarded, coins_awarded, level_after, resolved_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (session_id, task_id) DO NOTHING`

	tag, err := r.db.Exec(
		ctx,
		query,
		record.SessionID,
		record.TaskID,
		string(record.Outcome),
		record.XPAwarded,
		record.CoinsAwarded,
		record.LevelAfter,
		record.ResolvedAt,
	)
	if err != nil {
		r.log.Error("failed to insert resolution", zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
