package postgres

import (
	"context"

	"dopamine-deck/internal/core/domain/entities"
	"dopamine-deck/internal/infrastructure/db"

	"go.uber.org/zap"
)

// TaskSource reads the active deck from the tasks table.
type TaskSource struct {
	db  db.Querier
	log *zap.Logger
}

func NewTaskSource(db db.Querier, log *zap.Logger) *TaskSource {
	if log == nil {
		panic("logger is nil")
	}
	if db == nil {
		log.Fatal("database querier is nil")
	}
	return &TaskSource{
		db:  db,
		log: log,
	}
}

func (r *TaskSource) ListDeck(ctx context.Context) ([]*entities.Task, error) {
	query := `SELECT id, title, emoji, category, duration
		FROM tasks WHERE is_active = true
		ORDER BY position, id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.log.Error("failed to list deck tasks", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	tasks := make([]*entities.Task, 0)
	for rows.Next() {
		var id, title, emoji, category, duration string
		if err := rows.Scan(&id, &title, &emoji, &category, &duration); err != nil {
			r.log.Error("failed to scan task row", zap.Error(err))
			return nil, err
		}
		tasks = append(tasks, entities.NewTaskFromDuration(id, title, emoji, category, duration))
	}

	if err := rows.Err(); err != nil {
		r.log.Error("failed to iterate task rows", zap.Error(err))
		return nil, err
	}

	return tasks, nil
}

// SeedTask inserts a task unless one with the same id exists.
func (r *TaskSource) SeedTask(ctx context.Context, task *entities.Task, duration string, position int) error {
	query := `INSERT INTO tasks (id, title, emoji, duration, category, position, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, true)
		ON CONFLICT (id) DO NOTHING`

	if _, err := r.db.Exec(ctx, query, task.ID(), task.Title(), task.Emoji(), duration, task.Category(), position); err != nil {
		r.log.Error("failed to seed task", zap.String("task_id", task.ID()), zap.Error(err))
		return err
	}
	return nil
}
