package main

import (
	"context"
	"time"

	"dopamine-deck/internal/adapters/output/postgres"
	"dopamine-deck/internal/core/domain/entities"
	"dopamine-deck/internal/core/progression"
	"dopamine-deck/internal/infrastructure/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const smokeTaskID = "smoke-task"

// runRepoSmokeTest exercises the task source and the journal against a live
// database and removes what it wrote.
func runRepoSmokeTest(ctx context.Context, log *zap.Logger, pool *pgxpool.Pool) {
	source := postgres.NewTaskSource(pool, log)

	log.Info("smoke test: seeding task")
	task := entities.NewTaskFromDuration(smokeTaskID, "Smoke Test Task", "🧪", "Smoke", "1 Min")
	if err := source.SeedTask(ctx, task, "1 Min", 999); err != nil {
		log.Error("smoke test: failed to seed task", zap.Error(err))
		return
	}
	defer cleanupSmokeTask(ctx, log, pool)

	log.Info("smoke test: listing deck")
	tasks, err := source.ListDeck(ctx)
	if err != nil {
		log.Error("smoke test: failed to list deck", zap.Error(err))
		return
	}
	found := false
	for _, t := range tasks {
		if t.ID() == smokeTaskID {
			found = t.DurationSeconds() == 60
		}
	}
	if !found {
		log.Error("smoke test: seeded task missing from deck")
		return
	}

	uow := db.NewUnitOfWorkManager(pool, log, postgres.Repositories(log))
	journal := postgres.NewJournal(uow, log)

	session := &entities.Session{ID: uuid.NewString(), StartedAt: time.Now()}
	defer cleanupSmokeSession(ctx, log, pool, session.ID)

	log.Info("smoke test: opening session", zap.String("session_id", session.ID))
	if err := journal.OpenSession(ctx, session); err != nil {
		log.Error("smoke test: failed to open session", zap.Error(err))
		return
	}

	engine := progression.NewEngine(len(tasks), progression.GoalOnCompleted)
	res := engine.Resolve(entities.OutcomeComplete)
	record := &entities.ResolutionRecord{
		SessionID:    session.ID,
		TaskID:       smokeTaskID,
		Outcome:      entities.OutcomeComplete,
		XPAwarded:    res.XPAwarded,
		CoinsAwarded: res.CoinsAwarded,
		XPTotal:      res.After.XP,
		CoinsTotal:   res.After.Coins,
		LevelAfter:   res.After.Level,
		Completed:    res.After.TasksCompletedToday,
		ResolvedAt:   time.Now(),
	}

	log.Info("smoke test: recording resolution twice", zap.String("task_id", smokeTaskID))
	for i := 0; i < 2; i++ {
		if err := journal.Record(ctx, record); err != nil {
			log.Error("smoke test: failed to record resolution", zap.Error(err))
			return
		}
	}

	var rows, xp int
	if err := pool.QueryRow(ctx,
		`SELECT (SELECT COUNT(*) FROM task_resolutions WHERE session_id = $1), xp FROM deck_sessions WHERE id = $1`,
		session.ID,
	).Scan(&rows, &xp); err != nil {
		log.Error("smoke test: failed to read journal", zap.Error(err))
		return
	}
	if rows != 1 || xp != res.After.XP {
		log.Error("smoke test: journal mismatch", zap.Int("rows", rows), zap.Int("xp", xp))
		return
	}

	log.Info("smoke test: closing session", zap.String("session_id", session.ID))
	if err := journal.CloseSession(ctx, session.ID, engine.State()); err != nil {
		log.Error("smoke test: failed to close session", zap.Error(err))
		return
	}
	log.Info("smoke test: journal ok", zap.Int("xp", xp))
}

func cleanupSmokeTask(ctx context.Context, log *zap.Logger, q db.Querier) {
	if _, err := q.Exec(ctx, "DELETE FROM tasks WHERE id = $1", smokeTaskID); err != nil {
		log.Error("smoke test: failed to cleanup task", zap.Error(err))
	}
}

func cleanupSmokeSession(ctx context.Context, log *zap.Logger, q db.Querier, id string) {
	if _, err := q.Exec(ctx, "DELETE FROM deck_sessions WHERE id = $1", id); err != nil {
		log.Error("smoke test: failed to cleanup session", zap.Error(err))
	}
}
