package postgres

import (
	"context"

	"dopamine-deck/internal/core/domain/entities"
	"dopamine-deck/internal/core/ports"
	"dopamine-deck/internal/infrastructure/db"

	"go.uber.org/zap"
)

// Journal writes the session audit trail. Each resolution and its running
// totals are stored in one transaction.
type Journal struct {
	uow ports.UnitOfWorkManager
	log *zap.Logger
}

func NewJournal(uow ports.UnitOfWorkManager, log *zap.Logger) *Journal {
	if log == nil {
		panic("logger is nil")
	}
	if uow == nil {
		log.Fatal("unit of work manager is nil")
	}
	return &Journal{
		uow: uow,
		log: log,
	}
}

// Repositories builds the repository set for a querier. It is the factory
// handed to db.NewUnitOfWorkManager.
func Repositories(log *zap.Logger) db.RepoFactory {
	return func(q db.Querier) ports.Repositories {
		return ports.Repositories{
			Sessions:    NewSessionRepository(q, log),
			Resolutions: NewResolutionRepository(q, log),
		}
	}
}

func (j *Journal) OpenSession(ctx context.Context, session *entities.Session) error {
	return j.uow.Do(ctx, func(uow ports.UnitOfWork) error {
		return uow.Repositories().Sessions.Open(ctx, session)
	})
}

func (j *Journal) Record(ctx context.Context, record *entities.ResolutionRecord) error {
	return j.uow.Do(ctx, func(uow ports.UnitOfWork) error {
		repos := uow.Repositories()
		inserted, err := repos.Resolutions.Insert(ctx, record)
		if err != nil {
			return err
		}
		if !inserted {
			j.log.Info("postgres: resolution already recorded",
				zap.String("session_id", record.SessionID),
				zap.String("task_id", record.TaskID),
			)
			return nil
		}
		return repos.Sessions.ApplyTotals(ctx, record)
	})
}

func (j *Journal) CloseSession(ctx context.Context, sessionID string, state entities.ProgressionState) error {
	return j.uow.Do(ctx, func(uow ports.UnitOfWork) error {
		return uow.Repositories().Sessions.Close(ctx, sessionID, state)
	})
}
