package ports

import "context"

type Repositories struct {
	Sessions    SessionRepository
	Resolutions ResolutionRepository
}

type UnitOfWork interface {
	Repositories() Repositories
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type UnitOfWorkManager interface {
	Begin(ctx context.Context) (UnitOfWork, error)
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error
}
