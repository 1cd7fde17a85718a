package ports

import (
	"context"

	"dopamine-deck/internal/core/domain/entities"
)

// TaskSource supplies the ordered list of tasks a new deck starts with.
type TaskSource interface {
	ListDeck(ctx context.Context) ([]*entities.Task, error)
}

type SessionRepository interface {
	Open(ctx context.Context, session *entities.Session) error
	Close(ctx context.Context, sessionID string, state entities.ProgressionState) error
	ApplyTotals(ctx context.Context, record *entities.ResolutionRecord) error
}

type ResolutionRepository interface {
	// Insert stores the record and reports false when the task was already
	// recorded for the session.
	Insert(ctx context.Context, record *entities.ResolutionRecord) (bool, error)
}

// ResolutionJournal is the write-only audit trail of a session. It is never
// read back into a deck.
type ResolutionJournal interface {
	OpenSession(ctx context.Context, session *entities.Session) error
	Record(ctx context.Context, record *entities.ResolutionRecord) error
	CloseSession(ctx context.Context, sessionID string, state entities.ProgressionState) error
}
