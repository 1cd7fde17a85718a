package ports

import (
	"context"

	"dopamine-deck/internal/core/domain/entities"
)

// DeckSnapshot is a read-only copy of a session's deck.
type DeckSnapshot struct {
	SessionID string
	Pending   []*entities.Task
	Cards     map[string]entities.SwipeState
	Focus     map[string]entities.FocusView
	State     entities.ProgressionState
	Feed      []entities.FeedItem
}

type DeckUseCases interface {
	StartSession(ctx context.Context) (*DeckSnapshot, error)
	EndSession(ctx context.Context, sessionID string) (*DeckSnapshot, error)
	Snapshot(ctx context.Context, sessionID string) (*DeckSnapshot, error)
	DragStart(ctx context.Context, sessionID, taskID string) (entities.CardView, error)
	DragMove(ctx context.Context, sessionID, taskID string, deltaX float64) (entities.CardView, error)
	DragEnd(ctx context.Context, sessionID, taskID string) (entities.CardView, error)
	StartFocus(ctx context.Context, sessionID, taskID string) (entities.FocusView, error)
	PauseFocus(ctx context.Context, sessionID, taskID string) (entities.FocusView, error)
	Subscribe(ctx context.Context, sessionID string) (<-chan entities.Notification, func(), error)
}
