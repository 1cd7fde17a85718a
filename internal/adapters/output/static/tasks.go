// Package static supplies the built-in daily deck.
package static

import (
	"context"

	"dopamine-deck/internal/core/domain/entities"
)

type TaskSpec struct {
	ID       string
	Title    string
	Emoji    string
	Duration string
	Category string
}

var DefaultDeck = []TaskSpec{
	{ID: "1", Title: "Morning Jog", Emoji: "🏃", Duration: "30 Min", Category: "Workout"},
	{ID: "2", Title: "Project Brainstorm", Emoji: "💡", Duration: "60 Min", Category: "Deep Work"},
	{ID: "3", Title: "Coffee Break", Emoji: "☕", Duration: "15 Min", Category: "Break"},
	{ID: "4", Title: "Read Documentation", Duration: "45 Min", Category: "Learning"},
	{ID: "5", Title: "Team Sync-up", Emoji: "🤝", Duration: "20 Min", Category: "Meeting"},
}

// TaskSource hands every new session a fresh copy of a fixed list.
type TaskSource struct {
	specs []TaskSpec
}

func NewTaskSource(specs []TaskSpec) *TaskSource {
	if specs == nil {
		specs = DefaultDeck
	}
	return &TaskSource{specs: append([]TaskSpec(nil), specs...)}
}

func (s *TaskSource) ListDeck(ctx context.Context) ([]*entities.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tasks := make([]*entities.Task, 0, len(s.specs))
	for _, spec := range s.specs {
		tasks = append(tasks, entities.NewTaskFromDuration(spec.ID, spec.Title, spec.Emoji, spec.Category, spec.Duration))
	}
	return tasks, nil
}
