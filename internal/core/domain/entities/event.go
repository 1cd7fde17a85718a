package entities

import (
	"time"

	"dopamine-deck/internal/core/domain/exceptions"
)

// TaskResolved is emitted once per card whose gesture committed.
type TaskResolved struct {
	TaskID     string       `json:"task_id"`
	Outcome    SwipeOutcome `json:"outcome"`
	ResolvedAt time.Time    `json:"resolved_at"`
}

func (e *TaskResolved) Validate() error {
	if e == nil {
		return exceptions.ErrEventNil
	}
	if e.TaskID == "" {
		return exceptions.ErrEventTaskIDRequired
	}
	if !e.Outcome.IsValid() {
		return exceptions.ErrOutcomeInvalid
	}
	return nil
}

type NotificationKind string

const (
	NotificationTaskResolved      NotificationKind = "task_resolved"
	NotificationLevelUp           NotificationKind = "level_up"
	NotificationQuestComplete     NotificationKind = "quest_complete"
	NotificationDailyGoalAchieved NotificationKind = "daily_goal_achieved"
	NotificationTimerFinished     NotificationKind = "timer_finished"
)

// Notification is a best-effort signal for the UI layer. Only the fields
// relevant to Kind are set.
type Notification struct {
	Kind      NotificationKind `json:"kind"`
	TaskID    string           `json:"task_id,omitempty"`
	Title     string           `json:"title,omitempty"`
	Outcome   SwipeOutcome     `json:"outcome,omitempty"`
	Level     int              `json:"level,omitempty"`
	LevelName string           `json:"level_name,omitempty"`
	Milestone bool             `json:"milestone,omitempty"`
	BonusXP   int              `json:"bonus_xp,omitempty"`
	At        time.Time        `json:"at"`
}

// FeedItem is one completed task in the activity feed.
type FeedItem struct {
	TaskID string    `json:"task_id"`
	Title  string    `json:"title"`
	Emoji  string    `json:"emoji,omitempty"`
	At     time.Time `json:"at"`
}

// ResolutionRecord is the journal row written for each resolved task.
type ResolutionRecord struct {
	SessionID    string       `json:"session_id"`
	TaskID       string       `json:"task_id"`
	Outcome      SwipeOutcome `json:"outcome"`
	XPAwarded    int          `json:"xp_awarded"`
	CoinsAwarded int          `json:"coins_awarded"`
	XPTotal      int          `json:"xp_total"`
	CoinsTotal   int          `json:"coins_total"`
	LevelAfter   int          `json:"level_after"`
	Completed    int          `json:"completed"`
	ResolvedAt   time.Time    `json:"resolved_at"`
}

type Session struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
}
