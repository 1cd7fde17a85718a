// Package progression derives XP, coins, quest, level and theme state from
// resolved swipe outcomes.
package progression

import (
	"sync"

	"dopamine-deck/internal/core/domain/entities"
)

const (
	XPPerTask    = 10
	CoinsPerTask = 5
	QuestGoal    = 2
	QuestBonusXP = 20
)

// GoalRule decides which count is compared against the deck size for the
// daily goal.
type GoalRule string

const (
	// GoalOnCompleted counts only completed tasks: an all-skipped deck never
	// reaches the goal.
	GoalOnCompleted GoalRule = "completed"
	// GoalOnResolved counts every removed task, completed or skipped.
	GoalOnResolved GoalRule = "resolved"
)

func ParseGoalRule(s string) GoalRule {
	if GoalRule(s) == GoalOnResolved {
		return GoalOnResolved
	}
	return GoalOnCompleted
}

type Result struct {
	Before        entities.ProgressionState
	After         entities.ProgressionState
	XPAwarded     int
	CoinsAwarded  int
	Notifications []entities.Notification
}

// Apply is the pure transition for one resolved task. Notifications come
// back in the order quest, level-up, daily goal.
func Apply(state entities.ProgressionState, outcome entities.SwipeOutcome, rule GoalRule) Result {
	res := Result{Before: state}
	next := state

	switch outcome {
	case entities.OutcomeComplete:
		awarded := XPPerTask
		if next.AddQuestProgress(QuestGoal) {
			awarded += QuestBonusXP
			res.Notifications = append(res.Notifications, entities.Notification{
				Kind:    entities.NotificationQuestComplete,
				BonusXP: QuestBonusXP,
			})
		}

		next.XP += awarded
		next.Coins += CoinsPerTask
		next.TasksCompletedToday++
		next.TasksResolvedToday++
		res.XPAwarded = awarded
		res.CoinsAwarded = CoinsPerTask
	case entities.OutcomeSkip:
		next.TasksResolvedToday++
	default:
		res.After = state
		return res
	}

	if n, ok := relevel(&next); ok {
		res.Notifications = append(res.Notifications, n)
	}

	if dailyGoalReached(next, rule) && next.UnlockTheme() {
		res.Notifications = append(res.Notifications, entities.Notification{
			Kind: entities.NotificationDailyGoalAchieved,
		})
	}

	res.After = next
	return res
}

// relevel recomputes the level from XP and returns a level-up notification
// when it increased. A decrease lowers the level without notifying.
func relevel(state *entities.ProgressionState) (entities.Notification, bool) {
	prev := state.Level
	info := LevelFor(state.XP)
	state.Level = info.Level
	state.LevelName = info.Name
	state.NextLevelXP = info.NextXP
	state.MaxLevel = info.Max

	if info.Level <= prev {
		return entities.Notification{}, false
	}
	return entities.Notification{
		Kind:      entities.NotificationLevelUp,
		Level:     info.Level,
		LevelName: info.Name,
		Milestone: info.Level == MilestoneLevel,
	}, true
}

func dailyGoalReached(state entities.ProgressionState, rule GoalRule) bool {
	if state.TotalTasksInDeck <= 0 {
		return false
	}
	count := state.TasksCompletedToday
	if rule == GoalOnResolved {
		count = state.TasksResolvedToday
	}
	return count == state.TotalTasksInDeck
}

// Engine is the single mutator of a session's ProgressionState. Resolve
// calls are serialized so no quest contribution is lost or counted twice.
type Engine struct {
	mu    sync.Mutex
	state entities.ProgressionState
	rule  GoalRule
}

func NewEngine(totalTasks int, rule GoalRule) *Engine {
	state := entities.NewProgressionState(totalTasks)
	relevel(&state)
	return &Engine{
		state: state,
		rule:  ParseGoalRule(string(rule)),
	}
}

func (e *Engine) Resolve(outcome entities.SwipeOutcome) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	res := Apply(e.state, outcome, e.rule)
	e.state = res.After
	return res
}

// AdjustXP changes XP outside of task resolution and relevels. A decrease
// lowers the level without a notification.
func (e *Engine) AdjustXP(delta int) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	res := Result{Before: e.state}
	next := e.state
	next.XP += delta
	if next.XP < 0 {
		next.XP = 0
	}
	if n, ok := relevel(&next); ok {
		res.Notifications = append(res.Notifications, n)
	}
	e.state = next
	res.After = next
	return res
}

func (e *Engine) State() entities.ProgressionState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) Rule() GoalRule {
	return e.rule
}
