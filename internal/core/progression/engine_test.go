package progression

import (
	"sync"
	"testing"

	"dopamine-deck/internal/core/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(ns []entities.Notification) []entities.NotificationKind {
	out := make([]entities.NotificationKind, 0, len(ns))
	for _, n := range ns {
		out = append(out, n.Kind)
	}
	return out
}

func TestNewEngineStartsAtLevelOne(t *testing.T) {
	e := NewEngine(5, GoalOnCompleted)
	state := e.State()

	assert.Equal(t, 1, state.Level)
	assert.Equal(t, "Novice", state.LevelName)
	assert.Equal(t, 50, state.NextLevelXP)
	assert.Equal(t, 5, state.TotalTasksInDeck)
	assert.Zero(t, state.XP)
	assert.Zero(t, state.Coins)
}

func TestSkipChangesNoRewards(t *testing.T) {
	e := NewEngine(5, GoalOnCompleted)

	res := e.Resolve(entities.OutcomeSkip)

	assert.Empty(t, res.Notifications)
	assert.Zero(t, res.XPAwarded)
	state := e.State()
	assert.Zero(t, state.XP)
	assert.Zero(t, state.Coins)
	assert.Zero(t, state.TasksCompletedToday)
	assert.Zero(t, state.QuestTasksCompleted)
	assert.Equal(t, 1, state.TasksResolvedToday)
}

func TestQuestBonusAwardedOnce(t *testing.T) {
	e := NewEngine(10, GoalOnCompleted)

	first := e.Resolve(entities.OutcomeComplete)
	assert.Equal(t, 10, first.XPAwarded)
	assert.Empty(t, first.Notifications)
	assert.False(t, e.State().QuestAchieved)

	second := e.Resolve(entities.OutcomeComplete)
	assert.Equal(t, 30, second.XPAwarded)
	require.Equal(t, []entities.NotificationKind{entities.NotificationQuestComplete}, kinds(second.Notifications))
	assert.Equal(t, QuestBonusXP, second.Notifications[0].BonusXP)

	state := e.State()
	assert.True(t, state.QuestAchieved)
	assert.Equal(t, 40, state.XP)
	assert.Equal(t, 10, state.Coins)

	third := e.Resolve(entities.OutcomeComplete)
	assert.Equal(t, 10, third.XPAwarded)
	assert.Equal(t, 50, e.State().XP)
	assert.Equal(t, QuestGoal, e.State().QuestTasksCompleted)
}

func TestLevelUpScenario(t *testing.T) {
	e := NewEngine(5, GoalOnCompleted)

	e.Resolve(entities.OutcomeComplete)
	res := e.Resolve(entities.OutcomeComplete)
	state := e.State()
	assert.Equal(t, 40, state.XP)
	assert.Equal(t, 1, state.Level)
	assert.True(t, state.QuestAchieved)
	assert.NotContains(t, kinds(res.Notifications), entities.NotificationLevelUp)

	res = e.Resolve(entities.OutcomeComplete)
	state = e.State()
	assert.Equal(t, 50, state.XP)
	assert.Equal(t, 2, state.Level)

	var levelUps []entities.Notification
	for _, n := range res.Notifications {
		if n.Kind == entities.NotificationLevelUp {
			levelUps = append(levelUps, n)
		}
	}
	require.Len(t, levelUps, 1)
	assert.Equal(t, 2, levelUps[0].Level)
	assert.Equal(t, "Apprentice", levelUps[0].LevelName)
	assert.True(t, levelUps[0].Milestone)

	res = e.Resolve(entities.OutcomeComplete)
	assert.NotContains(t, kinds(res.Notifications), entities.NotificationLevelUp)
}

func TestXPAndLevelNeverDecrease(t *testing.T) {
	e := NewEngine(100, GoalOnCompleted)

	prev := e.State()
	for i := 0; i < 80; i++ {
		res := e.Resolve(entities.OutcomeComplete)
		assert.GreaterOrEqual(t, res.After.XP, prev.XP)
		assert.GreaterOrEqual(t, res.After.Level, prev.Level)
		assert.LessOrEqual(t, res.After.TasksCompletedToday, res.After.TotalTasksInDeck)
		prev = res.After
	}
	assert.Equal(t, 5, prev.Level)
	assert.True(t, prev.MaxLevel)
}

func TestDailyGoalCountsCompletedTasks(t *testing.T) {
	e := NewEngine(5, GoalOnCompleted)

	for i := 0; i < 4; i++ {
		e.Resolve(entities.OutcomeComplete)
		assert.False(t, e.State().ThemeUnlocked)
	}
	res := e.Resolve(entities.OutcomeComplete)

	assert.True(t, e.State().ThemeUnlocked)
	assert.Equal(t, "unlocked", e.State().Theme())
	ks := kinds(res.Notifications)
	require.NotEmpty(t, ks)
	assert.Equal(t, entities.NotificationDailyGoalAchieved, ks[len(ks)-1])
}

func TestDailyGoalIgnoresSkipsByDefault(t *testing.T) {
	e := NewEngine(5, GoalOnCompleted)

	for i := 0; i < 4; i++ {
		e.Resolve(entities.OutcomeComplete)
	}
	e.Resolve(entities.OutcomeSkip)

	assert.False(t, e.State().ThemeUnlocked)
	assert.Equal(t, 4, e.State().TasksCompletedToday)
}

func TestDailyGoalOnResolvedAnyMix(t *testing.T) {
	mixes := [][]entities.SwipeOutcome{
		{entities.OutcomeSkip, entities.OutcomeSkip, entities.OutcomeSkip, entities.OutcomeSkip, entities.OutcomeSkip},
		{entities.OutcomeComplete, entities.OutcomeSkip, entities.OutcomeComplete, entities.OutcomeSkip, entities.OutcomeSkip},
		{entities.OutcomeComplete, entities.OutcomeComplete, entities.OutcomeComplete, entities.OutcomeComplete, entities.OutcomeSkip},
		{entities.OutcomeComplete, entities.OutcomeComplete, entities.OutcomeComplete, entities.OutcomeComplete, entities.OutcomeComplete},
	}

	for _, mix := range mixes {
		e := NewEngine(5, GoalOnResolved)
		for i, outcome := range mix {
			res := e.Resolve(outcome)
			if i < 4 {
				assert.False(t, e.State().ThemeUnlocked, "unlocked early for %v", mix)
				continue
			}
			assert.True(t, e.State().ThemeUnlocked, "not unlocked for %v", mix)
			assert.Contains(t, kinds(res.Notifications), entities.NotificationDailyGoalAchieved)
		}
	}
}

func TestEmptyDeckNeverUnlocks(t *testing.T) {
	e := NewEngine(0, GoalOnResolved)
	e.Resolve(entities.OutcomeSkip)
	assert.False(t, e.State().ThemeUnlocked)
}

func TestApplyIsPure(t *testing.T) {
	state := entities.NewProgressionState(3)

	first := Apply(state, entities.OutcomeComplete, GoalOnCompleted)
	second := Apply(state, entities.OutcomeComplete, GoalOnCompleted)

	assert.Equal(t, first, second)
	assert.Zero(t, state.XP)
	assert.Equal(t, 10, first.After.XP)
}

func TestApplyIgnoresUnknownOutcome(t *testing.T) {
	state := entities.NewProgressionState(3)
	res := Apply(state, entities.SwipeOutcome("sideways"), GoalOnCompleted)

	assert.Equal(t, state, res.After)
	assert.Empty(t, res.Notifications)
}

func TestAdjustXPCanLowerLevel(t *testing.T) {
	e := NewEngine(10, GoalOnCompleted)
	for i := 0; i < 3; i++ {
		e.Resolve(entities.OutcomeComplete)
	}
	require.Equal(t, 2, e.State().Level)

	res := e.AdjustXP(-1000)

	assert.Empty(t, res.Notifications)
	assert.Equal(t, 0, e.State().XP)
	assert.Equal(t, 1, e.State().Level)
	assert.True(t, e.State().QuestAchieved, "quest stays achieved")
}

func TestConcurrentResolveKeepsQuestAtomic(t *testing.T) {
	e := NewEngine(100, GoalOnCompleted)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.Resolve(entities.OutcomeComplete)
		}()
	}
	wg.Wait()

	state := e.State()
	assert.Equal(t, 50*XPPerTask+QuestBonusXP, state.XP)
	assert.Equal(t, 50*CoinsPerTask, state.Coins)
	assert.Equal(t, 50, state.TasksCompletedToday)
}
