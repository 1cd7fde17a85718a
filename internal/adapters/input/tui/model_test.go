package tui

import (
	"context"
	"testing"
	"time"

	"dopamine-deck/internal/adapters/output/static"
	"dopamine-deck/internal/core/domain/entities"
	"dopamine-deck/internal/core/gesture"
	"dopamine-deck/internal/core/progression"
	"dopamine-deck/internal/core/service"
	"dopamine-deck/internal/infrastructure/eventloop"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func startedModel(t *testing.T) (deckModel, *eventloop.ManualScheduler) {
	t.Helper()
	sched := eventloop.NewManualScheduler()
	svc, err := service.NewSessionManager(service.SessionManagerParams{
		Executor:  eventloop.Inline{},
		Scheduler: sched,
		Source:    static.NewTaskSource(nil),
		GoalRule:  progression.GoalOnCompleted,
		Log:       zap.NewNop(),
	})
	require.NoError(t, err)

	m := newDeckModel(context.Background(), svc)
	msg := m.Init()()
	started, ok := msg.(startedMsg)
	require.True(t, ok)
	require.NoError(t, started.err)

	next, _ := m.Update(started)
	return next.(deckModel), sched
}

func press(m deckModel, keys ...tea.KeyMsg) deckModel {
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(deckModel)
	}
	return m
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func drainNotifications(t *testing.T, m deckModel) deckModel {
	t.Helper()
	for len(m.notes) > 0 {
		next, _ := m.Update(waitNotification(m.notes)())
		m = next.(deckModel)
	}
	return m
}

func TestDragRightCompletesSelectedCard(t *testing.T) {
	m, sched := startedModel(t)
	require.Len(t, m.snap.Pending, 5)

	right := tea.KeyMsg{Type: tea.KeyRight}
	m = press(m, right, right, right)
	assert.Equal(t, "1", m.dragging)
	assert.Equal(t, 120.0, m.snap.Cards["1"].Offset)
	assert.Equal(t, entities.PhaseDragging, m.snap.Cards["1"].Phase)

	m = press(m, tea.KeyMsg{Type: tea.KeySpace})
	assert.Empty(t, m.dragging)
	assert.Equal(t, "Swiped right.", m.lastLog)
	assert.Equal(t, entities.PhaseCommitting, m.snap.Cards["1"].Phase)

	sched.Advance(gesture.CommitDuration)
	m = drainNotifications(t, m)

	assert.Len(t, m.snap.Pending, 4)
	assert.Equal(t, 10, m.snap.State.XP)
	require.NotEmpty(t, m.recent)
	assert.Equal(t, entities.NotificationTaskResolved, m.recent[0].Kind)
	assert.Contains(t, m.View(), "Morning Jog")
}

func TestShortDragSnapsBack(t *testing.T) {
	m, sched := startedModel(t)

	m = press(m, tea.KeyMsg{Type: tea.KeyLeft}, tea.KeyMsg{Type: tea.KeyLeft}, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "Not far enough, card snaps back.", m.lastLog)

	sched.Advance(gesture.CancelDuration)
	next, _ := m.Update(tickMsg(time.Now()))
	m = next.(deckModel)
	assert.Len(t, m.snap.Pending, 5)
	assert.Equal(t, entities.PhaseIdle, m.snap.Cards["1"].Phase)
	assert.Zero(t, m.snap.Cards["1"].Offset)
}

func TestQuickSwipesReachScenario(t *testing.T) {
	m, sched := startedModel(t)

	for i := 0; i < 3; i++ {
		m = press(m, runeKey('c'))
		sched.Advance(gesture.CommitDuration)
		m = drainNotifications(t, m)
	}

	assert.Equal(t, 50, m.snap.State.XP)
	assert.Equal(t, 2, m.snap.State.Level)
	assert.True(t, m.snap.State.QuestAchieved)
	assert.Equal(t, entities.NotificationLevelUp, m.recent[0].Kind)
	assert.Len(t, m.snap.Feed, 3)

	m = press(m, runeKey('x'))
	sched.Advance(gesture.CommitDuration)
	m = drainNotifications(t, m)
	assert.Equal(t, 50, m.snap.State.XP, "skips award nothing")
	assert.Len(t, m.snap.Pending, 1)
}

func TestSelectionAndFocus(t *testing.T) {
	m, sched := startedModel(t)

	m = press(m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 2, m.selected)

	m = press(m, runeKey('f'))
	assert.Equal(t, entities.FocusRunning, m.snap.Focus["3"].Status)

	sched.Advance(3 * time.Second)
	m = press(m, runeKey('f'))
	assert.Equal(t, entities.FocusPaused, m.snap.Focus["3"].Status)
	assert.Equal(t, "Focus paused: 14:57", m.lastLog)

	m = press(m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 1, m.selected)
}

func TestQuitEndsSession(t *testing.T) {
	m, _ := startedModel(t)
	next, cmd := m.Update(runeKey('q'))
	m = next.(deckModel)

	assert.True(t, m.ended)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	_, err := m.svc.Snapshot(context.Background(), m.sessionID)
	assert.Error(t, err)
}

func TestTrack(t *testing.T) {
	assert.Equal(t, "skip ●───────┊───────┊──────── done", track(-300))
	assert.Equal(t, "skip ────────┊───●───┊──────── done", track(0))
	assert.Equal(t, "skip ────────┊───────┊───────● done", track(1000))
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "[██░░]", progressBar(25, 50, 4))
	assert.Equal(t, "[████]", progressBar(60, 50, 4))
	assert.Equal(t, "[████]", progressBar(0, 0, 4))
}

func TestHeaderAtMaxLevel(t *testing.T) {
	m, _ := startedModel(t)
	info := progression.LevelFor(600)
	m.snap.State.XP = 600
	m.snap.State.Level = info.Level
	m.snap.State.LevelName = info.Name
	m.snap.State.MaxLevel = info.Max

	header := m.renderHeader(themeFor(m.snap.State))
	assert.Contains(t, header, "Lv 5 Grandmaster")
	assert.Contains(t, header, "XP 600 Max Level")
}
