package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"dopamine-deck/internal/adapters/output/memory"
	"dopamine-deck/internal/adapters/output/static"
	"dopamine-deck/internal/core/domain/entities"
	"dopamine-deck/internal/core/domain/exceptions"
	"dopamine-deck/internal/core/gesture"
	"dopamine-deck/internal/core/progression"
	"dopamine-deck/internal/infrastructure/eventloop"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type failingSource struct{}

func (failingSource) ListDeck(context.Context) ([]*entities.Task, error) {
	return nil, errors.New("catalog offline")
}

func newManualManager(t *testing.T) (*SessionManager, *eventloop.ManualScheduler, *memory.Journal) {
	t.Helper()
	sched := eventloop.NewManualScheduler()
	journal := memory.NewJournal(zap.NewNop())
	m, err := NewSessionManager(SessionManagerParams{
		Executor:  eventloop.Inline{},
		Scheduler: sched,
		Source:    static.NewTaskSource(nil),
		Journal:   journal,
		GoalRule:  progression.GoalOnCompleted,
		Log:       zap.NewNop(),
	})
	require.NoError(t, err)
	return m, sched, journal
}

func swipeThroughManager(t *testing.T, m *SessionManager, sched *eventloop.ManualScheduler, sessionID, taskID string, delta float64) {
	t.Helper()
	ctx := context.Background()
	view, err := m.DragStart(ctx, sessionID, taskID)
	require.NoError(t, err)
	require.True(t, view.Accepted)
	_, err = m.DragMove(ctx, sessionID, taskID, delta)
	require.NoError(t, err)
	_, err = m.DragEnd(ctx, sessionID, taskID)
	require.NoError(t, err)
	sched.Advance(gesture.CommitDuration)
}

func TestNewSessionManagerValidates(t *testing.T) {
	_, err := NewSessionManager(SessionManagerParams{})
	assert.Error(t, err)
}

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	m, sched, journal := newManualManager(t)

	snap, err := m.StartSession(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, snap.SessionID)
	assert.Len(t, snap.Pending, 5)
	assert.Equal(t, 1, snap.State.Level)

	notes, cancel, err := m.Subscribe(ctx, snap.SessionID)
	require.NoError(t, err)
	defer cancel()

	swipeThroughManager(t, m, sched, snap.SessionID, "1", 150)
	swipeThroughManager(t, m, sched, snap.SessionID, "2", 150)
	swipeThroughManager(t, m, sched, snap.SessionID, "3", 150)

	var got []entities.NotificationKind
	for len(notes) > 0 {
		got = append(got, (<-notes).Kind)
	}
	assert.Equal(t, []entities.NotificationKind{
		entities.NotificationTaskResolved,
		entities.NotificationTaskResolved,
		entities.NotificationQuestComplete,
		entities.NotificationTaskResolved,
		entities.NotificationLevelUp,
	}, got)

	current, err := m.Snapshot(ctx, snap.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 50, current.State.XP)
	assert.Equal(t, 2, current.State.Level)
	assert.Len(t, current.Feed, 3)

	final, err := m.EndSession(ctx, snap.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 50, final.State.XP)

	_, open := <-notes
	assert.False(t, open, "watchers are closed with the session")

	_, state, ok := journal.Session(snap.SessionID)
	require.True(t, ok)
	assert.Equal(t, 50, state.XP)
	assert.Len(t, journal.Records(snap.SessionID), 3)

	_, err = m.Snapshot(ctx, snap.SessionID)
	assert.ErrorIs(t, err, exceptions.ErrSessionNotFound)
	_, err = m.EndSession(ctx, snap.SessionID)
	assert.ErrorIs(t, err, exceptions.ErrSessionNotFound)
}

func TestSessionsAreIndependent(t *testing.T) {
	ctx := context.Background()
	m, sched, _ := newManualManager(t)

	a, err := m.StartSession(ctx)
	require.NoError(t, err)
	b, err := m.StartSession(ctx)
	require.NoError(t, err)
	require.NotEqual(t, a.SessionID, b.SessionID)

	swipeThroughManager(t, m, sched, a.SessionID, "1", 150)

	snapA, err := m.Snapshot(ctx, a.SessionID)
	require.NoError(t, err)
	snapB, err := m.Snapshot(ctx, b.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 10, snapA.State.XP)
	assert.Zero(t, snapB.State.XP)
	assert.Len(t, snapB.Pending, 5)
}

func TestSessionManagerArgumentErrors(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newManualManager(t)
	snap, err := m.StartSession(ctx)
	require.NoError(t, err)

	_, err = m.DragStart(ctx, "", "1")
	assert.ErrorIs(t, err, exceptions.ErrSessionIDRequired)

	_, err = m.DragStart(ctx, snap.SessionID, "")
	assert.ErrorIs(t, err, exceptions.ErrTaskIDRequired)

	_, err = m.DragStart(ctx, "unknown", "1")
	assert.ErrorIs(t, err, exceptions.ErrSessionNotFound)

	_, err = m.DragMove(ctx, snap.SessionID, "1", math.NaN())
	assert.ErrorIs(t, err, exceptions.ErrDeltaInvalid)

	_, err = m.StartFocus(ctx, snap.SessionID, "99")
	assert.ErrorIs(t, err, exceptions.ErrTaskNotFound)

	_, _, err = m.Subscribe(ctx, "unknown")
	assert.ErrorIs(t, err, exceptions.ErrSessionNotFound)

	view, err := m.DragMove(ctx, snap.SessionID, "99", 10)
	require.NoError(t, err, "unknown cards are ignored, not errors")
	assert.False(t, view.Accepted)
}

func TestStartSessionSourceFailure(t *testing.T) {
	m, err := NewSessionManager(SessionManagerParams{
		Executor:  eventloop.Inline{},
		Scheduler: eventloop.NewManualScheduler(),
		Source:    failingSource{},
		Log:       zap.NewNop(),
	})
	require.NoError(t, err)

	_, err = m.StartSession(context.Background())
	assert.EqualError(t, err, "catalog offline")
}

func TestFocusThroughManager(t *testing.T) {
	ctx := context.Background()
	m, sched, _ := newManualManager(t)
	snap, err := m.StartSession(ctx)
	require.NoError(t, err)

	view, err := m.StartFocus(ctx, snap.SessionID, "5")
	require.NoError(t, err)
	assert.Equal(t, entities.FocusRunning, view.Status)

	sched.Advance(5 * time.Second)
	view, err = m.PauseFocus(ctx, snap.SessionID, "5")
	require.NoError(t, err)
	assert.Equal(t, entities.FocusPaused, view.Status)
	assert.Equal(t, 20*60-5, view.Remaining)
}

func TestCloseEndsAllSessions(t *testing.T) {
	ctx := context.Background()
	m, _, journal := newManualManager(t)
	a, err := m.StartSession(ctx)
	require.NoError(t, err)
	b, err := m.StartSession(ctx)
	require.NoError(t, err)

	m.Close(ctx)

	for _, id := range []string{a.SessionID, b.SessionID} {
		_, err := m.Snapshot(ctx, id)
		assert.ErrorIs(t, err, exceptions.ErrSessionNotFound)
		sess, _, ok := journal.Session(id)
		require.True(t, ok)
		assert.False(t, sess.EndedAt.IsZero())
	}
}

func TestSessionOnEventLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loop := eventloop.New(16, zap.NewNop())
	go loop.Run(ctx)

	m, err := NewSessionManager(SessionManagerParams{
		Executor:  loop,
		Scheduler: eventloop.ForLoop(loop),
		Source:    static.NewTaskSource(nil),
		Log:       zap.NewNop(),
	})
	require.NoError(t, err)

	snap, err := m.StartSession(ctx)
	require.NoError(t, err)
	notes, unsubscribe, err := m.Subscribe(ctx, snap.SessionID)
	require.NoError(t, err)
	defer unsubscribe()

	_, err = m.DragStart(ctx, snap.SessionID, "1")
	require.NoError(t, err)
	_, err = m.DragMove(ctx, snap.SessionID, "1", -120)
	require.NoError(t, err)
	view, err := m.DragEnd(ctx, snap.SessionID, "1")
	require.NoError(t, err)
	assert.Equal(t, entities.DirectionLeft, view.State.Direction)

	select {
	case n := <-notes:
		assert.Equal(t, entities.NotificationTaskResolved, n.Kind)
		assert.Equal(t, entities.OutcomeSkip, n.Outcome)
	case <-time.After(2 * time.Second):
		t.Fatal("no resolution notification")
	}

	current, err := m.Snapshot(ctx, snap.SessionID)
	require.NoError(t, err)
	assert.Len(t, current.Pending, 4)
}
