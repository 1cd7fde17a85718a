package mapper

import (
	"errors"
	"math"
	"testing"
	"time"

	"dopamine-deck/internal/core/domain/entities"
	"dopamine-deck/internal/core/domain/exceptions"
	"dopamine-deck/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestRequestFields(t *testing.T) {
	req, err := Request(map[string]any{
		FieldSessionID: "s1",
		FieldTaskID:    "3",
		FieldDeltaX:    -120.5,
	})
	require.NoError(t, err)

	sessionID, err := SessionID(req)
	require.NoError(t, err)
	assert.Equal(t, "s1", sessionID)

	taskID, err := TaskID(req)
	require.NoError(t, err)
	assert.Equal(t, "3", taskID)

	delta, err := DeltaX(req)
	require.NoError(t, err)
	assert.Equal(t, -120.5, delta)
}

func TestRequestFieldErrors(t *testing.T) {
	empty := &structpb.Struct{}

	_, err := SessionID(empty)
	assert.ErrorIs(t, err, exceptions.ErrSessionIDRequired)
	_, err = TaskID(nil)
	assert.ErrorIs(t, err, exceptions.ErrTaskIDRequired)
	_, err = DeltaX(empty)
	assert.ErrorIs(t, err, exceptions.ErrDeltaInvalid)

	text, err := Request(map[string]any{FieldDeltaX: "far"})
	require.NoError(t, err)
	_, err = DeltaX(text)
	assert.ErrorIs(t, err, exceptions.ErrDeltaInvalid)

	nan := &structpb.Struct{Fields: map[string]*structpb.Value{FieldDeltaX: structpb.NewNumberValue(math.NaN())}}
	_, err = DeltaX(nan)
	assert.ErrorIs(t, err, exceptions.ErrDeltaInvalid)
}

func TestSnapshot(t *testing.T) {
	task := entities.NewTask("1", "Morning Jog", "🏃", "health", 1800)
	at := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	snap := &ports.DeckSnapshot{
		SessionID: "s1",
		Pending:   []*entities.Task{task},
		Cards:     map[string]entities.SwipeState{"1": {Phase: entities.PhaseDragging, Offset: 42}},
		Focus:     map[string]entities.FocusView{"1": {TaskID: "1", Status: entities.FocusIdle, Remaining: 1800, Total: 1800}},
		State:     entities.NewProgressionState(1),
		Feed:      []entities.FeedItem{{TaskID: "9", Title: "Read", At: at}},
	}

	out := Snapshot(snap).AsMap()
	assert.Equal(t, "s1", out["session_id"])

	pending := out["pending"].([]any)
	require.Len(t, pending, 1)
	card := pending[0].(map[string]any)
	assert.Equal(t, "Morning Jog", card["title"])
	assert.Equal(t, float64(1800), card["duration_seconds"])
	assert.Equal(t, "dragging", card["swipe"].(map[string]any)["phase"])
	assert.Equal(t, "30:00", card["focus"].(map[string]any)["clock"])

	state := out["state"].(map[string]any)
	assert.Equal(t, float64(1), state["level"])
	assert.Equal(t, "default", state["theme"])

	feed := out["feed"].([]any)
	require.Len(t, feed, 1)
	assert.Equal(t, "2024-05-01T09:00:00Z", feed[0].(map[string]any)["at"])

	assert.Nil(t, Snapshot(nil))
}

func TestNotification(t *testing.T) {
	out := Notification(entities.Notification{
		Kind:      entities.NotificationLevelUp,
		TaskID:    "3",
		Level:     2,
		LevelName: "Apprentice",
		Milestone: true,
	}).AsMap()

	assert.Equal(t, "level_up", out["kind"])
	assert.Equal(t, float64(2), out["level"])
	assert.Equal(t, true, out["milestone"])
	assert.Nil(t, out["at"])
	_, hasOutcome := out["outcome"]
	assert.False(t, hasOutcome)

	resolved := Notification(entities.Notification{Kind: entities.NotificationTaskResolved, Outcome: entities.OutcomeSkip}).AsMap()
	assert.Equal(t, "skip", resolved["outcome"])
	_, hasLevel := resolved["level"]
	assert.False(t, hasLevel)
}

func TestError(t *testing.T) {
	tests := []struct {
		err  error
		code codes.Code
	}{
		{exceptions.ErrSessionNotFound, codes.NotFound},
		{exceptions.ErrTaskNotFound, codes.NotFound},
		{exceptions.ErrSessionIDRequired, codes.InvalidArgument},
		{exceptions.ErrDeltaInvalid, codes.InvalidArgument},
		{exceptions.ErrOutcomeInvalid, codes.InvalidArgument},
		{exceptions.ErrLoopStopped, codes.Unavailable},
		{errors.New("boom"), codes.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.code, status.Code(Error(tt.err)))
		})
	}
	assert.NoError(t, Error(nil))
}
