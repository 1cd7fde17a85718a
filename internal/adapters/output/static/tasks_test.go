package static

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultDeck(t *testing.T) {
	tasks, err := NewTaskSource(nil).ListDeck(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 5)

	assert.Equal(t, "1", tasks[0].ID())
	assert.Equal(t, "Morning Jog", tasks[0].Title())
	assert.Equal(t, 1800, tasks[0].DurationSeconds())
	assert.Equal(t, "", tasks[3].Emoji())
	assert.Equal(t, "Meeting", tasks[4].Category())
}

func TestListDeckReturnsFreshTasks(t *testing.T) {
	src := NewTaskSource([]TaskSpec{{ID: "a", Title: "A", Duration: "soon"}})

	first, err := src.ListDeck(context.Background())
	require.NoError(t, err)
	second, err := src.ListDeck(context.Background())
	require.NoError(t, err)

	assert.NotSame(t, first[0], second[0])
	assert.Zero(t, first[0].DurationSeconds(), "unparseable duration falls back to zero")
}

func TestListDeckHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewTaskSource(nil).ListDeck(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
