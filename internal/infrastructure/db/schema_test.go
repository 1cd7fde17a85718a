package db

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingQuerier struct {
	stmts  []string
	failAt int
}

func (q *recordingQuerier) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	q.stmts = append(q.stmts, sql)
	if len(q.stmts) == q.failAt {
		return pgconn.CommandTag{}, errors.New("permission denied")
	}
	return pgconn.NewCommandTag("CREATE TABLE"), nil
}

func (q *recordingQuerier) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not used")
}

func (q *recordingQuerier) QueryRow(context.Context, string, ...any) pgx.Row {
	return nil
}

func TestMigrateRunsStatementsInOrder(t *testing.T) {
	q := &recordingQuerier{}
	require.NoError(t, Migrate(context.Background(), q, zap.NewNop()))

	require.Len(t, q.stmts, 3)
	assert.Contains(t, q.stmts[0], "CREATE TABLE IF NOT EXISTS tasks")
	assert.Contains(t, q.stmts[1], "CREATE TABLE IF NOT EXISTS deck_sessions")
	assert.Contains(t, q.stmts[2], "CREATE TABLE IF NOT EXISTS task_resolutions")
	assert.True(t, strings.Contains(q.stmts[2], "PRIMARY KEY (session_id, task_id)"))
}

func TestMigrateStopsOnError(t *testing.T) {
	q := &recordingQuerier{failAt: 2}
	err := Migrate(context.Background(), q, zap.NewNop())
	assert.EqualError(t, err, "migrate statement 1: permission denied")
	assert.Len(t, q.stmts, 2)
}
