package metrics

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/vrptw/core/metrics"
)

func TestSQLiteRecorder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs", "history.db")
	rec, err := NewSQLiteRecorder(SQLiteConfig{Path: path})
	require.NoError(t, err)

	now := time.UnixMilli(1_700_000_000_000)
	require.NoError(t, rec.RecordBuild(coremetrics.BuildEvent{RunID: "a", Variant: "full", Customers: 2, Vehicles: 1, Subsets: 1, Variables: 24, Constraints: 33, Duration: time.Millisecond, Time: now}))
	require.NoError(t, rec.RecordSolve(coremetrics.SolveEvent{RunID: "a", Variant: "full", Status: "optimal", Objective: 15, HasSolution: true, Runtime: 250 * time.Millisecond, Routes: 1, Time: now}))
	require.NoError(t, rec.RecordSolve(coremetrics.SolveEvent{RunID: "b", Variant: "basic", Status: "infeasible", Err: "infeasible", Time: now.Add(time.Second)}))

	all, err := rec.Solves("")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].RunID)
	assert.Equal(t, 15.0, all[0].Objective)
	assert.True(t, all[0].HasSolution)
	assert.Equal(t, 250*time.Millisecond, all[0].Runtime)
	assert.Equal(t, now, all[0].Time)
	assert.Equal(t, "infeasible", all[1].Err)

	basic, err := rec.Solves("basic")
	require.NoError(t, err)
	require.Len(t, basic, 1)
	assert.False(t, basic[0].HasSolution)

	require.NoError(t, rec.Flush())

	reopened, err := NewSQLiteRecorder(SQLiteConfig{Path: path})
	require.NoError(t, err)
	defer func() { _ = reopened.Flush() }()
	all, err = reopened.Solves("")
	require.NoError(t, err)
	assert.Len(t, all, 2, "history survives restarts")
}

func TestSQLiteRecorderRequiresPath(t *testing.T) {
	_, err := NewSQLiteRecorder(SQLiteConfig{})
	assert.Error(t, err)
}
