package iocache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polyscan/internal/contract"
	"polyscan/schema"
)

func newSQLiteRunStore(t *testing.T) contract.RunStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	store, err := NewRunStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRunStoreLifecycle(t *testing.T) {
	store := newSQLiteRunStore(t)

	start := time.Now().Add(-time.Minute)
	runID, err := store.BeginRun("/tmp/project", start, true)
	require.NoError(t, err)
	require.Greater(t, runID, int64(0))

	errText := "exit status 1"
	require.NoError(t, store.RecordResult(runID, &schema.BuildResult{
		Ecosystem: schema.PythonEcosystem,
		Success:   true,
		Duration:  1.5,
		Output:    "ok",
	}))
	require.NoError(t, store.RecordResult(runID, &schema.BuildResult{
		Ecosystem: schema.TerraformEcosystem,
		Success:   false,
		Duration:  0.2,
		Error:     errText,
	}))
	require.NoError(t, store.EndRun(runID, time.Now(), false, 2))

	runs, results, err := store.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Len(t, results, 2)

	run := runs[0]
	assert.Equal(t, runID, run.RunID)
	assert.Equal(t, "/tmp/project", run.Root)
	assert.True(t, run.Parallel)
	assert.False(t, run.Success)
	assert.Equal(t, 2, run.Ecosystems)
	require.NotNil(t, run.EndTime)
	require.NotNil(t, run.DurationMs)
	assert.Greater(t, *run.DurationMs, int64(0))

	// Results are ordered by ecosystem within a run.
	assert.Equal(t, string(schema.PythonEcosystem), results[0].Ecosystem)
	assert.True(t, results[0].Success)
	assert.Equal(t, int64(1500), results[0].DurationMs)
	assert.Nil(t, results[0].Error)

	assert.Equal(t, string(schema.TerraformEcosystem), results[1].Ecosystem)
	assert.False(t, results[1].Success)
	require.NotNil(t, results[1].Error)
	assert.Equal(t, errText, *results[1].Error)
}

func TestRunStoreListLimit(t *testing.T) {
	store := newSQLiteRunStore(t)

	for i := 0; i < 5; i++ {
		runID, err := store.BeginRun("/tmp/project", time.Now(), false)
		require.NoError(t, err)
		require.NoError(t, store.EndRun(runID, time.Now(), true, 0))
	}

	runs, _, err := store.ListRuns(3)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	// Newest first.
	assert.Greater(t, runs[0].RunID, runs[1].RunID)
	assert.Greater(t, runs[1].RunID, runs[2].RunID)
}

func TestRunStoreStatus(t *testing.T) {
	store := newSQLiteRunStore(t)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", status.Backend)
	assert.True(t, status.Connected)
	assert.Equal(t, 0, status.TotalRuns)

	okID, err := store.BeginRun("/tmp/a", time.Now(), false)
	require.NoError(t, err)
	require.NoError(t, store.EndRun(okID, time.Now(), true, 1))

	failID, err := store.BeginRun("/tmp/b", time.Now(), false)
	require.NoError(t, err)
	require.NoError(t, store.EndRun(failID, time.Now(), false, 1))

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalRuns)
	assert.Equal(t, 1, status.FailedRuns)
	assert.False(t, status.LastRunTime.IsZero())
}

func TestRunStoreClear(t *testing.T) {
	store := newSQLiteRunStore(t)

	runID, err := store.BeginRun("/tmp/project", time.Now(), false)
	require.NoError(t, err)
	require.NoError(t, store.RecordResult(runID, &schema.BuildResult{Ecosystem: schema.PythonEcosystem, Success: true}))
	require.NoError(t, store.Clear())

	runs, results, err := store.ListRuns(10)
	require.NoError(t, err)
	assert.Empty(t, runs)
	assert.Empty(t, results)
}

func TestRunStoreNoneBackend(t *testing.T) {
	store, err := NewRunStore(schema.NoneBackend, "")
	require.NoError(t, err)

	runID, err := store.BeginRun("/tmp/project", time.Now(), false)
	require.NoError(t, err)
	assert.Equal(t, int64(0), runID)

	assert.NoError(t, store.RecordResult(runID, &schema.BuildResult{}))
	assert.NoError(t, store.EndRun(runID, time.Now(), true, 0))

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)
}
