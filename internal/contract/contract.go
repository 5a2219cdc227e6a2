// Package contract provides interfaces and shared utilities for polyscan's internal architecture.
package contract

import (
	"context"
	"time"

	"polyscan/schema"
)

// Runner executes an external command as a supervised child process.
// The orchestrator never shells out directly; argv is passed as a vector so
// project-controlled paths cannot be shell-interpreted. This also allows the
// build logic to be tested without any ecosystem tool installed.
type Runner interface {
	// Run executes argv[0] with argv[1:] in cwd, bounded by timeout.
	// It returns the exit code, combined stdout/stderr (truncated to a fixed
	// ceiling), and the elapsed wall-clock duration. A missing binary is
	// reported through err; a non-zero exit is not an err.
	Run(ctx context.Context, argv []string, cwd string, timeout time.Duration) (exitCode int, output string, elapsed time.Duration, err error)
}

// CacheManager defines the interface for managing persistence stores.
// This allows the persistence layer to be mocked for testing.
type CacheManager interface {
	GetScanStore() ScanStore
	GetRunStore() RunStore
}

// ScanStore defines the key/value interface for cached scan reports.
type ScanStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	Clear() error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// RunStore defines the interface for tracking build orchestration runs.
type RunStore interface {
	// BeginRun creates a new run row and returns its unique ID.
	BeginRun(root string, startTime time.Time, parallel bool) (int64, error)

	// EndRun finalizes the run with completion data.
	EndRun(runID int64, endTime time.Time, success bool, ecosystems int) error

	// RecordResult stores one per-ecosystem build result for the run.
	RecordResult(runID int64, result *schema.BuildResult) error

	// ListRuns returns run history, newest first, limited to n rows.
	ListRuns(n int) ([]schema.RunRecord, []schema.RunResultRecord, error)

	// Clear removes all run history.
	Clear() error

	// GetStatus returns status information about the run store.
	GetStatus() (schema.RunStatus, error)

	// Close closes the underlying connection.
	Close() error
}
