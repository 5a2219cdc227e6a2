package iocache

import (
	"database/sql"
	"fmt"
	"time"

	"polyscan/internal/contract"
	"polyscan/schema"
)

// Table names for run tracking.
const (
	buildRunsTable    = "polyscan_build_runs"
	buildResultsTable = "polyscan_build_results"
)

// RunStoreImpl implements the RunStore interface.
type RunStoreImpl struct {
	db         *sql.DB
	backend    schema.DatabaseBackend
	driverName string
}

var _ contract.RunStore = &RunStoreImpl{} // Compile-time check

// NewRunStore creates a new RunStore with the specified backend.
func NewRunStore(backend schema.DatabaseBackend, connStr string) (contract.RunStore, error) {
	var db *sql.DB
	var err error
	var driverName string

	switch backend {
	case schema.SQLiteBackend:
		driverName = "sqlite"
		dbPath := connStr
		if dbPath == "" {
			dbPath = contract.GetRunsDBFilePath()
		}
		db, err = sql.Open(driverName, dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)

	case schema.MySQLBackend:
		driverName = "mysql"
		db, err = sql.Open(driverName, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open MySQL database: %w. Check connection string format: user:password@tcp(host:port)/dbname", err)
		}

	case schema.PostgreSQLBackend:
		driverName = "pgx"
		db, err = sql.Open(driverName, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}

	case schema.NoneBackend:
		// Return a no-op store for disabled tracking
		return &RunStoreImpl{
			db:         nil,
			backend:    backend,
			driverName: "",
		}, nil

	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}

	// Ping to verify connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w. Verify the database server is running and accessible", backend, err)
	}

	// Create the table schemas
	if err := createRunTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create run tables: %w", err)
	}

	return &RunStoreImpl{
		db:         db,
		backend:    backend,
		driverName: driverName,
	}, nil
}

// createRunTables creates the run tracking tables.
func createRunTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{buildRunsTable, getCreateBuildRunsQuery(backend)},
		{buildResultsTable, getCreateBuildResultsQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}

	return nil
}

// getCreateBuildRunsQuery returns the CREATE TABLE query for polyscan_build_runs.
func getCreateBuildRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(buildRunsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				root VARCHAR(512) NOT NULL,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				duration_ms BIGINT,
				parallel BOOLEAN NOT NULL,
				success BOOLEAN NOT NULL DEFAULT FALSE,
				ecosystems INT NOT NULL DEFAULT 0
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				root TEXT NOT NULL,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				duration_ms BIGINT,
				parallel BOOLEAN NOT NULL,
				success BOOLEAN NOT NULL DEFAULT FALSE,
				ecosystems INT NOT NULL DEFAULT 0
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				root TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT,
				duration_ms INTEGER,
				parallel INTEGER NOT NULL,
				success INTEGER NOT NULL DEFAULT 0,
				ecosystems INTEGER NOT NULL DEFAULT 0
			);
		`, quotedTableName)
	}
}

// getCreateBuildResultsQuery returns the CREATE TABLE query for polyscan_build_results.
func getCreateBuildResultsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(buildResultsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				ecosystem VARCHAR(100) NOT NULL,
				success BOOLEAN NOT NULL,
				duration_ms BIGINT NOT NULL,
				error TEXT,
				recorded_at DATETIME(6) NOT NULL,
				PRIMARY KEY (run_id, ecosystem)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				ecosystem TEXT NOT NULL,
				success BOOLEAN NOT NULL,
				duration_ms BIGINT NOT NULL,
				error TEXT,
				recorded_at TIMESTAMPTZ NOT NULL,
				PRIMARY KEY (run_id, ecosystem)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER NOT NULL,
				ecosystem TEXT NOT NULL,
				success INTEGER NOT NULL,
				duration_ms INTEGER NOT NULL,
				error TEXT,
				recorded_at TEXT NOT NULL,
				PRIMARY KEY (run_id, ecosystem)
			);
		`, quotedTableName)
	}
}

// BeginRun creates a new run row and returns its unique ID.
func (rs *RunStoreImpl) BeginRun(root string, startTime time.Time, parallel bool) (int64, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return 0, nil
	}

	quotedTableName := quoteTableName(buildRunsTable, rs.backend)

	var runID int64
	var err error
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (root, start_time, parallel) VALUES ($1, $2, $3) RETURNING run_id`, quotedTableName)
		err = rs.db.QueryRow(query, root, startTime, parallel).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (root, start_time, parallel) VALUES (?, ?, ?)`, quotedTableName)
		var result sql.Result
		result, err = rs.db.Exec(query, root, formatTime(startTime, rs.backend), parallel)
		if err != nil {
			return 0, err
		}
		runID, err = result.LastInsertId()
	}

	if err != nil {
		return 0, fmt.Errorf("failed to insert build run: %w", err)
	}

	return runID, nil
}

// EndRun finalizes the run with completion data.
func (rs *RunStoreImpl) EndRun(runID int64, endTime time.Time, success bool, ecosystems int) error {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(buildRunsTable, rs.backend)

	startTime, err := rs.getRunStartTime(runID)
	if err != nil {
		return err
	}
	durationMs := endTime.Sub(startTime).Milliseconds()

	var updateQuery string
	var args []any
	switch rs.backend {
	case schema.PostgreSQLBackend:
		updateQuery = fmt.Sprintf(`UPDATE %s SET end_time = $1, duration_ms = $2, success = $3, ecosystems = $4 WHERE run_id = $5`, quotedTableName)
		args = []any{endTime, durationMs, success, ecosystems, runID}
	default: // SQLite and MySQL
		updateQuery = fmt.Sprintf(`UPDATE %s SET end_time = ?, duration_ms = ?, success = ?, ecosystems = ? WHERE run_id = ?`, quotedTableName)
		args = []any{formatTime(endTime, rs.backend), durationMs, success, ecosystems, runID}
	}

	if _, err := rs.db.Exec(updateQuery, args...); err != nil {
		return fmt.Errorf("failed to update build run: %w", err)
	}
	return nil
}

// getRunStartTime reads the start_time column for a run, handling the
// per-backend time storage formats.
func (rs *RunStoreImpl) getRunStartTime(runID int64) (time.Time, error) {
	quotedTableName := quoteTableName(buildRunsTable, rs.backend)

	var query string
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = $1`, quotedTableName)
	default: // SQLite and MySQL
		query = fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = ?`, quotedTableName)
	}
	row := rs.db.QueryRow(query, runID)

	if rs.backend == schema.SQLiteBackend {
		var startTimeStr string
		if err := row.Scan(&startTimeStr); err != nil {
			return time.Time{}, fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
		}
		startTime, err := time.Parse(time.RFC3339Nano, startTimeStr)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to parse start_time: %w", err)
		}
		return startTime, nil
	}

	var startTime time.Time
	if err := row.Scan(&startTime); err != nil {
		return time.Time{}, fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}
	return startTime, nil
}

// RecordResult stores one per-ecosystem build result for the run.
func (rs *RunStoreImpl) RecordResult(runID int64, result *schema.BuildResult) error {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(buildResultsTable, rs.backend)
	durationMs := int64(result.Duration * 1000)
	var errText *string
	if result.Error != "" {
		errText = &result.Error
	}
	recordedAt := formatTime(time.Now(), rs.backend)

	var query string
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`INSERT INTO %s (run_id, ecosystem, success, duration_ms, error, recorded_at) VALUES ($1, $2, $3, $4, $5, $6)`, quotedTableName)
	default: // SQLite and MySQL
		query = fmt.Sprintf(`INSERT INTO %s (run_id, ecosystem, success, duration_ms, error, recorded_at) VALUES (?, ?, ?, ?, ?, ?)`, quotedTableName)
	}

	if _, err := rs.db.Exec(query, runID, string(result.Ecosystem), result.Success, durationMs, errText, recordedAt); err != nil {
		return fmt.Errorf("failed to insert build result: %w", err)
	}
	return nil
}

// ListRuns returns run history, newest first, limited to n rows, along with
// the per-ecosystem results belonging to those runs.
func (rs *RunStoreImpl) ListRuns(n int) ([]schema.RunRecord, []schema.RunResultRecord, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, nil, nil
	}

	runs, err := rs.listRunRecords(n)
	if err != nil {
		return nil, nil, err
	}
	if len(runs) == 0 {
		return runs, nil, nil
	}

	results, err := rs.listResultRecords(runs)
	if err != nil {
		return nil, nil, err
	}
	return runs, results, nil
}

func (rs *RunStoreImpl) listRunRecords(n int) ([]schema.RunRecord, error) {
	quotedTableName := quoteTableName(buildRunsTable, rs.backend)

	var query string
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`SELECT run_id, root, start_time, end_time, duration_ms, parallel, success, ecosystems FROM %s ORDER BY run_id DESC LIMIT $1`, quotedTableName)
	default: // SQLite and MySQL
		query = fmt.Sprintf(`SELECT run_id, root, start_time, end_time, duration_ms, parallel, success, ecosystems FROM %s ORDER BY run_id DESC LIMIT ?`, quotedTableName)
	}

	rows, err := rs.db.Query(query, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query build runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord

		if rs.backend == schema.SQLiteBackend {
			var startTimeStr string
			var endTimeStr *string
			if err := rows.Scan(&record.RunID, &record.Root, &startTimeStr, &endTimeStr, &record.DurationMs, &record.Parallel, &record.Success, &record.Ecosystems); err != nil {
				return nil, fmt.Errorf("failed to scan build run: %w", err)
			}
			startTime, err := time.Parse(time.RFC3339Nano, startTimeStr)
			if err != nil {
				return nil, fmt.Errorf("failed to parse start_time: %w", err)
			}
			record.StartTime = startTime
			if endTimeStr != nil {
				endTime, err := time.Parse(time.RFC3339Nano, *endTimeStr)
				if err != nil {
					return nil, fmt.Errorf("failed to parse end_time: %w", err)
				}
				record.EndTime = &endTime
			}
		} else {
			if err := rows.Scan(&record.RunID, &record.Root, &record.StartTime, &record.EndTime, &record.DurationMs, &record.Parallel, &record.Success, &record.Ecosystems); err != nil {
				return nil, fmt.Errorf("failed to scan build run: %w", err)
			}
		}

		runs = append(runs, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating build runs: %w", err)
	}
	return runs, nil
}

func (rs *RunStoreImpl) listResultRecords(runs []schema.RunRecord) ([]schema.RunResultRecord, error) {
	quotedTableName := quoteTableName(buildResultsTable, rs.backend)

	// Bound by the oldest run in the page; run IDs are monotonic.
	minRunID := runs[len(runs)-1].RunID

	var query string
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`SELECT run_id, ecosystem, success, duration_ms, error, recorded_at FROM %s WHERE run_id >= $1 ORDER BY run_id DESC, ecosystem`, quotedTableName)
	default: // SQLite and MySQL
		query = fmt.Sprintf(`SELECT run_id, ecosystem, success, duration_ms, error, recorded_at FROM %s WHERE run_id >= ? ORDER BY run_id DESC, ecosystem`, quotedTableName)
	}

	rows, err := rs.db.Query(query, minRunID)
	if err != nil {
		return nil, fmt.Errorf("failed to query build results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunResultRecord
	for rows.Next() {
		var record schema.RunResultRecord

		if rs.backend == schema.SQLiteBackend {
			var recordedAtStr string
			if err := rows.Scan(&record.RunID, &record.Ecosystem, &record.Success, &record.DurationMs, &record.Error, &recordedAtStr); err != nil {
				return nil, fmt.Errorf("failed to scan build result: %w", err)
			}
			recordedAt, err := time.Parse(time.RFC3339Nano, recordedAtStr)
			if err != nil {
				return nil, fmt.Errorf("failed to parse recorded_at: %w", err)
			}
			record.RecordedAt = recordedAt
		} else {
			if err := rows.Scan(&record.RunID, &record.Ecosystem, &record.Success, &record.DurationMs, &record.Error, &record.RecordedAt); err != nil {
				return nil, fmt.Errorf("failed to scan build result: %w", err)
			}
		}

		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating build results: %w", err)
	}
	return results, nil
}

// Clear removes all run history.
func (rs *RunStoreImpl) Clear() error {
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil
	}
	for _, table := range []string{buildResultsTable, buildRunsTable} {
		query := fmt.Sprintf("DELETE FROM %s", quoteTableName(table, rs.backend))
		if _, err := rs.db.Exec(query); err != nil {
			return fmt.Errorf("failed to clear table %s: %w", table, err)
		}
	}
	return nil
}

// Close closes the underlying connection.
func (rs *RunStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the run store.
func (rs *RunStoreImpl) GetStatus() (schema.RunStatus, error) {
	status := schema.RunStatus{
		Backend:   string(rs.backend),
		Connected: rs.db != nil,
	}

	if rs.backend == schema.NoneBackend || rs.db == nil {
		return status, nil
	}

	quotedTableName := quoteTableName(buildRunsTable, rs.backend)

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedTableName)
	row := rs.db.QueryRow(countQuery)
	if err := row.Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns == 0 {
		return status, nil
	}

	failedQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE success = %s AND end_time IS NOT NULL", quotedTableName, falseLiteral(rs.backend))
	row = rs.db.QueryRow(failedQuery)
	if err := row.Scan(&status.FailedRuns); err != nil {
		return status, fmt.Errorf("failed to get failed runs: %w", err)
	}

	lastQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id DESC LIMIT 1", quotedTableName)
	row = rs.db.QueryRow(lastQuery)
	if rs.backend == schema.SQLiteBackend {
		var lastTimeStr string
		if err := row.Scan(&lastTimeStr); err != nil {
			return status, fmt.Errorf("failed to get last run time: %w", err)
		}
		lastTime, err := time.Parse(time.RFC3339Nano, lastTimeStr)
		if err != nil {
			return status, fmt.Errorf("failed to parse last run time: %w", err)
		}
		status.LastRunTime = lastTime
	} else {
		if err := row.Scan(&status.LastRunTime); err != nil {
			return status, fmt.Errorf("failed to get last run time: %w", err)
		}
	}

	return status, nil
}

// falseLiteral returns the SQL literal for boolean false per backend. SQLite
// stores booleans as integers.
func falseLiteral(backend schema.DatabaseBackend) string {
	if backend == schema.SQLiteBackend {
		return "0"
	}
	return "FALSE"
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	switch backend {
	case schema.SQLiteBackend:
		return t.Format(time.RFC3339Nano)
	default:
		return t
	}
}
