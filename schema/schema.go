// Package schema has models, constants and global helpers for all parts of polyscan.
package schema

import "time"

// LanguageInfo summarizes one detected ecosystem after a full tree scan.
// All paths are relative to the scanned root and use forward slashes.
type LanguageInfo struct {
	Ecosystem       Ecosystem        `json:"ecosystem"`
	FilesCount      int              `json:"files_count"`
	LinesOfCode     int              `json:"lines_of_code"`
	Percentage      float64          `json:"percentage"` // share of total classified lines, [0,100]
	ConfigFiles     []string         `json:"config_files"`
	PackageManagers []PackageManager `json:"package_managers"`
}

// Dependency is one declared third-party requirement parsed from a manifest.
// The same (Name, Language) pair may appear more than once when it is declared
// in multiple manifests; records are distinguished by FilePath.
type Dependency struct {
	Name           string         `json:"name"`
	Version        string         `json:"version"` // constraint as written, may be empty
	PackageManager PackageManager `json:"package_manager"`
	Language       Ecosystem      `json:"language"`
	FilePath       string         `json:"file_path"`
}

// BuildResult captures the outcome of one ecosystem's validate/build attempt.
type BuildResult struct {
	Ecosystem Ecosystem `json:"ecosystem"`
	Success   bool      `json:"success"`
	Duration  float64   `json:"duration_seconds"` // wall-clock seconds, >= 0
	Output    string    `json:"output"`           // combined stdout/stderr, truncated
	Error     string    `json:"error,omitempty"`  // set only when Success is false
}

// BuildSummary holds aggregate timing for one orchestration pass.
type BuildSummary struct {
	Duration float64 `json:"duration_seconds"`
}

// BuildReport aggregates all per-ecosystem outcomes of one orchestration pass.
// Success is the AND over all attempted results; an ecosystem with no files is
// skipped and contributes nothing.
type BuildReport struct {
	Success bool                       `json:"success"`
	Results map[Ecosystem]*BuildResult `json:"results"`
	Summary BuildSummary               `json:"summary"`
}

// ScanReport bundles one classifier pass with its provenance. It is the
// payload the CLI scan cache stores; the engine itself never persists it.
type ScanReport struct {
	Root      string         `json:"root"`
	Languages []LanguageInfo `json:"languages"`
	ScannedAt time.Time      `json:"scanned_at"`
}

// RunRecord is one row of build-run history tracked by the run store.
type RunRecord struct {
	RunID      int64      `json:"run_id"`
	Root       string     `json:"root"`
	StartTime  time.Time  `json:"start_time"`
	EndTime    *time.Time `json:"end_time,omitempty"`
	DurationMs *int64     `json:"duration_ms,omitempty"`
	Parallel   bool       `json:"parallel"`
	Success    bool       `json:"success"`
	Ecosystems int        `json:"ecosystems"`
}

// RunResultRecord is one per-ecosystem row attached to a RunRecord.
type RunResultRecord struct {
	RunID      int64     `json:"run_id"`
	Ecosystem  string    `json:"ecosystem"`
	Success    bool      `json:"success"`
	DurationMs int64     `json:"duration_ms"`
	Error      *string   `json:"error,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// CacheStatus holds status information about the scan cache store.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// RunStatus holds status information about the run history store.
type RunStatus struct {
	Backend     string    `json:"backend"`
	Connected   bool      `json:"connected"`
	TotalRuns   int       `json:"total_runs"`
	FailedRuns  int       `json:"failed_runs"`
	LastRunTime time.Time `json:"last_run_time"`
}
