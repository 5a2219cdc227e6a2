// Package parquet provides data structures and functions for exporting build
// run history and dependency reports to Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"

	"polyscan/schema"
)

// BuildRun represents a single build orchestration run with metadata.
// This struct maps to the polyscan_build_runs database table.
type BuildRun struct {
	// RunID is the unique identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// Root is the absolute path of the scanned project
	Root string `parquet:"root,snappy"`

	// StartTime is when the run began
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// DurationMs is the duration of the run in milliseconds (nullable)
	DurationMs *int64 `parquet:"duration_ms,optional,snappy"`

	// Parallel records whether ecosystems were built concurrently
	Parallel bool `parquet:"parallel,snappy"`

	// Success is the aggregate outcome over all attempted ecosystems
	Success bool `parquet:"success,snappy"`

	// Ecosystems is the number of ecosystems attempted in this run
	Ecosystems int32 `parquet:"ecosystems,snappy"`
}

// BuildResult represents one per-ecosystem outcome within a run.
// This struct maps to the polyscan_build_results database table.
type BuildResult struct {
	// RunID references the parent run
	RunID int64 `parquet:"run_id,snappy"`

	// Ecosystem is the ecosystem that was built
	Ecosystem string `parquet:"ecosystem,snappy"`

	// Success is the outcome of this ecosystem's build step
	Success bool `parquet:"success,snappy"`

	// DurationMs is the build step's wall-clock duration in milliseconds
	DurationMs int64 `parquet:"duration_ms,snappy"`

	// Error is the failure description (nullable, set only on failure)
	Error *string `parquet:"error,optional,snappy"`

	// RecordedAt is when this result row was stored
	RecordedAt time.Time `parquet:"recorded_at,snappy"`
}

// Dependency represents one declared dependency for columnar export.
type Dependency struct {
	// Name is the declared package, provider or module identifier
	Name string `parquet:"name,snappy"`

	// Version is the constraint as written in the manifest (nullable)
	Version *string `parquet:"version,optional,snappy"`

	// PackageManager is the tool the declaration belongs to
	PackageManager string `parquet:"package_manager,snappy"`

	// Language is the ecosystem the declaration belongs to
	Language string `parquet:"language,snappy"`

	// FilePath is the manifest path relative to the scanned root
	FilePath string `parquet:"file_path,snappy"`
}

// WriteBuildRunsParquet writes a slice of BuildRun structs to a Parquet file.
func WriteBuildRunsParquet(data []BuildRun, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteBuildResultsParquet writes a slice of BuildResult structs to a Parquet file.
func WriteBuildResultsParquet(data []BuildResult, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteDependenciesParquet writes a slice of Dependency structs to a Parquet file.
func WriteDependenciesParquet(data []Dependency, outputPath string) error {
	return writeParquet(data, outputPath)
}

// writeParquet writes records of any supported row type to a Parquet file.
// The schema is derived from the struct tags.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// ConvertRunRecords converts schema.RunRecord to BuildRun for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []BuildRun {
	result := make([]BuildRun, len(records))
	for i, record := range records {
		result[i] = BuildRun{
			RunID:      record.RunID,
			Root:       record.Root,
			StartTime:  record.StartTime,
			EndTime:    record.EndTime,
			DurationMs: record.DurationMs,
			Parallel:   record.Parallel,
			Success:    record.Success,
			Ecosystems: int32(record.Ecosystems),
		}
	}
	return result
}

// ConvertRunResultRecords converts schema.RunResultRecord to BuildResult for Parquet export.
func ConvertRunResultRecords(records []schema.RunResultRecord) []BuildResult {
	result := make([]BuildResult, len(records))
	for i, record := range records {
		result[i] = BuildResult{
			RunID:      record.RunID,
			Ecosystem:  record.Ecosystem,
			Success:    record.Success,
			DurationMs: record.DurationMs,
			Error:      record.Error,
			RecordedAt: record.RecordedAt,
		}
	}
	return result
}

// ConvertDependencies converts schema.Dependency to Dependency for Parquet export.
func ConvertDependencies(deps []schema.Dependency) []Dependency {
	result := make([]Dependency, len(deps))
	for i, dep := range deps {
		var version *string
		if dep.Version != "" {
			v := dep.Version
			version = &v
		}
		result[i] = Dependency{
			Name:           dep.Name,
			Version:        version,
			PackageManager: string(dep.PackageManager),
			Language:       string(dep.Language),
			FilePath:       dep.FilePath,
		}
	}
	return result
}
