package iocache

import (
	"errors"
	"fmt"

	"polyscan/internal/parquet"
)

// ExecuteRunsExport exports build run history to Parquet files.
func ExecuteRunsExport(outputFile string) error {
	// Validate that output file is specified
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	store := Manager.GetRunStore()
	if store == nil {
		return errors.New("run store is not initialized")
	}

	// Check if there's any data to export
	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get run status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no run history found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total build runs: %d\n", status.TotalRuns)

	runs, results, err := store.ListRuns(status.TotalRuns)
	if err != nil {
		return fmt.Errorf("failed to retrieve run history: %w", err)
	}

	runsFile := outputFile + ".build_runs.parquet"
	if err := parquet.WriteBuildRunsParquet(parquet.ConvertRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write build runs: %w", err)
	}
	fmt.Printf("Exported %d build runs to: %s\n", len(runs), runsFile)

	resultsFile := outputFile + ".build_results.parquet"
	if err := parquet.WriteBuildResultsParquet(parquet.ConvertRunResultRecords(results), resultsFile); err != nil {
		return fmt.Errorf("failed to write build results: %w", err)
	}
	fmt.Printf("Exported %d build results to: %s\n", len(results), resultsFile)

	fmt.Println("Export complete. The Parquet files can be read with Spark, Pandas, DuckDB, or any other Parquet-compatible tool.")

	return nil
}
