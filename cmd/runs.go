package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"polyscan/internal/contract"
	"polyscan/internal/iocache"
	"polyscan/internal/outwriter"
	"polyscan/schema"
)

// runsSetup loads minimal configuration needed for run history operations.
// This is used by commands that need run store access without full shared setup.
func runsSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get runs-related config values
	backendStr := viper.GetString("runs-backend")
	connStr := viper.GetString("runs-db-connect")

	// Handle empty backend as SQLiteBackend so that history recorded with the
	// default build configuration is reachable without extra flags
	var backend schema.DatabaseBackend
	if backendStr == "" {
		backend = schema.SQLiteBackend
	} else {
		backend = schema.DatabaseBackend(backendStr)
	}

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// Get output-related config values (used by export and list commands)
	outputFile := viper.GetString("output-file")
	output := schema.OutputMode(viper.GetString("output"))
	if output == "" {
		output = schema.TextOut
	}

	// Initialize stores with the loaded config (no cache tracking for runs commands)
	if err := iocache.InitStores("", "", backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize run tracking: %w", err)
	}

	cfg.RunsBackend = backend
	cfg.RunsDBConnect = connStr
	cfg.OutputFile = outputFile
	cfg.Output = output

	cfg.RunsLimit = viper.GetInt("runs-limit")
	if cfg.RunsLimit <= 0 {
		cfg.RunsLimit = contract.DefaultRunsLimit
	}

	return nil
}

// runsSetupWrapper wraps runsSetup to provide PreRunE for runs commands.
func runsSetupWrapper(_ *cobra.Command, _ []string) error {
	return runsSetup()
}

// runsMigrateSetup loads minimal configuration needed for migrate operations.
// This is a specialized setup that does NOT initialize stores or create tables,
// allowing migrations to run on a fresh database.
func runsMigrateSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get runs-related config values
	backendStr := viper.GetString("runs-backend")
	connStr := viper.GetString("runs-db-connect")

	var backend schema.DatabaseBackend
	if backendStr == "" {
		backend = schema.SQLiteBackend
	} else {
		backend = schema.DatabaseBackend(backendStr)
	}

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetRunsDBFilePath()
	}

	cfg.RunsBackend = backend
	cfg.RunsDBConnect = connStr

	return nil
}

// runsMigrateSetupWrapper wraps runsMigrateSetup to provide PreRunE for migrate command.
func runsMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return runsMigrateSetup()
}

// runsCmd focused on build run history management.
//
// Note: Runs subcommands use minimal initialization (runsSetup) instead of
// the full sharedSetup used by scan commands. This avoids project root
// resolution and complex config processing for simple history operations.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage build run history and exports",
	Long: `Manage historical build orchestration data used for tracking and reporting.

When a runs backend is configured, polyscan records every 'build' pass:
- Run metadata (project root, timestamps, duration, parallelism)
- Per-ecosystem outcomes with durations and failure text

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  list    - Show recent build runs
  status  - Show run tracking statistics
  export  - Export history to Parquet for analytics
  clear   - Remove all run history
  migrate - Run database schema migrations

Examples:
  # Show the most recent runs
  polyscan runs list

  # Export for analysis in pandas/DuckDB
  polyscan runs export --output-file runs-data`,
}

// runsListCmd lists recent build runs.
var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show recent build runs with per-ecosystem outcomes",
	Long: `List the most recent build orchestration runs, newest first.

Each row shows the project root, start time, duration, whether ecosystems
ran concurrently, and the per-ecosystem outcomes.

Examples:
  # Show the default number of recent runs
  polyscan runs list

  # Show more history as JSON
  polyscan runs list --runs-limit 100 --output json`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runs, results, err := iocache.Manager.GetRunStore().ListRuns(cfg.RunsLimit)
		if err != nil {
			contract.LogFatal("Failed to list runs", err)
		}
		if err := outwriter.PrintRunResults(runs, results, cfg); err != nil {
			contract.LogFatal("Failed to print runs", err)
		}
	},
}

// runsStatusCmd shows run tracking status.
var runsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run tracking statistics and connection details",
	Long: `Show detailed information about build run tracking.

Displays:
- Backend type and connection status
- Total and failed run counts
- Last run timestamp

Examples:
  # Check run tracking status
  polyscan runs status`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetRunStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get run status", err)
		}
		iocache.PrintRunStatus(status)
	},
}

// runsClearCmd clears the run history.
var runsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all build run history",
	Long: `Delete all stored build runs and per-ecosystem results.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  # Export before clearing
  polyscan runs export --output-file backup
  polyscan runs clear`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearRuns(cfg.RunsBackend, contract.GetRunsDBFilePath(), cfg.RunsDBConnect); err != nil {
			contract.LogFatal("Failed to clear run history", err)
		}
		fmt.Println("Run history cleared successfully.")
	},
}

// runsExportCmd exports run history to Parquet files.
var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run history to Parquet for BI tools and analytics",
	Long: `Export all stored run history to Parquet format for use with analytics tools.

Exports two datasets:
- Build runs - metadata about each orchestration pass
- Build results - per-ecosystem outcomes with durations and errors

Requires: --output-file parameter

Examples:
  # Export all data
  polyscan runs export --output-file polyscan-data

  # Use with DuckDB for analysis
  polyscan runs export --output-file data
  duckdb -c "SELECT * FROM read_parquet('data.build_runs.parquet') LIMIT 10"`,
	PreRunE: runsSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteRunsExport(cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export run history", err)
		}
	},
}

// runsMigrateCmd runs database migrations for the run store.
var runsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the run tracking store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  polyscan runs migrate

  # Migrate to specific version
  polyscan runs migrate --target-version 1

  # Rollback to initial state
  polyscan runs migrate --target-version 0`,
	PreRunE: runsMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateRuns(cfg.RunsBackend, cfg.RunsDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
