package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"polyscan/core"
	"polyscan/schema"
)

// ErrBuildFailed signals that at least one ecosystem build step failed.
// main translates it into a non-zero exit after stores are closed.
var ErrBuildFailed = errors.New("one or more ecosystem build steps failed")

// buildCmd runs the build orchestrator.
var buildCmd = &cobra.Command{
	Use:   "build [project-root]",
	Short: "Run per-ecosystem build steps for all detected ecosystems.",
	Long: `Detect which ecosystems are present and execute each one's build step.

Build steps:
- python:    python3 -m pip install -r requirements.txt
- terraform: terraform validate -no-color

Failures are isolated: one ecosystem failing never stops the others. Each
step runs with the project root as working directory and is subject to the
per-ecosystem timeout. A missing tool (python3, terraform not on PATH) is
reported as that ecosystem's failure.

When a runs backend is configured, every orchestration pass is recorded and
can be inspected with 'polyscan runs list'.

The command exits non-zero when any ecosystem's build step fails.

Examples:
  # Build everything detected, sequentially
  polyscan build

  # Build ecosystems concurrently with a tighter timeout
  polyscan build --parallel --build-timeout 2m

  # Restrict to one ecosystem
  polyscan build --only terraform

  # Record run history in SQLite
  polyscan build --runs-backend sqlite`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		report, err := core.ExecuteBuild(rootCtx, cfg, cacheManager)
		if err != nil {
			return err
		}
		return reportExitError(report)
	},
}

// reportExitError folds a completed report into the command's error surface.
// The per-ecosystem detail has already been printed; the error only carries
// the exit decision up to main, which runs cleanup before exiting.
func reportExitError(report *schema.BuildReport) error {
	if report.Success {
		return nil
	}
	return ErrBuildFailed
}
