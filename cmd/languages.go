package cmd

import (
	"github.com/spf13/cobra"

	"polyscan/core"
)

// languagesCmd performs ecosystem classification.
var languagesCmd = &cobra.Command{
	Use:   "languages [project-root]",
	Short: "Classify the language ecosystems present in a project.",
	Long: `Walk the project tree and classify every file into language ecosystems.

Reports per ecosystem:
- Number of source files and non-empty lines of code
- Share of total classified lines
- Recognized config files (manifests, lock files)
- Package managers inferred from those config files

Results are cached keyed on the recognized config files, so repeated scans
of an unchanged project are fast.

Examples:
  # Classify the current directory
  polyscan languages

  # Classify another project and export as JSON
  polyscan languages ~/src/service --output json

  # Force a fresh scan
  polyscan languages --no-cache`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run:     runExecutor(core.ExecuteLanguages, "Cannot run language classification"),
}
