package cmd

import (
	"github.com/spf13/cobra"

	"polyscan/core"
)

// depsCmd performs dependency extraction.
var depsCmd = &cobra.Command{
	Use:   "deps [project-root]",
	Short: "Extract declared dependencies from project manifests.",
	Long: `Parse every recognized manifest under the project root and list the
declared third-party dependencies.

Supported manifests:
- requirements.txt and requirements-dev.txt (pip)
- pyproject.toml (PEP 621 and Poetry)
- Pipfile (pipenv)
- environment.yml (conda)
- *.tf, *.tf.json and .terraform.lock.hcl (Terraform providers and modules)

Each declaration is reported with its version constraint as written, the
package manager it belongs to, and the manifest path. Duplicate names across
manifests are preserved.

Examples:
  # List dependencies of the current directory
  polyscan deps

  # Export to CSV for diffing between branches
  polyscan deps --output csv --output-file deps.csv

  # Export to Parquet for DuckDB/pandas analysis
  polyscan deps --output parquet --output-file deps.parquet`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run:     runExecutor(core.ExecuteDependencies, "Cannot run dependency extraction"),
}
