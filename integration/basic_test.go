//go:build basic

// Basic end-to-end tests that exercise the CLI against a scratch project
// with the default SQLite backends. To run: go test -tags basic ./integration
package integration

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPolyscanLanguagesBasic scans a sample project and checks the table output.
func TestPolyscanLanguagesBasic(t *testing.T) {
	project := writeSampleProject(t)

	output, err := runPolyscanOutput(t, "languages", project)
	require.NoError(t, err)

	assert.Contains(t, output, "python")
	assert.Contains(t, output, "terraform")
	assert.Contains(t, output, "requirements.txt")
}

// TestPolyscanDepsBasic extracts dependencies from the sample project.
func TestPolyscanDepsBasic(t *testing.T) {
	project := writeSampleProject(t)

	output, err := runPolyscanOutput(t, "deps", project, "--output", "csv")
	require.NoError(t, err)

	assert.Contains(t, output, "flask")
	assert.Contains(t, output, "hashicorp/aws")
}

// TestPolyscanDepsParquetExport writes a Parquet dependency report.
func TestPolyscanDepsParquetExport(t *testing.T) {
	project := writeSampleProject(t)
	outFile := filepath.Join(t.TempDir(), "deps.parquet")

	_, err := runPolyscanOutput(t, "deps", project, "--output", "parquet", "--output-file", outFile)
	require.NoError(t, err)

	info, err := os.Stat(outFile)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

// runPolyscanOutput runs the polyscan CLI and returns its combined output.
func runPolyscanOutput(t *testing.T, args ...string) (string, error) {
	polyscanPath := getPolyscanBinary()

	// Keep default SQLite databases away from the real home directory.
	cmd := exec.Command(polyscanPath, args...)
	cmd.Dir = "../"
	cmd.Env = append(os.Environ(), "HOME="+t.TempDir())
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Logf("Command failed: %s\nOutput: %s", cmd.String(), string(output))
	}
	return strings.TrimSpace(string(output)), err
}
