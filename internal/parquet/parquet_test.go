package parquet

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polyscan/schema"
)

func TestWriteDependenciesParquet(t *testing.T) {
	deps := []schema.Dependency{
		{Name: "flask", Version: ">=2.0", PackageManager: schema.PipManager, Language: schema.PythonEcosystem, FilePath: "requirements.txt"},
		{Name: "hashicorp/aws", PackageManager: schema.TerraformManager, Language: schema.TerraformEcosystem, FilePath: "main.tf"},
	}

	outFile := filepath.Join(t.TempDir(), "deps.parquet")
	require.NoError(t, WriteDependenciesParquet(ConvertDependencies(deps), outFile))

	info, err := os.Stat(outFile)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestWriteBuildRunsParquet(t *testing.T) {
	end := time.Now()
	durationMs := int64(1500)
	records := []schema.RunRecord{
		{RunID: 1, Root: "/tmp/project", StartTime: end.Add(-time.Second), EndTime: &end, DurationMs: &durationMs, Parallel: true, Success: true, Ecosystems: 2},
	}

	outFile := filepath.Join(t.TempDir(), "runs.parquet")
	require.NoError(t, WriteBuildRunsParquet(ConvertRunRecords(records), outFile))

	info, err := os.Stat(outFile)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestConvertDependenciesVersionNullability(t *testing.T) {
	deps := []schema.Dependency{
		{Name: "requests", Version: "==2.31.0"},
		{Name: "uvicorn"},
	}

	rows := ConvertDependencies(deps)
	require.Len(t, rows, 2)
	require.NotNil(t, rows[0].Version)
	assert.Equal(t, "==2.31.0", *rows[0].Version)
	assert.Nil(t, rows[1].Version)
}
