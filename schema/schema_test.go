package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReportSuccess(t *testing.T) {
	tests := []struct {
		name    string
		results map[Ecosystem]*BuildResult
		want    bool
	}{
		{
			name:    "empty map succeeds",
			results: map[Ecosystem]*BuildResult{},
			want:    true,
		},
		{
			name: "all passing",
			results: map[Ecosystem]*BuildResult{
				PythonEcosystem:    {Ecosystem: PythonEcosystem, Success: true},
				TerraformEcosystem: {Ecosystem: TerraformEcosystem, Success: true},
			},
			want: true,
		},
		{
			name: "one failure fails the report",
			results: map[Ecosystem]*BuildResult{
				PythonEcosystem:    {Ecosystem: PythonEcosystem, Success: true},
				TerraformEcosystem: {Ecosystem: TerraformEcosystem, Success: false, Error: "exit status 1"},
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReportSuccess(tt.results))
		})
	}
}

func TestSortedEcosystems(t *testing.T) {
	results := map[Ecosystem]*BuildResult{
		TerraformEcosystem: {},
		PythonEcosystem:    {},
	}
	assert.Equal(t, []Ecosystem{PythonEcosystem, TerraformEcosystem}, SortedEcosystems(results))
}

func TestValidMaps(t *testing.T) {
	assert.Contains(t, ValidOutputModes, TextOut)
	assert.Contains(t, ValidOutputModes, ParquetOut)
	assert.Contains(t, ValidDatabaseBackends, SQLiteBackend)
	assert.Contains(t, ValidDatabaseBackends, NoneBackend)
	assert.NotContains(t, ValidDatabaseBackends, DatabaseBackend("oracle"))
}

func TestTotalLines(t *testing.T) {
	infos := []LanguageInfo{
		{Ecosystem: PythonEcosystem, LinesOfCode: 120},
		{Ecosystem: TerraformEcosystem, LinesOfCode: 30},
	}
	assert.Equal(t, 150, TotalLines(infos))
	assert.Equal(t, 0, TotalLines(nil))
}
