package contract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polyscan/schema"
)

func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		RootStr:      ".",
		Output:       "text",
		Color:        "yes",
		CacheBackend: "none",
		RunsBackend:  "none",
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError bool
	}{
		{
			name:        "valid minimal config",
			mutate:      func(in *ConfigRawInput) {},
			expectError: false,
		},
		{
			name: "invalid output format",
			mutate: func(in *ConfigRawInput) {
				in.Output = "xml"
			},
			expectError: true,
		},
		{
			name: "invalid color value",
			mutate: func(in *ConfigRawInput) {
				in.Color = "maybe"
			},
			expectError: true,
		},
		{
			name: "invalid cache backend",
			mutate: func(in *ConfigRawInput) {
				in.CacheBackend = "oracle"
			},
			expectError: true,
		},
		{
			name: "mysql runs backend requires connection string",
			mutate: func(in *ConfigRawInput) {
				in.RunsBackend = "mysql"
			},
			expectError: true,
		},
		{
			name: "mysql runs backend with connection string",
			mutate: func(in *ConfigRawInput) {
				in.RunsBackend = "mysql"
				in.RunsDBConnect = "user:pass@tcp(localhost:3306)/polyscan"
			},
			expectError: false,
		},
		{
			name: "invalid build timeout",
			mutate: func(in *ConfigRawInput) {
				in.BuildTimeout = "soon"
			},
			expectError: true,
		},
		{
			name: "negative build timeout",
			mutate: func(in *ConfigRawInput) {
				in.BuildTimeout = "-5s"
			},
			expectError: true,
		},
		{
			name: "unknown ecosystem in only filter",
			mutate: func(in *ConfigRawInput) {
				in.Only = "python,cobol"
			},
			expectError: true,
		},
		{
			name: "valid only filter",
			mutate: func(in *ConfigRawInput) {
				in.Only = "python, terraform"
			},
			expectError: false,
		},
		{
			name: "runs limit over maximum",
			mutate: func(in *ConfigRawInput) {
				in.RunsLimit = MaxRunsLimit + 1
			},
			expectError: true,
		},
		{
			name: "invalid cache ttl",
			mutate: func(in *ConfigRawInput) {
				in.CacheTTL = "0s"
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(input)
			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProcessAndValidateDefaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, validInput()))

	assert.Equal(t, DefaultBuildTimeout, cfg.BuildTimeout)
	assert.Equal(t, DefaultCacheTTL, cfg.CacheTTL)
	assert.Equal(t, DefaultRunsLimit, cfg.RunsLimit)
	assert.Equal(t, schema.TextOut, cfg.Output)
	assert.True(t, cfg.UseColors)
	assert.Empty(t, cfg.Only)
	assert.True(t, len(cfg.Root) > 0, "root should resolve to an absolute path")
}

func TestProcessAndValidateOnlyFilter(t *testing.T) {
	input := validInput()
	input.Only = "terraform"
	input.BuildTimeout = "90s"
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, []schema.Ecosystem{schema.TerraformEcosystem}, cfg.Only)
	assert.Equal(t, 90*time.Second, cfg.BuildTimeout)
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{
		Root: "/tmp/project",
		Only: []schema.Ecosystem{schema.PythonEcosystem},
	}
	clone := cfg.Clone()
	clone.Only[0] = schema.TerraformEcosystem

	assert.Equal(t, schema.PythonEcosystem, cfg.Only[0], "clone must not share the Only slice")
	assert.Equal(t, cfg.Root, clone.Root)
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name        string
		backend     schema.DatabaseBackend
		connStr     string
		expectError bool
	}{
		{"sqlite allows empty", schema.SQLiteBackend, "", false},
		{"none allows empty", schema.NoneBackend, "", false},
		{"mysql requires tcp host", schema.MySQLBackend, "user:pass@localhost/db", true},
		{"mysql valid", schema.MySQLBackend, "user:pass@tcp(localhost:3306)/db", false},
		{"postgres requires host", schema.PostgreSQLBackend, "dbname=polyscan", true},
		{"postgres valid", schema.PostgreSQLBackend, "host=localhost dbname=polyscan", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.connStr)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSharedSQLiteFileRejected(t *testing.T) {
	input := validInput()
	input.CacheBackend = "sqlite"
	input.RunsBackend = "sqlite"
	input.CacheDBConnect = "/tmp/polyscan.db"
	input.RunsDBConnect = "/tmp/polyscan.db"
	err := ProcessAndValidate(&Config{}, input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "different SQLite database files")
}
