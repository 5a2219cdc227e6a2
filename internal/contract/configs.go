package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"polyscan/schema"
)

// Default values for configuration.
const (
	DefaultBuildTimeout = 300 * time.Second
	MaxBuildTimeout     = 2 * time.Hour
	DefaultRunsLimit    = 25
	MaxRunsLimit        = 1000
	DefaultCacheTTL     = time.Hour
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for a scan or build.
// This struct remains the "final, validated" config.
type Config struct {
	Root       string // absolute path to the project root
	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)

	Parallel     bool
	BuildTimeout time.Duration
	Only         []schema.Ecosystem // restrict builds to these ecosystems; empty means all detected

	NoCache  bool
	CacheTTL time.Duration

	RunsLimit int

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	RunsBackend   schema.DatabaseBackend
	RunsDBConnect string // Please use env var as this is plaintext

	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	RootStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	Output         string `mapstructure:"output"`
	OutputFile     string `mapstructure:"output-file"`
	Width          int    `mapstructure:"width"`
	NoCache        bool   `mapstructure:"no-cache"`
	CacheTTL       string `mapstructure:"cache-ttl"`
	CacheBackend   string `mapstructure:"cache-backend"`
	CacheDBConnect string `mapstructure:"cache-db-connect"`
	RunsBackend    string `mapstructure:"runs-backend"`
	RunsDBConnect  string `mapstructure:"runs-db-connect"`
	Color          string `mapstructure:"color"`

	// --- Fields from buildCmd.Flags() ---
	Parallel     bool   `mapstructure:"parallel"`
	BuildTimeout string `mapstructure:"build-timeout"`
	Only         string `mapstructure:"only"`

	// --- Fields from runsStatusCmd.Flags() ---
	RunsLimit int `mapstructure:"runs-limit"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Only != nil {
		clone.Only = make([]schema.Ecosystem, len(c.Only))
		copy(clone.Only, c.Only)
	}
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processBuildInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := resolveRoot(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// validateSimpleInputs processes and validates all non-path related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.NoCache = input.NoCache

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}

	cfg.CacheTTL = DefaultCacheTTL
	if input.CacheTTL != "" {
		ttl, err := time.ParseDuration(input.CacheTTL)
		if err != nil {
			return fmt.Errorf("invalid --cache-ttl value '%s': %w", input.CacheTTL, err)
		}
		if ttl <= 0 {
			return fmt.Errorf("--cache-ttl must be positive (received %s)", ttl)
		}
		cfg.CacheTTL = ttl
	}

	cfg.RunsLimit = input.RunsLimit
	if cfg.RunsLimit == 0 {
		cfg.RunsLimit = DefaultRunsLimit
	}
	if cfg.RunsLimit < 0 || cfg.RunsLimit > MaxRunsLimit {
		return fmt.Errorf("runs-limit must be between 1 and %d (received %d)", MaxRunsLimit, input.RunsLimit)
	}

	return nil
}

// processBuildInputs handles orchestrator-specific flags.
func processBuildInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.Parallel = input.Parallel

	cfg.BuildTimeout = DefaultBuildTimeout
	if input.BuildTimeout != "" {
		d, err := time.ParseDuration(input.BuildTimeout)
		if err != nil {
			return fmt.Errorf("invalid --build-timeout value '%s': %w", input.BuildTimeout, err)
		}
		if d <= 0 || d > MaxBuildTimeout {
			return fmt.Errorf("--build-timeout must be between 1s and %s (received %s)", MaxBuildTimeout, d)
		}
		cfg.BuildTimeout = d
	}

	cfg.Only = nil
	if input.Only != "" {
		for part := range strings.SplitSeq(input.Only, ",") {
			name := schema.Ecosystem(strings.ToLower(strings.TrimSpace(part)))
			if name == "" {
				continue
			}
			known := false
			for _, eco := range schema.AllEcosystems {
				if eco == name {
					known = true
					break
				}
			}
			if !known {
				return fmt.Errorf("unknown ecosystem '%s'. must be one of python, terraform", name)
			}
			cfg.Only = append(cfg.Only, name)
		}
	}

	return nil
}

// validateBackendConfigs validates scan cache and run history backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	// An empty runs backend means run tracking is disabled.
	cfg.RunsBackend = schema.DatabaseBackend(strings.ToLower(input.RunsBackend))
	if cfg.RunsBackend == "" {
		cfg.RunsBackend = schema.NoneBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.RunsBackend]; !ok {
		return fmt.Errorf("invalid runs backend '%s'. must be sqlite, mysql, postgresql, none", input.RunsBackend)
	}
	cfg.RunsDBConnect = input.RunsDBConnect
	if err := ValidateDatabaseConnectionString(cfg.RunsBackend, cfg.RunsDBConnect); err != nil {
		return err
	}

	// Both stores on SQLite must not share one database file.
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.RunsBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = GetCacheDBFilePath()
		}
		runsDBPath := cfg.RunsDBConnect
		if runsDBPath == "" {
			runsDBPath = GetRunsDBFilePath()
		}
		if cacheDBPath == runsDBPath {
			return fmt.Errorf("cache and runs storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}

	return nil
}

// resolveRoot resolves the project root to an absolute, cleaned path. The path
// must exist and be a directory; a nonexistent root is allowed here because
// the classifier treats it as an empty project, but a root that exists and is
// a regular file is a hard error.
func resolveRoot(cfg *Config, input *ConfigRawInput) error {
	root := input.RootStr
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	absRoot = filepath.Clean(absRoot)

	info, statErr := os.Stat(absRoot)
	if statErr == nil && !info.IsDir() {
		return fmt.Errorf("project root is not a directory: %s", absRoot)
	}

	cfg.Root = absRoot
	return nil
}
