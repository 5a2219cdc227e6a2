package schema

// Custom string types for type safety.
type (
	// Ecosystem identifies a language/tooling domain recognized by the classifier.
	Ecosystem string

	// PackageManager identifies the tool/format a dependency declaration came from.
	PackageManager string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for persistence.
	DatabaseBackend string
)

// Built-in ecosystems. The classifier rule tables are keyed by these values;
// adding an ecosystem means adding table entries, not new code paths.
const (
	PythonEcosystem    Ecosystem = "python"
	TerraformEcosystem Ecosystem = "terraform"
)

// All package managers inferred from manifest filenames.
const (
	PipManager       PackageManager = "pip"
	PoetryManager    PackageManager = "poetry"
	PipenvManager    PackageManager = "pipenv"
	CondaManager     PackageManager = "conda"
	TerraformManager PackageManager = "terraform"
)

// All output modes supported.
const (
	TextOut    OutputMode = "text" // default
	CSVOut     OutputMode = "csv"
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All persistence backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// AllEcosystems returns the built-in ecosystems in stable (sorted) order.
var AllEcosystems = []Ecosystem{PythonEcosystem, TerraformEcosystem}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:    {},
	CSVOut:     {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid persistence backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}
