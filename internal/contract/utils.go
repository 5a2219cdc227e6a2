package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// Build outcome label constants.
const (
	PassValue = "Pass" // successful build
	FailValue = "Fail" // failed build
	SkipValue = "Skip" // ecosystem not attempted
)

// Color variables for console output.
var (
	PassColor = color.New(color.FgGreen, color.Bold) // passColor represents success.
	FailColor = color.New(color.FgRed, color.Bold)   // failColor represents failure.
	SkipColor = color.New(color.FgYellow)            // skipColor represents an ecosystem that was not run.
)

// GetPlainLabel returns a plain text label for a build outcome. This is the
// core logic used for CSV, JSON, and table printing.
func GetPlainLabel(success bool) string {
	if success {
		return PassValue
	}
	return FailValue
}

// GetColorLabel returns a colored text label for console output (table).
// It uses GetPlainLabel to determine the string, and then applies the appropriate color.
func GetColorLabel(success bool) string {
	text := GetPlainLabel(success)
	if success {
		return PassColor.Sprint(text)
	}
	return FailColor.Sprint(text)
}

// GetSkipLabel returns the label for an ecosystem or run that was not
// attempted, colored for console output when useColors is set.
func GetSkipLabel(useColors bool) string {
	if useColors {
		return SkipColor.Sprint(SkipValue)
	}
	return SkipValue
}

// SelectOutputFile returns the appropriate file handle for output, based on
// the provided file path. An empty path means stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for scan cache storage.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".polyscan_cache.db"
	}
	return filepath.Join(homeDir, ".polyscan_cache.db")
}

// GetRunsDBFilePath returns the path to the SQLite DB file for run history storage.
func GetRunsDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".polyscan_runs.db"
	}
	return filepath.Join(homeDir, ".polyscan_runs.db")
}

// NormalizeRelPath converts a path under root into the root-relative,
// forward-slash form used in all reports and cache keys.
func NormalizeRelPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	return strings.ReplaceAll(rel, string(filepath.Separator), "/")
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 to ensure there's space for both the "..." prefix and at least one character of content.
// Without this check, small maxWidth values could cause slice bounds errors in the truncation calculation.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
