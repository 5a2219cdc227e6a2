package contract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetPlainLabel(t *testing.T) {
	assert.Equal(t, PassValue, GetPlainLabel(true))
	assert.Equal(t, FailValue, GetPlainLabel(false))
}

func TestGetColorLabel(t *testing.T) {
	assert.Contains(t, GetColorLabel(true), PassValue)
	assert.Contains(t, GetColorLabel(false), FailValue)
}

func TestGetSkipLabel(t *testing.T) {
	assert.Equal(t, SkipValue, GetSkipLabel(false))
	assert.Contains(t, GetSkipLabel(true), SkipValue)
}

func TestNormalizeRelPath(t *testing.T) {
	tests := []struct {
		name     string
		root     string
		path     string
		expected string
	}{
		{"direct child", "/proj", "/proj/main.py", "main.py"},
		{"nested child", "/proj", "/proj/src/app/api.py", "src/app/api.py"},
		{"root itself", "/proj", "/proj", "."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeRelPath(tt.root, tt.path))
		})
	}
}

func TestTruncatePath(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		maxWidth int
		expected string
	}{
		{"short path unchanged", "a/b.py", 20, "a/b.py"},
		{"long path truncated", "very/long/path/to/some/file.py", 15, "...some/file.py"},
		{"tiny width unchanged", "very/long/path.py", 3, "very/long/path.py"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TruncatePath(tt.path, tt.maxWidth))
		})
	}
}

func TestParseBoolString(t *testing.T) {
	tests := []struct {
		input       string
		expected    bool
		expectError bool
	}{
		{"yes", true, false},
		{"TRUE", true, false},
		{"1", true, false},
		{"no", false, false},
		{"False", false, false},
		{"0", false, false},
		{"maybe", false, true},
		{"", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseBoolString(tt.input)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, got)
			}
		})
	}
}
