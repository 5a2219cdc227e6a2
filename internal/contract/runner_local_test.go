package contract

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalRunnerEmptyCommand(t *testing.T) {
	r := NewLocalRunner()
	_, _, _, err := r.Run(context.Background(), nil, t.TempDir(), time.Second)
	assert.Error(t, err)
}

func TestLocalRunnerMissingTool(t *testing.T) {
	r := NewLocalRunner()
	_, _, _, err := r.Run(context.Background(), []string{"definitely-not-a-real-binary-xyz"}, t.TempDir(), time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tool not available")
}

func TestLocalRunnerSuccess(t *testing.T) {
	r := NewLocalRunner()
	code, out, elapsed, err := r.Run(context.Background(), []string{"sh", "-c", "echo hello"}, t.TempDir(), 10*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "hello")
	assert.GreaterOrEqual(t, elapsed, time.Duration(0))
}

func TestLocalRunnerNonZeroExit(t *testing.T) {
	r := NewLocalRunner()
	code, _, _, err := r.Run(context.Background(), []string{"sh", "-c", "exit 3"}, t.TempDir(), 10*time.Second)
	require.NoError(t, err, "a non-zero exit is an outcome, not an error")
	assert.Equal(t, 3, code)
}

func TestLocalRunnerTimeout(t *testing.T) {
	r := NewLocalRunner()
	_, _, _, err := r.Run(context.Background(), []string{"sh", "-c", "sleep 5"}, t.TempDir(), 100*time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}
