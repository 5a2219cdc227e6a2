package contract

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// MaxOutputBytes caps the combined stdout/stderr captured per command.
// Anything past the ceiling is dropped and the output is suffixed with a
// truncation marker, so one noisy build cannot blow up report sizes.
const MaxOutputBytes = 64 * 1024

const truncationMarker = "\n... [output truncated]"

// KillGracePeriod is how long a timed-out process gets between SIGKILL being
// requested and Wait giving up on its I/O pipes.
const KillGracePeriod = 5 * time.Second

// LocalRunner implements the Runner interface by executing binaries installed
// on the machine.
type LocalRunner struct{}

var _ Runner = &LocalRunner{} // Compile-time check

// NewLocalRunner creates a new instance of the local process runner.
func NewLocalRunner() *LocalRunner {
	return &LocalRunner{}
}

// Run executes argv[0] with argv[1:] in cwd, bounded by timeout.
// The command inherits the parent environment. Output is combined
// stdout/stderr, truncated to MaxOutputBytes.
func (r *LocalRunner) Run(ctx context.Context, argv []string, cwd string, timeout time.Duration) (int, string, time.Duration, error) {
	if len(argv) == 0 {
		return -1, "", 0, errors.New("empty command")
	}

	// Resolve before spawning so a missing tool is a distinct failure from
	// a tool that ran and exited non-zero.
	binPath, err := exec.LookPath(argv[0])
	if err != nil {
		return -1, "", 0, fmt.Errorf("tool not available: %s", argv[0])
	}

	runCtx := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, binPath, argv[1:]...)
	cmd.Dir = cwd
	cmd.WaitDelay = KillGracePeriod

	start := time.Now()
	out, runErr := cmd.CombinedOutput()
	elapsed := time.Since(start)

	output := string(out)
	if len(output) > MaxOutputBytes {
		output = output[:MaxOutputBytes] + truncationMarker
	}

	if runCtx.Err() == context.DeadlineExceeded {
		return -1, output, elapsed, fmt.Errorf("timed out after %s", timeout)
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		return exitErr.ExitCode(), output, elapsed, nil
	}
	if runErr != nil {
		return -1, output, elapsed, fmt.Errorf("command %s failed to start: %w", strings.Join(argv, " "), runErr)
	}

	return 0, output, elapsed, nil
}
