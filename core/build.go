package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"polyscan/internal/contract"
	"polyscan/schema"
)

// buildCommand is one ecosystem's build/validate invocation. Argv is a fixed
// vector; nothing from the scanned project is ever interpolated into it.
type buildCommand struct {
	argv []string
}

// buildCommands maps each ecosystem to its build step. The working directory
// is always the project root.
var buildCommands = map[schema.Ecosystem]buildCommand{
	schema.PythonEcosystem:    {argv: []string{"python3", "-m", "pip", "install", "-r", "requirements.txt"}},
	schema.TerraformEcosystem: {argv: []string{"terraform", "validate", "-no-color"}},
}

// BuildOptions controls one orchestration pass.
type BuildOptions struct {
	Parallel bool

	// Timeout is the per-ecosystem ceiling; 0 means contract.DefaultBuildTimeout.
	Timeout time.Duration

	// Only restricts builds to these ecosystems; empty means all detected.
	Only []schema.Ecosystem

	// Runner executes build commands; nil means contract.NewLocalRunner().
	Runner contract.Runner

	// Commands overrides the built-in command table, for tests.
	Commands map[schema.Ecosystem]buildCommand
}

// RunBuilds detects which ecosystems are present under root and executes each
// one's build step. Failures are isolated: one ecosystem failing never stops
// the others, and the error surface is the report, not the returned error.
// The returned error covers only environmental problems (unreadable root).
func RunBuilds(ctx context.Context, root string, opts BuildOptions) (*schema.BuildReport, error) {
	ctx, span := startSpan(ctx, "RunBuilds", root)
	defer span.End()

	infos, err := DetectLanguages(ctx, root)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}

	targets := selectTargets(infos, opts.Only)

	runner := opts.Runner
	if runner == nil {
		runner = contract.NewLocalRunner()
	}
	commands := opts.Commands
	if commands == nil {
		commands = buildCommands
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = contract.DefaultBuildTimeout
	}

	start := time.Now()
	results := make(map[schema.Ecosystem]*schema.BuildResult, len(targets))

	if opts.Parallel {
		var mu sync.Mutex
		var wg sync.WaitGroup
		// Concurrency is capped at the host's logical CPU count.
		sem := make(chan struct{}, contract.DefaultWorkers)
		for _, eco := range targets {
			wg.Add(1)
			go func(eco schema.Ecosystem) {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()
				res := runOneBuild(ctx, runner, eco, commands[eco], root, timeout)
				mu.Lock()
				results[eco] = res
				mu.Unlock()
			}(eco)
		}
		wg.Wait()
	} else {
		for _, eco := range targets {
			results[eco] = runOneBuild(ctx, runner, eco, commands[eco], root, timeout)
		}
	}

	report := &schema.BuildReport{
		Success: schema.ReportSuccess(results),
		Results: results,
		Summary: schema.BuildSummary{Duration: time.Since(start).Seconds()},
	}
	span.SetAttributes(attribute.Bool("polyscan.build.success", report.Success))
	return report, nil
}

// selectTargets picks the ecosystems to build: every detected ecosystem that
// has a build command, optionally narrowed by an Only filter. Detection order
// is preserved (dominant ecosystem first).
func selectTargets(infos []schema.LanguageInfo, only []schema.Ecosystem) []schema.Ecosystem {
	allowed := map[schema.Ecosystem]struct{}{}
	for _, eco := range only {
		allowed[eco] = struct{}{}
	}

	var targets []schema.Ecosystem
	for _, info := range infos {
		if _, ok := buildCommands[info.Ecosystem]; !ok {
			continue
		}
		if len(allowed) > 0 {
			if _, ok := allowed[info.Ecosystem]; !ok {
				continue
			}
		}
		targets = append(targets, info.Ecosystem)
	}
	return targets
}

// runOneBuild executes one ecosystem's build step and folds every failure
// mode (missing tool, timeout, non-zero exit) into the result record.
func runOneBuild(ctx context.Context, runner contract.Runner, eco schema.Ecosystem, cmd buildCommand, root string, timeout time.Duration) *schema.BuildResult {
	ctx, span := tracer.Start(ctx, "build",
		trace.WithAttributes(attribute.String("polyscan.ecosystem", string(eco))))
	defer span.End()
	buildsStarted.Add(ctx, 1, metric.WithAttributes(attribute.String("ecosystem", string(eco))))

	result := &schema.BuildResult{Ecosystem: eco}

	exitCode, output, elapsed, err := runner.Run(ctx, cmd.argv, root, timeout)
	result.Duration = elapsed.Seconds()
	result.Output = output

	switch {
	case err != nil:
		result.Error = err.Error()
	case exitCode != 0:
		result.Error = fmt.Sprintf("exit status %d", exitCode)
	default:
		result.Success = true
	}

	if !result.Success {
		buildsFailed.Add(ctx, 1, metric.WithAttributes(attribute.String("ecosystem", string(eco))))
	}
	return result
}
