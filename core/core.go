// Package core has core logic for ecosystem classification, dependency
// extraction and build orchestration.
package core

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"polyscan/internal/contract"
	"polyscan/internal/outwriter"
	"polyscan/schema"
)

const instrumentationName = "polyscan/core"

// Telemetry rides on the global OpenTelemetry providers. Without a configured
// SDK these are no-ops, so the engine carries zero observability cost by
// default and callers opt in by installing providers.
var (
	tracer = otel.Tracer(instrumentationName)
	meter  = otel.Meter(instrumentationName)

	filesScanned  metric.Int64Counter
	depsExtracted metric.Int64Counter
	buildsStarted metric.Int64Counter
	buildsFailed  metric.Int64Counter
)

func init() {
	filesScanned, _ = meter.Int64Counter("polyscan.files.scanned",
		metric.WithDescription("Number of files visited by the classifier"))
	depsExtracted, _ = meter.Int64Counter("polyscan.dependencies.extracted",
		metric.WithDescription("Number of dependency declarations parsed from manifests"))
	buildsStarted, _ = meter.Int64Counter("polyscan.builds.started",
		metric.WithDescription("Number of ecosystem build attempts started"))
	buildsFailed, _ = meter.Int64Counter("polyscan.builds.failed",
		metric.WithDescription("Number of ecosystem build attempts that failed"))
}

// ExecutorFunc defines the function signature for executing different commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// ExecuteLanguages runs the ecosystem classifier and prints results.
// It serves as the main entry point for the 'languages' command.
func ExecuteLanguages(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	infos, err := CachedDetectLanguages(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.PrintLanguageResults(infos, cfg, duration)
}

// ExecuteDependencies runs the classifier plus the dependency extractor and
// prints results. It serves as the main entry point for the 'deps' command.
func ExecuteDependencies(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	deps, err := AnalyzeDependencies(ctx, cfg.Root)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.PrintDependencyResults(deps, cfg, duration)
}

// ExecuteBuild runs the build orchestrator against all detected ecosystems,
// records the run in the run store, and prints the report. It returns the
// report so the CLI can derive its exit code from the aggregate outcome.
// It serves as the main entry point for the 'build' command.
func ExecuteBuild(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*schema.BuildReport, error) {
	start := time.Now()
	opts := BuildOptions{
		Parallel: cfg.Parallel,
		Timeout:  cfg.BuildTimeout,
		Only:     cfg.Only,
	}

	var runID int64
	runs := mgr.GetRunStore()
	if runs != nil {
		var err error
		runID, err = runs.BeginRun(cfg.Root, start, cfg.Parallel)
		if err != nil {
			contract.LogWarn("recording run start", err)
			runID = 0
		}
	}

	report, err := RunBuilds(ctx, cfg.Root, opts)
	if err != nil {
		return nil, err
	}

	if runs != nil && runID != 0 {
		for _, eco := range schema.SortedEcosystems(report.Results) {
			if recErr := runs.RecordResult(runID, report.Results[eco]); recErr != nil {
				contract.LogWarn("recording run result", recErr)
			}
		}
		if endErr := runs.EndRun(runID, time.Now(), report.Success, len(report.Results)); endErr != nil {
			contract.LogWarn("recording run end", endErr)
		}
	}

	duration := time.Since(start)
	if err := outwriter.PrintBuildResults(report, cfg, duration); err != nil {
		return nil, err
	}
	return report, nil
}

func startSpan(ctx context.Context, name, root string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attribute.String("polyscan.root", root)))
}

// recordSpanError marks an entry-point span failed before its error return.
func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
