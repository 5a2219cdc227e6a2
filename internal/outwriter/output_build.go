package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"polyscan/internal/contract"
	"polyscan/schema"
)

// PrintBuildResults outputs the orchestration report, dispatching based on the
// output format configured.
func PrintBuildResults(report *schema.BuildReport, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeBuildCSVResults(w, report)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is not supported for build reports; use 'polyscan runs export' for columnar history")
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeBuildTable(report, cfg, duration, w)
		}, "Wrote table")
	}
}

// writeBuildTable generates and writes the human-readable table.
func writeBuildTable(report *schema.BuildReport, cfg *contract.Config, duration time.Duration, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)
	table.Header([]string{"Ecosystem", "Status", "Duration", "Error"})

	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, eco := range schema.SortedEcosystems(report.Results) {
		result := report.Results[eco]
		data = append(data, []string{
			string(eco),
			buildLabel(result.Success, cfg),
			fmtSeconds(result.Duration),
			result.Error,
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(writer, "Overall: %s (%d ecosystems built)\n", buildLabel(report.Success, cfg), len(report.Results)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Orchestration completed in %v\n", duration); err != nil {
		return err
	}
	return nil
}

// writeBuildCSVResults writes the orchestration report in CSV format.
func writeBuildCSVResults(w io.Writer, report *schema.BuildReport) error {
	header := []string{
		"ecosystem",
		"status",
		"duration_seconds",
		"error",
	}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, eco := range schema.SortedEcosystems(report.Results) {
			result := report.Results[eco]
			rec := []string{
				string(eco),
				contract.GetPlainLabel(result.Success),
				fmt.Sprintf("%.3f", result.Duration),
				result.Error,
			}
			if err := csvWriter.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// buildLabel picks the colored or plain outcome label per config.
func buildLabel(success bool, cfg *contract.Config) string {
	if cfg.UseColors {
		return contract.GetColorLabel(success)
	}
	return contract.GetPlainLabel(success)
}
