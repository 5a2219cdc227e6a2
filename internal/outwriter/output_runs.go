package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"polyscan/internal/contract"
	"polyscan/schema"
)

// runTimeFormat is the display format for run timestamps.
const runTimeFormat = "2006-01-02 15:04:05"

// PrintRunResults outputs build run history, dispatching based on the output
// format configured.
func PrintRunResults(runs []schema.RunRecord, results []schema.RunResultRecord, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRunJSONResults(w, runs, results)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRunCSVResults(w, runs)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is not supported here; use 'polyscan runs export'")
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRunTable(runs, results, cfg, w)
		}, "Wrote table")
	}
}

// writeRunTable generates and writes the human-readable run history table.
func writeRunTable(runs []schema.RunRecord, results []schema.RunResultRecord, cfg *contract.Config, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)
	table.Header([]string{"Run", "Root", "Started", "Duration", "Parallel", "Status", "Ecosystems"})

	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	maxPathWidth := getMaxTablePathWidth(cfg)

	// Group per-ecosystem outcomes by run for the detail column.
	outcomes := make(map[int64][]string, len(runs))
	for _, result := range results {
		label := string(result.Ecosystem) + ":" + contract.GetPlainLabel(result.Success)
		outcomes[result.RunID] = append(outcomes[result.RunID], label)
	}

	var data [][]string
	for _, run := range runs {
		status := contract.GetSkipLabel(cfg.UseColors)
		if run.EndTime != nil {
			status = buildLabel(run.Success, cfg)
		}
		duration := "-"
		if run.DurationMs != nil {
			duration = fmtSeconds(float64(*run.DurationMs) / 1000)
		}
		detail := strconv.Itoa(run.Ecosystems)
		if labels := outcomes[run.RunID]; len(labels) > 0 {
			detail = strings.Join(labels, ", ")
		}
		data = append(data, []string{
			strconv.FormatInt(run.RunID, 10),
			contract.TruncatePath(run.Root, maxPathWidth),
			run.StartTime.Format(runTimeFormat),
			duration,
			strconv.FormatBool(run.Parallel),
			status,
			detail,
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(writer, "Showing %d most recent runs\n", len(runs)); err != nil {
		return err
	}
	return nil
}

// writeRunCSVResults writes run history in CSV format.
func writeRunCSVResults(w io.Writer, runs []schema.RunRecord) error {
	header := []string{
		"run_id",
		"root",
		"start_time",
		"end_time",
		"duration_ms",
		"parallel",
		"success",
		"ecosystems",
	}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, run := range runs {
			endTime := ""
			if run.EndTime != nil {
				endTime = run.EndTime.Format(runTimeFormat)
			}
			duration := ""
			if run.DurationMs != nil {
				duration = strconv.FormatInt(*run.DurationMs, 10)
			}
			rec := []string{
				strconv.FormatInt(run.RunID, 10),
				run.Root,
				run.StartTime.Format(runTimeFormat),
				endTime,
				duration,
				strconv.FormatBool(run.Parallel),
				strconv.FormatBool(run.Success),
				strconv.Itoa(run.Ecosystems),
			}
			if err := csvWriter.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeRunJSONResults writes run history in JSON format.
func writeRunJSONResults(w io.Writer, runs []schema.RunRecord, results []schema.RunResultRecord) error {
	type runHistory struct {
		Runs    []schema.RunRecord       `json:"runs"`
		Results []schema.RunResultRecord `json:"results"`
	}
	return writeJSON(w, runHistory{Runs: runs, Results: results})
}
