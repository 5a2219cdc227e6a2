package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"polyscan/internal/contract"
	"polyscan/schema"
)

// PrintLanguageResults outputs classifier results, dispatching based on the
// output format configured.
func PrintLanguageResults(infos []schema.LanguageInfo, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeLanguageJSONResults(w, infos)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeLanguageCSVResults(w, infos)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is not supported for languages; use json, csv, or text")
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeLanguageTable(infos, cfg, duration, w)
		}, "Wrote table")
	}
}

// writeLanguageTable generates and writes the human-readable table.
func writeLanguageTable(infos []schema.LanguageInfo, cfg *contract.Config, duration time.Duration, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)
	table.Header([]string{"Ecosystem", "Files", "Lines", "Share", "Managers", "Config Files"})

	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	maxPathWidth := getMaxTablePathWidth(cfg)

	var data [][]string
	for _, info := range infos {
		configs := make([]string, len(info.ConfigFiles))
		for i, path := range info.ConfigFiles {
			configs[i] = contract.TruncatePath(path, maxPathWidth)
		}
		data = append(data, []string{
			string(info.Ecosystem),
			strconv.Itoa(info.FilesCount),
			strconv.Itoa(info.LinesOfCode),
			fmt.Sprintf("%.1f%%", info.Percentage),
			joinManagers(info.PackageManagers),
			strings.Join(configs, ", "),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(writer, "Detected %d ecosystems (total lines: %d)\n", len(infos), schema.TotalLines(infos)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Scan completed in %v. Cache backend: %s\n", duration, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}

// writeLanguageCSVResults writes the classifier results in CSV format.
func writeLanguageCSVResults(w io.Writer, infos []schema.LanguageInfo) error {
	header := []string{
		"ecosystem",
		"files_count",
		"lines_of_code",
		"percentage",
		"package_managers",
		"config_files",
	}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, info := range infos {
			rec := []string{
				string(info.Ecosystem),
				strconv.Itoa(info.FilesCount),
				strconv.Itoa(info.LinesOfCode),
				fmt.Sprintf("%.2f", info.Percentage),
				joinManagers(info.PackageManagers),
				strings.Join(info.ConfigFiles, "|"),
			}
			if err := csvWriter.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeLanguageJSONResults writes the classifier results in JSON format.
func writeLanguageJSONResults(w io.Writer, infos []schema.LanguageInfo) error {
	return writeJSON(w, infos)
}

// joinManagers renders a package manager list as a pipe-separated string.
func joinManagers(managers []schema.PackageManager) string {
	names := make([]string, len(managers))
	for i, m := range managers {
		names[i] = string(m)
	}
	return strings.Join(names, "|")
}
