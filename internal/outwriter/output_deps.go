package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"polyscan/internal/contract"
	"polyscan/internal/parquet"
	"polyscan/schema"
)

// PrintDependencyResults outputs extractor results, dispatching based on the
// output format configured.
func PrintDependencyResults(deps []schema.Dependency, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeDependencyJSONResults(w, deps)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeDependencyCSVResults(w, deps)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return writeDependencyParquetResults(deps, cfg)
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeDependencyTable(deps, cfg, duration, w)
		}, "Wrote table")
	}
}

// writeDependencyTable generates and writes the human-readable table.
func writeDependencyTable(deps []schema.Dependency, cfg *contract.Config, duration time.Duration, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)
	table.Header([]string{"#", "Name", "Version", "Manager", "Language", "File"})

	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	maxPathWidth := getMaxTablePathWidth(cfg)

	var data [][]string
	for i, dep := range deps {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			dep.Name,
			dep.Version,
			string(dep.PackageManager),
			string(dep.Language),
			contract.TruncatePath(dep.FilePath, maxPathWidth),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(writer, "Found %d dependency declarations\n", len(deps)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Extraction completed in %v\n", duration); err != nil {
		return err
	}
	return nil
}

// writeDependencyCSVResults writes the extractor results in CSV format.
func writeDependencyCSVResults(w io.Writer, deps []schema.Dependency) error {
	header := []string{
		"name",
		"version",
		"package_manager",
		"language",
		"file_path",
	}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, dep := range deps {
			rec := []string{
				dep.Name,
				dep.Version,
				string(dep.PackageManager),
				string(dep.Language),
				dep.FilePath,
			}
			if err := csvWriter.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeDependencyJSONResults writes the extractor results in JSON format.
func writeDependencyJSONResults(w io.Writer, deps []schema.Dependency) error {
	return writeJSON(w, deps)
}

// writeDependencyParquetResults writes the extractor results to a Parquet file.
// Parquet is a binary columnar format, so an output file is mandatory.
func writeDependencyParquetResults(deps []schema.Dependency, cfg *contract.Config) error {
	if cfg.OutputFile == "" {
		return errors.New("--output-file is required for parquet output")
	}
	if err := parquet.WriteDependenciesParquet(parquet.ConvertDependencies(deps), cfg.OutputFile); err != nil {
		return fmt.Errorf("error writing Parquet output: %w", err)
	}
	fmt.Printf("Exported %d dependency declarations to: %s\n", len(deps), cfg.OutputFile)
	return nil
}
