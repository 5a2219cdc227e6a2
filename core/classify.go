package core

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"polyscan/internal/contract"
	"polyscan/schema"
)

// binarySniffLen is how many leading bytes are inspected for a NUL byte when
// deciding whether a classified file is binary. Binary files count toward
// FilesCount but contribute zero lines.
const binarySniffLen = 8 * 1024

// ecosystemAccum collects per-ecosystem tallies during the walk.
type ecosystemAccum struct {
	files       int
	lines       int
	configFiles []string
	managers    map[schema.PackageManager]struct{}
}

// DetectLanguages walks the tree under root and classifies every regular file
// against the rule tables. Unreadable files are skipped with a warning and do
// not abort the scan. A nonexistent root yields an empty result; a root that
// is a regular file is an error.
func DetectLanguages(ctx context.Context, root string) ([]schema.LanguageInfo, error) {
	ctx, span := startSpan(ctx, "DetectLanguages", root)
	defer span.End()

	info, err := os.Stat(root)
	if os.IsNotExist(err) {
		return []schema.LanguageInfo{}, nil
	}
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	if !info.IsDir() {
		err := fmt.Errorf("project root is not a directory: %s", root)
		recordSpanError(span, err)
		return nil, err
	}

	accums := make(map[schema.Ecosystem]*ecosystemAccum)

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			contract.LogWarn("scanning "+path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path == root {
				return nil
			}
			if _, skip := skipDirNames[d.Name()]; skip {
				return filepath.SkipDir
			}
			return nil
		}
		// Symlinks are never followed; WalkDir reports them as non-dir
		// entries with the symlink mode bit set.
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		filesScanned.Add(ctx, 1)

		base := d.Name()
		eco, ok := classifyName(base)
		if !ok {
			return nil
		}

		acc := accums[eco]
		if acc == nil {
			acc = &ecosystemAccum{managers: make(map[schema.PackageManager]struct{})}
			accums[eco] = acc
		}
		acc.files++

		relPath := contract.NormalizeRelPath(root, path)
		if _, isConfig := configFileNames[base]; isConfig {
			acc.configFiles = append(acc.configFiles, relPath)
		}
		if mgr, ok := managerRules[base]; ok {
			acc.managers[mgr] = struct{}{}
		} else {
			for suffix, mgr := range managerSuffixRules {
				if hasSuffixFold(base, suffix) {
					acc.managers[mgr] = struct{}{}
					break
				}
			}
		}

		lines, err := countSourceLines(path)
		if err != nil {
			contract.LogWarn("reading "+relPath, err)
			return nil
		}
		acc.lines += lines
		return nil
	})
	if walkErr != nil {
		recordSpanError(span, walkErr)
		return nil, walkErr
	}

	return assembleLanguageInfos(accums), nil
}

// assembleLanguageInfos converts walk tallies into the sorted report slice
// and computes each ecosystem's percentage of total classified lines.
func assembleLanguageInfos(accums map[schema.Ecosystem]*ecosystemAccum) []schema.LanguageInfo {
	totalLines := 0
	for _, acc := range accums {
		totalLines += acc.lines
	}

	infos := make([]schema.LanguageInfo, 0, len(accums))
	for eco, acc := range accums {
		pct := 0.0
		if totalLines > 0 {
			pct = float64(acc.lines) / float64(totalLines) * 100
		}
		sort.Strings(acc.configFiles)

		managers := make([]schema.PackageManager, 0, len(acc.managers))
		for m := range acc.managers {
			managers = append(managers, m)
		}
		sort.Slice(managers, func(i, j int) bool { return managers[i] < managers[j] })

		infos = append(infos, schema.LanguageInfo{
			Ecosystem:       eco,
			FilesCount:      acc.files,
			LinesOfCode:     acc.lines,
			Percentage:      pct,
			ConfigFiles:     acc.configFiles,
			PackageManagers: managers,
		})
	}

	// Sort by lines descending, ecosystem name as tiebreaker, so the
	// dominant ecosystem always leads the report.
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].LinesOfCode != infos[j].LinesOfCode {
			return infos[i].LinesOfCode > infos[j].LinesOfCode
		}
		return infos[i].Ecosystem < infos[j].Ecosystem
	})
	return infos
}

// countSourceLines counts non-empty lines in a classified file. A file whose
// leading bytes contain a NUL is treated as binary and counts zero lines.
func countSourceLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	head := make([]byte, binarySniffLen)
	n, err := f.Read(head)
	if err != nil && err != io.EOF {
		return 0, err
	}
	head = head[:n]
	if bytes.IndexByte(head, 0) >= 0 {
		return 0, nil
	}

	lines := 0
	scanner := bufio.NewScanner(io.MultiReader(bytes.NewReader(head), f))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) != "" {
			lines++
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}
	return lines, nil
}

// lowerExt returns the lowercased filepath extension of a basename.
func lowerExt(base string) string {
	return strings.ToLower(filepath.Ext(base))
}

// hasSuffixFold reports whether base ends with suffix, case-insensitively.
func hasSuffixFold(base, suffix string) bool {
	return len(base) >= len(suffix) && strings.EqualFold(base[len(base)-len(suffix):], suffix)
}
