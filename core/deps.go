package core

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"polyscan/internal/contract"
	"polyscan/schema"
)

// manifestParser parses one manifest file's contents into declarations.
// Declarations keep source order; the extractor handles global ordering.
type manifestParser func(relPath string, data []byte) ([]schema.Dependency, error)

// manifestParsers maps manifest basenames to their parser.
var manifestParsers = map[string]manifestParser{
	"requirements.txt":     parseRequirementsTxt,
	"requirements-dev.txt": parseRequirementsTxt,
	"dev-requirements.txt": parseRequirementsTxt,
	"pyproject.toml":       parsePyprojectToml,
	"Pipfile":              parsePipfile,
	"environment.yml":      parseEnvironmentYml,
	"environment.yaml":     parseEnvironmentYml,
	".terraform.lock.hcl":  parseTerraformLock,
}

// AnalyzeDependencies walks the tree under root, finds every recognized
// manifest, and parses declared dependencies. A malformed manifest is skipped
// with a warning rather than failing the scan. Duplicate declarations across
// manifests are preserved; consumers can distinguish them by FilePath.
// Records come out grouped by ecosystem in the classifier's reported order,
// dominant ecosystem first.
func AnalyzeDependencies(ctx context.Context, root string) ([]schema.Dependency, error) {
	ctx, span := startSpan(ctx, "AnalyzeDependencies", root)
	defer span.End()

	info, err := os.Stat(root)
	if os.IsNotExist(err) {
		return []schema.Dependency{}, nil
	}
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	if !info.IsDir() {
		err := &fs.PathError{Op: "scan", Path: root, Err: fs.ErrInvalid}
		recordSpanError(span, err)
		return nil, err
	}

	infos, err := DetectLanguages(ctx, root)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	rank := make(map[schema.Ecosystem]int, len(infos))
	for i, li := range infos {
		rank[li.Ecosystem] = i
	}

	var deps []schema.Dependency

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
		if !d.Type().IsRegular() {
			return nil
		}

		base := d.Name()
		relPath := contract.NormalizeRelPath(root, path)

		if parser, ok := manifestParsers[base]; ok {
			data, readErr := os.ReadFile(path)
			if readErr != nil {
				contract.LogWarn("reading "+relPath, readErr)
				return nil
			}
			parsed, parseErr := parser(relPath, data)
			if parseErr != nil {
				contract.LogWarn("parsing "+relPath, parseErr)
				return nil
			}
			deps = append(deps, parsed...)
			return nil
		}

		// Terraform declares providers and modules inline in source files
		// rather than in a single manifest.
		if hasSuffixFold(base, ".tf") {
			data, readErr := os.ReadFile(path)
			if readErr != nil {
				contract.LogWarn("reading "+relPath, readErr)
				return nil
			}
			parsed, parseErr := parseTerraformSource(relPath, data)
			if parseErr != nil {
				contract.LogWarn("parsing "+relPath, parseErr)
				return nil
			}
			deps = append(deps, parsed...)
		}
		return nil
	})
	if walkErr != nil {
		recordSpanError(span, walkErr)
		return nil, walkErr
	}

	sortDependencies(deps, rank)
	depsExtracted.Add(ctx, int64(len(deps)))
	if deps == nil {
		deps = []schema.Dependency{}
	}
	return deps, nil
}

// sortDependencies orders records by the classifier's ecosystem rank
// (dominant ecosystem first), then manifest path, then the declaration order
// within that manifest. The in-file order is what the parsers emitted, so a
// stable sort preserves it. An ecosystem the classifier did not rank sorts
// after ranked ones, by name.
func sortDependencies(deps []schema.Dependency, rank map[schema.Ecosystem]int) {
	sort.SliceStable(deps, func(i, j int) bool {
		ri, iRanked := rank[deps[i].Language]
		rj, jRanked := rank[deps[j].Language]
		switch {
		case iRanked && jRanked && ri != rj:
			return ri < rj
		case iRanked != jRanked:
			return iRanked
		case !iRanked && deps[i].Language != deps[j].Language:
			return deps[i].Language < deps[j].Language
		}
		return deps[i].FilePath < deps[j].FilePath
	})
}

// sortedKeys returns map keys in sorted order. Parsers use it to make
// iteration over decoded TOML/YAML tables deterministic.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
