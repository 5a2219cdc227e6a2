package core

import (
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"polyscan/schema"
)

// pep508NameEnd marks characters that terminate a requirement name in a
// PEP 508 style declaration. Everything from the first of these onward is
// the version constraint (recorded verbatim).
const pep508NameEnd = "=<>!~;[ \t("

// parseRequirementsTxt parses pip requirements files line by line.
// Comments, blank lines, pip options (-r, --index-url, ...) and local/VCS
// references are skipped; only named requirements become records.
func parseRequirementsTxt(relPath string, data []byte) ([]schema.Dependency, error) {
	var deps []schema.Dependency
	for line := range strings.SplitSeq(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-") {
			continue
		}
		// Strip trailing comments and environment markers.
		if idx := strings.Index(line, "#"); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
		}
		if idx := strings.Index(line, ";"); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
		}
		if line == "" {
			continue
		}
		// Local paths and URL references carry no usable name.
		if strings.Contains(line, "://") || strings.HasPrefix(line, ".") || strings.HasPrefix(line, "/") {
			continue
		}

		name, version := splitRequirement(line)
		if name == "" {
			continue
		}
		deps = append(deps, schema.Dependency{
			Name:           name,
			Version:        version,
			PackageManager: schema.PipManager,
			Language:       schema.PythonEcosystem,
			FilePath:       relPath,
		})
	}
	return deps, nil
}

// splitRequirement splits a PEP 508 declaration into name and constraint.
// Extras like "uvicorn[standard]" are dropped from the name.
func splitRequirement(line string) (string, string) {
	nameEnd := strings.IndexAny(line, pep508NameEnd)
	if nameEnd < 0 {
		return strings.TrimSpace(line), ""
	}
	name := strings.TrimSpace(line[:nameEnd])
	rest := strings.TrimSpace(line[nameEnd:])
	// Drop an extras suffix, keeping any constraint after the bracket.
	if strings.HasPrefix(rest, "[") {
		if close := strings.Index(rest, "]"); close >= 0 {
			rest = strings.TrimSpace(rest[close+1:])
		} else {
			rest = ""
		}
	}
	return name, rest
}

// pyprojectFile models the subset of pyproject.toml we extract from: PEP 621
// project metadata plus Poetry's tool table.
type pyprojectFile struct {
	Project struct {
		Dependencies         []string            `toml:"dependencies"`
		OptionalDependencies map[string][]string `toml:"optional-dependencies"`
	} `toml:"project"`
	Tool struct {
		Poetry struct {
			Dependencies    map[string]any `toml:"dependencies"`
			DevDependencies map[string]any `toml:"dev-dependencies"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

// parsePyprojectToml extracts dependencies from both PEP 621 [project] tables
// and legacy [tool.poetry] tables. PEP 621 entries are attributed to pip,
// poetry-table entries to poetry.
func parsePyprojectToml(relPath string, data []byte) ([]schema.Dependency, error) {
	var file pyprojectFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid TOML: %w", err)
	}

	var deps []schema.Dependency
	addPEP621 := func(entries []string) {
		for _, entry := range entries {
			name, version := splitRequirement(strings.TrimSpace(entry))
			if name == "" {
				continue
			}
			deps = append(deps, schema.Dependency{
				Name:           name,
				Version:        version,
				PackageManager: schema.PipManager,
				Language:       schema.PythonEcosystem,
				FilePath:       relPath,
			})
		}
	}
	addPEP621(file.Project.Dependencies)
	for _, group := range sortedKeys(file.Project.OptionalDependencies) {
		addPEP621(file.Project.OptionalDependencies[group])
	}

	addPoetry := func(entries map[string]any) {
		for _, name := range sortedKeys(entries) {
			if strings.EqualFold(name, "python") {
				continue
			}
			deps = append(deps, schema.Dependency{
				Name:           name,
				Version:        poetryConstraint(entries[name]),
				PackageManager: schema.PoetryManager,
				Language:       schema.PythonEcosystem,
				FilePath:       relPath,
			})
		}
	}
	addPoetry(file.Tool.Poetry.Dependencies)
	addPoetry(file.Tool.Poetry.DevDependencies)

	return deps, nil
}

// poetryConstraint extracts the version constraint from a poetry dependency
// value, which is either a bare string or a table with a "version" key.
func poetryConstraint(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case map[string]any:
		if ver, ok := v["version"].(string); ok {
			return ver
		}
	}
	return ""
}

// pipfileFile models the Pipfile tables we extract from.
type pipfileFile struct {
	Packages    map[string]any `toml:"packages"`
	DevPackages map[string]any `toml:"dev-packages"`
}

// parsePipfile extracts [packages] and [dev-packages] from a Pipfile. The
// format is TOML; values are either constraint strings ("*" meaning any) or
// tables with a "version" key.
func parsePipfile(relPath string, data []byte) ([]schema.Dependency, error) {
	var file pipfileFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid TOML: %w", err)
	}

	var deps []schema.Dependency
	add := func(entries map[string]any) {
		for _, name := range sortedKeys(entries) {
			version := poetryConstraint(entries[name])
			if version == "*" {
				version = ""
			}
			deps = append(deps, schema.Dependency{
				Name:           name,
				Version:        version,
				PackageManager: schema.PipenvManager,
				Language:       schema.PythonEcosystem,
				FilePath:       relPath,
			})
		}
	}
	add(file.Packages)
	add(file.DevPackages)
	return deps, nil
}

// environmentFile models a conda environment.yml. Entries are either plain
// "name=version" strings or a nested map holding a pip requirement list.
type environmentFile struct {
	Dependencies []any `yaml:"dependencies"`
}

// parseEnvironmentYml extracts conda and nested pip dependencies from an
// environment.yml file.
func parseEnvironmentYml(relPath string, data []byte) ([]schema.Dependency, error) {
	var file environmentFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}

	var deps []schema.Dependency
	for _, entry := range file.Dependencies {
		switch v := entry.(type) {
		case string:
			name, version := splitCondaSpec(v)
			if name == "" {
				continue
			}
			deps = append(deps, schema.Dependency{
				Name:           name,
				Version:        version,
				PackageManager: schema.CondaManager,
				Language:       schema.PythonEcosystem,
				FilePath:       relPath,
			})
		case map[string]any:
			pipList, ok := v["pip"].([]any)
			if !ok {
				continue
			}
			for _, raw := range pipList {
				line, ok := raw.(string)
				if !ok {
					continue
				}
				name, version := splitRequirement(strings.TrimSpace(line))
				if name == "" {
					continue
				}
				deps = append(deps, schema.Dependency{
					Name:           name,
					Version:        version,
					PackageManager: schema.PipManager,
					Language:       schema.PythonEcosystem,
					FilePath:       relPath,
				})
			}
		}
	}
	return deps, nil
}

// splitCondaSpec splits conda's "name=version=build" form. A bare name has
// no constraint. Channel prefixes like "conda-forge::numpy" are stripped.
func splitCondaSpec(spec string) (string, string) {
	spec = strings.TrimSpace(spec)
	if idx := strings.Index(spec, "::"); idx >= 0 {
		spec = spec[idx+2:]
	}
	parts := strings.SplitN(spec, "=", 2)
	name := strings.TrimSpace(parts[0])
	if len(parts) == 1 {
		return name, ""
	}
	version := strings.TrimSpace(strings.Trim(parts[1], "="))
	// Drop a trailing build string ("1.21.0=py39...").
	if idx := strings.Index(version, "="); idx >= 0 {
		version = version[:idx]
	}
	return name, version
}
