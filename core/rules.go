package core

import "polyscan/schema"

// The classifier is table-driven: filename rules are consulted first, then
// extension rules, first match wins. Growing the tool to a new ecosystem
// means appending rows here and (for builds) in buildCommands.

// skipDirNames are directory basenames pruned during traversal, wherever they
// appear in the tree. Symlinked directories are never descended into.
var skipDirNames = map[string]struct{}{
	".git":          {},
	".hg":           {},
	".svn":          {},
	"node_modules":  {},
	"vendor":        {},
	".venv":         {},
	"venv":          {},
	"env":           {},
	"__pycache__":   {},
	".terraform":    {},
	".tox":          {},
	".mypy_cache":   {},
	".pytest_cache": {},
	"dist":          {},
	"build":         {},
	"target":        {},
	".idea":         {},
	".vscode":       {},
	"site-packages": {},
	".eggs":         {},
}

// filenameRules map exact basenames to an ecosystem. These take precedence
// over extension rules so that e.g. a Python manifest named with no extension
// still classifies.
var filenameRules = map[string]schema.Ecosystem{
	"requirements.txt":     schema.PythonEcosystem,
	"requirements-dev.txt": schema.PythonEcosystem,
	"dev-requirements.txt": schema.PythonEcosystem,
	"pyproject.toml":       schema.PythonEcosystem,
	"setup.py":             schema.PythonEcosystem,
	"setup.cfg":            schema.PythonEcosystem,
	"Pipfile":              schema.PythonEcosystem,
	"Pipfile.lock":         schema.PythonEcosystem,
	"environment.yml":      schema.PythonEcosystem,
	"environment.yaml":     schema.PythonEcosystem,
	"tox.ini":              schema.PythonEcosystem,
	".terraform.lock.hcl":  schema.TerraformEcosystem,
	"terraform.tfstate":    schema.TerraformEcosystem,
}

// extensionRules map file extensions (lowercased, with leading dot) to an
// ecosystem. Matching runs on the longest recognized suffix first so that
// "main.tf.json" hits the terraform rule rather than generic JSON.
var extensionRules = map[string]schema.Ecosystem{
	".py":      schema.PythonEcosystem,
	".pyi":     schema.PythonEcosystem,
	".pyw":     schema.PythonEcosystem,
	".tf":      schema.TerraformEcosystem,
	".tfvars":  schema.TerraformEcosystem,
	".tf.json": schema.TerraformEcosystem,
}

// multiDotExtensions are recognized suffixes containing more than one dot,
// checked before the plain filepath.Ext result.
var multiDotExtensions = []string{".tf.json"}

// configFileNames marks which classified basenames count as config/manifest
// files for LanguageInfo.ConfigFiles reporting.
var configFileNames = map[string]struct{}{
	"requirements.txt":     {},
	"requirements-dev.txt": {},
	"dev-requirements.txt": {},
	"pyproject.toml":       {},
	"setup.py":             {},
	"setup.cfg":            {},
	"Pipfile":              {},
	"Pipfile.lock":         {},
	"environment.yml":      {},
	"environment.yaml":     {},
	"tox.ini":              {},
	".terraform.lock.hcl":  {},
}

// managerRules infer a package manager from a manifest basename.
var managerRules = map[string]schema.PackageManager{
	"requirements.txt":     schema.PipManager,
	"requirements-dev.txt": schema.PipManager,
	"dev-requirements.txt": schema.PipManager,
	"setup.py":             schema.PipManager,
	"setup.cfg":            schema.PipManager,
	"pyproject.toml":       schema.PoetryManager,
	"Pipfile":              schema.PipenvManager,
	"Pipfile.lock":         schema.PipenvManager,
	"environment.yml":      schema.CondaManager,
	"environment.yaml":     schema.CondaManager,
	".terraform.lock.hcl":  schema.TerraformManager,
}

// managerSuffixRules infer a package manager from a file suffix. Terraform
// has no single manifest filename; any source file implies the tool.
var managerSuffixRules = map[string]schema.PackageManager{
	".tf":      schema.TerraformManager,
	".tf.json": schema.TerraformManager,
}

// classifyName resolves an ecosystem for one basename, filename rules first,
// then extensions. ok is false when the file is unrecognized.
func classifyName(base string) (schema.Ecosystem, bool) {
	if eco, ok := filenameRules[base]; ok {
		return eco, true
	}
	for _, suffix := range multiDotExtensions {
		if hasSuffixFold(base, suffix) {
			return extensionRules[suffix], true
		}
	}
	if ext := lowerExt(base); ext != "" {
		if eco, ok := extensionRules[ext]; ok {
			return eco, true
		}
	}
	return "", false
}
