package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polyscan/schema"
)

// writeFile creates a file under dir, making parent directories as needed.
func writeFile(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDetectLanguagesMixedProject(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app.py", "import os\n\nprint('hi')\n")
	writeFile(t, root, "requirements.txt", "flask==2.0\nrequests\n")
	writeFile(t, root, "main.tf", "resource \"null_resource\" \"a\" {}\n")
	writeFile(t, root, "README.md", "# readme\n")
	writeFile(t, root, "node_modules/ignored.py", "print('skipped')\n")
	writeFile(t, root, ".git/config.py", "print('skipped')\n")

	infos, err := DetectLanguages(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, infos, 2)

	// Python dominates by lines, so it leads the report.
	py := infos[0]
	assert.Equal(t, schema.PythonEcosystem, py.Ecosystem)
	assert.Equal(t, 2, py.FilesCount)
	assert.Equal(t, 4, py.LinesOfCode)
	assert.InDelta(t, 80.0, py.Percentage, 0.01)
	assert.Equal(t, []string{"requirements.txt"}, py.ConfigFiles)
	assert.Equal(t, []schema.PackageManager{schema.PipManager}, py.PackageManagers)

	tf := infos[1]
	assert.Equal(t, schema.TerraformEcosystem, tf.Ecosystem)
	assert.Equal(t, 1, tf.FilesCount)
	assert.Equal(t, 1, tf.LinesOfCode)
	assert.InDelta(t, 20.0, tf.Percentage, 0.01)
}

func TestDetectLanguagesDeterministic(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app.py", "import os\n\nprint('hi')\n")
	writeFile(t, root, "lib/util.py", "def f():\n    return 1\n")
	writeFile(t, root, "requirements.txt", "flask==2.0\n")
	writeFile(t, root, "infra/main.tf", "resource \"null_resource\" \"a\" {}\n")
	writeFile(t, root, "infra/vars.tfvars", "region = \"eu-west-1\"\n")

	first, err := DetectLanguages(context.Background(), root)
	require.NoError(t, err)
	second, err := DetectLanguages(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, first, second, "an unchanged tree must classify identically")
}

func TestDetectLanguagesTerraformManagerFromSource(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "main.tf", "resource \"null_resource\" \"a\" {}\n")

	infos, err := DetectLanguages(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, []schema.PackageManager{schema.TerraformManager}, infos[0].PackageManagers,
		"a .tf source file implies the terraform tool even without a lock file")
}

func TestDetectLanguagesSkipsVendoredTrees(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app.py", "print('hi')\n")
	writeFile(t, root, "vendor/dep/dep.py", "print('vendored')\n")
	writeFile(t, root, "env/lib/site.py", "print('venv')\n")
	writeFile(t, root, "lib/site-packages/flask/app.py", "print('installed')\n")
	writeFile(t, root, ".eggs/pkg/setup.py", "print('egg')\n")
	writeFile(t, root, "target/out.py", "print('built')\n")

	infos, err := DetectLanguages(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, 1, infos[0].FilesCount, "vendored and generated trees are not first-party code")
	assert.Equal(t, 1, infos[0].LinesOfCode)
}

func TestDetectLanguagesNonexistentRoot(t *testing.T) {
	infos, err := DetectLanguages(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.Empty(t, infos)
}

func TestDetectLanguagesRootIsFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "file.py", "pass\n")
	_, err := DetectLanguages(context.Background(), filepath.Join(root, "file.py"))
	assert.Error(t, err)
}

func TestDetectLanguagesEmptyProject(t *testing.T) {
	infos, err := DetectLanguages(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, infos)
}

func TestDetectLanguagesBinaryFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "frozen.py"), []byte("abc\x00def\nghi\n"), 0o644))

	infos, err := DetectLanguages(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, 1, infos[0].FilesCount)
	assert.Equal(t, 0, infos[0].LinesOfCode, "binary content must not count lines")
}

func TestDetectLanguagesNestedConfigFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "services/api/pyproject.toml", "[project]\nname = \"api\"\n")
	writeFile(t, root, "infra/.terraform.lock.hcl", "provider \"registry.terraform.io/hashicorp/aws\" {\n  version = \"5.0.0\"\n}\n")

	infos, err := DetectLanguages(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, infos, 2)

	byEco := map[schema.Ecosystem]schema.LanguageInfo{}
	for _, info := range infos {
		byEco[info.Ecosystem] = info
	}
	assert.Equal(t, []string{"services/api/pyproject.toml"}, byEco[schema.PythonEcosystem].ConfigFiles)
	assert.Equal(t, []schema.PackageManager{schema.PoetryManager}, byEco[schema.PythonEcosystem].PackageManagers)
	assert.Equal(t, []string{"infra/.terraform.lock.hcl"}, byEco[schema.TerraformEcosystem].ConfigFiles)
}

func TestClassifyName(t *testing.T) {
	tests := []struct {
		base string
		eco  schema.Ecosystem
		ok   bool
	}{
		{"main.py", schema.PythonEcosystem, true},
		{"types.pyi", schema.PythonEcosystem, true},
		{"dev-requirements.txt", schema.PythonEcosystem, true},
		{"gui.pyw", schema.PythonEcosystem, true},
		{"Pipfile", schema.PythonEcosystem, true},
		{"environment.yaml", schema.PythonEcosystem, true},
		{"main.tf", schema.TerraformEcosystem, true},
		{"vars.tfvars", schema.TerraformEcosystem, true},
		{"main.tf.json", schema.TerraformEcosystem, true},
		{"MAIN.TF", schema.TerraformEcosystem, true},
		{".terraform.lock.hcl", schema.TerraformEcosystem, true},
		{"README.md", "", false},
		{"config.json", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			eco, ok := classifyName(tt.base)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.eco, eco)
			}
		})
	}
}

func TestCountSourceLines(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "sample.py", "a = 1\n\n   \nb = 2\n# comment\n")

	lines, err := countSourceLines(filepath.Join(root, "sample.py"))
	require.NoError(t, err)
	assert.Equal(t, 3, lines, "blank and whitespace-only lines do not count")
}
