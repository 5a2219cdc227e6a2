package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polyscan/schema"
)

func TestParseRequirementsTxt(t *testing.T) {
	data := []byte(`# web stack
flask==2.3.2
requests>=2.28,<3
uvicorn[standard]>=0.20
numpy

-r base.txt
--index-url https://pypi.example.com/simple
git+https://github.com/org/pkg.git
./local-package
pytest ; python_version >= "3.8"
django==4.2  # pinned for LTS
`)

	deps, err := parseRequirementsTxt("requirements.txt", data)
	require.NoError(t, err)

	names := make([]string, len(deps))
	for i, d := range deps {
		names[i] = d.Name
	}
	assert.Equal(t, []string{"flask", "requests", "uvicorn", "numpy", "pytest", "django"}, names)

	byName := map[string]schema.Dependency{}
	for _, d := range deps {
		byName[d.Name] = d
	}
	assert.Equal(t, "==2.3.2", byName["flask"].Version)
	assert.Equal(t, ">=2.28,<3", byName["requests"].Version)
	assert.Equal(t, ">=0.20", byName["uvicorn"].Version, "extras are dropped from the name, constraint kept")
	assert.Equal(t, "", byName["numpy"].Version)
	assert.Equal(t, "", byName["pytest"].Version, "environment markers are stripped")
	assert.Equal(t, "==4.2", byName["django"].Version)

	for _, d := range deps {
		assert.Equal(t, schema.PipManager, d.PackageManager)
		assert.Equal(t, schema.PythonEcosystem, d.Language)
		assert.Equal(t, "requirements.txt", d.FilePath)
	}
}

func TestParsePyprojectTomlPEP621(t *testing.T) {
	data := []byte(`[project]
name = "svc"
dependencies = [
    "fastapi>=0.100",
    "pydantic==2.1.0",
]

[project.optional-dependencies]
dev = ["pytest>=7"]
`)

	deps, err := parsePyprojectToml("pyproject.toml", data)
	require.NoError(t, err)
	require.Len(t, deps, 3)

	assert.Equal(t, "fastapi", deps[0].Name)
	assert.Equal(t, ">=0.100", deps[0].Version)
	assert.Equal(t, schema.PipManager, deps[0].PackageManager)
	assert.Equal(t, "pytest", deps[2].Name)
}

func TestParsePyprojectTomlPoetry(t *testing.T) {
	data := []byte(`[tool.poetry]
name = "svc"

[tool.poetry.dependencies]
python = "^3.11"
httpx = "^0.24"

[tool.poetry.dependencies.boto3]
version = "~1.28"
optional = true

[tool.poetry.dev-dependencies]
black = "*"
`)

	deps, err := parsePyprojectToml("pyproject.toml", data)
	require.NoError(t, err)

	byName := map[string]schema.Dependency{}
	for _, d := range deps {
		byName[d.Name] = d
	}
	assert.NotContains(t, byName, "python", "the interpreter constraint is not a dependency")
	assert.Equal(t, "^0.24", byName["httpx"].Version)
	assert.Equal(t, "~1.28", byName["boto3"].Version)
	assert.Equal(t, "*", byName["black"].Version)
	assert.Equal(t, schema.PoetryManager, byName["httpx"].PackageManager)
}

func TestParsePyprojectTomlInvalid(t *testing.T) {
	_, err := parsePyprojectToml("pyproject.toml", []byte("[project\nbroken"))
	assert.Error(t, err)
}

func TestParsePipfile(t *testing.T) {
	data := []byte(`[[source]]
url = "https://pypi.org/simple"
verify_ssl = true
name = "pypi"

[packages]
requests = ">=2.28"
flask = "*"

[packages.gunicorn]
version = "==20.1.0"

[dev-packages]
pytest = "*"
`)

	deps, err := parsePipfile("Pipfile", data)
	require.NoError(t, err)

	byName := map[string]schema.Dependency{}
	for _, d := range deps {
		byName[d.Name] = d
	}
	require.Len(t, byName, 4)
	assert.Equal(t, ">=2.28", byName["requests"].Version)
	assert.Equal(t, "", byName["flask"].Version, "a '*' constraint means unpinned")
	assert.Equal(t, "==20.1.0", byName["gunicorn"].Version)
	assert.Equal(t, schema.PipenvManager, byName["pytest"].PackageManager)
}

func TestParseEnvironmentYml(t *testing.T) {
	data := []byte(`name: research
channels:
  - conda-forge
dependencies:
  - numpy=1.24.0
  - pandas=2.0.1=py311_0
  - conda-forge::scipy
  - python=3.11
  - pip:
      - mlflow>=2.0
      - requests
`)

	deps, err := parseEnvironmentYml("environment.yml", data)
	require.NoError(t, err)

	byName := map[string]schema.Dependency{}
	for _, d := range deps {
		byName[d.Name] = d
	}
	assert.Equal(t, "1.24.0", byName["numpy"].Version)
	assert.Equal(t, "2.0.1", byName["pandas"].Version, "build strings are dropped")
	assert.Equal(t, "", byName["scipy"].Version)
	assert.Equal(t, schema.CondaManager, byName["scipy"].PackageManager)
	assert.Equal(t, schema.PipManager, byName["mlflow"].PackageManager, "nested pip entries attribute to pip")
	assert.Equal(t, ">=2.0", byName["mlflow"].Version)
	assert.Contains(t, byName, "requests")
}

func TestSplitRequirement(t *testing.T) {
	tests := []struct {
		line    string
		name    string
		version string
	}{
		{"flask==2.0", "flask", "==2.0"},
		{"requests", "requests", ""},
		{"uvicorn[standard]", "uvicorn", ""},
		{"uvicorn[standard]>=0.20", "uvicorn", ">=0.20"},
		{"numpy ~= 1.24", "numpy", "~= 1.24"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			name, version := splitRequirement(tt.line)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.version, version)
		})
	}
}
