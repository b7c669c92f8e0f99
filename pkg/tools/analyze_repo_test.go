package tools

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestAnalyzeNodeExpress(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"package.json": `{
			"main": "server.js",
			"scripts": {"start": "node server.js --port 3000"},
			"dependencies": {"express": "^4.18.0", "pg": "^8.0.0"}
		}`,
	})

	a, findings, err := analyzeDirectory(dir)
	require.NoError(t, err)

	assert.Equal(t, "javascript", a.Language)
	assert.Equal(t, "express", a.Framework)
	assert.Equal(t, "npm", a.BuildTool)
	assert.Equal(t, "server.js", a.Entrypoint)
	assert.Equal(t, 3000, a.Port)
	assert.False(t, a.HasDockerfile)
	assert.NotEmpty(t, findings)
}

func TestAnalyzePythonFlask(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"requirements.txt": "flask==2.3.0\n# comment\ngunicorn>=20\n",
		"app.py":           "app = Flask(__name__)\n",
	})

	a, _, err := analyzeDirectory(dir)
	require.NoError(t, err)

	assert.Equal(t, "python", a.Language)
	assert.Equal(t, "flask", a.Framework)
	assert.Equal(t, "app.py", a.Entrypoint)
	assert.Equal(t, 5000, a.Port)
	assert.Contains(t, a.Dependencies, "gunicorn")
}

func TestAnalyzeGoModule(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"go.mod":     "module example.com/app\n",
		"main.go":    "package main\n",
		"Dockerfile": "FROM scratch\n",
	})

	a, _, err := analyzeDirectory(dir)
	require.NoError(t, err)

	assert.Equal(t, "go", a.Language)
	assert.Equal(t, 8080, a.Port)
	assert.True(t, a.HasDockerfile)
}

func TestAnalyzeUnknownLanguage(t *testing.T) {
	dir := writeFiles(t, map[string]string{"README.md": "hello\n"})

	a, findings, err := analyzeDirectory(dir)
	require.NoError(t, err)
	assert.Equal(t, "unknown", a.Language)

	var warned bool
	for _, f := range findings {
		if f.Severity == "warning" {
			warned = true
		}
	}
	assert.True(t, warned, "unknown language must surface a warning")
}

func TestAnalyzeMissingDirectory(t *testing.T) {
	_, _, err := analyzeDirectory("/nonexistent/path")
	require.Error(t, err)
}

func TestPortFromText(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"node server.js --port 3000", 3000},
		{"PORT=8081 node index.js", 8081},
		{"node app.js", 0},
		{"listen :9090 now", 9090},
		{"--port 99999999", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, portFromText(tt.in), tt.in)
	}
}
