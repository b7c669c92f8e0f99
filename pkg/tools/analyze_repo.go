package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/opsmith/containerize-mcp/pkg/types"
)

// Analysis is what analyze_repo produces and the downstream build and
// manifest tools consume.
type Analysis struct {
	Language      string   `json:"language"`
	Framework     string   `json:"framework,omitempty"`
	BuildTool     string   `json:"buildTool,omitempty"`
	Port          int      `json:"port"`
	Entrypoint    string   `json:"entrypoint,omitempty"`
	Dependencies  []string `json:"dependencies,omitempty"`
	HasDockerfile bool     `json:"hasDockerfile"`
}

// AnalyzeRepoTool inspects a workspace directory and infers the language,
// framework, listen port and entrypoint of the application inside it.
type AnalyzeRepoTool struct {
	BaseTool
}

func (t *AnalyzeRepoTool) Name() string { return "analyze_repo" }
func (t *AnalyzeRepoTool) Description() string {
	return "Detect language, framework, port and entrypoint of a repository"
}
func (t *AnalyzeRepoTool) Category() string { return CategoryAnalysis }

func (t *AnalyzeRepoTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"path": map[string]interface{}{
				"type":        "string",
				"description": "Directory to analyze, relative to the workspace (default: workspace root)",
			},
		},
	}
}

func (t *AnalyzeRepoTool) Run(ctx context.Context, args map[string]interface{}) (*StandardResponse, error) {
	dir := t.Cfg.Workspace
	if rel := getStringArg(args, "path", ""); rel != "" {
		dir = filepath.Join(t.Cfg.Workspace, rel)
	}

	analysis, findings, err := analyzeDirectory(dir)
	if err != nil {
		return nil, &types.MCPError{
			Code:    types.ErrCodeInvalidInput,
			Message: fmt.Sprintf("failed to analyze %s: %v", dir, err),
			Tool:    t.Name(),
		}
	}

	return NewResponse(t.Cfg, t.Name(), map[string]interface{}{
		"analysis": analysis,
		"findings": findings,
	}), nil
}

func analyzeDirectory(dir string) (*Analysis, []types.Finding, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}

	names := make(map[string]bool, len(entries))
	for _, e := range entries {
		names[e.Name()] = true
	}

	a := &Analysis{
		Language:      detectLanguage(names),
		HasDockerfile: names["Dockerfile"],
	}

	switch a.Language {
	case "javascript":
		analyzeNode(dir, a)
	case "python":
		analyzePython(dir, names, a)
	case "go":
		a.BuildTool = "go"
		a.Entrypoint = "main.go"
	case "java":
		if names["pom.xml"] {
			a.BuildTool = "maven"
		} else {
			a.BuildTool = "gradle"
		}
	}

	if a.Port == 0 {
		a.Port = defaultPortFor(a.Language)
	}

	findings := []types.Finding{
		{
			Severity: types.SeverityInfo,
			Category: types.CategoryAnalysis,
			Summary:  fmt.Sprintf("detected %s application on port %d", a.Language, a.Port),
		},
	}
	if a.HasDockerfile {
		findings = append(findings, types.Finding{
			Severity: types.SeverityOK,
			Category: types.CategoryDockerfile,
			Summary:  "repository already contains a Dockerfile",
		})
	}
	if a.Language == "unknown" {
		findings = append(findings, types.Finding{
			Severity: types.SeverityWarning,
			Category: types.CategoryAnalysis,
			Summary:  "could not determine the application language",
			Suggestion: "pass an explicit baseImage to generate_dockerfile",
		})
	}
	return a, findings, nil
}

func detectLanguage(names map[string]bool) string {
	switch {
	case names["package.json"]:
		return "javascript"
	case names["go.mod"]:
		return "go"
	case names["requirements.txt"] || names["pyproject.toml"] || names["setup.py"]:
		return "python"
	case names["pom.xml"] || names["build.gradle"] || names["build.gradle.kts"]:
		return "java"
	case names["Gemfile"]:
		return "ruby"
	case names["Cargo.toml"]:
		return "rust"
	default:
		return "unknown"
	}
}

func defaultPortFor(language string) int {
	switch language {
	case "javascript":
		return 3000
	case "python":
		return 8000
	default:
		return 8080
	}
}

func analyzeNode(dir string, a *Analysis) {
	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		return
	}
	var pkg struct {
		Main         string            `json:"main"`
		Scripts      map[string]string `json:"scripts"`
		Dependencies map[string]string `json:"dependencies"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return
	}

	a.BuildTool = "npm"
	a.Entrypoint = pkg.Main
	if a.Entrypoint == "" {
		a.Entrypoint = "index.js"
	}
	for dep := range pkg.Dependencies {
		a.Dependencies = append(a.Dependencies, dep)
	}
	for _, fw := range []string{"express", "fastify", "koa", "next"} {
		if _, ok := pkg.Dependencies[fw]; ok {
			a.Framework = fw
			break
		}
	}
	if start, ok := pkg.Scripts["start"]; ok {
		if p := portFromText(start); p > 0 {
			a.Port = p
		}
	}
}

func analyzePython(dir string, names map[string]bool, a *Analysis) {
	a.BuildTool = "pip"
	for _, candidate := range []string{"app.py", "main.py", "server.py", "wsgi.py"} {
		if names[candidate] {
			a.Entrypoint = candidate
			break
		}
	}
	data, err := os.ReadFile(filepath.Join(dir, "requirements.txt"))
	if err != nil {
		return
	}
	for _, line := range strings.Split(string(data), "\n") {
		dep := strings.ToLower(strings.TrimSpace(line))
		if dep == "" || strings.HasPrefix(dep, "#") {
			continue
		}
		name := dep
		if i := strings.IndexAny(dep, "=<>~["); i > 0 {
			name = dep[:i]
		}
		a.Dependencies = append(a.Dependencies, name)
		switch name {
		case "flask", "django", "fastapi":
			a.Framework = name
		}
	}
	if a.Framework == "flask" {
		a.Port = 5000
	}
}

var portPattern = regexp.MustCompile(`(?:--port[= ]|PORT=|:)(\d{2,5})`)

func portFromText(s string) int {
	m := portPattern.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	p, err := strconv.Atoi(m[1])
	if err != nil || p < 1 || p > 65535 {
		return 0
	}
	return p
}
