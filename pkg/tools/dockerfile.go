package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/opsmith/containerize-mcp/pkg/types"
)

// GenerateDockerfileTool writes a Dockerfile tailored to the analysis of
// the workspace. Existing Dockerfiles are never overwritten unless
// overwrite is set.
type GenerateDockerfileTool struct {
	BaseTool
}

func (t *GenerateDockerfileTool) Name() string { return "generate_dockerfile" }
func (t *GenerateDockerfileTool) Description() string {
	return "Generate a Dockerfile for the application in the workspace"
}
func (t *GenerateDockerfileTool) Category() string { return CategoryBuild }

func (t *GenerateDockerfileTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"language": map[string]interface{}{
				"type":        "string",
				"description": "Application language (default: auto-detected)",
			},
			"baseImage": map[string]interface{}{
				"type":        "string",
				"description": "Base image override",
			},
			"port": map[string]interface{}{
				"type":        "integer",
				"description": "Port the application listens on",
			},
			"entrypoint": map[string]interface{}{
				"type":        "string",
				"description": "Application entrypoint file",
			},
			"overwrite": map[string]interface{}{
				"type":        "boolean",
				"description": "Replace an existing Dockerfile (default: false)",
			},
		},
	}
}

func (t *GenerateDockerfileTool) Run(ctx context.Context, args map[string]interface{}) (*StandardResponse, error) {
	analysis, _, err := analyzeDirectory(t.Cfg.Workspace)
	if err != nil {
		return nil, &types.MCPError{
			Code:    types.ErrCodeInvalidInput,
			Message: fmt.Sprintf("failed to analyze workspace: %v", err),
			Tool:    t.Name(),
		}
	}

	if lang := getStringArg(args, "language", ""); lang != "" {
		analysis.Language = lang
	}
	if port := getIntArg(args, "port", 0); port > 0 {
		analysis.Port = port
	}
	if ep := getStringArg(args, "entrypoint", ""); ep != "" {
		analysis.Entrypoint = ep
	}
	baseImage := getStringArg(args, "baseImage", "")

	content, err := renderDockerfile(analysis, baseImage)
	if err != nil {
		return nil, &types.MCPError{
			Code:    types.ErrCodeInvalidInput,
			Message: err.Error(),
			Tool:    t.Name(),
		}
	}

	path := filepath.Join(t.Cfg.Workspace, "Dockerfile")
	if t.Cfg.MockMode {
		return NewResponse(t.Cfg, t.Name(), map[string]interface{}{
			"path":    path,
			"content": content,
			"written": false,
		}), nil
	}

	if analysis.HasDockerfile && !getBoolArg(args, "overwrite", false) {
		return nil, &types.MCPError{
			Code:    types.ErrCodeInvalidInput,
			Message: "Dockerfile already exists; pass overwrite=true to replace it",
			Tool:    t.Name(),
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return nil, &types.MCPError{
			Code:    types.ErrCodeInternalError,
			Message: fmt.Sprintf("failed to write Dockerfile: %v", err),
			Tool:    t.Name(),
		}
	}

	return NewResponse(t.Cfg, t.Name(), map[string]interface{}{
		"path":    path,
		"content": content,
		"written": true,
	}), nil
}

func renderDockerfile(a *Analysis, baseImage string) (string, error) {
	var b strings.Builder
	switch a.Language {
	case "javascript":
		if baseImage == "" {
			baseImage = "node:20-alpine"
		}
		fmt.Fprintf(&b, "FROM %s\n", baseImage)
		b.WriteString("WORKDIR /app\n")
		b.WriteString("COPY package*.json ./\n")
		b.WriteString("RUN npm ci --omit=dev\n")
		b.WriteString("COPY . .\n")
		fmt.Fprintf(&b, "EXPOSE %d\n", a.Port)
		b.WriteString("USER node\n")
		fmt.Fprintf(&b, "CMD [\"node\", %q]\n", a.Entrypoint)
	case "python":
		if baseImage == "" {
			baseImage = "python:3.12-slim"
		}
		fmt.Fprintf(&b, "FROM %s\n", baseImage)
		b.WriteString("WORKDIR /app\n")
		b.WriteString("COPY requirements.txt .\n")
		b.WriteString("RUN pip install --no-cache-dir -r requirements.txt\n")
		b.WriteString("COPY . .\n")
		fmt.Fprintf(&b, "EXPOSE %d\n", a.Port)
		entry := a.Entrypoint
		if entry == "" {
			entry = "app.py"
		}
		fmt.Fprintf(&b, "CMD [\"python\", %q]\n", entry)
	case "go":
		if baseImage == "" {
			baseImage = "golang:1.25-alpine"
		}
		fmt.Fprintf(&b, "FROM %s AS build\n", baseImage)
		b.WriteString("WORKDIR /src\n")
		b.WriteString("COPY go.mod go.sum ./\n")
		b.WriteString("RUN go mod download\n")
		b.WriteString("COPY . .\n")
		b.WriteString("RUN CGO_ENABLED=0 go build -o /out/app .\n\n")
		b.WriteString("FROM gcr.io/distroless/static-debian12\n")
		b.WriteString("COPY --from=build /out/app /app\n")
		fmt.Fprintf(&b, "EXPOSE %d\n", a.Port)
		b.WriteString("ENTRYPOINT [\"/app\"]\n")
	case "java":
		if baseImage == "" {
			baseImage = "eclipse-temurin:21-jre"
		}
		fmt.Fprintf(&b, "FROM %s\n", baseImage)
		b.WriteString("WORKDIR /app\n")
		b.WriteString("COPY target/*.jar app.jar\n")
		fmt.Fprintf(&b, "EXPOSE %d\n", a.Port)
		b.WriteString("ENTRYPOINT [\"java\", \"-jar\", \"app.jar\"]\n")
	default:
		return "", fmt.Errorf("cannot generate a Dockerfile for language %q: pass language and baseImage explicitly", a.Language)
	}
	return b.String(), nil
}
