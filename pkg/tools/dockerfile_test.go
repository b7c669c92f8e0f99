package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsmith/containerize-mcp/pkg/config"
)

func TestRenderDockerfileNode(t *testing.T) {
	out, err := renderDockerfile(&Analysis{
		Language:   "javascript",
		Entrypoint: "server.js",
		Port:       3000,
	}, "")
	require.NoError(t, err)

	assert.Contains(t, out, "FROM node:20-alpine")
	assert.Contains(t, out, "EXPOSE 3000")
	assert.Contains(t, out, `CMD ["node", "server.js"]`)
	assert.Contains(t, out, "USER node")
}

func TestRenderDockerfileGoMultiStage(t *testing.T) {
	out, err := renderDockerfile(&Analysis{Language: "go", Port: 8080}, "")
	require.NoError(t, err)

	assert.Contains(t, out, "AS build")
	assert.Contains(t, out, "distroless")
	assert.Contains(t, out, "CGO_ENABLED=0")
}

func TestRenderDockerfileBaseImageOverride(t *testing.T) {
	out, err := renderDockerfile(&Analysis{
		Language: "python",
		Port:     8000,
	}, "python:3.11-alpine")
	require.NoError(t, err)
	assert.Contains(t, out, "FROM python:3.11-alpine")
}

func TestRenderDockerfileUnknownLanguage(t *testing.T) {
	_, err := renderDockerfile(&Analysis{Language: "unknown"}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown")
}

func TestGenerateDockerfileMockDoesNotWrite(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"package.json": `{"main": "index.js", "dependencies": {}}`,
	})
	tool := &GenerateDockerfileTool{BaseTool: BaseTool{
		Cfg: config.Config{Workspace: dir, MockMode: true},
	}}

	resp, err := tool.Run(context.Background(), map[string]interface{}{})
	require.NoError(t, err)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, false, data["written"])
	assert.Contains(t, data["content"].(string), "FROM node:20-alpine")
	assert.NoFileExists(t, dir+"/Dockerfile")
}

func TestGenerateDockerfileRefusesOverwrite(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"package.json": `{"main": "index.js"}`,
		"Dockerfile":   "FROM scratch\n",
	})
	tool := &GenerateDockerfileTool{BaseTool: BaseTool{
		Cfg: config.Config{Workspace: dir},
	}}

	_, err := tool.Run(context.Background(), map[string]interface{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overwrite")

	resp, err := tool.Run(context.Background(), map[string]interface{}{"overwrite": true})
	require.NoError(t, err)
	assert.Equal(t, true, resp.Data.(map[string]interface{})["written"])
}
