package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsmith/containerize-mcp/pkg/config"
	"github.com/opsmith/containerize-mcp/pkg/types"
)

func mockConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		LogLevel:  "info",
		Workspace: t.TempDir(),
		Namespace: "default",
		MockMode:  true,
	}
}

func TestInitializeMockRegistersToolSuite(t *testing.T) {
	s := NewServer(mockConfig(t))
	require.NoError(t, s.Initialize(context.Background()))

	descs, err := s.ListTools(context.Background())
	require.NoError(t, err)
	assert.Len(t, descs, 14)

	names := make(map[string]string, len(descs))
	for _, d := range descs {
		names[d.Name] = d.Category
	}
	assert.Equal(t, "analysis", names["analyze_repo"])
	assert.Equal(t, "build", names["build_image"])
	assert.Equal(t, "deploy", names["deploy_application"])
	assert.Equal(t, "workflow", names["run_workflow"])
	assert.Equal(t, "utility", names["ping"])
}

func TestInitializeIdempotent(t *testing.T) {
	s := NewServer(mockConfig(t))
	require.NoError(t, s.Initialize(context.Background()))
	require.NoError(t, s.Initialize(context.Background()))

	descs, _ := s.ListTools(context.Background())
	assert.Len(t, descs, 14)
}

func TestGetHealthMock(t *testing.T) {
	s := NewServer(mockConfig(t))
	require.NoError(t, s.Initialize(context.Background()))

	report, err := s.GetHealth(context.Background())
	require.NoError(t, err)

	assert.Equal(t, types.HealthStatusHealthy, report.Status)
	assert.True(t, report.Services["docker"])
	assert.True(t, report.Services["kubernetes"])
	assert.True(t, report.Services["workspace"])
	assert.Equal(t, float64(14), report.Metrics["tools_registered"])
	assert.GreaterOrEqual(t, report.UptimeSeconds, 0.0)
}

func TestGetHealthMissingWorkspace(t *testing.T) {
	cfg := mockConfig(t)
	cfg.Workspace = "/nonexistent"
	s := NewServer(cfg)
	require.NoError(t, s.Initialize(context.Background()))

	report, err := s.GetHealth(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.HealthStatusUnhealthy, report.Status)
	assert.False(t, report.Services["workspace"])
}

func TestShutdownIdempotent(t *testing.T) {
	s := NewServer(mockConfig(t))
	require.NoError(t, s.Initialize(context.Background()))

	require.NoError(t, s.Shutdown(context.Background()))
	require.NoError(t, s.Shutdown(context.Background()))
}

func TestSanitizeArgs(t *testing.T) {
	out := sanitizeArgs(map[string]interface{}{
		"image":         "app:1.0",
		"registryToken": "s3cr3t",
		"apiKey":        "abc",
	})

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "app:1.0", decoded["image"])
	assert.Equal(t, "[REDACTED]", decoded["registryToken"])
	assert.Equal(t, "[REDACTED]", decoded["apiKey"])
}
