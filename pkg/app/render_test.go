package app

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/opsmith/containerize-mcp/pkg/types"
)

func TestRenderToolListGroupsByCategory(t *testing.T) {
	var buf bytes.Buffer
	RenderToolList(&buf, []types.ToolDescriptor{
		{Name: "build_image", Description: "Build a container image", Category: "build"},
		{Name: "ping", Description: "Liveness check", Category: "utility"},
	})

	out := buf.String()
	assert.Contains(t, out, "BUILD\n")
	assert.Contains(t, out, "UTILITY\n")
	assert.Contains(t, out, "build_image")
	assert.Contains(t, out, "ping")
	assert.Contains(t, out, "Total: 2 tools available")

	// Categories appear in first-seen order.
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("BUILD")), bytes.Index(buf.Bytes(), []byte("UTILITY")))
}

func TestRenderToolListUncategorized(t *testing.T) {
	var buf bytes.Buffer
	RenderToolList(&buf, []types.ToolDescriptor{
		{Name: "mystery", Description: "No category declared"},
	})

	out := buf.String()
	assert.Contains(t, out, "UTILITY\n")
	assert.Contains(t, out, "Total: 1 tools available")
}

func TestRenderToolListEmpty(t *testing.T) {
	var buf bytes.Buffer
	RenderToolList(&buf, nil)
	assert.Equal(t, "Total: 0 tools available\n", buf.String())
}

func TestRenderHealthReport(t *testing.T) {
	var buf bytes.Buffer
	RenderHealthReport(&buf, types.HealthReport{
		Status:        types.HealthStatusUnhealthy,
		UptimeSeconds: 42.7,
		Services: map[string]bool{
			"docker":     false,
			"kubernetes": true,
			"workspace":  true,
		},
		Metrics: map[string]float64{"tools_registered": 14},
	})

	out := buf.String()
	assert.Contains(t, out, "Status: UNHEALTHY")
	assert.Contains(t, out, "Uptime: 43s")
	assert.Contains(t, out, "[fail] docker")
	assert.Contains(t, out, "[ok] kubernetes")
	assert.Contains(t, out, "tools_registered: 14")
}
