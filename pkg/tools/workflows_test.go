package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsmith/containerize-mcp/pkg/config"
	"github.com/opsmith/containerize-mcp/pkg/workflows"
)

// mockSuite wires the full tool set in mock mode against a real
// registry, the same shape the server builds at startup.
func mockSuite(t *testing.T, workspace string) (*Registry, *workflows.Registry) {
	t.Helper()
	cfg := config.Config{
		Workspace: workspace,
		Namespace: "default",
		MockMode:  true,
	}
	base := BaseTool{Cfg: cfg}

	reg := NewRegistry()
	wfReg := workflows.NewRegistry()
	workflows.RegisterAll(wfReg, cfg, &RegistryRunner{Registry: reg}, nil)

	for _, tool := range []Tool{
		&PingTool{BaseTool: base},
		&AnalyzeRepoTool{BaseTool: base},
		&GenerateDockerfileTool{BaseTool: base},
		&BuildImageTool{BaseTool: base},
		&ScanImageTool{BaseTool: base},
		&GenerateManifestsTool{BaseTool: base},
		&PrepareClusterTool{BaseTool: base},
		&DeployApplicationTool{BaseTool: base},
		&VerifyDeploymentTool{BaseTool: base},
		&ListWorkflowsTool{BaseTool: base, Workflows: wfReg},
		&RunWorkflowTool{BaseTool: base, Workflows: wfReg},
	} {
		require.NoError(t, reg.Register(tool))
	}
	return reg, wfReg
}

func TestRunWorkflowContainerizeMock(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"package.json": `{"main": "index.js", "dependencies": {"express": "4"}}`,
	})
	reg, _ := mockSuite(t, dir)

	runTool, ok := reg.Get("run_workflow")
	require.True(t, ok)

	resp, err := runTool.Run(context.Background(), map[string]interface{}{
		"workflow": "containerize_application",
		"args":     map[string]interface{}{"tag": "myapp:1.0"},
	})
	require.NoError(t, err)

	result := resp.Data.(*workflows.WorkflowResult)
	assert.Equal(t, workflows.StatusCompleted, result.Status)
	require.Len(t, result.Steps, 4)
	assert.Equal(t, "analyze workspace", result.Steps[0].StepName)
	assert.Equal(t, "scan_image", result.Steps[3].Tool)
	assert.Contains(t, result.Summary, "myapp:1.0")
}

func TestRunWorkflowUnknownName(t *testing.T) {
	reg, _ := mockSuite(t, t.TempDir())
	runTool, _ := reg.Get("run_workflow")

	_, err := runTool.Run(context.Background(), map[string]interface{}{
		"workflow": "no_such_workflow",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown workflow")
}

func TestRunWorkflowMissingRequiredArg(t *testing.T) {
	reg, _ := mockSuite(t, t.TempDir())
	runTool, _ := reg.Get("run_workflow")

	_, err := runTool.Run(context.Background(), map[string]interface{}{
		"workflow": "containerize_application",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tag is required")
}

func TestListWorkflows(t *testing.T) {
	reg, wfReg := mockSuite(t, t.TempDir())
	assert.Len(t, wfReg.List(), 2)

	listTool, _ := reg.Get("list_workflows")
	resp, err := listTool.Run(context.Background(), map[string]interface{}{})
	require.NoError(t, err)

	defs := resp.Data.(map[string]interface{})["workflows"].([]workflows.WorkflowDefinition)
	require.Len(t, defs, 2)
	assert.Equal(t, "containerize_application", defs[0].Name)
	assert.Equal(t, "deploy_application_workflow", defs[1].Name)
}

func TestRegistryRunnerUnknownTool(t *testing.T) {
	runner := &RegistryRunner{Registry: NewRegistry()}
	_, err := runner.RunTool(context.Background(), "nope", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown tool")
}
