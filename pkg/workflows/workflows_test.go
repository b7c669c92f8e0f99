package workflows

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsmith/containerize-mcp/pkg/config"
	"github.com/opsmith/containerize-mcp/pkg/types"
)

// scriptedRunner maps tool names to canned outputs or errors.
type scriptedRunner struct {
	outputs map[string]*StepOutput
	errs    map[string]error
	calls   []string
}

func (r *scriptedRunner) RunTool(ctx context.Context, name string, args map[string]interface{}) (*StepOutput, error) {
	r.calls = append(r.calls, name)
	if err, ok := r.errs[name]; ok {
		return nil, err
	}
	if out, ok := r.outputs[name]; ok {
		return out, nil
	}
	return &StepOutput{}, nil
}

func newBase(runner ToolRunner) workflowBase {
	return workflowBase{
		cfg:    config.Config{Workspace: "/srv/work", Namespace: "default"},
		runner: runner,
	}
}

func TestContainerizeHappyPath(t *testing.T) {
	runner := &scriptedRunner{
		outputs: map[string]*StepOutput{
			"analyze_repo": {
				Data: map[string]interface{}{
					"analysis": map[string]interface{}{"hasDockerfile": false},
				},
			},
		},
	}
	wf := &ContainerizeWorkflow{base: newBase(runner)}

	result, err := wf.Execute(context.Background(), map[string]interface{}{"tag": "app:1.0"})
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, result.Status)
	assert.Equal(t, []string{"analyze_repo", "generate_dockerfile", "build_image", "scan_image"}, runner.calls)
}

func TestContainerizeSkipsExistingDockerfile(t *testing.T) {
	runner := &scriptedRunner{
		outputs: map[string]*StepOutput{
			"analyze_repo": {
				Data: map[string]interface{}{
					"analysis": map[string]interface{}{"hasDockerfile": true},
				},
			},
		},
	}
	wf := &ContainerizeWorkflow{base: newBase(runner)}

	result, err := wf.Execute(context.Background(), map[string]interface{}{"tag": "app:1.0"})
	require.NoError(t, err)

	assert.NotContains(t, runner.calls, "generate_dockerfile")
	require.Len(t, result.Steps, 4)
	assert.Equal(t, StatusSkipped, result.Steps[1].Status)
	// A skipped step downgrades the overall status.
	assert.Equal(t, StatusPartial, result.Status)
}

func TestContainerizeAbortsOnBuildFailure(t *testing.T) {
	runner := &scriptedRunner{
		errs: map[string]error{"build_image": errors.New("no space left on device")},
	}
	wf := &ContainerizeWorkflow{base: newBase(runner)}

	result, err := wf.Execute(context.Background(), map[string]interface{}{"tag": "app:1.0"})
	require.NoError(t, err)

	assert.Equal(t, StatusAborted, result.Status)
	assert.NotContains(t, runner.calls, "scan_image", "no step may run after an abort")
	last := result.Steps[len(result.Steps)-1]
	assert.Equal(t, StatusFailed, last.Status)
	assert.Contains(t, last.Output, "no space left")
}

func TestContainerizeRequiresTag(t *testing.T) {
	wf := &ContainerizeWorkflow{base: newBase(&scriptedRunner{})}
	_, err := wf.Execute(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tag is required")
}

func TestDeployHappyPath(t *testing.T) {
	runner := &scriptedRunner{}
	wf := &DeployWorkflow{base: newBase(runner)}

	result, err := wf.Execute(context.Background(), map[string]interface{}{
		"name":  "web",
		"image": "web:1.0",
		"port":  float64(3000),
	})
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, result.Status)
	assert.Equal(t, []string{
		"generate_k8s_manifests",
		"prepare_cluster",
		"deploy_application",
		"verify_deployment",
	}, runner.calls)
}

func TestDeployAbortsWhenClusterUnavailable(t *testing.T) {
	runner := &scriptedRunner{
		errs: map[string]error{"prepare_cluster": errors.New("CLUSTER_UNAVAILABLE")},
	}
	wf := &DeployWorkflow{base: newBase(runner)}

	result, err := wf.Execute(context.Background(), map[string]interface{}{
		"name":  "web",
		"image": "web:1.0",
	})
	require.NoError(t, err)

	assert.Equal(t, StatusAborted, result.Status)
	assert.NotContains(t, runner.calls, "deploy_application")
}

func TestStepStatusFromFindings(t *testing.T) {
	runner := &scriptedRunner{
		outputs: map[string]*StepOutput{
			"scan_image": {Findings: []types.Finding{
				{Severity: types.SeverityWarning, Category: types.CategorySecurity, Summary: "image runs as root"},
			}},
		},
	}
	base := newBase(runner)

	step, _ := base.runStep(context.Background(), "scan", "scan_image", nil)
	assert.Equal(t, StatusWarning, step.Status)

	runner.outputs["scan_image"].Findings[0].Severity = types.SeverityCritical
	step, _ = base.runStep(context.Background(), "scan", "scan_image", nil)
	assert.Equal(t, StatusFailed, step.Status)
}

func TestRegistryListsInRegistrationOrder(t *testing.T) {
	reg := NewRegistry()
	RegisterAll(reg, config.Config{}, &scriptedRunner{}, nil)

	defs := reg.List()
	require.Len(t, defs, 2)
	assert.Equal(t, "containerize_application", defs[0].Name)
	assert.Equal(t, "deploy_application_workflow", defs[1].Name)

	_, ok := reg.Get("containerize_application")
	assert.True(t, ok)
	_, ok = reg.Get("missing")
	assert.False(t, ok)
}
