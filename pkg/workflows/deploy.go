package workflows

import (
	"context"
	"fmt"
)

// DeployWorkflow generates manifests, prepares the cluster, applies the
// manifests and verifies the rollout.
type DeployWorkflow struct {
	base workflowBase
}

func (w *DeployWorkflow) Definition() WorkflowDefinition {
	return WorkflowDefinition{
		Name:        "deploy_application_workflow",
		Description: "Generate manifests, prepare the cluster, deploy and verify the rollout",
		Parameters: []WorkflowParam{
			{Name: "name", Type: "string", Required: true, Description: "Application name"},
			{Name: "image", Type: "string", Required: true, Description: "Image reference to deploy"},
			{Name: "port", Type: "integer", Required: false, Description: "Container port (default: 8080)"},
			{Name: "replicas", Type: "integer", Required: false, Description: "Replica count (default: 1)"},
			{Name: "host", Type: "string", Required: false, Description: "Ingress hostname"},
		},
	}
}

func (w *DeployWorkflow) Execute(ctx context.Context, args map[string]interface{}) (*WorkflowResult, error) {
	wfName := w.Definition().Name
	appName, err := requireArg(args, "name")
	if err != nil {
		return nil, err
	}
	image, err := requireArg(args, "image")
	if err != nil {
		return nil, err
	}
	port := intArg(args, "port", 8080)

	var steps []StepResult

	manifestArgs := map[string]interface{}{
		"name":  appName,
		"image": image,
		"port":  port,
	}
	if v, ok := args["replicas"]; ok {
		manifestArgs["replicas"] = v
	}
	if v, ok := args["host"]; ok {
		manifestArgs["host"] = v
	}
	gen, _ := w.base.runStep(ctx, "generate manifests", "generate_k8s_manifests", manifestArgs)
	steps = append(steps, gen)
	if gen.Status == StatusFailed {
		return finish(wfName, steps, "aborted: manifest generation failed"), nil
	}

	prep, _ := w.base.runStep(ctx, "prepare cluster", "prepare_cluster", nil)
	steps = append(steps, prep)
	if prep.Status == StatusFailed {
		return finish(wfName, steps, "aborted: cluster preparation failed"), nil
	}

	deploy, _ := w.base.runStep(ctx, "apply manifests", "deploy_application", nil)
	steps = append(steps, deploy)
	if deploy.Status == StatusFailed {
		return finish(wfName, steps, "aborted: deploy failed"), nil
	}

	verify, _ := w.base.runStep(ctx, "verify rollout", "verify_deployment", map[string]interface{}{
		"name":      appName,
		"probePort": port,
	})
	steps = append(steps, verify)

	return finish(wfName, steps, fmt.Sprintf("%s deployed as %s", image, appName)), nil
}
