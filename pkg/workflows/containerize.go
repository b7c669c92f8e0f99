package workflows

import (
	"context"
	"fmt"
)

// ContainerizeWorkflow runs the full analyze/dockerfile/build/scan
// pipeline over the workspace.
type ContainerizeWorkflow struct {
	base workflowBase
}

func (w *ContainerizeWorkflow) Definition() WorkflowDefinition {
	return WorkflowDefinition{
		Name:        "containerize_application",
		Description: "Analyze the workspace, generate a Dockerfile, build the image and scan it",
		Parameters: []WorkflowParam{
			{Name: "tag", Type: "string", Required: true, Description: "Image tag for the build"},
			{Name: "baseImage", Type: "string", Required: false, Description: "Base image override for the Dockerfile"},
			{Name: "overwrite", Type: "boolean", Required: false, Description: "Replace an existing Dockerfile"},
		},
	}
}

func (w *ContainerizeWorkflow) Execute(ctx context.Context, args map[string]interface{}) (*WorkflowResult, error) {
	name := w.Definition().Name
	tag, err := requireArg(args, "tag")
	if err != nil {
		return nil, err
	}

	var steps []StepResult

	analyze, out := w.base.runStep(ctx, "analyze workspace", "analyze_repo", nil)
	steps = append(steps, analyze)
	if analyze.Status == StatusFailed {
		return finish(name, steps, "aborted: workspace analysis failed"), nil
	}

	dockerfileArgs := map[string]interface{}{}
	if v, ok := args["baseImage"]; ok {
		dockerfileArgs["baseImage"] = v
	}
	if v, ok := args["overwrite"]; ok {
		dockerfileArgs["overwrite"] = v
	}
	hasDockerfile := false
	if out != nil {
		if a, ok := out.Data["analysis"].(map[string]interface{}); ok {
			hasDockerfile, _ = a["hasDockerfile"].(bool)
		}
	}

	if hasDockerfile && dockerfileArgs["overwrite"] != true {
		steps = append(steps, skippedStep("generate Dockerfile", "generate_dockerfile",
			"Dockerfile already present, keeping it"))
	} else {
		gen, _ := w.base.runStep(ctx, "generate Dockerfile", "generate_dockerfile", dockerfileArgs)
		steps = append(steps, gen)
		if gen.Status == StatusFailed {
			return finish(name, steps, "aborted: Dockerfile generation failed"), nil
		}
	}

	build, _ := w.base.runStep(ctx, "build image", "build_image", map[string]interface{}{"tag": tag})
	steps = append(steps, build)
	if build.Status == StatusFailed {
		return finish(name, steps, "aborted: image build failed"), nil
	}

	scan, _ := w.base.runStep(ctx, "scan image", "scan_image", map[string]interface{}{"image": tag})
	steps = append(steps, scan)

	return finish(name, steps, fmt.Sprintf("image %s built and scanned", tag)), nil
}
