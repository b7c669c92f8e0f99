package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/opsmith/containerize-mcp/pkg/types"
	"github.com/opsmith/containerize-mcp/pkg/workflows"
)

// RegistryRunner adapts the tool registry to the workflow engine.
type RegistryRunner struct {
	Registry *Registry
}

func (r *RegistryRunner) RunTool(ctx context.Context, name string, args map[string]interface{}) (*workflows.StepOutput, error) {
	tool, ok := r.Registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
	if args == nil {
		args = map[string]interface{}{}
	}

	resp, err := tool.Run(ctx, args)
	if err != nil {
		return nil, err
	}
	return stepOutputFrom(resp.Data)
}

// stepOutputFrom normalizes a tool's response payload through JSON so the
// workflow engine sees plain maps regardless of the concrete types.
func stepOutputFrom(data interface{}) (*workflows.StepOutput, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encoding tool response: %w", err)
	}

	var payload struct {
		Findings []types.Finding `json:"findings"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decoding tool findings: %w", err)
	}

	out := &workflows.StepOutput{Findings: payload.Findings}
	if err := json.Unmarshal(raw, &out.Data); err != nil {
		// Non-object payloads carry no step data.
		out.Data = nil
	}
	return out, nil
}

// ListWorkflowsTool exposes the available multi-step workflows.
type ListWorkflowsTool struct {
	BaseTool
	Workflows *workflows.Registry
}

func (t *ListWorkflowsTool) Name() string        { return "list_workflows" }
func (t *ListWorkflowsTool) Description() string { return "List the available multi-step workflows" }
func (t *ListWorkflowsTool) Category() string    { return CategoryWorkflow }

func (t *ListWorkflowsTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

func (t *ListWorkflowsTool) Run(ctx context.Context, args map[string]interface{}) (*StandardResponse, error) {
	return NewResponse(t.Cfg, t.Name(), map[string]interface{}{
		"workflows": t.Workflows.List(),
	}), nil
}

// RunWorkflowTool executes a named workflow end to end.
type RunWorkflowTool struct {
	BaseTool
	Workflows *workflows.Registry
}

func (t *RunWorkflowTool) Name() string        { return "run_workflow" }
func (t *RunWorkflowTool) Description() string { return "Run a multi-step workflow by name" }
func (t *RunWorkflowTool) Category() string    { return CategoryWorkflow }

func (t *RunWorkflowTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"workflow": map[string]interface{}{
				"type":        "string",
				"description": "Workflow name, see list_workflows",
			},
			"args": map[string]interface{}{
				"type":        "object",
				"description": "Arguments passed through to the workflow",
			},
		},
		"required": []string{"workflow"},
	}
}

func (t *RunWorkflowTool) Run(ctx context.Context, args map[string]interface{}) (*StandardResponse, error) {
	name := getStringArg(args, "workflow", "")
	if name == "" {
		return nil, &types.MCPError{
			Code:    types.ErrCodeInvalidInput,
			Message: "workflow is required",
			Tool:    t.Name(),
		}
	}
	wf, ok := t.Workflows.Get(name)
	if !ok {
		return nil, &types.MCPError{
			Code:    types.ErrCodeInvalidInput,
			Message: fmt.Sprintf("unknown workflow: %s", name),
			Tool:    t.Name(),
		}
	}

	wfArgs, _ := args["args"].(map[string]interface{})
	result, err := wf.Execute(ctx, wfArgs)
	if err != nil {
		return nil, &types.MCPError{
			Code:    types.ErrCodeWorkflowAborted,
			Message: fmt.Sprintf("workflow %s failed: %v", name, err),
			Tool:    t.Name(),
		}
	}

	return NewResponse(t.Cfg, t.Name(), result), nil
}
