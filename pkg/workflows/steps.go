package workflows

import (
	"context"
	"fmt"

	"github.com/opsmith/containerize-mcp/pkg/types"
)

// runStep invokes a tool and folds its findings into a StepResult. The
// step fails when the tool errors or reports a critical finding.
func (b workflowBase) runStep(ctx context.Context, stepName, tool string, args map[string]interface{}) (StepResult, *StepOutput) {
	out, err := b.runner.RunTool(ctx, tool, args)
	if err != nil {
		return StepResult{
			StepName: stepName,
			Tool:     tool,
			Status:   StatusFailed,
			Output:   err.Error(),
		}, nil
	}

	result := StepResult{
		StepName: stepName,
		Tool:     tool,
		Status:   StatusPassed,
		Findings: out.Findings,
	}
	for _, f := range out.Findings {
		switch f.Severity {
		case types.SeverityCritical:
			result.Status = StatusFailed
		case types.SeverityWarning:
			if result.Status == StatusPassed {
				result.Status = StatusWarning
			}
		}
	}
	return result, out
}

func skippedStep(stepName, tool, reason string) StepResult {
	return StepResult{
		StepName: stepName,
		Tool:     tool,
		Status:   StatusSkipped,
		Output:   reason,
	}
}

// finish computes the overall status from the collected steps.
func finish(name string, steps []StepResult, summary string) *WorkflowResult {
	status := StatusCompleted
	for _, s := range steps {
		switch s.Status {
		case StatusFailed:
			status = StatusAborted
		case StatusWarning, StatusSkipped:
			if status == StatusCompleted {
				status = StatusPartial
			}
		}
	}
	return &WorkflowResult{
		WorkflowName: name,
		Status:       status,
		Steps:        steps,
		Summary:      summary,
	}
}

func stringArg(args map[string]interface{}, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func intArg(args map[string]interface{}, key string, def int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return def
}

func requireArg(args map[string]interface{}, key string) (string, error) {
	v := stringArg(args, key)
	if v == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return v, nil
}
