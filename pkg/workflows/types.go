package workflows

import (
	"github.com/opsmith/containerize-mcp/pkg/types"
)

// Step statuses reported for each workflow step.
const (
	StatusPassed  = "passed"
	StatusFailed  = "failed"
	StatusWarning = "warning"
	StatusSkipped = "skipped"
)

// Overall workflow statuses.
const (
	StatusCompleted = "completed"
	StatusAborted   = "aborted"
	StatusPartial   = "partial"
)

// StepResult holds the outcome of a single workflow step.
type StepResult struct {
	StepName string          `json:"stepName"`
	Tool     string          `json:"tool"`
	Status   string          `json:"status"`
	Findings []types.Finding `json:"findings,omitempty"`
	Output   string          `json:"output,omitempty"`
}

// WorkflowResult is the complete result of executing a workflow.
type WorkflowResult struct {
	WorkflowName string       `json:"workflowName"`
	Status       string       `json:"status"`
	Steps        []StepResult `json:"steps"`
	Summary      string       `json:"summary"`
}

// WorkflowDefinition describes a workflow for listing.
type WorkflowDefinition struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  []WorkflowParam `json:"parameters"`
}

// WorkflowParam describes a workflow input parameter.
type WorkflowParam struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Description string `json:"description"`
}
