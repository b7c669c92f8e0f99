package tools

import (
	"context"
	"time"

	"github.com/opsmith/containerize-mcp/pkg/config"
	"github.com/opsmith/containerize-mcp/pkg/discovery"
	"github.com/opsmith/containerize-mcp/pkg/docker"
	"github.com/opsmith/containerize-mcp/pkg/k8s"
	"github.com/opsmith/containerize-mcp/pkg/rollout"
	"github.com/opsmith/containerize-mcp/pkg/types"
)

// Tool categories used for grouping in listings.
const (
	CategoryUtility  = "utility"
	CategoryAnalysis = "analysis"
	CategoryBuild    = "build"
	CategoryDeploy   = "deploy"
	CategoryWorkflow = "workflow"
)

type Tool interface {
	Name() string
	Description() string
	Category() string
	InputSchema() map[string]interface{}
	Run(ctx context.Context, args map[string]interface{}) (*StandardResponse, error)
}

// StandardResponse is the envelope every tool returns.
type StandardResponse struct {
	Workspace string      `json:"workspace"`
	Timestamp string      `json:"timestamp"`
	Tool      string      `json:"tool"`
	Mock      bool        `json:"mock,omitempty"`
	Data      interface{} `json:"data"`
}

func NewResponse(cfg config.Config, toolName string, data interface{}) *StandardResponse {
	return &StandardResponse{
		Workspace: cfg.Workspace,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Tool:      toolName,
		Mock:      cfg.MockMode,
		Data:      data,
	}
}

// NewToolResultResponse wraps findings in the standard envelope with
// auto-populated metadata.
func NewToolResultResponse(cfg config.Config, toolName string, findings []types.Finding, image string) *StandardResponse {
	return &StandardResponse{
		Workspace: cfg.Workspace,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Tool:      toolName,
		Mock:      cfg.MockMode,
		Data: &types.ToolResult{
			Findings: findings,
			Metadata: types.WorkspaceMetadata{
				Workspace: cfg.Workspace,
				Timestamp: time.Now().UTC(),
				Namespace: cfg.Namespace,
				Image:     image,
			},
		},
	}
}

// BaseTool carries the shared collaborator handles. Docker and Clients
// are nil in mock mode; tools must short-circuit before touching them.
type BaseTool struct {
	Cfg      config.Config
	Docker   *docker.Client
	Clients  *k8s.Clients
	Verifier *rollout.Verifier
	Features func() discovery.Features
}

// requireDocker guards tools that need the daemon when it was not
// connected at startup.
func (b BaseTool) requireDocker(tool string) error {
	if b.Docker == nil {
		return &types.MCPError{
			Code:    types.ErrCodeDockerUnavail,
			Message: "Docker daemon is not connected",
			Tool:    tool,
		}
	}
	return nil
}

func (b BaseTool) requireCluster(tool string) error {
	if b.Clients == nil {
		return &types.MCPError{
			Code:    types.ErrCodeClusterUnavail,
			Message: "Kubernetes cluster is not connected",
			Tool:    tool,
		}
	}
	return nil
}

func getStringArg(args map[string]interface{}, key string, defaultVal string) string {
	if v, ok := args[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return defaultVal
}

func getIntArg(args map[string]interface{}, key string, defaultVal int) int {
	if v, ok := args[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return defaultVal
}

func getBoolArg(args map[string]interface{}, key string, defaultVal bool) bool {
	if v, ok := args[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return defaultVal
}
