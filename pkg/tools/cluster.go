package tools

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/opsmith/containerize-mcp/pkg/rollout"
	"github.com/opsmith/containerize-mcp/pkg/types"
)

// PrepareClusterTool verifies cluster connectivity and makes sure the
// target namespace exists, creating it when missing.
type PrepareClusterTool struct {
	BaseTool
}

func (t *PrepareClusterTool) Name() string { return "prepare_cluster" }
func (t *PrepareClusterTool) Description() string {
	return "Verify cluster access and ensure the target namespace exists"
}
func (t *PrepareClusterTool) Category() string { return CategoryDeploy }

func (t *PrepareClusterTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"namespace": map[string]interface{}{
				"type":        "string",
				"description": "Namespace to prepare (default: configured namespace)",
			},
		},
	}
}

func (t *PrepareClusterTool) Run(ctx context.Context, args map[string]interface{}) (*StandardResponse, error) {
	namespace := getStringArg(args, "namespace", t.Cfg.Namespace)

	if t.Cfg.MockMode {
		return NewToolResultResponse(t.Cfg, t.Name(), []types.Finding{
			{
				Severity: types.SeverityOK,
				Category: types.CategoryCluster,
				Summary:  fmt.Sprintf("mock cluster ready, namespace %s assumed present", namespace),
			},
		}, ""), nil
	}

	if err := t.requireCluster(t.Name()); err != nil {
		return nil, err
	}
	if err := t.Clients.Ping(ctx); err != nil {
		return nil, &types.MCPError{
			Code:    types.ErrCodeClusterUnavail,
			Message: fmt.Sprintf("cluster unreachable: %v", err),
			Tool:    t.Name(),
		}
	}

	var findings []types.Finding
	_, err := t.Clients.Clientset.CoreV1().Namespaces().Get(ctx, namespace, metav1.GetOptions{})
	switch {
	case err == nil:
		findings = append(findings, types.Finding{
			Severity: types.SeverityOK,
			Category: types.CategoryCluster,
			Summary:  fmt.Sprintf("namespace %s exists", namespace),
			Resource: &types.ResourceRef{Kind: "Namespace", Name: namespace},
		})
	case apierrors.IsNotFound(err):
		ns := &corev1.Namespace{
			ObjectMeta: metav1.ObjectMeta{
				Name: namespace,
				Labels: map[string]string{
					rollout.LabelManagedBy: rollout.LabelManagedByValue,
				},
			},
		}
		if _, err := t.Clients.Clientset.CoreV1().Namespaces().Create(ctx, ns, metav1.CreateOptions{}); err != nil {
			return nil, &types.MCPError{
				Code:    types.ErrCodeDeployFailed,
				Message: fmt.Sprintf("failed to create namespace %s: %v", namespace, err),
				Tool:    t.Name(),
			}
		}
		findings = append(findings, types.Finding{
			Severity: types.SeverityInfo,
			Category: types.CategoryCluster,
			Summary:  fmt.Sprintf("created namespace %s", namespace),
			Resource: &types.ResourceRef{Kind: "Namespace", Name: namespace},
		})
	default:
		return nil, &types.MCPError{
			Code:    types.ErrCodeClusterUnavail,
			Message: fmt.Sprintf("failed to read namespace %s: %v", namespace, err),
			Tool:    t.Name(),
		}
	}

	if t.Features != nil {
		f := t.Features()
		if !f.HasMetricsServer {
			findings = append(findings, types.Finding{
				Severity:   types.SeverityInfo,
				Category:   types.CategoryCluster,
				Summary:    "metrics-server not detected",
				Suggestion: "install metrics-server to enable resource-based autoscaling",
			})
		}
	}

	return NewToolResultResponse(t.Cfg, t.Name(), findings, ""), nil
}
