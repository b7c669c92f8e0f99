package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/restmapper"
	"sigs.k8s.io/yaml"

	"github.com/opsmith/containerize-mcp/pkg/rollout"
	"github.com/opsmith/containerize-mcp/pkg/types"
)

// DeployApplicationTool applies the manifests under <workspace>/k8s/
// with the dynamic client, creating or updating each resource.
type DeployApplicationTool struct {
	BaseTool
}

func (t *DeployApplicationTool) Name() string { return "deploy_application" }
func (t *DeployApplicationTool) Description() string {
	return "Apply the generated manifests to the cluster"
}
func (t *DeployApplicationTool) Category() string { return CategoryDeploy }

func (t *DeployApplicationTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"dir": map[string]interface{}{
				"type":        "string",
				"description": "Manifest directory relative to the workspace (default: k8s)",
			},
			"namespace": map[string]interface{}{
				"type":        "string",
				"description": "Namespace override for namespaced resources",
			},
		},
	}
}

func (t *DeployApplicationTool) Run(ctx context.Context, args map[string]interface{}) (*StandardResponse, error) {
	dir := filepath.Join(t.Cfg.Workspace, getStringArg(args, "dir", "k8s"))
	namespace := getStringArg(args, "namespace", t.Cfg.Namespace)

	objs, err := loadManifests(dir)
	if err != nil {
		return nil, &types.MCPError{
			Code:    types.ErrCodeInvalidInput,
			Message: fmt.Sprintf("failed to load manifests from %s: %v", dir, err),
			Tool:    t.Name(),
		}
	}
	if len(objs) == 0 {
		return nil, &types.MCPError{
			Code:    types.ErrCodeInvalidInput,
			Message: fmt.Sprintf("no manifests found in %s; run generate_k8s_manifests first", dir),
			Tool:    t.Name(),
		}
	}

	if t.Cfg.MockMode {
		findings := make([]types.Finding, 0, len(objs))
		for _, obj := range objs {
			findings = append(findings, types.Finding{
				Severity: types.SeverityInfo,
				Category: types.CategoryDeploy,
				Summary:  fmt.Sprintf("would apply %s/%s", obj.GetKind(), obj.GetName()),
				Resource: refFor(obj, namespace),
			})
		}
		return NewToolResultResponse(t.Cfg, t.Name(), findings, ""), nil
	}

	if err := t.requireCluster(t.Name()); err != nil {
		return nil, err
	}
	groupResources, err := restmapper.GetAPIGroupResources(t.Clients.Discovery)
	if err != nil {
		return nil, &types.MCPError{
			Code:    types.ErrCodeClusterUnavail,
			Message: fmt.Sprintf("failed to discover API resources: %v", err),
			Tool:    t.Name(),
		}
	}
	mapper := restmapper.NewDiscoveryRESTMapper(groupResources)

	var findings []types.Finding
	for _, obj := range objs {
		gvk := obj.GroupVersionKind()
		mapping, err := mapper.RESTMapping(gvk.GroupKind(), gvk.Version)
		if err != nil {
			return nil, &types.MCPError{
				Code:    types.ErrCodeDeployFailed,
				Message: fmt.Sprintf("no resource mapping for %s: %v", gvk, err),
				Tool:    t.Name(),
			}
		}

		ri := t.Clients.Dynamic.Resource(mapping.Resource)
		var target dynamic.ResourceInterface = ri
		if mapping.Scope.Name() == meta.RESTScopeNameNamespace {
			ns := obj.GetNamespace()
			if ns == "" {
				ns = namespace
				obj.SetNamespace(ns)
			}
			target = ri.Namespace(ns)
		}

		action, err := applyObject(ctx, target, obj)
		if err != nil {
			return nil, &types.MCPError{
				Code:    types.ErrCodeDeployFailed,
				Message: fmt.Sprintf("failed to apply %s/%s: %v", obj.GetKind(), obj.GetName(), err),
				Tool:    t.Name(),
			}
		}
		findings = append(findings, types.Finding{
			Severity: types.SeverityOK,
			Category: types.CategoryDeploy,
			Summary:  fmt.Sprintf("%s %s/%s", action, obj.GetKind(), obj.GetName()),
			Resource: refFor(obj, namespace),
		})
	}

	return NewToolResultResponse(t.Cfg, t.Name(), findings, ""), nil
}

type resourceClient interface {
	Get(ctx context.Context, name string, options metav1.GetOptions, subresources ...string) (*unstructured.Unstructured, error)
	Create(ctx context.Context, obj *unstructured.Unstructured, options metav1.CreateOptions, subresources ...string) (*unstructured.Unstructured, error)
	Update(ctx context.Context, obj *unstructured.Unstructured, options metav1.UpdateOptions, subresources ...string) (*unstructured.Unstructured, error)
}

func applyObject(ctx context.Context, c resourceClient, obj *unstructured.Unstructured) (string, error) {
	existing, err := c.Get(ctx, obj.GetName(), metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		_, err := c.Create(ctx, obj, metav1.CreateOptions{})
		return "created", err
	}
	if err != nil {
		return "", err
	}
	obj.SetResourceVersion(existing.GetResourceVersion())
	_, err = c.Update(ctx, obj, metav1.UpdateOptions{})
	return "updated", err
}

func refFor(obj *unstructured.Unstructured, fallbackNS string) *types.ResourceRef {
	ns := obj.GetNamespace()
	if ns == "" {
		ns = fallbackNS
	}
	return &types.ResourceRef{
		Kind:       obj.GetKind(),
		Namespace:  ns,
		Name:       obj.GetName(),
		APIVersion: obj.GetAPIVersion(),
	}
}

// loadManifests reads every .yaml/.yml file in dir, splitting multi-doc
// files on the document separator.
func loadManifests(dir string) ([]*unstructured.Unstructured, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var objs []*unstructured.Unstructured
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		for _, doc := range strings.Split(string(data), "\n---") {
			if strings.TrimSpace(doc) == "" {
				continue
			}
			var m map[string]interface{}
			if err := yaml.Unmarshal([]byte(doc), &m); err != nil {
				return nil, fmt.Errorf("%s: %w", e.Name(), err)
			}
			if len(m) == 0 {
				continue
			}
			obj := &unstructured.Unstructured{Object: m}
			if obj.GetKind() == "" || obj.GetName() == "" {
				return nil, fmt.Errorf("%s: document missing kind or metadata.name", e.Name())
			}
			objs = append(objs, obj)
		}
	}
	return objs, nil
}

// VerifyDeploymentTool waits for the deployment rollout and optionally
// probes the service from inside the cluster.
type VerifyDeploymentTool struct {
	BaseTool
}

func (t *VerifyDeploymentTool) Name() string { return "verify_deployment" }
func (t *VerifyDeploymentTool) Description() string {
	return "Wait for the rollout to finish and probe the service in-cluster"
}
func (t *VerifyDeploymentTool) Category() string { return CategoryDeploy }

func (t *VerifyDeploymentTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"name": map[string]interface{}{
				"type":        "string",
				"description": "Deployment name",
			},
			"namespace": map[string]interface{}{"type": "string"},
			"timeoutSeconds": map[string]interface{}{
				"type":        "integer",
				"description": "Rollout wait timeout (default: 120)",
			},
			"probePort": map[string]interface{}{
				"type":        "integer",
				"description": "Service port to probe; 0 skips the probe",
			},
			"probePath": map[string]interface{}{
				"type":        "string",
				"description": "HTTP path for the probe (default: /)",
			},
		},
		"required": []string{"name"},
	}
}

func (t *VerifyDeploymentTool) Run(ctx context.Context, args map[string]interface{}) (*StandardResponse, error) {
	name := getStringArg(args, "name", "")
	if name == "" {
		return nil, &types.MCPError{
			Code:    types.ErrCodeInvalidInput,
			Message: "name is required",
			Tool:    t.Name(),
		}
	}
	namespace := getStringArg(args, "namespace", t.Cfg.Namespace)
	timeout := time.Duration(getIntArg(args, "timeoutSeconds", 120)) * time.Second
	probePort := getIntArg(args, "probePort", 0)
	probePath := getStringArg(args, "probePath", "/")

	if t.Cfg.MockMode {
		return NewToolResultResponse(t.Cfg, t.Name(), []types.Finding{
			{
				Severity: types.SeverityOK,
				Category: types.CategoryDeploy,
				Summary:  fmt.Sprintf("mock rollout of %s assumed ready", name),
				Resource: &types.ResourceRef{Kind: "Deployment", Namespace: namespace, Name: name},
			},
		}, ""), nil
	}

	if err := t.requireCluster(t.Name()); err != nil {
		return nil, err
	}
	status, err := rollout.WaitForDeployment(ctx, t.Clients, namespace, name, timeout)
	if err != nil {
		return nil, &types.MCPError{
			Code:    types.ErrCodeDeployFailed,
			Message: fmt.Sprintf("rollout watch failed: %v", err),
			Tool:    t.Name(),
		}
	}

	ref := &types.ResourceRef{Kind: "Deployment", Namespace: namespace, Name: name, APIVersion: "apps/v1"}
	var findings []types.Finding
	if !status.Ready {
		finding := types.Finding{
			Severity: types.SeverityCritical,
			Category: types.CategoryDeploy,
			Summary:  fmt.Sprintf("rollout of %s did not complete: %s", name, status.Message),
			Resource: ref,
		}
		issues, ierr := rollout.PodIssues(ctx, t.Clients, namespace, "app.kubernetes.io/name="+name)
		if ierr == nil && len(issues) > 0 {
			finding.Detail = strings.Join(issues, "; ")
		}
		return NewToolResultResponse(t.Cfg, t.Name(), []types.Finding{finding}, ""), nil
	}

	findings = append(findings, types.Finding{
		Severity: types.SeverityOK,
		Category: types.CategoryDeploy,
		Summary: fmt.Sprintf("rollout complete: %d/%d replicas ready in %s",
			status.ReadyReplicas, status.DesiredReplicas, status.Duration.Round(time.Second)),
		Resource: ref,
	})

	if probePort > 0 && t.Verifier != nil {
		result, err := t.Verifier.Execute(ctx, rollout.CheckRequest{
			Service:   name,
			Namespace: namespace,
			Port:      probePort,
			Path:      probePath,
			Timeout:   time.Minute,
		})
		switch {
		case err != nil:
			findings = append(findings, types.Finding{
				Severity: types.SeverityWarning,
				Category: types.CategoryDeploy,
				Summary:  fmt.Sprintf("in-cluster probe failed to run: %v", err),
				Resource: ref,
			})
		case result.Success:
			findings = append(findings, types.Finding{
				Severity: types.SeverityOK,
				Category: types.CategoryDeploy,
				Summary:  fmt.Sprintf("service %s answered on port %d", name, probePort),
				Resource: ref,
			})
		default:
			findings = append(findings, types.Finding{
				Severity:   types.SeverityWarning,
				Category:   types.CategoryDeploy,
				Summary:    fmt.Sprintf("service %s did not answer on port %d (exit %d)", name, probePort, result.ExitCode),
				Detail:     result.Output,
				Resource:   ref,
				Suggestion: "check the container logs and the Service selector",
			})
		}
	}

	return NewToolResultResponse(t.Cfg, t.Name(), findings, ""), nil
}
