package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"
	"sigs.k8s.io/yaml"

	"github.com/opsmith/containerize-mcp/pkg/rollout"
	"github.com/opsmith/containerize-mcp/pkg/types"
)

// GenerateManifestsTool renders Deployment, Service and optionally Ingress
// manifests into <workspace>/k8s/. Ingress is only emitted when the
// cluster advertises networking.k8s.io.
type GenerateManifestsTool struct {
	BaseTool
}

func (t *GenerateManifestsTool) Name() string { return "generate_k8s_manifests" }
func (t *GenerateManifestsTool) Description() string {
	return "Generate Kubernetes manifests for the containerized application"
}
func (t *GenerateManifestsTool) Category() string { return CategoryDeploy }

func (t *GenerateManifestsTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"name": map[string]interface{}{
				"type":        "string",
				"description": "Application name used for all resources",
			},
			"image": map[string]interface{}{
				"type":        "string",
				"description": "Image reference to deploy",
			},
			"port": map[string]interface{}{
				"type":        "integer",
				"description": "Container port (default: 8080)",
			},
			"replicas": map[string]interface{}{
				"type":        "integer",
				"description": "Replica count (default: 1)",
			},
			"host": map[string]interface{}{
				"type":        "string",
				"description": "Ingress hostname; omit to skip Ingress generation",
			},
		},
		"required": []string{"name", "image"},
	}
}

func (t *GenerateManifestsTool) Run(ctx context.Context, args map[string]interface{}) (*StandardResponse, error) {
	name := getStringArg(args, "name", "")
	img := getStringArg(args, "image", "")
	if name == "" || img == "" {
		return nil, &types.MCPError{
			Code:    types.ErrCodeInvalidInput,
			Message: "name and image are required",
			Tool:    t.Name(),
		}
	}
	port := getIntArg(args, "port", 8080)
	replicas := getIntArg(args, "replicas", 1)
	host := getStringArg(args, "host", "")

	spec := manifestSpec{
		Name:      name,
		Namespace: t.Cfg.Namespace,
		Image:     img,
		Port:      int32(port),
		Replicas:  int32(replicas),
		Host:      host,
	}

	var findings []types.Finding
	docs := map[string]interface{}{
		"deployment.yaml": buildDeployment(spec),
		"service.yaml":    buildService(spec),
	}
	if host != "" {
		hasIngress := t.Cfg.MockMode || (t.Features != nil && t.Features().HasIngress)
		if hasIngress {
			docs["ingress.yaml"] = buildIngress(spec)
		} else {
			findings = append(findings, types.Finding{
				Severity:   types.SeverityWarning,
				Category:   types.CategoryManifest,
				Summary:    "cluster does not serve networking.k8s.io, skipping Ingress",
				Suggestion: "install an ingress controller or expose the Service directly",
			})
		}
	}

	outDir := filepath.Join(t.Cfg.Workspace, "k8s")
	written := make([]string, 0, len(docs))
	rendered := make(map[string]string, len(docs))
	for file, obj := range docs {
		data, err := yaml.Marshal(obj)
		if err != nil {
			return nil, &types.MCPError{
				Code:    types.ErrCodeInternalError,
				Message: fmt.Sprintf("failed to render %s: %v", file, err),
				Tool:    t.Name(),
			}
		}
		rendered[file] = string(data)
		if t.Cfg.MockMode {
			continue
		}
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return nil, &types.MCPError{
				Code:    types.ErrCodeInternalError,
				Message: fmt.Sprintf("failed to create %s: %v", outDir, err),
				Tool:    t.Name(),
			}
		}
		path := filepath.Join(outDir, file)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, &types.MCPError{
				Code:    types.ErrCodeInternalError,
				Message: fmt.Sprintf("failed to write %s: %v", path, err),
				Tool:    t.Name(),
			}
		}
		written = append(written, path)
	}

	return NewResponse(t.Cfg, t.Name(), map[string]interface{}{
		"directory": outDir,
		"files":     written,
		"manifests": rendered,
		"findings":  findings,
	}), nil
}

type manifestSpec struct {
	Name      string
	Namespace string
	Image     string
	Port      int32
	Replicas  int32
	Host      string
}

func commonLabels(name string) map[string]string {
	return map[string]string{
		"app.kubernetes.io/name": name,
		rollout.LabelManagedBy:   rollout.LabelManagedByValue,
	}
}

func buildDeployment(spec manifestSpec) *appsv1.Deployment {
	labels := commonLabels(spec.Name)
	replicas := spec.Replicas
	return &appsv1.Deployment{
		TypeMeta: metav1.TypeMeta{APIVersion: "apps/v1", Kind: "Deployment"},
		ObjectMeta: metav1.ObjectMeta{
			Name:      spec.Name,
			Namespace: spec.Namespace,
			Labels:    labels,
		},
		Spec: appsv1.DeploymentSpec{
			Replicas: &replicas,
			Selector: &metav1.LabelSelector{MatchLabels: labels},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{Labels: labels},
				Spec: corev1.PodSpec{
					Containers: []corev1.Container{
						{
							Name:  spec.Name,
							Image: spec.Image,
							Ports: []corev1.ContainerPort{
								{ContainerPort: spec.Port, Name: "http"},
							},
							ReadinessProbe: &corev1.Probe{
								ProbeHandler: corev1.ProbeHandler{
									TCPSocket: &corev1.TCPSocketAction{
										Port: intstr.FromInt32(spec.Port),
									},
								},
								InitialDelaySeconds: 5,
								PeriodSeconds:       10,
							},
						},
					},
				},
			},
		},
	}
}

func buildService(spec manifestSpec) *corev1.Service {
	labels := commonLabels(spec.Name)
	return &corev1.Service{
		TypeMeta: metav1.TypeMeta{APIVersion: "v1", Kind: "Service"},
		ObjectMeta: metav1.ObjectMeta{
			Name:      spec.Name,
			Namespace: spec.Namespace,
			Labels:    labels,
		},
		Spec: corev1.ServiceSpec{
			Selector: labels,
			Ports: []corev1.ServicePort{
				{
					Name:       "http",
					Port:       spec.Port,
					TargetPort: intstr.FromInt32(spec.Port),
				},
			},
		},
	}
}

func buildIngress(spec manifestSpec) *networkingv1.Ingress {
	pathType := networkingv1.PathTypePrefix
	return &networkingv1.Ingress{
		TypeMeta: metav1.TypeMeta{APIVersion: "networking.k8s.io/v1", Kind: "Ingress"},
		ObjectMeta: metav1.ObjectMeta{
			Name:      spec.Name,
			Namespace: spec.Namespace,
			Labels:    commonLabels(spec.Name),
		},
		Spec: networkingv1.IngressSpec{
			Rules: []networkingv1.IngressRule{
				{
					Host: spec.Host,
					IngressRuleValue: networkingv1.IngressRuleValue{
						HTTP: &networkingv1.HTTPIngressRuleValue{
							Paths: []networkingv1.HTTPIngressPath{
								{
									Path:     "/",
									PathType: &pathType,
									Backend: networkingv1.IngressBackend{
										Service: &networkingv1.IngressServiceBackend{
											Name: spec.Name,
											Port: networkingv1.ServiceBackendPort{Number: spec.Port},
										},
									},
								},
							},
						},
					},
				},
			},
		},
	}
}
