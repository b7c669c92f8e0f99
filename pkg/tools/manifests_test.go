package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsmith/containerize-mcp/pkg/config"
)

func TestBuildDeployment(t *testing.T) {
	dep := buildDeployment(manifestSpec{
		Name:      "web",
		Namespace: "apps",
		Image:     "web:1.0",
		Port:      3000,
		Replicas:  2,
	})

	assert.Equal(t, "web", dep.Name)
	assert.Equal(t, "apps", dep.Namespace)
	assert.Equal(t, int32(2), *dep.Spec.Replicas)
	require.Len(t, dep.Spec.Template.Spec.Containers, 1)

	c := dep.Spec.Template.Spec.Containers[0]
	assert.Equal(t, "web:1.0", c.Image)
	assert.Equal(t, int32(3000), c.Ports[0].ContainerPort)
	require.NotNil(t, c.ReadinessProbe)
	assert.Equal(t, "containerize-mcp", dep.Labels["app.kubernetes.io/managed-by"])
}

func TestBuildService(t *testing.T) {
	svc := buildService(manifestSpec{Name: "web", Namespace: "apps", Port: 3000})
	assert.Equal(t, int32(3000), svc.Spec.Ports[0].Port)
	assert.Equal(t, "web", svc.Spec.Selector["app.kubernetes.io/name"])
}

func TestBuildIngress(t *testing.T) {
	ing := buildIngress(manifestSpec{Name: "web", Namespace: "apps", Port: 3000, Host: "web.example.com"})
	require.Len(t, ing.Spec.Rules, 1)
	assert.Equal(t, "web.example.com", ing.Spec.Rules[0].Host)
	backend := ing.Spec.Rules[0].HTTP.Paths[0].Backend.Service
	assert.Equal(t, "web", backend.Name)
	assert.Equal(t, int32(3000), backend.Port.Number)
}

func TestGenerateManifestsMock(t *testing.T) {
	dir := t.TempDir()
	tool := &GenerateManifestsTool{BaseTool: BaseTool{
		Cfg: config.Config{Workspace: dir, Namespace: "default", MockMode: true},
	}}

	resp, err := tool.Run(context.Background(), map[string]interface{}{
		"name":  "web",
		"image": "web:1.0",
		"host":  "web.example.com",
	})
	require.NoError(t, err)

	data := resp.Data.(map[string]interface{})
	rendered := data["manifests"].(map[string]string)
	assert.Contains(t, rendered, "deployment.yaml")
	assert.Contains(t, rendered, "service.yaml")
	assert.Contains(t, rendered, "ingress.yaml", "mock mode assumes ingress support")
	assert.Contains(t, rendered["deployment.yaml"], "kind: Deployment")
	assert.Empty(t, data["files"], "mock mode must not write files")
	assert.NoDirExists(t, dir+"/k8s")
}

func TestGenerateManifestsRequiresNameAndImage(t *testing.T) {
	tool := &GenerateManifestsTool{BaseTool: BaseTool{
		Cfg: config.Config{Workspace: t.TempDir(), MockMode: true},
	}}
	_, err := tool.Run(context.Background(), map[string]interface{}{"name": "web"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name and image are required")
}
