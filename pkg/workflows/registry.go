package workflows

import (
	"context"
	"sync"

	"github.com/opsmith/containerize-mcp/pkg/config"
	"github.com/opsmith/containerize-mcp/pkg/discovery"
	"github.com/opsmith/containerize-mcp/pkg/types"
)

// ToolRunner executes a registered tool by name. It is implemented by the
// tool registry adapter so workflows stay decoupled from tool wiring.
type ToolRunner interface {
	RunTool(ctx context.Context, name string, args map[string]interface{}) (*StepOutput, error)
}

// StepOutput is what a tool invocation hands back to the workflow engine.
type StepOutput struct {
	Findings []types.Finding
	Data     map[string]interface{}
}

// Workflow is the interface all workflow implementations satisfy.
type Workflow interface {
	Definition() WorkflowDefinition
	Execute(ctx context.Context, args map[string]interface{}) (*WorkflowResult, error)
}

// Registry manages the available workflows.
type Registry struct {
	workflows map[string]Workflow
	order     []string
	mu        sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		workflows: make(map[string]Workflow),
	}
}

func (r *Registry) Register(w Workflow) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := w.Definition().Name
	if _, exists := r.workflows[name]; !exists {
		r.order = append(r.order, name)
	}
	r.workflows[name] = w
}

func (r *Registry) Get(name string) (Workflow, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.workflows[name]
	return w, ok
}

// List returns all workflow definitions in registration order.
func (r *Registry) List() []WorkflowDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]WorkflowDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.workflows[name].Definition())
	}
	return defs
}

// RegisterAll wires the standard workflows against the given runner.
func RegisterAll(r *Registry, cfg config.Config, runner ToolRunner, features func() discovery.Features) {
	base := workflowBase{cfg: cfg, runner: runner, features: features}
	r.Register(&ContainerizeWorkflow{base: base})
	r.Register(&DeployWorkflow{base: base})
}

// workflowBase provides shared dependencies for workflow implementations.
type workflowBase struct {
	cfg      config.Config
	runner   ToolRunner
	features func() discovery.Features
}
