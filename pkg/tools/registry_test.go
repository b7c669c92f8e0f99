package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTool struct {
	name     string
	category string
}

func (s *stubTool) Name() string                        { return s.name }
func (s *stubTool) Description() string                 { return "stub " + s.name }
func (s *stubTool) Category() string                    { return s.category }
func (s *stubTool) InputSchema() map[string]interface{} { return map[string]interface{}{} }
func (s *stubTool) Run(ctx context.Context, args map[string]interface{}) (*StandardResponse, error) {
	return &StandardResponse{Tool: s.name}, nil
}

func TestRegistryRegisterAndGet(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&stubTool{name: "a", category: CategoryUtility}))

	got, ok := r.Get("a")
	require.True(t, ok)
	assert.Equal(t, "a", got.Name())

	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&stubTool{name: "a"}))
	err := r.Register(&stubTool{name: "a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
	assert.Equal(t, 1, r.Count())
}

func TestRegistryPreservesRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, r.Register(&stubTool{name: name, category: CategoryBuild}))
	}

	descs := r.Descriptors()
	require.Len(t, descs, 3)
	assert.Equal(t, "zeta", descs[0].Name)
	assert.Equal(t, "alpha", descs[1].Name)
	assert.Equal(t, "mid", descs[2].Name)
	assert.Equal(t, CategoryBuild, descs[0].Category)
}
