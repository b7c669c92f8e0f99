package tools

import (
	"context"
	"fmt"

	"github.com/opsmith/containerize-mcp/pkg/types"
)

// BuildImageTool builds a container image from the workspace Dockerfile.
type BuildImageTool struct {
	BaseTool
}

func (t *BuildImageTool) Name() string        { return "build_image" }
func (t *BuildImageTool) Description() string { return "Build a container image from the workspace" }
func (t *BuildImageTool) Category() string    { return CategoryBuild }

func (t *BuildImageTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"tag": map[string]interface{}{
				"type":        "string",
				"description": "Image tag, e.g. myapp:latest",
			},
			"dockerfile": map[string]interface{}{
				"type":        "string",
				"description": "Dockerfile path relative to the workspace (default: Dockerfile)",
			},
		},
		"required": []string{"tag"},
	}
}

func (t *BuildImageTool) Run(ctx context.Context, args map[string]interface{}) (*StandardResponse, error) {
	tag := getStringArg(args, "tag", "")
	if tag == "" {
		return nil, &types.MCPError{
			Code:    types.ErrCodeInvalidInput,
			Message: "tag is required",
			Tool:    t.Name(),
		}
	}
	dockerfile := getStringArg(args, "dockerfile", "Dockerfile")

	if t.Cfg.MockMode {
		return NewResponse(t.Cfg, t.Name(), map[string]interface{}{
			"image": tag,
			"built": false,
		}), nil
	}

	if err := t.requireDocker(t.Name()); err != nil {
		return nil, err
	}
	log, err := t.Docker.BuildImage(ctx, t.Cfg.Workspace, dockerfile, tag)
	if err != nil {
		return nil, &types.MCPError{
			Code:    types.ErrCodeBuildFailed,
			Message: fmt.Sprintf("image build failed: %v", err),
			Tool:    t.Name(),
			Detail:  log,
		}
	}

	return NewResponse(t.Cfg, t.Name(), map[string]interface{}{
		"image": tag,
		"built": true,
		"log":   log,
	}), nil
}

// TagImageTool applies an additional tag, typically the registry-qualified
// name ahead of a push.
type TagImageTool struct {
	BaseTool
}

func (t *TagImageTool) Name() string        { return "tag_image" }
func (t *TagImageTool) Description() string { return "Apply an additional tag to a built image" }
func (t *TagImageTool) Category() string    { return CategoryBuild }

func (t *TagImageTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"source": map[string]interface{}{"type": "string"},
			"target": map[string]interface{}{"type": "string"},
		},
		"required": []string{"source", "target"},
	}
}

func (t *TagImageTool) Run(ctx context.Context, args map[string]interface{}) (*StandardResponse, error) {
	source := getStringArg(args, "source", "")
	target := getStringArg(args, "target", "")
	if source == "" || target == "" {
		return nil, &types.MCPError{
			Code:    types.ErrCodeInvalidInput,
			Message: "source and target are required",
			Tool:    t.Name(),
		}
	}

	if !t.Cfg.MockMode {
		if err := t.requireDocker(t.Name()); err != nil {
			return nil, err
		}
		if err := t.Docker.TagImage(ctx, source, target); err != nil {
			return nil, &types.MCPError{
				Code:    types.ErrCodeBuildFailed,
				Message: fmt.Sprintf("tag failed: %v", err),
				Tool:    t.Name(),
			}
		}
	}

	return NewResponse(t.Cfg, t.Name(), map[string]interface{}{
		"source": source,
		"target": target,
	}), nil
}

// PushImageTool pushes an image to the registry configured for the server.
type PushImageTool struct {
	BaseTool
}

func (t *PushImageTool) Name() string        { return "push_image" }
func (t *PushImageTool) Description() string { return "Push an image to the configured registry" }
func (t *PushImageTool) Category() string    { return CategoryBuild }

func (t *PushImageTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"image": map[string]interface{}{"type": "string"},
		},
		"required": []string{"image"},
	}
}

func (t *PushImageTool) Run(ctx context.Context, args map[string]interface{}) (*StandardResponse, error) {
	img := getStringArg(args, "image", "")
	if img == "" {
		return nil, &types.MCPError{
			Code:    types.ErrCodeInvalidInput,
			Message: "image is required",
			Tool:    t.Name(),
		}
	}

	ref := img
	if t.Cfg.Registry != "" {
		ref = t.Cfg.Registry + "/" + img
	}

	if t.Cfg.MockMode {
		return NewResponse(t.Cfg, t.Name(), map[string]interface{}{
			"image":  ref,
			"pushed": false,
		}), nil
	}

	if err := t.requireDocker(t.Name()); err != nil {
		return nil, err
	}
	if ref != img {
		if err := t.Docker.TagImage(ctx, img, ref); err != nil {
			return nil, &types.MCPError{
				Code:    types.ErrCodeBuildFailed,
				Message: fmt.Sprintf("tag for push failed: %v", err),
				Tool:    t.Name(),
			}
		}
	}
	if err := t.Docker.PushImage(ctx, ref); err != nil {
		return nil, &types.MCPError{
			Code:    types.ErrCodeBuildFailed,
			Message: fmt.Sprintf("push failed: %v", err),
			Tool:    t.Name(),
		}
	}

	return NewResponse(t.Cfg, t.Name(), map[string]interface{}{
		"image":  ref,
		"pushed": true,
	}), nil
}
