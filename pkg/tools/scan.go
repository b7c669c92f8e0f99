package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/opsmith/containerize-mcp/pkg/docker"
	"github.com/opsmith/containerize-mcp/pkg/types"
)

// ScanImageTool runs a static policy check over the image configuration.
// It inspects the built image rather than shelling out to an external
// scanner, so it works anywhere the Docker daemon does.
type ScanImageTool struct {
	BaseTool
}

func (t *ScanImageTool) Name() string { return "scan_image" }
func (t *ScanImageTool) Description() string {
	return "Check a built image against container hardening policies"
}
func (t *ScanImageTool) Category() string { return CategoryBuild }

func (t *ScanImageTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"image": map[string]interface{}{"type": "string"},
		},
		"required": []string{"image"},
	}
}

func (t *ScanImageTool) Run(ctx context.Context, args map[string]interface{}) (*StandardResponse, error) {
	img := getStringArg(args, "image", "")
	if img == "" {
		return nil, &types.MCPError{
			Code:    types.ErrCodeInvalidInput,
			Message: "image is required",
			Tool:    t.Name(),
		}
	}

	if t.Cfg.MockMode {
		return NewToolResultResponse(t.Cfg, t.Name(), []types.Finding{
			{
				Severity: types.SeverityOK,
				Category: types.CategorySecurity,
				Summary:  "mock scan passed",
				Resource: &types.ResourceRef{Kind: "Image", Name: img},
			},
		}, img), nil
	}

	if err := t.requireDocker(t.Name()); err != nil {
		return nil, err
	}
	info, err := t.Docker.InspectImage(ctx, img)
	if err != nil {
		return nil, &types.MCPError{
			Code:    types.ErrCodeDockerUnavail,
			Message: fmt.Sprintf("failed to inspect %s: %v", img, err),
			Tool:    t.Name(),
		}
	}

	findings := scanFindings(img, info)
	return NewToolResultResponse(t.Cfg, t.Name(), findings, img), nil
}

func scanFindings(img string, info *docker.ImageInfo) []types.Finding {
	ref := types.ResourceRef{Kind: "Image", Name: img}
	var findings []types.Finding

	if info.User == "" || info.User == "root" || info.User == "0" {
		findings = append(findings, types.Finding{
			Severity:   types.SeverityWarning,
			Category:   types.CategorySecurity,
			Summary:    "image runs as root",
			Resource:   &ref,
			Suggestion: "add a USER directive with a non-root user",
		})
	}
	if strings.HasSuffix(strings.SplitN(img, "@", 2)[0], ":latest") || !strings.Contains(img, ":") {
		findings = append(findings, types.Finding{
			Severity:   types.SeverityWarning,
			Category:   types.CategoryImage,
			Summary:    "image uses a mutable latest tag",
			Resource:   &ref,
			Suggestion: "pin a version tag so deploys are reproducible",
		})
	}
	if info.SizeBytes > 1<<30 {
		findings = append(findings, types.Finding{
			Severity:   types.SeverityWarning,
			Category:   types.CategoryImage,
			Summary:    fmt.Sprintf("image is %.1f GB", float64(info.SizeBytes)/float64(1<<30)),
			Resource:   &ref,
			Suggestion: "use a multi-stage build or a slimmer base image",
		})
	}
	if len(info.ExposedPorts) == 0 {
		findings = append(findings, types.Finding{
			Severity:   types.SeverityInfo,
			Category:   types.CategoryImage,
			Summary:    "image exposes no ports",
			Resource:   &ref,
			Suggestion: "add an EXPOSE directive matching the listen port",
		})
	}

	if len(findings) == 0 {
		findings = append(findings, types.Finding{
			Severity: types.SeverityOK,
			Category: types.CategorySecurity,
			Summary:  "no policy violations found",
			Resource: &ref,
		})
	}
	return findings
}
