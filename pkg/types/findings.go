package types

// Severity levels for findings.
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
	SeverityInfo     = "info"
	SeverityOK       = "ok"
)

// Category constants for findings.
const (
	CategoryAnalysis   = "analysis"
	CategoryDockerfile = "dockerfile"
	CategoryImage      = "image"
	CategorySecurity   = "security"
	CategoryManifest   = "manifest"
	CategoryDeploy     = "deploy"
	CategoryCluster    = "cluster"
)

// Finding represents a single result emitted by a tool or workflow step.
type Finding struct {
	Severity   string       `json:"severity"`
	Category   string       `json:"category"`
	Resource   *ResourceRef `json:"resource,omitempty"`
	Summary    string       `json:"summary"`
	Detail     string       `json:"detail,omitempty"`
	Suggestion string       `json:"suggestion,omitempty"`
}

// ResourceRef identifies a Kubernetes resource or container image.
type ResourceRef struct {
	Kind       string `json:"kind"`
	Namespace  string `json:"namespace,omitempty"`
	Name       string `json:"name"`
	APIVersion string `json:"apiVersion,omitempty"`
}

// FilterFindings returns a copy of findings with Detail and Suggestion stripped when detail is false.
func FilterFindings(findings []Finding, detail bool) []Finding {
	if detail {
		return findings
	}
	filtered := make([]Finding, len(findings))
	for i, f := range findings {
		filtered[i] = Finding{
			Severity: f.Severity,
			Category: f.Category,
			Resource: f.Resource,
			Summary:  f.Summary,
		}
	}
	return filtered
}
