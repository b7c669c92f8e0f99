package types

import "time"

// WorkspaceMetadata provides context for every tool response.
type WorkspaceMetadata struct {
	Workspace string    `json:"workspace"`
	Timestamp time.Time `json:"timestamp"`
	Namespace string    `json:"namespace,omitempty"`
	Image     string    `json:"image,omitempty"`
}

// ToolResult is the standard response envelope for diagnostic-style tools.
type ToolResult struct {
	Findings []Finding         `json:"findings"`
	Metadata WorkspaceMetadata `json:"metadata"`
	IsError  bool              `json:"isError,omitempty"`
}
