package rollout

import "time"

const (
	// LabelManagedBy is the label key identifying pods managed by the verifier.
	LabelManagedBy = "app.kubernetes.io/managed-by"
	// LabelManagedByValue is the label value for verification pods.
	LabelManagedByValue = "containerize-mcp"
	// AnnotationCreatedAt records the pod creation timestamp for TTL cleanup.
	AnnotationCreatedAt = "containerize-mcp/created-at"

	// checkImage runs the in-cluster connectivity check.
	checkImage = "busybox:1.36"
	// maxConcurrentChecks caps simultaneous verification pods.
	maxConcurrentChecks = 5
)

// Status summarizes a deployment rollout.
type Status struct {
	Ready           bool          `json:"ready"`
	DesiredReplicas int32         `json:"desiredReplicas"`
	ReadyReplicas   int32         `json:"readyReplicas"`
	Message         string        `json:"message,omitempty"`
	Duration        time.Duration `json:"-"`
}

// CheckRequest describes an in-cluster connectivity verification
// against a deployed service.
type CheckRequest struct {
	Service   string
	Namespace string
	Port      int
	Path      string
	Timeout   time.Duration
}

// CheckResult holds the outcome of a verification pod run.
type CheckResult struct {
	Success  bool          `json:"success"`
	Output   string        `json:"output,omitempty"`
	ExitCode int           `json:"exitCode"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}
