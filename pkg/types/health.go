package types

// HealthStatus is the overall server health state.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthReport is a point-in-time snapshot of server health.
type HealthReport struct {
	Status        HealthStatus       `json:"status"`
	UptimeSeconds float64            `json:"uptimeSeconds"`
	Services      map[string]bool    `json:"services"`
	Metrics       map[string]float64 `json:"metrics,omitempty"`
}

// ToolDescriptor describes one invocable tool for listing purposes.
type ToolDescriptor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`
}
