package tools

import (
	"context"
	"time"
)

// PingTool answers a round-trip check without touching any collaborator.
type PingTool struct {
	BaseTool
}

func (t *PingTool) Name() string        { return "ping" }
func (t *PingTool) Description() string { return "Round-trip liveness check for the tool server" }
func (t *PingTool) Category() string    { return CategoryUtility }

func (t *PingTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

func (t *PingTool) Run(ctx context.Context, args map[string]interface{}) (*StandardResponse, error) {
	return NewResponse(t.Cfg, t.Name(), map[string]interface{}{
		"pong": true,
	}), nil
}

// ServerStatusTool reports reachability of the backing services.
type ServerStatusTool struct {
	BaseTool
	Started time.Time
}

func (t *ServerStatusTool) Name() string { return "server_status" }
func (t *ServerStatusTool) Description() string {
	return "Report uptime and reachability of Docker and the Kubernetes cluster"
}
func (t *ServerStatusTool) Category() string { return CategoryUtility }

func (t *ServerStatusTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

func (t *ServerStatusTool) Run(ctx context.Context, args map[string]interface{}) (*StandardResponse, error) {
	status := map[string]interface{}{
		"uptime_seconds": time.Since(t.Started).Seconds(),
		"mock":           t.Cfg.MockMode,
	}

	if t.Cfg.MockMode {
		status["docker"] = true
		status["kubernetes"] = true
		return NewResponse(t.Cfg, t.Name(), status), nil
	}

	status["docker"] = t.Docker != nil && t.Docker.Ping(ctx) == nil
	status["kubernetes"] = t.Clients != nil && t.Clients.Ping(ctx) == nil
	if t.Features != nil {
		f := t.Features()
		status["cluster_features"] = map[string]bool{
			"ingress":        f.HasIngress,
			"gateway_api":    f.HasGatewayAPI,
			"metrics_server": f.HasMetricsServer,
		}
	}
	return NewResponse(t.Cfg, t.Name(), status), nil
}
