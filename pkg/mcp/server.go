package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/opsmith/containerize-mcp/pkg/config"
	"github.com/opsmith/containerize-mcp/pkg/discovery"
	"github.com/opsmith/containerize-mcp/pkg/docker"
	"github.com/opsmith/containerize-mcp/pkg/k8s"
	"github.com/opsmith/containerize-mcp/pkg/rollout"
	"github.com/opsmith/containerize-mcp/pkg/telemetry"
	"github.com/opsmith/containerize-mcp/pkg/tools"
	"github.com/opsmith/containerize-mcp/pkg/types"
	"github.com/opsmith/containerize-mcp/pkg/workflows"
)

const mcpProtocolVersion = "2025-03-26"

// Server owns the MCP endpoint and the collaborators the tools need:
// the Docker client, the Kubernetes client bundle, feature discovery and
// the rollout verifier.
type Server struct {
	cfg        config.Config
	mcpServer  *mcp.Server
	httpServer *http.Server
	registry   *tools.Registry
	wfRegistry *workflows.Registry
	meters     *telemetry.Meters

	dockerClient *docker.Client
	clients      *k8s.Clients
	disc         *discovery.Discovery
	verifier     *rollout.Verifier

	started time.Time

	mu          sync.Mutex
	initialized bool
	stopped     bool
}

func NewServer(cfg config.Config) *Server {
	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "containerize-mcp",
		Version: "1.0.0",
	}, nil)

	meters, err := telemetry.NewMeters()
	if err != nil {
		slog.Warn("mcp: failed to create OTel meters, metrics will be unavailable", "error", err)
	}

	return &Server{
		cfg:        cfg,
		mcpServer:  mcpServer,
		registry:   tools.NewRegistry(),
		wfRegistry: workflows.NewRegistry(),
		meters:     meters,
		started:    time.Now(),
	}
}

// Initialize connects the collaborators and registers the tool suite.
// Docker and Kubernetes are skipped entirely in mock mode; an
// unreachable cluster degrades the deploy tools instead of failing
// startup.
func (s *Server) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.initialized {
		return nil
	}

	if !s.cfg.MockMode {
		dc, err := docker.New(s.cfg.DockerSocket)
		if err != nil {
			return fmt.Errorf("connecting to Docker on %s: %w", s.cfg.DockerSocket, err)
		}
		s.dockerClient = dc

		clients, err := k8s.NewClients()
		if err != nil {
			slog.Warn("kubernetes unavailable, deploy tools will report CLUSTER_UNAVAILABLE", "error", err)
		} else {
			s.clients = clients
			s.disc = discovery.New(clients.Discovery, func(f discovery.Features) {
				slog.Info("cluster features changed",
					"ingress", f.HasIngress,
					"gatewayAPI", f.HasGatewayAPI,
					"metricsServer", f.HasMetricsServer)
			})
			s.disc.Start(ctx)
			s.verifier = rollout.NewVerifier(ctx, clients, s.cfg.Namespace)
		}
	}

	if err := s.registerTools(); err != nil {
		return err
	}

	for _, t := range s.registry.List() {
		s.mcpServer.AddTool(buildMCPTool(t), s.buildInstrumentedHandler(t))
	}
	slog.Info("tools registered", "count", s.registry.Count(), "mock", s.cfg.MockMode)

	s.initialized = true
	return nil
}

func (s *Server) registerTools() error {
	base := tools.BaseTool{
		Cfg:      s.cfg,
		Docker:   s.dockerClient,
		Clients:  s.clients,
		Verifier: s.verifier,
	}
	if s.disc != nil {
		base.Features = s.disc.GetFeatures
	}

	workflows.RegisterAll(s.wfRegistry, s.cfg, &tools.RegistryRunner{Registry: s.registry}, base.Features)

	all := []tools.Tool{
		&tools.PingTool{BaseTool: base},
		&tools.ServerStatusTool{BaseTool: base, Started: s.started},
		&tools.AnalyzeRepoTool{BaseTool: base},
		&tools.GenerateDockerfileTool{BaseTool: base},
		&tools.BuildImageTool{BaseTool: base},
		&tools.TagImageTool{BaseTool: base},
		&tools.PushImageTool{BaseTool: base},
		&tools.ScanImageTool{BaseTool: base},
		&tools.GenerateManifestsTool{BaseTool: base},
		&tools.PrepareClusterTool{BaseTool: base},
		&tools.DeployApplicationTool{BaseTool: base},
		&tools.VerifyDeploymentTool{BaseTool: base},
		&tools.ListWorkflowsTool{BaseTool: base, Workflows: s.wfRegistry},
		&tools.RunWorkflowTool{BaseTool: base, Workflows: s.wfRegistry},
	}
	for _, t := range all {
		if err := s.registry.Register(t); err != nil {
			return err
		}
	}
	return nil
}

// ListTools reports every registered tool in registration order.
func (s *Server) ListTools(ctx context.Context) ([]types.ToolDescriptor, error) {
	return s.registry.Descriptors(), nil
}

// GetHealth reports per-service reachability. The server is healthy only
// when every service answers.
func (s *Server) GetHealth(ctx context.Context) (types.HealthReport, error) {
	services := map[string]bool{
		"workspace": dirExists(s.cfg.Workspace),
	}
	if s.cfg.MockMode {
		services["docker"] = true
		services["kubernetes"] = true
	} else {
		services["docker"] = s.dockerClient != nil && s.dockerClient.Ping(ctx) == nil
		services["kubernetes"] = s.clients != nil && s.clients.Ping(ctx) == nil
	}

	status := types.HealthStatusHealthy
	for _, ok := range services {
		if !ok {
			status = types.HealthStatusUnhealthy
			break
		}
	}

	return types.HealthReport{
		Status:        status,
		UptimeSeconds: time.Since(s.started).Seconds(),
		Services:      services,
		Metrics: map[string]float64{
			"tools_registered":     float64(s.registry.Count()),
			"workflows_registered": float64(len(s.wfRegistry.List())),
		},
	}, nil
}

// Start serves MCP until ctx is canceled. With a port configured it
// serves Streamable HTTP on host:port, otherwise stdio.
func (s *Server) Start(ctx context.Context) error {
	if s.cfg.Port == 0 {
		return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
	}

	handler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return s.mcpServer
	}, nil)

	mux := http.NewServeMux()
	mux.Handle("/mcp", handler)
	mux.HandleFunc("/healthz", s.handleHealthz)

	s.httpServer = &http.Server{
		Addr:    net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port)),
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	report, _ := s.GetHealth(r.Context())
	w.Header().Set("Content-Type", "application/json")
	if report.Status != types.HealthStatusHealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(report)
}

// Shutdown tears the collaborators down in reverse start order. Safe to
// call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	s.mu.Unlock()

	var errs []error
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errs = append(errs, err)
		}
	}
	if s.verifier != nil {
		s.verifier.Stop()
	}
	if s.disc != nil {
		s.disc.Stop()
	}
	if s.dockerClient != nil {
		if err := s.dockerClient.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
