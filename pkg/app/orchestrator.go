package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/opsmith/containerize-mcp/pkg/cli"
	"github.com/opsmith/containerize-mcp/pkg/config"
	"github.com/opsmith/containerize-mcp/pkg/types"
)

// Server is the collaborator contract the orchestrator drives. The MCP
// server in pkg/mcp implements it; tests substitute fakes.
type Server interface {
	Initialize(ctx context.Context) error
	ListTools(ctx context.Context) ([]types.ToolDescriptor, error)
	GetHealth(ctx context.Context) (types.HealthReport, error)
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// ServerFactory builds the collaborator server from the effective
// configuration.
type ServerFactory func(ctx context.Context, cfg config.Config) (Server, error)

// Probe is a best-effort connectivity check run in validate mode. Probe
// failures are reported but never change the exit code.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

// Orchestrator translates options into exactly one execution mode and
// owns the process exit code. Mode priority is fixed:
// validate > list-tools > health-check > run.
type Orchestrator struct {
	Opts      cli.Options
	NewServer ServerFactory
	Probes    []Probe
	Stdout    io.Writer
	Stderr    io.Writer
}

// Run executes the selected mode and returns the process exit code.
func (o *Orchestrator) Run(ctx context.Context) int {
	result := cli.Validate(o.Opts)
	if !result.Valid {
		fmt.Fprintln(o.Stderr, "Invalid options:")
		for _, e := range result.Errors {
			fmt.Fprintf(o.Stderr, "  - %s\n", e)
		}
		return 1
	}

	cfg, err := config.New(o.Opts)
	if err != nil {
		return o.fail(err)
	}
	config.ExportEnvironment(cfg)

	switch {
	case o.Opts.ValidateOnly:
		return o.runValidate(ctx, cfg)
	case o.Opts.ListToolsOnly:
		return o.runListTools(ctx, cfg)
	case o.Opts.HealthCheckOnly:
		return o.runHealthCheck(ctx, cfg)
	default:
		return o.runServer(ctx, cfg)
	}
}

// runValidate prints the effective configuration and runs the
// informational connectivity probes. Probe failures are warnings only;
// validation itself already passed, so the exit code is 0.
func (o *Orchestrator) runValidate(ctx context.Context, cfg config.Config) int {
	RenderConfigSummary(o.Stdout, cfg)

	for _, p := range o.Probes {
		if err := p.Check(ctx); err != nil {
			fmt.Fprintf(o.Stdout, "  [warn] %s: %v\n", p.Name, err)
		} else {
			fmt.Fprintf(o.Stdout, "  [ok]   %s\n", p.Name)
		}
	}

	fmt.Fprintln(o.Stdout, "Options are valid.")
	return 0
}

func (o *Orchestrator) runListTools(ctx context.Context, cfg config.Config) int {
	srv, err := o.NewServer(ctx, cfg)
	if err != nil {
		return o.fail(err)
	}
	if err := srv.Initialize(ctx); err != nil {
		return o.fail(err)
	}
	defer o.shutdownQuietly(srv)

	tools, err := srv.ListTools(ctx)
	if err != nil {
		return o.fail(err)
	}
	RenderToolList(o.Stdout, tools)
	return 0
}

// runHealthCheck is the only mode whose exit code is derived from
// collaborator-reported data: 0 iff the server reports healthy.
func (o *Orchestrator) runHealthCheck(ctx context.Context, cfg config.Config) int {
	srv, err := o.NewServer(ctx, cfg)
	if err != nil {
		return o.fail(err)
	}
	if err := srv.Initialize(ctx); err != nil {
		return o.fail(err)
	}
	defer o.shutdownQuietly(srv)

	report, err := srv.GetHealth(ctx)
	if err != nil {
		return o.fail(err)
	}
	RenderHealthReport(o.Stdout, report)
	if report.Status != types.HealthStatusHealthy {
		return 1
	}
	return 0
}

func (o *Orchestrator) runServer(ctx context.Context, cfg config.Config) int {
	srv, err := o.NewServer(ctx, cfg)
	if err != nil {
		return o.fail(err)
	}
	if err := srv.Initialize(ctx); err != nil {
		return o.fail(err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	coord := NewShutdownCoordinator(func(sctx context.Context) error {
		cancel()
		return srv.Shutdown(sctx)
	})
	coord.Listen()

	if cfg.Port > 0 {
		fmt.Fprintf(o.Stderr, "containerize-mcp listening on %s:%d\n", cfg.Host, cfg.Port)
	} else {
		fmt.Fprintln(o.Stderr, "containerize-mcp serving on stdio")
	}
	slog.Info("server starting", "workspace", cfg.Workspace, "namespace", cfg.Namespace, "mock", cfg.MockMode)

	err = srv.Start(runCtx)
	if coord.InProgress() {
		<-coord.Done()
		return coord.ExitCode()
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return o.fail(err)
	}
	coord.RequestShutdown("server stopped")
	<-coord.Done()
	return coord.ExitCode()
}

// fail prints classified diagnostics for a startup error and returns
// the failure exit code.
func (o *Orchestrator) fail(err error) int {
	cli.PrintDiagnostics(o.Stderr, err, o.Opts.DevMode)
	return 1
}

func (o *Orchestrator) shutdownQuietly(srv Server) {
	if err := srv.Shutdown(context.Background()); err != nil {
		slog.Warn("server shutdown failed", "error", err)
	}
}
