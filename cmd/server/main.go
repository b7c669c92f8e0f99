package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/opsmith/containerize-mcp/pkg/app"
	"github.com/opsmith/containerize-mcp/pkg/cli"
	"github.com/opsmith/containerize-mcp/pkg/config"
	"github.com/opsmith/containerize-mcp/pkg/docker"
	"github.com/opsmith/containerize-mcp/pkg/k8s"
	"github.com/opsmith/containerize-mcp/pkg/mcp"
	"github.com/opsmith/containerize-mcp/pkg/telemetry"
)

var version = "1.0.0"

// newRootCmd builds the root command. Flags map one-to-one onto
// cli.Options; everything past flag parsing is owned by the
// orchestrator so it stays testable without a process boundary.
func newRootCmd(run func(ctx context.Context, opts cli.Options) int) *cobra.Command {
	var opts cli.Options

	rootCmd := &cobra.Command{
		Use:           "containerize-mcp",
		Short:         "MCP tool server for containerizing and deploying applications",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.PortSet = cmd.Flags().Changed("port")
			code := run(cmd.Context(), opts)
			if code != 0 {
				return exitError(code)
			}
			return nil
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&opts.ConfigPath, "config", "c", "", "Path to a JSON config file")
	flags.StringVar(&opts.LogLevel, "log-level", cli.DefaultLogLevel, "Log level (debug, info, warn, error)")
	flags.StringVarP(&opts.WorkspacePath, "workspace", "w", mustGetwd(), "Workspace directory for tool operations")
	flags.IntVarP(&opts.Port, "port", "p", 0, "Serve Streamable HTTP on this port instead of stdio")
	flags.StringVar(&opts.Host, "host", cli.DefaultHost, "Host to bind in HTTP mode")
	flags.BoolVar(&opts.DevMode, "dev", false, "Development mode: full stack traces on failure")
	flags.BoolVar(&opts.MockMode, "mock", false, "Mock mode: no Docker or cluster access, canned results")
	flags.BoolVar(&opts.ValidateOnly, "validate", false, "Validate options and exit")
	flags.BoolVar(&opts.ListToolsOnly, "list-tools", false, "List registered tools and exit")
	flags.BoolVar(&opts.HealthCheckOnly, "health-check", false, "Run a health check and exit")
	flags.StringVar(&opts.DockerSocketPath, "docker-socket", cli.DefaultDockerSocket, "Docker daemon socket path")
	flags.StringVar(&opts.K8sNamespace, "k8s-namespace", cli.DefaultNamespace, "Target Kubernetes namespace")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "containerize-mcp %s\n", version)
		},
	})

	return rootCmd
}

// exitError carries a non-zero orchestrator exit code through cobra.
type exitError int

func (e exitError) Error() string { return fmt.Sprintf("exit code %d", int(e)) }

func mustGetwd() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

// runOrchestrator wires the production collaborators and executes the
// selected mode.
func runOrchestrator(ctx context.Context, opts cli.Options) int {
	// Logging first so the telemetry bridge can wrap the stderr handler.
	config.SetupLogging(opts.LogLevel)

	shutdownTracer, err := telemetry.InitTracer(ctx, opts.K8sNamespace)
	if err != nil {
		slog.Warn("tracing disabled", "error", err)
	}
	shutdownMeter, err := telemetry.InitMeter(ctx)
	if err != nil {
		slog.Warn("metrics disabled", "error", err)
	}
	shutdownLogger, err := telemetry.InitLogger(ctx)
	if err != nil {
		slog.Warn("log export disabled", "error", err)
	}
	defer func() {
		sctx := context.Background()
		if shutdownLogger != nil {
			_ = shutdownLogger(sctx)
		}
		if shutdownMeter != nil {
			_ = shutdownMeter(sctx)
		}
		if shutdownTracer != nil {
			_ = shutdownTracer(sctx)
		}
	}()

	orch := &app.Orchestrator{
		Opts: opts,
		NewServer: func(ctx context.Context, cfg config.Config) (app.Server, error) {
			return mcp.NewServer(cfg), nil
		},
		Probes: validationProbes(opts),
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
	return orch.Run(ctx)
}

// validationProbes are the best-effort connectivity checks run by
// --validate. Mock mode skips them since no backend is required.
func validationProbes(opts cli.Options) []app.Probe {
	if opts.MockMode {
		return nil
	}
	return []app.Probe{
		{
			Name: "docker daemon",
			Check: func(ctx context.Context) error {
				dc, err := docker.New(opts.DockerSocketPath)
				if err != nil {
					return err
				}
				defer dc.Close()
				return dc.Ping(ctx)
			},
		},
		{
			Name: "kubernetes API",
			Check: func(ctx context.Context) error {
				clients, err := k8s.NewClients()
				if err != nil {
					return err
				}
				return clients.Ping(ctx)
			},
		},
	}
}

func main() {
	defer app.HandlePanic(os.Exit)

	rootCmd := newRootCmd(runOrchestrator)
	if err := rootCmd.Execute(); err != nil {
		if code, ok := err.(exitError); ok {
			os.Exit(int(code))
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
