package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/opsmith/containerize-mcp/pkg/cli"
)

// Config is the explicit runtime configuration built from validated
// options. It is passed by value into the orchestrator and the server
// instead of being round-tripped through process environment.
type Config struct {
	LogLevel     string
	Workspace    string
	Host         string
	Port         int
	DevMode      bool
	MockMode     bool
	DockerSocket string
	Namespace    string
	ConfigPath   string

	// File-supplied tool defaults.
	Registry    string
	ToolTimeout time.Duration
}

// fileConfig is the schema of the optional --config JSON file.
type fileConfig struct {
	Registry    string `json:"registry,omitempty"`
	ToolTimeout string `json:"toolTimeout,omitempty"`
}

// New builds a Config from already-validated options, layering in the
// optional config file. The defaulting rules match the flag defaults.
func New(opts cli.Options) (Config, error) {
	cfg := Config{
		LogLevel:     opts.LogLevel,
		Workspace:    opts.WorkspacePath,
		Host:         opts.Host,
		DevMode:      opts.DevMode,
		MockMode:     opts.MockMode,
		DockerSocket: opts.DockerSocketPath,
		Namespace:    opts.K8sNamespace,
		ConfigPath:   opts.ConfigPath,
		ToolTimeout:  30 * time.Second,
	}
	if opts.PortSet {
		cfg.Port = opts.Port
	}

	if opts.ConfigPath != "" {
		raw, err := os.ReadFile(opts.ConfigPath)
		if err != nil {
			return cfg, fmt.Errorf("reading config file: %w", err)
		}
		var fc fileConfig
		if err := json.Unmarshal(raw, &fc); err != nil {
			return cfg, fmt.Errorf("parsing config file %s: %w", opts.ConfigPath, err)
		}
		if fc.Registry != "" {
			cfg.Registry = fc.Registry
		}
		if fc.ToolTimeout != "" {
			d, err := time.ParseDuration(fc.ToolTimeout)
			if err != nil {
				return cfg, fmt.Errorf("parsing config file toolTimeout: %w", err)
			}
			cfg.ToolTimeout = d
		}
	}

	return cfg, nil
}

// ExportEnvironment publishes the configuration to the documented
// environment variables. Tool subprocesses (analyzers, scanners) read
// these; the server itself only reads the Config struct.
func ExportEnvironment(cfg Config) {
	os.Setenv("LOG_LEVEL", cfg.LogLevel)
	os.Setenv("WORKSPACE_DIR", cfg.Workspace)
	os.Setenv("DOCKER_SOCKET", cfg.DockerSocket)
	os.Setenv("K8S_NAMESPACE", cfg.Namespace)
	if cfg.DevMode {
		os.Setenv("NODE_ENV", "development")
	}
	if cfg.MockMode {
		os.Setenv("MOCK_MODE", "true")
	}
}

// SetupLogging initializes the global slog logger with JSON output at
// the specified level. Logs go to stderr so stdout stays clean for the
// stdio transport.
func SetupLogging(level string) {
	var slogLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn", "warning":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slogLevel})
	slog.SetDefault(slog.New(handler))
}
