package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsmith/containerize-mcp/pkg/cli"
)

// capture runs the root command with the given argv and records the
// options handed to the orchestrator.
func capture(t *testing.T, args []string, code int) (cli.Options, error) {
	t.Helper()
	var got cli.Options
	cmd := newRootCmd(func(ctx context.Context, opts cli.Options) int {
		got = opts
		return code
	})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	return got, cmd.Execute()
}

func TestDefaultOptions(t *testing.T) {
	opts, err := capture(t, nil, 0)
	require.NoError(t, err)

	assert.Equal(t, "info", opts.LogLevel)
	assert.Equal(t, "localhost", opts.Host)
	assert.Equal(t, "/var/run/docker.sock", opts.DockerSocketPath)
	assert.Equal(t, "default", opts.K8sNamespace)
	assert.NotEmpty(t, opts.WorkspacePath, "workspace defaults to the current directory")
	assert.False(t, opts.PortSet)
	assert.False(t, opts.DevMode)
	assert.False(t, opts.MockMode)
}

func TestAllFlags(t *testing.T) {
	opts, err := capture(t, []string{
		"--config", "/etc/cmcp.json",
		"--log-level", "debug",
		"--workspace", "/srv/project",
		"--port", "3000",
		"--host", "0.0.0.0",
		"--dev",
		"--mock",
		"--docker-socket", "/run/user/docker.sock",
		"--k8s-namespace", "apps",
	}, 0)
	require.NoError(t, err)

	assert.Equal(t, "/etc/cmcp.json", opts.ConfigPath)
	assert.Equal(t, "debug", opts.LogLevel)
	assert.Equal(t, "/srv/project", opts.WorkspacePath)
	assert.Equal(t, 3000, opts.Port)
	assert.True(t, opts.PortSet, "explicit --port must be marked as set")
	assert.Equal(t, "0.0.0.0", opts.Host)
	assert.True(t, opts.DevMode)
	assert.True(t, opts.MockMode)
	assert.Equal(t, "/run/user/docker.sock", opts.DockerSocketPath)
	assert.Equal(t, "apps", opts.K8sNamespace)
}

func TestModeFlags(t *testing.T) {
	opts, err := capture(t, []string{"--validate", "--list-tools", "--health-check"}, 0)
	require.NoError(t, err)

	assert.True(t, opts.ValidateOnly)
	assert.True(t, opts.ListToolsOnly)
	assert.True(t, opts.HealthCheckOnly)
}

func TestNonZeroExitCodePropagates(t *testing.T) {
	_, err := capture(t, []string{"--mock"}, 1)
	require.Error(t, err)

	code, ok := err.(exitError)
	require.True(t, ok)
	assert.Equal(t, 1, int(code))
}

func TestVersionSubcommand(t *testing.T) {
	out := &bytes.Buffer{}
	cmd := newRootCmd(func(ctx context.Context, opts cli.Options) int {
		t.Fatal("version must not start the server")
		return 1
	})
	cmd.SetOut(out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "containerize-mcp")
}
