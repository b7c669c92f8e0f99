package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validOptions returns options that pass every check: mock mode removes
// the Docker socket requirement and the workspace is a real temp dir.
func validOptions(t *testing.T) Options {
	t.Helper()
	return Options{
		LogLevel:         DefaultLogLevel,
		WorkspacePath:    t.TempDir(),
		Host:             DefaultHost,
		MockMode:         true,
		DockerSocketPath: DefaultDockerSocket,
		K8sNamespace:     DefaultNamespace,
	}
}

func TestValidateValidOptions(t *testing.T) {
	result := Validate(validOptions(t))
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
}

func TestValidateInvalidLogLevel(t *testing.T) {
	opts := validOptions(t)
	opts.LogLevel = "verbose"

	result := Validate(opts)
	require.Len(t, result.Errors, 1)
	assert.False(t, result.Valid)
	// The offending value must be named in the message.
	assert.Contains(t, result.Errors[0], `"verbose"`)
	assert.Contains(t, result.Errors[0], "debug, info, warn, error")
}

func TestValidatePortRange(t *testing.T) {
	tests := []struct {
		name    string
		port    int
		portSet bool
		wantErr bool
	}{
		{"unset port is ignored", 0, false, false},
		{"port zero rejected when set", 0, true, true},
		{"negative port rejected", -1, true, true},
		{"port one accepted", 1, true, false},
		{"common port accepted", 3000, true, false},
		{"max port accepted", 65535, true, false},
		{"above max rejected", 65536, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := validOptions(t)
			opts.Port = tt.port
			opts.PortSet = tt.portSet

			result := Validate(opts)
			if tt.wantErr {
				require.Len(t, result.Errors, 1, "out-of-range port must produce exactly one error")
				assert.Contains(t, result.Errors[0], "invalid port")
			} else {
				assert.True(t, result.Valid, "errors: %v", result.Errors)
			}
		})
	}
}

func TestValidateMissingWorkspaceWithMock(t *testing.T) {
	opts := validOptions(t)
	opts.WorkspacePath = "/nonexistent"

	result := Validate(opts)
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1, "mock mode must suppress the Docker socket error")
	assert.Contains(t, result.Errors[0], "workspace directory does not exist: /nonexistent")
}

func TestValidateWorkspaceIsFile(t *testing.T) {
	opts := validOptions(t)
	file := filepath.Join(t.TempDir(), "notadir")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	opts.WorkspacePath = file

	result := Validate(opts)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "workspace path is not a directory")
}

func TestValidateDockerSocket(t *testing.T) {
	opts := validOptions(t)
	opts.MockMode = false
	opts.DockerSocketPath = filepath.Join(t.TempDir(), "missing.sock")

	result := Validate(opts)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Docker socket not found")
	assert.Contains(t, result.Errors[0], "--mock")

	// The same options with mock mode pass.
	opts.MockMode = true
	assert.True(t, Validate(opts).Valid)
}

func TestValidateConfigPath(t *testing.T) {
	opts := validOptions(t)
	opts.ConfigPath = "/no/such/config.json"

	result := Validate(opts)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "config file does not exist")
}

func TestValidateAccumulatesErrors(t *testing.T) {
	opts := Options{
		LogLevel:         "loud",
		Port:             99999,
		PortSet:          true,
		WorkspacePath:    "/nonexistent",
		MockMode:         false,
		DockerSocketPath: "/nonexistent/docker.sock",
		ConfigPath:       "/nonexistent/config.json",
	}

	result := Validate(opts)
	assert.False(t, result.Valid)
	assert.Len(t, result.Errors, 5, "all failures must be reported in one pass")
}
