package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []Category
	}{
		{
			name: "port conflict only",
			err:  errors.New("EADDRINUSE: port 3000"),
			want: []Category{CategoryPort},
		},
		{
			name: "docker daemon down",
			err:  errors.New("Docker daemon unreachable: dial unix /var/run/docker.sock"),
			want: []Category{CategoryDocker},
		},
		{
			name: "missing socket via errno",
			err:  errors.New("connect ENOENT /var/run/docker.sock"),
			want: []Category{CategoryDocker},
		},
		{
			name: "permission denied",
			err:  errors.New("open /workspace: permission denied"),
			want: []Category{CategoryPermission},
		},
		{
			name: "errno permission",
			err:  errors.New("EACCES: cannot bind"),
			want: []Category{CategoryPermission},
		},
		{
			name: "config problem",
			err:  errors.New("invalid config file: unexpected token"),
			want: []Category{CategoryConfig},
		},
		{
			name: "multiple categories",
			err:  errors.New("Docker config permission problem"),
			want: []Category{CategoryDocker, CategoryPermission, CategoryConfig},
		},
		{
			name: "unrecognized error",
			err:  errors.New("something else entirely"),
			want: nil,
		},
		{
			name: "nil error",
			err:  nil,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestPrintDiagnosticsPortConflict(t *testing.T) {
	var buf bytes.Buffer
	PrintDiagnostics(&buf, errors.New("EADDRINUSE: port 3000"), false)

	out := buf.String()
	assert.Contains(t, out, "Error: EADDRINUSE: port 3000")
	assert.Contains(t, out, "Port conflict detected")
	// Only the port guidance block may appear.
	assert.NotContains(t, out, "Docker issue detected")
	assert.NotContains(t, out, "Permission issue detected")
	assert.NotContains(t, out, "Configuration issue detected")
	assert.Contains(t, out, "Run with --dev for a full stack trace.")
}

func TestPrintDiagnosticsDevMode(t *testing.T) {
	var buf bytes.Buffer
	PrintDiagnostics(&buf, errors.New("boom"), true)

	out := buf.String()
	assert.Contains(t, out, "Error: boom")
	assert.Contains(t, out, "goroutine", "dev mode must include a stack trace")
	assert.NotContains(t, out, "Run with --dev")
}
