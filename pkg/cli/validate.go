package cli

import (
	"fmt"
	"os"
)

// validLogLevels are the accepted values for --log-level.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// ValidationResult is the outcome of precondition checks. Errors are
// accumulated in check order rather than short-circuiting, so a single
// run reports everything the user has to fix.
type ValidationResult struct {
	Valid  bool
	Errors []string
}

// Validate checks the parsed options against the environment. It has no
// side effects and never returns a Go error; every problem is reported
// as a human-readable string in the result.
func Validate(opts Options) ValidationResult {
	var errs []string

	if !validLogLevels[opts.LogLevel] {
		errs = append(errs, fmt.Sprintf("invalid log level %q: must be one of debug, info, warn, error", opts.LogLevel))
	}

	if opts.PortSet && (opts.Port < 1 || opts.Port > 65535) {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", opts.Port))
	}

	if info, err := os.Stat(opts.WorkspacePath); err != nil {
		errs = append(errs, fmt.Sprintf("workspace directory does not exist: %s", opts.WorkspacePath))
	} else if !info.IsDir() {
		errs = append(errs, fmt.Sprintf("workspace path is not a directory: %s", opts.WorkspacePath))
	}

	// Mock mode removes the Docker dependency entirely.
	if !opts.MockMode {
		if _, err := os.Stat(opts.DockerSocketPath); err != nil {
			errs = append(errs, fmt.Sprintf("Docker socket not found: %s (pass --mock to run without Docker)", opts.DockerSocketPath))
		}
	}

	if opts.ConfigPath != "" {
		if _, err := os.Stat(opts.ConfigPath); err != nil {
			errs = append(errs, fmt.Sprintf("config file does not exist: %s", opts.ConfigPath))
		}
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}
