package cli

import (
	"fmt"
	"io"
	"runtime/debug"
	"strings"
)

// Category is a heuristic diagnostic bucket for a startup error. An
// error may belong to several categories at once; membership only
// drives which guidance blocks get printed, never control flow.
type Category string

const (
	CategoryDocker     Category = "docker"
	CategoryPort       Category = "port"
	CategoryPermission Category = "permission"
	CategoryConfig     Category = "config"
)

// Classify matches substrings of the error message against known
// failure signatures and returns every matching category in a fixed
// order. An unrecognized error yields an empty set.
func Classify(err error) []Category {
	if err == nil {
		return nil
	}
	msg := err.Error()

	var cats []Category
	if strings.Contains(msg, "Docker") || strings.Contains(msg, "ENOENT") {
		cats = append(cats, CategoryDocker)
	}
	if strings.Contains(msg, "EADDRINUSE") {
		cats = append(cats, CategoryPort)
	}
	if strings.Contains(msg, "permission") || strings.Contains(msg, "EACCES") {
		cats = append(cats, CategoryPermission)
	}
	if strings.Contains(msg, "config") || strings.Contains(msg, "Config") {
		cats = append(cats, CategoryConfig)
	}
	return cats
}

var guidance = map[Category]string{
	CategoryDocker: `Docker issue detected:
  - Check that the Docker daemon is running
  - Verify the socket path passed via --docker-socket
  - Pass --mock to run without a container runtime`,
	CategoryPort: `Port conflict detected:
  - Another process is already listening on the requested port
  - Pick a different --port or stop the conflicting process`,
	CategoryPermission: `Permission issue detected:
  - Check read/write access to the workspace directory
  - Check that your user can access the Docker socket`,
	CategoryConfig: `Configuration issue detected:
  - Verify the file passed via --config exists and is valid JSON
  - Run with --validate to check the configuration`,
}

// PrintDiagnostics writes the error, one guidance block per matched
// category, and (in dev mode) a stack trace to w.
func PrintDiagnostics(w io.Writer, err error, devMode bool) {
	fmt.Fprintf(w, "Error: %v\n", err)
	for _, cat := range Classify(err) {
		fmt.Fprintf(w, "\n%s\n", guidance[cat])
	}
	if devMode {
		fmt.Fprintf(w, "\n%s\n", debug.Stack())
	} else {
		fmt.Fprintln(w, "\nRun with --dev for a full stack trace.")
	}
}
