package app

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/opsmith/containerize-mcp/pkg/config"
	"github.com/opsmith/containerize-mcp/pkg/types"
)

// defaultCategory is assigned to tools that do not declare one.
const defaultCategory = "utility"

// RenderToolList prints tools grouped by category. Categories appear in
// first-seen order; tools keep the order the server returned them in.
func RenderToolList(w io.Writer, tools []types.ToolDescriptor) {
	groups := make(map[string][]types.ToolDescriptor)
	var order []string
	maxName := 0

	for _, t := range tools {
		cat := t.Category
		if cat == "" {
			cat = defaultCategory
		}
		if _, seen := groups[cat]; !seen {
			order = append(order, cat)
		}
		groups[cat] = append(groups[cat], t)
		if len(t.Name) > maxName {
			maxName = len(t.Name)
		}
	}

	for _, cat := range order {
		fmt.Fprintf(w, "%s\n", strings.ToUpper(cat))
		for _, t := range groups[cat] {
			fmt.Fprintf(w, "  %-*s  %s\n", maxName, t.Name, t.Description)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "Total: %d tools available\n", len(tools))
}

// RenderHealthReport prints the overall status, each service check, and
// any metrics the server reported.
func RenderHealthReport(w io.Writer, report types.HealthReport) {
	fmt.Fprintf(w, "Status: %s\n", strings.ToUpper(string(report.Status)))
	fmt.Fprintf(w, "Uptime: %.0fs\n", report.UptimeSeconds)

	services := make([]string, 0, len(report.Services))
	for name := range report.Services {
		services = append(services, name)
	}
	sort.Strings(services)
	for _, name := range services {
		mark := "ok"
		if !report.Services[name] {
			mark = "fail"
		}
		fmt.Fprintf(w, "  [%s] %s\n", mark, name)
	}

	if len(report.Metrics) > 0 {
		fmt.Fprintln(w, "Metrics:")
		keys := make([]string, 0, len(report.Metrics))
		for k := range report.Metrics {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "  %s: %g\n", k, report.Metrics[k])
		}
	}
}

// RenderConfigSummary prints the effective configuration for --validate.
func RenderConfigSummary(w io.Writer, cfg config.Config) {
	fmt.Fprintln(w, "Configuration:")
	fmt.Fprintf(w, "  log level:     %s\n", cfg.LogLevel)
	fmt.Fprintf(w, "  workspace:     %s\n", cfg.Workspace)
	if cfg.Port > 0 {
		fmt.Fprintf(w, "  transport:     http (%s:%d)\n", cfg.Host, cfg.Port)
	} else {
		fmt.Fprintf(w, "  transport:     stdio\n")
	}
	fmt.Fprintf(w, "  docker socket: %s\n", cfg.DockerSocket)
	fmt.Fprintf(w, "  namespace:     %s\n", cfg.Namespace)
	fmt.Fprintf(w, "  mock mode:     %t\n", cfg.MockMode)
	fmt.Fprintf(w, "  dev mode:      %t\n", cfg.DevMode)
	if cfg.ConfigPath != "" {
		fmt.Fprintf(w, "  config file:   %s\n", cfg.ConfigPath)
	}
	if cfg.Registry != "" {
		fmt.Fprintf(w, "  registry:      %s\n", cfg.Registry)
	}
}
