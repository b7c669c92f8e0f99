package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/opsmith/containerize-mcp/pkg/telemetry"
	"github.com/opsmith/containerize-mcp/pkg/tools"
	"github.com/opsmith/containerize-mcp/pkg/types"
)

const maxResultAttrLen = 1024

// sensitiveKeys are argument key substrings redacted from span attributes.
var sensitiveKeys = []string{"secret", "token", "key", "password", "credential"}

func buildMCPTool(t tools.Tool) *mcp.Tool {
	schema := t.InputSchema()
	schemaJSON, _ := json.Marshal(schema)

	tool := &mcp.Tool{
		Name:        t.Name(),
		Description: t.Description(),
	}
	if err := json.Unmarshal(schemaJSON, &tool.InputSchema); err != nil {
		slog.Warn("mcp: failed to parse input schema", "tool", t.Name(), "error", err)
	}
	return tool
}

// buildInstrumentedHandler wraps tool execution with OTel spans and
// metrics following the GenAI + MCP semantic conventions.
func (s *Server) buildInstrumentedHandler(t tools.Tool) mcp.ToolHandler {
	tracer := otel.Tracer("containerize-mcp")

	return func(ctx context.Context, request *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		// Context propagation: traceparent/tracestate arrive in params._meta.
		if meta := request.Params.GetMeta(); meta != nil {
			carrier := propagation.MapCarrier{}
			for k, v := range meta {
				if str, ok := v.(string); ok {
					carrier.Set(k, str)
				}
			}
			ctx = otel.GetTextMapPropagator().Extract(ctx, carrier)
		}

		sessionID := ""
		if request.Session != nil {
			sessionID = request.Session.ID()
		}

		ctx, span := tracer.Start(ctx, fmt.Sprintf("execute_tool %s", t.Name()),
			trace.WithSpanKind(trace.SpanKindServer),
		)
		defer span.End()

		span.SetAttributes(
			attribute.String("gen_ai.operation.name", "execute_tool"),
			attribute.String("gen_ai.tool.name", t.Name()),
			attribute.String("mcp.method.name", "tools/call"),
			attribute.String("mcp.protocol.version", mcpProtocolVersion),
			attribute.String("mcp.session.id", sessionID),
		)

		var args map[string]interface{}
		if request.Params.Arguments != nil {
			if err := json.Unmarshal(request.Params.Arguments, &args); err != nil {
				s.recordError(ctx, span, t.Name(), types.ErrCodeInvalidInput, err)
				return errorResult(fmt.Sprintf("failed to parse arguments: %v", err)), nil
			}
		}
		if args == nil {
			args = make(map[string]interface{})
		}
		span.SetAttributes(attribute.String("gen_ai.tool.call.arguments", sanitizeArgs(args)))

		start := time.Now()
		result, err := t.Run(ctx, args)
		duration := time.Since(start).Seconds()

		if err != nil {
			errType := "tool_error"
			if mcpErr, ok := err.(*types.MCPError); ok {
				errType = mcpErr.Code
			}
			s.recordMetrics(ctx, t.Name(), errType, duration)
			s.recordError(ctx, span, t.Name(), errType, err)

			if mcpErr, ok := err.(*types.MCPError); ok {
				errJSON, _ := json.MarshalIndent(mcpErr, "", "  ")
				return errorResult(string(errJSON)), nil
			}
			return errorResult(err.Error()), nil
		}

		s.recordMetrics(ctx, t.Name(), "", duration)
		span.SetStatus(codes.Ok, "")
		if t.Name() == "build_image" && s.meters != nil {
			s.meters.BuildsTotal.Add(ctx, 1, telemetry.WithAttrs(
				attribute.String("gen_ai.tool.name", t.Name()),
			))
		}

		// Compact/detail filtering for finding-style responses.
		if result != nil {
			if tr, ok := result.Data.(*types.ToolResult); ok {
				detail := false
				if b, ok := args["detail"].(bool); ok {
					detail = b
				}
				tr.Findings = types.FilterFindings(tr.Findings, detail)
			}
		}

		jsonBytes, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			s.recordError(ctx, span, t.Name(), types.ErrCodeInternalError, err)
			return errorResult(fmt.Sprintf("failed to marshal result: %v", err)), nil
		}

		resultStr := string(jsonBytes)
		if len(resultStr) > maxResultAttrLen {
			resultStr = resultStr[:maxResultAttrLen]
		}
		span.SetAttributes(attribute.String("gen_ai.tool.call.result", resultStr))

		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(jsonBytes)}},
		}, nil
	}
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}

func (s *Server) recordMetrics(ctx context.Context, toolName, errType string, duration float64) {
	if s.meters == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("gen_ai.tool.name", toolName),
	}
	if errType != "" {
		attrs = append(attrs, attribute.String("error.type", errType))
	}
	s.meters.RequestDuration.Record(ctx, duration, telemetry.WithAttrs(attrs...))
	s.meters.RequestCount.Add(ctx, 1, telemetry.WithAttrs(attrs...))
}

func (s *Server) recordError(ctx context.Context, span trace.Span, toolName, errType string, err error) {
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(attribute.String("error.type", errType))
	span.RecordError(err)

	if s.meters == nil {
		return
	}
	s.meters.ErrorsTotal.Add(ctx, 1, telemetry.WithAttrs(
		attribute.String("error.code", errType),
		attribute.String("gen_ai.tool.name", toolName),
	))
}

// sanitizeArgs renders args as JSON with sensitive values redacted.
func sanitizeArgs(args map[string]interface{}) string {
	sanitized := make(map[string]interface{}, len(args))
	for k, v := range args {
		lower := strings.ToLower(k)
		redacted := false
		for _, sk := range sensitiveKeys {
			if strings.Contains(lower, sk) {
				sanitized[k] = "[REDACTED]"
				redacted = true
				break
			}
		}
		if !redacted {
			sanitized[k] = v
		}
	}
	data, err := json.Marshal(sanitized)
	if err != nil {
		return "{}"
	}
	return string(data)
}
