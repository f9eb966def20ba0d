package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// serviceToolFunc is a tool handler that operates on one named service.
type serviceToolFunc func(ctx context.Context, request mcp.CallToolRequest, serviceName string) (*mcp.CallToolResult, error)

// withService reads the required "service" argument before calling fn.
func withService(fn serviceToolFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		serviceName, err := request.RequireString("service")
		if err != nil || serviceName == "" {
			return toolError("missing required parameter %q", "service")
		}
		return fn(ctx, request, serviceName)
	}
}

// jsonResult returns data, indented, as the tool's text content.
func jsonResult(data any) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal tool result: %w", err)
	}
	return mcp.NewToolResultText(string(b)), nil
}

// toolError reports a failure the client can read and correct. The session
// stays open.
func toolError(format string, args ...any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(fmt.Sprintf(format, args...)), nil
}
