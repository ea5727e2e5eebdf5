// Package mcp provides the MCP server implementation for read-only ABAP ADT tools.
// helpers.go contains shared utility functions used across handlers.
package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/vibingsteamer/mcp-abap-adt/pkg/whereused"
)

// newToolResultError creates an error result for tool execution failures.
func newToolResultError(message string) *mcp.CallToolResult {
	result := mcp.NewToolResultText(message)
	result.IsError = true
	return result
}

// newToolResultJSON creates a successful result with JSON-formatted output.
func newToolResultJSON(v any) *mcp.CallToolResult {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return newToolResultError(fmt.Sprintf("encoding result: %v", err))
	}
	return mcp.NewToolResultText(string(output))
}

// wrapErr creates an error result with consistent "operation failed" format.
func wrapErr(op string, err error) *mcp.CallToolResult {
	return newToolResultError(fmt.Sprintf("%s failed: %v", op, err))
}

// newToolResult converts a where-used result into an MCP tool result,
// preserving content order.
func newToolResult(r *whereused.Result) *mcp.CallToolResult {
	result := &mcp.CallToolResult{IsError: r.IsError}
	for _, item := range r.Content {
		result.Content = append(result.Content, mcp.NewTextContent(item.Text))
	}
	return result
}

// newRequest builds a tool request from plain arguments.
func newRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

// --- Parameter extraction helpers ---

// getStr extracts a string parameter, returning empty string if not found.
func getStr(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

// getInt extracts an integer parameter from float64, returning default if not found.
func getInt(args map[string]any, key string, def int) int {
	if v, ok := args[key].(float64); ok {
		return int(v)
	}
	return def
}

func getBool(args map[string]any, key string) bool {
	v, _ := args[key].(bool)
	return v
}

// requireStr extracts a required string parameter, returning error result if missing.
func requireStr(args map[string]any, key string) (string, *mcp.CallToolResult) {
	if v, ok := args[key].(string); ok && v != "" {
		return v, nil
	}
	return "", newToolResultError(key + " is required")
}
