// Package mcp provides the MCP server implementation for read-only ABAP ADT tools.
// handlers_search.go contains handlers for object search operations.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/vibingsteamer/mcp-abap-adt/pkg/adt"
)

func (s *Server) handleSearchObject(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments
	query, errResult := requireStr(args, "query")
	if errResult != nil {
		return errResult, nil
	}

	maxResults := getInt(args, "maxResults", adt.DefaultMaxResults)
	if maxResults <= 0 {
		maxResults = adt.DefaultMaxResults
	}

	results, err := s.adtClient.SearchObject(ctx, query, maxResults)
	if err != nil {
		return wrapErr("SearchObject", err), nil
	}
	return newToolResultJSON(results), nil
}
