// Package mcp provides the MCP server implementation for read-only ABAP ADT tools.
// handlers_whereused.go contains the GetWhereUsed handler.
package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/vibingsteamer/mcp-abap-adt/pkg/adt"
	"github.com/vibingsteamer/mcp-abap-adt/pkg/whereused"
)

func (s *Server) handleGetWhereUsed(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments
	objectName, errResult := requireStr(args, "object_name")
	if errResult != nil {
		return errResult, nil
	}

	q, err := whereused.NewObjectQuery(objectName, getStr(args, "object_type"), getInt(args, "max_results", whereused.DefaultMaxResults))
	if err != nil {
		return newToolResultError(err.Error()), nil
	}

	res := s.engine.Resolve(ctx, q)
	result := newToolResult(res.Result)
	if !getBool(args, "summary") {
		return result, nil
	}
	if summary := s.usageSummary(res); summary != "" {
		result.Content = append(result.Content, mcp.NewTextContent(summary))
	}
	return result, nil
}

// usageSummary renders the references of a usage-index hit as a readable
// list. It returns "" for guidance, errors and bodies it cannot parse.
func (s *Server) usageSummary(res *whereused.Resolution) string {
	if res.Result.IsError || len(res.Outcomes) == 0 {
		return ""
	}
	last := res.Outcomes[len(res.Outcomes)-1]
	if last.Status != whereused.StatusHit || last.Strategy.ResponseKind != whereused.KindXML {
		return ""
	}

	refs, err := adt.ParseUsageReferences(last.RawBody)
	if err != nil {
		s.logger.Debug("usage summary skipped", zap.String("object", res.Query.Name), zap.Error(err))
		return ""
	}

	var sb strings.Builder
	count := 0
	for _, ref := range refs {
		if !ref.IsResult || ref.Name == "" {
			continue
		}
		if count == 0 {
			fmt.Fprintf(&sb, "Objects using %s:\n", res.Query.Name)
		}
		count++
		fmt.Fprintf(&sb, "- %s", ref.Name)
		if ref.Type != "" {
			fmt.Fprintf(&sb, " (%s)", ref.Type)
		}
		if ref.PackageName != "" {
			fmt.Fprintf(&sb, " in package %s", ref.PackageName)
		}
		if ref.Description != "" {
			fmt.Fprintf(&sb, ": %s", ref.Description)
		}
		sb.WriteString("\n")
	}
	if count == 0 {
		return ""
	}
	fmt.Fprintf(&sb, "Total: %d (found by the %s lookup)", count, last.Strategy.Name)
	return sb.String()
}
