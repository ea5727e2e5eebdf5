// Package mcp provides the MCP server implementation for read-only ABAP ADT tools.
// handlers_read.go contains handlers for read operations (GetProgram, GetClass, GetTable, etc.)
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// --- Source Handlers ---

func (s *Server) handleGetProgram(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	programName, errResult := requireStr(request.Params.Arguments, "program_name")
	if errResult != nil {
		return errResult, nil
	}

	source, err := s.adtClient.GetProgram(ctx, programName)
	if err != nil {
		return wrapErr("GetProgram", err), nil
	}
	return mcp.NewToolResultText(source), nil
}

func (s *Server) handleGetClass(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	className, errResult := requireStr(request.Params.Arguments, "class_name")
	if errResult != nil {
		return errResult, nil
	}

	source, err := s.adtClient.GetClass(ctx, className)
	if err != nil {
		return wrapErr("GetClass", err), nil
	}
	return mcp.NewToolResultText(source), nil
}

func (s *Server) handleGetInterface(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	interfaceName, errResult := requireStr(request.Params.Arguments, "interface_name")
	if errResult != nil {
		return errResult, nil
	}

	source, err := s.adtClient.GetInterface(ctx, interfaceName)
	if err != nil {
		return wrapErr("GetInterface", err), nil
	}
	return mcp.NewToolResultText(source), nil
}

func (s *Server) handleGetFunctionGroup(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	groupName, errResult := requireStr(request.Params.Arguments, "function_group")
	if errResult != nil {
		return errResult, nil
	}

	source, err := s.adtClient.GetFunctionGroup(ctx, groupName)
	if err != nil {
		return wrapErr("GetFunctionGroup", err), nil
	}
	return mcp.NewToolResultText(source), nil
}

func (s *Server) handleGetFunction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments
	functionName, errResult := requireStr(args, "function_name")
	if errResult != nil {
		return errResult, nil
	}
	functionGroup, errResult := requireStr(args, "function_group")
	if errResult != nil {
		return errResult, nil
	}

	source, err := s.adtClient.GetFunction(ctx, functionName, functionGroup)
	if err != nil {
		return wrapErr("GetFunction", err), nil
	}
	return mcp.NewToolResultText(source), nil
}

func (s *Server) handleGetInclude(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	includeName, errResult := requireStr(request.Params.Arguments, "include_name")
	if errResult != nil {
		return errResult, nil
	}

	source, err := s.adtClient.GetInclude(ctx, includeName)
	if err != nil {
		return wrapErr("GetInclude", err), nil
	}
	return mcp.NewToolResultText(source), nil
}

// --- Dictionary Handlers ---

func (s *Server) handleGetTable(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tableName, errResult := requireStr(request.Params.Arguments, "table_name")
	if errResult != nil {
		return errResult, nil
	}

	source, err := s.adtClient.GetTable(ctx, tableName)
	if err != nil {
		return wrapErr("GetTable", err), nil
	}
	return mcp.NewToolResultText(source), nil
}

func (s *Server) handleGetStructure(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	structName, errResult := requireStr(request.Params.Arguments, "structure_name")
	if errResult != nil {
		return errResult, nil
	}

	source, err := s.adtClient.GetStructure(ctx, structName)
	if err != nil {
		return wrapErr("GetStructure", err), nil
	}
	return mcp.NewToolResultText(source), nil
}

func (s *Server) handleGetTableContents(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments
	tableName, errResult := requireStr(args, "table_name")
	if errResult != nil {
		return errResult, nil
	}

	contents, err := s.adtClient.GetTableContents(ctx, tableName, getInt(args, "max_rows", 100))
	if err != nil {
		return wrapErr("GetTableContents", err), nil
	}
	return newToolResultJSON(contents), nil
}

func (s *Server) handleGetTypeInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	typeName, errResult := requireStr(request.Params.Arguments, "type_name")
	if errResult != nil {
		return errResult, nil
	}

	info, err := s.adtClient.GetTypeInfo(ctx, typeName)
	if err != nil {
		return wrapErr("GetTypeInfo", err), nil
	}
	return mcp.NewToolResultText(info), nil
}

// --- Repository Handlers ---

func (s *Server) handleGetPackage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	packageName, errResult := requireStr(request.Params.Arguments, "package_name")
	if errResult != nil {
		return errResult, nil
	}

	pkg, err := s.adtClient.GetPackage(ctx, packageName)
	if err != nil {
		return wrapErr("GetPackage", err), nil
	}
	return newToolResultJSON(pkg), nil
}

func (s *Server) handleGetTransaction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tcode, errResult := requireStr(request.Params.Arguments, "transaction_name")
	if errResult != nil {
		return errResult, nil
	}

	props, err := s.adtClient.GetTransaction(ctx, tcode)
	if err != nil {
		return wrapErr("GetTransaction", err), nil
	}
	return mcp.NewToolResultText(props), nil
}
