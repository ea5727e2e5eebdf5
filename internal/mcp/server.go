// Package mcp provides the MCP server implementation for read-only ABAP ADT tools.
package mcp

import (
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/vibingsteamer/mcp-abap-adt/pkg/adt"
	"github.com/vibingsteamer/mcp-abap-adt/pkg/whereused"
)

const (
	serverName    = "mcp-abap-adt"
	serverVersion = "1.0.0"
)

// Server wraps the MCP server with the ADT client and the where-used engine.
type Server struct {
	mcpServer *server.MCPServer
	adtClient *adt.Client
	engine    *whereused.Engine
	logger    *zap.Logger
}

// Config holds MCP server configuration.
type Config struct {
	// SAP connection settings
	BaseURL            string
	Username           string
	Password           string
	Client             string
	Language           string
	InsecureSkipVerify bool
	Timeout            time.Duration

	// Cookie authentication (alternative to basic auth)
	Cookies map[string]string

	// Verbose output
	Verbose bool

	// MarkersFile is an optional YAML file overriding the where-used hit markers.
	MarkersFile string

	Logger  *zap.Logger
	Metrics *whereused.Metrics
}

// adtConfig converts the server settings to an ADT connection config.
func (c *Config) adtConfig() *adt.Config {
	var opts []adt.Option
	if c.Client != "" {
		opts = append(opts, adt.WithClient(c.Client))
	}
	if c.Language != "" {
		opts = append(opts, adt.WithLanguage(c.Language))
	}
	if c.InsecureSkipVerify {
		opts = append(opts, adt.WithInsecureSkipVerify())
	}
	if c.Timeout > 0 {
		opts = append(opts, adt.WithTimeout(c.Timeout))
	}
	if len(c.Cookies) > 0 {
		opts = append(opts, adt.WithCookies(c.Cookies))
	}
	if c.Verbose {
		opts = append(opts, adt.WithVerbose())
	}
	return adt.NewConfig(c.BaseURL, c.Username, c.Password, opts...)
}

// NewServer creates a new MCP server for ABAP ADT tools. It fails when the
// connection settings are incomplete or the markers file cannot be used.
func NewServer(cfg *Config) (*Server, error) {
	return newServer(cfg, nil)
}

// newServer builds the server; a non-nil httpClient replaces the real HTTP client.
func newServer(cfg *Config, httpClient adt.HTTPDoer) (*Server, error) {
	if cfg == nil {
		return nil, &adt.ConfigError{Field: "config", Message: "no configuration provided"}
	}
	adtCfg := cfg.adtConfig()
	if err := adtCfg.Validate(); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var transport *adt.Transport
	if httpClient != nil {
		transport = adt.NewTransportWithClient(adtCfg, httpClient)
	} else {
		transport = adt.NewTransport(adtCfg)
	}

	engineOpts := []whereused.Option{
		whereused.WithLogger(logger.Named("whereused")),
		whereused.WithMetrics(cfg.Metrics),
	}
	if cfg.MarkersFile != "" {
		markers, err := whereused.LoadMarkers(cfg.MarkersFile)
		if err != nil {
			return nil, err
		}
		classifier, err := markers.Compile()
		if err != nil {
			return nil, fmt.Errorf("markers file %s: %w", cfg.MarkersFile, err)
		}
		engineOpts = append(engineOpts, whereused.WithClassifier(classifier))
	}

	engine, err := whereused.NewEngine(adtCfg, transport, engineOpts...)
	if err != nil {
		return nil, err
	}

	s := &Server{
		mcpServer: server.NewMCPServer(serverName, serverVersion, server.WithLogging()),
		adtClient: adt.NewClientWithTransport(adtCfg, transport),
		engine:    engine,
		logger:    logger,
	}
	s.registerTools()

	return s, nil
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	s.logger.Info("serving MCP over stdio", zap.String("server", serverName))
	return server.ServeStdio(s.mcpServer)
}

// Engine returns the where-used engine shared by the server's tools.
func (s *Server) Engine() *whereused.Engine {
	return s.engine
}

// registerTools registers all ADT tools with the MCP server.
func (s *Server) registerTools() {
	// GetProgram
	s.mcpServer.AddTool(mcp.NewTool("GetProgram",
		mcp.WithDescription("Retrieve ABAP program source code"),
		mcp.WithString("program_name",
			mcp.Required(),
			mcp.Description("Name of the ABAP program"),
		),
	), s.handleGetProgram)

	// GetClass
	s.mcpServer.AddTool(mcp.NewTool("GetClass",
		mcp.WithDescription("Retrieve ABAP class source code"),
		mcp.WithString("class_name",
			mcp.Required(),
			mcp.Description("Name of the ABAP class"),
		),
	), s.handleGetClass)

	// GetInterface
	s.mcpServer.AddTool(mcp.NewTool("GetInterface",
		mcp.WithDescription("Retrieve ABAP interface source code"),
		mcp.WithString("interface_name",
			mcp.Required(),
			mcp.Description("Name of the ABAP interface"),
		),
	), s.handleGetInterface)

	// GetFunctionGroup
	s.mcpServer.AddTool(mcp.NewTool("GetFunctionGroup",
		mcp.WithDescription("Retrieve ABAP Function Group source code"),
		mcp.WithString("function_group",
			mcp.Required(),
			mcp.Description("Name of the function group"),
		),
	), s.handleGetFunctionGroup)

	// GetFunction
	s.mcpServer.AddTool(mcp.NewTool("GetFunction",
		mcp.WithDescription("Retrieve ABAP Function Module source code"),
		mcp.WithString("function_name",
			mcp.Required(),
			mcp.Description("Name of the function module"),
		),
		mcp.WithString("function_group",
			mcp.Required(),
			mcp.Description("Name of the function group"),
		),
	), s.handleGetFunction)

	// GetInclude
	s.mcpServer.AddTool(mcp.NewTool("GetInclude",
		mcp.WithDescription("Retrieve ABAP Include Source Code"),
		mcp.WithString("include_name",
			mcp.Required(),
			mcp.Description("Name of the ABAP Include"),
		),
	), s.handleGetInclude)

	// GetTable
	s.mcpServer.AddTool(mcp.NewTool("GetTable",
		mcp.WithDescription("Retrieve ABAP table structure"),
		mcp.WithString("table_name",
			mcp.Required(),
			mcp.Description("Name of the ABAP table"),
		),
	), s.handleGetTable)

	// GetStructure
	s.mcpServer.AddTool(mcp.NewTool("GetStructure",
		mcp.WithDescription("Retrieve ABAP Structure"),
		mcp.WithString("structure_name",
			mcp.Required(),
			mcp.Description("Name of the ABAP Structure"),
		),
	), s.handleGetStructure)

	// GetTableContents
	s.mcpServer.AddTool(mcp.NewTool("GetTableContents",
		mcp.WithDescription("Retrieve contents of an ABAP table"),
		mcp.WithString("table_name",
			mcp.Required(),
			mcp.Description("Name of the ABAP table"),
		),
		mcp.WithNumber("max_rows",
			mcp.Description("Maximum number of rows to retrieve (default 100)"),
		),
	), s.handleGetTableContents)

	// GetPackage
	s.mcpServer.AddTool(mcp.NewTool("GetPackage",
		mcp.WithDescription("Retrieve ABAP package details"),
		mcp.WithString("package_name",
			mcp.Required(),
			mcp.Description("Name of the ABAP package"),
		),
	), s.handleGetPackage)

	// GetTypeInfo
	s.mcpServer.AddTool(mcp.NewTool("GetTypeInfo",
		mcp.WithDescription("Retrieve ABAP type information (domain or data element)"),
		mcp.WithString("type_name",
			mcp.Required(),
			mcp.Description("Name of the ABAP type"),
		),
	), s.handleGetTypeInfo)

	// GetTransaction
	s.mcpServer.AddTool(mcp.NewTool("GetTransaction",
		mcp.WithDescription("Retrieve ABAP transaction details"),
		mcp.WithString("transaction_name",
			mcp.Required(),
			mcp.Description("Name of the ABAP transaction"),
		),
	), s.handleGetTransaction)

	// SearchObject
	s.mcpServer.AddTool(mcp.NewTool("SearchObject",
		mcp.WithDescription("Search for ABAP objects using quick search"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query string (use * wildcard for partial match)"),
		),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of results to return (default 100)"),
		),
	), s.handleSearchObject)

	// GetWhereUsed
	s.mcpServer.AddTool(mcp.NewTool("GetWhereUsed",
		mcp.WithDescription("List the objects that use an ABAP object. Tries several lookups and "+
			"returns manual alternatives when the system reports no usages"),
		mcp.WithString("object_name",
			mcp.Required(),
			mcp.Description("Name of the ABAP object (e.g. SBOOK, ZCL_ORDERS, /UI5/CL_REPOSITORY_LOAD)"),
		),
		mcp.WithString("object_type",
			mcp.Description("Object kind: CLASS, INTERFACE, PROGRAM, FUNCTION, TABLE or STRUCTURE. Other values search all kinds"),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of usages to return (default 100)"),
		),
		mcp.WithBoolean("summary",
			mcp.Description("Append a readable list of the usages after the raw response (default false)"),
		),
	), s.handleGetWhereUsed)
}
