package adt

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// DefaultMaxResults caps list-style queries when the caller gives no limit.
const DefaultMaxResults = 100

// Client is the main ADT API client.
type Client struct {
	transport *Transport
	config    *Config
}

// NewClient creates a new ADT client with the given configuration.
func NewClient(baseURL, username, password string, opts ...Option) *Client {
	cfg := NewConfig(baseURL, username, password, opts...)
	return &Client{
		transport: NewTransport(cfg),
		config:    cfg,
	}
}

// NewClientWithTransport creates a new client with a custom transport.
// This is useful for testing.
func NewClientWithTransport(cfg *Config, transport *Transport) *Client {
	return &Client{
		transport: transport,
		config:    cfg,
	}
}

// Transport returns the transport the client sends requests through.
func (c *Client) Transport() *Transport {
	return c.transport
}

// getSource fetches a plain-text source endpoint.
func (c *Client) getSource(ctx context.Context, path, what string) (string, error) {
	resp, err := c.transport.Request(ctx, path, &RequestOptions{
		Method: http.MethodGet,
		Accept: "text/plain",
	})
	if err != nil {
		return "", fmt.Errorf("getting %s: %w", what, err)
	}
	return string(resp.Body), nil
}

// objectPath formats an ADT path with an uppercased, path-escaped object name.
// Namespaced objects like /UI5/CL_REPOSITORY_LOAD keep working.
func objectPath(format, name string) string {
	return fmt.Sprintf(format, url.PathEscape(strings.ToUpper(name)))
}

// --- Search Operations ---

// SearchObject searches for ABAP objects by name pattern.
// The query parameter supports wildcards (* for multiple chars, ? for single char).
func (c *Client) SearchObject(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	params := url.Values{}
	params.Set("operation", "quickSearch")
	params.Set("query", query)
	params.Set("maxResults", strconv.Itoa(maxResults))

	resp, err := c.transport.Request(ctx, "/sap/bc/adt/repository/informationsystem/search", &RequestOptions{
		Method: http.MethodGet,
		Query:  params,
		Accept: "application/xml",
	})
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}

	return ParseSearchResults(resp.Body)
}

// --- Source Operations ---

// GetProgram retrieves the source code of an ABAP program.
func (c *Client) GetProgram(ctx context.Context, programName string) (string, error) {
	return c.getSource(ctx, objectPath("/sap/bc/adt/programs/programs/%s/source/main", programName), "program source")
}

// GetClass retrieves the main source code of an ABAP class.
func (c *Client) GetClass(ctx context.Context, className string) (string, error) {
	return c.getSource(ctx, objectPath("/sap/bc/adt/oo/classes/%s/source/main", className), "class source")
}

// GetInterface retrieves the source code of an ABAP interface.
func (c *Client) GetInterface(ctx context.Context, interfaceName string) (string, error) {
	return c.getSource(ctx, objectPath("/sap/bc/adt/oo/interfaces/%s/source/main", interfaceName), "interface source")
}

// GetFunctionGroup retrieves the main source of a function group.
func (c *Client) GetFunctionGroup(ctx context.Context, groupName string) (string, error) {
	return c.getSource(ctx, objectPath("/sap/bc/adt/functions/groups/%s/source/main", groupName), "function group source")
}

// GetFunction retrieves the source code of a function module.
func (c *Client) GetFunction(ctx context.Context, functionName, groupName string) (string, error) {
	sourcePath := fmt.Sprintf("/sap/bc/adt/functions/groups/%s/fmodules/%s/source/main",
		url.PathEscape(strings.ToUpper(groupName)), url.PathEscape(strings.ToUpper(functionName)))
	return c.getSource(ctx, sourcePath, "function source")
}

// GetInclude retrieves the source code of an ABAP include.
func (c *Client) GetInclude(ctx context.Context, includeName string) (string, error) {
	return c.getSource(ctx, objectPath("/sap/bc/adt/programs/includes/%s/source/main", includeName), "include source")
}

// --- Dictionary Operations ---

// GetTable retrieves the source/definition of a database table.
func (c *Client) GetTable(ctx context.Context, tableName string) (string, error) {
	return c.getSource(ctx, objectPath("/sap/bc/adt/ddic/tables/%s/source/main", tableName), "table source")
}

// GetStructure retrieves the source/definition of a data structure.
func (c *Client) GetStructure(ctx context.Context, structName string) (string, error) {
	return c.getSource(ctx, objectPath("/sap/bc/adt/ddic/structures/%s/source/main", structName), "structure source")
}

// GetTypeInfo retrieves a dictionary type definition. Domains are tried
// first; a 404 falls through to the data element endpoint.
func (c *Client) GetTypeInfo(ctx context.Context, typeName string) (string, error) {
	source, err := c.getSource(ctx, objectPath("/sap/bc/adt/ddic/domains/%s/source/main", typeName), "domain")
	if err == nil {
		return source, nil
	}
	if !IsNotFoundError(err) {
		return "", err
	}

	resp, err := c.transport.Request(ctx, objectPath("/sap/bc/adt/ddic/dataelements/%s", typeName), &RequestOptions{
		Method: http.MethodGet,
		Accept: "application/xml",
	})
	if err != nil {
		return "", fmt.Errorf("getting data element: %w", err)
	}
	return string(resp.Body), nil
}

// GetTableContents retrieves data from a database table.
func (c *Client) GetTableContents(ctx context.Context, tableName string, maxRows int) (*TableContentsResult, error) {
	if maxRows <= 0 {
		maxRows = DefaultMaxResults
	}

	params := url.Values{}
	params.Set("rowNumber", strconv.Itoa(maxRows))
	params.Set("ddicEntityName", strings.ToUpper(tableName))

	resp, err := c.transport.Request(ctx, "/sap/bc/adt/datapreview/ddic", &RequestOptions{
		Method: http.MethodPost,
		Query:  params,
		Accept: "application/*",
	})
	if err != nil {
		return nil, fmt.Errorf("getting table contents: %w", err)
	}

	return parseTableContents(resp.Body)
}

// --- Package Operations ---

// GetPackage retrieves the contents of a package using the nodestructure API.
func (c *Client) GetPackage(ctx context.Context, packageName string) (*PackageContent, error) {
	packageName = strings.ToUpper(packageName)

	params := url.Values{}
	params.Set("parent_type", "DEVC/K")
	params.Set("parent_name", packageName)
	params.Set("withShortDescriptions", "true")

	resp, err := c.transport.Request(ctx, "/sap/bc/adt/repository/nodestructure", &RequestOptions{
		Method: http.MethodPost,
		Query:  params,
		Accept: "application/vnd.sap.as+xml",
	})
	if err != nil {
		return nil, fmt.Errorf("getting package contents: %w", err)
	}

	return parsePackageNodeStructure(resp.Body, packageName)
}

// --- Transaction Operations ---

// GetTransaction retrieves the object properties of a transaction code.
func (c *Client) GetTransaction(ctx context.Context, tcode string) (string, error) {
	objectURI := objectPath("/sap/bc/adt/vit/wb/object_type/trant/object_name/%s", tcode)

	params := url.Values{}
	params.Set("uri", objectURI)
	params.Add("facet", "package")
	params.Add("facet", "appl")

	resp, err := c.transport.Request(ctx, "/sap/bc/adt/repository/informationsystem/objectproperties/values", &RequestOptions{
		Method: http.MethodGet,
		Query:  params,
		Accept: "application/xml",
	})
	if err != nil {
		return "", fmt.Errorf("getting transaction: %w", err)
	}
	return string(resp.Body), nil
}
