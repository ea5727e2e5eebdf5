package adt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// HTTPDoer is an interface for executing HTTP requests.
// This abstraction allows for easy testing with mock implementations.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Transport handles HTTP communication with SAP ADT REST API.
// It manages CSRF tokens, sessions, and authentication automatically.
// Failed requests are never retried here; callers decide what to try next.
type Transport struct {
	config     *Config
	httpClient HTTPDoer

	// CSRF token management
	csrfToken string
	csrfMu    sync.RWMutex

	// Session management
	sessionID string
	sessionMu sync.RWMutex
}

// NewTransport creates a new Transport with the given configuration.
func NewTransport(cfg *Config) *Transport {
	return &Transport{
		config:     cfg,
		httpClient: cfg.NewHTTPClient(),
	}
}

// NewTransportWithClient creates a new Transport with a custom HTTP client.
// This is useful for testing with mock HTTP clients.
func NewTransportWithClient(cfg *Config, client HTTPDoer) *Transport {
	return &Transport{
		config:     cfg,
		httpClient: client,
	}
}

// RequestOptions contains options for an HTTP request.
type RequestOptions struct {
	Method      string
	Headers     map[string]string
	Query       url.Values
	Body        []byte
	ContentType string
	Accept      string
	// Timeout bounds this single request; zero leaves only the client timeout.
	Timeout time.Duration
}

// Response wraps an HTTP response with convenience methods.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Request performs an HTTP request to the ADT API.
// Non-2xx responses are returned as *APIError, network failures and
// timeouts as *TransportError.
func (t *Transport) Request(ctx context.Context, path string, opts *RequestOptions) (*Response, error) {
	if opts == nil {
		opts = &RequestOptions{}
	}
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	reqURL, err := t.buildURL(path, opts.Query)
	if err != nil {
		return nil, fmt.Errorf("building URL: %w", err)
	}

	// Ensure CSRF token is available for modifying requests
	if isModifyingMethod(method) && t.getCSRFToken() == "" {
		if err := t.fetchCSRFToken(ctx); err != nil {
			return nil, fmt.Errorf("fetching CSRF token: %w", err)
		}
	}

	resp, body, err := t.do(ctx, method, reqURL, path, opts)
	if err != nil {
		return nil, err
	}

	// Refresh an expired CSRF token once
	if resp.StatusCode == http.StatusForbidden && isModifyingMethod(method) {
		if err := t.fetchCSRFToken(ctx); err != nil {
			return nil, fmt.Errorf("refreshing CSRF token: %w", err)
		}
		resp, body, err = t.do(ctx, method, reqURL, path, opts)
		if err != nil {
			return nil, err
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Path:       path,
		}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}, nil
}

// do executes one HTTP exchange and reads the full body.
func (t *Transport) do(ctx context.Context, method, reqURL, path string, opts *RequestOptions) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if opts.Body != nil {
		bodyReader = bytes.NewReader(opts.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return nil, nil, fmt.Errorf("creating request: %w", err)
	}

	for k, v := range t.config.AuthHeaders() {
		req.Header[k] = v
	}
	t.setDefaultHeaders(req, opts)

	if isModifyingMethod(method) {
		req.Header.Set("X-CSRF-Token", t.getCSRFToken())
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, nil, &TransportError{Path: path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &TransportError{Path: path, Err: fmt.Errorf("reading response body: %w", err)}
	}

	if token := resp.Header.Get("X-CSRF-Token"); token != "" && token != "Required" {
		t.setCSRFToken(token)
	}
	if sessionID := t.extractSessionID(resp); sessionID != "" {
		t.setSessionID(sessionID)
	}

	return resp, body, nil
}

// fetchCSRFToken retrieves a CSRF token from the server.
// HEAD on /core/discovery is much cheaper than GET on /discovery.
func (t *Transport) fetchCSRFToken(ctx context.Context) error {
	const discoveryPath = "/sap/bc/adt/core/discovery"

	reqURL, err := t.buildURL(discoveryPath, nil)
	if err != nil {
		return fmt.Errorf("building URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	for k, v := range t.config.AuthHeaders() {
		req.Header[k] = v
	}
	req.Header.Set("X-CSRF-Token", "fetch")
	req.Header.Set("Accept", "*/*")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return &TransportError{Path: discoveryPath, Err: err}
	}
	defer resp.Body.Close()

	// Drain body to allow connection reuse
	_, _ = io.Copy(io.Discard, resp.Body)

	// HEAD may answer 400 and still carry a token; 401/403 never do.
	token := resp.Header.Get("X-CSRF-Token")
	if token == "" || token == "Required" {
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return &APIError{StatusCode: resp.StatusCode, Message: "authentication failed: check username/password", Path: discoveryPath}
		case http.StatusForbidden:
			return &APIError{StatusCode: resp.StatusCode, Message: "access forbidden: check user authorizations", Path: discoveryPath}
		default:
			return fmt.Errorf("no CSRF token in response (HTTP %d)", resp.StatusCode)
		}
	}

	t.setCSRFToken(token)
	return nil
}

// buildURL constructs the full URL for an API request.
func (t *Transport) buildURL(path string, query url.Values) (string, error) {
	base := strings.TrimSuffix(t.config.BaseURL, "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	u, err := url.Parse(base + path)
	if err != nil {
		return "", err
	}

	// Merge query parameters
	q := u.Query()
	if t.config.Client != "" {
		q.Set("sap-client", t.config.Client)
	}
	if t.config.Language != "" {
		q.Set("sap-language", t.config.Language)
	}
	for k, v := range query {
		for _, val := range v {
			q.Add(k, val)
		}
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// setDefaultHeaders sets default headers on a request.
func (t *Transport) setDefaultHeaders(req *http.Request, opts *RequestOptions) {
	// SAP ADT requires */* for many endpoints
	accept := opts.Accept
	if accept == "" {
		accept = "*/*"
	}
	req.Header.Set("Accept", accept)

	if opts.Body != nil {
		contentType := opts.ContentType
		if contentType == "" {
			contentType = "application/xml"
		}
		req.Header.Set("Content-Type", contentType)
	}

	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	switch t.config.SessionType {
	case SessionStateful:
		req.Header.Set("X-sap-adt-sessiontype", "stateful")
	case SessionStateless:
		req.Header.Set("X-sap-adt-sessiontype", "stateless")
	}
}

// extractSessionID extracts the session ID from response cookies.
func (t *Transport) extractSessionID(resp *http.Response) string {
	for _, cookie := range resp.Cookies() {
		if cookie.Name == "sap-contextid" || cookie.Name == "SAP_SESSIONID" {
			return cookie.Value
		}
	}
	return ""
}

// CSRF token accessors with mutex protection
func (t *Transport) getCSRFToken() string {
	t.csrfMu.RLock()
	defer t.csrfMu.RUnlock()
	return t.csrfToken
}

func (t *Transport) setCSRFToken(token string) {
	t.csrfMu.Lock()
	defer t.csrfMu.Unlock()
	t.csrfToken = token
}

// SessionID returns the last session id observed in a response cookie.
func (t *Transport) SessionID() string {
	t.sessionMu.RLock()
	defer t.sessionMu.RUnlock()
	return t.sessionID
}

func (t *Transport) setSessionID(id string) {
	t.sessionMu.Lock()
	defer t.sessionMu.Unlock()
	t.sessionID = id
}

// isModifyingMethod returns true for HTTP methods that need a CSRF token.
func isModifyingMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
		return true
	default:
		return false
	}
}

// APIError represents a non-2xx response from the ADT API.
type APIError struct {
	StatusCode int
	Message    string
	Path       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ADT API error: status %d at %s: %s", e.StatusCode, e.Path, e.Message)
}

// IsNotFound returns true if the error is a 404 Not Found error.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// TransportError represents a request that never produced an HTTP status:
// connection failures, TLS errors and timeouts.
type TransportError struct {
	Path string
	Err  error
}

func (e *TransportError) Error() string {
	if e.Timeout() {
		return fmt.Sprintf("ADT request to %s timed out: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("ADT request to %s failed: %v", e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the request hit its deadline.
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(e.Err, &te) && te.Timeout()
}

// IsNotFoundError checks if an error is an API 404 Not Found error.
func IsNotFoundError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.IsNotFound()
	}
	return false
}

// StatusCode returns the HTTP status carried by err, or 0 when there is none.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
