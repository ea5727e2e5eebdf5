package adt

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"
)

// doerFunc adapts a function to HTTPDoer.
type doerFunc func(*http.Request) (*http.Response, error)

func (f doerFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }

// sequenceClient returns the given responses in order and records requests.
type sequenceClient struct {
	mu        sync.Mutex
	responses []*http.Response
	requests  []*http.Request
}

func (s *sequenceClient) Do(req *http.Request) (*http.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if len(s.responses) == 0 {
		return newTestResponse(http.StatusInternalServerError, "unexpected request"), nil
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	return resp, nil
}

func responseWithHeader(status int, body string, key, value string) *http.Response {
	resp := newTestResponse(status, body)
	resp.Header = http.Header{}
	if key != "" {
		resp.Header.Set(key, value)
	}
	return resp
}

func testTransport(client HTTPDoer, opts ...Option) *Transport {
	return NewTransportWithClient(NewConfig("https://sap.example.com:44300", "user", "pass", opts...), client)
}

func TestTransport_FetchesCSRFBeforePost(t *testing.T) {
	client := &sequenceClient{responses: []*http.Response{
		responseWithHeader(http.StatusOK, "", "X-CSRF-Token", "token-1"),
		responseWithHeader(http.StatusOK, "<ok/>", "", ""),
	}}
	tr := testTransport(client)

	resp, err := tr.Request(context.Background(), "/sap/bc/adt/repository/informationsystem/usageReferences", &RequestOptions{
		Method: http.MethodPost,
		Body:   UsageReferenceRequestBody(),
	})
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if string(resp.Body) != "<ok/>" {
		t.Errorf("Body = %q", resp.Body)
	}

	if len(client.requests) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(client.requests))
	}
	head := client.requests[0]
	if head.Method != http.MethodHead || head.URL.Path != "/sap/bc/adt/core/discovery" {
		t.Errorf("first request = %s %s", head.Method, head.URL.Path)
	}
	if head.Header.Get("X-CSRF-Token") != "fetch" {
		t.Errorf("CSRF fetch header = %q", head.Header.Get("X-CSRF-Token"))
	}
	post := client.requests[1]
	if post.Header.Get("X-CSRF-Token") != "token-1" {
		t.Errorf("POST CSRF token = %q, want token-1", post.Header.Get("X-CSRF-Token"))
	}
	if post.Header.Get("Content-Type") != "application/xml" {
		t.Errorf("Content-Type = %q", post.Header.Get("Content-Type"))
	}
}

func TestTransport_RefreshesCSRFOnForbidden(t *testing.T) {
	client := &sequenceClient{responses: []*http.Response{
		responseWithHeader(http.StatusOK, "", "X-CSRF-Token", "stale"),
		responseWithHeader(http.StatusForbidden, "CSRF token validation failed", "X-CSRF-Token", "Required"),
		responseWithHeader(http.StatusOK, "", "X-CSRF-Token", "fresh"),
		responseWithHeader(http.StatusOK, "done", "", ""),
	}}
	tr := testTransport(client)

	resp, err := tr.Request(context.Background(), "/sap/bc/adt/datapreview/ddic", &RequestOptions{Method: http.MethodPost})
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if string(resp.Body) != "done" {
		t.Errorf("Body = %q", resp.Body)
	}
	if got := client.requests[3].Header.Get("X-CSRF-Token"); got != "fresh" {
		t.Errorf("retry CSRF token = %q, want fresh", got)
	}
}

func TestTransport_GetSkipsCSRF(t *testing.T) {
	client := &sequenceClient{responses: []*http.Response{responseWithHeader(http.StatusOK, "source", "", "")}}
	tr := testTransport(client)

	if _, err := tr.Request(context.Background(), "/sap/bc/adt/programs/programs/ZTEST/source/main", nil); err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if len(client.requests) != 1 || client.requests[0].Method != http.MethodGet {
		t.Fatalf("requests = %d", len(client.requests))
	}
	req := client.requests[0]
	if req.Header.Get("Accept") != "*/*" {
		t.Errorf("Accept = %q", req.Header.Get("Accept"))
	}
	if req.Header.Get("X-sap-adt-sessiontype") != "stateful" {
		t.Errorf("session type header = %q", req.Header.Get("X-sap-adt-sessiontype"))
	}
	user, pass, ok := req.BasicAuth()
	if !ok || user != "user" || pass != "pass" {
		t.Errorf("BasicAuth = %q %q %v", user, pass, ok)
	}
}

func TestTransport_APIError(t *testing.T) {
	client := &sequenceClient{responses: []*http.Response{responseWithHeader(http.StatusInternalServerError, "short dump", "", "")}}
	tr := testTransport(client)

	_, err := tr.Request(context.Background(), "/sap/bc/adt/repository/informationsystem/textsearch", nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.StatusCode != http.StatusInternalServerError || apiErr.Message != "short dump" {
		t.Errorf("APIError = %+v", apiErr)
	}
	if apiErr.Path != "/sap/bc/adt/repository/informationsystem/textsearch" {
		t.Errorf("Path = %s", apiErr.Path)
	}
	if IsNotFoundError(err) {
		t.Error("500 is not a not-found error")
	}
	if StatusCode(err) != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d", StatusCode(err))
	}
}

func TestTransport_RequestTimeout(t *testing.T) {
	blocking := doerFunc(func(req *http.Request) (*http.Response, error) {
		<-req.Context().Done()
		return nil, req.Context().Err()
	})
	tr := testTransport(blocking)

	start := time.Now()
	_, err := tr.Request(context.Background(), "/sap/bc/adt/repository/informationsystem/textsearch", &RequestOptions{Timeout: 20 * time.Millisecond})

	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TransportError, got %T: %v", err, err)
	}
	if !te.Timeout() {
		t.Error("Timeout() = false, want true")
	}
	if !strings.Contains(err.Error(), "timed out") {
		t.Errorf("error = %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("request took %v", elapsed)
	}
}

func TestTransport_BuildURL(t *testing.T) {
	tr := testTransport(nil, WithClient("100"), WithLanguage("DE"))

	got, err := tr.buildURL("sap/bc/adt/repository/informationsystem/search", map[string][]string{"query": {"Z*"}})
	if err != nil {
		t.Fatalf("buildURL failed: %v", err)
	}
	want := "https://sap.example.com:44300/sap/bc/adt/repository/informationsystem/search?query=Z%2A&sap-client=100&sap-language=DE"
	if got != want {
		t.Errorf("buildURL = %s\nwant %s", got, want)
	}
}

func TestTransport_SessionID(t *testing.T) {
	resp := responseWithHeader(http.StatusOK, "", "Set-Cookie", "sap-contextid=ctx-42; path=/")
	client := &sequenceClient{responses: []*http.Response{resp}}
	tr := testTransport(client)

	if _, err := tr.Request(context.Background(), "/sap/bc/adt/core/discovery", nil); err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if tr.SessionID() != "ctx-42" {
		t.Errorf("SessionID = %q", tr.SessionID())
	}
}

func TestTransport_CSRFFetchUnauthorized(t *testing.T) {
	client := &sequenceClient{responses: []*http.Response{responseWithHeader(http.StatusUnauthorized, "", "", "")}}
	tr := testTransport(client)

	_, err := tr.Request(context.Background(), "/sap/bc/adt/datapreview/ddic", &RequestOptions{Method: http.MethodPost})
	if StatusCode(err) != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
	if len(client.requests) != 1 {
		t.Errorf("POST should not be sent without a token, got %d requests", len(client.requests))
	}
}

func TestTransportError_Unwrap(t *testing.T) {
	cause := io.ErrUnexpectedEOF
	err := error(&TransportError{Path: "/x", Err: cause})
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("TransportError should unwrap to its cause")
	}
}
