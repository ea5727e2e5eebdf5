//go:build integration

// ABOUTME: Integration test helpers for SAP ADT integration tests.
// ABOUTME: Provides getIntegrationClient() for tests needing a real SAP connection.

package adt

import (
	"testing"
	"time"

	"github.com/vibingsteamer/mcp-abap-adt/pkg/testutil"
)

// getIntegrationClient creates an ADT client for integration tests.
// Loads credentials from .env file or environment variables.
func getIntegrationClient(t *testing.T) *Client {
	creds := testutil.SAPCredentials(t)

	opts := []Option{
		WithClient(creds.Client),
		WithLanguage(creds.Language),
		WithTimeout(30 * time.Second),
	}
	if creds.Insecure {
		opts = append(opts, WithInsecureSkipVerify())
	}
	return NewClient(creds.URL, creds.User, creds.Password, opts...)
}
