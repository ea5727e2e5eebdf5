//go:build integration

// ABOUTME: Integration tests for read operations (GetProgram, GetTable, usage references, etc.).
// ABOUTME: Tests use standard SAP objects that exist in any system.

package adt

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"
)

func TestIntegration_SearchObject(t *testing.T) {
	client := getIntegrationClient(t)

	results, err := client.SearchObject(context.Background(), "CL_*", 10)
	if err != nil {
		t.Fatalf("SearchObject failed: %v", err)
	}
	t.Logf("Found %d results", len(results))
}

func TestIntegration_GetProgram(t *testing.T) {
	client := getIntegrationClient(t)

	source, err := client.GetProgram(context.Background(), "SAPMSSY0")
	if err != nil {
		t.Skipf("Could not read SAPMSSY0: %v", err)
	}
	if !strings.Contains(strings.ToUpper(source), "PROGRAM") {
		t.Errorf("unexpected program source (%d chars)", len(source))
	}
}

func TestIntegration_GetTable(t *testing.T) {
	client := getIntegrationClient(t)

	source, err := client.GetTable(context.Background(), "T000")
	if err != nil {
		t.Fatalf("GetTable failed: %v", err)
	}
	if !strings.Contains(strings.ToUpper(source), "MANDT") {
		t.Error("T000 definition should contain MANDT")
	}
}

func TestIntegration_GetTableContents(t *testing.T) {
	client := getIntegrationClient(t)

	contents, err := client.GetTableContents(context.Background(), "T000", 5)
	if err != nil {
		t.Fatalf("GetTableContents failed: %v", err)
	}
	if len(contents.Columns) == 0 {
		t.Error("expected columns for T000")
	}
}

func TestIntegration_UsageReferences(t *testing.T) {
	client := getIntegrationClient(t)

	resp, err := client.Transport().Request(context.Background(), "/sap/bc/adt/repository/informationsystem/usageReferences", &RequestOptions{
		Method:      http.MethodPost,
		Query:       url.Values{"uri": []string{"/sap/bc/adt/ddic/tables/T000"}},
		Body:        UsageReferenceRequestBody(),
		ContentType: "application/*",
		Accept:      "application/*",
	})
	if err != nil {
		t.Fatalf("usageReferences failed: %v", err)
	}
	refs, err := ParseUsageReferences(resp.Body)
	if err != nil {
		t.Fatalf("ParseUsageReferences failed: %v", err)
	}
	t.Logf("T000 has %d usage references", len(refs))
}
