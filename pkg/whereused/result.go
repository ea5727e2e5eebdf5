package whereused

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vibingsteamer/mcp-abap-adt/pkg/adt"
)

// ContentItem is one unit of tool output.
type ContentItem struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// TextItem wraps text as a ContentItem.
func TextItem(text string) ContentItem {
	return ContentItem{Type: "text", Text: text}
}

// Result is the terminal value of a resolution. StatusCode is zero when no
// HTTP status applies.
type Result struct {
	IsError    bool          `json:"isError"`
	Content    []ContentItem `json:"content"`
	StatusCode int           `json:"statusCode,omitempty"`
}

// Normalize wraps a successful response body verbatim as a single text item.
func Normalize(resp *adt.Response) *Result {
	return &Result{
		Content:    []ContentItem{TextItem(string(resp.Body))},
		StatusCode: resp.StatusCode,
	}
}

// NormalizeError turns err into an error result. API errors keep their status
// and body so the caller can diagnose them.
func NormalizeError(err error) *Result {
	var apiErr *adt.APIError
	if errors.As(err, &apiErr) {
		text := fmt.Sprintf("Error: HTTP %d at %s", apiErr.StatusCode, apiErr.Path)
		if body := strings.TrimSpace(apiErr.Message); body != "" {
			text += "\n" + body
		}
		return &Result{
			IsError:    true,
			Content:    []ContentItem{TextItem(text)},
			StatusCode: apiErr.StatusCode,
		}
	}
	return &Result{
		IsError: true,
		Content: []ContentItem{TextItem("Error: " + err.Error())},
	}
}

// unexpectedErrorResult reports a failure outside the strategy loop along
// with the manual lookups that still work.
func unexpectedErrorResult(q ObjectQuery, err error) *Result {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Error: where-used lookup for %s failed unexpectedly: %v\n\n", q.Name, err)
	sb.WriteString("You can still find usages manually:\n")
	for i, alt := range manualAlternatives(q) {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, alt)
	}
	return &Result{
		IsError: true,
		Content: []ContentItem{TextItem(strings.TrimRight(sb.String(), "\n"))},
	}
}
