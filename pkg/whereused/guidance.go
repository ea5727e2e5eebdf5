package whereused

import (
	"fmt"
	"strings"
)

// guiTransaction names the SAP GUI entry point that offers a where-used
// list for each declared type.
var guiTransaction = map[ObjectType]string{
	TypeClass:     "SE24 (Class Builder)",
	TypeInterface: "SE24 (Class Builder)",
	TypeProgram:   "SE38 (ABAP Editor)",
	TypeFunction:  "SE37 (Function Builder)",
	TypeTable:     "SE11 (ABAP Dictionary)",
	TypeStructure: "SE11 (ABAP Dictionary)",
}

func manualAlternatives(q ObjectQuery) []string {
	gui, ok := guiTransaction[q.DeclaredType]
	if !ok {
		gui = "SE11, SE24, SE37 or SE38 (depending on the object kind)"
	}
	return []string{
		fmt.Sprintf("SAP GUI transaction %s: open %s and choose Where-Used List (Ctrl+Shift+F3).", gui, q.Name),
		fmt.Sprintf("ABAP Development Tools (Eclipse): open %s and run Get Where-Used List (Ctrl+Shift+G).", q.Name),
		fmt.Sprintf("Repository Information System (SE84): find %s and choose Where-Used List.", q.Name),
		fmt.Sprintf("Code search: run report RS_ABAP_SOURCE_SCAN or transaction CODE_SCANNER for %q.", q.Name),
		fmt.Sprintf("Object Navigator (SE80): open the package of %s and review its dependent objects.", q.Name),
	}
}

func describeType(t ObjectType) string {
	if t == TypeUnknown || t == "" {
		return "UNKNOWN (not specified or not recognised)"
	}
	return string(t)
}

func describeOutcome(o Outcome) string {
	switch o.Status {
	case StatusError:
		if o.StatusCode != 0 {
			return fmt.Sprintf("ERROR (HTTP %d)", o.StatusCode)
		}
		return "ERROR (no response)"
	default:
		return string(o.Status)
	}
}

// FormatGuidance renders the fallback document returned when no strategy
// produced usage data. Output depends only on q and the outcome statuses.
func FormatGuidance(q ObjectQuery, outcomes []Outcome) ContentItem {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Where-used list for %s could not be determined automatically.\n\n", q.Name)
	fmt.Fprintf(&sb, "Object name:  %s\n", q.Name)
	fmt.Fprintf(&sb, "Object type:  %s\n", describeType(q.DeclaredType))
	fmt.Fprintf(&sb, "Max results:  %d\n\n", q.MaxResults)

	if len(outcomes) == 0 {
		sb.WriteString("Strategies attempted: none\n\n")
	} else {
		fmt.Fprintf(&sb, "Strategies attempted (%d, none returned usage data):\n", len(outcomes))
		for i, o := range outcomes {
			fmt.Fprintf(&sb, "  %d. %s (%s): %s\n", i+1, o.Strategy.Name, o.Strategy.RemoteObjectType, describeOutcome(o))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("The usage index of the connected system returned no references for this object.\n")
	sb.WriteString("Look them up manually with one of these alternatives:\n")
	for i, alt := range manualAlternatives(q) {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, alt)
	}

	sb.WriteString("\nTo retry with a different interpretation, set object_type to one of:\n")
	names := make([]string, len(DeclarableTypes))
	for i, t := range DeclarableTypes {
		names[i] = string(t)
	}
	sb.WriteString(strings.Join(names, ", "))

	return TextItem(sb.String())
}
