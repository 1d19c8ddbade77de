package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/tinyfsm/pkg/blueprint"
	"github.com/aretw0/tinyfsm/pkg/domain"
	"github.com/aretw0/tinyfsm/pkg/registry"
)

// Overlay highlights runtime data on the graph.
type Overlay struct {
	Visited []string
	Current string
}

// GenerateMermaid produces a Mermaid flowchart of the document's states.
// Shapes:
// - Initial state: ((Circle))
// - Terminal state: (((Double circle)))
// - Other states: [Rectangle]
// Signal transitions are dotted and timed ones carry their delay as a label.
func GenerateMermaid(doc *blueprint.Document, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, name := range doc.StateNames() {
		opener, closer := "[", "]"
		if name == doc.Initial {
			opener, closer = "((", "))"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", sanitizeMermaidID(name), opener, name, closer)
	}

	edges := doc.Edges()
	ends := len(doc.OnEnd) > 0
	for _, e := range edges {
		if e.To == domain.StateEnd {
			ends = true
		}
	}
	if ends {
		fmt.Fprintf(&sb, "    %s(((\"%s\")))\n", sanitizeMermaidID(domain.StateEnd), domain.StateEnd)
	}

	for _, e := range edges {
		from, to := sanitizeMermaidID(e.From), sanitizeMermaidID(e.To)
		label := strings.ReplaceAll(e.Detail, "\"", "'")

		var arrow string
		switch {
		case e.Aspect == registry.AspectTransitionOnSignal:
			arrow = fmt.Sprintf("-. ⚡ %s .->", label)
		case label != "":
			arrow = fmt.Sprintf("-- \"%s\" -->", label)
		default:
			arrow = "-->"
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", from, arrow, to)
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Black text keeps the highlight readable on both light and dark themes.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, name := range overlay.Visited {
			id := sanitizeMermaidID(name)
			if id != "" && !seen[id] {
				seen[id] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", id)
			}
		}
		if overlay.Current != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.Current))
		}
	}

	return sb.String()
}

// end is a reserved word in Mermaid flowcharts, so every id gets a prefix.
func sanitizeMermaidID(id string) string {
	r := strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_")
	return "s_" + r.Replace(id)
}
