package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/tinyfsm/pkg/blueprint"
)

// DescribeMarkdown summarizes a blueprint document as markdown.
func DescribeMarkdown(doc *blueprint.Document) string {
	var sb strings.Builder

	title := doc.Name
	if title == "" {
		title = "Blueprint"
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)
	if doc.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", doc.Description)
	}
	fmt.Fprintf(&sb, "Initial state: **%s**\n\n", doc.Initial)

	sb.WriteString("## States\n\n")
	sb.WriteString("| State | Aspects |\n|---|---|\n")
	for _, name := range doc.StateNames() {
		fmt.Fprintf(&sb, "| %s | %s |\n", name, aspectList(doc.States[name]))
	}

	if edges := doc.Edges(); len(edges) > 0 {
		sb.WriteString("\n## Transitions\n\n")
		sb.WriteString("| From | To | Trigger |\n|---|---|---|\n")
		for _, e := range edges {
			trigger := e.Aspect
			if e.Detail != "" {
				trigger = fmt.Sprintf("%s (%s)", e.Aspect, e.Detail)
			}
			fmt.Fprintf(&sb, "| %s | %s | %s |\n", e.From, e.To, trigger)
		}
	}

	if len(doc.OnEnd) > 0 {
		fmt.Fprintf(&sb, "\n## On end\n\n%s\n", aspectList(doc.OnEnd))
	}

	if unreachable := doc.Unreachable(); len(unreachable) > 0 {
		fmt.Fprintf(&sb, "\n> Not reachable through static transitions: %s\n", strings.Join(unreachable, ", "))
	}
	return sb.String()
}

func aspectList(specs []blueprint.AspectSpec) string {
	if len(specs) == 0 {
		return "-"
	}
	names := make([]string, 0, len(specs))
	for _, a := range specs {
		names = append(names, "`"+a.Use+"`")
	}
	return strings.Join(slices.Compact(names), ", ")
}
