package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/statemap/pkg/domain"
)

// GenerateMermaid produces a Mermaid flowchart syntax string from a document.
// It applies semantic styling:
// - Entry state: ((Circle))
// - State: [Rectangle]
// - Decision: {Rhombus}, labeled with its condition
// - SuperState: [[Subroutine]]
// Links are labeled with their port. Error links are dotted.
// When diff is given, added and changed entities are highlighted.
func GenerateMermaid(doc *domain.Document, diff *domain.DocumentDiff) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	if doc == nil {
		return sb.String()
	}

	for _, s := range doc.States {
		opener, closer := "[", "]"
		if s.EntryPoint {
			opener, closer = "((", "))"
		}
		label := s.ID
		var flags []string
		if s.TurboSkip {
			flags = append(flags, "turbo")
		}
		if s.CascadeSkip {
			flags = append(flags, "cascade")
		}
		if len(flags) > 0 {
			label = fmt.Sprintf("%s <br/> skip: %s", label, strings.Join(flags, ", "))
		}
		writeNode(&sb, s.ID, label, opener, closer)
	}
	for _, d := range doc.Decisions {
		writeNode(&sb, d.ID, fmt.Sprintf("%s <br/> %s?", d.ID, d.Concrete), "{", "}")
	}
	for _, ss := range doc.SuperStates {
		writeNode(&sb, ss.ID, ss.ID, "[[", "]]")
	}

	for _, e := range doc.Entities() {
		links := e.EntityLinks()
		for _, port := range links.Ports() {
			writeLink(&sb, e.EntityID(), port, links[port])
		}
	}
	for _, ss := range doc.SuperStates {
		if ss.EntrySubState != "" {
			sb.WriteString(fmt.Sprintf("    %s -. enter .-> %s\n", sanitizeMermaidID(ss.ID), sanitizeMermaidID(ss.EntrySubState)))
		}
	}

	if diff != nil && (len(diff.Added) > 0 || len(diff.Changed) > 0) {
		sb.WriteString("\n    %% Diff Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef added fill:#e8f5e9,stroke:#2e7d32,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef changed fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		for _, id := range diff.Added {
			sb.WriteString(fmt.Sprintf("    class %s added;\n", sanitizeMermaidID(id)))
		}
		for _, id := range diff.Changed {
			sb.WriteString(fmt.Sprintf("    class %s changed;\n", sanitizeMermaidID(id)))
		}
	}

	return sb.String()
}

func writeNode(sb *strings.Builder, id, label, opener, closer string) {
	fmt.Fprintf(sb, "    %s%s\"%s\"%s\n", sanitizeMermaidID(id), opener, escapeLabel(label), closer)
}

func writeLink(sb *strings.Builder, from, port, to string) {
	arrow := fmt.Sprintf("-- %s -->", escapeLabel(port))
	switch port {
	case "":
		arrow = "-->"
	case domain.PortError:
		arrow = fmt.Sprintf("-. %s .->", port)
	}
	fmt.Fprintf(sb, "    %s %s %s\n", sanitizeMermaidID(from), arrow, sanitizeMermaidID(to))
}

// escapeLabel replaces double quotes, which would close a Mermaid label.
func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
