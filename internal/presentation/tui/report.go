package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/statemap/pkg/domain"
	"github.com/aretw0/statemap/pkg/projector"
)

// Report gathers what the describe command shows about one document.
type Report struct {
	Title       string
	Document    *domain.Document
	Errors      []error
	Diagnostics []projector.Diagnostic
	// Unreachable lists entities no run can reach from the entry point.
	Unreachable []string
}

// Markdown renders the report as a markdown document.
func (r Report) Markdown() string {
	var sb strings.Builder

	title := r.Title
	if title == "" {
		title = "State configuration"
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)

	doc := r.Document
	if doc == nil {
		sb.WriteString("_No entry point: the document is empty._\n\n")
	} else {
		entry := "none"
		if ids := doc.EntryPoints(); len(ids) > 0 {
			entry = "`" + strings.Join(ids, "`, `") + "`"
		}
		fmt.Fprintf(&sb, "**Entry point:** %s  \n", entry)
		fmt.Fprintf(&sb, "**Entities:** %d states, %d decisions, %d super-states\n\n",
			len(doc.States), len(doc.Decisions), len(doc.SuperStates))

		if len(doc.States) > 0 {
			sb.WriteString("## States\n\n| id | links | flags |\n|---|---|---|\n")
			for _, s := range doc.States {
				fmt.Fprintf(&sb, "| `%s` | %s | %s |\n", s.ID, formatLinks(s.Links), stateFlags(s))
			}
			sb.WriteString("\n")
		}
		if len(doc.Decisions) > 0 {
			sb.WriteString("## Decisions\n\n| id | condition | links |\n|---|---|---|\n")
			for _, d := range doc.Decisions {
				fmt.Fprintf(&sb, "| `%s` | `%s` | %s |\n", d.ID, d.Concrete, formatLinks(d.Links))
			}
			sb.WriteString("\n")
		}
		if len(doc.SuperStates) > 0 {
			sb.WriteString("## Super-states\n\n| id | entry sub-state | links |\n|---|---|---|\n")
			for _, ss := range doc.SuperStates {
				entry := "-"
				if ss.EntrySubState != "" {
					entry = "`" + ss.EntrySubState + "`"
				}
				fmt.Fprintf(&sb, "| `%s` | %s | %s |\n", ss.ID, entry, formatLinks(ss.Links))
			}
			sb.WriteString("\n")
		}
	}

	sb.WriteString("## Validation\n\n")
	if len(r.Errors) == 0 {
		sb.WriteString("No problems found.\n")
	} else {
		for _, err := range r.Errors {
			fmt.Fprintf(&sb, "- %s\n", err)
		}
	}

	if len(r.Unreachable) > 0 {
		sb.WriteString("\n## Unreachable\n\n")
		for _, id := range r.Unreachable {
			fmt.Fprintf(&sb, "- `%s`\n", id)
		}
	}

	if len(r.Diagnostics) > 0 {
		sb.WriteString("\n## Projection notes\n\n")
		for _, d := range r.Diagnostics {
			fmt.Fprintf(&sb, "- %s\n", d)
		}
	}

	return sb.String()
}

func formatLinks(l domain.Links) string {
	if len(l) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(l))
	for _, port := range l.Ports() {
		parts = append(parts, fmt.Sprintf("%s → `%s`", port, l[port]))
	}
	return strings.Join(parts, ", ")
}

func stateFlags(s domain.State) string {
	var flags []string
	if s.EntryPoint {
		flags = append(flags, "entry")
	}
	if s.TurboSkip {
		flags = append(flags, "turbo skip")
	}
	if s.CascadeSkip {
		flags = append(flags, "cascade skip")
	}
	if len(flags) == 0 {
		return "-"
	}
	return strings.Join(flags, ", ")
}
