package projector

import (
	"fmt"

	"github.com/aretw0/statemap/pkg/domain"
)

// DiagnosticKind classifies a projection diagnostic.
type DiagnosticKind string

const (
	// DiagnosticPortOverwrite: a later link replaced an earlier one on the same port.
	DiagnosticPortOverwrite DiagnosticKind = "port_overwrite"
	// DiagnosticDanglingLink: a link points at a node that is not in the graph.
	DiagnosticDanglingLink DiagnosticKind = "dangling_link"
	// DiagnosticUnknownCategory: a node has a category the document cannot hold.
	DiagnosticUnknownCategory DiagnosticKind = "unknown_category"
)

// Diagnostic describes an edge or node that did not make it into the document
// unchanged. Diagnostics never stop a projection.
type Diagnostic struct {
	Kind     DiagnosticKind  `json:"kind"`
	Node     string          `json:"node"`
	Port     string          `json:"port,omitempty"`
	Target   string          `json:"target,omitempty"`
	Previous string          `json:"previous,omitempty"`
	Category domain.Category `json:"category,omitempty"`
}

func (d Diagnostic) String() string {
	switch d.Kind {
	case DiagnosticPortOverwrite:
		return fmt.Sprintf("%s.%s: link to %q replaced by link to %q", d.Node, d.Port, d.Previous, d.Target)
	case DiagnosticDanglingLink:
		return fmt.Sprintf("%s.%s: destination %q is not in the graph", d.Node, d.Port, d.Target)
	case DiagnosticUnknownCategory:
		return fmt.Sprintf("%s: unknown category %q", d.Node, d.Category)
	}
	return string(d.Kind)
}
