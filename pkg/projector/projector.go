// Package projector turns a diagram graph into a state configuration document.
//
// Projection walks the nodes in insertion order and, for every node, its
// outgoing links in the order they were drawn. Two links leaving the same port
// collapse into one entry: the later link wins. Links whose destination is not
// part of the graph are skipped. Both behaviors are surfaced by Report so a
// host can warn about them.
package projector

import (
	"github.com/aretw0/statemap/pkg/domain"
	"github.com/aretw0/statemap/pkg/ports"
)

// Project builds the state configuration for g.
// It returns nil when no node has category Start. The graph is not modified.
func Project(g ports.GraphView) *domain.Document {
	doc, _ := Report(g)
	return doc
}

// Check reports domain.ErrNoEntryPoint when g would project to an absent document.
func Check(g ports.GraphView) error {
	if !hasEntry(g.Nodes()) {
		return domain.ErrNoEntryPoint
	}
	return nil
}

// Report projects g and returns the diagnostics collected on the way.
func Report(g ports.GraphView) (*domain.Document, []Diagnostic) {
	nodes := g.Nodes()
	if !hasEntry(nodes) {
		return nil, nil
	}

	keys := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		keys[n.Key] = struct{}{}
	}

	doc := domain.NewDocument()
	var diags []Diagnostic

	for _, node := range nodes {
		if node.Category == domain.CategoryComment {
			continue
		}

		links := domain.Links{}
		for _, l := range g.LinksOutOf(node.Key) {
			if _, ok := keys[l.To]; !ok {
				diags = append(diags, Diagnostic{Kind: DiagnosticDanglingLink, Node: node.Key, Port: l.FromPort, Target: l.To})
				continue
			}
			if prev, ok := links[l.FromPort]; ok {
				diags = append(diags, Diagnostic{Kind: DiagnosticPortOverwrite, Node: node.Key, Port: l.FromPort, Target: l.To, Previous: prev})
			}
			links[l.FromPort] = l.To
		}

		switch node.Category {
		case domain.CategoryStart:
			doc.States = append(doc.States, domain.State{
				ID:          node.Key,
				Links:       links,
				EntryPoint:  true,
				TurboSkip:   node.Bool(domain.AttrTurbo),
				CascadeSkip: node.Bool(domain.AttrCascade),
			})
		case domain.CategoryState:
			doc.States = append(doc.States, domain.State{
				ID:          node.Key,
				Links:       links,
				TurboSkip:   node.Bool(domain.AttrTurbo),
				CascadeSkip: node.Bool(domain.AttrCascade),
			})
		case domain.CategoryConditional:
			doc.Decisions = append(doc.Decisions, domain.Decision{
				ID:       node.Key,
				Concrete: node.String(domain.AttrConcrete),
				Links:    links,
			})
		case domain.CategorySuperState:
			doc.SuperStates = append(doc.SuperStates, domain.SuperState{
				ID:            node.Key,
				Links:         links,
				EntrySubState: node.String(domain.AttrEntrySubState),
			})
		default:
			diags = append(diags, Diagnostic{Kind: DiagnosticUnknownCategory, Node: node.Key, Category: node.Category})
		}
	}

	return doc, diags
}

func hasEntry(nodes []domain.Node) bool {
	for _, n := range nodes {
		if n.Category == domain.CategoryStart {
			return true
		}
	}
	return false
}
