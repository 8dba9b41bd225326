// Package hydrator rebuilds a diagram graph from a state configuration
// document. The result carries no layout: node locations are left to the
// diagram widget.
package hydrator

import (
	"fmt"

	"github.com/aretw0/statemap/pkg/domain"
	"github.com/aretw0/statemap/pkg/ports"
	"github.com/aretw0/statemap/pkg/schema"
)

// Hydrate validates doc and builds the equivalent graph.
// An invalid document is rejected as a whole with a *schema.AggregateError;
// no partial graph is returned.
func Hydrate(doc *domain.Document) (*domain.Graph, error) {
	if err := schema.Check(doc); err != nil {
		return nil, err
	}

	g := domain.NewGraph()
	for _, node := range nodesOf(doc) {
		if err := g.AddNode(node); err != nil {
			return nil, fmt.Errorf("hydrate: %w", err)
		}
	}

	for _, e := range doc.Entities() {
		links := e.EntityLinks()
		for _, port := range links.Ports() {
			target := links[port]
			if !g.Has(target) {
				return nil, &schema.DanglingLinkTarget{SourceID: e.EntityID(), Port: port, TargetID: target}
			}
			if err := g.AddLink(domain.NewLink(e.EntityID(), port, target)); err != nil {
				return nil, fmt.Errorf("hydrate: %w", err)
			}
		}
	}
	return g, nil
}

// Into hydrates doc and swaps the result into sink in a single Replace call.
// When doc is rejected the sink is not touched.
func Into(sink ports.ModelSink, doc *domain.Document) (*domain.Graph, error) {
	g, err := Hydrate(doc)
	if err != nil {
		return nil, err
	}
	if err := sink.Replace(g.Nodes(), g.Links()); err != nil {
		return nil, fmt.Errorf("replace model: %w", err)
	}
	return g, nil
}

func nodesOf(doc *domain.Document) []domain.Node {
	nodes := make([]domain.Node, 0, doc.Len())
	for _, s := range doc.States {
		category := domain.CategoryState
		if s.EntryPoint {
			category = domain.CategoryStart
		}
		n := domain.NewNode(s.ID, category)
		if s.TurboSkip {
			n.Attrs[domain.AttrTurbo] = true
		}
		if s.CascadeSkip {
			n.Attrs[domain.AttrCascade] = true
		}
		nodes = append(nodes, n)
	}
	for _, d := range doc.Decisions {
		nodes = append(nodes, domain.NewNode(d.ID, domain.CategoryConditional).With(domain.AttrConcrete, d.Concrete))
	}
	for _, ss := range doc.SuperStates {
		n := domain.NewNode(ss.ID, domain.CategorySuperState)
		if ss.EntrySubState != "" {
			n.Attrs[domain.AttrEntrySubState] = ss.EntrySubState
		}
		nodes = append(nodes, n)
	}
	return nodes
}
