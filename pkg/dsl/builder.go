package dsl

import (
	"fmt"

	"github.com/aretw0/statemap/pkg/domain"
)

// Builder manages the graph construction.
// Nodes are emitted in the order they were first added, which is the order
// the projector walks them in.
type Builder struct {
	order []string
	nodes map[string]*NodeBuilder
}

// New creates a new graph builder.
func New() *Builder {
	return &Builder{
		nodes: make(map[string]*NodeBuilder),
	}
}

// Add creates a new node in the graph, defaulting to category State.
// If the node already exists, it returns the existing builder.
func (b *Builder) Add(key string) *NodeBuilder {
	if nb, ok := b.nodes[key]; ok {
		return nb
	}
	nb := &NodeBuilder{
		node:    domain.NewNode(key, domain.CategoryState),
		builder: b,
	}
	b.nodes[key] = nb
	b.order = append(b.order, key)
	return nb
}

// Build compiles the recorded nodes and links into a graph.
// Links may point at keys that were never added; they are kept and reported
// as dangling by the projector.
func (b *Builder) Build() (*domain.Graph, error) {
	nodes := make([]domain.Node, 0, len(b.order))
	var links []domain.Link
	for _, key := range b.order {
		nb := b.nodes[key]
		nodes = append(nodes, nb.node)
		links = append(links, nb.links...)
	}

	g := domain.NewGraph()
	if err := g.Replace(nodes, links); err != nil {
		return nil, fmt.Errorf("failed to build graph: %w", err)
	}
	return g, nil
}

// MustBuild is like Build but panics on error. Intended for tests and examples.
func (b *Builder) MustBuild() *domain.Graph {
	g, err := b.Build()
	if err != nil {
		panic(err)
	}
	return g
}
