package domain

import "fmt"

// Graph is the in-memory diagram model.
// Nodes and links keep their insertion order, which is the traversal order the
// projector relies on. A Graph is not safe for concurrent mutation; the editor
// serializes access to it.
type Graph struct {
	nodes []Node
	index map[string]int
	links []Link
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{index: make(map[string]int)}
}

// AddNode appends a node. Keys must be non-empty and unique.
func (g *Graph) AddNode(n Node) error {
	if n.Key == "" {
		return ErrEmptyKey
	}
	if _, exists := g.index[n.Key]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateKey, n.Key)
	}
	g.index[n.Key] = len(g.nodes)
	g.nodes = append(g.nodes, n.Clone())
	return nil
}

// AddLink appends a link. The destination is not required to exist: a
// dangling link is kept as-is and skipped during projection.
func (g *Graph) AddLink(l Link) error {
	if l.From == "" {
		return ErrEmptyKey
	}
	if _, ok := g.index[l.From]; !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, l.From)
	}
	g.links = append(g.links, l)
	return nil
}

// RemoveNode deletes a node together with every link touching it.
func (g *Graph) RemoveNode(key string) error {
	pos, ok := g.index[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, key)
	}
	g.nodes = append(g.nodes[:pos], g.nodes[pos+1:]...)
	g.reindex()

	kept := g.links[:0]
	for _, l := range g.links {
		if l.From != key && l.To != key {
			kept = append(kept, l)
		}
	}
	g.links = kept
	return nil
}

// RemoveLinks deletes every link leaving from's port. It returns how many
// links were removed.
func (g *Graph) RemoveLinks(from, port string) int {
	kept := g.links[:0]
	removed := 0
	for _, l := range g.links {
		if l.From == from && l.FromPort == port {
			removed++
			continue
		}
		kept = append(kept, l)
	}
	g.links = kept
	return removed
}

// UpdateNode replaces the node stored under n.Key, keeping its position.
func (g *Graph) UpdateNode(n Node) error {
	pos, ok := g.index[n.Key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, n.Key)
	}
	g.nodes[pos] = n.Clone()
	return nil
}

// Node looks up a node by key.
func (g *Graph) Node(key string) (Node, bool) {
	pos, ok := g.index[key]
	if !ok {
		return Node{}, false
	}
	return g.nodes[pos].Clone(), true
}

// Has reports whether a node with the key exists.
func (g *Graph) Has(key string) bool {
	_, ok := g.index[key]
	return ok
}

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.nodes))
	for i, n := range g.nodes {
		out[i] = n.Clone()
	}
	return out
}

// Links returns every link in insertion order.
func (g *Graph) Links() []Link {
	out := make([]Link, len(g.links))
	copy(out, g.links)
	return out
}

// LinksOutOf returns the links leaving the node, in insertion order.
func (g *Graph) LinksOutOf(key string) []Link {
	var out []Link
	for _, l := range g.links {
		if l.From == key {
			out = append(out, l)
		}
	}
	return out
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Replace swaps the whole model in a single step. If the new model is
// rejected the graph is left untouched.
func (g *Graph) Replace(nodes []Node, links []Link) error {
	next := NewGraph()
	for _, n := range nodes {
		if err := next.AddNode(n); err != nil {
			return err
		}
	}
	for _, l := range links {
		if err := next.AddLink(l); err != nil {
			return err
		}
	}
	*g = *next
	return nil
}

// Clear removes every node and link.
func (g *Graph) Clear() {
	*g = *NewGraph()
}

// Clone returns a deep copy of the graph.
func (g *Graph) Clone() *Graph {
	out := &Graph{
		nodes: g.Nodes(),
		index: make(map[string]int, len(g.index)),
		links: g.Links(),
	}
	for k, v := range g.index {
		out.index[k] = v
	}
	return out
}

func (g *Graph) reindex() {
	g.index = make(map[string]int, len(g.nodes))
	for i, n := range g.nodes {
		g.index[n.Key] = i
	}
}
