package ports

import "github.com/aretw0/statemap/pkg/domain"

// GraphView is what the core consumes from the diagram widget.
// Nodes must be returned in insertion order and LinksOutOf in the order the
// links were drawn; projection results depend on it.
type GraphView interface {
	Nodes() []domain.Node
	LinksOutOf(key string) []domain.Link
}

// ModelSink is what the core produces for the diagram widget.
// Replace swaps the whole model in one step; a failed replacement must leave
// the previous model in place.
type ModelSink interface {
	Replace(nodes []domain.Node, links []domain.Link) error
}
