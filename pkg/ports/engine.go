package ports

import (
	"context"

	"github.com/aretw0/statemap/pkg/domain"
)

// Converter bundles the three core operations.
// This is the interface used by adapters (HTTP, MCP, CLI) that receive graphs
// and documents per request and hold no state of their own. The context only
// carries request-scoped values such as trace spans; the operations never block.
type Converter interface {
	// Project turns a graph into a state configuration. It returns nil when the
	// graph has no entry point.
	Project(ctx context.Context, g GraphView) *domain.Document

	// Hydrate rebuilds a graph from a document, refusing invalid documents.
	Hydrate(ctx context.Context, doc *domain.Document) (*domain.Graph, error)

	// Validate reports every structural problem of a document.
	Validate(ctx context.Context, doc *domain.Document) []error
}
