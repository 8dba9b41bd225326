package statemap

import (
	"context"

	"github.com/aretw0/statemap/pkg/domain"
	"github.com/aretw0/statemap/pkg/hydrator"
	"github.com/aretw0/statemap/pkg/ports"
	"github.com/aretw0/statemap/pkg/projector"
	"github.com/aretw0/statemap/pkg/schema"
)

// Core is the plain ports.Converter backed by the projector, hydrator and
// schema packages.
type Core struct{}

var _ ports.Converter = Core{}

func (Core) Project(_ context.Context, g ports.GraphView) *domain.Document {
	return projector.Project(g)
}

func (Core) Hydrate(_ context.Context, doc *domain.Document) (*domain.Graph, error) {
	return hydrator.Hydrate(doc)
}

func (Core) Validate(_ context.Context, doc *domain.Document) []error {
	return schema.Validate(doc)
}
