package ports

import (
	"context"

	"github.com/aretw0/statemap/pkg/domain"
)

// DiagramStore defines the interface for persisting diagrams.
// A diagram is stored as a whole: the layout document verbatim plus the
// config last projected from it.
type DiagramStore interface {
	// Save persists the diagram under its ID, replacing any previous version.
	Save(ctx context.Context, diagram *domain.Diagram) error

	// Load retrieves the diagram for a given ID.
	// Returns domain.ErrDiagramNotFound if the diagram does not exist.
	Load(ctx context.Context, id string) (*domain.Diagram, error)

	// Delete removes the diagram. Deleting a missing diagram is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the IDs of every stored diagram, sorted.
	List(ctx context.Context) ([]string, error)
}
