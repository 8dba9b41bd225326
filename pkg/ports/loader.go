package ports

import (
	"context"

	"github.com/aretw0/statemap/pkg/domain"
)

// ConfigLoader defines how authored state configuration documents are read.
// This allows the document source (Loam repository, memory) to be decoupled.
type ConfigLoader interface {
	// LoadConfig retrieves a document by ID.
	LoadConfig(ctx context.Context, id string) (*domain.Document, error)

	// ListConfigs returns the IDs of every document available.
	ListConfigs(ctx context.Context) ([]string, error)
}

// Watchable defines an interface for sources that can notify about changes.
// This is typically used for the watch command.
type Watchable interface {
	// Watch returns a channel that receives the path of every changed source.
	Watch(ctx context.Context) (<-chan string, error)
}
