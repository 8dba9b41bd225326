package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/aretw0/statemap/pkg/domain"
)

// Loader implements ports.ConfigLoader over a fixed set of documents.
type Loader struct {
	docs map[string]*domain.Document
}

// NewLoader creates a Loader serving copies of the given documents.
func NewLoader(docs map[string]*domain.Document) *Loader {
	copied := make(map[string]*domain.Document, len(docs))
	for id, doc := range docs {
		copied[id] = doc.Clone()
	}
	return &Loader{docs: copied}
}

// LoadConfig retrieves a document by id.
func (l *Loader) LoadConfig(ctx context.Context, id string) (*domain.Document, error) {
	doc, ok := l.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrConfigNotFound, id)
	}
	return doc.Clone(), nil
}

// ListConfigs returns all available document ids.
func (l *Loader) ListConfigs(ctx context.Context) ([]string, error) {
	keys := make([]string, 0, len(l.docs))
	for k := range l.docs {
		keys = append(keys, k)
	}
	sort.Strings(keys) // Deterministic order
	return keys, nil
}
