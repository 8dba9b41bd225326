package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/statemap/pkg/domain"
)

// Store implements ports.DiagramStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Diagram
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Diagram),
	}
}

// Save persists the diagram in memory.
func (s *Store) Save(ctx context.Context, diagram *domain.Diagram) error {
	// Deep copy to ensure isolation, similar to serialization
	copied := diagram.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[diagram.ID] = copied
	return nil
}

// Load retrieves the diagram from memory.
func (s *Store) Load(ctx context.Context, id string) (*domain.Diagram, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	diagram, ok := s.data[id]
	if !ok {
		return nil, domain.ErrDiagramNotFound
	}

	// Copy on read so callers can't mutate the stored diagram through the pointer
	return diagram.Clone(), nil
}

// Delete removes the diagram.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns the stored diagram ids, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
