package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/aretw0/statemap/internal/logging"
	"github.com/aretw0/statemap/pkg/domain"
	"github.com/aretw0/statemap/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed lock outlives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates diagram access, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store ports.DiagramStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithClock overrides the time source used to stamp updated diagrams.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a new diagram Manager with the given persistence store.
func NewManager(store ports.DiagramStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(id) after unlocking.
func (m *Manager) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

// Load retrieves a diagram from the store.
func (m *Manager) Load(ctx context.Context, id string) (*domain.Diagram, error) {
	var d *domain.Diagram
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		d, err = m.store.Load(ctx, id)
		return err
	})
	return d, err
}

// LoadOrCreate loads a diagram, creating and persisting an empty one when it
// does not exist yet.
func (m *Manager) LoadOrCreate(ctx context.Context, id, name string) (*domain.Diagram, error) {
	var d *domain.Diagram
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		d, err = m.store.Load(ctx, id)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrDiagramNotFound) {
			return fmt.Errorf("failed to check diagram existence: %w", err)
		}

		d = &domain.Diagram{ID: id, Name: name, UpdatedAt: m.now().UTC()}
		if err := m.store.Save(ctx, d); err != nil {
			return fmt.Errorf("failed to initialize diagram: %w", err)
		}
		return nil
	})
	return d, err
}

// Save persists the diagram, stamping UpdatedAt.
func (m *Manager) Save(ctx context.Context, d *domain.Diagram) error {
	if d == nil || d.ID == "" {
		return fmt.Errorf("save diagram: %w", domain.ErrEmptyDiagramID)
	}
	return m.WithLock(ctx, d.ID, func(ctx context.Context) error {
		d.UpdatedAt = m.now().UTC()
		return m.store.Save(ctx, d)
	})
}

// Update runs fn on a copy of the stored diagram and persists the result.
// The diagram is created when it does not exist. Nothing is written when fn
// fails.
func (m *Manager) Update(ctx context.Context, id string, fn func(*domain.Diagram) error) (*domain.Diagram, error) {
	if id == "" {
		return nil, fmt.Errorf("update diagram: %w", domain.ErrEmptyDiagramID)
	}

	var out *domain.Diagram
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		current, err := m.store.Load(ctx, id)
		switch {
		case errors.Is(err, domain.ErrDiagramNotFound):
			current = &domain.Diagram{ID: id}
		case err != nil:
			return err
		}

		next := current.Clone()
		if err := fn(next); err != nil {
			return err
		}
		next.ID = id
		next.UpdatedAt = m.now().UTC()

		if err := m.store.Save(ctx, next); err != nil {
			return err
		}
		out = next
		return nil
	})
	return out, err
}

// Delete removes the diagram from the store.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		return m.store.Delete(ctx, id)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying diagram store.
func (m *Manager) Store() ports.DiagramStore {
	return m.store
}

// WithLock executes a function while holding the lock for the diagram.
func (m *Manager) WithLock(ctx context.Context, id string, fn func(context.Context) error) error {
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, id, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"diagram", id,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
