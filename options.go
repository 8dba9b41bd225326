package statemap

import (
	"log/slog"
	"time"

	"github.com/aretw0/statemap/pkg/domain"
	"github.com/aretw0/statemap/pkg/ports"
)

// Option defines a functional option for configuring the Editor.
type Option func(*Editor)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Editor) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the editor.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		e.logger = logger
	}
}

// WithConverter replaces the core conversions, typically with an
// instrumented wrapper.
func WithConverter(c ports.Converter) Option {
	return func(e *Editor) {
		e.converter = c
	}
}

// WithStore persists the diagram on every commit.
func WithStore(store ports.DiagramStore) Option {
	return func(e *Editor) {
		e.store = store
	}
}

// WithDiagramID sets the id the diagram is persisted under.
func WithDiagramID(id string) Option {
	return func(e *Editor) {
		e.id = id
	}
}

// WithName sets a human-readable diagram name.
func WithName(name string) Option {
	return func(e *Editor) {
		e.name = name
	}
}

// WithGraph seeds the editor with an existing graph. The graph is copied.
func WithGraph(g *domain.Graph) Option {
	return func(e *Editor) {
		e.graph = g.Clone()
	}
}

// WithClock overrides the time source used for UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(e *Editor) {
		e.now = now
	}
}
