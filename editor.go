package statemap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/statemap/internal/logging"
	"github.com/aretw0/statemap/pkg/domain"
	"github.com/aretw0/statemap/pkg/layout"
	"github.com/aretw0/statemap/pkg/ports"
	"github.com/aretw0/statemap/pkg/projector"
	"github.com/aretw0/statemap/pkg/schema"
	"github.com/google/uuid"
)

// Editor owns a diagram graph on behalf of the host.
//
// Edits are applied to the graph without touching the document. Commit is the
// single point where the graph is projected, the document refreshed and the
// diagram persisted. All methods are safe for concurrent use.
type Editor struct {
	mu sync.Mutex

	id    string
	name  string
	graph *domain.Graph
	doc   *domain.Document

	converter ports.Converter
	store     ports.DiagramStore
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	now       func() time.Time
}

// NewEditor creates an editor with an empty graph unless WithGraph is given.
func NewEditor(opts ...Option) *Editor {
	e := &Editor{}
	for _, opt := range opts {
		opt(e)
	}
	if e.graph == nil {
		e.graph = domain.NewGraph()
	}
	if e.converter == nil {
		e.converter = Core{}
	}
	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.id == "" {
		e.id = uuid.NewString()
	}
	e.logger = e.logger.With("diagram", e.id)
	return e
}

// Open restores an editor from the diagram stored under id.
// The layout document is preferred; a diagram saved without one is hydrated
// from its config. The stored config becomes the current document.
func Open(ctx context.Context, store ports.DiagramStore, id string, opts ...Option) (*Editor, error) {
	d, err := store.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	opts = append([]Option{WithName(d.Name)}, opts...)
	opts = append(opts, WithStore(store), WithDiagramID(id))
	e := NewEditor(opts...)

	switch {
	case len(d.Layout) > 0:
		g, err := layout.Decode(d.Layout)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", id, err)
		}
		e.graph = g
	case d.Config != nil:
		g, err := e.converter.Hydrate(ctx, d.Config)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", id, err)
		}
		e.graph = g
	}
	e.doc = d.Config.Clone()
	return e, nil
}

// ID returns the diagram id.
func (e *Editor) ID() string {
	return e.id
}

// Graph returns a copy of the current graph.
func (e *Editor) Graph() *domain.Graph {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.graph.Clone()
}

// Document returns a copy of the last committed document, or nil.
func (e *Editor) Document() *domain.Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc.Clone()
}

// Edit applies fn to a working copy of the graph. The copy replaces the graph
// only if fn succeeds, so a failed batch of edits leaves no trace. Edit does
// not commit.
func (e *Editor) Edit(fn func(g *domain.Graph) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	work := e.graph.Clone()
	if err := fn(work); err != nil {
		return err
	}
	e.graph = work
	return nil
}

// Commit projects the graph, replaces the current document and persists the
// diagram. The returned document is nil when the graph has no Start node.
// A persistence failure is returned after the document has been refreshed.
func (e *Editor) Commit(ctx context.Context) (*domain.Document, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.commit(ctx)
}

func (e *Editor) commit(ctx context.Context) (*domain.Document, error) {
	doc := e.converter.Project(ctx, e.graph)
	if e.logger.Enabled(ctx, slog.LevelWarn) {
		_, diags := projector.Report(e.graph)
		for _, d := range diags {
			e.logger.Warn("projection diagnostic", "kind", d.Kind, "detail", d.String())
		}
	}

	diff := domain.Diff(e.doc, doc)
	e.doc = doc

	if e.hooks.OnCommit != nil {
		e.hooks.OnCommit(ctx, &domain.CommitEvent{
			EventBase: domain.EventBase{Timestamp: e.now(), Type: domain.EventCommit, DiagramID: e.id},
			Document:  doc.Clone(),
			Diff:      diff,
		})
	}

	if doc == nil {
		e.logger.Debug("committed graph without entry point", "nodes", e.graph.Len())
	} else {
		e.logger.Debug("committed", "entities", doc.Len(), "changed", diff != nil)
	}

	if err := e.persist(ctx); err != nil {
		return doc.Clone(), err
	}
	return doc.Clone(), nil
}

func (e *Editor) persist(ctx context.Context) error {
	if e.store == nil {
		return nil
	}
	data, err := layout.Encode(e.graph)
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	d := &domain.Diagram{
		ID:        e.id,
		Name:      e.name,
		Layout:    data,
		Config:    e.doc.Clone(),
		UpdatedAt: e.now(),
	}
	if err := e.store.Save(ctx, d); err != nil {
		e.logger.Error("failed to persist diagram", "error", err)
		return fmt.Errorf("persist diagram: %w", err)
	}
	return nil
}

// Load replaces the graph with the hydration of doc and commits.
// An invalid document is rejected as a whole: the graph and the current
// document stay as they were and the validation errors are returned.
func (e *Editor) Load(ctx context.Context, doc *domain.Document) (*domain.Document, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	g, err := e.converter.Hydrate(ctx, doc)
	if err == nil {
		err = e.graph.Replace(g.Nodes(), g.Links())
	}
	if err != nil {
		e.emitLoad(ctx, domain.EventLoadRejected, nil, err)
		e.logger.Info("document rejected", "error", err)
		return nil, err
	}

	e.emitLoad(ctx, domain.EventLoad, g, nil)
	return e.commit(ctx)
}

// LoadLayout replaces the graph with a layout document and commits.
// A malformed layout leaves the graph untouched.
func (e *Editor) LoadLayout(ctx context.Context, data []byte) (*domain.Document, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	g, err := layout.Decode(data)
	if err == nil {
		err = e.graph.Replace(g.Nodes(), g.Links())
	}
	if err != nil {
		e.emitLoad(ctx, domain.EventLoadRejected, nil, err)
		return nil, err
	}

	e.emitLoad(ctx, domain.EventLoad, g, nil)
	return e.commit(ctx)
}

// Layout renders the current graph as a layout document.
func (e *Editor) Layout() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return layout.Encode(e.graph)
}

// Clear empties the graph and commits, which makes the document absent.
func (e *Editor) Clear(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.graph.Clear()
	if e.hooks.OnLoad != nil {
		e.hooks.OnLoad(ctx, &domain.LoadEvent{
			EventBase: domain.EventBase{Timestamp: e.now(), Type: domain.EventClear, DiagramID: e.id},
		})
	}
	_, err := e.commit(ctx)
	return err
}

func (e *Editor) emitLoad(ctx context.Context, typ domain.EventType, g *domain.Graph, err error) {
	if e.hooks.OnLoad == nil {
		return
	}
	ev := &domain.LoadEvent{
		EventBase: domain.EventBase{Timestamp: e.now(), Type: typ, DiagramID: e.id},
	}
	if g != nil {
		ev.Nodes = g.Len()
		ev.Links = len(g.Links())
	}
	if err != nil {
		if errs := schema.ValidationErrors(err); len(errs) > 0 {
			for _, ve := range errs {
				ev.Errors = append(ev.Errors, ve.Error())
			}
		} else {
			ev.Errors = []string{err.Error()}
		}
	}
	e.hooks.OnLoad(ctx, ev)
}

// IsRejected reports whether err came from a rejected document rather than
// from storage.
func IsRejected(err error) bool {
	var aggr *schema.AggregateError
	return errors.As(err, &aggr)
}
