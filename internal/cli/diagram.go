package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/statemap"
	"github.com/aretw0/statemap/internal/presentation/graph"
	"github.com/aretw0/statemap/pkg/codec"
	"github.com/aretw0/statemap/pkg/domain"
	"github.com/aretw0/statemap/pkg/schema"
	"github.com/aretw0/statemap/pkg/session"
)

// DiagramSaveOptions configures RunDiagramSave. Exactly one of Layout and
// Config names the input.
type DiagramSaveOptions struct {
	ID     string
	Name   string
	Layout string
	Config string
	Format string
}

// RunDiagramSave stores a diagram from a layout document or a state
// configuration. An existing diagram is updated and the change is reported.
func RunDiagramSave(ctx context.Context, env Env, m *session.Manager, opts DiagramSaveOptions) error {
	if opts.ID == "" {
		return domain.ErrEmptyDiagramID
	}
	if (opts.Layout == "") == (opts.Config == "") {
		return errors.New("exactly one of --layout and --config is required")
	}

	return m.WithLock(ctx, opts.ID, func(ctx context.Context) error {
		ed, err := openEditor(ctx, env, m, opts.ID, opts.Name)
		if err != nil {
			return err
		}
		prev := ed.Document()

		var doc *domain.Document
		if opts.Layout != "" {
			data, err := readInput(opts.Layout, env.Streams.In)
			if err != nil {
				return err
			}
			doc, err = ed.LoadLayout(ctx, data)
			if err != nil {
				return fmt.Errorf("%s: %w", displayName(opts.Layout), err)
			}
		} else {
			in, err := readConfig(opts.Config, opts.Format, env.Streams.In)
			if err != nil {
				return err
			}
			doc, err = ed.Load(ctx, in)
			if statemap.IsRejected(err) {
				errs := schema.ValidationErrors(err)
				printErrors(env, errs)
				return fmt.Errorf("%w: %d error(s) in %s", ErrInvalid, len(errs), displayName(opts.Config))
			}
			if err != nil {
				return err
			}
		}

		printSystemMessage(env.Streams.Out, "Saved '%s': %s", opts.ID, summarizeDiff(domain.Diff(prev, doc)))
		return nil
	})
}

func openEditor(ctx context.Context, env Env, m *session.Manager, id, name string) (*statemap.Editor, error) {
	opts := []statemap.Option{
		statemap.WithConverter(env.Converter),
		statemap.WithLogger(env.Logger),
		statemap.WithLifecycleHooks(debugHooks(env.Logger)),
	}
	if name != "" {
		opts = append(opts, statemap.WithName(name))
	}

	ed, err := statemap.Open(ctx, m.Store(), id, opts...)
	if errors.Is(err, domain.ErrDiagramNotFound) {
		opts = append(opts, statemap.WithStore(m.Store()), statemap.WithDiagramID(id))
		return statemap.NewEditor(opts...), nil
	}
	return ed, err
}

func summarizeDiff(diff *domain.DocumentDiff) string {
	if diff == nil {
		return "no changes"
	}
	var parts []string
	if len(diff.Added) > 0 {
		parts = append(parts, "added "+strings.Join(diff.Added, ", "))
	}
	if len(diff.Changed) > 0 {
		parts = append(parts, "changed "+strings.Join(diff.Changed, ", "))
	}
	if len(diff.Removed) > 0 {
		parts = append(parts, "removed "+strings.Join(diff.Removed, ", "))
	}
	if diff.EntryPoint != nil {
		entry := *diff.EntryPoint
		if entry == "" {
			entry = "none"
		}
		parts = append(parts, "entry point "+entry)
	}
	return strings.Join(parts, "; ")
}

// Diagram views accepted by RunDiagramGet.
const (
	ViewConfig  = "config"
	ViewLayout  = "layout"
	ViewMermaid = "mermaid"
	ViewJSON    = "json"
)

// DiagramGetOptions configures RunDiagramGet.
type DiagramGetOptions struct {
	ID     string
	View   string
	Format string
	Output string
}

// RunDiagramGet writes one view of a stored diagram.
func RunDiagramGet(ctx context.Context, env Env, m *session.Manager, opts DiagramGetOptions) error {
	d, err := m.Load(ctx, opts.ID)
	if err != nil {
		return err
	}

	var data []byte
	switch opts.View {
	case ViewConfig, "":
		format, err := resolveFormat(opts.Format, opts.Output)
		if err != nil {
			return err
		}
		if data, err = codec.Encode(d.Config, format); err != nil {
			return err
		}
	case ViewLayout:
		data = append([]byte(d.Layout), '\n')
	case ViewMermaid:
		data = []byte(graph.GenerateMermaid(d.Config, nil))
	case ViewJSON:
		if data, err = json.MarshalIndent(d, "", "  "); err != nil {
			return err
		}
		data = append(data, '\n')
	default:
		return fmt.Errorf("unknown view %q (want config, layout, mermaid or json)", opts.View)
	}
	return writeOutput(opts.Output, env.Streams.Out, data)
}

// RunDiagramList prints the stored diagram ids, one per line.
func RunDiagramList(ctx context.Context, env Env, m *session.Manager) error {
	ids, err := m.List(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		fmt.Fprintln(env.Streams.Out, id)
	}
	return nil
}

// RunDiagramDelete removes a stored diagram.
func RunDiagramDelete(ctx context.Context, env Env, m *session.Manager, id string) error {
	if err := m.Delete(ctx, id); err != nil {
		return err
	}
	printSystemMessage(env.Streams.Out, "Deleted '%s'.", id)
	return nil
}

func debugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnCommit: func(ctx context.Context, e *domain.CommitEvent) {
			logger.Debug("Commit", "diagram", e.DiagramID, "absent", e.Document == nil, "diff", summarizeDiff(e.Diff))
		},
		OnLoad: func(ctx context.Context, e *domain.LoadEvent) {
			if len(e.Errors) > 0 {
				logger.Debug("Load rejected", "diagram", e.DiagramID, "errors", len(e.Errors))
				return
			}
			logger.Debug("Load", "diagram", e.DiagramID, "type", e.Type, "nodes", e.Nodes, "links", e.Links)
		},
	}
}
