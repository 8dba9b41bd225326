package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/statemap"
	"github.com/aretw0/statemap/pkg/codec"
	"github.com/aretw0/statemap/pkg/domain"
	"github.com/aretw0/statemap/pkg/session"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce groups the bursts of events editors emit on save.
const DefaultDebounce = 200 * time.Millisecond

// WatchOptions configures RunWatch.
type WatchOptions struct {
	// Input is the layout document to watch, or the state configuration when
	// ValidateOnly is set.
	Input  string
	Output string
	Format string
	// ValidateOnly watches a state configuration and reports its problems
	// instead of projecting a layout.
	ValidateOnly bool
	Debounce     time.Duration

	// Manager and DiagramID persist every projection as a stored diagram.
	Manager   *session.Manager
	DiagramID string
}

// RunWatch processes Input once, then again every time it changes, until ctx
// is done. Failures are reported and the watch goes on, so a half-saved file
// does not stop the session.
func RunWatch(ctx context.Context, env Env, opts WatchOptions) error {
	if isStdio(opts.Input) {
		return errors.New("watch needs a file to watch")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	abs, err := filepath.Abs(opts.Input)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	// Editors often replace the file instead of writing it, so the directory
	// is watched rather than the file itself.
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	sync, err := newSyncer(ctx, env, opts)
	if err != nil {
		return err
	}

	env.Logger.Info("Starting watcher", "path", abs, "validate_only", opts.ValidateOnly)
	printSystemMessage(env.Streams.Err, "Watching '%s'. Press Ctrl+C to stop.", opts.Input)
	sync(ctx)

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			env.Logger.Info("Watcher stopped")
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}
			env.Logger.Debug("Change detected", "file", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(opts.Debounce)
			} else {
				timer.Reset(opts.Debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			sync(ctx)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			env.Logger.Error("File watcher error", "err", err)
		}
	}
}

// newSyncer returns the function run on every change.
func newSyncer(ctx context.Context, env Env, opts WatchOptions) (func(context.Context), error) {
	if opts.ValidateOnly {
		return func(ctx context.Context) {
			err := RunValidate(ctx, env, ValidateOptions{Input: opts.Input, Format: opts.Format, Quiet: true})
			switch {
			case err == nil:
				printSystemMessage(env.Streams.Err, "%s is valid.", opts.Input)
			case errors.Is(err, ErrInvalid):
				printSystemMessage(env.Streams.Err, "%v", err)
			default:
				env.Logger.Error("Validation failed", "err", err)
			}
		}, nil
	}

	format, err := resolveFormat(opts.Format, opts.Output)
	if err != nil {
		return nil, err
	}

	var ed *statemap.Editor
	if opts.Manager != nil && opts.DiagramID != "" {
		if ed, err = openEditor(ctx, env, opts.Manager, opts.DiagramID, ""); err != nil {
			return nil, err
		}
	} else {
		ed = statemap.NewEditor(
			statemap.WithConverter(env.Converter),
			statemap.WithLogger(env.Logger),
			statemap.WithLifecycleHooks(debugHooks(env.Logger)),
		)
	}

	return func(ctx context.Context) {
		data, err := os.ReadFile(opts.Input)
		if err != nil {
			env.Logger.Error("Read failed", "file", opts.Input, "err", err)
			return
		}

		prev := ed.Document()
		doc, err := ed.LoadLayout(ctx, data)
		if err != nil {
			printSystemMessage(env.Streams.Err, "%s: %v", opts.Input, err)
			return
		}
		for _, p := range graphProblems(ed.Graph()) {
			printSystemMessage(env.Streams.Err, "warning: %s", p)
		}

		if opts.Output != "" {
			out, err := codec.Encode(doc, format)
			if err == nil {
				err = writeOutput(opts.Output, env.Streams.Out, out)
			}
			if err != nil {
				env.Logger.Error("Write failed", "file", opts.Output, "err", err)
				return
			}
		}
		printSystemMessage(env.Streams.Err, "Projected: %s", summarizeSync(prev, doc))
	}, nil
}

func summarizeSync(prev, doc *domain.Document) string {
	if doc == nil {
		return "no entry point, document is empty"
	}
	return fmt.Sprintf("%d entities, %s", doc.Len(), summarizeDiff(domain.Diff(prev, doc)))
}
