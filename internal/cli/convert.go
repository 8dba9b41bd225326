package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/statemap/internal/presentation/graph"
	"github.com/aretw0/statemap/internal/presentation/tui"
	"github.com/aretw0/statemap/internal/validator"
	"github.com/aretw0/statemap/pkg/codec"
	"github.com/aretw0/statemap/pkg/domain"
	"github.com/aretw0/statemap/pkg/layout"
	"github.com/aretw0/statemap/pkg/ports"
	"github.com/aretw0/statemap/pkg/projector"
	"github.com/aretw0/statemap/pkg/schema"
)

// ErrInvalid is returned when a document or graph fails a check. The details
// have already been printed.
var ErrInvalid = errors.New("invalid")

func isInvalid(err error) bool {
	return errors.Is(err, ErrInvalid)
}

// Env carries what every command needs.
type Env struct {
	Streams   Streams
	Converter ports.Converter
	Logger    *slog.Logger
}

// ProjectOptions configures RunProject.
type ProjectOptions struct {
	Input  string
	Output string
	Format string
	// Strict fails on any projection diagnostic or attribute problem.
	Strict bool
	Quiet  bool
}

// RunProject reads a layout document and writes the state configuration
// projected from it.
func RunProject(ctx context.Context, env Env, opts ProjectOptions) error {
	g, err := readLayout(opts.Input, env.Streams)
	if err != nil {
		return err
	}

	doc := env.Converter.Project(ctx, g)
	problems := graphProblems(g)
	if !opts.Quiet {
		for _, p := range problems {
			printSystemMessage(env.Streams.Err, "warning: %s", p)
		}
	}
	if opts.Strict && len(problems) > 0 {
		return fmt.Errorf("%w: %d problem(s) in %s", ErrInvalid, len(problems), displayName(opts.Input))
	}

	format, err := resolveFormat(opts.Format, opts.Output)
	if err != nil {
		return err
	}
	data, err := codec.Encode(doc, format)
	if err != nil {
		return err
	}
	env.Logger.Debug("projected", "input", displayName(opts.Input), "nodes", g.Len(), "absent", doc == nil)
	return writeOutput(opts.Output, env.Streams.Out, data)
}

// HydrateOptions configures RunHydrate.
type HydrateOptions struct {
	Input  string
	Output string
	Format string
}

// RunHydrate reads a state configuration and writes the layout document
// rebuilt from it. An invalid configuration writes nothing.
func RunHydrate(ctx context.Context, env Env, opts HydrateOptions) error {
	doc, err := readConfig(opts.Input, opts.Format, env.Streams.In)
	if err != nil {
		return err
	}

	g, err := env.Converter.Hydrate(ctx, doc)
	if err != nil {
		if errs := schema.ValidationErrors(err); len(errs) > 0 {
			printErrors(env, errs)
			return fmt.Errorf("%w: %d error(s) in %s", ErrInvalid, len(errs), displayName(opts.Input))
		}
		return err
	}

	data, err := layout.Encode(g)
	if err != nil {
		return err
	}
	return writeOutput(opts.Output, env.Streams.Out, append(data, '\n'))
}

// ValidateOptions configures RunValidate.
type ValidateOptions struct {
	Input  string
	Format string
	Quiet  bool
}

// RunValidate checks a state configuration and prints every problem found.
func RunValidate(ctx context.Context, env Env, opts ValidateOptions) error {
	doc, err := readConfig(opts.Input, opts.Format, env.Streams.In)
	if err != nil {
		return err
	}

	errs := env.Converter.Validate(ctx, doc)
	if len(errs) > 0 {
		printErrors(env, errs)
		return fmt.Errorf("%w: %d error(s) in %s", ErrInvalid, len(errs), displayName(opts.Input))
	}
	if !opts.Quiet {
		for _, id := range validator.Unreachable(doc) {
			printSystemMessage(env.Streams.Err, "warning: %s is unreachable from the entry point", id)
		}
		printSystemMessage(env.Streams.Out, "%s is valid.", displayName(opts.Input))
	}
	return nil
}

// GraphOptions configures RunGraph.
type GraphOptions struct {
	Input  string
	Output string
	Format string
	// FromLayout reads a layout document and projects it first.
	FromLayout bool
}

// RunGraph renders a state configuration as a Mermaid flowchart.
func RunGraph(ctx context.Context, env Env, opts GraphOptions) error {
	doc, _, err := loadDocument(ctx, env, opts.Input, opts.Format, opts.FromLayout)
	if err != nil {
		return err
	}
	return writeOutput(opts.Output, env.Streams.Out, []byte(graph.GenerateMermaid(doc, nil)))
}

// DescribeOptions configures RunDescribe.
type DescribeOptions struct {
	Input      string
	Format     string
	FromLayout bool
	// Plain disables terminal styling.
	Plain bool
}

// RunDescribe prints a human-readable summary of a state configuration with
// its validation problems.
func RunDescribe(ctx context.Context, env Env, opts DescribeOptions) error {
	doc, diags, err := loadDocument(ctx, env, opts.Input, opts.Format, opts.FromLayout)
	if err != nil {
		return err
	}

	report := tui.Report{
		Title:       displayName(opts.Input),
		Document:    doc,
		Errors:      env.Converter.Validate(ctx, doc),
		Diagnostics: diags,
		Unreachable: validator.Unreachable(doc),
	}

	plain := opts.Plain
	if f, ok := env.Streams.Out.(*os.File); !ok || !tui.IsTerminal(f) {
		plain = true
	}
	out, err := tui.NewRenderer(plain)(report.Markdown())
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(env.Streams.Out, out)
	return err
}

func loadDocument(ctx context.Context, env Env, path, format string, fromLayout bool) (*domain.Document, []projector.Diagnostic, error) {
	if !fromLayout {
		doc, err := readConfig(path, format, env.Streams.In)
		return doc, nil, err
	}
	g, err := readLayout(path, env.Streams)
	if err != nil {
		return nil, nil, err
	}
	_, diags := projector.Report(g)
	return env.Converter.Project(ctx, g), diags, nil
}

func readLayout(path string, streams Streams) (*domain.Graph, error) {
	data, err := readInput(path, streams.In)
	if err != nil {
		return nil, err
	}
	g, err := layout.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", displayName(path), err)
	}
	return g, nil
}

// graphProblems lists the projection diagnostics and attribute problems of g.
func graphProblems(g *domain.Graph) []string {
	var out []string
	_, diags := projector.Report(g)
	for _, d := range diags {
		out = append(out, d.String())
	}
	for _, err := range schema.ValidateGraph(g) {
		var ve *schema.ValidationError
		if errors.As(err, &ve) && ve.Key == "category" {
			// already reported as a diagnostic
			continue
		}
		out = append(out, err.Error())
	}
	return out
}

func printErrors(env Env, errs []error) {
	for _, err := range errs {
		printSystemMessage(env.Streams.Err, "error: %v", err)
	}
}
