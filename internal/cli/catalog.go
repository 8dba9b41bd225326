package cli

import (
	"context"
	"fmt"

	"github.com/aretw0/statemap/pkg/ports"
)

// RunCatalogCheck validates every configuration a loader provides and prints
// one line per document. It fails when any document is invalid or unreadable.
func RunCatalogCheck(ctx context.Context, env Env, loader ports.ConfigLoader) error {
	ids, err := loader.ListConfigs(ctx)
	if err != nil {
		return err
	}

	bad := 0
	for _, id := range ids {
		if !checkConfig(ctx, env, loader, id) {
			bad++
		}
	}
	if bad > 0 {
		return fmt.Errorf("%w: %d of %d document(s)", ErrInvalid, bad, len(ids))
	}
	printSystemMessage(env.Streams.Out, "%d document(s) checked, no problems found.", len(ids))
	return nil
}

// RunCatalogWatch checks the catalog, then re-checks each document as it
// changes, until ctx is done.
func RunCatalogWatch(ctx context.Context, env Env, loader ports.ConfigLoader, source ports.Watchable) error {
	if err := RunCatalogCheck(ctx, env, loader); err != nil && !isInvalid(err) {
		return err
	}

	changes, err := source.Watch(ctx)
	if err != nil {
		return err
	}
	env.Logger.Info("Watching catalog")
	for {
		select {
		case <-ctx.Done():
			return nil
		case id, ok := <-changes:
			if !ok {
				return nil
			}
			env.Logger.Debug("Change detected", "id", id)
			checkConfig(ctx, env, loader, id)
		}
	}
}

func checkConfig(ctx context.Context, env Env, loader ports.ConfigLoader, id string) bool {
	doc, err := loader.LoadConfig(ctx, id)
	if err != nil {
		printSystemMessage(env.Streams.Out, "%s: %v", id, err)
		return false
	}
	errs := env.Converter.Validate(ctx, doc)
	if len(errs) == 0 {
		printSystemMessage(env.Streams.Out, "%s: ok", id)
		return true
	}
	printSystemMessage(env.Streams.Out, "%s: %d error(s)", id, len(errs))
	for _, err := range errs {
		fmt.Fprintf(env.Streams.Out, "    - %v\n", err)
	}
	return false
}
