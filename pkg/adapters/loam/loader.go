package loam

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/statemap/pkg/domain"
)

// configPattern matches every file a catalog may hold.
const configPattern = "**/*.{md,json,yaml,yml}"

// ErrDuplicateID is returned by ListConfigs when two files resolve to the
// same document id, e.g. checkout.json and checkout.yaml.
var ErrDuplicateID = errors.New("duplicate config id")

// Loader reads state configurations out of a Loam repository. Every .json,
// .yaml, .yml or .md file is one document; Markdown carries it in front matter.
type Loader struct {
	Repo *loam.TypedRepository[ConfigMetadata]
}

// New wraps an existing typed repository.
func New(repo *loam.TypedRepository[ConfigMetadata]) *Loader {
	return &Loader{Repo: repo}
}

// Open opens the directory at path as a read-only, strict repository.
func Open(path string) (*Loader, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("catalog path %q: %w", path, err)
	}
	repo, err := loam.Init(abs, loam.WithStrict(true), loam.WithReadOnly(true))
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", abs, err)
	}
	return New(loam.NewTypedRepository[ConfigMetadata](repo)), nil
}

// LoadConfig reads the document stored under id. Loam resolves the extension,
// so "checkout" finds checkout.json, checkout.yaml or checkout.md. A file
// declaring no collection yields a nil document.
func (l *Loader) LoadConfig(ctx context.Context, id string) (*domain.Document, error) {
	doc, err := l.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", id, err)
	}
	return doc.Data.Document(), nil
}

// ListConfigs returns every document id in sorted order, extensions stripped.
// An id set in the file's own "id" field wins over its path.
func (l *Loader) ListConfigs(ctx context.Context) ([]string, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list configs: %w", err)
	}

	paths := make(map[string]string, len(docs))
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		id := doc.Data.ID
		if id == "" {
			id = doc.ID
		}
		id = configID(id)
		if prev, ok := paths[id]; ok {
			return nil, fmt.Errorf("%w: %q in %s and %s", ErrDuplicateID, id, prev, doc.ID)
		}
		paths[id] = doc.ID
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// configID turns a repository path into a slash-separated id without extension.
func configID(path string) string {
	return filepath.ToSlash(strings.TrimSuffix(path, filepath.Ext(path)))
}

// Watch reports the id of every changed document until ctx is done.
// Loam debounces bursts of writes before they reach the channel.
func (l *Loader) Watch(ctx context.Context) (<-chan string, error) {
	events, err := l.Repo.Watch(ctx, configPattern)
	if err != nil {
		return nil, fmt.Errorf("watch catalog: %w", err)
	}

	ids := make(chan string, 1)
	go func() {
		defer close(ids)
		for {
			var id string
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				id = configID(evt.ID)
			}
			select {
			case ids <- id:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ids, nil
}
