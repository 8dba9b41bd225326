package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/aretw0/statemap/pkg/domain"
)

// ErrInvalidID is returned for ids that cannot be used as a file name.
var ErrInvalidID = errors.New("invalid diagram id")

// Store implements ports.DiagramStore using the local filesystem.
// Each diagram is a JSON file named after its id in a configured directory.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".statemap/diagrams".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".statemap", "diagrams")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(id string) (string, error) {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return filepath.Join(s.BasePath, id+".json"), nil
}

// Save writes the diagram atomically: the JSON goes to a temporary file in
// the same directory, is synced, then renamed over the destination. On
// Windows the destination is removed first, which leaves a short window.
func (s *Store) Save(ctx context.Context, diagram *domain.Diagram) error {
	destPath, err := s.path(diagram.ID)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure diagram directory: %w", err)
	}

	data, err := json.MarshalIndent(diagram, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal diagram: %w", err)
	}

	// The .tmp extension keeps half-written files out of List.
	tmpFile, err := os.CreateTemp(s.BasePath, "."+diagram.ID+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath) // no-op once renamed
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// Windows refuses to rename over an existing file; elsewhere the rename
	// replaces it atomically.
	if runtime.GOOS == "windows" {
		if _, err := os.Stat(destPath); err == nil {
			if err := os.Remove(destPath); err != nil {
				return fmt.Errorf("failed to remove existing diagram file for overwrite: %w", err)
			}
		}
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Load reads a diagram file.
func (s *Store) Load(ctx context.Context, id string) (*domain.Diagram, error) {
	filePath, err := s.path(id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrDiagramNotFound
		}
		return nil, fmt.Errorf("failed to read diagram file: %w", err)
	}

	var diagram domain.Diagram
	if err := json.Unmarshal(data, &diagram); err != nil {
		return nil, fmt.Errorf("failed to unmarshal diagram %s: %w", id, err)
	}
	return &diagram, nil
}

// Delete removes the diagram file.
func (s *Store) Delete(ctx context.Context, id string) error {
	filePath, err := s.path(id)
	if err != nil {
		return err
	}

	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete diagram file: %w", err)
	}
	return nil
}

// List returns the ids of every diagram file, sorted. Leftover temporary
// files end in .tmp and are ignored.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list diagrams: %w", err)
	}

	ids := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}
