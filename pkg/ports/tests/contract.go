package tests

import (
	"context"
	"testing"

	"github.com/aretw0/statemap/pkg/domain"
	"github.com/aretw0/statemap/pkg/ports"
)

// ConfigLoaderContractTest is a reusable test suite that verifies if an adapter complies with ports.ConfigLoader.
func ConfigLoaderContractTest(t *testing.T, loader ports.ConfigLoader, setupData map[string]*domain.Document) {
	t.Helper()
	ctx := context.Background()

	t.Run("LoadConfig_Success", func(t *testing.T) {
		for id, expected := range setupData {
			doc, err := loader.LoadConfig(ctx, id)
			if err != nil {
				t.Fatalf("unexpected error loading config %s: %v", id, err)
			}
			if diff := domain.Diff(expected, doc); diff != nil {
				t.Errorf("content mismatch for %s: %+v", id, diff)
			}
		}
	})

	t.Run("LoadConfig_NotFound", func(t *testing.T) {
		_, err := loader.LoadConfig(ctx, "non-existent-config")
		if err == nil {
			t.Error("expected error for non-existent config, got nil")
		}
	})

	t.Run("ListConfigs", func(t *testing.T) {
		ids, err := loader.ListConfigs(ctx)
		if err != nil {
			t.Fatalf("unexpected error listing configs: %v", err)
		}

		if len(ids) != len(setupData) {
			t.Errorf("expected %d configs, got %d", len(setupData), len(ids))
		}

		lookup := make(map[string]bool)
		for _, id := range ids {
			lookup[id] = true
		}

		for id := range setupData {
			if !lookup[id] {
				t.Errorf("config %s missing from list", id)
			}
		}
	})
}
