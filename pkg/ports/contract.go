package ports

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/aretw0/statemap/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunDiagramStoreContract runs a suite of tests to verify that a DiagramStore
// implementation adheres to the defined interface contract.
func RunDiagramStoreContract(t *testing.T, store DiagramStore) {
	ctx := context.Background()
	id := "contract-test-diagram-" + time.Now().Format("20060102150405")

	sample := func(id string) *domain.Diagram {
		return &domain.Diagram{
			ID:     id,
			Name:   "contract",
			Layout: json.RawMessage(`{"class":"GraphLinksModel","nodeDataArray":[{"key":"Init","category":"Start"}],"linkDataArray":[]}`),
			Config: &domain.Document{
				States:      []domain.State{{ID: "Init", Links: domain.Links{}, EntryPoint: true}},
				Decisions:   []domain.Decision{},
				SuperStates: []domain.SuperState{},
			},
			UpdatedAt: time.Now().UTC().Truncate(time.Second),
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		diagram := sample(id)

		err := store.Save(ctx, diagram)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, diagram.ID, loaded.ID)
		assert.Equal(t, diagram.Name, loaded.Name)
		assert.JSONEq(t, string(diagram.Layout), string(loaded.Layout), "layout must be stored verbatim")
		assert.Equal(t, diagram.Config, loaded.Config)
		assert.True(t, diagram.UpdatedAt.Equal(loaded.UpdatedAt))
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		diagram := sample(id)
		diagram.Config = nil
		require.NoError(t, store.Save(ctx, diagram))

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, loaded.Config, "a diagram without entry point has no config")
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+id)
		assert.ErrorIs(t, err, domain.ErrDiagramNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sample(id)))

		err := store.Delete(ctx, id)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, id)
		assert.ErrorIs(t, err, domain.ErrDiagramNotFound, "Load after Delete should return ErrDiagramNotFound")

		assert.NoError(t, store.Delete(ctx, id), "Deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := id + "-1"
		id2 := id + "-2"
		require.NoError(t, store.Save(ctx, sample(id2)))
		require.NoError(t, store.Save(ctx, sample(id1)))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
		assert.IsNonDecreasing(t, ids, "List must be sorted")
	})

	t.Run("List Includes Every Saved ID", func(t *testing.T) {
		ids := []string{"tmp-draft", "tmp", "draft.tmp", "a-b_c"}
		for _, diagramID := range ids {
			require.NoError(t, store.Save(ctx, sample(diagramID)))
		}
		defer func() {
			for _, diagramID := range ids {
				_ = store.Delete(ctx, diagramID)
			}
		}()

		listed, err := store.List(ctx)
		require.NoError(t, err)
		for _, diagramID := range ids {
			assert.Contains(t, listed, diagramID)
			_, err := store.Load(ctx, diagramID)
			assert.NoError(t, err, "id %q", diagramID)
		}
	})
}
