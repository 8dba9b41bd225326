package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/statemap/pkg/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readDoc(t *testing.T, path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	doc, err := codec.Decode(data, codec.JSON)
	if err != nil || doc == nil {
		return nil
	}
	var ids []string
	for _, e := range doc.Entities() {
		ids = append(ids, e.EntityID())
	}
	return ids
}

func TestRunWatch_ReprojectsOnChange(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "flow.layout.json", checkoutLayout)
	out := filepath.Join(dir, "flow.json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := newMemoryManager()
	env := newTestEnv("")
	done := make(chan error, 1)
	go func() {
		done <- RunWatch(ctx, env.Env, WatchOptions{
			Input:     in,
			Output:    out,
			Debounce:  20 * time.Millisecond,
			Manager:   m,
			DiagramID: "flow",
		})
	}()

	require.Eventually(t, func() bool {
		return len(readDoc(t, out)) == 4
	}, 5*time.Second, 20*time.Millisecond)

	updated := strings.Replace(checkoutLayout,
		`{"key": "Done", "category": "State", "turbo": true}`,
		`{"key": "Done", "category": "State", "turbo": true},
    {"key": "Refund", "category": "State"}`, 1)
	require.NoError(t, os.WriteFile(in, []byte(updated), 0o644))

	require.Eventually(t, func() bool {
		return len(readDoc(t, out)) == 5
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}

	stored, err := m.Load(context.Background(), "flow")
	require.NoError(t, err)
	_, ok := stored.Config.Lookup("Refund")
	assert.True(t, ok, "every projection is persisted")
	assert.Contains(t, env.err.String(), "Projected: 5 entities, added Refund")
}

func TestRunWatch_KeepsGoingOnBadInput(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "flow.layout.json", `{"nodeDataArray": [`)
	out := filepath.Join(dir, "flow.json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	env := newTestEnv("")
	done := make(chan error, 1)
	go func() {
		done <- RunWatch(ctx, env.Env, WatchOptions{Input: in, Output: out, Debounce: 20 * time.Millisecond})
	}()

	// Give the watcher time to process the broken file before fixing it.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(in, []byte(checkoutLayout), 0o644))

	require.Eventually(t, func() bool {
		return len(readDoc(t, out)) == 4
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestRunWatch_RequiresFile(t *testing.T) {
	err := RunWatch(context.Background(), newTestEnv("").Env, WatchOptions{Input: "-"})
	assert.Error(t, err)
}
