package cli

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/statemap/pkg/adapters/memory"
	"github.com/aretw0/statemap/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func catalogDocs() map[string]*domain.Document {
	return map[string]*domain.Document{
		"good": {States: []domain.State{{ID: "A", EntryPoint: true, Links: domain.Links{}}}},
		"bad": {States: []domain.State{
			{ID: "A", EntryPoint: true, Links: domain.Links{"complete": "Z"}},
		}},
	}
}

func TestRunCatalogCheck(t *testing.T) {
	env := newTestEnv("")
	err := RunCatalogCheck(context.Background(), env.Env, memory.NewLoader(catalogDocs()))

	assert.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "1 of 2")
	out := env.out.String()
	assert.Contains(t, out, ">>> bad: 1 error(s)\n    - link A.complete points to unknown id \"Z\"\n")
	assert.Contains(t, out, ">>> good: ok\n")
}

func TestRunCatalogCheck_AllValid(t *testing.T) {
	docs := catalogDocs()
	delete(docs, "bad")
	env := newTestEnv("")

	require.NoError(t, RunCatalogCheck(context.Background(), env.Env, memory.NewLoader(docs)))
	assert.Contains(t, env.out.String(), "1 document(s) checked, no problems found.")
}

type fakeWatchable chan string

func (f fakeWatchable) Watch(ctx context.Context) (<-chan string, error) {
	return f, nil
}

func TestRunCatalogWatch(t *testing.T) {
	changes := make(fakeWatchable)
	env := newTestEnv("")
	done := make(chan error, 1)

	go func() {
		done <- RunCatalogWatch(context.Background(), env.Env, memory.NewLoader(catalogDocs()), changes)
	}()

	changes <- "good"
	changes <- "missing"
	close(changes)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
	assert.Contains(t, env.out.String(), ">>> missing: config not found: missing\n")
}
