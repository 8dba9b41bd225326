package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/statemap"
	"github.com/aretw0/statemap/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "statemap version "+strings.TrimSpace(statemap.Version)+"\n", out)
}

func TestProjectThenValidate(t *testing.T) {
	t.Setenv("STATEMAP_STORE_DRIVER", "memory")
	dir := t.TempDir()
	layout := filepath.Join(dir, "flow.layout.json")
	require.NoError(t, os.WriteFile(layout, []byte(`{
		"nodeDataArray": [{"key": "Init", "category": "Start"}, {"key": "End", "category": "State"}],
		"linkDataArray": [{"from": "Init", "to": "End", "fromPort": "complete"}]
	}`), 0o644))
	config := filepath.Join(dir, "flow.yaml")

	_, err := run(t, "", "project", layout, "-o", config)
	require.NoError(t, err)

	data, err := os.ReadFile(config)
	require.NoError(t, err)
	assert.Contains(t, string(data), "entryPoint: true")

	out, err := run(t, "", "validate", config)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid.")
}

func TestValidate_Invalid(t *testing.T) {
	_, err := run(t, `{"states": [{"id": "A", "links": {}}]}`, "validate", "-q", "-")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 error(s)")
}

func TestCatalog(t *testing.T) {
	dir := t.TempDir()
	testutils.WriteFiles(t, dir, map[string]string{
		"good.yaml": "states:\n  - id: A\n    entryPoint: true\n    links: {}\n",
		"bad.json":  `{"states": [{"id": "A", "entryPoint": true, "links": {"complete": "Z"}}]}`,
	})

	out, err := run(t, "", "catalog", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2")
	assert.Contains(t, out, ">>> good: ok")
	assert.Contains(t, out, ">>> bad: 1 error(s)")
}
