package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/statemap"
	"github.com/aretw0/statemap/pkg/adapters/memory"
	"github.com/aretw0/statemap/pkg/domain"
	"github.com/aretw0/statemap/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const layoutJSON = `{
  "class": "GraphLinksModel",
  "nodeDataArray": [
    {"key": "a", "category": "Start"},
    {"key": "b", "category": "State"}
  ],
  "linkDataArray": [
    {"from": "a", "to": "b", "fromPort": "complete"},
    {"from": "a", "to": "ghost", "fromPort": "error"}
  ]
}`

const configYAML = `states:
  - id: a
    entryPoint: true
    links:
      complete: b
  - id: b
`

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func TestServer_ListTools(t *testing.T) {
	s := NewServer(statemap.Core{})

	msg := s.MCPServer().HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	out, err := json.Marshal(msg)
	require.NoError(t, err)

	for _, name := range []string{"project_layout", "hydrate_config", "validate_config", "render_mermaid", "describe_config"} {
		assert.Contains(t, string(out), `"`+name+`"`)
	}
}

func TestServer_Project(t *testing.T) {
	s := NewServer(statemap.Core{})
	args := map[string]interface{}{"layout": layoutJSON}

	res, err := s.handleProject(context.Background(), callRequest("project_layout", args), args)
	require.NoError(t, err)
	require.NotNil(t, res.Config)
	assert.Equal(t, []string{"a"}, res.Config.EntryPoints())
	assert.Equal(t, "b", res.Config.States[0].Links[domain.PortComplete])
	require.Len(t, res.Diagnostics, 1)
	assert.Contains(t, res.Diagnostics[0], "ghost")

	args = map[string]interface{}{"layout": `{"class": "TreeModel"}`}
	_, err = s.handleProject(context.Background(), callRequest("project_layout", args), args)
	assert.Error(t, err)
}

func TestServer_Validate(t *testing.T) {
	s := NewServer(statemap.Core{})

	args := map[string]interface{}{"config": configYAML}
	res, err := s.handleValidate(context.Background(), callRequest("validate_config", args), args)
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)

	args = map[string]interface{}{"config": `{"states": [{"id": "a", "links": {"complete": "x"}}]}`}
	res, err = s.handleValidate(context.Background(), callRequest("validate_config", args), args)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Len(t, res.Errors, 2)
}

func TestServer_Hydrate(t *testing.T) {
	s := NewServer(statemap.Core{})
	ctx := context.Background()

	res, err := s.handleHydrate(ctx, callRequest("hydrate_config", map[string]any{"config": configYAML}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, resultText(t, res), `"category": "Start"`)

	res, err = s.handleHydrate(ctx, callRequest("hydrate_config", map[string]any{"config": `{"states": []}`}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "entry point")

	res, err = s.handleHydrate(ctx, callRequest("hydrate_config", map[string]any{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestServer_MermaidAndDescribe(t *testing.T) {
	s := NewServer(statemap.Core{})
	ctx := context.Background()

	res, err := s.handleMermaid(ctx, callRequest("render_mermaid", map[string]any{"config": configYAML}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), "a((\"a\"))")

	res, err = s.handleDescribe(ctx, callRequest("describe_config", map[string]any{"config": configYAML}))
	require.NoError(t, err)
	text := resultText(t, res)
	assert.Contains(t, text, "**Entry point:** `a`")
	assert.Contains(t, text, "No problems found.")
}

func TestServer_DiagramResources(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	ctx := context.Background()
	require.NoError(t, mgr.Save(ctx, &domain.Diagram{
		ID:     "checkout",
		Config: &domain.Document{States: []domain.State{{ID: "a", EntryPoint: true}}},
	}))

	s := NewServer(statemap.Core{}, WithManager(mgr))

	msg := s.MCPServer().HandleMessage(ctx, []byte(`{"jsonrpc":"2.0","id":1,"method":"resources/read","params":{"uri":"statemap://diagrams"}}`))
	out, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.Contains(t, string(out), `[\"checkout\"]`)
}
