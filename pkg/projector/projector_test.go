package projector_test

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/statemap/pkg/domain"
	"github.com/aretw0/statemap/pkg/projector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T, nodes []domain.Node, links ...domain.Link) *domain.Graph {
	t.Helper()
	g := domain.NewGraph()
	require.NoError(t, g.Replace(nodes, links))
	return g
}

func TestProject_NoEntryPoint(t *testing.T) {
	g := build(t, []domain.Node{
		domain.NewNode("A", domain.CategoryState),
		domain.NewNode("B", domain.CategoryState),
	}, domain.NewLink("A", "complete", "B"))

	assert.Nil(t, projector.Project(g))
	assert.ErrorIs(t, projector.Check(g), domain.ErrNoEntryPoint)
	assert.Nil(t, projector.Project(domain.NewGraph()))
}

func TestProject_MinimalGraph(t *testing.T) {
	g := build(t, []domain.Node{
		domain.NewNode("Init", domain.CategoryStart),
		domain.NewNode("A", domain.CategoryState),
	}, domain.NewLink("Init", "complete", "A"))

	doc := projector.Project(g)
	require.NotNil(t, doc)
	require.NoError(t, projector.Check(g))

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"states": [
			{"id": "Init", "links": {"complete": "A"}, "entryPoint": true},
			{"id": "A", "links": {}}
		],
		"decisions": [],
		"superStates": []
	}`, string(data))
}

func TestProject_SingleEntryPoint(t *testing.T) {
	g := build(t, []domain.Node{
		domain.NewNode("A", domain.CategoryState),
		domain.NewNode("Init", domain.CategoryStart),
		domain.NewNode("B", domain.CategoryState),
	})

	doc := projector.Project(g)
	require.NotNil(t, doc)
	assert.Equal(t, []string{"Init"}, doc.EntryPoints())
}

func TestProject_SkipFlags(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  bool
	}{
		{"true", true, true},
		{"false", false, false},
		{"string true", "true", true},
		{"string false", "false", false},
		{"zero", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := build(t, []domain.Node{
				domain.NewNode("Init", domain.CategoryStart),
				domain.NewNode("S", domain.CategoryState).With(domain.AttrTurbo, tt.value),
			})
			doc := projector.Project(g)
			require.Len(t, doc.States, 2)
			assert.Equal(t, tt.want, doc.States[1].TurboSkip)
			assert.False(t, doc.States[1].CascadeSkip)

			data, err := json.Marshal(doc.States[1])
			require.NoError(t, err)
			if tt.want {
				assert.Contains(t, string(data), `"turboSkip":true`)
			} else {
				assert.NotContains(t, string(data), "turboSkip")
			}
		})
	}
}

func TestProject_Routing(t *testing.T) {
	g := build(t, []domain.Node{
		domain.NewNode("Init", domain.CategoryStart),
		domain.NewNode("D1", domain.CategoryConditional).With(domain.AttrConcrete, "x>5"),
		domain.NewNode("Group", domain.CategorySuperState).With(domain.AttrEntrySubState, "A"),
		domain.NewNode("A", domain.CategoryState).With(domain.AttrCascade, true),
		domain.NewNode("Note", domain.CategoryComment).With(domain.AttrText, "todo"),
	},
		domain.NewLink("Init", "complete", "D1"),
		domain.NewLink("D1", "true", "A"),
		domain.NewLink("D1", "false", "Group"),
		domain.NewLink("Note", "", "A"),
	)

	doc := projector.Project(g)
	require.NotNil(t, doc)

	assert.Len(t, doc.States, 2)
	assert.Equal(t, []domain.Decision{
		{ID: "D1", Concrete: "x>5", Links: domain.Links{"true": "A", "false": "Group"}},
	}, doc.Decisions)
	assert.Equal(t, []domain.SuperState{
		{ID: "Group", EntrySubState: "A", Links: domain.Links{}},
	}, doc.SuperStates)
	assert.True(t, doc.States[1].CascadeSkip)

	_, found := doc.Lookup("Note")
	assert.False(t, found, "comments never reach the document")
}

func TestProject_LastLinkWins(t *testing.T) {
	g := build(t, []domain.Node{
		domain.NewNode("Init", domain.CategoryStart),
		domain.NewNode("A", domain.CategoryState),
		domain.NewNode("B", domain.CategoryState),
	},
		domain.NewLink("Init", "complete", "A"),
		domain.NewLink("Init", "complete", "B"),
		domain.NewLink("Init", "error", "Ghost"),
	)

	doc, diags := projector.Report(g)
	require.NotNil(t, doc)
	assert.Equal(t, domain.Links{"complete": "B"}, doc.States[0].Links)

	require.Len(t, diags, 2)
	assert.Equal(t, projector.DiagnosticPortOverwrite, diags[0].Kind)
	assert.Equal(t, "A", diags[0].Previous)
	assert.Equal(t, "B", diags[0].Target)
	assert.Equal(t, projector.DiagnosticDanglingLink, diags[1].Kind)
	assert.Equal(t, "Ghost", diags[1].Target)
}

func TestProject_UnknownCategory(t *testing.T) {
	g := build(t, []domain.Node{
		domain.NewNode("Init", domain.CategoryStart),
		domain.NewNode("W", domain.Category("Widget")),
	})

	doc, diags := projector.Report(g)
	assert.Equal(t, 1, doc.Len())
	require.Len(t, diags, 1)
	assert.Equal(t, projector.DiagnosticUnknownCategory, diags[0].Kind)
}

func TestProject_DeterministicAndPure(t *testing.T) {
	g := build(t, []domain.Node{
		domain.NewNode("Init", domain.CategoryStart),
		domain.NewNode("D1", domain.CategoryConditional).With(domain.AttrConcrete, "ready"),
		domain.NewNode("A", domain.CategoryState).With(domain.AttrTurbo, true),
	},
		domain.NewLink("Init", "complete", "D1"),
		domain.NewLink("D1", "true", "A"),
		domain.NewLink("D1", "false", "Init"),
		domain.NewLink("A", "skip", "Init"),
	)
	before := g.Clone()

	first, err := json.Marshal(projector.Project(g))
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := json.Marshal(projector.Project(g))
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}

	assert.Equal(t, before.Nodes(), g.Nodes())
	assert.Equal(t, before.Links(), g.Links())
}
