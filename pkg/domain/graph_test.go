package domain_test

import (
	"testing"

	"github.com/aretw0/statemap/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraph_InsertionOrder(t *testing.T) {
	g := domain.NewGraph()
	require.NoError(t, g.AddNode(domain.NewNode("b", domain.CategoryState)))
	require.NoError(t, g.AddNode(domain.NewNode("a", domain.CategoryStart)))
	require.NoError(t, g.AddNode(domain.NewNode("c", domain.CategoryComment)))

	var keys []string
	for _, n := range g.Nodes() {
		keys = append(keys, n.Key)
	}
	assert.Equal(t, []string{"b", "a", "c"}, keys)
}

func TestGraph_AddNode_Rejects(t *testing.T) {
	g := domain.NewGraph()
	require.NoError(t, g.AddNode(domain.NewNode("a", domain.CategoryState)))

	assert.ErrorIs(t, g.AddNode(domain.NewNode("a", domain.CategoryState)), domain.ErrDuplicateKey)
	assert.ErrorIs(t, g.AddNode(domain.NewNode("", domain.CategoryState)), domain.ErrEmptyKey)
	assert.ErrorIs(t, g.AddLink(domain.NewLink("missing", "error", "a")), domain.ErrNodeNotFound)
}

func TestGraph_LinksOutOf(t *testing.T) {
	g := domain.NewGraph()
	require.NoError(t, g.AddNode(domain.NewNode("a", domain.CategoryState)))
	require.NoError(t, g.AddNode(domain.NewNode("b", domain.CategoryState)))
	require.NoError(t, g.AddLink(domain.NewLink("a", "error", "b")))
	require.NoError(t, g.AddLink(domain.NewLink("b", "skip", "a")))
	require.NoError(t, g.AddLink(domain.NewLink("a", "complete", "a")))

	out := g.LinksOutOf("a")
	require.Len(t, out, 2)
	assert.Equal(t, "error", out[0].FromPort)
	assert.Equal(t, "complete", out[1].FromPort)
}

func TestGraph_RemoveNode_DropsLinks(t *testing.T) {
	g := domain.NewGraph()
	require.NoError(t, g.AddNode(domain.NewNode("a", domain.CategoryState)))
	require.NoError(t, g.AddNode(domain.NewNode("b", domain.CategoryState)))
	require.NoError(t, g.AddNode(domain.NewNode("c", domain.CategoryState)))
	require.NoError(t, g.AddLink(domain.NewLink("a", "error", "b")))
	require.NoError(t, g.AddLink(domain.NewLink("c", "skip", "a")))

	require.NoError(t, g.RemoveNode("b"))

	assert.False(t, g.Has("b"))
	assert.Equal(t, 2, g.Len())
	assert.Equal(t, []domain.Link{domain.NewLink("c", "skip", "a")}, g.Links())

	n, ok := g.Node("c")
	require.True(t, ok)
	assert.Equal(t, "c", n.Key)
}

func TestGraph_Replace_IsAtomic(t *testing.T) {
	g := domain.NewGraph()
	require.NoError(t, g.AddNode(domain.NewNode("keep", domain.CategoryStart)))

	err := g.Replace([]domain.Node{
		domain.NewNode("x", domain.CategoryState),
		domain.NewNode("x", domain.CategoryState),
	}, nil)
	require.ErrorIs(t, err, domain.ErrDuplicateKey)

	assert.True(t, g.Has("keep"), "a rejected replacement must leave the graph untouched")
	assert.Equal(t, 1, g.Len())
}

func TestGraph_Clone_IsDeep(t *testing.T) {
	g := domain.NewGraph()
	require.NoError(t, g.AddNode(domain.NewNode("a", domain.CategoryState).With(domain.AttrTurbo, true)))

	c := g.Clone()
	require.NoError(t, c.UpdateNode(domain.NewNode("a", domain.CategoryState)))

	n, _ := g.Node("a")
	assert.True(t, n.Bool(domain.AttrTurbo))
}

func TestNode_Bool(t *testing.T) {
	tests := []struct {
		value any
		want  bool
	}{
		{true, true},
		{false, false},
		{nil, false},
		{"", false},
		{"false", false},
		{"true", true},
		{"yes", true},
		{0.0, false},
		{1.0, true},
		{0, false},
		{2, true},
	}

	for _, tt := range tests {
		n := domain.NewNode("n", domain.CategoryState).With(domain.AttrTurbo, tt.value)
		if got := n.Bool(domain.AttrTurbo); got != tt.want {
			t.Errorf("Bool(%#v) = %v, want %v", tt.value, got, tt.want)
		}
	}

	assert.False(t, domain.NewNode("n", domain.CategoryState).Bool("missing"))
}

func TestDocument_NormalizeAndLookup(t *testing.T) {
	doc := &domain.Document{
		States:    []domain.State{{ID: "Init", EntryPoint: true}},
		Decisions: []domain.Decision{{ID: "D1", Concrete: "x"}},
	}
	doc.Normalize()

	assert.NotNil(t, doc.SuperStates)
	assert.NotNil(t, doc.States[0].Links)
	assert.NotNil(t, doc.Decisions[0].Links)
	assert.Equal(t, []string{"Init"}, doc.EntryPoints())

	e, ok := doc.Lookup("D1")
	require.True(t, ok)
	assert.Equal(t, domain.KindDecision, e.EntityKind())

	_, ok = doc.Lookup("nope")
	assert.False(t, ok)
}
