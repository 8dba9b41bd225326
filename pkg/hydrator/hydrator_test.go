package hydrator_test

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/statemap/pkg/domain"
	"github.com/aretw0/statemap/pkg/hydrator"
	"github.com/aretw0/statemap/pkg/projector"
	"github.com/aretw0/statemap/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() *domain.Document {
	return &domain.Document{
		States: []domain.State{
			{ID: "Init", EntryPoint: true, Links: domain.Links{"complete": "Fetch"}},
			{ID: "Fetch", TurboSkip: true, Links: domain.Links{"complete": "Check", "error": "Init"}},
			{ID: "Done", CascadeSkip: true, Links: domain.Links{}},
		},
		Decisions: []domain.Decision{
			{ID: "Check", Concrete: "x>5", Links: domain.Links{"true": "Done", "false": "Group"}},
		},
		SuperStates: []domain.SuperState{
			{ID: "Group", EntrySubState: "Fetch", Links: domain.Links{"": "Done"}},
		},
	}
}

func TestHydrate_MinimalDocument(t *testing.T) {
	doc := &domain.Document{
		States: []domain.State{
			{ID: "Init", EntryPoint: true, Links: domain.Links{"complete": "A"}},
			{ID: "A", Links: domain.Links{}},
		},
	}

	g, err := hydrator.Hydrate(doc)
	require.NoError(t, err)

	nodes := g.Nodes()
	require.Len(t, nodes, 2)
	assert.Equal(t, domain.CategoryStart, nodes[0].Category)
	assert.Equal(t, "Init", nodes[0].Key)
	assert.Equal(t, domain.CategoryState, nodes[1].Category)
	assert.Equal(t, []domain.Link{{From: "Init", FromPort: "complete", To: "A"}}, g.Links())
}

func TestHydrate_Attributes(t *testing.T) {
	g, err := hydrator.Hydrate(sampleDocument())
	require.NoError(t, err)

	fetch, ok := g.Node("Fetch")
	require.True(t, ok)
	assert.Equal(t, true, fetch.Attrs[domain.AttrTurbo])
	assert.NotContains(t, fetch.Attrs, domain.AttrCascade)

	check, ok := g.Node("Check")
	require.True(t, ok)
	assert.Equal(t, domain.CategoryConditional, check.Category)
	assert.Equal(t, "x>5", check.Attrs[domain.AttrConcrete])

	group, ok := g.Node("Group")
	require.True(t, ok)
	assert.Equal(t, "Fetch", group.Attrs[domain.AttrEntrySubState])

	// Links come out in port name order per entity.
	assert.Equal(t, []domain.Link{
		{From: "Fetch", FromPort: "complete", To: "Check"},
		{From: "Fetch", FromPort: "error", To: "Init"},
	}, g.LinksOutOf("Fetch"))
}

func TestHydrate_RejectsInvalidDocument(t *testing.T) {
	doc := sampleDocument()
	doc.States[2].Links["complete"] = "Missing"
	doc.Decisions[0].Links["maybe"] = "Done"

	g, err := hydrator.Hydrate(doc)
	require.Error(t, err)
	assert.Nil(t, g)

	errs := schema.ValidationErrors(err)
	require.Len(t, errs, 2)
	assert.IsType(t, &schema.InvalidDecisionPort{}, errs[0])
	assert.IsType(t, &schema.DanglingLinkTarget{}, errs[1])
}

func TestHydrate_RejectsAbsentDocument(t *testing.T) {
	_, err := hydrator.Hydrate(nil)
	var count *schema.InvalidEntryPointCount
	require.ErrorAs(t, err, &count)
	assert.Equal(t, 0, count.Count)
}

func TestRoundTrip(t *testing.T) {
	doc := sampleDocument()

	g, err := hydrator.Hydrate(doc)
	require.NoError(t, err)

	assert.Equal(t, doc, projector.Project(g))
}

func TestRoundTrip_EntryPointSkipFlags(t *testing.T) {
	doc := &domain.Document{
		States: []domain.State{
			{ID: "Init", EntryPoint: true, TurboSkip: true, CascadeSkip: true, Links: domain.Links{domain.PortComplete: "Next"}},
			{ID: "Next", CascadeSkip: true, Links: domain.Links{}},
		},
		Decisions:   []domain.Decision{},
		SuperStates: []domain.SuperState{},
	}
	require.Empty(t, schema.Validate(doc))

	g, err := hydrator.Hydrate(doc)
	require.NoError(t, err)

	entry, ok := g.Node("Init")
	require.True(t, ok)
	assert.Equal(t, domain.CategoryStart, entry.Category)
	assert.Equal(t, doc, projector.Project(g))
}

func TestRoundTrip_Idempotent(t *testing.T) {
	g, err := hydrator.Hydrate(sampleDocument())
	require.NoError(t, err)

	first, err := json.Marshal(projector.Project(g))
	require.NoError(t, err)

	again, err := hydrator.Hydrate(projector.Project(g))
	require.NoError(t, err)
	second, err := json.Marshal(projector.Project(again))
	require.NoError(t, err)

	assert.JSONEq(t, string(first), string(second))
	assert.Equal(t, g.Nodes(), again.Nodes())
	assert.Equal(t, g.Links(), again.Links())
}

func TestRoundTrip_LosesComments(t *testing.T) {
	g := domain.NewGraph()
	require.NoError(t, g.AddNode(domain.NewNode("Init", domain.CategoryStart)))
	require.NoError(t, g.AddNode(domain.NewNode("Note", domain.CategoryComment).With(domain.AttrText, "remember")))

	back, err := hydrator.Hydrate(projector.Project(g))
	require.NoError(t, err)
	assert.False(t, back.Has("Note"))
	assert.Equal(t, 1, back.Len())
}

func TestInto(t *testing.T) {
	sink := domain.NewGraph()
	require.NoError(t, sink.AddNode(domain.NewNode("Old", domain.CategoryStart)))

	t.Run("Rejected Leaves Sink Intact", func(t *testing.T) {
		_, err := hydrator.Into(sink, &domain.Document{})
		require.Error(t, err)
		assert.True(t, sink.Has("Old"))
	})

	t.Run("Accepted Replaces Model", func(t *testing.T) {
		_, err := hydrator.Into(sink, sampleDocument())
		require.NoError(t, err)
		assert.False(t, sink.Has("Old"))
		assert.Equal(t, 5, sink.Len())
	})
}
