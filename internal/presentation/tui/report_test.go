package tui

import (
	"errors"
	"testing"

	"github.com/aretw0/statemap/pkg/domain"
	"github.com/aretw0/statemap/pkg/projector"
	"github.com/stretchr/testify/assert"
)

func TestReport_Markdown(t *testing.T) {
	doc := &domain.Document{
		States: []domain.State{
			{ID: "cart", EntryPoint: true, Links: domain.Links{domain.PortComplete: "paid"}},
			{ID: "ship", TurboSkip: true, Links: domain.Links{}},
		},
		Decisions: []domain.Decision{
			{ID: "paid", Concrete: "isPaid", Links: domain.Links{domain.PortTrue: "ship", domain.PortFalse: "cart"}},
		},
		SuperStates: []domain.SuperState{},
	}

	md := Report{Title: "checkout", Document: doc}.Markdown()

	assert.Contains(t, md, "# checkout")
	assert.Contains(t, md, "**Entry point:** `cart`")
	assert.Contains(t, md, "2 states, 1 decisions, 0 super-states")
	assert.Contains(t, md, "| `cart` | complete → `paid` | entry |")
	assert.Contains(t, md, "| `ship` | - | turbo skip |")
	assert.Contains(t, md, "| `paid` | `isPaid` | false → `cart`, true → `ship` |")
	assert.NotContains(t, md, "## Super-states")
	assert.Contains(t, md, "No problems found.")
}

func TestReport_AbsentWithErrors(t *testing.T) {
	md := Report{
		Errors: []error{errors.New("invalid entry point count: 0")},
		Diagnostics: []projector.Diagnostic{
			{Kind: projector.DiagnosticUnknownCategory, Node: "n1", Category: "Widget"},
		},
	}.Markdown()

	assert.Contains(t, md, "# State configuration")
	assert.Contains(t, md, "No entry point")
	assert.Contains(t, md, "- invalid entry point count: 0")
	assert.Contains(t, md, "n1: unknown category \"Widget\"")
	assert.Contains(t, md, "## Projection notes")
}

func TestReport_Unreachable(t *testing.T) {
	md := Report{
		Document:    &domain.Document{States: []domain.State{{ID: "a", EntryPoint: true}, {ID: "b"}}},
		Unreachable: []string{"b"},
	}.Markdown()

	assert.Contains(t, md, "## Unreachable\n\n- `b`\n")
}

func TestNewRenderer_Plain(t *testing.T) {
	render := NewRenderer(true)
	out, err := render("# title")
	assert.NoError(t, err)
	assert.Equal(t, "# title", out)
}
