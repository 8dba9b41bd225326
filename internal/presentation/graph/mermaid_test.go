package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/statemap/internal/presentation/graph"
	"github.com/aretw0/statemap/pkg/domain"
)

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		doc      *domain.Document
		contains []string
	}{
		{
			name: "Entry State Shape",
			doc: &domain.Document{
				States: []domain.State{
					{ID: "cart", EntryPoint: true},
					{ID: "pay"},
				},
			},
			contains: []string{
				"cart((\"cart\"))",
				"pay[\"pay\"]",
			},
		},
		{
			name: "Decision Shape",
			doc: &domain.Document{
				Decisions: []domain.Decision{
					{ID: "paid", Concrete: "isPaid", Links: domain.Links{domain.PortTrue: "done", domain.PortFalse: "retry"}},
				},
			},
			contains: []string{
				"paid{\"paid <br/> isPaid?\"}",
				"paid -- false --> retry",
				"paid -- true --> done",
			},
		},
		{
			name: "SuperState Shape",
			doc: &domain.Document{
				SuperStates: []domain.SuperState{
					{ID: "group", EntrySubState: "inner"},
				},
			},
			contains: []string{
				"group[[\"group\"]]",
				"group -. enter .-> inner",
			},
		},
		{
			name: "Skip Flags",
			doc: &domain.Document{
				States: []domain.State{
					{ID: "s", TurboSkip: true, CascadeSkip: true},
				},
			},
			contains: []string{
				"s[\"s <br/> skip: turbo, cascade\"]",
			},
		},
		{
			name: "ID Sanitization",
			doc: &domain.Document{
				States: []domain.State{
					{ID: "path/to/file.md"},
					{ID: "hyphen-ated"},
				},
			},
			contains: []string{
				"path_to_file_md[\"path/to/file.md\"]",
				"hyphen_ated[\"hyphen-ated\"]",
			},
		},
		{
			name: "Error Links Dotted",
			doc: &domain.Document{
				States: []domain.State{
					{ID: "a", Links: domain.Links{domain.PortError: "b", domain.PortComplete: "c"}},
				},
			},
			contains: []string{
				"a -- complete --> c",
				"a -. error .-> b",
			},
		},
		{
			name: "Label Escaping",
			doc: &domain.Document{
				Decisions: []domain.Decision{
					{ID: "d", Concrete: `status == "ok"`},
				},
			},
			contains: []string{
				"d{\"d <br/> status == 'ok'?\"}",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.doc, nil)
			if !strings.HasPrefix(got, "graph TD\n") {
				t.Errorf("Expected graph header, got:\n%s", got)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("Expected output to contain %q, got:\n%s", want, got)
				}
			}
		})
	}
}

func TestGenerateMermaid_LinkOrder(t *testing.T) {
	doc := &domain.Document{
		States: []domain.State{
			{ID: "a", Links: domain.Links{domain.PortSkip: "c", domain.PortComplete: "b"}},
		},
	}
	got := graph.GenerateMermaid(doc, nil)
	complete := strings.Index(got, "a -- complete --> b")
	skip := strings.Index(got, "a -- skip --> c")
	if complete < 0 || skip < 0 || complete > skip {
		t.Errorf("Expected links in port order, got:\n%s", got)
	}
}

func TestGenerateMermaid_Absent(t *testing.T) {
	if got := graph.GenerateMermaid(nil, nil); got != "graph TD\n" {
		t.Errorf("Expected bare header for absent document, got %q", got)
	}
}

func TestGenerateMermaid_Diff(t *testing.T) {
	doc := &domain.Document{
		States: []domain.State{{ID: "a", EntryPoint: true}, {ID: "b"}},
	}
	diff := &domain.DocumentDiff{Added: []string{"b"}, Changed: []string{"a"}}

	got := graph.GenerateMermaid(doc, diff)
	for _, want := range []string{"classDef added", "class b added;", "class a changed;"} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, got)
		}
	}

	plain := graph.GenerateMermaid(doc, nil)
	if strings.Contains(plain, "classDef") {
		t.Errorf("Expected no styles without diff, got:\n%s", plain)
	}
}
