package domain

import (
	"encoding/json"
	"reflect"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestDiff(t *testing.T) {
	base := &Document{
		States: []State{
			{ID: "Init", Links: Links{"complete": "Process"}, EntryPoint: true},
			{ID: "Process", Links: Links{}},
		},
		Decisions:   []Decision{{ID: "D1", Concrete: "x>5", Links: Links{"true": "Process"}}},
		SuperStates: []SuperState{},
	}

	tests := []struct {
		name     string
		old      *Document
		new      *Document
		wantDiff *DocumentDiff
	}{
		{
			name: "Initial Projection (Old is Nil)",
			old:  nil,
			new:  base,
			wantDiff: &DocumentDiff{
				Added:      []string{"D1", "Init", "Process"},
				EntryPoint: strPtr("Init"),
			},
		},
		{
			name:     "No Changes",
			old:      base,
			new:      base.Clone(),
			wantDiff: nil,
		},
		{
			name:     "Nil And Empty Links Are Equal",
			old:      &Document{States: []State{{ID: "Init", EntryPoint: true}}},
			new:      &Document{States: []State{{ID: "Init", Links: Links{}, EntryPoint: true}}},
			wantDiff: nil,
		},
		{
			name: "Changed Flag And Removed Decision",
			old:  base,
			new: &Document{
				States: []State{
					{ID: "Init", Links: Links{"complete": "Process"}, EntryPoint: true},
					{ID: "Process", Links: Links{}, TurboSkip: true},
				},
			},
			wantDiff: &DocumentDiff{
				Removed: []string{"D1"},
				Changed: []string{"Process"},
			},
		},
		{
			name: "Entry Point Lost",
			old:  base,
			new:  nil,
			wantDiff: &DocumentDiff{
				Removed:    []string{"D1", "Init", "Process"},
				EntryPoint: strPtr(""),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.old, tt.new)
			if !reflect.DeepEqual(got, tt.wantDiff) {
				gotJSON, _ := json.Marshal(got)
				wantJSON, _ := json.Marshal(tt.wantDiff)
				t.Errorf("Diff() = %s, want %s", gotJSON, wantJSON)
			}
		})
	}
}

func TestDocumentDiff_IsEmpty(t *testing.T) {
	if !(&DocumentDiff{}).IsEmpty() {
		t.Error("zero diff should be empty")
	}
	if (&DocumentDiff{Changed: []string{"a"}}).IsEmpty() {
		t.Error("diff with changes should not be empty")
	}
}
