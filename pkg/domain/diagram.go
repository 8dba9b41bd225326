package domain

import (
	"encoding/json"
	"time"
)

// Diagram is the persisted unit: the layout document owned by the diagram
// widget, stored verbatim, next to the state configuration projected from it.
type Diagram struct {
	ID        string          `json:"id"`
	Name      string          `json:"name,omitempty"`
	Layout    json.RawMessage `json:"layout,omitempty"`
	Config    *Document       `json:"config,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Clone returns a deep copy of the diagram.
func (d *Diagram) Clone() *Diagram {
	out := *d
	if d.Layout != nil {
		out.Layout = append(json.RawMessage(nil), d.Layout...)
	}
	out.Config = d.Config.Clone()
	return &out
}
