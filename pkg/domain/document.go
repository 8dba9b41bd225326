package domain

// Document is the state configuration derived from a graph.
// It is a disposable snapshot: it is regenerated on every commit and never
// patched in place.
type Document struct {
	States      []State      `json:"states" yaml:"states" mapstructure:"states" validate:"dive"`
	Decisions   []Decision   `json:"decisions" yaml:"decisions" mapstructure:"decisions" validate:"dive"`
	SuperStates []SuperState `json:"superStates" yaml:"superStates" mapstructure:"superStates" validate:"dive"`
}

// NewDocument returns a document whose collections encode as [] rather than null.
func NewDocument() *Document {
	return &Document{
		States:      []State{},
		Decisions:   []Decision{},
		SuperStates: []SuperState{},
	}
}

// Normalize replaces nil collections and link maps with empty ones so that
// the JSON form is stable.
func (d *Document) Normalize() {
	if d.States == nil {
		d.States = []State{}
	}
	if d.Decisions == nil {
		d.Decisions = []Decision{}
	}
	if d.SuperStates == nil {
		d.SuperStates = []SuperState{}
	}
	for i := range d.States {
		if d.States[i].Links == nil {
			d.States[i].Links = Links{}
		}
	}
	for i := range d.Decisions {
		if d.Decisions[i].Links == nil {
			d.Decisions[i].Links = Links{}
		}
	}
	for i := range d.SuperStates {
		if d.SuperStates[i].Links == nil {
			d.SuperStates[i].Links = Links{}
		}
	}
}

// Entities returns states, decisions and super-states in that order.
func (d *Document) Entities() []Entity {
	out := make([]Entity, 0, d.Len())
	for _, s := range d.States {
		out = append(out, s)
	}
	for _, dec := range d.Decisions {
		out = append(out, dec)
	}
	for _, ss := range d.SuperStates {
		out = append(out, ss)
	}
	return out
}

// Len returns the total number of entities.
func (d *Document) Len() int {
	return len(d.States) + len(d.Decisions) + len(d.SuperStates)
}

// Lookup finds an entity by id across all collections.
func (d *Document) Lookup(id string) (Entity, bool) {
	for _, e := range d.Entities() {
		if e.EntityID() == id {
			return e, true
		}
	}
	return nil, false
}

// EntryPoints returns the ids of every state flagged as entry point.
func (d *Document) EntryPoints() []string {
	var ids []string
	for _, s := range d.States {
		if s.EntryPoint {
			ids = append(ids, s.ID)
		}
	}
	return ids
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := &Document{
		States:      make([]State, len(d.States)),
		Decisions:   make([]Decision, len(d.Decisions)),
		SuperStates: make([]SuperState, len(d.SuperStates)),
	}
	for i, s := range d.States {
		s.Links = s.Links.Clone()
		out.States[i] = s
	}
	for i, dec := range d.Decisions {
		dec.Links = dec.Links.Clone()
		out.Decisions[i] = dec
	}
	for i, ss := range d.SuperStates {
		ss.Links = ss.Links.Clone()
		out.SuperStates[i] = ss
	}
	return out
}
