package domain

import "sort"

// Kind identifies which document collection an entity belongs to.
type Kind string

const (
	KindState      Kind = "state"
	KindDecision   Kind = "decision"
	KindSuperState Kind = "superState"
)

// Links maps an outgoing port name to the id of the destination entity.
type Links map[string]string

// Ports returns the port names sorted alphabetically.
func (l Links) Ports() []string {
	ports := make([]string, 0, len(l))
	for p := range l {
		ports = append(ports, p)
	}
	sort.Strings(ports)
	return ports
}

// Clone returns a copy of the map. A nil map clones to an empty one.
func (l Links) Clone() Links {
	out := make(Links, len(l))
	for k, v := range l {
		out[k] = v
	}
	return out
}

// Entity is implemented by State, Decision and SuperState.
type Entity interface {
	EntityID() string
	EntityKind() Kind
	EntityLinks() Links
}

// State is a workflow step.
// The optional flags are only ever present as true: a false flag is the same
// as an absent one and is never written out.
type State struct {
	ID          string `json:"id" yaml:"id" mapstructure:"id" validate:"required"`
	Links       Links  `json:"links" yaml:"links" mapstructure:"links"`
	EntryPoint  bool   `json:"entryPoint,omitempty" yaml:"entryPoint,omitempty" mapstructure:"entryPoint"`
	TurboSkip   bool   `json:"turboSkip,omitempty" yaml:"turboSkip,omitempty" mapstructure:"turboSkip"`
	CascadeSkip bool   `json:"cascadeSkip,omitempty" yaml:"cascadeSkip,omitempty" mapstructure:"cascadeSkip"`
}

func (s State) EntityID() string { return s.ID }
func (s State) EntityKind() Kind { return KindState }
func (s State) EntityLinks() Links { return s.Links }

// Decision is a two-way branch labeled with a concrete condition.
type Decision struct {
	ID       string `json:"id" yaml:"id" mapstructure:"id" validate:"required"`
	Concrete string `json:"concrete" yaml:"concrete" mapstructure:"concrete" validate:"required"`
	Links    Links  `json:"links" yaml:"links" mapstructure:"links"`
}

func (d Decision) EntityID() string { return d.ID }
func (d Decision) EntityKind() Kind { return KindDecision }
func (d Decision) EntityLinks() Links { return d.Links }

// SuperState groups a nested sub-workflow entered through EntrySubState.
type SuperState struct {
	ID            string `json:"id" yaml:"id" mapstructure:"id" validate:"required"`
	Links         Links  `json:"links" yaml:"links" mapstructure:"links"`
	EntrySubState string `json:"entrySubState" yaml:"entrySubState" mapstructure:"entrySubState"`
}

func (s SuperState) EntityID() string { return s.ID }
func (s SuperState) EntityKind() Kind { return KindSuperState }
func (s SuperState) EntityLinks() Links { return s.Links }
