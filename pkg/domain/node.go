package domain

import (
	"fmt"
	"strconv"
)

// Category selects how a node is routed into the state configuration.
type Category string

const (
	// CategoryStart marks the entry state of the workflow.
	CategoryStart Category = "Start"
	// CategoryState is a regular state with error/skip/complete ports.
	CategoryState Category = "State"
	// CategoryConditional is a decision node with true/false ports.
	CategoryConditional Category = "Conditional"
	// CategorySuperState groups a nested sub-workflow.
	CategorySuperState Category = "SuperState"
	// CategoryComment is a free-text annotation. It never reaches the document.
	CategoryComment Category = "Comment"
)

// Categories lists every known category in palette order.
var Categories = []Category{
	CategoryStart,
	CategoryState,
	CategoryConditional,
	CategorySuperState,
	CategoryComment,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Node represents a diagram node.
// The attribute bag is free-form: the diagram widget may store anything in it
// (location, colors, labels). Only a handful of keys carry meaning here.
type Node struct {
	Key      string         `json:"key" yaml:"key"`
	Category Category       `json:"category" yaml:"category"`
	Attrs    map[string]any `json:"attrs,omitempty" yaml:"attrs,omitempty"`
}

// NewNode creates a node with an empty attribute bag.
func NewNode(key string, category Category) Node {
	return Node{Key: key, Category: category, Attrs: make(map[string]any)}
}

// With returns a copy of the node with the attribute set.
func (n Node) With(name string, value any) Node {
	out := n.Clone()
	if out.Attrs == nil {
		out.Attrs = make(map[string]any)
	}
	out.Attrs[name] = value
	return out
}

// Clone returns a copy of the node whose attribute map can be mutated freely.
func (n Node) Clone() Node {
	out := n
	if n.Attrs != nil {
		out.Attrs = make(map[string]any, len(n.Attrs))
		for k, v := range n.Attrs {
			out.Attrs[k] = v
		}
	}
	return out
}

// Bool reports whether the named attribute is truthy.
// Booleans are taken as-is; strings are truthy when non-empty and not "false";
// numbers are truthy when non-zero; nil and missing attributes are false.
func (n Node) Bool(name string) bool {
	v, ok := n.Attrs[name]
	if !ok {
		return false
	}
	return truthy(v)
}

// String returns the named attribute formatted as a string, or "" if missing.
func (n Node) String(name string) string {
	v, ok := n.Attrs[name]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		if t == "" {
			return false
		}
		b, err := strconv.ParseBool(t)
		return err != nil || b
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0
	case float32:
		return t != 0
	default:
		return true
	}
}
