package schema

import (
	"fmt"
	"strings"
)

// Type checks one attribute value of a diagram node.
type Type interface {
	// Name is the type's spelling in a serialized schema, e.g. "bool?".
	Name() string
	Validate(value any) error
}

type scalar struct {
	name  string
	check func(any) bool
}

func (t scalar) Name() string { return t.name }

func (t scalar) Validate(value any) error {
	if !t.check(value) {
		return fmt.Errorf("expected %s, got %T", t.name, value)
	}
	return nil
}

type optional struct {
	elem Type
}

func (t optional) Name() string { return t.elem.Name() + "?" }

func (t optional) Validate(value any) error {
	if value == nil {
		return nil
	}
	return t.elem.Validate(value)
}

var (
	stringType = scalar{name: "string", check: func(v any) bool { _, ok := v.(string); return ok }}
	boolType   = scalar{name: "bool", check: func(v any) bool { _, ok := v.(bool); return ok }}
)

// String accepts string values: decision conditions, entry sub-states, comment text.
func String() Type { return stringType }

// Bool accepts booleans: the turbo and cascade flags.
func Bool() Type { return boolType }

// Optional lets the attribute be missing or nil.
func Optional(elem Type) Type { return optional{elem: elem} }

// IsOptional reports whether t was created with Optional.
func IsOptional(t Type) bool {
	_, ok := t.(optional)
	return ok
}

// ParseType reads a type name written by Type.Name: "string", "bool", or
// either with a trailing "?".
func ParseType(name string) (Type, error) {
	if base, ok := strings.CutSuffix(name, "?"); ok && base != "" {
		elem, err := ParseType(base)
		if err != nil {
			return nil, err
		}
		if IsOptional(elem) {
			return nil, fmt.Errorf("unsupported type: %s", name)
		}
		return Optional(elem), nil
	}
	switch name {
	case "string":
		return String(), nil
	case "bool":
		return Bool(), nil
	}
	return nil, fmt.Errorf("unsupported type: %s", name)
}

// ParseTypeMap builds a Schema from attribute names mapped to type names.
func ParseTypeMap(names map[string]string) (Schema, error) {
	s := make(Schema, len(names))
	for attr, name := range names {
		t, err := ParseType(name)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", attr, err)
		}
		s[attr] = t
	}
	return s, nil
}
