package schema

import (
	"sort"

	"github.com/aretw0/statemap/pkg/domain"
	"github.com/aretw0/statemap/pkg/ports"
)

// Schema is a map of attribute names to their expected types.
// Example: {"concrete": String(), "turbo": Optional(Bool())}
type Schema map[string]Type

// AttributeSchemas describes the attribute bag of each category. Attributes
// not listed here are passed through untouched (locations, colors, labels).
var AttributeSchemas = map[domain.Category]Schema{
	domain.CategoryStart: {
		domain.AttrTurbo:   Optional(Bool()),
		domain.AttrCascade: Optional(Bool()),
	},
	domain.CategoryState: {
		domain.AttrTurbo:   Optional(Bool()),
		domain.AttrCascade: Optional(Bool()),
	},
	domain.CategoryConditional: {
		domain.AttrConcrete: Optional(String()),
	},
	domain.CategorySuperState: {
		domain.AttrEntrySubState: Optional(String()),
	},
	domain.CategoryComment: {
		domain.AttrText: Optional(String()),
	},
}

// ValidateAttrs checks if data conforms to the schema.
// Returns an error with all validation failures found, in attribute name order.
func ValidateAttrs(schema Schema, data map[string]any) error {
	if len(schema) == 0 {
		// No schema = no validation
		return nil
	}

	names := make([]string, 0, len(schema))
	for name := range schema {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []error
	for _, fieldName := range names {
		fieldType := schema[fieldName]
		value, exists := data[fieldName]
		if !exists {
			if IsOptional(fieldType) {
				continue
			}
			errs = append(errs, &ValidationError{
				Key:    fieldName,
				Reason: "required",
				Value:  nil,
			})
			continue
		}

		if err := fieldType.Validate(value); err != nil {
			errs = append(errs, &ValidationError{
				Key:    fieldName,
				Reason: err.Error(),
				Value:  value,
			})
		}
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}

	return nil
}

// ValidateGraph checks every node of g: the category must be known and the
// attribute bag must match the category's schema. Errors are reported in node
// order.
func ValidateGraph(g ports.GraphView) []error {
	var errs []error
	for _, node := range g.Nodes() {
		schema, ok := AttributeSchemas[node.Category]
		if !ok {
			errs = append(errs, &ValidationError{
				Node:   node.Key,
				Key:    "category",
				Reason: "unknown category " + string(node.Category),
			})
			continue
		}
		err := ValidateAttrs(schema, node.Attrs)
		for _, e := range ValidationErrors(err) {
			if ve, ok := e.(*ValidationError); ok {
				ve.Node = node.Key
			}
			errs = append(errs, e)
		}
	}
	return errs
}
