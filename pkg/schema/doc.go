// Package schema validates state configuration documents and diagram graphs.
//
// Document validation checks the structural invariants of a Document and
// reports every problem at once rather than stopping at the first one:
//
//	errs := schema.Validate(doc)
//	for _, err := range errs {
//	    var dangling *schema.DanglingLinkTarget
//	    if errors.As(err, &dangling) {
//	        // dangling.SourceID, dangling.Port, dangling.TargetID
//	    }
//	}
//
// Check wraps the same list in an *AggregateError, which is what the hydrator
// returns when it refuses a document.
//
// Graph validation checks node attribute bags against AttributeSchemas, which
// maps each category to attribute names and their Type (string or bool,
// possibly optional).
//
//	attrs := schema.Schema{
//	    "turbo":   schema.Optional(schema.Bool()),
//	    "cascade": schema.Optional(schema.Bool()),
//	}
//	if err := schema.ValidateAttrs(attrs, node.Attrs); err != nil {
//	    // Handle validation errors
//	}
//
// A Schema serializes to JSON as type names such as "bool?" and parses back.
package schema
