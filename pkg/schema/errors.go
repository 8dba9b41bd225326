package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/statemap/pkg/domain"
)

// ValidationError represents a single attribute validation failure.
type ValidationError struct {
	Node   string // Node key, empty when validating a bare attribute map
	Key    string // Attribute name
	Reason string // Human-readable reason for failure
	Value  any    // The value that failed validation
}

func (e *ValidationError) Error() string {
	prefix := ""
	if e.Node != "" {
		prefix = fmt.Sprintf("node %q: ", e.Node)
	}
	if e.Value == nil {
		return fmt.Sprintf("%sfield %q: %s", prefix, e.Key, e.Reason)
	}
	return fmt.Sprintf("%sfield %q: %s (got %T)", prefix, e.Key, e.Reason, e.Value)
}

// DuplicateID is reported when two entities share an id.
type DuplicateID struct {
	ID string
}

func (e *DuplicateID) Error() string {
	return fmt.Sprintf("duplicate id %q", e.ID)
}

// InvalidEntryPointCount is reported unless exactly one state is an entry point.
type InvalidEntryPointCount struct {
	Count int
}

func (e *InvalidEntryPointCount) Error() string {
	return fmt.Sprintf("expected exactly one entry point, found %d", e.Count)
}

// DanglingLinkTarget is reported when a link names an id that no entity has.
type DanglingLinkTarget struct {
	SourceID string
	Port     string
	TargetID string
}

func (e *DanglingLinkTarget) Error() string {
	return fmt.Sprintf("link %s.%s points to unknown id %q", e.SourceID, e.Port, e.TargetID)
}

// InvalidDecisionPort is reported when a decision uses a port other than true/false.
type InvalidDecisionPort struct {
	ID   string
	Port string
}

func (e *InvalidDecisionPort) Error() string {
	return fmt.Sprintf("decision %q: invalid port %q (want true or false)", e.ID, e.Port)
}

// InvalidStatePort is reported when a state uses a port outside error/skip/complete.
type InvalidStatePort struct {
	ID   string
	Port string
}

func (e *InvalidStatePort) Error() string {
	return fmt.Sprintf("state %q: invalid port %q (want %s)", e.ID, e.Port, strings.Join(domain.StatePorts, ", "))
}

// EmptyField is reported when a required field of an entity is empty.
type EmptyField struct {
	Kind  domain.Kind
	Index int
	ID    string
	Field string
}

func (e *EmptyField) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s #%d: %s is required", e.Kind, e.Index, e.Field)
	}
	return fmt.Sprintf("%s %q: %s is required", e.Kind, e.ID, e.Field)
}

// AggregateError represents multiple validation failures.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// ValidationErrors returns all validation errors if err is an AggregateError.
// Otherwise returns nil.
func ValidationErrors(err error) []error {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		return aggr.Errors
	}
	return nil
}
