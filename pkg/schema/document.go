package schema

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/aretw0/statemap/pkg/domain"
	"github.com/go-playground/validator/v10"
)

var (
	structValidator     *validator.Validate
	structValidatorOnce sync.Once
)

// fields returns the shared struct-tag validator, reporting JSON field names.
func fields() *validator.Validate {
	structValidatorOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		structValidator = v
	})
	return structValidator
}

// Validate checks the structural invariants of doc and returns every
// violation found. The checks are independent, so a document with both a
// duplicate id and a dangling link yields both errors. A nil document has no
// entry point.
//
// Errors come out grouped by check, in this order: empty required fields,
// duplicate ids, entry point count, invalid ports, dangling link targets.
// Within a group they follow document order (states, decisions, super-states)
// and, inside an entity, port name order.
func Validate(doc *domain.Document) []error {
	if doc == nil {
		return []error{&InvalidEntryPointCount{Count: 0}}
	}

	var errs []error
	errs = append(errs, checkRequired(doc)...)
	errs = append(errs, checkDuplicates(doc)...)

	if n := len(doc.EntryPoints()); n != 1 {
		errs = append(errs, &InvalidEntryPointCount{Count: n})
	}

	errs = append(errs, checkPorts(doc)...)
	errs = append(errs, checkTargets(doc)...)
	return errs
}

// Check runs Validate and wraps a non-empty result in an *AggregateError.
func Check(doc *domain.Document) error {
	errs := Validate(doc)
	if len(errs) == 0 {
		return nil
	}
	return &AggregateError{Errors: errs}
}

func checkRequired(doc *domain.Document) []error {
	var errs []error
	for i, e := range doc.Entities() {
		err := fields().Struct(e)
		if err == nil {
			continue
		}
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			continue
		}
		for _, fe := range verrs {
			errs = append(errs, &EmptyField{
				Kind:  e.EntityKind(),
				Index: indexWithinKind(doc, e.EntityKind(), i),
				ID:    e.EntityID(),
				Field: fe.Field(),
			})
		}
	}
	return errs
}

// indexWithinKind converts a position in doc.Entities() into a position in
// the entity's own collection.
func indexWithinKind(doc *domain.Document, kind domain.Kind, pos int) int {
	switch kind {
	case domain.KindDecision:
		return pos - len(doc.States)
	case domain.KindSuperState:
		return pos - len(doc.States) - len(doc.Decisions)
	}
	return pos
}

func checkDuplicates(doc *domain.Document) []error {
	var errs []error
	seen := make(map[string]int)
	for _, e := range doc.Entities() {
		id := e.EntityID()
		if id == "" {
			continue
		}
		seen[id]++
		if seen[id] == 2 {
			errs = append(errs, &DuplicateID{ID: id})
		}
	}
	return errs
}

func checkPorts(doc *domain.Document) []error {
	var errs []error
	for _, s := range doc.States {
		for _, port := range s.Links.Ports() {
			if !domain.IsStatePort(port) {
				errs = append(errs, &InvalidStatePort{ID: s.ID, Port: port})
			}
		}
	}
	for _, d := range doc.Decisions {
		for _, port := range d.Links.Ports() {
			if !domain.IsDecisionPort(port) {
				errs = append(errs, &InvalidDecisionPort{ID: d.ID, Port: port})
			}
		}
	}
	return errs
}

func checkTargets(doc *domain.Document) []error {
	ids := make(map[string]struct{}, doc.Len())
	for _, e := range doc.Entities() {
		ids[e.EntityID()] = struct{}{}
	}

	var errs []error
	for _, e := range doc.Entities() {
		links := e.EntityLinks()
		for _, port := range links.Ports() {
			target := links[port]
			if _, ok := ids[target]; !ok {
				errs = append(errs, &DanglingLinkTarget{
					SourceID: e.EntityID(),
					Port:     port,
					TargetID: target,
				})
			}
		}
	}
	return errs
}
