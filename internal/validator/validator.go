// Package validator holds checks that go beyond the structural schema: a
// document can be well-formed and still contain states no run can ever reach.
package validator

import (
	"sort"

	"github.com/aretw0/statemap/pkg/domain"
)

// Unreachable returns the ids of the entities that cannot be reached from the
// entry point by following links and super-state entries, sorted. A document
// without exactly one entry point has no well-defined reachability and yields
// nil, as does a nil document.
func Unreachable(doc *domain.Document) []string {
	if doc == nil {
		return nil
	}
	entries := doc.EntryPoints()
	if len(entries) != 1 {
		return nil
	}

	visited := make(map[string]bool, doc.Len())
	queue := []string{entries[0]}

	for len(queue) > 0 {
		currentID := queue[0]
		queue = queue[1:]

		if visited[currentID] {
			continue
		}
		visited[currentID] = true

		e, ok := doc.Lookup(currentID)
		if !ok {
			// Dangling targets are reported by the schema.
			continue
		}
		links := e.EntityLinks()
		for _, port := range links.Ports() {
			if target := links[port]; !visited[target] {
				queue = append(queue, target)
			}
		}
		if ss, ok := e.(domain.SuperState); ok && ss.EntrySubState != "" && !visited[ss.EntrySubState] {
			queue = append(queue, ss.EntrySubState)
		}
	}

	var out []string
	for _, e := range doc.Entities() {
		if id := e.EntityID(); !visited[id] {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
