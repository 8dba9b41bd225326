package domain

import (
	"reflect"
	"sort"
)

// DocumentDiff lists the entity ids that changed between two projections.
// It is designed to be serialized to JSON so a client can highlight what a
// commit touched.
type DocumentDiff struct {
	Added   []string `json:"added,omitempty"`
	Removed []string `json:"removed,omitempty"`
	Changed []string `json:"changed,omitempty"`

	// EntryPoint is set when the entry state moved.
	EntryPoint *string `json:"entry_point,omitempty"`
}

// Diff calculates the difference between oldDoc and newDoc.
// A nil document is treated as empty, so Diff(nil, doc) reports every entity
// of doc as added. It returns nil when nothing changed.
func Diff(oldDoc, newDoc *Document) *DocumentDiff {
	oldIdx := indexEntities(oldDoc)
	newIdx := indexEntities(newDoc)

	diff := &DocumentDiff{}
	for id, e := range newIdx {
		prev, ok := oldIdx[id]
		switch {
		case !ok:
			diff.Added = append(diff.Added, id)
		case prev.EntityKind() != e.EntityKind() || !reflect.DeepEqual(normalizeEntity(prev), normalizeEntity(e)):
			diff.Changed = append(diff.Changed, id)
		}
	}
	for id := range oldIdx {
		if _, ok := newIdx[id]; !ok {
			diff.Removed = append(diff.Removed, id)
		}
	}
	sort.Strings(diff.Added)
	sort.Strings(diff.Removed)
	sort.Strings(diff.Changed)

	oldEntry := entryOf(oldDoc)
	newEntry := entryOf(newDoc)
	if oldEntry != newEntry {
		diff.EntryPoint = &newEntry
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// IsEmpty checks if the diff contains any change.
func (d *DocumentDiff) IsEmpty() bool {
	return len(d.Added) == 0 &&
		len(d.Removed) == 0 &&
		len(d.Changed) == 0 &&
		d.EntryPoint == nil
}

func indexEntities(doc *Document) map[string]Entity {
	idx := make(map[string]Entity)
	if doc == nil {
		return idx
	}
	for _, e := range doc.Entities() {
		idx[e.EntityID()] = e
	}
	return idx
}

// normalizeEntity makes nil and empty link maps compare equal.
func normalizeEntity(e Entity) Entity {
	switch v := e.(type) {
	case State:
		v.Links = v.Links.Clone()
		return v
	case Decision:
		v.Links = v.Links.Clone()
		return v
	case SuperState:
		v.Links = v.Links.Clone()
		return v
	}
	return e
}

func entryOf(doc *Document) string {
	if doc == nil {
		return ""
	}
	entries := doc.EntryPoints()
	if len(entries) == 0 {
		return ""
	}
	return entries[0]
}
