package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventCommit       EventType = "commit"
	EventLoad         EventType = "load"
	EventLoadRejected EventType = "load_rejected"
	EventClear        EventType = "clear"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	DiagramID string    `json:"diagram_id,omitempty"`
}

// CommitEvent is emitted after the graph has been projected.
// Document is nil when the graph has no entry point.
type CommitEvent struct {
	EventBase
	Document *Document     `json:"document,omitempty"`
	Diff     *DocumentDiff `json:"diff,omitempty"`
}

// LoadEvent is emitted after a document was hydrated into the graph, or
// rejected.
type LoadEvent struct {
	EventBase
	Nodes  int      `json:"nodes"`
	Links  int      `json:"links"`
	Errors []string `json:"errors,omitempty"`
}

// LifecycleHooks defines callbacks for editor observability.
type LifecycleHooks struct {
	OnCommit func(context.Context, *CommitEvent)
	OnLoad   func(context.Context, *LoadEvent)
}
