package domain

import "errors"

// ErrNoEntryPoint is reported when a graph has no Start node and therefore
// projects to an absent document.
var ErrNoEntryPoint = errors.New("no entry point")

// ErrDiagramNotFound is returned when a diagram ID cannot be found in the store.
var ErrDiagramNotFound = errors.New("diagram not found")

// ErrDuplicateKey is returned when a node key is already present in a graph.
var ErrDuplicateKey = errors.New("duplicate node key")

// ErrNodeNotFound is returned when a node key is not present in a graph.
var ErrNodeNotFound = errors.New("node not found")

// ErrEmptyKey is returned when a node or link is missing its key.
var ErrEmptyKey = errors.New("empty node key")

// ErrEmptyDiagramID is returned when a diagram operation is given no id.
var ErrEmptyDiagramID = errors.New("empty diagram id")

// ErrConfigNotFound is returned when a loader has no document with the given id.
var ErrConfigNotFound = errors.New("config not found")
