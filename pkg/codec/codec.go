// Package codec reads and writes state configuration documents as JSON or YAML.
//
// An absent document (a graph without an entry point) is written as "{}" and
// reads back as nil. Unknown fields are rejected so that typos in a
// hand-edited document surface instead of being dropped.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/aretw0/statemap/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Format names a serialization format.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// ErrUnknownFormat is returned for formats other than JSON and YAML.
var ErrUnknownFormat = errors.New("unknown format")

// ParseFormat accepts "json", "yaml" and "yml" in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatFromPath guesses the format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	}
	return JSON
}

// Encode renders doc in the given format. JSON output is indented.
func Encode(doc *domain.Document, f Format) ([]byte, error) {
	switch f {
	case JSON, "":
		if doc == nil {
			return []byte("{}\n"), nil
		}
		out := doc.Clone()
		out.Normalize()
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case YAML:
		if doc == nil {
			return []byte("{}\n"), nil
		}
		out := doc.Clone()
		out.Normalize()
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// Decode parses a document in the given format. Empty input, null and a
// document without any of the three collections decode to nil.
func Decode(data []byte, f Format) (*domain.Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var doc domain.Document
	switch f {
	case JSON, "":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	case YAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}

	if doc.States == nil && doc.Decisions == nil && doc.SuperStates == nil {
		return nil, nil
	}
	doc.Normalize()
	return &doc, nil
}

// Sniff decodes data, choosing JSON when it starts with '{' and YAML otherwise.
func Sniff(data []byte) (*domain.Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return Decode(data, JSON)
	}
	return Decode(data, YAML)
}
