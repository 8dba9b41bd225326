package layout

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/statemap/pkg/domain"
	"github.com/aretw0/statemap/pkg/ports"
	"github.com/mitchellh/mapstructure"
)

const (
	// ModelClass is written into every encoded model.
	ModelClass = "GraphLinksModel"
	// DefaultPortProperty is the link property holding the source port.
	DefaultPortProperty = "fromPort"
)

// ErrUnsupportedModel is returned for models other than a GraphLinksModel.
var ErrUnsupportedModel = errors.New("unsupported model class")

// Model mirrors the widget's JSON document.
type Model struct {
	Class                  string           `json:"class" mapstructure:"class"`
	LinkFromPortIDProperty string           `json:"linkFromPortIdProperty" mapstructure:"linkFromPortIdProperty"`
	NodeDataArray          []map[string]any `json:"nodeDataArray" mapstructure:"nodeDataArray"`
	LinkDataArray          []map[string]any `json:"linkDataArray" mapstructure:"linkDataArray"`
}

type nodeRecord struct {
	Key      string         `mapstructure:"key"`
	Category string         `mapstructure:"category"`
	Rest     map[string]any `mapstructure:",remain"`
}

type linkRecord struct {
	From string `mapstructure:"from"`
	To   string `mapstructure:"to"`
}

// Parse decodes a model document. An empty input yields an empty model.
func Parse(data []byte) (*Model, error) {
	m := &Model{Class: ModelClass, LinkFromPortIDProperty: DefaultPortProperty}
	if len(strings.TrimSpace(string(data))) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	class := strings.TrimPrefix(m.Class, "go.")
	if class != "" && class != ModelClass {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedModel, m.Class)
	}
	if m.LinkFromPortIDProperty == "" {
		m.LinkFromPortIDProperty = DefaultPortProperty
	}
	return m, nil
}

// Graph converts the model into a graph, keeping array order.
func (m *Model) Graph() (*domain.Graph, error) {
	nodes := make([]domain.Node, 0, len(m.NodeDataArray))
	for i, raw := range m.NodeDataArray {
		var rec nodeRecord
		if err := decode(raw, &rec); err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}
		node := domain.Node{
			Key:      rec.Key,
			Category: domain.Category(rec.Category),
			Attrs:    rec.Rest,
		}
		if node.Attrs == nil {
			node.Attrs = make(map[string]any)
		}
		nodes = append(nodes, node)
	}

	links := make([]domain.Link, 0, len(m.LinkDataArray))
	for i, raw := range m.LinkDataArray {
		var rec linkRecord
		if err := decode(raw, &rec); err != nil {
			return nil, fmt.Errorf("link %d: %w", i, err)
		}
		port := ""
		if v, ok := raw[m.portProperty()]; ok && v != nil {
			port = fmt.Sprint(v)
		}
		links = append(links, domain.NewLink(rec.From, port, rec.To))
	}

	g := domain.NewGraph()
	if err := g.Replace(nodes, links); err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}
	return g, nil
}

func (m *Model) portProperty() string {
	if m.LinkFromPortIDProperty == "" {
		return DefaultPortProperty
	}
	return m.LinkFromPortIDProperty
}

// FromGraph builds a model from g. Links are listed node by node, in the
// order each node's links were drawn.
func FromGraph(g ports.GraphView) *Model {
	m := &Model{
		Class:                  ModelClass,
		LinkFromPortIDProperty: DefaultPortProperty,
		NodeDataArray:          []map[string]any{},
		LinkDataArray:          []map[string]any{},
	}
	for _, n := range g.Nodes() {
		data := make(map[string]any, len(n.Attrs)+2)
		for k, v := range n.Attrs {
			data[k] = v
		}
		data["key"] = n.Key
		data["category"] = string(n.Category)
		m.NodeDataArray = append(m.NodeDataArray, data)

		for _, l := range g.LinksOutOf(n.Key) {
			m.LinkDataArray = append(m.LinkDataArray, map[string]any{
				"from":              l.From,
				"to":                l.To,
				DefaultPortProperty: l.FromPort,
			})
		}
	}
	return m
}

// Decode parses a model document straight into a graph.
func Decode(data []byte) (*domain.Graph, error) {
	m, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return m.Graph()
}

// Encode renders g as an indented model document.
func Encode(g ports.GraphView) ([]byte, error) {
	return json.MarshalIndent(FromGraph(g), "", "  ")
}

func decode(input map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}
