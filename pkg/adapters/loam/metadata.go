package loam

import "github.com/aretw0/statemap/pkg/domain"

// ConfigMetadata is the typed view of a configuration file: the JSON/YAML
// body, or the front matter of a Markdown file whose body is free prose.
// It uses "mapstructure" tags to match standard Frontmatter/YAML keys.
type ConfigMetadata struct {
	// ID overrides the file name as the document id.
	ID          string              `json:"id,omitempty" mapstructure:"id"`
	Description string              `json:"description,omitempty" mapstructure:"description"`
	States      []domain.State      `json:"states" mapstructure:"states"`
	Decisions   []domain.Decision   `json:"decisions" mapstructure:"decisions"`
	SuperStates []domain.SuperState `json:"superStates" mapstructure:"superStates"`
}

// Document converts the metadata into a normalized document.
// A file declaring none of the three collections is an absent document.
func (m ConfigMetadata) Document() *domain.Document {
	if m.States == nil && m.Decisions == nil && m.SuperStates == nil {
		return nil
	}
	doc := &domain.Document{
		States:      m.States,
		Decisions:   m.Decisions,
		SuperStates: m.SuperStates,
	}
	doc = doc.Clone()
	doc.Normalize()
	return doc
}
