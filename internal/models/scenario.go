package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Provenance records where a scenario came from
type Provenance string

const (
	ProvenanceCatalog   Provenance = "catalog"   // Ingested from an upload or ingestion source
	ProvenanceGenerated Provenance = "generated" // Produced by the generation collaborator
	ProvenanceFallback  Provenance = "fallback"  // Synthesized from a fixed per-role template
)

// DefaultDifficulty is applied when an ingested record leaves difficulty blank
const DefaultDifficulty = "beginner"

// Scenario is a job-task description presented to a learner.
// Scenarios are immutable once created.
type Scenario struct {
	ID           string     `json:"id" yaml:"id"`
	Role         string     `json:"role" yaml:"role"`
	Title        string     `json:"title" yaml:"title"`
	Task         string     `json:"task" yaml:"task"`
	Requirements []string   `json:"requirements" yaml:"requirements"`
	Deliverables []string   `json:"deliverables" yaml:"deliverables"`
	Criteria     []string   `json:"criteria" yaml:"criteria"`
	Difficulty   string     `json:"difficulty" yaml:"difficulty"`
	Context      string     `json:"context" yaml:"context"`
	Provenance   Provenance `json:"provenance" yaml:"-"`
}

// Normalize trims text fields and applies ingestion defaults
func (s *Scenario) Normalize() {
	s.Role = strings.TrimSpace(s.Role)
	s.Title = strings.TrimSpace(s.Title)
	s.Task = strings.TrimSpace(s.Task)
	s.Context = strings.TrimSpace(s.Context)
	s.Difficulty = strings.ToLower(strings.TrimSpace(s.Difficulty))
	if s.Difficulty == "" {
		s.Difficulty = DefaultDifficulty
	}
	if s.Provenance == "" {
		s.Provenance = ProvenanceCatalog
	}
}

// Clone returns a copy that does not share slices with s
func (s Scenario) Clone() Scenario {
	s.Requirements = append([]string(nil), s.Requirements...)
	s.Deliverables = append([]string(nil), s.Deliverables...)
	s.Criteria = append([]string(nil), s.Criteria...)
	return s
}

// SplitList splits a comma separated field into trimmed, non-empty items
func SplitList(field string) []string {
	var items []string
	for _, part := range strings.Split(field, ",") {
		if item := strings.TrimSpace(part); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// List decodes from a JSON array of strings or from a single comma
// separated string
type List []string

// UnmarshalJSON implements json.Unmarshaler
func (l *List) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*l = nil
		return nil
	case len(data) > 0 && data[0] == '"':
		var field string
		if err := json.Unmarshal(data, &field); err != nil {
			return err
		}
		*l = SplitList(field)
		return nil
	}

	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("expected list or string: %w", err)
	}
	*l = items
	return nil
}

// ScenarioDraft is the structured output of a scenario generator
type ScenarioDraft struct {
	Task         string `json:"task"`
	Requirements List   `json:"requirements"`
	Deliverables List   `json:"deliverables"`
	Criteria     List   `json:"criteria"`
}
