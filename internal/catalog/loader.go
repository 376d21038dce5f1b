// Package catalog holds ingested scenarios and training resources for the
// life of the process, and loads seed entries from YAML files.
package catalog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/terra-clan/readiness-engine/internal/models"
)

// seedFile is the YAML layout of a catalog seed file
type seedFile struct {
	Scenarios []scenarioEntry           `yaml:"scenarios"`
	Resources []models.TrainingResource `yaml:"resources"`
}

// scenarioEntry accepts list fields either as YAML lists or comma strings
type scenarioEntry struct {
	ID           string    `yaml:"id"`
	Role         string    `yaml:"role"`
	Title        string    `yaml:"title"`
	Task         string    `yaml:"task"`
	Requirements listField `yaml:"requirements"`
	Deliverables listField `yaml:"deliverables"`
	Criteria     listField `yaml:"criteria"`
	Difficulty   string    `yaml:"difficulty"`
	Context      string    `yaml:"context"`
}

type listField []string

func (l *listField) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*l = models.SplitList(node.Value)
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := node.Decode(&items); err != nil {
			return err
		}
		*l = items
		return nil
	}
	return fmt.Errorf("line %d: expected list or string", node.Line)
}

// LoadFromDir loads every *.yaml / *.yml seed file in dir (and one level
// of subdirectories). A missing directory is not an error.
func (s *Store) LoadFromDir(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		slog.Info("catalog directory not found, starting empty", "dir", dir)
		return nil
	}

	slog.Info("loading catalog from directory", "dir", dir)

	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml", "*/*.yaml", "*/*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return fmt.Errorf("failed to glob %s: %w", pattern, err)
		}
		files = append(files, matches...)
	}

	loaded := 0
	for _, file := range files {
		if err := s.LoadFromFile(file); err != nil {
			slog.Warn("failed to load catalog file", "file", file, "error", err)
			continue
		}
		loaded++
	}

	slog.Info("catalog files loaded", "count", loaded, "total_files", len(files))
	return nil
}

// LoadFromFile loads a single seed file
func (s *Store) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	if len(seed.Scenarios) == 0 && len(seed.Resources) == 0 {
		return fmt.Errorf("no scenarios or resources in %s", filepath.Base(path))
	}

	scenarios := make([]models.Scenario, 0, len(seed.Scenarios))
	for i, e := range seed.Scenarios {
		if e.Title == "" && e.Task == "" {
			return fmt.Errorf("scenario %d: title or task is required", i)
		}
		scenarios = append(scenarios, models.Scenario{
			ID:           e.ID,
			Role:         e.Role,
			Title:        e.Title,
			Task:         e.Task,
			Requirements: e.Requirements,
			Deliverables: e.Deliverables,
			Criteria:     e.Criteria,
			Difficulty:   e.Difficulty,
			Context:      e.Context,
			Provenance:   models.ProvenanceCatalog,
		})
	}

	if len(scenarios) > 0 {
		s.AddScenarios(scenarios)
	}
	if len(seed.Resources) > 0 {
		s.AddResources(seed.Resources)
	}
	return nil
}
