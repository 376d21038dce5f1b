package catalog

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/terra-clan/readiness-engine/internal/models"
)

// Store is the append-only, process-lifetime catalog of scenarios and
// training resources. Writers are serialized; readers get snapshots.
type Store struct {
	mu        sync.RWMutex
	scenarios []models.Scenario
	byID      map[string]int
	resources []models.TrainingResource
}

// NewStore creates an empty catalog
func NewStore() *Store {
	return &Store{
		byID: make(map[string]int),
	}
}

// AddScenarios appends scenarios, assigning ids and ingestion defaults.
// Entries whose id is already present are skipped. Returns the stored entries.
func (s *Store) AddScenarios(items []models.Scenario) []models.Scenario {
	added := make([]models.Scenario, 0, len(items))

	s.mu.Lock()
	for _, sc := range items {
		sc = sc.Clone()
		sc.Normalize()
		if sc.ID == "" {
			sc.ID = uuid.NewString()
		}
		if _, exists := s.byID[sc.ID]; exists {
			continue
		}
		s.byID[sc.ID] = len(s.scenarios)
		s.scenarios = append(s.scenarios, sc)
		added = append(added, sc)
	}
	total := len(s.scenarios)
	s.mu.Unlock()

	slog.Info("scenarios added to catalog",
		"count", len(added),
		"total", total,
		"sample", sampleTitles(added, func(sc models.Scenario) string { return sc.Title }),
	)
	return added
}

// AddResources appends training resources
func (s *Store) AddResources(items []models.TrainingResource) []models.TrainingResource {
	added := make([]models.TrainingResource, 0, len(items))
	for _, r := range items {
		r.Normalize()
		added = append(added, r)
	}

	s.mu.Lock()
	s.resources = append(s.resources, added...)
	total := len(s.resources)
	s.mu.Unlock()

	slog.Info("training resources added to catalog",
		"count", len(added),
		"total", total,
		"sample", sampleTitles(added, func(r models.TrainingResource) string { return r.Title }),
	)
	return added
}

// Scenarios returns a snapshot of all scenarios in insertion order
func (s *Store) Scenarios() []models.Scenario {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Scenario, len(s.scenarios))
	copy(out, s.scenarios)
	return out
}

// Resources returns a snapshot of all training resources
func (s *Store) Resources() []models.TrainingResource {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.TrainingResource, len(s.resources))
	copy(out, s.resources)
	return out
}

// Scenario looks up a scenario by id
func (s *Store) Scenario(id string) (models.Scenario, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[id]
	if !ok {
		return models.Scenario{}, false
	}
	return s.scenarios[i].Clone(), true
}

// Stats summarizes catalog contents
type Stats struct {
	Scenarios     int            `json:"scenarios"`
	Resources     int            `json:"resources"`
	ScenarioRoles map[string]int `json:"scenario_roles"`
}

// Stats returns catalog counts
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	roles := make(map[string]int)
	for _, sc := range s.scenarios {
		roles[models.NormalizeRole(sc.Role)]++
	}
	return Stats{
		Scenarios:     len(s.scenarios),
		Resources:     len(s.resources),
		ScenarioRoles: roles,
	}
}

func sampleTitles[T any](items []T, title func(T) string) []string {
	n := min(2, len(items))
	out := make([]string, 0, n)
	for _, item := range items[:n] {
		out = append(out, title(item))
	}
	return out
}
