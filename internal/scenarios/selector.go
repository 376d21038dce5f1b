// Package scenarios chooses, generates or synthesizes assessment scenarios
// for a role and skill level.
package scenarios

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/terra-clan/readiness-engine/internal/models"
)

// DefaultCount is the number of scenarios returned per selection
const DefaultCount = 3

// Generator produces scenario fields for a role and a task context
type Generator interface {
	GenerateScenario(ctx context.Context, role, taskContext string) (models.ScenarioDraft, error)
}

// Searcher finds scenarios similar to a query
type Searcher interface {
	SearchScenarios(ctx context.Context, role, query string, limit int) ([]models.Scenario, error)
}

// compatibleRoles lists the catalog roles accepted for a requested role
var compatibleRoles = map[string][]string{
	"frontend":     {"frontend", "fullstack", "web"},
	"backend":      {"backend", "fullstack", "api"},
	"fullstack":    {"fullstack", "frontend", "backend", "web"},
	"data_analyst": {"data_analyst", "data_scientist", "analytics", "data"},
}

// obsoleteTechnologies are excluded from selections whenever possible
var obsoleteTechnologies = []string{
	"adobe flash", "flash player", "actionscript", "silverlight",
	"internet explorer 6", "angularjs", "jquery mobile", "coffeescript",
	"python 2", "php 5", "bower", "visual basic 6",
}

// defaultContexts seed generation when no similar scenario is found
var defaultContexts = map[string][]string{
	"frontend":     {"Build a responsive web application component", "Create an accessible form with client-side validation", "Implement a data-driven dashboard view"},
	"backend":      {"Design and implement a REST API", "Design a relational schema for a growing product", "Build a background job processor"},
	"data_analyst": {"Analyze business data and create insights", "Build a KPI report from raw sales data", "Investigate a drop in user retention"},
	"fullstack":    {"Create a full-stack web application", "Add authenticated user profiles to an application", "Build a real-time notification feature"},
}

const genericContext = "Create a technical solution"

// Option configures a Selector
type Option func(*Selector)

// WithGenerator enables on-demand generation
func WithGenerator(g Generator) Option {
	return func(s *Selector) { s.generator = g }
}

// WithSearcher seeds generation with similar scenarios
func WithSearcher(sr Searcher) Option {
	return func(s *Selector) { s.searcher = sr }
}

// WithCount overrides the selection size
func WithCount(n int) Option {
	return func(s *Selector) {
		if n > 0 {
			s.count = n
		}
	}
}

// Selector picks scenarios from a catalog snapshot
type Selector struct {
	generator Generator
	searcher  Searcher
	count     int
}

// NewSelector creates a selector
func NewSelector(opts ...Option) *Selector {
	s := &Selector{count: DefaultCount}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Count returns the selection size
func (s *Selector) Count() int {
	return s.count
}

// Select returns exactly Count scenarios. It never fails: if anything goes
// wrong a fresh set of fallback scenarios is returned.
func (s *Selector) Select(ctx context.Context, role, level string, catalog []models.Scenario) (out []models.Scenario) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("scenario selection panicked, using fallbacks", "role", role, "panic", r)
			out = Fallbacks(role, level, 1, s.count)
		}
	}()

	role = models.NormalizeRole(role)
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		level = models.DefaultDifficulty
	}

	candidates := s.fromCatalog(role, level, catalog)
	if missing := s.count - len(candidates); missing > 0 && s.generator != nil {
		candidates = append(candidates, s.generate(ctx, role, level, missing)...)
	}
	for n := len(candidates) + 1; len(candidates) < s.count; n++ {
		candidates = append(candidates, fallback(role, level, n))
	}

	kept := make([]models.Scenario, 0, len(candidates))
	for _, sc := range candidates {
		if !obsolete(sc) {
			kept = append(kept, sc)
		}
	}
	if len(kept) < s.count {
		if len(kept) < len(candidates) {
			slog.Debug("obsolete filter would shrink selection, keeping unfiltered set", "role", role, "kept", len(kept))
		}
		kept = candidates
	}

	out = kept[:s.count]
	slog.Info("scenarios selected", "role", role, "level", level, "count", len(out), "catalog", len(catalog))
	return out
}

// fromCatalog returns every matching entry, topped up with other catalog
// entries when fewer than count match.
func (s *Selector) fromCatalog(role, level string, catalog []models.Scenario) []models.Scenario {
	var matched, rest []models.Scenario
	for _, sc := range catalog {
		if roleCompatible(role, sc.Role) && difficultyMatches(level, sc.Difficulty) {
			matched = append(matched, sc.Clone())
		} else {
			rest = append(rest, sc)
		}
	}

	for _, sc := range rest {
		if len(matched) >= s.count {
			break
		}
		matched = append(matched, sc.Clone())
	}
	return matched
}

// generate asks the generator for up to n scenarios, cycling task contexts
func (s *Selector) generate(ctx context.Context, role, level string, n int) []models.Scenario {
	contexts := s.contexts(ctx, role)

	var out []models.Scenario
	for i := 0; i < n; i++ {
		taskContext := contexts[i%len(contexts)]
		draft, err := s.generator.GenerateScenario(ctx, role, taskContext)
		if err != nil {
			slog.Warn("scenario generation failed", "role", role, "error", err)
			continue
		}
		if strings.TrimSpace(draft.Task) == "" {
			slog.Warn("scenario generation returned empty task", "role", role)
			continue
		}
		out = append(out, fromDraft(draft, role, level, taskContext))
	}
	return out
}

func (s *Selector) contexts(ctx context.Context, role string) []string {
	var contexts []string
	if s.searcher != nil {
		similar, err := s.searcher.SearchScenarios(ctx, role, fmt.Sprintf("practical %s skills assessment", role), s.count)
		if err != nil {
			slog.Warn("scenario search failed", "role", role, "error", err)
		}
		for _, sc := range similar {
			if sc.Task != "" {
				contexts = append(contexts, "Similar scenario: "+sc.Task)
			}
		}
	}

	if defaults, ok := defaultContexts[role]; ok {
		return append(contexts, defaults...)
	}
	return append(contexts, genericContext)
}

func fromDraft(d models.ScenarioDraft, role, level, taskContext string) models.Scenario {
	return models.Scenario{
		ID:           uuid.NewString(),
		Role:         role,
		Title:        truncate(strings.TrimSpace(d.Task), 100),
		Task:         strings.TrimSpace(d.Task),
		Requirements: d.Requirements,
		Deliverables: d.Deliverables,
		Criteria:     d.Criteria,
		Difficulty:   level,
		Context:      taskContext,
		Provenance:   models.ProvenanceGenerated,
	}
}

func roleCompatible(requested, candidate string) bool {
	candidate = models.NormalizeRole(candidate)
	if candidate == requested {
		return true
	}
	for _, r := range compatibleRoles[requested] {
		if r == candidate {
			return true
		}
	}
	return false
}

func difficultyMatches(level, difficulty string) bool {
	return level == models.DefaultDifficulty || strings.EqualFold(strings.TrimSpace(difficulty), level)
}

func obsolete(sc models.Scenario) bool {
	text := strings.ToLower(sc.Task + "\n" + sc.Context)
	for _, kw := range obsoleteTechnologies {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
