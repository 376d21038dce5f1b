// Package simulator owns the catalog for the process lifetime and runs the
// full readiness pipeline for one submission at a time.
package simulator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/terra-clan/readiness-engine/internal/catalog"
	"github.com/terra-clan/readiness-engine/internal/events"
	"github.com/terra-clan/readiness-engine/internal/gaps"
	"github.com/terra-clan/readiness-engine/internal/models"
	"github.com/terra-clan/readiness-engine/internal/scenarios"
	"github.com/terra-clan/readiness-engine/internal/storage"
	"github.com/terra-clan/readiness-engine/internal/training"
)

// Assessor scores a response and proposes gaps using an external model
type Assessor interface {
	Evaluate(ctx context.Context, sc models.Scenario, content string, category models.Category) (models.Evaluation, error)
	SuggestGaps(ctx context.Context, ev models.Evaluation, p models.ContentProfile) (gaps.Suggestions, error)
}

const (
	scenarioSearchLimit = 3
	resourceSearchLimit = 8
	indexTimeout        = 10 * time.Second
)

// Option configures an Engine
type Option func(*Engine)

// WithGenerator enables scenario generation during selection
func WithGenerator(g scenarios.Generator) Option {
	return func(e *Engine) { e.generator = g }
}

// WithAssessor enables the model-assisted scoring path
func WithAssessor(a Assessor) Option {
	return func(e *Engine) { e.assessor = a }
}

// WithSearchIndex mirrors ingested entries into idx and searches it
// during selection and resource matching
func WithSearchIndex(idx storage.SearchIndex) Option {
	return func(e *Engine) { e.index = idx }
}

// WithIssuedCache overrides the in-memory issued-scenario cache
func WithIssuedCache(c storage.IssuedCache) Option {
	return func(e *Engine) { e.issued = c }
}

// WithPublisher sends completed results to p
func WithPublisher(p events.Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

// WithThresholds sets the low-score gap thresholds for each scoring path
func WithThresholds(heuristic, assisted int) Option {
	return func(e *Engine) { e.diagnoser = gaps.NewDiagnoser(heuristic, assisted) }
}

// WithEstimator overrides the learning path duration estimator
func WithEstimator(est training.Estimator) Option {
	return func(e *Engine) { e.builder = training.NewBuilder(est) }
}

// Engine runs simulations against its catalog
type Engine struct {
	catalog   *catalog.Store
	selector  *scenarios.Selector
	diagnoser *gaps.Diagnoser
	builder   *training.Builder

	generator scenarios.Generator
	assessor  Assessor
	index     storage.SearchIndex
	issued    storage.IssuedCache
	publisher events.Publisher
}

// New creates an engine over store. A nil store starts empty.
func New(store *catalog.Store, opts ...Option) *Engine {
	if store == nil {
		store = catalog.NewStore()
	}
	e := &Engine{
		catalog:   store,
		diagnoser: gaps.NewDiagnoser(gaps.DefaultHeuristicThreshold, gaps.DefaultAssistedThreshold),
		builder:   training.NewBuilder(nil),
		publisher: events.Nop{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.issued == nil {
		e.issued = storage.NewMemoryCache(24 * time.Hour)
	}

	var selectorOpts []scenarios.Option
	if e.generator != nil {
		selectorOpts = append(selectorOpts, scenarios.WithGenerator(e.generator))
	}
	if e.index != nil {
		selectorOpts = append(selectorOpts, scenarios.WithSearcher(e.index))
	}
	e.selector = scenarios.NewSelector(selectorOpts...)

	return e
}

// Catalog returns the engine's catalog
func (e *Engine) Catalog() *catalog.Store {
	return e.catalog
}

// AddScenarios appends to the catalog and mirrors the accepted entries into
// the search index when one is configured
func (e *Engine) AddScenarios(items []models.Scenario) []models.Scenario {
	added := e.catalog.AddScenarios(items)
	if e.index != nil && len(added) > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), indexTimeout)
		defer cancel()
		if err := e.index.IndexScenarios(ctx, added); err != nil {
			slog.Warn("failed to index scenarios", "count", len(added), "error", err)
		}
	}
	return added
}

// AddResources appends training resources to the catalog
func (e *Engine) AddResources(items []models.TrainingResource) []models.TrainingResource {
	added := e.catalog.AddResources(items)
	if e.index != nil && len(added) > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), indexTimeout)
		defer cancel()
		if err := e.index.IndexResources(ctx, added); err != nil {
			slog.Warn("failed to index resources", "count", len(added), "error", err)
		}
	}
	return added
}

// SelectScenarios returns exactly three scenarios for a role and level.
// Scenarios outside the catalog are remembered so a later submission can
// name them.
func (e *Engine) SelectScenarios(ctx context.Context, role, level string) []models.Scenario {
	selected := e.selector.Select(ctx, role, level, e.catalog.Scenarios())

	for _, sc := range selected {
		if sc.Provenance == models.ProvenanceCatalog {
			continue
		}
		if err := e.issued.Put(ctx, sc); err != nil {
			slog.Warn("failed to remember issued scenario", "scenario_id", sc.ID, "error", err)
		}
	}
	return selected
}

// resolveScenario looks in the catalog, then the issued cache, then falls
// back to a placeholder
func (e *Engine) resolveScenario(ctx context.Context, id string, student models.StudentProfile) models.Scenario {
	if sc, ok := e.catalog.Scenario(id); ok {
		return sc
	}

	sc, err := e.issued.Get(ctx, id)
	if err == nil {
		return sc
	}
	if !errors.Is(err, storage.ErrNotFound) {
		slog.Warn("issued scenario lookup failed", "scenario_id", id, "error", err)
	}

	slog.Info("scenario not found, using placeholder", "scenario_id", id)
	return scenarios.Placeholder(id, student.Role, student.Level())
}

// Close releases configured collaborators
func (e *Engine) Close() error {
	var errs []error
	if err := e.publisher.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := e.issued.Close(); err != nil {
		errs = append(errs, err)
	}
	if e.index != nil {
		if err := e.index.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
