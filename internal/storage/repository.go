package storage

import (
	"context"
	"errors"

	"github.com/terra-clan/readiness-engine/internal/models"
)

// ErrNotFound is returned when a lookup has no match
var ErrNotFound = errors.New("not found")

// SearchIndex persists catalog entries for text search
type SearchIndex interface {
	// Scenarios
	IndexScenarios(ctx context.Context, items []models.Scenario) error
	SearchScenarios(ctx context.Context, role, query string, limit int) ([]models.Scenario, error)

	// Resources
	IndexResources(ctx context.Context, items []models.TrainingResource) error
	SearchResources(ctx context.Context, terms []string, limit int) ([]models.TrainingResource, error)

	// Health
	Ping(ctx context.Context) error
	Close() error
}

// IssuedCache remembers scenarios handed out by selection so a later
// submission can resolve them by id
type IssuedCache interface {
	Put(ctx context.Context, sc models.Scenario) error
	Get(ctx context.Context, id string) (models.Scenario, error)
	Ping(ctx context.Context) error
	Close() error
}
