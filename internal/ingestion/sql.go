package ingestion

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"sync"

	_ "github.com/lib/pq"

	"github.com/terra-clan/readiness-engine/internal/models"
)

// Source is anything the poller can fetch new catalog entries from
type Source interface {
	Name() string
	Fetch(ctx context.Context) (Batch, error)
}

const (
	selectScenarios = `SELECT id, role, title, task, difficulty, context, requirements, deliverables, criteria
		FROM scenario_source WHERE id > $1 ORDER BY id LIMIT $2`
	selectResources = `SELECT id, title, type, description, url, skills
		FROM resource_source WHERE id > $1 ORDER BY id LIMIT $2`
)

// SQLSource reads rows appended to two staging tables. It remembers the
// highest id it has seen so each row is ingested once per process.
type SQLSource struct {
	db        *sql.DB
	batchSize int

	mu           sync.Mutex
	lastScenario int64
	lastResource int64
}

// OpenSQLSource connects to a PostgreSQL staging database
func OpenSQLSource(dsn string) (*SQLSource, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open ingestion database: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	return NewSQLSource(db, 500), nil
}

// NewSQLSource wraps an existing handle
func NewSQLSource(db *sql.DB, batchSize int) *SQLSource {
	if batchSize <= 0 {
		batchSize = 500
	}
	return &SQLSource{db: db, batchSize: batchSize}
}

// Name implements Source
func (s *SQLSource) Name() string { return "sql" }

// Fetch implements Source
func (s *SQLSource) Fetch(ctx context.Context) (Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	scenarios, lastScenario, err := s.fetchScenarios(ctx)
	if err != nil {
		return Batch{}, err
	}
	resources, lastResource, err := s.fetchResources(ctx)
	if err != nil {
		return Batch{}, err
	}

	s.lastScenario = lastScenario
	s.lastResource = lastResource
	return Batch{Scenarios: scenarios, Resources: resources}, nil
}

func (s *SQLSource) fetchScenarios(ctx context.Context) ([]models.Scenario, int64, error) {
	rows, err := s.db.QueryContext(ctx, selectScenarios, s.lastScenario, s.batchSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query scenarios: %w", err)
	}
	defer rows.Close()

	last := s.lastScenario
	var out []models.Scenario
	for rows.Next() {
		var (
			id                                   int64
			role, title, task                    string
			difficulty, taskContext              sql.NullString
			requirements, deliverables, criteria sql.NullString
		)
		if err := rows.Scan(&id, &role, &title, &task, &difficulty, &taskContext,
			&requirements, &deliverables, &criteria); err != nil {
			return nil, 0, fmt.Errorf("failed to scan scenario: %w", err)
		}

		sc := models.Scenario{
			ID:           "sql-" + strconv.FormatInt(id, 10),
			Role:         role,
			Title:        title,
			Task:         task,
			Difficulty:   difficulty.String,
			Context:      taskContext.String,
			Requirements: models.SplitList(requirements.String),
			Deliverables: models.SplitList(deliverables.String),
			Criteria:     models.SplitList(criteria.String),
		}
		sc.Normalize()
		out = append(out, sc)
		last = max(last, id)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate scenarios: %w", err)
	}
	return out, last, nil
}

func (s *SQLSource) fetchResources(ctx context.Context) ([]models.TrainingResource, int64, error) {
	rows, err := s.db.QueryContext(ctx, selectResources, s.lastResource, s.batchSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query resources: %w", err)
	}
	defer rows.Close()

	last := s.lastResource
	var out []models.TrainingResource
	for rows.Next() {
		var (
			id                             int64
			title                          string
			kind, description, url, skills sql.NullString
		)
		if err := rows.Scan(&id, &title, &kind, &description, &url, &skills); err != nil {
			return nil, 0, fmt.Errorf("failed to scan resource: %w", err)
		}

		res := models.TrainingResource{
			Title:       title,
			Type:        kind.String,
			Description: description.String,
			URL:         url.String,
			Skills:      skills.String,
		}
		res.Normalize()
		out = append(out, res)
		last = max(last, id)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate resources: %w", err)
	}
	return out, last, nil
}

// Close releases the database handle
func (s *SQLSource) Close() error {
	return s.db.Close()
}
