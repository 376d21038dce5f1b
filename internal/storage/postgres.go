package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/terra-clan/readiness-engine/internal/models"
)

// PostgresStore implements SearchIndex using PostgreSQL full text search
type PostgresStore struct {
	pool *pgxpool.Pool
}

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	DSN          string
	MaxOpenConns int32
	MaxIdleConns int32
	MaxLifetime  time.Duration
}

// NewPostgresStore creates a new PostgreSQL search index
func NewPostgresStore(ctx context.Context, cfg PostgresConfig) (*PostgresStore, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = cfg.MaxOpenConns
	} else {
		poolConfig.MaxConns = 10
	}

	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = cfg.MaxIdleConns
	} else {
		poolConfig.MinConns = 2
	}

	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxLifetime
	} else {
		poolConfig.MaxConnLifetime = 30 * time.Minute
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Pool exposes the underlying pool for migrations
func (r *PostgresStore) Pool() *pgxpool.Pool {
	return r.pool
}

// Ping checks database connectivity
func (r *PostgresStore) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool
func (r *PostgresStore) Close() error {
	r.pool.Close()
	return nil
}

// IndexScenarios upserts scenarios into the search table
func (r *PostgresStore) IndexScenarios(ctx context.Context, items []models.Scenario) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO scenarios (id, role, title, task, requirements, deliverables, criteria, difficulty, context, provenance)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING
	`

	batch := &pgx.Batch{}
	for _, sc := range items {
		requirements, err := json.Marshal(orEmpty(sc.Requirements))
		if err != nil {
			return fmt.Errorf("failed to marshal requirements: %w", err)
		}
		deliverables, err := json.Marshal(orEmpty(sc.Deliverables))
		if err != nil {
			return fmt.Errorf("failed to marshal deliverables: %w", err)
		}
		criteria, err := json.Marshal(orEmpty(sc.Criteria))
		if err != nil {
			return fmt.Errorf("failed to marshal criteria: %w", err)
		}

		batch.Queue(query,
			sc.ID,
			models.NormalizeRole(sc.Role),
			sc.Title,
			sc.Task,
			requirements,
			deliverables,
			criteria,
			sc.Difficulty,
			sc.Context,
			string(sc.Provenance),
		)
	}

	return r.sendBatch(ctx, batch, "scenario")
}

// IndexResources upserts resources keyed by lowercase title and url
func (r *PostgresStore) IndexResources(ctx context.Context, items []models.TrainingResource) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO resources (key, title, type, description, url, skills)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (key) DO NOTHING
	`

	batch := &pgx.Batch{}
	for _, res := range items {
		batch.Queue(query, res.Key(), res.Title, res.Type, res.Description, res.URL, res.Skills)
	}

	return r.sendBatch(ctx, batch, "resource")
}

func (r *PostgresStore) sendBatch(ctx context.Context, batch *pgx.Batch, kind string) error {
	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to index %s: %w", kind, err)
		}
	}
	return nil
}

// SearchScenarios ranks scenarios of a role by how many query words they contain
func (r *PostgresStore) SearchScenarios(ctx context.Context, role, query string, limit int) ([]models.Scenario, error) {
	tsquery := orQuery(query)
	if tsquery == "" || limit <= 0 {
		return nil, nil
	}

	stmt := `
		SELECT id, role, title, task, requirements, deliverables, criteria, difficulty, context, provenance
		FROM scenarios
		WHERE role = $1 AND document @@ to_tsquery('simple', $2)
		ORDER BY ts_rank(document, to_tsquery('simple', $2)) DESC, indexed_at
		LIMIT $3
	`

	rows, err := r.pool.Query(ctx, stmt, models.NormalizeRole(role), tsquery, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search scenarios: %w", err)
	}
	defer rows.Close()

	var out []models.Scenario
	for rows.Next() {
		var (
			sc                                   models.Scenario
			provenance                           string
			requirements, deliverables, criteria []byte
		)
		err := rows.Scan(
			&sc.ID,
			&sc.Role,
			&sc.Title,
			&sc.Task,
			&requirements,
			&deliverables,
			&criteria,
			&sc.Difficulty,
			&sc.Context,
			&provenance,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scenario: %w", err)
		}

		sc.Provenance = models.Provenance(provenance)
		if err := unmarshalLists(
			listColumn{requirements, &sc.Requirements},
			listColumn{deliverables, &sc.Deliverables},
			listColumn{criteria, &sc.Criteria},
		); err != nil {
			return nil, err
		}

		out = append(out, sc)
	}

	return out, rows.Err()
}

// SearchResources returns resources matching any word of any term
func (r *PostgresStore) SearchResources(ctx context.Context, terms []string, limit int) ([]models.TrainingResource, error) {
	tsquery := orQuery(strings.Join(terms, " "))
	if tsquery == "" || limit <= 0 {
		return nil, nil
	}

	stmt := `
		SELECT title, type, description, url, skills
		FROM resources
		WHERE document @@ to_tsquery('simple', $1)
		ORDER BY ts_rank(document, to_tsquery('simple', $1)) DESC, indexed_at
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, stmt, tsquery, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search resources: %w", err)
	}
	defer rows.Close()

	var out []models.TrainingResource
	for rows.Next() {
		var res models.TrainingResource
		if err := rows.Scan(&res.Title, &res.Type, &res.Description, &res.URL, &res.Skills); err != nil {
			return nil, fmt.Errorf("failed to scan resource: %w", err)
		}
		out = append(out, res)
	}

	return out, rows.Err()
}

// Helper functions

// orQuery turns free text into a tsquery matching any of its words
func orQuery(text string) string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]bool, len(words))
	parts := make([]string, 0, len(words))
	for _, w := range words {
		if len(w) < 2 || seen[w] {
			continue
		}
		seen[w] = true
		parts = append(parts, w)
	}
	return strings.Join(parts, " | ")
}

type listColumn struct {
	raw []byte
	dst *[]string
}

func unmarshalLists(cols ...listColumn) error {
	for _, c := range cols {
		if c.raw == nil {
			continue
		}
		if err := json.Unmarshal(c.raw, c.dst); err != nil {
			return fmt.Errorf("failed to unmarshal list column: %w", err)
		}
	}
	return nil
}

func orEmpty(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
