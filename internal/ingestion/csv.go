// Package ingestion turns external tabular data into catalog entries and
// polls configured sources on a schedule.
package ingestion

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/terra-clan/readiness-engine/internal/models"
)

// ErrMissingColumn is returned when a required header is absent
var ErrMissingColumn = errors.New("missing required column")

// Batch is one fetch worth of new catalog entries
type Batch struct {
	Scenarios []models.Scenario
	Resources []models.TrainingResource
}

// Empty reports whether the batch carries nothing
func (b Batch) Empty() bool {
	return len(b.Scenarios) == 0 && len(b.Resources) == 0
}

// ParseScenariosCSV reads scenario rows. The role, title and task columns are
// required; list columns are comma separated within the cell.
func ParseScenariosCSV(r io.Reader) ([]models.Scenario, error) {
	rows, err := readRows(r, "role", "title", "task")
	if err != nil {
		return nil, err
	}

	out := make([]models.Scenario, 0, len(rows))
	for _, row := range rows {
		sc := models.Scenario{
			ID:           row["id"],
			Role:         row["role"],
			Title:        row["title"],
			Task:         row["task"],
			Difficulty:   row["difficulty"],
			Context:      row["context"],
			Requirements: models.SplitList(row["requirements"]),
			Deliverables: models.SplitList(row["deliverables"]),
			Criteria:     models.SplitList(row["criteria"]),
		}
		sc.Normalize()
		out = append(out, sc)
	}
	return out, nil
}

// ParseResourcesCSV reads training resource rows. Only title is required.
func ParseResourcesCSV(r io.Reader) ([]models.TrainingResource, error) {
	rows, err := readRows(r, "title")
	if err != nil {
		return nil, err
	}

	out := make([]models.TrainingResource, 0, len(rows))
	for _, row := range rows {
		res := models.TrainingResource{
			Title:       row["title"],
			Type:        row["type"],
			Description: row["description"],
			URL:         row["url"],
			Skills:      row["skills"],
		}
		res.Normalize()
		out = append(out, res)
	}
	return out, nil
}

// readRows maps each record to its lowercased header names
func readRows(r io.Reader, required ...string) ([]map[string]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		index[name] = i
	}
	for _, name := range required {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	var rows []map[string]string
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv line %d: %w", line, err)
		}

		row := make(map[string]string, len(index))
		blank := true
		for name, i := range index {
			if i < len(record) {
				v := strings.TrimSpace(record[i])
				row[name] = v
				if v != "" {
					blank = false
				}
			}
		}
		if !blank {
			rows = append(rows, row)
		}
	}
	return rows, nil
}
