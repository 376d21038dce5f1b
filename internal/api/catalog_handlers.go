package api

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/terra-clan/readiness-engine/internal/ingestion"
	"github.com/terra-clan/readiness-engine/internal/models"
)

func (s *Server) handleAddScenarios(w http.ResponseWriter, r *http.Request) {
	var items []models.Scenario
	if err := decodeJSON(r, &items); err != nil {
		respondValidation(w, r, err)
		return
	}
	if len(items) == 0 {
		respondError(w, http.StatusBadRequest, "validation_error", "at least one scenario is required")
		return
	}
	for i := range items {
		items[i].Provenance = models.ProvenanceCatalog
	}

	s.respondIngested(w, r, "scenarios", len(s.engine.AddScenarios(items)))
}

func (s *Server) handleAddResources(w http.ResponseWriter, r *http.Request) {
	var items []models.TrainingResource
	if err := decodeJSON(r, &items); err != nil {
		respondValidation(w, r, err)
		return
	}
	if len(items) == 0 {
		respondError(w, http.StatusBadRequest, "validation_error", "at least one resource is required")
		return
	}

	s.respondIngested(w, r, "resources", len(s.engine.AddResources(items)))
}

func (s *Server) handleUploadScenarios(w http.ResponseWriter, r *http.Request) {
	body, name, ok := csvUpload(w, r)
	if !ok {
		return
	}
	defer body.Close()

	items, err := ingestion.ParseScenariosCSV(body)
	if err != nil {
		respondUploadError(w, name, err)
		return
	}
	if len(items) == 0 {
		respondError(w, http.StatusBadRequest, "empty_file", "no scenario rows found")
		return
	}

	s.respondIngested(w, r, "scenarios", len(s.engine.AddScenarios(items)))
}

func (s *Server) handleUploadResources(w http.ResponseWriter, r *http.Request) {
	body, name, ok := csvUpload(w, r)
	if !ok {
		return
	}
	defer body.Close()

	items, err := ingestion.ParseResourcesCSV(body)
	if err != nil {
		respondUploadError(w, name, err)
		return
	}
	if len(items) == 0 {
		respondError(w, http.StatusBadRequest, "empty_file", "no resource rows found")
		return
	}

	s.respondIngested(w, r, "resources", len(s.engine.AddResources(items)))
}

func (s *Server) respondIngested(w http.ResponseWriter, r *http.Request, kind string, added int) {
	stats := s.engine.Catalog().Stats()
	total := stats.Scenarios
	if kind == "resources" {
		total = stats.Resources
	}

	LoggerFromContext(r.Context()).Info("catalog ingest", "kind", kind, "added", added, "total", total)
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"added": added,
		"total": total,
	})
}

// csvUpload extracts the multipart "file" field and checks its extension
func csvUpload(w http.ResponseWriter, r *http.Request) (io.ReadCloser, string, bool) {
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "multipart field \"file\" is required")
		return nil, "", false
	}
	if !strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
		file.Close()
		respondError(w, http.StatusBadRequest, "invalid_file", "only CSV files are supported")
		return nil, "", false
	}
	return file, header.Filename, true
}

func respondUploadError(w http.ResponseWriter, name string, err error) {
	if errors.Is(err, ingestion.ErrMissingColumn) {
		respondError(w, http.StatusBadRequest, "invalid_file", name+": "+err.Error())
		return
	}
	respondError(w, http.StatusBadRequest, "invalid_file", name+": malformed CSV")
}
