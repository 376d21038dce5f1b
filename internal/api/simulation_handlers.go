package api

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/terra-clan/readiness-engine/internal/models"
)

// SelectRequest asks for scenarios for a role and level
type SelectRequest struct {
	Role       string `json:"role"`
	SkillLevel string `json:"skill_level"`
}

// SimulationRequest is the JSON form of a simulation submission
type SimulationRequest struct {
	Student    models.StudentProfile `json:"student"`
	Submission models.Submission     `json:"submission"`
}

const maxMultipartMemory = 8 << 20

func (s *Server) handleSelectScenarios(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if err := decodeJSON(r, &req); err != nil {
		respondValidation(w, r, err)
		return
	}

	if strings.TrimSpace(req.Role) == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "role is required")
		return
	}
	if strings.TrimSpace(req.SkillLevel) == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "skill_level is required")
		return
	}

	scenarios := s.engine.SelectScenarios(r.Context(), req.Role, req.SkillLevel)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"scenarios": scenarios,
		"count":     len(scenarios),
	})
}

func (s *Server) handleRunSimulation(w http.ResponseWriter, r *http.Request) {
	req, err := readSimulationRequest(r)
	if err != nil {
		respondValidation(w, r, err)
		return
	}

	result, err := s.engine.RunSimulation(r.Context(), req.Student, req.Submission)
	if err != nil {
		respondValidation(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// readSimulationRequest accepts either a JSON body or a multipart form
func readSimulationRequest(r *http.Request) (SimulationRequest, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var req SimulationRequest
		if err := decodeJSON(r, &req); err != nil {
			return SimulationRequest{}, err
		}
		return req, nil
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return SimulationRequest{}, &models.ValidationError{Message: "invalid multipart form"}
	}

	var req SimulationRequest
	if raw := r.FormValue("student_data"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Student); err != nil {
			return SimulationRequest{}, &models.ValidationError{Field: "student_data", Message: "invalid JSON"}
		}
	}

	req.Submission = models.Submission{
		StudentID:   req.Student.ID,
		ScenarioID:  r.FormValue("scenario_id"),
		Content:     r.FormValue("response_content"),
		SubmittedAt: time.Now().UTC(),
	}

	for _, fh := range r.MultipartForm.File["files"] {
		f, err := fh.Open()
		if err != nil {
			return SimulationRequest{}, fmt.Errorf("open attachment %s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return SimulationRequest{}, fmt.Errorf("read attachment %s: %w", fh.Filename, err)
		}
		req.Submission.Files = append(req.Submission.Files, models.AttachedFile{
			Name:    fh.Filename,
			Content: string(data),
		})
	}

	return req, nil
}
