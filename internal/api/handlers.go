package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/terra-clan/readiness-engine/internal/models"
)

// Response helpers

type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: false,
		Error: &apiError{
			Code:    code,
			Message: message,
		},
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// respondValidation reports a ValidationError as 400, anything else as 500
func respondValidation(w http.ResponseWriter, r *http.Request, err error) {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		respondError(w, http.StatusBadRequest, "validation_error", verr.Error())
		return
	}
	LoggerFromContext(r.Context()).Error("request failed", "error", err)
	respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return &models.ValidationError{Message: "invalid JSON body"}
	}
	return nil
}

// Health handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	results := s.registry.HealthCheckAll(r.Context())

	failing := make(map[string]string)
	for name, err := range results {
		if err != nil {
			failing[name] = err.Error()
		}
	}
	if len(failing) > 0 {
		LoggerFromContext(r.Context()).Warn("readiness check failed", "services", failing)
		respondError(w, http.StatusServiceUnavailable, "not_ready", "service not ready")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ready",
		"services": s.registry.List(),
	})
}

// Debug handlers

func (s *Server) handleDebugStatus(w http.ResponseWriter, r *http.Request) {
	health := make(map[string]string)
	for name, err := range s.registry.HealthCheckAll(r.Context()) {
		if err != nil {
			health[name] = err.Error()
		} else {
			health[name] = "ok"
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "running",
		"catalog":        s.engine.Catalog().Stats(),
		"services":       health,
		"uptime_seconds": int(time.Since(s.startedAt).Seconds()),
	})
}

func (s *Server) handleDebugScenarios(w http.ResponseWriter, r *http.Request) {
	scenarios := s.engine.Catalog().Scenarios()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"scenarios": scenarios,
		"count":     len(scenarios),
	})
}

func (s *Server) handleDebugResources(w http.ResponseWriter, r *http.Request) {
	resources := s.engine.Catalog().Resources()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"resources": resources,
		"count":     len(resources),
	})
}
