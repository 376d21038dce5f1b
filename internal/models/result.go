package models

import "time"

// ResultStatus represents the outcome of a simulation run
type ResultStatus string

const (
	ResultCompleted ResultStatus = "completed"
	ResultFailed    ResultStatus = "failed" // No scenario could be resolved
)

// AdaptedChallenge is the scenario as presented for the learner's skill level
type AdaptedChallenge struct {
	ScenarioID      string   `json:"scenario_id"`
	AdaptedTask     string   `json:"adapted_task"`
	ComplexityLevel string   `json:"complexity_level"`
	Requirements    []string `json:"requirements"`
	Deliverables    []string `json:"deliverables"`
	Constraints     []string `json:"constraints"`
	TimeLimit       string   `json:"time_limit"`
	FormatType      string   `json:"format_type"`
	Instructions    string   `json:"instructions"`
}

// ResponseSummary describes the submission as the pipeline saw it
type ResponseSummary struct {
	ID          string         `json:"id"`
	StudentID   string         `json:"student_id"`
	Content     string         `json:"content"`
	WordCount   int            `json:"word_count"`
	HasCode     bool           `json:"has_code"`
	Profile     ContentProfile `json:"content_stats"`
	SubmittedAt time.Time      `json:"submitted_at"`
}

// SimulationResult aggregates one full pipeline run. Not mutated after return.
type SimulationResult struct {
	ID               string           `json:"simulation_id"`
	Status           ResultStatus     `json:"status"`
	Student          StudentProfile   `json:"student"`
	Scenario         Scenario         `json:"scenario"`
	AdaptedChallenge AdaptedChallenge `json:"adapted_challenge"`
	Response         ResponseSummary  `json:"response"`
	Evaluation       Evaluation       `json:"evaluation"`
	GapAnalysis      GapAnalysis      `json:"gap_analysis"`
	Training         TrainingPlan     `json:"training_recommendations"`
	Notes            []string         `json:"notes,omitempty"`
	Error            string           `json:"error,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
}
