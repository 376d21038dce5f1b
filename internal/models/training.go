package models

import "strings"

// TrainingResource is a catalog entry recommended to close a skill gap
type TrainingResource struct {
	Title       string `json:"title" yaml:"title"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description" yaml:"description"`
	URL         string `json:"url" yaml:"url"`
	Skills      string `json:"skills" yaml:"skills"`
}

// Normalize trims text fields
func (r *TrainingResource) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Type = strings.TrimSpace(r.Type)
	r.Description = strings.TrimSpace(r.Description)
	r.URL = strings.TrimSpace(r.URL)
	r.Skills = strings.TrimSpace(r.Skills)
}

// Key identifies a resource across catalog and search results
func (r TrainingResource) Key() string {
	return strings.ToLower(r.Title) + "|" + strings.ToLower(r.URL)
}

// Recommendations buckets matched resources by learning stage
type Recommendations struct {
	Immediate    []TrainingResource `json:"immediate"`
	Foundational []TrainingResource `json:"foundational"`
	Practical    []TrainingResource `json:"practical"`
	Advanced     []TrainingResource `json:"advanced"`
}

// Count returns the number of resources across all buckets
func (r Recommendations) Count() int {
	return len(r.Immediate) + len(r.Foundational) + len(r.Practical) + len(r.Advanced)
}

// Empty reports whether no bucket holds a resource
func (r Recommendations) Empty() bool {
	return r.Count() == 0
}

// Phase is one step of a learning path
type Phase struct {
	Number      int                `json:"phase"`
	Title       string             `json:"title"`
	Duration    string             `json:"duration"`
	Goal        string             `json:"goal"`
	Description string             `json:"description"`
	Resources   []TrainingResource `json:"resources"`
}

// TrainingPlan is the learner-facing training recommendation
type TrainingPlan struct {
	ID                string          `json:"id"`
	StudentRole       string          `json:"student_role"`
	Recommendations   Recommendations `json:"recommendations"`
	LearningPath      []Phase         `json:"learning_path"`
	EstimatedDuration string          `json:"estimated_duration"`
	PriorityOrder     []string        `json:"priority_order"`
	Urgency           string          `json:"urgency"`
	Note              string          `json:"note,omitempty"`
}
