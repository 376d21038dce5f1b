package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrValidation marks malformed or missing submission fields
var ErrValidation = errors.New("validation failed")

// ValidationError describes a single rejected field
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is lets errors.Is match any ValidationError against ErrValidation
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// StudentProfile identifies the learner being assessed
type StudentProfile struct {
	ID         string `json:"id"`
	Name       string `json:"name,omitempty"`
	Email      string `json:"email,omitempty"`
	Role       string `json:"role"`
	SkillLevel string `json:"skill_level"`
}

// Level returns the skill level, defaulting to beginner
func (p StudentProfile) Level() string {
	if level := strings.ToLower(strings.TrimSpace(p.SkillLevel)); level != "" {
		return level
	}
	return DefaultDifficulty
}

// AttachedFile is an optional file sent alongside the submission text
type AttachedFile struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Submission is a learner's response to a scenario. Never mutated after creation.
type Submission struct {
	StudentID   string         `json:"student_id"`
	ScenarioID  string         `json:"scenario_id"`
	Content     string         `json:"content"`
	Files       []AttachedFile `json:"files,omitempty"`
	SubmittedAt time.Time      `json:"submitted_at"`
}

// Validate checks that the required fields are present
func (s *Submission) Validate() error {
	if strings.TrimSpace(s.StudentID) == "" {
		return &ValidationError{Field: "student_id", Message: "student_id is required"}
	}
	if strings.TrimSpace(s.ScenarioID) == "" {
		return &ValidationError{Field: "scenario_id", Message: "scenario_id is required"}
	}
	if strings.TrimSpace(s.FullContent()) == "" {
		return &ValidationError{Field: "content", Message: "content is required"}
	}
	return nil
}

// FullContent joins the inline content with the text of attached files
func (s *Submission) FullContent() string {
	if len(s.Files) == 0 {
		return s.Content
	}

	var b strings.Builder
	b.WriteString(s.Content)
	for _, f := range s.Files {
		if f.Content == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(f.Content)
	}
	return b.String()
}
