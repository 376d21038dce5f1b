package scenarios

import (
	"github.com/terra-clan/readiness-engine/internal/models"
)

type complexity struct {
	Level       string
	Constraints []string
	TimeLimit   string
}

var complexityByLevel = map[string]complexity{
	"beginner": {
		Level:       "Basic",
		Constraints: []string{"Step-by-step guidance provided", "Basic requirements only"},
		TimeLimit:   "2 hours",
	},
	"intermediate": {
		Level:       "Intermediate",
		Constraints: []string{"Some guidance provided", "Additional requirements"},
		TimeLimit:   "1.5 hours",
	},
	"advanced": {
		Level:       "Advanced",
		Constraints: []string{"Minimal guidance", "Complex requirements", "Performance optimization needed"},
		TimeLimit:   "1 hour",
	},
}

var codeRoles = map[string]bool{"frontend": true, "backend": true, "fullstack": true}

// Adapt presents a scenario at the learner's skill level
func Adapt(sc models.Scenario, student models.StudentProfile) models.AdaptedChallenge {
	c, ok := complexityByLevel[student.Level()]
	if !ok {
		c = complexityByLevel[models.DefaultDifficulty]
	}

	format := "document"
	if codeRoles[models.NormalizeRole(student.Role)] {
		format = "code"
	}

	return models.AdaptedChallenge{
		ScenarioID:      sc.ID,
		AdaptedTask:     sc.Task,
		ComplexityLevel: c.Level,
		Requirements:    append([]string{}, sc.Requirements...),
		Deliverables:    append([]string{}, sc.Deliverables...),
		Constraints:     append([]string(nil), c.Constraints...),
		TimeLimit:       c.TimeLimit,
		FormatType:      format,
		Instructions:    "Complete the task according to the requirements",
	}
}
