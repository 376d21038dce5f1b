package scenarios

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/terra-clan/readiness-engine/internal/models"
)

// template is the fixed per-role shape of a fallback scenario
type template struct {
	Task         string
	Requirements []string
	Deliverables []string
	Criteria     []string
}

var templates = map[string]template{
	"frontend": {
		Task:         "Build a responsive web application component",
		Requirements: []string{"React components", "Responsive design", "State management"},
		Deliverables: []string{"Working component", "Mobile-responsive design"},
		Criteria:     []string{"Code quality", "User experience", "Performance"},
	},
	"backend": {
		Task:         "Design and implement a REST API",
		Requirements: []string{"CRUD operations", "Authentication", "Database integration"},
		Deliverables: []string{"API endpoints", "Documentation", "Error handling"},
		Criteria:     []string{"API design", "Security", "Performance"},
	},
	"data_analyst": {
		Task:         "Analyze business data and create insights",
		Requirements: []string{"Data cleaning", "Statistical analysis", "Visualization"},
		Deliverables: []string{"Analysis report", "Charts and graphs", "Recommendations"},
		Criteria:     []string{"Analytical accuracy", "Insight quality", "Presentation"},
	},
	"fullstack": {
		Task:         "Create a full-stack web application",
		Requirements: []string{"Frontend UI", "Backend API", "Database"},
		Deliverables: []string{"Complete application", "User authentication", "CRUD functionality"},
		Criteria:     []string{"Architecture", "User experience", "Code quality"},
	},
}

var genericTemplate = template{
	Task:         "Create a technical solution",
	Requirements: []string{"Problem analysis", "Working implementation", "Documentation"},
	Deliverables: []string{"Working solution", "Technical write-up"},
	Criteria:     []string{"Correctness", "Clarity", "Maintainability"},
}

var themes = []string{"an e-commerce platform", "a healthcare scheduling system", "a financial reporting tool"}

// fallback synthesizes the n-th (1-based) fallback scenario
func fallback(role, level string, n int) models.Scenario {
	tmpl, ok := templates[role]
	if !ok {
		tmpl = genericTemplate
	}
	theme := themes[(n-1)%len(themes)]

	return models.Scenario{
		ID:           uuid.NewString(),
		Role:         role,
		Title:        fmt.Sprintf("Fallback Scenario %d", n),
		Task:         fmt.Sprintf("%s for %s", tmpl.Task, theme),
		Requirements: append([]string(nil), tmpl.Requirements...),
		Deliverables: append([]string(nil), tmpl.Deliverables...),
		Criteria:     append([]string(nil), tmpl.Criteria...),
		Difficulty:   level,
		Context:      fmt.Sprintf("Practice scenario set in %s", theme),
		Provenance:   models.ProvenanceFallback,
	}
}

// Fallbacks returns count fallback scenarios numbered from start
func Fallbacks(role, level string, start, count int) []models.Scenario {
	role = models.NormalizeRole(role)
	if level == "" {
		level = models.DefaultDifficulty
	}
	out := make([]models.Scenario, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, fallback(role, level, start+i))
	}
	return out
}

// Placeholder stands in for a scenario id that cannot be resolved
func Placeholder(id, role, level string) models.Scenario {
	if level == "" {
		level = models.DefaultDifficulty
	}
	return models.Scenario{
		ID:         id,
		Role:       role,
		Title:      "Assessment Scenario",
		Task:       "Complete the assigned task",
		Difficulty: level,
		Provenance: models.ProvenanceFallback,
	}
}
