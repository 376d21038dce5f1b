package training

import (
	"github.com/google/uuid"

	"github.com/terra-clan/readiness-engine/internal/models"
)

// phaseTemplate is the fixed text of one learning phase
type phaseTemplate struct {
	Number      int
	Title       string
	Duration    string
	Goal        string
	Description string
	Limit       int
}

var phaseTemplates = []phaseTemplate{
	{1, "Foundation Building", "2-3 weeks", "Strengthen core concepts and skills", "Focus on fundamental knowledge and essential skills", 3},
	{2, "Practical Application", "3-4 weeks", "Apply knowledge through hands-on practice", "Build real projects to reinforce learning", 2},
	{3, "Advanced Development", "2-3 weeks", "Develop advanced skills and expertise", "Master advanced concepts and techniques", 2},
}

// BuildPath arranges bucketed resources into phases. A phase whose source
// bucket is empty is omitted.
func BuildPath(recs models.Recommendations) []models.Phase {
	sources := [][]models.TrainingResource{
		append(append([]models.TrainingResource{}, recs.Immediate...), recs.Foundational...),
		recs.Practical,
		recs.Advanced,
	}

	path := []models.Phase{}
	for i, tmpl := range phaseTemplates {
		resources := sources[i]
		if len(resources) == 0 {
			continue
		}
		if len(resources) > tmpl.Limit {
			resources = resources[:tmpl.Limit]
		}
		path = append(path, models.Phase{
			Number:      tmpl.Number,
			Title:       tmpl.Title,
			Duration:    tmpl.Duration,
			Goal:        tmpl.Goal,
			Description: tmpl.Description,
			Resources:   append([]models.TrainingResource(nil), resources...),
		})
	}
	return path
}

// PriorityOrder lists study guidance for the non-empty buckets
func PriorityOrder(recs models.Recommendations) []string {
	order := []string{}
	if len(recs.Immediate) > 0 {
		order = append(order, "Start with critical skill gaps immediately")
	}
	if len(recs.Foundational) > 0 {
		order = append(order, "Build strong foundations before advancing")
	}
	if len(recs.Practical) > 0 {
		order = append(order, "Practice with hands-on projects")
	}
	if len(recs.Advanced) > 0 {
		order = append(order, "Develop advanced skills for career growth")
	}
	return order
}

// Builder assembles training plans
type Builder struct {
	estimator Estimator
}

// NewBuilder creates a builder. A nil estimator uses PhaseBandEstimator.
func NewBuilder(estimator Estimator) *Builder {
	if estimator == nil {
		estimator = PhaseBandEstimator{}
	}
	return &Builder{estimator: estimator}
}

// Plan builds the full training plan for matched recommendations
func (b *Builder) Plan(role string, recs models.Recommendations, urgency string) models.TrainingPlan {
	path := BuildPath(recs)
	return models.TrainingPlan{
		ID:                uuid.NewString(),
		StudentRole:       role,
		Recommendations:   recs,
		LearningPath:      path,
		EstimatedDuration: b.estimator.Estimate(path),
		PriorityOrder:     PriorityOrder(recs),
		Urgency:           urgency,
	}
}
