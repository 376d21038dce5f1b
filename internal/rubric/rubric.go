// Package rubric converts content statistics into four 0-25 criterion scores,
// a letter grade and tiered feedback.
package rubric

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/terra-clan/readiness-engine/internal/models"
)

// ErrMalformedProfile is returned when a profile carries impossible statistics
var ErrMalformedProfile = errors.New("malformed content profile")

// Evaluation sources
const (
	SourceHeuristic = "heuristic"
	SourceAssisted  = "assisted"
	SourceDefault   = "default"
)

// bonus adds Delta points when When holds for the profile
type bonus struct {
	Name  string
	When  func(p models.ContentProfile) bool
	Delta int
}

// criterionRule scores one criterion: a base value followed by bonuses
type criterionRule struct {
	Criterion models.Criterion
	Base      func(p models.ContentProfile) int
	Bonuses   []bonus
}

// proportional returns length/divisor with a floor
func proportional(divisor, floor int) func(p models.ContentProfile) int {
	return func(p models.ContentProfile) int {
		return max(floor, p.CharCount/divisor)
	}
}

func constant(v int) func(models.ContentProfile) int {
	return func(models.ContentProfile) int { return v }
}

// Rules is the scoring table, evaluated once per submission
var Rules = []criterionRule{
	{
		Criterion: models.Clarity,
		Base:      proportional(20, 5),
		Bonuses: []bonus{
			{"comments", func(p models.ContentProfile) bool { return p.HasComments }, 5},
			{"long-form", func(p models.ContentProfile) bool { return p.CharCount > 500 }, 3},
		},
	},
	{
		Criterion: models.Relevance,
		Base:      constant(15),
		Bonuses: []bonus{
			{"code", func(p models.ContentProfile) bool { return p.HasCode }, 5},
			{"structure", func(p models.ContentProfile) bool { return p.HasStructure }, 3},
			{"word-count", func(p models.ContentProfile) bool { return p.WordCount > 50 }, 2},
		},
	},
	{
		Criterion: models.Correctness,
		Base:      constant(12),
		Bonuses: []bonus{
			{"structure", func(p models.ContentProfile) bool { return p.HasStructure }, 8},
			{"best-practices", func(p models.ContentProfile) bool { return p.HasBestPractices }, 5},
		},
	},
	{
		Criterion: models.Scalability,
		Base:      proportional(30, 10),
		Bonuses: []bonus{
			{"index", func(p models.ContentProfile) bool { return p.HasIndex }, 5},
			{"optimization", func(p models.ContentProfile) bool { return p.HasOptimization }, 3},
		},
	},
}

// feedbackTier labels a criterion score
type feedbackTier struct {
	Prefix string
	Lower  string
}

var tiers = map[models.Criterion]feedbackTier{
	models.Clarity:     {"Code clarity", "Needs improvement"},
	models.Relevance:   {"Task relevance", "Could be better"},
	models.Correctness: {"Implementation", "Needs work"},
	models.Scalability: {"Scalability", "Consider improvements"},
}

// Score runs the rubric against a profile
func Score(p models.ContentProfile) (models.Evaluation, error) {
	if p.CharCount < 0 || p.WordCount < 0 || p.LineCount < 0 {
		return models.Evaluation{}, fmt.Errorf("%w: negative counts", ErrMalformedProfile)
	}

	var scores models.CriterionScores
	for _, rule := range Rules {
		v := rule.Base(p)
		for _, b := range rule.Bonuses {
			if b.When(p) {
				v += b.Delta
			}
		}
		scores.Set(rule.Criterion, clamp(v))
	}

	return Assemble(scores, SourceHeuristic), nil
}

// Assemble clamps scores and derives total, percentage, grade and feedback
func Assemble(scores models.CriterionScores, source string) models.Evaluation {
	for _, c := range models.Criteria {
		scores.Set(c, clamp(scores.Get(c)))
	}
	total := scores.Total()

	return models.Evaluation{
		ID:         uuid.NewString(),
		Scores:     scores,
		TotalScore: total,
		Percentage: float64(total),
		Grade:      models.Grade(total),
		Feedback:   feedback(scores, total),
		Source:     source,
	}
}

// Default is the fixed evaluation used when scoring cannot run
func Default() models.Evaluation {
	scores := models.CriterionScores{Clarity: 15, Relevance: 15, Correctness: 15, Scalability: 15}
	ev := Assemble(scores, SourceDefault)
	ev.Feedback.General = "Unable to evaluate automatically. Manual review required."
	ev.Error = "Automatic evaluation failed"
	return ev
}

// Tier returns the feedback tier word for a criterion score
func Tier(c models.Criterion, score int) string {
	switch {
	case score >= 22:
		return "Excellent"
	case score >= 18:
		return "Good"
	default:
		return tiers[c].Lower
	}
}

func feedback(s models.CriterionScores, total int) models.Feedback {
	line := func(c models.Criterion) string {
		return fmt.Sprintf("%s: %s (%d/%d)", tiers[c].Prefix, Tier(c, s.Get(c)), s.Get(c), models.MaxCriterionScore)
	}

	overall := "basic"
	switch {
	case total >= 85:
		overall = "excellent"
	case total >= 70:
		overall = "good"
	}

	return models.Feedback{
		Clarity:     line(models.Clarity),
		Relevance:   line(models.Relevance),
		Correctness: line(models.Correctness),
		Scalability: line(models.Scalability),
		General:     fmt.Sprintf("Overall performance shows %s understanding of the requirements.", overall),
	}
}

func clamp(v int) int {
	return min(max(v, 0), models.MaxCriterionScore)
}
