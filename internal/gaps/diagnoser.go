// Package gaps maps low rubric scores and content absences to named skill gaps.
package gaps

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/terra-clan/readiness-engine/internal/models"
)

// Default low-score thresholds, out of 25. The two call paths keep separate
// thresholds; see DESIGN.md.
const (
	DefaultHeuristicThreshold = 20
	DefaultAssistedThreshold  = 18
)

// ErrInconsistentEvaluation is returned when scores and total disagree
var ErrInconsistentEvaluation = errors.New("inconsistent evaluation")

// Kind is a gap category
type Kind string

const (
	Technical  Kind = "technical"
	Conceptual Kind = "conceptual"
	Process    Kind = "process"
)

// scoreRule adds labels when a criterion falls below the active threshold
type scoreRule struct {
	Criterion models.Criterion
	Kind      Kind
	Labels    []string
}

var scoreRules = []scoreRule{
	{models.Clarity, Process, []string{"Communication and documentation skills", "Code/content organization"}},
	{models.Relevance, Conceptual, []string{"Understanding of requirements", "Problem analysis skills"}},
	{models.Correctness, Technical, []string{"Implementation accuracy", "Solution validation"}},
	{models.Scalability, Technical, []string{"Performance optimization", "Scalable design patterns"}},
}

// contentRule adds a label when the submission lacks something
type contentRule struct {
	Kind  Kind
	Label string
	When  func(p models.ContentProfile) bool
}

var contentRules = []contentRule{
	{Technical, "Database relationships and constraints", func(p models.ContentProfile) bool { return !p.HasRelations }},
	{Technical, "Database performance optimization", func(p models.ContentProfile) bool { return !p.HasIndex }},
	{Process, "Code documentation practices", func(p models.ContentProfile) bool { return !p.HasComments }},
}

// codeRules only run on the assisted path, for code submissions
var codeRules = []contentRule{
	{Technical, "Module management and imports", func(p models.ContentProfile) bool { return !p.HasImports }},
	{Process, "Code documentation practices", func(p models.ContentProfile) bool { return p.CommentLines < 2 }},
}

// Priority statements, in precedence order
const (
	PriorityConceptual = "Conceptual understanding needs improvement"
	PriorityTechnical  = "Multiple technical skills need development"
	PriorityProcess    = "Process and methodology improvements needed"
	PriorityGeneral    = "General skill improvement needed"
)

const maxPriorities = 3

// Suggestions are gap labels proposed by an assessor collaborator
type Suggestions struct {
	Technical  []string `json:"technical_gaps"`
	Conceptual []string `json:"conceptual_gaps"`
	Process    []string `json:"process_gaps"`
}

// Diagnoser builds gap analyses
type Diagnoser struct {
	heuristicThreshold int
	assistedThreshold  int
}

// NewDiagnoser creates a diagnoser. Non-positive thresholds use the defaults.
func NewDiagnoser(heuristicThreshold, assistedThreshold int) *Diagnoser {
	if heuristicThreshold <= 0 {
		heuristicThreshold = DefaultHeuristicThreshold
	}
	if assistedThreshold <= 0 {
		assistedThreshold = DefaultAssistedThreshold
	}
	return &Diagnoser{
		heuristicThreshold: heuristicThreshold,
		assistedThreshold:  assistedThreshold,
	}
}

// Diagnose runs the rule table for rubric-scored evaluations
func (d *Diagnoser) Diagnose(ev models.Evaluation, p models.ContentProfile) (models.GapAnalysis, error) {
	if err := checkEvaluation(ev); err != nil {
		return models.GapAnalysis{}, err
	}

	set := newGapSet()
	set.applyScores(ev.Scores, d.heuristicThreshold)
	set.applyContent(p, contentRules)

	return set.analysis(ev.TotalScore), nil
}

// DiagnoseAssisted merges assessor suggestions with the rule table, using the
// assisted threshold and the additional code-submission rules.
func (d *Diagnoser) DiagnoseAssisted(ev models.Evaluation, p models.ContentProfile, s Suggestions) (models.GapAnalysis, error) {
	if err := checkEvaluation(ev); err != nil {
		return models.GapAnalysis{}, err
	}

	set := newGapSet()
	set.add(Technical, s.Technical...)
	set.add(Conceptual, s.Conceptual...)
	set.add(Process, s.Process...)
	set.applyScores(ev.Scores, d.assistedThreshold)
	set.applyContent(p, contentRules)
	if p.Category == models.CategoryCode {
		set.applyContent(p, codeRules)
	}

	return set.analysis(ev.TotalScore), nil
}

// Basic is the degraded analysis derived only from the total score
func Basic(total int) models.GapAnalysis {
	g := models.GapAnalysis{
		ID:             uuid.NewString(),
		TechnicalGaps:  []string{},
		ConceptualGaps: []string{},
		ProcessGaps:    []string{},
		PriorityAreas:  []string{PriorityGeneral},
		Urgency:        models.UrgencyFor(total),
		Degraded:       true,
		Error:          "Detailed analysis unavailable",
	}
	if total < 70 {
		g.TechnicalGaps = append(g.TechnicalGaps, "Implementation skills need improvement")
	}
	if total < 60 {
		g.ConceptualGaps = append(g.ConceptualGaps, "Problem understanding needs work")
	}
	if total < 80 {
		g.ProcessGaps = append(g.ProcessGaps, "Documentation and presentation skills")
	}
	g.TotalGaps = len(g.TechnicalGaps) + len(g.ConceptualGaps) + len(g.ProcessGaps)
	return g
}

// Prioritize returns up to three summary statements in fixed precedence
func Prioritize(technical, conceptual, process []string) []string {
	priorities := []string{}
	if len(conceptual) > 0 {
		priorities = append(priorities, PriorityConceptual)
	}
	if len(technical) > 2 {
		priorities = append(priorities, PriorityTechnical)
	}
	if len(process) > 1 {
		priorities = append(priorities, PriorityProcess)
	}
	if len(priorities) > maxPriorities {
		priorities = priorities[:maxPriorities]
	}
	return priorities
}

func checkEvaluation(ev models.Evaluation) error {
	for _, c := range models.Criteria {
		if v := ev.Scores.Get(c); v < 0 || v > models.MaxCriterionScore {
			return fmt.Errorf("%w: %s score %d out of range", ErrInconsistentEvaluation, c, v)
		}
	}
	if ev.Scores.Total() != ev.TotalScore {
		return fmt.Errorf("%w: total %d != sum %d", ErrInconsistentEvaluation, ev.TotalScore, ev.Scores.Total())
	}
	return nil
}

// gapSet keeps labels per kind in first-seen order without duplicates
type gapSet struct {
	labels map[Kind][]string
	seen   map[Kind]map[string]struct{}
}

func newGapSet() *gapSet {
	return &gapSet{
		labels: make(map[Kind][]string),
		seen: map[Kind]map[string]struct{}{
			Technical:  {},
			Conceptual: {},
			Process:    {},
		},
	}
}

func (s *gapSet) add(kind Kind, labels ...string) {
	for _, label := range labels {
		if label == "" {
			continue
		}
		if _, ok := s.seen[kind][label]; ok {
			continue
		}
		s.seen[kind][label] = struct{}{}
		s.labels[kind] = append(s.labels[kind], label)
	}
}

func (s *gapSet) applyScores(scores models.CriterionScores, threshold int) {
	for _, rule := range scoreRules {
		if scores.Get(rule.Criterion) < threshold {
			s.add(rule.Kind, rule.Labels...)
		}
	}
}

func (s *gapSet) applyContent(p models.ContentProfile, rules []contentRule) {
	for _, rule := range rules {
		if rule.When(p) {
			s.add(rule.Kind, rule.Label)
		}
	}
}

func (s *gapSet) list(kind Kind) []string {
	if l := s.labels[kind]; l != nil {
		return l
	}
	return []string{}
}

func (s *gapSet) analysis(total int) models.GapAnalysis {
	technical, conceptual, process := s.list(Technical), s.list(Conceptual), s.list(Process)
	return models.GapAnalysis{
		ID:             uuid.NewString(),
		TechnicalGaps:  technical,
		ConceptualGaps: conceptual,
		ProcessGaps:    process,
		TotalGaps:      len(technical) + len(conceptual) + len(process),
		PriorityAreas:  Prioritize(technical, conceptual, process),
		Urgency:        models.UrgencyFor(total),
	}
}
