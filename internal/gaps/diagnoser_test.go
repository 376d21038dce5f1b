package gaps

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/readiness-engine/internal/models"
	"github.com/terra-clan/readiness-engine/internal/rubric"
)

func evaluation(clarity, relevance, correctness, scalability int) models.Evaluation {
	return rubric.Assemble(models.CriterionScores{
		Clarity: clarity, Relevance: relevance, Correctness: correctness, Scalability: scalability,
	}, rubric.SourceHeuristic)
}

// complete has every content marker so only score rules fire
var complete = models.ContentProfile{HasRelations: true, HasIndex: true, HasComments: true}

func TestDiagnoseScoreRules(t *testing.T) {
	d := NewDiagnoser(0, 0)

	g, err := d.Diagnose(evaluation(10, 10, 10, 10), complete)
	require.NoError(t, err)

	assert.Equal(t, []string{"Implementation accuracy", "Solution validation", "Performance optimization", "Scalable design patterns"}, g.TechnicalGaps)
	assert.Equal(t, []string{"Understanding of requirements", "Problem analysis skills"}, g.ConceptualGaps)
	assert.Equal(t, []string{"Communication and documentation skills", "Code/content organization"}, g.ProcessGaps)
	assert.Equal(t, 8, g.TotalGaps)
	assert.Equal(t, []string{PriorityConceptual, PriorityTechnical, PriorityProcess}, g.PriorityAreas)
	assert.Equal(t, models.UrgencyCritical, g.Urgency)
	assert.False(t, g.Degraded)
}

func TestDiagnoseThresholdPerPath(t *testing.T) {
	d := NewDiagnoser(DefaultHeuristicThreshold, DefaultAssistedThreshold)
	ev := evaluation(25, 25, 19, 25)

	heuristic, err := d.Diagnose(ev, complete)
	require.NoError(t, err)
	assert.Contains(t, heuristic.TechnicalGaps, "Implementation accuracy", "19 is below the heuristic threshold of 20")

	assisted, err := d.DiagnoseAssisted(ev, complete, Suggestions{})
	require.NoError(t, err)
	assert.NotContains(t, assisted.TechnicalGaps, "Implementation accuracy", "19 is not below the assisted threshold of 18")
}

func TestDiagnoseContentRules(t *testing.T) {
	d := NewDiagnoser(0, 0)
	g, err := d.Diagnose(evaluation(25, 25, 25, 25), models.ContentProfile{})
	require.NoError(t, err)

	assert.Equal(t, []string{"Database relationships and constraints", "Database performance optimization"}, g.TechnicalGaps)
	assert.Equal(t, []string{"Code documentation practices"}, g.ProcessGaps)
	assert.Empty(t, g.ConceptualGaps)
	assert.Equal(t, 3, g.TotalGaps)
	assert.Empty(t, g.PriorityAreas)
	assert.Equal(t, models.UrgencyLow, g.Urgency)
}

func TestDiagnoseAssistedMergesWithoutDuplicates(t *testing.T) {
	d := NewDiagnoser(0, 0)
	p := models.ContentProfile{Category: models.CategoryCode, HasRelations: true, HasIndex: true, CommentLines: 0}

	g, err := d.DiagnoseAssisted(evaluation(10, 25, 25, 25), p, Suggestions{
		Technical:  []string{"Error handling", "Error handling", ""},
		Conceptual: []string{"Domain modelling"},
		Process:    []string{"Code documentation practices"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Error handling", "Module management and imports"}, g.TechnicalGaps)
	assert.Equal(t, []string{"Domain modelling"}, g.ConceptualGaps)
	assert.Equal(t, []string{"Code documentation practices", "Communication and documentation skills", "Code/content organization"}, g.ProcessGaps)
	assertNoDuplicates(t, g)
}

func TestDiagnoseRejectsInconsistentEvaluation(t *testing.T) {
	d := NewDiagnoser(0, 0)
	ev := evaluation(20, 20, 20, 20)
	ev.TotalScore = 99

	_, err := d.Diagnose(ev, complete)
	assert.True(t, errors.Is(err, ErrInconsistentEvaluation))

	ev = evaluation(20, 20, 20, 20)
	ev.Scores.Clarity = 30
	ev.TotalScore = ev.Scores.Total()
	_, err = d.DiagnoseAssisted(ev, complete, Suggestions{})
	assert.True(t, errors.Is(err, ErrInconsistentEvaluation))
}

func TestBasic(t *testing.T) {
	tests := []struct {
		total                           int
		technical, conceptual, process  int
		wantTotal                       int
	}{
		{40, 1, 1, 1, 3},
		{65, 1, 0, 1, 2},
		{75, 0, 0, 1, 1},
		{90, 0, 0, 0, 0},
	}
	for _, tt := range tests {
		g := Basic(tt.total)
		assert.Len(t, g.TechnicalGaps, tt.technical, "total %d", tt.total)
		assert.Len(t, g.ConceptualGaps, tt.conceptual, "total %d", tt.total)
		assert.Len(t, g.ProcessGaps, tt.process, "total %d", tt.total)
		assert.Equal(t, tt.wantTotal, g.TotalGaps)
		assert.True(t, g.Degraded)
		assert.Equal(t, "Detailed analysis unavailable", g.Error)
		assert.Equal(t, []string{PriorityGeneral}, g.PriorityAreas)
		assert.Equal(t, models.UrgencyFor(tt.total), g.Urgency)
	}
}

func TestPrioritize(t *testing.T) {
	assert.Empty(t, Prioritize([]string{"a", "b"}, nil, []string{"x"}))
	assert.Equal(t, []string{PriorityTechnical}, Prioritize([]string{"a", "b", "c"}, nil, nil))
	assert.Equal(t, []string{PriorityConceptual, PriorityProcess}, Prioritize(nil, []string{"c"}, []string{"x", "y"}))
}

func TestNoDuplicatesAcrossScores(t *testing.T) {
	d := NewDiagnoser(0, 0)
	for score := 0; score <= 25; score += 5 {
		g, err := d.DiagnoseAssisted(evaluation(score, score, score, score), models.ContentProfile{Category: models.CategoryCode}, Suggestions{
			Technical: []string{"Performance optimization", "Database performance optimization"},
			Process:   []string{"Code documentation practices"},
		})
		require.NoError(t, err)
		assertNoDuplicates(t, g)
	}
}

func assertNoDuplicates(t *testing.T, g models.GapAnalysis) {
	t.Helper()
	for name, list := range map[string][]string{"technical": g.TechnicalGaps, "conceptual": g.ConceptualGaps, "process": g.ProcessGaps} {
		seen := map[string]bool{}
		for _, label := range list {
			if seen[label] {
				t.Errorf("duplicate %s gap %q", name, label)
			}
			seen[label] = true
		}
	}
}
