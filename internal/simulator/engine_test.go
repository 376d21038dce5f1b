package simulator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/readiness-engine/internal/gaps"
	"github.com/terra-clan/readiness-engine/internal/models"
	"github.com/terra-clan/readiness-engine/internal/rubric"
)

const schemaSnippet = `-- Core customer and order tables for the storefront
CREATE TABLE customers (
    id SERIAL PRIMARY KEY,
    email VARCHAR(255) NOT NULL UNIQUE,
    full_name VARCHAR(120) NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE orders (
    id SERIAL PRIMARY KEY,
    customer_id INTEGER NOT NULL,
    status VARCHAR(200) NOT NULL DEFAULT 'pending',
    total_cents INTEGER NOT NULL CHECK (total_cents >= 0),
    placed_at TIMESTAMP NOT NULL
);

-- Line items keep a price snapshot at checkout
CREATE TABLE order_items (
    id SERIAL PRIMARY KEY,
    order_id INTEGER NOT NULL,
    sku_code VARCHAR(128) NOT NULL,
    quantity INTEGER NOT NULL CHECK (quantity > 0)
);
`

// MockAssessor implements Assessor
type MockAssessor struct {
	mock.Mock
}

func (m *MockAssessor) Evaluate(ctx context.Context, sc models.Scenario, content string, category models.Category) (models.Evaluation, error) {
	args := m.Called(ctx, sc, content, category)
	return args.Get(0).(models.Evaluation), args.Error(1)
}

func (m *MockAssessor) SuggestGaps(ctx context.Context, ev models.Evaluation, p models.ContentProfile) (gaps.Suggestions, error) {
	args := m.Called(ctx, ev, p)
	return args.Get(0).(gaps.Suggestions), args.Error(1)
}

type panicAssessor struct{}

func (panicAssessor) Evaluate(context.Context, models.Scenario, string, models.Category) (models.Evaluation, error) {
	panic("assessor exploded")
}

func (panicAssessor) SuggestGaps(context.Context, models.Evaluation, models.ContentProfile) (gaps.Suggestions, error) {
	panic("unreachable")
}

// fakeIndex is an in-memory SearchIndex
type fakeIndex struct {
	scenarios []models.Scenario
	resources []models.TrainingResource
	searchErr error
	terms     []string
}

func (f *fakeIndex) IndexScenarios(_ context.Context, items []models.Scenario) error {
	f.scenarios = append(f.scenarios, items...)
	return nil
}

func (f *fakeIndex) IndexResources(_ context.Context, items []models.TrainingResource) error {
	f.resources = append(f.resources, items...)
	return nil
}

func (f *fakeIndex) SearchScenarios(context.Context, string, string, int) ([]models.Scenario, error) {
	return nil, nil
}

func (f *fakeIndex) SearchResources(_ context.Context, terms []string, _ int) ([]models.TrainingResource, error) {
	f.terms = terms
	return f.resources, f.searchErr
}

func (f *fakeIndex) Ping(context.Context) error { return nil }

func (f *fakeIndex) Close() error { return nil }

type failingPublisher struct{ calls int }

func (p *failingPublisher) Publish(context.Context, models.SimulationResult) error {
	p.calls++
	return errors.New("broker down")
}

func (p *failingPublisher) Close() error { return nil }

var backendStudent = models.StudentProfile{ID: "stu-1", Name: "Sam", Role: "backend", SkillLevel: "intermediate"}

func submission(scenarioID, content string) models.Submission {
	return models.Submission{StudentID: "stu-1", ScenarioID: scenarioID, Content: content}
}

const uncommentedSchema = `CREATE TABLE customers (
  id SERIAL PRIMARY KEY,
  email VARCHAR(255) NOT NULL
);
CREATE TABLE orders (
  id SERIAL PRIMARY KEY,
  customer_id INT NOT NULL,
  total NUMERIC(10,2)
);`

func TestRunSimulationScoresAttachmentLikeInlineContent(t *testing.T) {
	e := New(nil)
	e.AddScenarios([]models.Scenario{{ID: "schema-1", Role: "backend", Title: "Schema", Task: "Design the order schema", Difficulty: "intermediate"}})

	inline, err := e.RunSimulation(context.Background(), backendStudent, submission("schema-1", uncommentedSchema))
	require.NoError(t, err)

	attachedSub := submission("schema-1", "")
	attachedSub.Files = []models.AttachedFile{{Name: "schema.sql", Content: uncommentedSchema}}
	attached, err := e.RunSimulation(context.Background(), backendStudent, attachedSub)
	require.NoError(t, err)

	assert.False(t, inline.Response.Profile.HasComments)
	assert.Equal(t, inline.Response.Profile, attached.Response.Profile)
	assert.Equal(t, inline.Evaluation.Scores, attached.Evaluation.Scores)
	assert.Equal(t, inline.Evaluation.Grade, attached.Evaluation.Grade)
	assert.Equal(t, inline.GapAnalysis.ProcessGaps, attached.GapAnalysis.ProcessGaps)
}

func TestRunSimulationSchemaSnippet(t *testing.T) {
	require.Equal(t, 700, utf8.RuneCountInString(schemaSnippet))

	e := New(nil)
	e.AddScenarios([]models.Scenario{{ID: "schema-1", Role: "backend", Title: "Schema", Task: "Design the order schema", Difficulty: "intermediate"}})

	result, err := e.RunSimulation(context.Background(), backendStudent, submission("schema-1", schemaSnippet))
	require.NoError(t, err)

	assert.Equal(t, models.ResultCompleted, result.Status)
	assert.Equal(t, "schema-1", result.Scenario.ID)
	assert.Empty(t, result.Error)

	ev := result.Evaluation
	assert.GreaterOrEqual(t, ev.Scores.Correctness, 20)
	// no index marker, so scalability stays at its length-proportional base
	assert.Equal(t, 700/30, ev.Scores.Scalability)
	assert.Equal(t, ev.Scores.Total(), ev.TotalScore)
	assert.Equal(t, rubric.SourceHeuristic, ev.Source)

	assert.Contains(t, result.GapAnalysis.TechnicalGaps, "Database performance optimization")
	assert.Equal(t, models.UrgencyFor(ev.TotalScore), result.GapAnalysis.Urgency)
	assert.Equal(t, models.UrgencyFor(ev.TotalScore), result.Training.Urgency)

	assert.Equal(t, 700, result.Response.Profile.CharCount)
	assert.Equal(t, "stu-1", result.Response.StudentID)
	assert.Equal(t, "Intermediate", result.AdaptedChallenge.ComplexityLevel)
	assert.Equal(t, "code", result.AdaptedChallenge.FormatType)

	// empty resource catalog uses the backend defaults
	assert.False(t, result.Training.Recommendations.Empty())
	assert.NotEmpty(t, result.Training.LearningPath)
	assert.NotEmpty(t, result.Training.Note)
}

func TestSelectScenariosEmptyCatalog(t *testing.T) {
	e := New(nil)

	selected := e.SelectScenarios(context.Background(), "frontend", "beginner")
	require.Len(t, selected, 3)
	for i, sc := range selected {
		assert.Equal(t, models.ProvenanceFallback, sc.Provenance)
		assert.Equal(t, fmt.Sprintf("Fallback Scenario %d", i+1), sc.Title)
	}
}

func TestIngestThenSelect(t *testing.T) {
	e := New(nil)
	added := e.AddScenarios([]models.Scenario{
		{ID: "b1", Role: "backend", Title: "One", Task: "Task one", Difficulty: "intermediate"},
		{ID: "b2", Role: "backend", Title: "Two", Task: "Task two", Difficulty: "intermediate"},
		{ID: "b3", Role: "backend", Title: "Three", Task: "Task three", Difficulty: "intermediate"},
	})
	require.Len(t, added, 3)

	selected := e.SelectScenarios(context.Background(), "backend", "intermediate")
	require.Len(t, selected, 3)
	for _, sc := range selected {
		assert.Contains(t, []string{"b1", "b2", "b3"}, sc.ID)
	}
}

func TestRunSimulationUnknownScenarioUsesPlaceholder(t *testing.T) {
	e := New(nil)

	result, err := e.RunSimulation(context.Background(), backendStudent, submission("nope", schemaSnippet))
	require.NoError(t, err)
	assert.Equal(t, models.ResultCompleted, result.Status)
	assert.Equal(t, "nope", result.Scenario.ID)
	assert.Equal(t, "Assessment Scenario", result.Scenario.Title)
	assert.Equal(t, "Complete the assigned task", result.Scenario.Task)
}

func TestRunSimulationResolvesIssuedScenario(t *testing.T) {
	e := New(nil)
	issued := e.SelectScenarios(context.Background(), "backend", "intermediate")
	require.Len(t, issued, 3)

	result, err := e.RunSimulation(context.Background(), backendStudent, submission(issued[1].ID, schemaSnippet))
	require.NoError(t, err)
	assert.Equal(t, issued[1].Title, result.Scenario.Title)
	assert.Equal(t, models.ProvenanceFallback, result.Scenario.Provenance)
}

func TestRunSimulationValidation(t *testing.T) {
	e := New(nil)
	ctx := context.Background()

	cases := map[string]models.Submission{
		"no scenario":   {StudentID: "stu-1", Content: schemaSnippet},
		"empty content": submission("x", "   "),
		"too short":     submission("x", "short"),
		"short code":    submission("x", "function f() { return 1 }"),
	}
	for name, sub := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := e.RunSimulation(ctx, backendStudent, sub)
			assert.ErrorIs(t, err, models.ErrValidation)
		})
	}
}

func TestRunSimulationStudentIDFromProfile(t *testing.T) {
	e := New(nil)
	sub := models.Submission{ScenarioID: "x", Content: schemaSnippet}

	result, err := e.RunSimulation(context.Background(), backendStudent, sub)
	require.NoError(t, err)
	assert.Equal(t, "stu-1", result.Response.StudentID)
}

func TestRunSimulationReportsStagesInOrder(t *testing.T) {
	e := New(nil)
	var stages []string

	_, err := e.RunSimulation(context.Background(), backendStudent, submission("x", schemaSnippet),
		WithProgress(func(s string) { stages = append(stages, s) }))
	require.NoError(t, err)
	assert.Equal(t, []string{
		StageLookup, StageClassify, StageScore, StageDiagnose,
		StageMatch, StagePlan, StageAdapt, StagePublish,
	}, stages)
}

func TestAssistedPathMergesSuggestions(t *testing.T) {
	assessor := new(MockAssessor)
	ev := rubric.Assemble(models.CriterionScores{Clarity: 19, Relevance: 19, Correctness: 19, Scalability: 19}, rubric.SourceAssisted)
	assessor.On("Evaluate", mock.Anything, mock.Anything, schemaSnippet, mock.Anything).Return(ev, nil)
	assessor.On("SuggestGaps", mock.Anything, ev, mock.Anything).
		Return(gaps.Suggestions{Technical: []string{"Caching strategies"}}, nil)

	e := New(nil, WithAssessor(assessor))
	result, err := e.RunSimulation(context.Background(), backendStudent, submission("x", schemaSnippet))
	require.NoError(t, err)

	assert.Equal(t, rubric.SourceAssisted, result.Evaluation.Source)
	assert.Equal(t, 76, result.Evaluation.TotalScore)
	assert.Contains(t, result.GapAnalysis.TechnicalGaps, "Caching strategies")
	// 19 is not low at the assisted threshold
	assert.NotContains(t, result.GapAnalysis.TechnicalGaps, "Implementation accuracy")
	assert.Empty(t, result.Notes)
	assessor.AssertExpectations(t)
}

func TestAssessorFailureFallsBackToHeuristic(t *testing.T) {
	assessor := new(MockAssessor)
	assessor.On("Evaluate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(models.Evaluation{}, errors.New("quota exceeded"))

	e := New(nil, WithAssessor(assessor))
	result, err := e.RunSimulation(context.Background(), backendStudent, submission("x", schemaSnippet))
	require.NoError(t, err)

	assert.Equal(t, rubric.SourceHeuristic, result.Evaluation.Source)
	require.Len(t, result.Notes, 1)
	assert.Contains(t, result.Notes[0], "quota exceeded")
	assessor.AssertNotCalled(t, "SuggestGaps", mock.Anything, mock.Anything, mock.Anything)
}

func TestAssistedGapFailureUsesBasicAnalysis(t *testing.T) {
	assessor := new(MockAssessor)
	ev := rubric.Assemble(models.CriterionScores{Clarity: 10, Relevance: 10, Correctness: 10, Scalability: 10}, rubric.SourceAssisted)
	assessor.On("Evaluate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(ev, nil)
	assessor.On("SuggestGaps", mock.Anything, mock.Anything, mock.Anything).
		Return(gaps.Suggestions{}, errors.New("unparseable reply"))

	e := New(nil, WithAssessor(assessor))
	result, err := e.RunSimulation(context.Background(), backendStudent, submission("x", schemaSnippet))
	require.NoError(t, err)

	assert.True(t, result.GapAnalysis.Degraded)
	assert.Equal(t, models.UrgencyCritical, result.GapAnalysis.Urgency)
	assert.Equal(t, models.ResultCompleted, result.Status)
}

func TestAssessorPanicIsContained(t *testing.T) {
	e := New(nil, WithAssessor(panicAssessor{}))
	result, err := e.RunSimulation(context.Background(), backendStudent, submission("x", schemaSnippet))
	require.NoError(t, err)

	assert.Equal(t, models.ResultCompleted, result.Status)
	assert.Equal(t, rubric.SourceHeuristic, result.Evaluation.Source)
	assert.Contains(t, result.Notes, "assessment: internal error")
}

func TestPublishFailureDoesNotChangeResult(t *testing.T) {
	pub := &failingPublisher{}
	e := New(nil, WithPublisher(pub))

	result, err := e.RunSimulation(context.Background(), backendStudent, submission("x", schemaSnippet))
	require.NoError(t, err)
	assert.Equal(t, 1, pub.calls)
	assert.Equal(t, models.ResultCompleted, result.Status)
	assert.Empty(t, result.Error)
}

func TestSearchIndexAugmentsMatching(t *testing.T) {
	idx := &fakeIndex{}
	e := New(nil, WithSearchIndex(idx))

	e.AddResources([]models.TrainingResource{{Title: "Backend Testing Handbook", Type: "book", Skills: "backend"}})
	require.Len(t, idx.resources, 1)

	// only in the index, not in the catalog
	idx.resources = append(idx.resources, models.TrainingResource{Title: "Advanced Query Tuning", Type: "course", Skills: "database performance optimization"})

	result, err := e.RunSimulation(context.Background(), backendStudent, submission("x", schemaSnippet))
	require.NoError(t, err)

	recs := result.Training.Recommendations
	assert.Equal(t, 2, recs.Count())
	assert.Empty(t, result.Training.Note)
	require.NotEmpty(t, idx.terms)
	assert.Equal(t, "backend", idx.terms[0])
	assert.LessOrEqual(t, len(idx.terms), 4)
}

func TestSearchFailureUsesCatalogOnly(t *testing.T) {
	idx := &fakeIndex{searchErr: errors.New("timeout")}
	e := New(nil, WithSearchIndex(idx))
	e.catalog.AddResources([]models.TrainingResource{{Title: "Backend Basics for Beginners", Type: "course", Skills: "backend"}})

	result, err := e.RunSimulation(context.Background(), backendStudent, submission("x", schemaSnippet))
	require.NoError(t, err)
	assert.Len(t, result.Training.Recommendations.Foundational, 1)
}

func TestMergeResourcesDeduplicates(t *testing.T) {
	base := []models.TrainingResource{{Title: "Go Tour", URL: "https://go.dev/tour"}}
	extra := []models.TrainingResource{
		{Title: "go tour", URL: "https://GO.dev/tour"},
		{Title: "Effective Go", URL: "https://go.dev/doc/effective_go"},
	}

	merged := mergeResources(base, extra)
	titles := make([]string, 0, len(merged))
	for _, r := range merged {
		titles = append(titles, r.Title)
	}
	assert.Equal(t, "Go Tour,Effective Go", strings.Join(titles, ","))
}
