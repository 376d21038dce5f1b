package scenarios

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/readiness-engine/internal/models"
)

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) GenerateScenario(ctx context.Context, role, taskContext string) (models.ScenarioDraft, error) {
	args := m.Called(ctx, role, taskContext)
	return args.Get(0).(models.ScenarioDraft), args.Error(1)
}

type MockSearcher struct {
	mock.Mock
}

func (m *MockSearcher) SearchScenarios(ctx context.Context, role, query string, limit int) ([]models.Scenario, error) {
	args := m.Called(ctx, role, query, limit)
	return args.Get(0).([]models.Scenario), args.Error(1)
}

type panicGenerator struct{}

func (panicGenerator) GenerateScenario(context.Context, string, string) (models.ScenarioDraft, error) {
	panic("generator exploded")
}

func scenario(id, role, difficulty string) models.Scenario {
	return models.Scenario{
		ID: id, Role: role, Title: "Scenario " + id, Task: "Task " + id,
		Difficulty: difficulty, Provenance: models.ProvenanceCatalog,
	}
}

func TestSelectAlwaysReturnsThree(t *testing.T) {
	many := make([]models.Scenario, 0, 12)
	for i := 0; i < 12; i++ {
		many = append(many, scenario(fmt.Sprint(i), "backend", "intermediate"))
	}
	catalogs := map[string][]models.Scenario{
		"empty": nil,
		"one":   many[:1],
		"two":   many[:2],
		"many":  many,
	}

	s := NewSelector()
	for name, catalog := range catalogs {
		for _, role := range []string{"backend", "frontend", "not-a-role", ""} {
			got := s.Select(context.Background(), role, "intermediate", catalog)
			assert.Len(t, got, DefaultCount, "%s catalog, role %q", name, role)
		}
	}
}

func TestSelectEmptyCatalogFallbacks(t *testing.T) {
	got := NewSelector().Select(context.Background(), "frontend", "beginner", nil)
	require.Len(t, got, 3)
	for i, sc := range got {
		assert.Equal(t, models.ProvenanceFallback, sc.Provenance)
		assert.Equal(t, fmt.Sprintf("Fallback Scenario %d", i+1), sc.Title)
		assert.Equal(t, "frontend", sc.Role)
		assert.Equal(t, "beginner", sc.Difficulty)
		assert.NotEmpty(t, sc.Requirements)
		assert.NotEmpty(t, sc.Deliverables)
		assert.NotEmpty(t, sc.Criteria)
	}
	assert.NotEqual(t, got[0].Task, got[1].Task, "themes should cycle")
}

func TestSelectFiltersByRoleAndDifficulty(t *testing.T) {
	catalog := []models.Scenario{
		scenario("a", "frontend", "advanced"),
		scenario("b", "backend", "advanced"),
		scenario("c", "fullstack", "advanced"),
		scenario("d", "backend", "beginner"),
		scenario("e", "API", "advanced"),
		scenario("f", "backend", "advanced"),
	}

	got := NewSelector().Select(context.Background(), "backend", "advanced", catalog)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"b", "c", "e"}, ids(got))
}

func TestSelectBeginnerPassesAllDifficulties(t *testing.T) {
	catalog := []models.Scenario{
		scenario("a", "frontend", "advanced"),
		scenario("b", "web", "intermediate"),
		scenario("c", "frontend", "beginner"),
	}
	got := NewSelector().Select(context.Background(), "frontend", "beginner", catalog)
	assert.Equal(t, []string{"a", "b", "c"}, ids(got))
}

func TestSelectTopsUpFromUnfiltered(t *testing.T) {
	catalog := []models.Scenario{
		scenario("x", "data_analyst", "beginner"),
		scenario("a", "frontend", "intermediate"),
		scenario("y", "backend", "advanced"),
	}
	got := NewSelector().Select(context.Background(), "frontend", "intermediate", catalog)
	assert.Equal(t, []string{"a", "x", "y"}, ids(got))
}

func TestSelectGeneratesThenFallsBack(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("GenerateScenario", mock.Anything, "backend", "Design and implement a REST API").
		Return(models.ScenarioDraft{Task: "Build a ledger API", Requirements: []string{"Idempotency"}}, nil).Once()
	gen.On("GenerateScenario", mock.Anything, "backend", "Design a relational schema for a growing product").
		Return(models.ScenarioDraft{}, errors.New("upstream unavailable")).Once()

	catalog := []models.Scenario{scenario("a", "backend", "intermediate")}
	got := NewSelector(WithGenerator(gen)).Select(context.Background(), "backend", "intermediate", catalog)

	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, models.ProvenanceGenerated, got[1].Provenance)
	assert.Equal(t, "Build a ledger API", got[1].Title)
	assert.Equal(t, "Design and implement a REST API", got[1].Context)
	assert.Equal(t, models.ProvenanceFallback, got[2].Provenance)
	assert.Equal(t, "Fallback Scenario 3", got[2].Title)
	gen.AssertExpectations(t)
}

func TestSelectSearchSeedsContexts(t *testing.T) {
	search := new(MockSearcher)
	search.On("SearchScenarios", mock.Anything, "frontend", "practical frontend skills assessment", 3).
		Return([]models.Scenario{{Task: "Build a cart widget"}}, nil)

	gen := new(MockGenerator)
	gen.On("GenerateScenario", mock.Anything, "frontend", "Similar scenario: Build a cart widget").
		Return(models.ScenarioDraft{Task: "Build a wishlist widget"}, nil)
	gen.On("GenerateScenario", mock.Anything, "frontend", mock.Anything).
		Return(models.ScenarioDraft{Task: "Build something"}, nil)

	got := NewSelector(WithGenerator(gen), WithSearcher(search)).Select(context.Background(), "frontend", "beginner", nil)
	require.Len(t, got, 3)
	assert.Equal(t, "Build a wishlist widget", got[0].Task)
	assert.Equal(t, "Similar scenario: Build a cart widget", got[0].Context)
	for _, sc := range got {
		assert.Equal(t, models.ProvenanceGenerated, sc.Provenance)
	}
	search.AssertExpectations(t)
}

func TestSelectGeneratedTitleTruncated(t *testing.T) {
	long := ""
	for len(long) < 150 {
		long += "long task "
	}
	gen := new(MockGenerator)
	gen.On("GenerateScenario", mock.Anything, mock.Anything, mock.Anything).Return(models.ScenarioDraft{Task: long}, nil)

	got := NewSelector(WithGenerator(gen), WithCount(1)).Select(context.Background(), "backend", "", nil)
	require.Len(t, got, 1)
	assert.Len(t, []rune(got[0].Title), 100)
	assert.Equal(t, models.DefaultDifficulty, got[0].Difficulty)
}

func TestSelectDropsObsolete(t *testing.T) {
	catalog := []models.Scenario{
		scenario("a", "frontend", "beginner"),
		{ID: "old", Role: "frontend", Task: "Port the Adobe Flash banner", Difficulty: "beginner"},
		scenario("b", "frontend", "beginner"),
		scenario("c", "frontend", "beginner"),
	}
	got := NewSelector().Select(context.Background(), "frontend", "beginner", catalog)
	assert.Equal(t, []string{"a", "b", "c"}, ids(got))
}

func TestSelectObsoleteFilterNeverShrinks(t *testing.T) {
	catalog := []models.Scenario{
		{ID: "old1", Role: "frontend", Task: "Maintain a Silverlight app", Difficulty: "beginner"},
		{ID: "old2", Role: "frontend", Context: "AngularJS migration", Task: "Refactor", Difficulty: "beginner"},
		scenario("a", "frontend", "beginner"),
	}
	got := NewSelector().Select(context.Background(), "frontend", "beginner", catalog)
	assert.Equal(t, []string{"old1", "old2", "a"}, ids(got))
}

func TestSelectRecoversToFallbacks(t *testing.T) {
	got := NewSelector(WithGenerator(panicGenerator{})).Select(context.Background(), "backend", "advanced", nil)
	require.Len(t, got, 3)
	for _, sc := range got {
		assert.Equal(t, models.ProvenanceFallback, sc.Provenance)
	}
}

func TestSelectDoesNotAliasCatalog(t *testing.T) {
	catalog := []models.Scenario{{ID: "a", Role: "backend", Difficulty: "beginner", Requirements: []string{"one"}}}
	got := NewSelector().Select(context.Background(), "backend", "beginner", catalog)
	got[0].Requirements[0] = "changed"
	assert.Equal(t, "one", catalog[0].Requirements[0])
}

func TestAdapt(t *testing.T) {
	sc := models.Scenario{ID: "s1", Task: "Design a schema", Requirements: []string{"Indexing"}}

	beginner := Adapt(sc, models.StudentProfile{Role: "backend"})
	assert.Equal(t, "Basic", beginner.ComplexityLevel)
	assert.Equal(t, "2 hours", beginner.TimeLimit)
	assert.Equal(t, "code", beginner.FormatType)
	assert.Equal(t, []string{"Step-by-step guidance provided", "Basic requirements only"}, beginner.Constraints)

	advanced := Adapt(sc, models.StudentProfile{Role: "data_analyst", SkillLevel: "Advanced"})
	assert.Equal(t, "Advanced", advanced.ComplexityLevel)
	assert.Equal(t, "1 hour", advanced.TimeLimit)
	assert.Equal(t, "document", advanced.FormatType)
	assert.Len(t, advanced.Constraints, 3)

	unknown := Adapt(sc, models.StudentProfile{Role: "frontend", SkillLevel: "guru"})
	assert.Equal(t, "Basic", unknown.ComplexityLevel)
	assert.Equal(t, "s1", unknown.ScenarioID)
	assert.Equal(t, "Design a schema", unknown.AdaptedTask)
}

func ids(scs []models.Scenario) []string {
	out := make([]string, 0, len(scs))
	for _, sc := range scs {
		out = append(out, sc.ID)
	}
	return out
}
