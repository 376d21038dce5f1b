package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/readiness-engine/internal/api"
	"github.com/terra-clan/readiness-engine/internal/config"
	"github.com/terra-clan/readiness-engine/internal/models"
	"github.com/terra-clan/readiness-engine/internal/simulator"
)

const cartComponent = `function Cart({ items }) {
  // renders each line item with its price and a remove button for the shopper
  const total = items.reduce((sum, item) => sum + item.price, 0);
  return items.map(renderItem).concat(renderTotal(total));
}`

func newClient(t *testing.T) *Client {
	t.Helper()
	engine := simulator.New(nil)
	srv := api.NewServer(config.ServerConfig{MaxUploadBytes: 1 << 20}, engine, nil)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return NewClient(ts.URL, "")
}

func TestClientRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)

	require.NoError(t, c.Health(ctx))

	added, err := c.AddScenarios(ctx, []models.Scenario{
		{ID: "fe-1", Role: "frontend", Title: "Cart", Task: "Build a cart widget", Difficulty: "beginner"},
		{ID: "fe-2", Role: "frontend", Title: "Form", Task: "Build a signup form", Difficulty: "beginner"},
		{ID: "fe-3", Role: "frontend", Title: "Menu", Task: "Build a nav menu", Difficulty: "beginner"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, added.Added)
	assert.Equal(t, 3, added.Total)

	scenarios, err := c.SelectScenarios(ctx, "frontend", "beginner")
	require.NoError(t, err)
	require.Len(t, scenarios, 3)
	for _, sc := range scenarios {
		assert.Contains(t, []string{"fe-1", "fe-2", "fe-3"}, sc.ID)
	}

	uploaded, err := c.UploadResourcesCSV(ctx, "resources.csv", strings.NewReader("title,skills\nCSS Basics,frontend\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, uploaded.Total)

	result, err := c.RunSimulation(ctx,
		models.StudentProfile{ID: "stu-1", Role: "frontend", SkillLevel: "beginner"},
		models.Submission{ScenarioID: "fe-1", Content: cartComponent},
	)
	require.NoError(t, err)
	assert.Equal(t, models.ResultCompleted, result.Status)
	assert.Equal(t, "fe-1", result.Scenario.ID)
	assert.False(t, result.Training.Recommendations.Empty())
}

func TestClientReturnsAPIError(t *testing.T) {
	c := newClient(t)

	_, err := c.SelectScenarios(context.Background(), "", "beginner")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "validation_error", apiErr.Code)
}
