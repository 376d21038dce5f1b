// Package generation asks a hosted language model for scenario drafts,
// rubric scores and gap suggestions. Every failure wraps ErrUpstream so
// callers can fall back locally.
package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/terra-clan/readiness-engine/internal/gaps"
	"github.com/terra-clan/readiness-engine/internal/models"
	"github.com/terra-clan/readiness-engine/internal/rubric"
)

// ErrUpstream marks an unavailable collaborator or an unusable reply
var ErrUpstream = errors.New("upstream failure")

// Client builds prompts and parses replies
type Client struct {
	model Model
}

// New creates a client over a model
func New(model Model) *Client {
	return &Client{model: model}
}

// GenerateScenario drafts a scenario for a role from a task context
func (c *Client) GenerateScenario(ctx context.Context, role, taskContext string) (models.ScenarioDraft, error) {
	reply, err := c.ask(ctx, fmt.Sprintf(scenarioPrompt, role, taskContext, role))
	if err != nil {
		return models.ScenarioDraft{}, err
	}

	var draft models.ScenarioDraft
	if err := ParseJSON(reply, &draft); err != nil {
		return models.ScenarioDraft{}, err
	}
	if strings.TrimSpace(draft.Task) == "" {
		return models.ScenarioDraft{}, fmt.Errorf("%w: scenario reply has no task", ErrUpstream)
	}
	return draft, nil
}

type evaluationReply struct {
	Scores   map[string]float64 `json:"scores"`
	Feedback map[string]string  `json:"feedback"`
}

// Evaluate scores a response against a scenario. Scores are clamped to 0-25.
func (c *Client) Evaluate(ctx context.Context, sc models.Scenario, content string, category models.Category) (models.Evaluation, error) {
	prompt := fmt.Sprintf(evaluationPrompt,
		sc.Task, sc.Requirements, sc.Deliverables, sc.Criteria, content)
	switch category {
	case models.CategoryCode:
		prompt += codeCriteria
	case models.CategoryDocument:
		prompt += documentCriteria
	}

	reply, err := c.ask(ctx, prompt)
	if err != nil {
		return models.Evaluation{}, err
	}

	var parsed evaluationReply
	if err := ParseJSON(reply, &parsed); err != nil {
		return models.Evaluation{}, err
	}
	if len(parsed.Scores) == 0 {
		return models.Evaluation{}, fmt.Errorf("%w: evaluation reply has no scores", ErrUpstream)
	}

	var scores models.CriterionScores
	for _, criterion := range models.Criteria {
		scores.Set(criterion, criterionScore(parsed.Scores[string(criterion)]))
	}

	ev := rubric.Assemble(scores, rubric.SourceAssisted)
	overrideFeedback(&ev.Feedback, parsed.Feedback)
	return ev, nil
}

// criterionScore rounds a model score into 0-25. NaN counts as 0.
func criterionScore(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(math.Round(math.Min(math.Max(v, 0), models.MaxCriterionScore)))
}

// SuggestGaps asks for gap labels given an evaluation and content statistics
func (c *Client) SuggestGaps(ctx context.Context, ev models.Evaluation, p models.ContentProfile) (gaps.Suggestions, error) {
	reply, err := c.ask(ctx, fmt.Sprintf(gapPrompt,
		ev.TotalScore, ev.Scores, ev.Grade, p.Category, p.CharCount, p.WordCount, p.LineCount))
	if err != nil {
		return gaps.Suggestions{}, err
	}

	var s gaps.Suggestions
	if err := ParseJSON(reply, &s); err != nil {
		return gaps.Suggestions{}, err
	}
	return s, nil
}

func (c *Client) ask(ctx context.Context, prompt string) (string, error) {
	reply, err := c.model.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return reply, nil
}

// ParseJSON decodes a model reply, tolerating a surrounding ``` fence
func ParseJSON(reply string, v any) error {
	body := strings.TrimSpace(reply)
	if strings.HasPrefix(body, "```") {
		body = strings.TrimPrefix(body, "```json")
		body = strings.TrimPrefix(body, "```")
		body = strings.TrimSuffix(strings.TrimSpace(body), "```")
	}

	if err := json.Unmarshal([]byte(strings.TrimSpace(body)), v); err != nil {
		return fmt.Errorf("%w: failed to parse reply: %v", ErrUpstream, err)
	}
	return nil
}

func overrideFeedback(f *models.Feedback, reply map[string]string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(reply[key]); v != "" {
			*dst = v
		}
	}
	set(&f.Clarity, string(models.Clarity))
	set(&f.Relevance, string(models.Relevance))
	set(&f.Correctness, string(models.Correctness))
	set(&f.Scalability, string(models.Scalability))
	set(&f.General, "general")
}
