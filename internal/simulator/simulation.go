package simulator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/terra-clan/readiness-engine/internal/classifier"
	"github.com/terra-clan/readiness-engine/internal/gaps"
	"github.com/terra-clan/readiness-engine/internal/models"
	"github.com/terra-clan/readiness-engine/internal/rubric"
	"github.com/terra-clan/readiness-engine/internal/scenarios"
	"github.com/terra-clan/readiness-engine/internal/stage"
	"github.com/terra-clan/readiness-engine/internal/training"
)

// Stage names reported to progress listeners, in execution order
const (
	StageLookup   = "lookup"
	StageClassify = "classify"
	StageScore    = "score"
	StageDiagnose = "diagnose"
	StageMatch    = "match"
	StagePlan     = "plan"
	StageAdapt    = "adapt"
	StagePublish  = "publish"
)

// RunOption configures a single simulation run
type RunOption func(*runConfig)

type runConfig struct {
	progress func(stage string)
}

// WithProgress calls fn as each stage starts
func WithProgress(fn func(stage string)) RunOption {
	return func(c *runConfig) { c.progress = fn }
}

// run holds the state of one pipeline invocation
type run struct {
	engine *Engine
	cfg    runConfig
	notes  []string
}

func (r *run) enter(name string) {
	if r.cfg.progress != nil {
		r.cfg.progress(name)
	}
}

func (r *run) note(reason string) {
	if reason != "" {
		r.notes = append(r.notes, reason)
	}
}

// RunSimulation executes the pipeline for one submission. Only a
// ValidationError is returned as an error; every other failure is folded
// into the result.
func (e *Engine) RunSimulation(ctx context.Context, student models.StudentProfile, sub models.Submission, opts ...RunOption) (result models.SimulationResult, err error) {
	r := &run{engine: e}
	for _, opt := range opts {
		opt(&r.cfg)
	}

	if sub.StudentID == "" {
		sub.StudentID = student.ID
	}
	if student.ID == "" {
		student.ID = sub.StudentID
	}
	if sub.SubmittedAt.IsZero() {
		sub.SubmittedAt = time.Now().UTC()
	}
	if err := sub.Validate(); err != nil {
		return models.SimulationResult{}, err
	}

	result = models.SimulationResult{
		ID:        uuid.NewString(),
		Status:    models.ResultCompleted,
		Student:   student,
		CreatedAt: time.Now().UTC(),
	}

	resolved := false
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("simulation panicked", "simulation_id", result.ID, "panic", rec)
			if !resolved {
				result.Status = models.ResultFailed
			}
			result.Error = fmt.Sprintf("internal error: %v", rec)
			result.Notes = r.notes
			err = nil
		}
	}()

	r.enter(StageLookup)
	sc := e.resolveScenario(ctx, sub.ScenarioID, student)
	result.Scenario = sc
	resolved = true

	content := sub.FullContent()

	r.enter(StageClassify)
	profile := classifier.Profile(content)
	if err := classifier.Validate(content, profile.Category); err != nil {
		return models.SimulationResult{}, err
	}
	result.Response = models.ResponseSummary{
		ID:          uuid.NewString(),
		StudentID:   sub.StudentID,
		Content:     content,
		WordCount:   profile.WordCount,
		HasCode:     profile.HasCode,
		Profile:     profile,
		SubmittedAt: sub.SubmittedAt,
	}

	r.enter(StageScore)
	ev, assisted := r.score(ctx, sc, content, profile)
	result.Evaluation = ev

	r.enter(StageDiagnose)
	analysis := r.diagnose(ctx, ev, profile, assisted)
	result.GapAnalysis = analysis

	r.enter(StageMatch)
	recs, usedDefaults := r.match(ctx, student.Role, analysis)

	r.enter(StagePlan)
	result.Training = e.builder.Plan(student.Role, recs, analysis.Urgency)
	if usedDefaults {
		result.Training.Note = "Using default training resources for this role"
	}

	r.enter(StageAdapt)
	result.AdaptedChallenge = scenarios.Adapt(sc, student)

	result.Notes = r.notes

	r.enter(StagePublish)
	if perr := e.publisher.Publish(ctx, result); perr != nil {
		slog.Warn("failed to publish simulation result", "simulation_id", result.ID, "error", perr)
	}

	slog.Info("simulation completed",
		"simulation_id", result.ID,
		"student_id", sub.StudentID,
		"scenario_id", sc.ID,
		"total_score", ev.TotalScore,
		"grade", ev.Grade,
		"gaps", analysis.TotalGaps,
		"degraded", len(r.notes),
	)
	return result, nil
}

// score prefers the assessor and falls back to the heuristic rubric, which
// itself falls back to the fixed default evaluation
func (r *run) score(ctx context.Context, sc models.Scenario, content string, p models.ContentProfile) (models.Evaluation, bool) {
	heuristic := func() models.Evaluation {
		out := stage.Run("rubric", func() (models.Evaluation, error) {
			return rubric.Score(p)
		}, rubric.Default)
		r.note(out.Reason)
		return out.Value
	}

	if r.engine.assessor == nil {
		return heuristic(), false
	}

	out := stage.Run("assessment", func() (models.Evaluation, error) {
		return r.engine.assessor.Evaluate(ctx, sc, content, p.Category)
	}, heuristic)
	r.note(out.Reason)
	return out.Value, !out.Degraded
}

func (r *run) diagnose(ctx context.Context, ev models.Evaluation, p models.ContentProfile, assisted bool) models.GapAnalysis {
	basic := func() models.GapAnalysis { return gaps.Basic(ev.TotalScore) }

	var out stage.Outcome[models.GapAnalysis]
	if assisted {
		out = stage.Run("gap analysis", func() (models.GapAnalysis, error) {
			s, err := r.engine.assessor.SuggestGaps(ctx, ev, p)
			if err != nil {
				return models.GapAnalysis{}, err
			}
			return r.engine.diagnoser.DiagnoseAssisted(ev, p, s)
		}, basic)
	} else {
		out = stage.Run("gap analysis", func() (models.GapAnalysis, error) {
			return r.engine.diagnoser.Diagnose(ev, p)
		}, basic)
	}

	r.note(out.Reason)
	return out.Value
}

// match searches the index for extra candidates and buckets them with the
// catalog. usedDefaults reports that the static role table was substituted.
func (r *run) match(ctx context.Context, role string, analysis models.GapAnalysis) (recs models.Recommendations, usedDefaults bool) {
	labels := analysis.All()
	candidates := r.engine.catalog.Resources()

	if r.engine.index != nil {
		terms := append([]string{role}, labels[:min(3, len(labels))]...)
		found, err := r.engine.index.SearchResources(ctx, terms, resourceSearchLimit)
		if err != nil {
			slog.Warn("resource search failed, using catalog only", "error", err)
		} else {
			candidates = mergeResources(candidates, found)
		}
	}

	out := stage.Run("resource matching", func() (models.Recommendations, error) {
		matched, fallback := training.Match(role, labels, candidates)
		usedDefaults = fallback
		return matched, nil
	}, func() models.Recommendations {
		usedDefaults = true
		return training.Defaults(role)
	})
	r.note(out.Reason)
	return out.Value, usedDefaults
}

// mergeResources appends extra entries not already present by title and url
func mergeResources(base, extra []models.TrainingResource) []models.TrainingResource {
	seen := make(map[string]bool, len(base)+len(extra))
	out := make([]models.TrainingResource, 0, len(base)+len(extra))
	for _, list := range [][]models.TrainingResource{base, extra} {
		for _, res := range list {
			if seen[res.Key()] {
				continue
			}
			seen[res.Key()] = true
			out = append(out, res)
		}
	}
	return out
}
