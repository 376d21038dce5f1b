package training

import (
	"strings"

	"github.com/terra-clan/readiness-engine/internal/models"
)

// Estimator derives a total duration string for a learning path
type Estimator interface {
	Estimate(path []models.Phase) string
}

// DefaultDuration is reported for an empty path
const DefaultDuration = "4-6 weeks"

// PhaseBandEstimator sums a weeks-per-phase constant taken from each phase's
// duration band. This is the estimator used by the pipeline.
type PhaseBandEstimator struct{}

// Estimate implements Estimator
func (PhaseBandEstimator) Estimate(path []models.Phase) string {
	if len(path) == 0 {
		return DefaultDuration
	}

	weeks := 0
	for _, phase := range path {
		switch {
		case strings.Contains(phase.Duration, "2-3"):
			weeks += 3
		case strings.Contains(phase.Duration, "3-4"):
			weeks += 4
		default:
			weeks += 3
		}
	}

	switch {
	case weeks <= 6:
		return "4-6 weeks"
	case weeks <= 10:
		return "6-10 weeks"
	default:
		return "10-12 weeks"
	}
}

// resourceHours is the study time assumed per resource type
var resourceHours = map[string]int{
	"course":        20,
	"tutorial":      5,
	"documentation": 3,
	"project":       15,
	"practice":      8,
	"book":          30,
}

const defaultResourceHours = 10

// ResourceHoursEstimator sums per-resource study hours. It is kept as the
// alternative scheme and disagrees with PhaseBandEstimator on most paths.
type ResourceHoursEstimator struct{}

// Hours returns the total study hours for the resources on a path
func (ResourceHoursEstimator) Hours(path []models.Phase) int {
	hours := 0
	for _, phase := range path {
		for _, res := range phase.Resources {
			if h, ok := resourceHours[strings.ToLower(strings.TrimSpace(res.Type))]; ok {
				hours += h
			} else {
				hours += defaultResourceHours
			}
		}
	}
	return hours
}

// Estimate implements Estimator
func (e ResourceHoursEstimator) Estimate(path []models.Phase) string {
	hours := e.Hours(path)
	switch {
	case hours <= 20:
		return "2-3 weeks"
	case hours <= 40:
		return "4-6 weeks"
	case hours <= 60:
		return "6-8 weeks"
	default:
		return "8-12 weeks"
	}
}
