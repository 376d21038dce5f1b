// Package training matches catalog resources to diagnosed gaps and arranges
// them into a phased learning path.
package training

import (
	"strings"

	"github.com/terra-clan/readiness-engine/internal/models"
)

var (
	beginnerWords = []string{"fundamental", "basic", "introduction", "beginner"}
	practicalType = []string{"project", "exercise", "practice"}
	advancedWords = []string{"advanced", "expert", "master", "optimization"}
)

// Match buckets every catalog entry relevant to the role or any gap label.
// When nothing matches, the role's default table is returned and fallback is true.
func Match(role string, gapLabels []string, catalog []models.TrainingResource) (recs models.Recommendations, fallback bool) {
	needles := make([]string, 0, len(gapLabels)+1)
	if r := strings.ToLower(strings.TrimSpace(role)); r != "" {
		needles = append(needles, r)
	}
	for _, g := range gapLabels {
		if g = strings.ToLower(strings.TrimSpace(g)); g != "" {
			needles = append(needles, g)
		}
	}

	for _, res := range catalog {
		if !matches(res, needles) {
			continue
		}
		switch bucketOf(res) {
		case bucketFoundational:
			recs.Foundational = append(recs.Foundational, res)
		case bucketPractical:
			recs.Practical = append(recs.Practical, res)
		case bucketAdvanced:
			recs.Advanced = append(recs.Advanced, res)
		default:
			recs.Immediate = append(recs.Immediate, res)
		}
	}

	if recs.Empty() {
		return Defaults(role), true
	}
	return recs, false
}

type bucket int

const (
	bucketImmediate bucket = iota
	bucketFoundational
	bucketPractical
	bucketAdvanced
)

// bucketOf applies first-match-wins precedence
func bucketOf(res models.TrainingResource) bucket {
	title := strings.ToLower(res.Title)
	kind := strings.ToLower(strings.TrimSpace(res.Type))

	switch {
	case containsAny(title, beginnerWords):
		return bucketFoundational
	case oneOf(kind, practicalType):
		return bucketPractical
	case containsAny(title, advancedWords):
		return bucketAdvanced
	default:
		return bucketImmediate
	}
}

func matches(res models.TrainingResource, needles []string) bool {
	haystack := strings.ToLower(res.Skills + "\n" + res.Title + "\n" + res.Description)
	return containsAny(haystack, needles)
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func oneOf(s string, set []string) bool {
	for _, v := range set {
		if s == v {
			return true
		}
	}
	return false
}
