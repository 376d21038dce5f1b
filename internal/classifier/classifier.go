// Package classifier derives a response category and structural statistics
// from raw submission text.
package classifier

import (
	"strings"
	"unicode/utf8"

	"github.com/terra-clan/readiness-engine/internal/models"
)

// Lexical markers, matched case-insensitively as substrings.
var (
	codeMarkers     = []string{"function", "class", "def ", "const ", "let ", "var ", "import", "return", "{", "}", "//", "/*"}
	documentMarkers = []string{"introduction", "analysis", "conclusion", "summary", "recommendation"}
	designMarkers   = []string{"schema", "diagram", "architecture", "database", "table", "relationship"}

	// Rubric flags
	codeLikeMarkers     = []string{"create table", "select", "insert", "update", "delete", "function", "class", "def ", "const ", "let ", "var "}
	structuralMarkers   = []string{"primary key", "foreign key", "index", "constraint", "return", "{", "}", "if", "for"}
	commentMarkers      = []string{"--", "//", "#", "/*"}
	bestPracticeMarkers = []string{"not null", "unique", "auto_increment", "timestamp", "varchar"}
	optimizationMarkers = []string{"performance", "optimization", "efficient"}
	relationMarkers     = []string{"foreign key", "join"}
)

const indexMarker = "index"

// Profile classifies content and computes its statistics. It has no side
// effects and runs in time linear in the content length.
func Profile(content string) models.ContentProfile {
	lower := strings.ToLower(content)

	p := models.ContentProfile{
		Category:         Categorize(content),
		WordCount:        len(strings.Fields(content)),
		CharCount:        utf8.RuneCountInString(content),
		LineCount:        strings.Count(content, "\n") + 1,
		HasCode:          containsAny(lower, codeLikeMarkers),
		HasStructure:     containsAny(lower, structuralMarkers),
		HasComments:      containsAny(content, commentMarkers),
		HasBestPractices: containsAny(lower, bestPracticeMarkers),
		HasIndex:         strings.Contains(lower, indexMarker),
		HasOptimization:  containsAny(lower, optimizationMarkers),
		HasRelations:     containsAny(lower, relationMarkers),
	}

	if p.Category == models.CategoryCode {
		p.FunctionCount = strings.Count(lower, "function") + strings.Count(content, "def ")
		p.CommentLines = strings.Count(content, "//") + strings.Count(content, "#")
		p.HasImports = strings.Contains(lower, "import")
	}

	return p
}

// Categorize picks the response category. Code markers outrank document
// markers, which outrank design markers.
func Categorize(content string) models.Category {
	lower := strings.ToLower(content)
	switch {
	case containsAny(lower, codeMarkers):
		return models.CategoryCode
	case containsAny(lower, documentMarkers):
		return models.CategoryDocument
	case containsAny(lower, designMarkers):
		return models.CategoryDesign
	default:
		return models.CategoryText
	}
}

// Validate rejects content too short for its category
func Validate(content string, category models.Category) error {
	if utf8.RuneCountInString(strings.TrimSpace(content)) < 10 {
		return &models.ValidationError{Field: "content", Message: "content too short or empty"}
	}

	switch category {
	case models.CategoryCode:
		if utf8.RuneCountInString(content) < 50 {
			return &models.ValidationError{Field: "content", Message: "code submission too short"}
		}
	case models.CategoryDocument:
		if len(strings.Fields(content)) < 20 {
			return &models.ValidationError{Field: "content", Message: "document submission too short"}
		}
	}
	return nil
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
