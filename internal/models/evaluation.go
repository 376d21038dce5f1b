package models

// Category is the response category derived by the content classifier
type Category string

const (
	CategoryCode     Category = "code"
	CategoryDocument Category = "document"
	CategoryDesign   Category = "design"
	CategoryText     Category = "text"
)

// ContentProfile holds structural statistics of a submission
type ContentProfile struct {
	Category         Category `json:"category"`
	WordCount        int      `json:"word_count"`
	CharCount        int      `json:"char_count"`
	LineCount        int      `json:"line_count"`
	HasCode          bool     `json:"has_code"`
	HasStructure     bool     `json:"has_structure"`
	HasComments      bool     `json:"has_comments"`
	HasBestPractices bool     `json:"has_best_practices"`
	HasIndex         bool     `json:"has_index"`
	HasOptimization  bool     `json:"has_optimization"`
	HasRelations     bool     `json:"has_relations"`

	// Populated for code submissions only
	FunctionCount int  `json:"function_count,omitempty"`
	CommentLines  int  `json:"comment_lines,omitempty"`
	HasImports    bool `json:"has_imports,omitempty"`
}

// Criterion names one of the four rubric dimensions
type Criterion string

const (
	Clarity     Criterion = "clarity"
	Relevance   Criterion = "relevance"
	Correctness Criterion = "correctness"
	Scalability Criterion = "scalability"
)

// Criteria lists the rubric dimensions in report order
var Criteria = []Criterion{Clarity, Relevance, Correctness, Scalability}

// MaxCriterionScore is the ceiling for each criterion
const MaxCriterionScore = 25

// CriterionScores holds one clamped score per criterion
type CriterionScores struct {
	Clarity     int `json:"clarity"`
	Relevance   int `json:"relevance"`
	Correctness int `json:"correctness"`
	Scalability int `json:"scalability"`
}

// Get returns the score for a criterion
func (s CriterionScores) Get(c Criterion) int {
	switch c {
	case Clarity:
		return s.Clarity
	case Relevance:
		return s.Relevance
	case Correctness:
		return s.Correctness
	case Scalability:
		return s.Scalability
	}
	return 0
}

// Set stores a score for a criterion
func (s *CriterionScores) Set(c Criterion, v int) {
	switch c {
	case Clarity:
		s.Clarity = v
	case Relevance:
		s.Relevance = v
	case Correctness:
		s.Correctness = v
	case Scalability:
		s.Scalability = v
	}
}

// Total sums the four criteria
func (s CriterionScores) Total() int {
	return s.Clarity + s.Relevance + s.Correctness + s.Scalability
}

// Feedback holds per-criterion feedback lines plus an overall line
type Feedback struct {
	Clarity     string `json:"clarity"`
	Relevance   string `json:"relevance"`
	Correctness string `json:"correctness"`
	Scalability string `json:"scalability"`
	General     string `json:"general"`
}

// Evaluation is the graded rubric result for one submission
type Evaluation struct {
	ID         string          `json:"id"`
	Scores     CriterionScores `json:"scores"`
	TotalScore int             `json:"total_score"`
	Percentage float64         `json:"percentage"`
	Grade      string          `json:"grade"`
	Feedback   Feedback        `json:"feedback"`
	Source     string          `json:"source"` // heuristic | assisted | default
	Error      string          `json:"error,omitempty"`
}

// Grade maps a total score to a letter grade
func Grade(total int) string {
	switch {
	case total >= 90:
		return "A"
	case total >= 80:
		return "B"
	case total >= 70:
		return "C"
	case total >= 60:
		return "D"
	default:
		return "F"
	}
}
