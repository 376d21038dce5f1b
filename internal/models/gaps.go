package models

// Urgency labels keyed by total score
const (
	UrgencyCritical = "Critical - Immediate attention required"
	UrgencyHigh     = "High - Significant improvement needed"
	UrgencyMedium   = "Medium - Some areas need work"
	UrgencyLow      = "Low - Minor improvements suggested"
)

// UrgencyFor derives the urgency label from a total score
func UrgencyFor(total int) string {
	switch {
	case total < 50:
		return UrgencyCritical
	case total < 70:
		return UrgencyHigh
	case total < 85:
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}

// GapAnalysis is the categorized skill-gap diagnosis
type GapAnalysis struct {
	ID             string   `json:"id"`
	TechnicalGaps  []string `json:"technical_gaps"`
	ConceptualGaps []string `json:"conceptual_gaps"`
	ProcessGaps    []string `json:"process_gaps"`
	TotalGaps      int      `json:"total_gaps"`
	PriorityAreas  []string `json:"priority_areas"`
	Urgency        string   `json:"improvement_urgency"`
	Degraded       bool     `json:"degraded,omitempty"`
	Error          string   `json:"error,omitempty"`
}

// All returns every gap label, technical first
func (g GapAnalysis) All() []string {
	all := make([]string, 0, len(g.TechnicalGaps)+len(g.ConceptualGaps)+len(g.ProcessGaps))
	all = append(all, g.TechnicalGaps...)
	all = append(all, g.ConceptualGaps...)
	all = append(all, g.ProcessGaps...)
	return all
}
