package assess

import "math"

// Grade is a coarse label derived from a percentage.
type Grade string

const (
	GradeExcellent      Grade = "Excellent"
	GradeGood           Grade = "Good"
	GradeKeepPracticing Grade = "Keep Practicing"
)

// Summary is the tally of a session.
type Summary struct {
	Score      int   `json:"score"`
	Total      int   `json:"total"`
	Percentage int   `json:"percentage"`
	Grade      Grade `json:"grade"`
}

// NewSummary computes the percentage and grade band for score out of total.
func NewSummary(score, total int) Summary {
	pct := Percentage(score, total)
	return Summary{Score: score, Total: total, Percentage: pct, Grade: GradeFor(pct)}
}

// Percentage returns round(100*score/total), or 0 when total is 0.
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(score) / float64(total)))
}

// GradeFor maps a percentage to its band. Boundaries belong to the higher band.
func GradeFor(pct int) Grade {
	switch {
	case pct >= 90:
		return GradeExcellent
	case pct >= 70:
		return GradeGood
	default:
		return GradeKeepPracticing
	}
}
