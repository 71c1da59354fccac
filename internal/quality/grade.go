package quality

// band maps a minimum overall score to a grade and status.
type band struct {
	min    float64
	grade  string
	status string
}

// bands are evaluated top-down; the first match wins.
var bands = []band{
	{90, "A+", "Excellent"},
	{80, "A", "Very Good"},
	{70, "B", "Good"},
	{60, "C", "Fair"},
	{50, "D", "Poor"},
}

// Grade converts an overall score to a letter grade and status.
func Grade(overall float64) (grade, status string) {
	for _, b := range bands {
		if overall >= b.min {
			return b.grade, b.status
		}
	}
	return "F", "Very Poor"
}

// Recommendation messages, in the order they are checked.
const (
	RecommendCoverage  = "Increase test coverage to at least 80%"
	RecommendSecurity  = "Address security vulnerabilities identified by Bandit and Safety"
	RecommendStyle     = "Fix code style violations identified by Flake8"
	RecommendExcellent = "Code quality is excellent! Keep up the good work!"
)

// Recommendations lists improvements for metrics below their thresholds.
func Recommendations(coverage, security, style float64) []string {
	var recs []string
	if coverage < 80 {
		recs = append(recs, RecommendCoverage)
	}
	if security < 90 {
		recs = append(recs, RecommendSecurity)
	}
	if style < 90 {
		recs = append(recs, RecommendStyle)
	}
	if len(recs) == 0 {
		recs = append(recs, RecommendExcellent)
	}
	return recs
}
