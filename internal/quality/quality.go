// Package quality combines metric scores into the code quality index.
//
// The index is a weighted average of test coverage, security and style
// scores. It maps to a letter grade (A+ to F) with a paired status label,
// and produces improvement recommendations for weak metrics.
package quality

import (
	"math"
	"time"

	"github.com/build-flow-labs/qualitygate/internal/metrics"
	"github.com/google/uuid"
)

// Weights for each metric in the overall score. They sum to 1.0.
const (
	WeightCoverage = 0.40
	WeightSecurity = 0.40
	WeightStyle    = 0.20
)

// PassingScore is the lowest overall score that passes the quality gate.
const PassingScore = 70.0

// Metric is one scored input to the index.
type Metric struct {
	Score       float64  `json:"score"`
	Weight      float64  `json:"weight"`
	Description string   `json:"description"`
	Source      string   `json:"source"`
	Reason      string   `json:"reason,omitempty"`
	Findings    []string `json:"findings,omitempty"`
}

// Metrics holds the three scored inputs in report order.
type Metrics struct {
	TestCoverage  Metric `json:"test_coverage"`
	SecurityScore Metric `json:"security_score"`
	StyleScore    Metric `json:"style_score"`
}

// Report is the quality index for a single run.
type Report struct {
	RunID           string    `json:"run_id"`
	Timestamp       time.Time `json:"timestamp"`
	OverallScore    float64   `json:"overall_score"`
	Grade           string    `json:"grade"`
	Status          string    `json:"status"`
	Metrics         Metrics   `json:"metrics"`
	Recommendations []string  `json:"recommendations"`
}

// Passed reports whether the overall score meets PassingScore.
func (r *Report) Passed() bool {
	return r.OverallScore >= PassingScore
}

// Calculate builds a Report from the three metric results.
func Calculate(coverage, security, style metrics.Result) *Report {
	return calculateAt(coverage, security, style, time.Now().UTC())
}

func calculateAt(coverage, security, style metrics.Result, now time.Time) *Report {
	cov := metrics.Clamp(coverage.Score)
	sec := metrics.Clamp(security.Score)
	sty := metrics.Clamp(style.Score)

	overall := OverallScore(cov, sec, sty)
	grade, status := Grade(overall)

	return &Report{
		RunID:        uuid.New().String(),
		Timestamp:    now,
		OverallScore: overall,
		Grade:        grade,
		Status:       status,
		Metrics: Metrics{
			TestCoverage:  newMetric(coverage, cov, WeightCoverage, "Test coverage percentage"),
			SecurityScore: newMetric(security, sec, WeightSecurity, "Security vulnerability assessment"),
			StyleScore:    newMetric(style, sty, WeightStyle, "Code style compliance"),
		},
		Recommendations: Recommendations(cov, sec, sty),
	}
}

func newMetric(r metrics.Result, score, weight float64, description string) Metric {
	return Metric{
		Score:       Round2(score),
		Weight:      weight,
		Description: description,
		Source:      string(r.Outcome),
		Reason:      r.Reason,
		Findings:    r.Findings,
	}
}

// OverallScore is the weighted sum of the clamped scores, rounded to two
// decimal places.
func OverallScore(coverage, security, style float64) float64 {
	return Round2(
		metrics.Clamp(coverage)*WeightCoverage +
			metrics.Clamp(security)*WeightSecurity +
			metrics.Clamp(style)*WeightStyle,
	)
}

// Round2 rounds to two decimal places, halves away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
