// Package metrics turns raw tool output into bounded quality scores.
//
// Each extractor recovers locally from tool, parse and missing-file failures
// by substituting a documented default, and records which path it took in
// the Result so callers and tests can tell a measurement from a fallback.
package metrics

import "math"

// Metric names as they appear in the quality report.
const (
	NameCoverage = "test_coverage"
	NameSecurity = "security_score"
	NameStyle    = "style_score"
)

// Outcome records how a score was obtained.
type Outcome string

const (
	// Measured means the score was derived from tool output.
	Measured Outcome = "measured"
	// Fallback means the tool output was unavailable and a default was used.
	Fallback Outcome = "fallback"
)

// Result is a single metric score in [0, 100].
type Result struct {
	Name     string
	Score    float64
	Outcome  Outcome
	Reason   string
	Findings []string
}

func measured(name string, score float64, findings []string) Result {
	return Result{Name: name, Score: Clamp(score), Outcome: Measured, Findings: findings}
}

func fallback(name string, score float64, reason string) Result {
	return Result{Name: name, Score: Clamp(score), Outcome: Fallback, Reason: reason}
}

// Clamp bounds a score to [0, 100]. NaN maps to 0.
func Clamp(score float64) float64 {
	switch {
	case math.IsNaN(score), score < 0:
		return 0
	case score > 100:
		return 100
	default:
		return score
	}
}

// deduct returns min(count*per, limit).
func deduct(count int, per, limit float64) float64 {
	return math.Min(float64(count)*per, limit)
}
