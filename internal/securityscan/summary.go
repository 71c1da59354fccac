package securityscan

import (
	"fmt"
	"strings"
)

// Summary contains counts of findings by severity.
type Summary struct {
	High    int `json:"high"`
	Medium  int `json:"medium"`
	Low     int `json:"low"`
	Unknown int `json:"unknown"`
	Total   int `json:"total"`
}

func (s *Summary) add(severity string) {
	switch NormalizeSeverity(severity) {
	case SeverityHigh:
		s.High++
	case SeverityMedium:
		s.Medium++
	case SeverityLow:
		s.Low++
	default:
		s.Unknown++
	}
}

// String renders the non-zero severity buckets, e.g. "high=1, medium=2".
func (s Summary) String() string {
	var parts []string
	if s.High > 0 {
		parts = append(parts, fmt.Sprintf("high=%d", s.High))
	}
	if s.Medium > 0 {
		parts = append(parts, fmt.Sprintf("medium=%d", s.Medium))
	}
	if s.Low > 0 {
		parts = append(parts, fmt.Sprintf("low=%d", s.Low))
	}
	if s.Unknown > 0 {
		parts = append(parts, fmt.Sprintf("unknown=%d", s.Unknown))
	}
	return strings.Join(parts, ", ")
}

// Summarize counts Bandit issues by severity. Total is the report's raw
// finding count, which may exceed the decoded issues.
func (r *BanditReport) Summarize() Summary {
	s := Summary{Total: r.Count}
	for _, issue := range r.Issues {
		s.add(issue.Severity)
	}
	s.Unknown += r.Count - len(r.Issues)
	return s
}

// Summarize counts Safety vulnerabilities by severity.
func (r *SafetyReport) Summarize() Summary {
	s := Summary{Total: r.Count}
	for _, v := range r.Vulnerabilities {
		s.add(v.Severity)
	}
	s.Unknown += r.Count - len(r.Vulnerabilities)
	return s
}
