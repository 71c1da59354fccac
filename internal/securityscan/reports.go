// Package securityscan parses the JSON reports written by Python security
// scanners: Bandit (static analysis findings) and Safety (vulnerable
// dependencies).
//
// Finding counts are taken from the length of each report's list, whatever
// shape the individual items have. Items are also decoded best-effort into
// typed findings so they can be summarised by severity.
package securityscan

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Severity levels for findings
const (
	SeverityHigh    = "HIGH"
	SeverityMedium  = "MEDIUM"
	SeverityLow     = "LOW"
	SeverityUnknown = "UNKNOWN"
)

// ErrReportMissing is returned when a report file does not exist.
var ErrReportMissing = errors.New("report file not found")

// BanditIssue is a single Bandit finding.
type BanditIssue struct {
	TestID     string `json:"test_id"`
	TestName   string `json:"test_name"`
	Filename   string `json:"filename"`
	LineNumber int    `json:"line_number"`
	Severity   string `json:"issue_severity"`
	Confidence string `json:"issue_confidence"`
	Text       string `json:"issue_text"`
}

// SafetyVulnerability is a single vulnerable dependency reported by Safety.
type SafetyVulnerability struct {
	ID              string `json:"vulnerability_id"`
	Package         string `json:"package_name"`
	AnalyzedVersion string `json:"analyzed_version"`
	Severity        string `json:"severity"`
	Advisory        string `json:"advisory"`
}

// BanditReport is the parsed content of bandit-report.json.
type BanditReport struct {
	// Count is the number of entries in "results".
	Count  int
	Issues []BanditIssue
}

// SafetyReport is the parsed content of safety-report.json.
type SafetyReport struct {
	// Count is the number of entries in "vulnerabilities".
	Count           int
	Vulnerabilities []SafetyVulnerability
}

// ParseBanditJSON parses Bandit JSON output. A missing "results" key means
// zero findings.
func ParseBanditJSON(data []byte) (*BanditReport, error) {
	items, err := listField(data, "results")
	if err != nil {
		return nil, err
	}
	r := &BanditReport{Count: len(items)}
	for _, raw := range items {
		var issue BanditIssue
		if json.Unmarshal(raw, &issue) == nil {
			r.Issues = append(r.Issues, issue)
		}
	}
	return r, nil
}

// ParseSafetyJSON parses Safety JSON output. A missing "vulnerabilities" key
// means zero findings.
func ParseSafetyJSON(data []byte) (*SafetyReport, error) {
	items, err := listField(data, "vulnerabilities")
	if err != nil {
		return nil, err
	}
	r := &SafetyReport{Count: len(items)}
	for _, raw := range items {
		var v SafetyVulnerability
		if json.Unmarshal(raw, &v) == nil {
			r.Vulnerabilities = append(r.Vulnerabilities, v)
		}
	}
	return r, nil
}

// LoadBanditReport reads and parses a Bandit report file.
func LoadBanditReport(path string) (*BanditReport, error) {
	data, err := readReport(path)
	if err != nil {
		return nil, err
	}
	return ParseBanditJSON(data)
}

// LoadSafetyReport reads and parses a Safety report file.
func LoadSafetyReport(path string) (*SafetyReport, error) {
	data, err := readReport(path)
	if err != nil {
		return nil, err
	}
	return ParseSafetyJSON(data)
}

func readReport(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrReportMissing)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// listField decodes a top-level JSON object and returns the list stored
// under key.
func listField(data []byte, key string) ([]json.RawMessage, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid report JSON: %w", err)
	}
	raw, ok := doc[key]
	if !ok || string(raw) == "null" {
		return nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("field %q is not a list: %w", key, err)
	}
	return items, nil
}

// NormalizeSeverity converts scanner severity strings to standard form.
func NormalizeSeverity(severity string) string {
	switch strings.ToUpper(strings.TrimSpace(severity)) {
	case "CRITICAL", "HIGH":
		return SeverityHigh
	case "MEDIUM", "MODERATE", "MED":
		return SeverityMedium
	case "LOW":
		return SeverityLow
	default:
		return SeverityUnknown
	}
}
