// Package report persists and renders quality index reports.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/build-flow-labs/qualitygate/internal/quality"
)

// Save writes r as indented JSON to path, creating parent directories and
// replacing any previous report. The file is written to a temporary sibling
// first so a failed write never leaves a truncated report behind.
func Save(path string, r *quality.Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".quality-index-*.json")
	if err != nil {
		return fmt.Errorf("creating temp report: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("setting report permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing report: %w", err)
	}
	return nil
}

// Load reads a report previously written by Save.
func Load(path string) (*quality.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r quality.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("invalid report JSON: %w", err)
	}
	return &r, nil
}

type metricRow struct {
	label  string
	metric quality.Metric
}

func rows(r *quality.Report) []metricRow {
	return []metricRow{
		{"Test Coverage", r.Metrics.TestCoverage},
		{"Security Score", r.Metrics.SecurityScore},
		{"Style Score", r.Metrics.StyleScore},
	}
}

// Print renders a console summary of r.
func Print(out io.Writer, r *quality.Report) {
	rule := strings.Repeat("=", 60)
	thin := strings.Repeat("─", 40)

	fmt.Fprintln(out)
	fmt.Fprintln(out, rule)
	fmt.Fprintln(out, "CODE QUALITY INDEX REPORT")
	fmt.Fprintln(out, rule)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Overall Score:\t%s/100\n", formatScore(r.OverallScore))
	fmt.Fprintf(w, "Grade:\t%s\n", r.Grade)
	fmt.Fprintf(w, "Status:\t%s\n", r.Status)
	fmt.Fprintf(w, "Timestamp:\t%s\n", r.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(w, "Run ID:\t%s\n", r.RunID)
	w.Flush()

	fmt.Fprintln(out)
	fmt.Fprintln(out, "DETAILED METRICS:")
	fmt.Fprintln(out, thin)
	for _, row := range rows(r) {
		printMetric(out, row)
	}

	fmt.Fprintln(out, "RECOMMENDATIONS:")
	fmt.Fprintln(out, thin)
	for i, rec := range r.Recommendations {
		fmt.Fprintf(out, "%d. %s\n", i+1, rec)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, rule)
}

func printMetric(out io.Writer, row metricRow) {
	m := row.metric
	w := tabwriter.NewWriter(out, 0, 4, 1, ' ', 0)

	fmt.Fprintf(out, "%s:\n", row.label)
	fmt.Fprintf(w, "  Score:\t%s/100\n", formatScore(m.Score))
	fmt.Fprintf(w, "  Weight:\t%s%%\n", formatScore(m.Weight*100))
	fmt.Fprintf(w, "  Description:\t%s\n", m.Description)
	if m.Source == "fallback" {
		fmt.Fprintf(w, "  Source:\tfallback (%s)\n", m.Reason)
	}
	w.Flush()
	for _, f := range m.Findings {
		fmt.Fprintf(out, "    - %s\n", f)
	}
	fmt.Fprintln(out)
}

// formatScore prints scores without trailing zeros: 93, 72.5, 96.67.
func formatScore(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}
