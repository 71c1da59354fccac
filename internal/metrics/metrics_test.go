package metrics

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/build-flow-labs/qualitygate/internal/toolrun"
)

// fakeRunner returns canned outputs keyed by command name.
type fakeRunner struct {
	outputs map[string]*toolrun.Output
	calls   []string
}

func (f *fakeRunner) Run(_ context.Context, cmd toolrun.Command) *toolrun.Output {
	f.calls = append(f.calls, cmd.Name)
	out, ok := f.outputs[cmd.Name]
	if !ok {
		return &toolrun.Output{Command: cmd, ExitCode: -1, Err: errors.New("not found")}
	}
	out.Command = cmd
	return out
}

var (
	runCmd    = toolrun.Command{Name: "coverage", Args: []string{"run", "-m", "pytest"}}
	reportCmd = toolrun.Command{Name: "coverage-report"}
	lintCmd   = toolrun.Command{Name: "flake8", Args: []string{"--count", "--quiet"}}
)

const sampleCoverageReport = `Name                  Stmts   Miss  Cover   Missing
---------------------------------------------------
src/__init__.py           0      0   100%
src/hello_world.py       20      3    85%   61-63
---------------------------------------------------
TOTAL                    20      3    85%
`

func TestParseCoverageTotal(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    float64
		wantErr bool
	}{
		{name: "standard report", text: sampleCoverageReport, want: 85},
		{name: "fractional", text: "TOTAL 100 7 93.33%", want: 93.33},
		{name: "no percent sign", text: "TOTAL 10 0 100", want: 100},
		{name: "first TOTAL wins", text: "TOTAL 1 1 40%\nTOTAL 1 0 90%", want: 40},
		{name: "missing marker", text: "Name Stmts Miss Cover\nsrc 1 0 100%", wantErr: true},
		{name: "empty", text: "", wantErr: true},
		{name: "unparsable", text: "TOTAL 20 3 n/a", wantErr: true},
		{name: "marker only", text: "TOTAL", wantErr: true},
		{name: "nan", text: "TOTAL 1 1 nan%", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCoverageTotal(tt.text)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseCoverageTotal() = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := ParseCoverageTotal("nothing here"); !errors.Is(err, ErrMarkerNotFound) {
		t.Errorf("expected ErrMarkerNotFound, got %v", err)
	}
}

func TestCoverage(t *testing.T) {
	tests := []struct {
		name        string
		outputs     map[string]*toolrun.Output
		wantScore   float64
		wantOutcome Outcome
	}{
		{
			name: "measured",
			outputs: map[string]*toolrun.Output{
				"coverage":        {ExitCode: 0},
				"coverage-report": {ExitCode: 0, Stdout: sampleCoverageReport},
			},
			wantScore:   85,
			wantOutcome: Measured,
		},
		{
			name: "test run fails",
			outputs: map[string]*toolrun.Output{
				"coverage":        {ExitCode: 1},
				"coverage-report": {ExitCode: 0, Stdout: sampleCoverageReport},
			},
			wantScore:   0,
			wantOutcome: Fallback,
		},
		{
			name: "report fails",
			outputs: map[string]*toolrun.Output{
				"coverage":        {ExitCode: 0},
				"coverage-report": {ExitCode: 2, Stdout: sampleCoverageReport},
			},
			wantScore:   0,
			wantOutcome: Fallback,
		},
		{
			name:        "tool missing",
			outputs:     map[string]*toolrun.Output{},
			wantScore:   0,
			wantOutcome: Fallback,
		},
		{
			name: "no TOTAL line",
			outputs: map[string]*toolrun.Output{
				"coverage":        {ExitCode: 0},
				"coverage-report": {ExitCode: 0, Stdout: "No data to report."},
			},
			wantScore:   0,
			wantOutcome: Fallback,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeRunner{outputs: tt.outputs}
			res := Coverage(context.Background(), r, runCmd, reportCmd)
			if res.Name != NameCoverage {
				t.Errorf("Name = %q", res.Name)
			}
			if res.Score != tt.wantScore {
				t.Errorf("Score = %v, want %v", res.Score, tt.wantScore)
			}
			if res.Outcome != tt.wantOutcome {
				t.Errorf("Outcome = %q, want %q (reason %q)", res.Outcome, tt.wantOutcome, res.Reason)
			}
			if res.Outcome == Fallback && res.Reason == "" {
				t.Error("fallback must carry a reason")
			}
		})
	}
}

func TestCoverageSkipsReportWhenRunFails(t *testing.T) {
	r := &fakeRunner{outputs: map[string]*toolrun.Output{"coverage": {ExitCode: 1}}}
	Coverage(context.Background(), r, runCmd, reportCmd)
	if len(r.calls) != 1 {
		t.Errorf("expected only the test run to execute, got %v", r.calls)
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func banditJSON(n int) string {
	items := make([]string, n)
	for i := range items {
		items[i] = `{"test_id": "B101", "issue_severity": "LOW"}`
	}
	return `{"results": [` + strings.Join(items, ",") + `]}`
}

func safetyJSON(n int) string {
	items := make([]string, n)
	for i := range items {
		items[i] = `{"vulnerability_id": "1", "package_name": "flask"}`
	}
	return `{"vulnerabilities": [` + strings.Join(items, ",") + `]}`
}

func TestSecurityBanditDeductions(t *testing.T) {
	tests := []struct {
		findings int
		want     float64
	}{
		{0, 100},
		{1, 90},
		{3, 70},
		{5, 50},
		{6, 50},
		{40, 50},
	}

	for _, tt := range tests {
		dir := t.TempDir()
		bandit := writeFile(t, dir, "bandit.json", banditJSON(tt.findings))
		res := Security(bandit, filepath.Join(dir, "missing.json"))
		if res.Score != tt.want {
			t.Errorf("%d findings: Score = %v, want %v", tt.findings, res.Score, tt.want)
		}
		if res.Outcome != Measured {
			t.Errorf("%d findings: Outcome = %q, want measured", tt.findings, res.Outcome)
		}
	}
}

func TestSecuritySafetyDeductions(t *testing.T) {
	tests := []struct {
		vulns int
		want  float64
	}{
		{0, 100},
		{1, 85},
		{2, 70},
		{3, 70},
	}

	for _, tt := range tests {
		dir := t.TempDir()
		safety := writeFile(t, dir, "safety.json", safetyJSON(tt.vulns))
		res := Security(filepath.Join(dir, "missing.json"), safety)
		if res.Score != tt.want {
			t.Errorf("%d vulns: Score = %v, want %v", tt.vulns, res.Score, tt.want)
		}
	}
}

func TestSecurityCombinedNeverNegative(t *testing.T) {
	dir := t.TempDir()
	bandit := writeFile(t, dir, "bandit.json", banditJSON(100))
	safety := writeFile(t, dir, "safety.json", safetyJSON(100))

	res := Security(bandit, safety)
	if res.Score != 20 {
		t.Errorf("Score = %v, want 20", res.Score)
	}
	if res.Score < 0 {
		t.Error("security score must never be negative")
	}
	if len(res.Findings) != 2 {
		t.Errorf("expected a finding line per scanner, got %v", res.Findings)
	}
}

func TestSecurityMissingAndMalformed(t *testing.T) {
	dir := t.TempDir()
	broken := writeFile(t, dir, "bandit.json", `{"results": [`)
	listOnly := writeFile(t, dir, "safety.json", `[1, 2, 3]`)

	res := Security(broken, listOnly)
	if res.Score != 100 {
		t.Errorf("Score = %v, want 100", res.Score)
	}
	if res.Outcome != Fallback {
		t.Errorf("Outcome = %q, want fallback", res.Outcome)
	}
	if !strings.Contains(res.Reason, "bandit") || !strings.Contains(res.Reason, "safety") {
		t.Errorf("Reason should mention both scanners: %q", res.Reason)
	}

	res = Security(filepath.Join(dir, "nope.json"), filepath.Join(dir, "nope2.json"))
	if res.Score != 100 || res.Outcome != Fallback {
		t.Errorf("missing reports: got %v/%q", res.Score, res.Outcome)
	}
}

func TestSecurityOneReportMissing(t *testing.T) {
	dir := t.TempDir()
	bandit := writeFile(t, dir, "bandit.json", banditJSON(2))

	res := Security(bandit, filepath.Join(dir, "missing.json"))
	if res.Score != 80 {
		t.Errorf("Score = %v, want 80", res.Score)
	}
	if res.Outcome != Measured {
		t.Errorf("Outcome = %q, want measured", res.Outcome)
	}
	if !strings.Contains(res.Reason, "safety") {
		t.Errorf("Reason should note the missing safety report: %q", res.Reason)
	}
}

func TestParseViolationCount(t *testing.T) {
	tests := []struct {
		text    string
		want    int
		wantErr bool
	}{
		{"", 0, false},
		{"  \n", 0, false},
		{"0\n", 0, false},
		{"12\n", 12, false},
		{"src/a.py\ntests/b.py\n4\n", 4, false},
		{"E501 line too long", 0, true},
		{"-3", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseViolationCount(tt.text)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseViolationCount(%q) error = %v, wantErr %v", tt.text, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseViolationCount(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestStyle(t *testing.T) {
	tests := []struct {
		name        string
		out         *toolrun.Output
		wantScore   float64
		wantOutcome Outcome
	}{
		{"clean", &toolrun.Output{ExitCode: 0, Stdout: "0\n"}, 100, Measured},
		{"empty output", &toolrun.Output{ExitCode: 0}, 100, Measured},
		{"three violations", &toolrun.Output{ExitCode: 0, Stdout: "3\n"}, 94, Measured},
		{"capped", &toolrun.Output{ExitCode: 0, Stdout: "50\n"}, 70, Measured},
		{"linter reports issues", &toolrun.Output{ExitCode: 1, Stdout: "12\n"}, 100, Fallback},
		{"unparsable", &toolrun.Output{ExitCode: 0, Stdout: "garbage"}, 100, Fallback},
		{"not installed", nil, 100, Fallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outputs := map[string]*toolrun.Output{}
			if tt.out != nil {
				outputs["flake8"] = tt.out
			}
			res := Style(context.Background(), &fakeRunner{outputs: outputs}, lintCmd)
			if res.Score != tt.wantScore {
				t.Errorf("Score = %v, want %v", res.Score, tt.wantScore)
			}
			if res.Outcome != tt.wantOutcome {
				t.Errorf("Outcome = %q, want %q", res.Outcome, tt.wantOutcome)
			}
		})
	}
}

func TestStyleFailureIsNotZero(t *testing.T) {
	res := Style(context.Background(), &fakeRunner{}, lintCmd)
	if res.Score != 100.0 {
		t.Fatalf("linter failure must score 100, got %v", res.Score)
	}

	cov := Coverage(context.Background(), &fakeRunner{}, runCmd, reportCmd)
	if cov.Score != 0.0 {
		t.Fatalf("coverage failure must score 0, got %v", cov.Score)
	}
}

func TestClamp(t *testing.T) {
	tests := map[float64]float64{
		-5:    0,
		0:     0,
		42.5:  42.5,
		100:   100,
		180.0: 100,
	}
	for in, want := range tests {
		if got := Clamp(in); got != want {
			t.Errorf("Clamp(%v) = %v, want %v", in, got, want)
		}
	}
}
