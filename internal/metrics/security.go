package metrics

import (
	"fmt"

	"github.com/build-flow-labs/qualitygate/internal/securityscan"
)

// Security deductions. Each report's deduction is capped independently.
const (
	banditPenalty = 10.0
	banditCap     = 50.0
	safetyPenalty = 15.0
	safetyCap     = 30.0
)

// Security scores the Bandit and Safety reports at the given paths.
//
// Scoring:
//   - Start at 100
//   - Bandit: -10 per finding, at most -50
//   - Safety: -15 per vulnerability, at most -30
//   - Floor at 0
//
// A missing or malformed report contributes no deduction.
func Security(banditPath, safetyPath string) Result {
	score := 100.0
	var findings, problems []string

	if br, err := securityscan.LoadBanditReport(banditPath); err != nil {
		problems = append(problems, "bandit: "+err.Error())
	} else {
		score -= deduct(br.Count, banditPenalty, banditCap)
		findings = append(findings, describe("bandit", "issue", br.Summarize()))
	}

	if sr, err := securityscan.LoadSafetyReport(safetyPath); err != nil {
		problems = append(problems, "safety: "+err.Error())
	} else {
		score -= deduct(sr.Count, safetyPenalty, safetyCap)
		findings = append(findings, describe("safety", "vulnerability", sr.Summarize()))
	}

	if len(problems) == 2 {
		return fallback(NameSecurity, score, problems[0]+"; "+problems[1])
	}

	res := measured(NameSecurity, score, findings)
	if len(problems) == 1 {
		res.Reason = problems[0]
	}
	return res
}

func describe(scanner, noun string, s securityscan.Summary) string {
	if s.Total == 0 {
		return fmt.Sprintf("%s: no findings", scanner)
	}
	return fmt.Sprintf("%s: %d %s(s) (%s)", scanner, s.Total, noun, s)
}
