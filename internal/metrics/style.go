package metrics

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/build-flow-labs/qualitygate/internal/toolrun"
)

const (
	stylePenalty = 2.0
	styleCap     = 30.0
)

// ParseViolationCount reads the total printed by a linter run with --count.
// The total is the last non-empty line; empty output means no violations.
func ParseViolationCount(text string) (int, error) {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	if last == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(last)
	if err != nil {
		return 0, fmt.Errorf("parsing violation count %q: %w", last, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative violation count %d", n)
	}
	return n, nil
}

// Style runs the linter in count-only mode and deducts 2 points per
// violation, at most 30. The count is only read from a run that exited 0.
//
// Unlike the other extractors, a failed run or unreadable output scores 100:
// no evidence of violations is not treated as evidence of bad style.
func Style(ctx context.Context, r toolrun.Runner, lint toolrun.Command) Result {
	out := r.Run(ctx, lint)
	if !out.Succeeded() {
		return fallback(NameStyle, 100, toolFailure(out))
	}

	n, err := ParseViolationCount(out.Stdout)
	if err != nil {
		return fallback(NameStyle, 100, err.Error())
	}

	var findings []string
	if n > 0 {
		findings = []string{fmt.Sprintf("%d style violation(s)", n)}
	}
	return measured(NameStyle, 100-deduct(n, stylePenalty, styleCap), findings)
}
