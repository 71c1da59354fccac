package metrics

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/build-flow-labs/qualitygate/internal/toolrun"
)

// ErrMarkerNotFound is returned when coverage output has no TOTAL line.
var ErrMarkerNotFound = errors.New("no TOTAL line in coverage output")

// ParseCoverageTotal extracts the percentage from the first line containing
// "TOTAL" in a tabular coverage report, e.g.
//
//	TOTAL      120     18    85%
func ParseCoverageTotal(text string) (float64, error) {
	for _, line := range strings.Split(text, "\n") {
		if !strings.Contains(line, "TOTAL") {
			continue
		}
		fields := strings.Fields(line)
		last := strings.ReplaceAll(fields[len(fields)-1], "%", "")
		pct, err := strconv.ParseFloat(last, 64)
		if err != nil {
			return 0, fmt.Errorf("parsing coverage %q: %w", last, err)
		}
		if math.IsNaN(pct) || math.IsInf(pct, 0) {
			return 0, fmt.Errorf("coverage %q is not a finite number", last)
		}
		return pct, nil
	}
	return 0, ErrMarkerNotFound
}

// Coverage runs the test suite under coverage, then the coverage report,
// and scores the TOTAL percentage. Both commands must exit 0. Any failure
// scores 0.
func Coverage(ctx context.Context, r toolrun.Runner, run, report toolrun.Command) Result {
	if out := r.Run(ctx, run); !out.Succeeded() {
		return fallback(NameCoverage, 0, toolFailure(out))
	}

	out := r.Run(ctx, report)
	if !out.Succeeded() {
		return fallback(NameCoverage, 0, toolFailure(out))
	}

	pct, err := ParseCoverageTotal(out.Stdout)
	if err != nil {
		return fallback(NameCoverage, 0, err.Error())
	}
	return measured(NameCoverage, pct, nil)
}

// toolFailure describes why an invocation did not succeed.
func toolFailure(out *toolrun.Output) string {
	if out.Err != nil {
		return out.Err.Error()
	}
	return fmt.Sprintf("%s exited with status %d", out.Command.Name, out.ExitCode)
}
