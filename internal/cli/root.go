// Package cli implements the quality-index command.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/build-flow-labs/qualitygate/internal/publish"
	"github.com/build-flow-labs/qualitygate/internal/quality"
	"github.com/build-flow-labs/qualitygate/internal/toolrun"
	"github.com/spf13/cobra"
)

// ErrGateFailed is returned when the overall score is below the passing score.
var ErrGateFailed = errors.New("quality gate failed")

// statusPublisher is satisfied by *publish.StatusPublisher.
type statusPublisher interface {
	Publish(ctx context.Context, t publish.Target, r *quality.Report) error
}

// app holds the collaborators the command needs, so tests can swap them.
type app struct {
	newRunner    func(dir string, timeout time.Duration, logger *slog.Logger) toolrun.Runner
	newPublisher func(ctx context.Context, token string) statusPublisher
	getenv       func(string) string

	configPath   string
	jsonOutput   bool
	logLevel     string
	githubStatus bool
	githubRepo   string
	commitSHA    string
}

func defaultApp() *app {
	return &app{
		newRunner: func(dir string, timeout time.Duration, logger *slog.Logger) toolrun.Runner {
			return toolrun.NewInvoker(dir, timeout, logger)
		},
		newPublisher: func(ctx context.Context, token string) statusPublisher {
			p := publish.NewStatusPublisher(ctx, token)
			if u := actionsRunURL(os.Getenv); u != "" {
				p.WithTargetURL(u)
			}
			return p
		},
		getenv: os.Getenv,
	}
}

// NewRootCmd builds the quality-index command.
func NewRootCmd() *cobra.Command {
	return newRootCmd(defaultApp())
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quality-index [project-root]",
		Short: "Calculate the code quality index for a project",
		Long: `Runs the project's test suite under coverage, the style linter, and reads
security scanner reports, then combines three scores into a quality index.

Metrics and weights:
  Test Coverage    40%  TOTAL line of the coverage report
  Security Score   40%  Bandit and Safety JSON reports
  Style Score      20%  linter violation count

The report is written to code-quality/reports/metrics/quality-index.json
under the project root. Exits 1 when the overall score is below 70.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			return a.run(cmd, root)
		},
	}

	defaultLevel := a.getenv("LOG_LEVEL")
	if defaultLevel == "" {
		defaultLevel = "warn"
	}

	cmd.Flags().StringVar(&a.configPath, "config", "", "Config file (default: <project-root>/code-quality/configs/quality-index.yaml)")
	cmd.Flags().BoolVar(&a.jsonOutput, "json", false, "Print the report as JSON instead of the formatted summary")
	cmd.Flags().StringVar(&a.logLevel, "log-level", defaultLevel, "Log level: debug, info, warn, error")
	cmd.Flags().BoolVar(&a.githubStatus, "github-status", false, "Publish the result as a GitHub commit status (needs GITHUB_TOKEN)")
	cmd.Flags().StringVar(&a.githubRepo, "github-repo", a.getenv("GITHUB_REPOSITORY"), "Repository for --github-status, as owner/name")
	cmd.Flags().StringVar(&a.commitSHA, "commit-sha", a.getenv("GITHUB_SHA"), "Commit SHA for --github-status")

	return cmd
}

// Execute runs the command and returns the process exit code.
func Execute(ctx context.Context) int {
	return execute(ctx, NewRootCmd())
}

func execute(ctx context.Context, cmd *cobra.Command) (code int) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Error calculating quality index: %v\n", r)
			code = 1
		}
	}()

	err := cmd.ExecuteContext(ctx)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrGateFailed):
		return 1
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "Error calculating quality index: %v\n", err)
		return 1
	}
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

// actionsRunURL links to the current GitHub Actions run, if there is one.
func actionsRunURL(getenv func(string) string) string {
	server, repo, runID := getenv("GITHUB_SERVER_URL"), getenv("GITHUB_REPOSITORY"), getenv("GITHUB_RUN_ID")
	if server == "" || repo == "" || runID == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s/actions/runs/%s", strings.TrimSuffix(server, "/"), repo, runID)
}
