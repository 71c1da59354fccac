package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/build-flow-labs/qualitygate/internal/config"
	"github.com/build-flow-labs/qualitygate/internal/metrics"
	"github.com/build-flow-labs/qualitygate/internal/publish"
	"github.com/build-flow-labs/qualitygate/internal/quality"
	"github.com/build-flow-labs/qualitygate/internal/report"
	"github.com/build-flow-labs/qualitygate/internal/toolrun"
	"github.com/spf13/cobra"
)

func (a *app) run(cmd *cobra.Command, root string) error {
	logger, err := newLogger(cmd.ErrOrStderr(), a.logLevel)
	if err != nil {
		// an unusable LOG_LEVEL shared with other services must not fail the gate
		if cmd.Flags().Changed("log-level") {
			return err
		}
		logger, _ = newLogger(cmd.ErrOrStderr(), "warn")
		logger.Warn("ignoring LOG_LEVEL", "error", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("cannot access %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", root)
	}
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}

	cfg, err := config.Load(root, a.configPath)
	if err != nil {
		return err
	}
	paths := cfg.Resolve(root)
	out := cmd.OutOrStdout()

	if !a.jsonOutput {
		fmt.Fprintln(out, "Calculating code quality index...")
	}
	logger.Info("calculating quality index", "root", root, "output", paths.Output)

	rep := a.calculate(cmd, cfg, paths, root, logger)

	// killed tools fall back to default scores, so an interrupted run must
	// not overwrite the last report
	if err := cmd.Context().Err(); err != nil {
		return fmt.Errorf("interrupted before the report was saved: %w", err)
	}

	if err := report.Save(paths.Output, rep); err != nil {
		return err
	}
	logger.Info("quality report saved", "path", paths.Output, "run_id", rep.RunID)

	if a.jsonOutput {
		data, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
		fmt.Fprintln(out, string(data))
	} else {
		fmt.Fprintf(out, "Quality report saved to: %s\n", paths.Output)
		report.Print(out, rep)
	}

	if a.githubStatus {
		a.publishStatus(cmd, rep, logger)
	}

	if !rep.Passed() {
		return fmt.Errorf("%w: score %.2f is below %.0f", ErrGateFailed, rep.OverallScore, quality.PassingScore)
	}
	return nil
}

// calculate runs the three extractors in order and aggregates them.
func (a *app) calculate(cmd *cobra.Command, cfg *config.Config, paths config.Paths, root string, logger *slog.Logger) *quality.Report {
	ctx := cmd.Context()
	runner := a.newRunner(root, cfg.Timeout, logger)

	// config.Validate guarantees the commands are non-empty
	covRun, _ := toolrun.NewCommand(cfg.Coverage.Run)
	covReport, _ := toolrun.NewCommand(cfg.Coverage.Report)
	lint, _ := toolrun.NewCommand(cfg.Style.Command)

	results := []metrics.Result{
		metrics.Coverage(ctx, runner, covRun, covReport),
		metrics.Security(paths.BanditReport, paths.SafetyReport),
		metrics.Style(ctx, runner, lint),
	}
	for _, r := range results {
		if r.Outcome == metrics.Fallback {
			logger.Warn("metric fell back to default", "metric", r.Name, "score", r.Score, "reason", r.Reason)
		} else {
			logger.Debug("metric measured", "metric", r.Name, "score", r.Score)
		}
	}

	return quality.Calculate(results[0], results[1], results[2])
}

// publishStatus posts the commit status. Failures are logged only; the
// report on disk is the source of truth.
func (a *app) publishStatus(cmd *cobra.Command, rep *quality.Report, logger *slog.Logger) {
	token := a.getenv("GITHUB_TOKEN")
	if token == "" {
		logger.Warn("skipping commit status: GITHUB_TOKEN is not set")
		return
	}
	target, err := publish.ParseTarget(a.githubRepo, a.commitSHA)
	if err != nil {
		logger.Warn("skipping commit status", "error", err)
		return
	}

	ctx := cmd.Context()
	if err := a.newPublisher(ctx, token).Publish(ctx, target, rep); err != nil {
		logger.Warn("publishing commit status failed", "error", err)
		return
	}
	logger.Info("published commit status",
		"repo", target.Owner+"/"+target.Repo,
		"sha", target.SHA,
		"state", publish.State(rep),
	)
}
