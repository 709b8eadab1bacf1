package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/aelexs/dictsmoke/internal/auth"
	"github.com/aelexs/dictsmoke/internal/config"
	"github.com/aelexs/dictsmoke/internal/domain"
	"github.com/aelexs/dictsmoke/internal/lifecycle"
	"github.com/aelexs/dictsmoke/internal/report"
	"github.com/aelexs/dictsmoke/internal/smoke"
)

type smokeFlags struct {
	suites    []string
	parallel  bool
	reportDir string
	runID     string
	noReport  bool
}

func newSmokeCmd(c *cli) *cobra.Command {
	var f smokeFlags

	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Run smoke suites against the dictionary service",
		Long: fmt.Sprintf(`Run smoke suites against the dictionary service, print a summary table,
write a JUnit report and publish a one-line summary.

Suites: %v (default: all, in that order).`, smoke.SuiteNames()),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configure := func(cfg *config.Config) error {
				if cmd.Flags().Changed("report-dir") {
					cfg.Report.Dir = f.reportDir
				}
				return nil
			}
			return c.lifecycle(cmd, configure, func(ctx context.Context, app *lifecycle.App) error {
				return runSmoke(ctx, newDeps(app, c), f)
			})
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVar(&f.suites, "suite", nil, "suite to run; repeatable")
	flags.BoolVar(&f.parallel, "parallel", false, "run suites concurrently")
	flags.StringVar(&f.reportDir, "report-dir", "", "JUnit report directory (overrides REPORT_DIR)")
	flags.StringVar(&f.runID, "run-id", "", "reuse a run ID (UUID) so resources from an interrupted run are cleaned up")
	flags.BoolVar(&f.noReport, "no-report", false, "skip the JUnit file and summary publication")
	return cmd
}

func runSmoke(ctx context.Context, d *deps, f smokeFlags) error {
	runID := domain.NewRunID()
	if f.runID != "" {
		id, err := domain.ParseRunID(f.runID)
		if err != nil {
			return fmt.Errorf("--run-id %q: %w", f.runID, err)
		}
		runID = id
	}
	logger := d.logger.With(slog.String("run_id", runID.String()))

	session := auth.NewSession()
	client, err := d.dictClient(session)
	if err != nil {
		return err
	}

	suites, err := smoke.BuiltinSuites(client, runID, f.suites...)
	if err != nil {
		return err
	}

	runnerCfg := smoke.RunnerConfig{Session: session, Parallel: f.parallel}
	if needsAuth(suites) {
		provider, cleanup, err := d.tokenProvider(ctx)
		defer cleanup()
		if err != nil {
			return err
		}
		runnerCfg.Refresher = provider
	}

	logger.Info("starting smoke run",
		slog.String("service", client.BaseURL()),
		slog.Int("suites", len(suites)),
		slog.Bool("parallel", f.parallel),
	)
	res, runErr := smoke.NewRunner(runnerCfg).Run(ctx, runID, suites)

	report.WriteTable(d.cli.stdout, res, isTerminal(d.cli.stdout))

	// Partial results of an aborted run are still reported.
	if !f.noReport {
		if err := publishResults(context.WithoutCancel(ctx), d, logger, res); err != nil {
			if runErr != nil {
				return fmt.Errorf("%w (and %w)", runErr, err)
			}
			return err
		}
	}
	if runErr != nil {
		return runErr
	}

	if _, failed, _ := res.Counts(); failed > 0 {
		return fmt.Errorf("%w: %d smoke case(s) failed", domain.ErrCheckFailed, failed)
	}
	return nil
}

func publishResults(ctx context.Context, d *deps, logger *slog.Logger, res smoke.RunResult) error {
	path, err := report.WriteJUnitFile(d.cfg.Report.Dir, res)
	if err != nil {
		return err
	}
	logger.Info("junit report written", slog.String("path", path))

	pub, err := d.publisher(ctx)
	if err != nil {
		return err
	}
	return pub.Publish(ctx, res)
}

func needsAuth(suites []smoke.Suite) bool {
	for _, s := range suites {
		if s.RequiresAuth {
			return true
		}
	}
	return false
}

// isTerminal reports whether w is an interactive terminal, to decide on
// table colors.
func isTerminal(w any) bool {
	f, ok := w.(*os.File)
	return ok && readline.IsTerminal(int(f.Fd()))
}
