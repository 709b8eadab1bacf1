package smoke

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/aelexs/dictsmoke/internal/auth"
	"github.com/aelexs/dictsmoke/internal/domain"
	"github.com/aelexs/dictsmoke/internal/observability"
)

var tracer = otel.Tracer("dictsmoke/smoke")

var casesTotal metric.Int64Counter

func init() {
	m := otel.Meter("dictsmoke/smoke")
	casesTotal, _ = m.Int64Counter("smoke_cases_total",
		metric.WithDescription("Smoke cases run, by suite and outcome"),
	)
}

// DefaultTeardownTimeout bounds teardown when the run context is already
// cancelled.
const DefaultTeardownTimeout = 30 * time.Second

// Refresher keeps a session's token usable. *auth.TokenProvider
// implements it.
type Refresher interface {
	EnsureFresh(ctx context.Context, s *auth.Session) (bool, error)
}

// RunnerConfig configures a Runner.
type RunnerConfig struct {
	// Refresher and Session are required when any suite RequiresAuth.
	Refresher Refresher
	Session   *auth.Session
	// Parallel runs suites concurrently after a single up-front refresh.
	Parallel        bool
	TeardownTimeout time.Duration
	Clock           domain.Clock
}

// Runner executes suites and collects results.
type Runner struct {
	refresher       Refresher
	session         *auth.Session
	parallel        bool
	teardownTimeout time.Duration
	clock           domain.Clock
}

func NewRunner(cfg RunnerConfig) *Runner {
	if cfg.TeardownTimeout <= 0 {
		cfg.TeardownTimeout = DefaultTeardownTimeout
	}
	if cfg.Clock == nil {
		cfg.Clock = domain.RealClock{}
	}
	return &Runner{
		refresher:       cfg.Refresher,
		session:         cfg.Session,
		parallel:        cfg.Parallel,
		teardownTimeout: cfg.TeardownTimeout,
		clock:           cfg.Clock,
	}
}

// Run executes suites in order, or concurrently in parallel mode. Step
// failures are recorded in the result and do not make Run fail. Run
// returns an error wrapping domain.ErrRunAborted when the session cannot
// be refreshed or ctx is cancelled between suites; the result then holds
// the suites that completed.
func (r *Runner) Run(ctx context.Context, runID domain.RunID, suites []Suite) (RunResult, error) {
	ctx, span := tracer.Start(ctx, "smoke.run")
	defer span.End()
	span.SetAttributes(
		attribute.String("smoke.run_id", runID.String()),
		attribute.Int("smoke.suites", len(suites)),
		attribute.Bool("smoke.parallel", r.parallel),
	)

	result := RunResult{RunID: runID, Started: r.clock.Now()}

	var err error
	if r.parallel {
		result.Suites, err = r.runParallel(ctx, suites)
	} else {
		result.Suites, err = r.runSequential(ctx, suites)
	}
	result.Duration = r.clock.Now().Sub(result.Started)
	if err != nil {
		return result, observability.FailSpan(span, err)
	}

	passed, failed, skipped := result.Counts()
	observability.LoggerFromContext(ctx).Info("smoke run complete",
		slog.String("run_id", runID.String()),
		slog.Int("passed", passed),
		slog.Int("failed", failed),
		slog.Int("skipped", skipped),
		slog.Duration("duration", result.Duration),
	)
	return result, nil
}

func (r *Runner) runSequential(ctx context.Context, suites []Suite) ([]SuiteResult, error) {
	results := make([]SuiteResult, 0, len(suites))
	for _, s := range suites {
		if err := ctx.Err(); err != nil {
			return results, fmt.Errorf("%w: before suite %s: %w", domain.ErrRunAborted, s.Name, err)
		}
		if s.RequiresAuth {
			if err := r.ensureFresh(ctx); err != nil {
				return results, fmt.Errorf("%w: suite %s: %w", domain.ErrRunAborted, s.Name, err)
			}
		}
		results = append(results, r.runSuite(ctx, s))
	}
	return results, nil
}

// runParallel refreshes once, then starts every suite. The refresh
// completes before any suite goroutine reads the session.
func (r *Runner) runParallel(ctx context.Context, suites []Suite) ([]SuiteResult, error) {
	for _, s := range suites {
		if s.RequiresAuth {
			if err := r.ensureFresh(ctx); err != nil {
				return nil, fmt.Errorf("%w: %w", domain.ErrRunAborted, err)
			}
			break
		}
	}

	results := make([]SuiteResult, len(suites))
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range suites {
		g.Go(func() error {
			results[i] = r.runSuite(gctx, s)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return results, fmt.Errorf("%w: %w", domain.ErrRunAborted, err)
	}
	return results, nil
}

func (r *Runner) ensureFresh(ctx context.Context) error {
	if r.refresher == nil || r.session == nil {
		return fmt.Errorf("%w: no token provider for authenticated suites", domain.ErrConfigRequired)
	}
	refreshed, err := r.refresher.EnsureFresh(ctx, r.session)
	if err != nil {
		return err
	}
	if refreshed {
		observability.LoggerFromContext(ctx).Debug("session token refreshed",
			slog.Time("expires_at", r.session.ExpiresAt()),
		)
	}
	return nil
}

func (r *Runner) runSuite(ctx context.Context, s Suite) SuiteResult {
	ctx, span := tracer.Start(ctx, "smoke.suite")
	defer span.End()
	span.SetAttributes(attribute.String("smoke.suite", s.Name))

	logger := observability.LoggerFromContext(ctx).With(slog.String("suite", s.Name))
	start := r.clock.Now()
	res := SuiteResult{Name: s.Name}

	setupErr := r.timed(ctx, s.Setup, func(d time.Duration, err error) {
		if err != nil {
			res.Cases = append(res.Cases, CaseResult{Name: SetupCase, Err: err, Duration: d})
			logger.Warn("suite setup failed", slog.String("error", err.Error()))
		}
	})

	for _, step := range s.Steps {
		if setupErr != nil {
			res.Cases = append(res.Cases, CaseResult{Name: step.Name, Skipped: true})
			r.count(ctx, s.Name, "skipped")
			continue
		}
		_ = r.timed(ctx, step.Run, func(d time.Duration, err error) {
			res.Cases = append(res.Cases, CaseResult{Name: step.Name, Err: err, Duration: d})
			if err != nil {
				r.count(ctx, s.Name, "failed")
				logger.Warn("step failed", slog.String("step", step.Name), slog.String("error", err.Error()))
				return
			}
			r.count(ctx, s.Name, "passed")
			logger.Debug("step passed", slog.String("step", step.Name), slog.Duration("duration", d))
		})
	}

	// Teardown must get a chance to clean up after an interrupted run.
	tctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.teardownTimeout)
	defer cancel()
	_ = r.timed(tctx, s.Teardown, func(d time.Duration, err error) {
		if err != nil {
			res.Cases = append(res.Cases, CaseResult{Name: TeardownCase, Err: err, Duration: d})
			logger.Warn("suite teardown failed", slog.String("error", err.Error()))
		}
	})

	res.Duration = r.clock.Now().Sub(start)
	if _, failed, _ := res.Counts(); failed > 0 {
		span.SetAttributes(attribute.Int("smoke.failed", failed))
		_ = observability.FailSpan(span, fmt.Errorf("%d case(s) failed", failed))
	}
	return res
}

// timed runs fn when non-nil and reports its duration and error.
func (r *Runner) timed(ctx context.Context, fn func(context.Context) error, report func(time.Duration, error)) error {
	if fn == nil {
		return nil
	}
	start := r.clock.Now()
	err := fn(ctx)
	report(r.clock.Now().Sub(start), err)
	return err
}

func (r *Runner) count(ctx context.Context, suite, outcome string) {
	casesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("suite", suite),
		attribute.String("outcome", outcome),
	))
}

var _ Refresher = (*auth.TokenProvider)(nil)

// IsAborted reports whether err ended a run early.
func IsAborted(err error) bool {
	return errors.Is(err, domain.ErrRunAborted)
}
