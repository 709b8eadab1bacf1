// Package lifecycle provides the shared command lifecycle runner.
// Every dictsmoke subcommand delegates to Run for signal handling, config
// loading, observability init, and ordered shutdown.
package lifecycle

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aelexs/dictsmoke/internal/config"
	"github.com/aelexs/dictsmoke/internal/observability"
)

// ShutdownTelemetryTimeout bounds the final span and metric flush.
const ShutdownTelemetryTimeout = 5 * time.Second

// Params configures a command's lifecycle.
type Params struct {
	// Name identifies the command in logs and traces (e.g. "smoke").
	Name    string
	Version string

	// LogOutput receives log lines. Defaults to stderr so stdout stays
	// clean for tokens and tables.
	LogOutput io.Writer

	// Configure applies command-line overrides after the environment is
	// loaded and before anything uses the config.
	Configure func(cfg *config.Config) error
}

// App is what a command body receives.
type App struct {
	Config *config.Config
	Logger *slog.Logger
}

// Run executes the full command lifecycle: signal handling, config loading,
// logging and telemetry init, the command body, and telemetry flush. The
// body's error is returned unchanged so callers can map it to an exit code.
func Run(ctx context.Context, p Params, body func(ctx context.Context, app *App) error) error {
	// Signal-based cancellation: ctx.Done() closes on SIGTERM/SIGINT.
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if p.Configure != nil {
		if err := p.Configure(cfg); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("validate config: %w", err)
		}
	}

	logger := observability.InitLogger(observability.LogConfig{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: cfg.OTEL.ServiceName,
		Environment: cfg.Environment,
		Output:      p.LogOutput,
	})
	logger = logger.With(slog.String("command", p.Name))

	// --- Startup order: telemetry -> command body ---
	telemetry, err := observability.InitTelemetry(ctx, observability.TelemetryConfig{
		ServiceName:    cfg.OTEL.ServiceName,
		ServiceVersion: p.Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTEL.Endpoint,
	})
	if err != nil {
		return fmt.Errorf("initialize telemetry: %w", err)
	}

	app := &App{Config: cfg, Logger: logger}
	done := make(chan struct{})

	// --- Structured concurrency via errgroup ---
	g, gctx := errgroup.WithContext(ctx)

	// Goroutine 1: the command body.
	g.Go(func() error {
		defer close(done)
		return body(gctx, app)
	})

	// Goroutine 2: reports an interrupt, then waits for the body to finish
	// its teardown so the process never exits with resources half-deleted.
	g.Go(func() error {
		select {
		case <-done:
		case <-ctx.Done():
			logger.Warn("received shutdown signal, waiting for command to finish")
			<-done
		}
		return nil
	})

	runErr := g.Wait()

	// Shutdown is the reverse of startup: body finished, now flush telemetry.
	otelCtx, otelCancel := context.WithTimeout(context.Background(), ShutdownTelemetryTimeout)
	defer otelCancel()
	if shutdownErr := telemetry.Shutdown(otelCtx); shutdownErr != nil {
		logger.Error("failed to shutdown telemetry", slog.String("error", shutdownErr.Error()))
	}

	return runErr
}
