package lifecycle_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/aelexs/dictsmoke/internal/config"
	"github.com/aelexs/dictsmoke/internal/domain"
	"github.com/aelexs/dictsmoke/internal/lifecycle"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testParams(logs *bytes.Buffer) lifecycle.Params {
	return lifecycle.Params{Name: "test", Version: "0.0.0", LogOutput: logs}
}

func TestRun_PassesConfigAndReturnsBodyError(t *testing.T) {
	t.Setenv("DICT_SERVICE_URL", "http://dict.example:5000")
	bodyErr := errors.New("step failed")

	var got *lifecycle.App
	err := lifecycle.Run(context.Background(), testParams(&bytes.Buffer{}), func(_ context.Context, app *lifecycle.App) error {
		got = app
		return bodyErr
	})

	require.ErrorIs(t, err, bodyErr)
	require.NotNil(t, got)
	assert.Equal(t, "http://dict.example:5000", got.Config.Service.URL)
	assert.NotNil(t, got.Logger)
}

func TestRun_ConfigErrorStopsBeforeBody(t *testing.T) {
	t.Setenv("AUTH_MODE", "kerberos")

	called := false
	err := lifecycle.Run(context.Background(), testParams(&bytes.Buffer{}), func(context.Context, *lifecycle.App) error {
		called = true
		return nil
	})

	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.False(t, called)
}

func TestRun_ConfigureOverridesConfig(t *testing.T) {
	p := testParams(&bytes.Buffer{})
	p.Configure = func(cfg *config.Config) error {
		cfg.Auth.Mode = config.AuthModeRemote
		return nil
	}

	err := lifecycle.Run(context.Background(), p, func(_ context.Context, app *lifecycle.App) error {
		assert.Equal(t, config.AuthModeRemote, app.Config.Auth.Mode)
		return nil
	})
	require.NoError(t, err)
}

func TestRun_ConfigureError(t *testing.T) {
	p := testParams(&bytes.Buffer{})
	p.Configure = func(*config.Config) error { return domain.ErrInvalidInput }

	err := lifecycle.Run(context.Background(), p, func(context.Context, *lifecycle.App) error {
		t.Fatal("body must not run")
		return nil
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRun_CancellationWaitsForBody(t *testing.T) {
	var logs bytes.Buffer
	ctx, cancel := context.WithCancel(context.Background())

	finished := false
	err := lifecycle.Run(ctx, testParams(&logs), func(ctx context.Context, _ *lifecycle.App) error {
		cancel()
		<-ctx.Done()
		// Simulated teardown after the interrupt.
		time.Sleep(10 * time.Millisecond)
		finished = true
		return ctx.Err()
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.True(t, finished)
	assert.Contains(t, logs.String(), "received shutdown signal")
}

func TestRun_ConfigureResultIsValidated(t *testing.T) {
	p := testParams(&bytes.Buffer{})
	p.Configure = func(cfg *config.Config) error {
		cfg.Service.URL = "not a url"
		return nil
	}

	err := lifecycle.Run(context.Background(), p, func(context.Context, *lifecycle.App) error {
		t.Fatal("body must not run")
		return nil
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
