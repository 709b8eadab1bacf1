package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aelexs/dictsmoke/internal/auth"
	"github.com/aelexs/dictsmoke/internal/awsclient"
	"github.com/aelexs/dictsmoke/internal/config"
	"github.com/aelexs/dictsmoke/internal/dictclient"
	"github.com/aelexs/dictsmoke/internal/domain"
	"github.com/aelexs/dictsmoke/internal/keysource"
	"github.com/aelexs/dictsmoke/internal/lifecycle"
	"github.com/aelexs/dictsmoke/internal/report"
	"github.com/aelexs/dictsmoke/internal/transport"
)

// signingKeys is a key store that can also verify what it signs.
type signingKeys interface {
	auth.KeyStore
	auth.PublicKeyResolver
}

// deps is the dictsmoke composition root. Clients are built on first use
// so that commands only need the configuration they actually exercise
// (`dictsmoke health` runs with no key and no AWS access).
type deps struct {
	cfg    *config.Config
	logger *slog.Logger
	cli    *cli
	clock  domain.Clock

	aws *awsclient.Clients
}

func newDeps(app *lifecycle.App, c *cli) *deps {
	return &deps{cfg: app.Config, logger: app.Logger, cli: c, clock: domain.RealClock{}}
}

func (d *deps) transportConfig() transport.Config {
	tc := transport.DefaultConfig()
	if d.cfg.HTTP.Timeout > 0 {
		tc.Timeout = d.cfg.HTTP.Timeout
	}
	tc.InsecureSkipVerify = d.cfg.HTTP.InsecureSkipVerify
	return tc
}

func (d *deps) warnInsecure() {
	if d.cfg.HTTP.InsecureSkipVerify {
		d.logger.Warn("TLS certificate verification disabled",
			slog.String("setting", "TLS_INSECURE_SKIP_VERIFY"),
		)
	}
}

// awsClients creates the AWS service clients once.
func (d *deps) awsClients(ctx context.Context) (*awsclient.Clients, error) {
	if d.aws != nil {
		return d.aws, nil
	}
	clients, err := awsclient.New(ctx, d.awsConfig())
	if err != nil {
		return nil, fmt.Errorf("dictsmoke setup: create aws clients: %w", err)
	}
	d.aws = clients
	return clients, nil
}

// awsConfig honors AWS_ENDPOINT (LocalStack) only in the local environment.
func (d *deps) awsConfig() awsclient.Config {
	cfg := awsclient.Config{
		Region:  d.cfg.AWS.Region,
		Timeout: d.cfg.HTTP.Timeout,
	}
	if d.cfg.AWS.Endpoint == "" {
		return cfg
	}
	if !d.cfg.IsLocal() {
		d.logger.Warn("ignoring AWS endpoint override outside the local environment",
			slog.String("environment", d.cfg.Environment),
			slog.String("endpoint", d.cfg.AWS.Endpoint),
		)
		return cfg
	}
	cfg.Endpoint = d.cfg.AWS.Endpoint
	return cfg
}

// keyStore selects the signing key source: PRIVATE_PEM when set, else the
// Secrets Manager secret.
func (d *deps) keyStore(ctx context.Context) (signingKeys, error) {
	if !d.cfg.Auth.PrivatePEM.IsEmpty() {
		return auth.NewPEMKeyStore(d.cfg.Auth.PrivatePEM, ""), nil
	}
	if d.cfg.Auth.SigningKeySecretID == "" {
		return nil, fmt.Errorf("%w: set PRIVATE_PEM or SIGNING_KEY_SECRET_ID", domain.ErrSigningKeyMissing)
	}

	clients, err := d.awsClients(ctx)
	if err != nil {
		return nil, err
	}
	ks, err := keysource.NewSecretsManagerKeyStore(ctx, clients.SecretsManager, d.cfg.Auth.SigningKeySecretID)
	if err != nil {
		return nil, fmt.Errorf("dictsmoke setup: load signing key: %w", err)
	}
	d.logger.Debug("signing key loaded",
		slog.String("key_source", "secretsmanager:"+d.cfg.Auth.SigningKeySecretID),
	)
	return ks, nil
}

// tokenProvider builds the provider for the configured mode. The returned
// cleanup releases the terminal when credentials are read interactively.
func (d *deps) tokenProvider(ctx context.Context) (*auth.TokenProvider, func(), error) {
	noop := func() {}

	// Missing auth configuration is an auth failure in either mode.
	if err := d.cfg.RequireAuth(); err != nil {
		if d.cfg.Auth.Mode == config.AuthModeLocal {
			return nil, noop, fmt.Errorf("%w: %w", domain.ErrSigningKeyMissing, err)
		}
		return nil, noop, fmt.Errorf("%w: %w", domain.ErrAuthenticationFailed, err)
	}

	switch d.cfg.Auth.Mode {
	case config.AuthModeLocal:
		keys, err := d.keyStore(ctx)
		if err != nil {
			return nil, noop, err
		}
		minter := auth.NewMinter(auth.MinterConfig{
			Signer:  auth.NewRS256Signer(keys),
			Subject: d.cfg.Auth.Subject,
			Clock:   d.clock,
		})
		p, err := auth.NewTokenProvider(auth.ProviderConfig{
			Mode:        auth.ModeLocal,
			Minter:      minter,
			RefreshSkew: d.cfg.Auth.RefreshSkew,
			Clock:       d.clock,
		})
		return p, noop, err

	case config.AuthModeRemote:
		d.warnInsecure()
		httpClient, err := transport.NewClient(d.transportConfig())
		if err != nil {
			return nil, noop, fmt.Errorf("dictsmoke setup: create login client: %w", err)
		}
		creds, cleanup, err := d.credentialSource()
		if err != nil {
			return nil, noop, err
		}
		p, err := auth.NewTokenProvider(auth.ProviderConfig{
			Mode:        auth.ModeRemote,
			Login:       auth.NewRemoteLogin(d.cfg.Auth.Server, httpClient, d.clock),
			Credentials: creds,
			RefreshSkew: d.cfg.Auth.RefreshSkew,
			Clock:       d.clock,
		})
		if err != nil {
			cleanup()
			return nil, noop, err
		}
		return p, cleanup, nil
	}

	return nil, noop, fmt.Errorf("%w: auth mode %q", domain.ErrInvalidInput, d.cfg.Auth.Mode)
}

func (d *deps) credentialSource() (auth.CredentialSource, func(), error) {
	if d.cfg.Auth.CredentialSource != config.CredentialSourceInteractive {
		return auth.EnvCredentials{
			Username: d.cfg.Auth.Username,
			Password: d.cfg.Auth.Password,
		}, func() {}, nil
	}

	prompter, err := auth.NewReadlinePrompter(d.cli.stderr)
	if err != nil {
		return nil, func() {}, fmt.Errorf("dictsmoke setup: open terminal: %w", err)
	}
	return auth.InteractiveCredentials{
		Username: d.cfg.Auth.Username,
		Password: d.cfg.Auth.Password,
		Prompter: prompter,
	}, func() { _ = prompter.Close() }, nil
}

// dictClient builds a dictionary client whose requests carry session's
// Authorization header once the session holds a token.
func (d *deps) dictClient(session *auth.Session) (*dictclient.Client, error) {
	d.warnInsecure()
	base, err := transport.NewTransport(d.transportConfig())
	if err != nil {
		return nil, fmt.Errorf("dictsmoke setup: create transport: %w", err)
	}
	apiBase, err := d.cfg.APIBaseURL()
	if err != nil {
		return nil, err
	}
	return dictclient.New(apiBase, &http.Client{
		Transport: session.Transport(base),
		Timeout:   d.cfg.HTTP.Timeout,
	})
}

// publisher announces run summaries on SNS when a topic is configured and
// in the log otherwise.
func (d *deps) publisher(ctx context.Context) (report.Publisher, error) {
	if d.cfg.Report.SNSTopicARN == "" {
		return report.NewLogPublisher(d.logger), nil
	}
	clients, err := d.awsClients(ctx)
	if err != nil {
		return nil, err
	}
	return report.NewSNSPublisher(clients.SNS, d.cfg.Report.SNSTopicARN), nil
}

// verificationKeys resolves the key `dictsmoke verify` checks against:
// an explicit PEM, the SSM parameter, or the public half of the signing key.
func (d *deps) verificationKeys(ctx context.Context, publicPEM []byte) (auth.PublicKeyResolver, error) {
	if publicPEM != nil {
		key, err := auth.ParsePublicKey(string(publicPEM))
		if err != nil {
			return nil, err
		}
		return auth.SinglePublicKey{Key: key}, nil
	}

	if name := d.cfg.Auth.PublicKeyParameter; name != "" {
		clients, err := d.awsClients(ctx)
		if err != nil {
			return nil, err
		}
		key, err := keysource.LoadPublicKey(ctx, clients.SSM, name)
		if err != nil {
			return nil, err
		}
		return auth.SinglePublicKey{Key: key}, nil
	}

	return d.keyStore(ctx)
}
