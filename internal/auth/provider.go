package auth

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aelexs/dictsmoke/internal/domain"
	"github.com/aelexs/dictsmoke/internal/observability"
)

// Mode names how a TokenProvider obtains tokens.
type Mode string

const (
	// ModeLocal signs tokens with a configured private key.
	ModeLocal Mode = "local"
	// ModeRemote exchanges credentials at the auth service.
	ModeRemote Mode = "remote"
)

// TokenProvider obtains bearer tokens and publishes them into a Session.
// It performs no retries and caches no tokens: every refresh re-signs or
// re-fetches. Remote credentials are read once and reused.
type TokenProvider struct {
	mode   Mode
	minter *Minter
	login  *RemoteLogin
	creds  CredentialSource
	skew   time.Duration
	clock  domain.Clock

	// mu serializes refreshes so a Session only ever has one writer.
	mu        sync.Mutex
	credsRead bool
	cached    Credentials
}

// ProviderConfig holds the collaborators of a TokenProvider. Minter is
// required in ModeLocal; Login and Credentials in ModeRemote.
type ProviderConfig struct {
	Mode        Mode
	Minter      *Minter
	Login       *RemoteLogin
	Credentials CredentialSource
	RefreshSkew time.Duration
	Clock       domain.Clock
}

// NewTokenProvider validates cfg and returns a provider.
func NewTokenProvider(cfg ProviderConfig) (*TokenProvider, error) {
	switch cfg.Mode {
	case ModeLocal:
		if cfg.Minter == nil {
			return nil, fmt.Errorf("local mode requires a minter: %w", domain.ErrSigningKeyMissing)
		}
	case ModeRemote:
		if cfg.Login == nil || cfg.Credentials == nil {
			return nil, fmt.Errorf("remote mode requires login and credentials: %w", domain.ErrConfigRequired)
		}
	default:
		return nil, fmt.Errorf("unknown auth mode %q: %w", cfg.Mode, domain.ErrInvalidInput)
	}

	skew := cfg.RefreshSkew
	if skew < 0 {
		skew = 0
	}
	clock := cfg.Clock
	if clock == nil {
		clock = domain.RealClock{}
	}

	return &TokenProvider{
		mode:   cfg.Mode,
		minter: cfg.Minter,
		login:  cfg.Login,
		creds:  cfg.Credentials,
		skew:   skew,
		clock:  clock,
	}, nil
}

// Mode returns the configured mode.
func (p *TokenProvider) Mode() Mode {
	return p.mode
}

// Obtain issues or fetches a new token without touching any session.
func (p *TokenProvider) Obtain(ctx context.Context) (IssuedToken, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.obtain(ctx)
}

func (p *TokenProvider) obtain(ctx context.Context) (IssuedToken, error) {
	if p.mode == ModeLocal {
		return p.minter.IssueLocalToken(ctx)
	}

	if !p.credsRead {
		creds, err := p.creds.Credentials(ctx)
		if err != nil {
			return IssuedToken{}, err
		}
		p.cached = creds
		p.credsRead = true
	}
	return p.login.Login(ctx, p.cached)
}

// RefreshSession obtains a new token and overwrites the session's
// Authorization header with "Bearer <token>". On failure the session is
// left as it was.
func (p *TokenProvider) RefreshSession(ctx context.Context, s *Session) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.refresh(ctx, s)
}

func (p *TokenProvider) refresh(ctx context.Context, s *Session) error {
	tok, err := p.obtain(ctx)
	if err != nil {
		return fmt.Errorf("refresh session (%s): %w", p.mode, err)
	}
	s.SetToken(tok.Token, tok.ExpiresAt)

	observability.LoggerFromContext(ctx).Debug("session refreshed",
		slog.String("mode", string(p.mode)),
		slog.Time("expires_at", tok.ExpiresAt),
	)
	return nil
}

// EnsureFresh refreshes the session only when it is empty or its token
// expires within the refresh skew. It reports whether a refresh happened.
func (p *TokenProvider) EnsureFresh(ctx context.Context, s *Session) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.needsRefresh(s) {
		return false, nil
	}
	if err := p.refresh(ctx, s); err != nil {
		return false, err
	}
	return true, nil
}

func (p *TokenProvider) needsRefresh(s *Session) bool {
	if s.Empty() {
		return true
	}
	return !p.clock.Now().Add(p.skew).Before(s.ExpiresAt())
}
