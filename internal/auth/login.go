package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/aelexs/dictsmoke/internal/domain"
	"github.com/aelexs/dictsmoke/internal/observability"
)

// maxLoginBody caps how much of a login response is read.
const maxLoginBody = 1 << 20

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

// RemoteLogin exchanges credentials for a token at the auth service.
type RemoteLogin struct {
	server string
	client *http.Client
	clock  domain.Clock
}

// NewRemoteLogin returns a login client for server. The http.Client
// decides timeout and TLS verification (see internal/transport).
func NewRemoteLogin(server string, client *http.Client, clock domain.Clock) *RemoteLogin {
	if client == nil {
		client = &http.Client{Timeout: domain.DefaultHTTPTimeout}
	}
	if clock == nil {
		clock = domain.RealClock{}
	}
	return &RemoteLogin{server: server, client: client, clock: clock}
}

// Login sends GET <server>/auth_service/api/v2/login with Basic auth and
// returns the access_token from the JSON body. Any transport error,
// non-2xx status, undecodable body or empty token is reported as
// domain.ErrAuthenticationFailed. The session is not touched.
func (l *RemoteLogin) Login(ctx context.Context, creds Credentials) (IssuedToken, error) {
	ctx, span := tracer.Start(ctx, "auth.RemoteLogin")
	defer span.End()

	token, err := l.login(ctx, creds)
	if err != nil {
		authFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("mode", "remote")))
		return IssuedToken{}, observability.FailSpan(span, err)
	}
	tokensIssued.Add(ctx, 1, metric.WithAttributes(attribute.String("mode", "remote")))
	return token, nil
}

func (l *RemoteLogin) login(ctx context.Context, creds Credentials) (IssuedToken, error) {
	if l.server == "" {
		return IssuedToken{}, fmt.Errorf("%w: auth server not configured", domain.ErrAuthenticationFailed)
	}
	loginURL, err := url.JoinPath(l.server, domain.LoginPath)
	if err != nil {
		return IssuedToken{}, fmt.Errorf("%w: build login URL: %w", domain.ErrAuthenticationFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loginURL, nil)
	if err != nil {
		return IssuedToken{}, fmt.Errorf("%w: create login request: %w", domain.ErrAuthenticationFailed, err)
	}
	req.SetBasicAuth(creds.Username, creds.Password.Expose())
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return IssuedToken{}, fmt.Errorf("%w: send login request: %w", domain.ErrAuthenticationFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxLoginBody))
	if err != nil {
		return IssuedToken{}, fmt.Errorf("%w: read login response: %w", domain.ErrAuthenticationFailed, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return IssuedToken{}, fmt.Errorf("%w: login returned status %d", domain.ErrAuthenticationFailed, resp.StatusCode)
	}

	var lr loginResponse
	if err := json.Unmarshal(body, &lr); err != nil {
		return IssuedToken{}, fmt.Errorf("%w: parse login response: %w", domain.ErrAuthenticationFailed, err)
	}
	if lr.AccessToken == "" {
		return IssuedToken{}, fmt.Errorf("%w: login response has no access_token", domain.ErrAuthenticationFailed)
	}

	issuedAt := domain.UnixSeconds(l.clock)
	return IssuedToken{
		Token:     lr.AccessToken,
		IssuedAt:  issuedAt,
		ExpiresAt: remoteExpiry(lr.AccessToken, issuedAt),
	}, nil
}

// remoteExpiry reads exp from the token without verifying it. Opaque
// tokens, or JWTs without exp, are assumed to live for domain.TokenTTL.
func remoteExpiry(token string, issuedAt time.Time) time.Time {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err == nil && claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time.UTC()
	}
	return issuedAt.Add(domain.TokenTTL)
}
