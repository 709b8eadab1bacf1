package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/aelexs/dictsmoke/internal/domain"
	"github.com/aelexs/dictsmoke/internal/observability"
)

var (
	tracer = otel.Tracer("dictsmoke/auth")

	tokensIssued metric.Int64Counter
	authFailures metric.Int64Counter
)

func init() {
	m := otel.Meter("dictsmoke/auth")

	tokensIssued, _ = m.Int64Counter("auth_tokens_issued_total",
		metric.WithDescription("Bearer tokens obtained, by mode"))
	authFailures, _ = m.Int64Counter("auth_failures_total",
		metric.WithDescription("Failed attempts to obtain a bearer token, by mode"))
}

// IssuedToken is a signed token and its lifetime.
type IssuedToken struct {
	Token     string
	JTI       string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Minter issues short-lived admin tokens for a fixed identity.
type Minter struct {
	signer  Signer
	subject string
	ttl     time.Duration
	scopes  []string
	clock   domain.Clock
}

// MinterConfig holds configuration for creating a Minter. Zero TTL and
// nil Scopes fall back to domain.TokenTTL and domain.AdminScopes.
type MinterConfig struct {
	Signer  Signer
	Subject string
	TTL     time.Duration
	Scopes  []string
	Clock   domain.Clock
}

// NewMinter creates a new token minter.
func NewMinter(cfg MinterConfig) *Minter {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = domain.TokenTTL
	}
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = domain.AdminScopes()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = domain.RealClock{}
	}
	return &Minter{
		signer:  cfg.Signer,
		subject: cfg.Subject,
		ttl:     ttl,
		scopes:  scopes,
		clock:   clock,
	}
}

// IssueLocalToken signs a fresh token. iat is the current second and
// exp is exactly iat plus the TTL. No network I/O is performed.
func (m *Minter) IssueLocalToken(ctx context.Context) (IssuedToken, error) {
	_, span := tracer.Start(ctx, "auth.IssueLocalToken")
	defer span.End()

	if m.signer == nil {
		authFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("mode", "local")))
		return IssuedToken{}, observability.FailSpan(span, domain.ErrSigningKeyMissing)
	}

	issuedAt := domain.UnixSeconds(m.clock)
	expiresAt := issuedAt.Add(m.ttl)
	jti := uuid.NewString()

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   m.subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        jti,
		},
		Username: m.subject,
		Scopes:   append([]string(nil), m.scopes...),
	}

	signed, err := m.signer.Sign(claims)
	if err != nil {
		authFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("mode", "local")))
		return IssuedToken{}, observability.FailSpan(span, fmt.Errorf("issue local token: %w", err))
	}

	tokensIssued.Add(ctx, 1, metric.WithAttributes(attribute.String("mode", "local")))
	span.SetAttributes(attribute.String("token.jti", jti))

	return IssuedToken{
		Token:     signed,
		JTI:       jti,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}
