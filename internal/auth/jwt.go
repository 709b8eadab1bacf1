package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aelexs/dictsmoke/internal/domain"
)

// ErrTokenExpired is returned when a validly signed token has expired.
// Callers can use errors.Is to check for this condition without importing
// the JWT library directly.
var ErrTokenExpired = jwt.ErrTokenExpired

// Validator checks tokens minted by a Minter: RS256 signature, a present
// and unexpired exp claim, and the required scope set.
type Validator struct {
	keys   PublicKeyResolver
	scopes []string
	clock  domain.Clock
}

// ValidatorConfig holds configuration for creating a Validator. Nil
// Scopes require domain.AdminScopes.
type ValidatorConfig struct {
	Keys   PublicKeyResolver
	Scopes []string
	Clock  domain.Clock
}

// NewValidator creates a new JWT validator.
func NewValidator(cfg ValidatorConfig) *Validator {
	scopes := cfg.Scopes
	if scopes == nil {
		scopes = domain.AdminScopes()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = domain.RealClock{}
	}
	return &Validator{keys: cfg.Keys, scopes: scopes, clock: clock}
}

// Validate parses and fully validates tokenString. Every failure wraps
// domain.ErrInvalidToken; expiry additionally matches ErrTokenExpired.
func (v *Validator) Validate(tokenString string) (*Claims, error) {
	var claims Claims

	_, err := jwt.ParseWithClaims(tokenString, &claims, v.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithTimeFunc(v.clock.Now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidToken, err)
	}

	if !claims.HasScopes(v.scopes) {
		return nil, fmt.Errorf("%w: scopes %v do not include %v", domain.ErrInvalidToken, claims.Scopes, v.scopes)
	}

	return &claims, nil
}

func (v *Validator) keyFunc(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}

	kid, _ := token.Header["kid"].(string)
	return v.keys.PublicKey(kid)
}
