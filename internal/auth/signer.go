package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aelexs/dictsmoke/internal/domain"
)

// Signer turns claims into a signed token string.
type Signer interface {
	Sign(claims *Claims) (string, error)
}

// RS256Signer signs with the key held by a KeyStore.
type RS256Signer struct {
	keys KeyStore
}

// NewRS256Signer returns a Signer backed by keys.
func NewRS256Signer(keys KeyStore) *RS256Signer {
	return &RS256Signer{keys: keys}
}

// Sign returns the compact RS256 JWT for claims. The kid header is set
// when the key store supplies a key ID.
func (s *RS256Signer) Sign(claims *Claims) (string, error) {
	privateKey, keyID, err := s.keys.SigningKey()
	if err != nil {
		if errors.Is(err, domain.ErrSigningKeyMissing) || errors.Is(err, domain.ErrSigningFailure) {
			return "", fmt.Errorf("get signing key: %w", err)
		}
		return "", fmt.Errorf("get signing key: %w: %w", domain.ErrSigningFailure, err)
	}
	if privateKey == nil {
		return "", domain.ErrSigningKeyMissing
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if keyID != "" {
		token.Header["kid"] = keyID
	}

	signed, err := token.SignedString(privateKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w: %w", domain.ErrSigningFailure, err)
	}
	return signed, nil
}
