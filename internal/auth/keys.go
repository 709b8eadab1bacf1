package auth

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"strings"
	"sync"

	"github.com/aelexs/dictsmoke/internal/domain"
)

// KeyStore provides the key used to sign locally issued tokens.
// Implementations hold keys in memory (env PEM, tests) or load them from
// AWS Secrets Manager (see internal/keysource).
type KeyStore interface {
	// SigningKey returns the private signing key and its key ID.
	SigningKey() (*rsa.PrivateKey, string, error)
}

// PublicKeyResolver resolves the key used to verify a token's signature.
type PublicKeyResolver interface {
	PublicKey(kid string) (*rsa.PublicKey, error)
}

// StaticKeyStore is a KeyStore backed by in-memory keys.
type StaticKeyStore struct {
	mu         sync.RWMutex
	privateKey *rsa.PrivateKey
	keyID      string
	publicKeys map[string]*rsa.PublicKey
}

// NewStaticKeyStore creates a StaticKeyStore with a single key pair. A nil
// key yields a store whose SigningKey reports domain.ErrSigningKeyMissing.
func NewStaticKeyStore(privateKey *rsa.PrivateKey, keyID string) *StaticKeyStore {
	s := &StaticKeyStore{
		privateKey: privateKey,
		keyID:      keyID,
		publicKeys: make(map[string]*rsa.PublicKey),
	}
	if privateKey != nil {
		s.publicKeys[keyID] = &privateKey.PublicKey
	}
	return s
}

// SigningKey returns the private signing key and its key ID.
func (s *StaticKeyStore) SigningKey() (*rsa.PrivateKey, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.privateKey == nil {
		return nil, "", domain.ErrSigningKeyMissing
	}
	return s.privateKey, s.keyID, nil
}

// PublicKey returns the public key for the given key ID.
func (s *StaticKeyStore) PublicKey(kid string) (*rsa.PublicKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pk, ok := s.publicKeys[kid]
	if !ok {
		return nil, fmt.Errorf("unknown key ID %q", kid)
	}
	return pk, nil
}

// AddPublicKey registers an additional verification key.
func (s *StaticKeyStore) AddPublicKey(kid string, key *rsa.PublicKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.publicKeys == nil {
		s.publicKeys = make(map[string]*rsa.PublicKey)
	}
	s.publicKeys[kid] = key
}

// PEMKeyStore signs with a PEM-encoded RSA key supplied as configuration.
// The key is parsed on first use so that a bad key surfaces as an
// issuance error rather than a startup error.
type PEMKeyStore struct {
	pemData domain.SecretString
	keyID   string

	once sync.Once
	key  *rsa.PrivateKey
	err  error
}

// NewPEMKeyStore returns a key store for pemData. The key ID is written to
// the token's kid header.
func NewPEMKeyStore(pemData domain.SecretString, keyID string) *PEMKeyStore {
	return &PEMKeyStore{pemData: pemData, keyID: keyID}
}

// SigningKey parses and returns the configured key. A blank PEM yields
// ErrSigningKeyMissing; anything unparseable yields ErrSigningFailure.
func (s *PEMKeyStore) SigningKey() (*rsa.PrivateKey, string, error) {
	s.once.Do(func() {
		s.key, s.err = ParseSigningKey(s.pemData.Expose())
	})
	if s.err != nil {
		return nil, "", s.err
	}
	return s.key, s.keyID, nil
}

// PublicKey returns the public half of the configured key for any kid.
func (s *PEMKeyStore) PublicKey(string) (*rsa.PublicKey, error) {
	key, _, err := s.SigningKey()
	if err != nil {
		return nil, err
	}
	return &key.PublicKey, nil
}

// SinglePublicKey verifies every token against one key regardless of kid.
type SinglePublicKey struct {
	Key *rsa.PublicKey
}

// PublicKey returns the wrapped key.
func (s SinglePublicKey) PublicKey(string) (*rsa.PublicKey, error) {
	if s.Key == nil {
		return nil, fmt.Errorf("no verification key: %w", domain.ErrInvalidToken)
	}
	return s.Key, nil
}

// ParseSigningKey parses a PEM-encoded RSA private key in PKCS#1
// (RSA PRIVATE KEY) or PKCS#8 (PRIVATE KEY) form.
func ParseSigningKey(pemData string) (*rsa.PrivateKey, error) {
	if strings.TrimSpace(pemData) == "" {
		return nil, domain.ErrSigningKeyMissing
	}

	block, _ := pem.Decode([]byte(pemData))
	if block == nil {
		return nil, fmt.Errorf("no PEM block found in private key data: %w", domain.ErrSigningFailure)
	}

	if block.Type == "RSA PRIVATE KEY" {
		key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("parsing PKCS#1 private key: %w: %w", domain.ErrSigningFailure, err)
		}
		return key, nil
	}

	keyIface, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parsing PKCS#8 private key: %w: %w", domain.ErrSigningFailure, err)
	}
	rsaKey, ok := keyIface.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("PKCS#8 key is not RSA (got %T): %w", keyIface, domain.ErrSigningFailure)
	}
	return rsaKey, nil
}

// ParsePublicKey parses a PEM-encoded RSA public key in PKIX form. A
// private key PEM is also accepted, in which case its public half is used.
func ParsePublicKey(pemData string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(pemData))
	if block == nil {
		return nil, fmt.Errorf("no PEM block found in public key data: %w", domain.ErrInvalidInput)
	}

	switch block.Type {
	case "RSA PRIVATE KEY", "PRIVATE KEY":
		key, err := ParseSigningKey(pemData)
		if err != nil {
			return nil, err
		}
		return &key.PublicKey, nil
	case "RSA PUBLIC KEY":
		key, err := x509.ParsePKCS1PublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("parsing PKCS#1 public key: %w: %w", domain.ErrInvalidInput, err)
		}
		return key, nil
	}

	keyIface, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parsing PKIX public key: %w: %w", domain.ErrInvalidInput, err)
	}
	rsaKey, ok := keyIface.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("PKIX key is not RSA (got %T): %w", keyIface, domain.ErrInvalidInput)
	}
	return rsaKey, nil
}
