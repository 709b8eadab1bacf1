// Package keysource loads token key material from AWS: the private signing
// key from Secrets Manager and the verification public key from SSM
// Parameter Store.
package keysource

import (
	"context"
	"crypto/rsa"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"github.com/aelexs/dictsmoke/internal/auth"
	"github.com/aelexs/dictsmoke/internal/domain"
)

// SecretsManagerAPI is the narrow consumer-defined interface for Secrets Manager operations.
type SecretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// SSMAPI is the narrow consumer-defined interface for SSM Parameter Store operations.
type SSMAPI interface {
	GetParameter(ctx context.Context, params *awsssm.GetParameterInput, optFns ...func(*awsssm.Options)) (*awsssm.GetParameterOutput, error)
}

// Compile-time checks.
var (
	_ auth.KeyStore          = (*SecretsManagerKeyStore)(nil)
	_ auth.PublicKeyResolver = (*SecretsManagerKeyStore)(nil)
)

// SecretsManagerKeyStore implements auth.KeyStore with a PEM private key
// stored as a Secrets Manager secret string.
//
// The key is loaded once by the constructor and never replaced, so the
// store is safe for concurrent use without locking.
type SecretsManagerKeyStore struct {
	privateKey *rsa.PrivateKey
	keyID      string
}

// NewSecretsManagerKeyStore fetches secretID and parses it. A missing or
// empty secret string yields domain.ErrSigningKeyMissing; a fetch or parse
// failure yields domain.ErrSigningFailure. The secret's version ID becomes
// the token kid.
func NewSecretsManagerKeyStore(ctx context.Context, sm SecretsManagerAPI, secretID string) (*SecretsManagerKeyStore, error) {
	if secretID == "" {
		return nil, fmt.Errorf("no signing key secret configured: %w", domain.ErrSigningKeyMissing)
	}

	out, err := sm.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		return nil, fmt.Errorf("fetching signing key %q from Secrets Manager: %w: %w", secretID, domain.ErrSigningFailure, err)
	}
	if out.SecretString == nil || *out.SecretString == "" {
		return nil, fmt.Errorf("signing key %q has no secret string: %w", secretID, domain.ErrSigningKeyMissing)
	}

	privateKey, err := auth.ParseSigningKey(*out.SecretString)
	if err != nil {
		return nil, fmt.Errorf("parsing signing key %q: %w", secretID, err)
	}

	return &SecretsManagerKeyStore{
		privateKey: privateKey,
		keyID:      aws.ToString(out.VersionId),
	}, nil
}

// SigningKey returns the loaded private key and its key ID.
func (ks *SecretsManagerKeyStore) SigningKey() (*rsa.PrivateKey, string, error) {
	if ks.privateKey == nil {
		return nil, "", domain.ErrSigningKeyMissing
	}
	return ks.privateKey, ks.keyID, nil
}

// PublicKey returns the public half of the loaded key for any kid.
func (ks *SecretsManagerKeyStore) PublicKey(string) (*rsa.PublicKey, error) {
	key, _, err := ks.SigningKey()
	if err != nil {
		return nil, err
	}
	return &key.PublicKey, nil
}

// LoadPublicKey reads a PEM public key from the SSM parameter name,
// decrypting SecureString parameters.
func LoadPublicKey(ctx context.Context, client SSMAPI, name string) (*rsa.PublicKey, error) {
	out, err := client.GetParameter(ctx, &awsssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("fetching public key parameter %q from SSM: %w", name, err)
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return nil, fmt.Errorf("SSM parameter %s has no value: %w", name, domain.ErrInvalidInput)
	}

	pk, err := auth.ParsePublicKey(*out.Parameter.Value)
	if err != nil {
		return nil, fmt.Errorf("parsing public key parameter %q: %w", name, err)
	}
	return pk, nil
}
