// Package config provides configuration loading using koanf.
// Precedence: environment variables, then compiled defaults.
package config

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/aelexs/dictsmoke/internal/domain"
)

// AuthMode selects how the token provider obtains a token.
type AuthMode string

const (
	// AuthModeLocal signs a short-lived JWT with the configured private key.
	AuthModeLocal AuthMode = "local"
	// AuthModeRemote exchanges credentials with the login endpoint.
	AuthModeRemote AuthMode = "remote"
)

// CredentialSource selects where remote-login credentials come from.
type CredentialSource string

const (
	// CredentialSourceEnv uses configured values only and never prompts.
	CredentialSourceEnv CredentialSource = "env"
	// CredentialSourceInteractive prompts for whatever is not configured.
	CredentialSourceInteractive CredentialSource = "interactive"
)

// Config holds all dictsmoke configuration.
type Config struct {
	// Environment identifier: "local", "ci", ...
	Environment string `koanf:"environment"`

	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`

	Auth    AuthConfig    `koanf:"auth"`
	Service ServiceConfig `koanf:"service"`
	HTTP    HTTPConfig    `koanf:"http"`
	AWS     AWSConfig     `koanf:"aws"`
	Report  ReportConfig  `koanf:"report"`
	OTEL    OTELConfig    `koanf:"otel"`
}

// AuthConfig holds token provider configuration.
type AuthConfig struct {
	Mode             AuthMode         `koanf:"mode"`
	CredentialSource CredentialSource `koanf:"credential_source"`

	// Server is the auth service address the login path is joined to.
	Server   string              `koanf:"server"`
	Username string              `koanf:"username"`
	Password domain.SecretString `koanf:"password"`

	// PrivatePEM is the RS256 signing key for local issuance.
	PrivatePEM domain.SecretString `koanf:"private_pem"`
	// SigningKeySecretID names a Secrets Manager secret holding the PEM.
	// Used only when PrivatePEM is empty.
	SigningKeySecretID string `koanf:"signing_key_secret_id"`
	// PublicKeyParameter names an SSM parameter holding the PKIX public key
	// used by `dictsmoke verify` when no key file is given.
	PublicKeyParameter string `koanf:"public_key_parameter"`

	Subject     string        `koanf:"subject"`
	RefreshSkew time.Duration `koanf:"refresh_skew"`
}

// ServiceConfig holds the dictionary service location.
type ServiceConfig struct {
	URL string `koanf:"url"`
}

// HTTPConfig holds outbound HTTP client settings.
type HTTPConfig struct {
	Timeout time.Duration `koanf:"timeout"`
	// InsecureSkipVerify disables TLS certificate verification. The test
	// environments this tool targets use self-signed certificates.
	InsecureSkipVerify bool `koanf:"insecure_skip_verify"`
}

// AWSConfig holds AWS SDK configuration.
type AWSConfig struct {
	Region   string `koanf:"region"`
	Endpoint string `koanf:"endpoint"` // LocalStack endpoint for development
}

// ReportConfig holds smoke report destinations.
type ReportConfig struct {
	Dir         string `koanf:"dir"`
	SNSTopicARN string `koanf:"sns_topic_arn"` // Empty logs the summary instead
}

// OTELConfig holds OpenTelemetry configuration.
type OTELConfig struct {
	Endpoint    string `koanf:"endpoint"` // Empty disables OTLP export
	ServiceName string `koanf:"service_name"`
}

// envKeys maps recognized environment variables to config keys. The names
// match what the existing CI pipelines already export, so they are listed
// explicitly rather than derived from the struct layout.
var envKeys = map[string]string{
	"ENVIRONMENT": "environment",
	"LOG_LEVEL":   "log_level",
	"LOG_FORMAT":  "log_format",

	"AUTH_MODE":             "auth.mode",
	"CREDENTIAL_SOURCE":     "auth.credential_source",
	"INGENIUM_SERVER":       "auth.server",
	"USERNAME":              "auth.username",
	"PASSWORD":              "auth.password",
	"PRIVATE_PEM":           "auth.private_pem",
	"SIGNING_KEY_SECRET_ID": "auth.signing_key_secret_id",
	"PUBLIC_KEY_PARAMETER":  "auth.public_key_parameter",
	"TOKEN_SUBJECT":         "auth.subject",
	"TOKEN_REFRESH_SKEW":    "auth.refresh_skew",

	"DICT_SERVICE_URL": "service.url",

	"HTTP_TIMEOUT":             "http.timeout",
	"TLS_INSECURE_SKIP_VERIFY": "http.insecure_skip_verify",

	"AWS_REGION":   "aws.region",
	"AWS_ENDPOINT": "aws.endpoint",

	"REPORT_DIR":           "report.dir",
	"REPORT_SNS_TOPIC_ARN": "report.sns_topic_arn",

	"OTEL_ENDPOINT":     "otel.endpoint",
	"OTEL_SERVICE_NAME": "otel.service_name",
}

// defaults returns a Config with compiled default values.
func defaults() *Config {
	return &Config{
		Environment: "local",
		LogLevel:    "info",
		LogFormat:   "text",

		Auth: AuthConfig{
			Mode:             AuthModeLocal,
			CredentialSource: CredentialSourceEnv,
			Subject:          domain.DefaultTokenSubject,
			RefreshSkew:      domain.DefaultRefreshSkew,
		},
		Service: ServiceConfig{
			URL: domain.DefaultServiceURL,
		},
		HTTP: HTTPConfig{
			Timeout:            domain.DefaultHTTPTimeout,
			InsecureSkipVerify: true,
		},
		AWS: AWSConfig{
			Region: "us-east-1",
		},
		Report: ReportConfig{
			Dir: "test-reports",
		},
		OTEL: OTELConfig{
			ServiceName: "dictsmoke",
		},
	}
}

// Load loads configuration from the environment over compiled defaults.
// Only value checks that hold for every command happen here; mode-specific
// requirements are checked by RequireAuth when a token is actually needed.
func Load(_ context.Context) (*Config, error) {
	k := koanf.New(".")
	cfg := defaults()

	// Empty values count as unset so an exported-but-blank variable does
	// not clobber a default.
	err := k.Load(env.ProviderWithValue("", ".", func(name, value string) (string, any) {
		if value == "" {
			return "", nil
		}
		return envKeys[name], value
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	switch cfg.Auth.Mode {
	case AuthModeLocal, AuthModeRemote:
	default:
		return fmt.Errorf("%w: auth.mode %q (want local or remote)", domain.ErrInvalidInput, cfg.Auth.Mode)
	}

	switch cfg.Auth.CredentialSource {
	case CredentialSourceEnv, CredentialSourceInteractive:
	default:
		return fmt.Errorf("%w: auth.credential_source %q (want env or interactive)", domain.ErrInvalidInput, cfg.Auth.CredentialSource)
	}

	if cfg.HTTP.Timeout <= 0 {
		return fmt.Errorf("%w: http.timeout must be positive", domain.ErrInvalidInput)
	}
	if cfg.Auth.RefreshSkew < 0 || cfg.Auth.RefreshSkew >= domain.TokenTTL {
		return fmt.Errorf("%w: auth.refresh_skew must be within [0, %s)", domain.ErrInvalidInput, domain.TokenTTL)
	}

	u, err := url.Parse(cfg.Service.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: service.url %q is not an absolute URL", domain.ErrInvalidInput, cfg.Service.URL)
	}

	return nil
}

// Validate re-checks cfg after command-line overrides are applied.
func (c *Config) Validate() error {
	return validate(c)
}

// RequireAuth checks that the configured auth mode has what it needs.
func (c *Config) RequireAuth() error {
	switch c.Auth.Mode {
	case AuthModeRemote:
		if c.Auth.Server == "" {
			return fmt.Errorf("%w: auth.server (INGENIUM_SERVER)", domain.ErrConfigRequired)
		}
	case AuthModeLocal:
		if c.Auth.PrivatePEM.IsEmpty() && c.Auth.SigningKeySecretID == "" {
			return fmt.Errorf("%w: auth.private_pem (PRIVATE_PEM) or auth.signing_key_secret_id", domain.ErrConfigRequired)
		}
	}
	return nil
}

// APIBaseURL returns the versioned API root of the dictionary service.
func (c *Config) APIBaseURL() (string, error) {
	base, err := url.JoinPath(c.Service.URL, domain.APIPathSuffix)
	if err != nil {
		return "", fmt.Errorf("build API base URL: %w", err)
	}
	return base, nil
}

// IsLocal returns true if running in local development environment.
func (c *Config) IsLocal() bool {
	return c.Environment == "local"
}
