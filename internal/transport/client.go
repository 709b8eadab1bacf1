// Package transport builds the HTTP clients used for remote login and the
// dictionary service.
package transport

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/net/http2"

	"github.com/aelexs/dictsmoke/internal/domain"
)

// Config holds configuration for the HTTP client.
type Config struct {
	Timeout time.Duration
	// InsecureSkipVerify disables TLS certificate verification. Test
	// deployments of the auth and dictionary services use self-signed
	// certificates, so this defaults to true in configuration and is
	// logged as a warning when set.
	InsecureSkipVerify bool
	EnableHTTP2        bool
}

// DefaultConfig returns a verifying client with the default timeout.
func DefaultConfig() Config {
	return Config{
		Timeout:     domain.DefaultHTTPTimeout,
		EnableHTTP2: true,
	}
}

// NewClient creates an *http.Client from cfg. A non-positive timeout
// falls back to domain.DefaultHTTPTimeout so no request can hang forever.
func NewClient(cfg Config) (*http.Client, error) {
	base, err := NewTransport(cfg)
	if err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = domain.DefaultHTTPTimeout
	}

	return &http.Client{
		Transport: base,
		Timeout:   timeout,
	}, nil
}

// NewTransport returns the round tripper NewClient uses, for callers that
// wrap it (the session's bearer transport).
func NewTransport(cfg Config) (*http.Transport, error) {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.TLSClientConfig = &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec // opt-in for self-signed test deployments
		MinVersion:         tls.VersionTLS12,
	}

	if cfg.EnableHTTP2 {
		if err := http2.ConfigureTransport(tr); err != nil {
			return nil, fmt.Errorf("failed to configure HTTP/2 transport: %w", err)
		}
	}
	return tr, nil
}
