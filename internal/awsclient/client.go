// Package awsclient builds the AWS SDK clients dictsmoke uses: Secrets
// Manager and SSM for key material, SNS for run summaries. Only this
// package loads AWS configuration; consumers define narrow interfaces over
// the clients it returns.
package awsclient

import (
	"context"
	"fmt"
	"net/http"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// Config holds AWS connection parameters.
type Config struct {
	// Endpoint overrides the default AWS endpoint.
	// Set to a LocalStack URL (e.g. "http://localhost:4566") for local development.
	// When empty, the default AWS endpoint resolver is used.
	Endpoint string

	// Region is the AWS region (e.g. "us-east-1").
	Region string

	// Timeout is the HTTP client timeout for AWS requests.
	Timeout time.Duration
}

// Clients bundles the service clients built from one AWS configuration.
type Clients struct {
	SecretsManager *secretsmanager.Client
	SSM            *ssm.Client
	SNS            *sns.Client
}

// New creates AWS clients configured from cfg. When cfg.Endpoint is
// non-empty, static test credentials are used and BaseEndpoint is set on
// every service client for LocalStack compatibility.
func New(ctx context.Context, cfg Config) (*Clients, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}

	if cfg.Endpoint != "" {
		opts = append(opts,
			awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider("test", "test", ""),
			),
		)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	if cfg.Timeout > 0 {
		awsCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	var endpoint *string
	if cfg.Endpoint != "" {
		e := cfg.Endpoint
		endpoint = &e
	}

	return &Clients{
		SecretsManager: secretsmanager.NewFromConfig(awsCfg, func(o *secretsmanager.Options) {
			if endpoint != nil {
				o.BaseEndpoint = endpoint
			}
		}),
		SSM: ssm.NewFromConfig(awsCfg, func(o *ssm.Options) {
			if endpoint != nil {
				o.BaseEndpoint = endpoint
			}
		}),
		SNS: sns.NewFromConfig(awsCfg, func(o *sns.Options) {
			if endpoint != nil {
				o.BaseEndpoint = endpoint
			}
		}),
	}, nil
}
