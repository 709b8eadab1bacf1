package awsclient_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aelexs/dictsmoke/internal/awsclient"
)

func TestNewWithEndpoint(t *testing.T) {
	clients, err := awsclient.New(context.Background(), awsclient.Config{
		Endpoint: "http://localhost:4566",
		Region:   "us-east-1",
		Timeout:  5 * time.Second,
	})

	require.NoError(t, err)
	require.NotNil(t, clients)
	assert.NotNil(t, clients.SecretsManager)
	assert.NotNil(t, clients.SSM)
	assert.NotNil(t, clients.SNS)

	opts := clients.SSM.Options()
	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://localhost:4566", *opts.BaseEndpoint)
}

func TestNewWithDefaultEndpoint(t *testing.T) {
	clients, err := awsclient.New(context.Background(), awsclient.Config{
		Region: "us-east-1",
	})

	require.NoError(t, err)
	require.NotNil(t, clients)
	assert.Nil(t, clients.SNS.Options().BaseEndpoint)
}
