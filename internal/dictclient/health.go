package dictclient

import (
	"context"
	"net/http"
)

// Health calls GET /health. The service answers without authentication.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var doc Document
	if _, err := c.do(ctx, call{
		op:       "health",
		method:   http.MethodGet,
		segments: []string{"health"},
		out:      &doc,
	}); err != nil {
		return Health{}, err
	}
	return Health{Status: doc.String("status"), Fields: doc}, nil
}
