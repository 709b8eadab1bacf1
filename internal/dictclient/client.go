// Package dictclient is a typed REST client for the dictionary service
// (/api/v4). Authorization is not handled here: callers pass an
// *http.Client whose transport attaches the session's bearer header.
package dictclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/aelexs/dictsmoke/internal/domain"
	"github.com/aelexs/dictsmoke/internal/errmap"
	"github.com/aelexs/dictsmoke/internal/observability"
)

var tracer = otel.Tracer("dictsmoke/dictclient")

// maxResponseBody caps how much of any response is read.
const maxResponseBody = 16 << 20

// Client calls the dictionary service.
type Client struct {
	base *url.URL
	http *http.Client
}

// New returns a client for the service rooted at apiBase, which already
// includes the /api/v4 suffix (see config.Config.APIBaseURL).
func New(apiBase string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(apiBase)
	if err != nil {
		return nil, fmt.Errorf("parse service URL %q: %w: %w", apiBase, domain.ErrInvalidInput, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("service URL %q must be absolute: %w", apiBase, domain.ErrInvalidInput)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: domain.DefaultHTTPTimeout}
	}
	return &Client{base: u, http: httpClient}, nil
}

// BaseURL returns the API root the client was built with.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// endpoint escapes each segment and joins it under the API root.
func (c *Client) endpoint(query url.Values, segments ...string) (string, error) {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		if s == "" || s == "." || s == ".." {
			return "", fmt.Errorf("invalid path segment %q: %w", s, domain.ErrInvalidInput)
		}
		escaped[i] = url.PathEscape(s)
	}
	u := c.base.JoinPath(escaped...)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String(), nil
}

// call is one request/response exchange. in is JSON-encoded when non-nil;
// out is decoded when non-nil and the body is non-empty.
type call struct {
	op       string
	method   string
	segments []string
	query    url.Values
	in       any
	out      any
}

// do performs c and returns the response headers. Non-2xx statuses are
// returned as *errmap.StatusError wrapping the matching domain error.
func (c *Client) do(ctx context.Context, cl call) (http.Header, error) {
	ctx, span := tracer.Start(ctx, "dictclient."+cl.op)
	defer span.End()

	target, err := c.endpoint(cl.query, cl.segments...)
	if err != nil {
		return nil, observability.FailSpan(span, fmt.Errorf("%s: %w", cl.op, err))
	}
	span.SetAttributes(
		attribute.String("http.request.method", cl.method),
		attribute.String("url.full", target),
	)

	var body io.Reader
	if cl.in != nil {
		b, err := json.Marshal(cl.in)
		if err != nil {
			return nil, observability.FailSpan(span, fmt.Errorf("%s: encode request: %w", cl.op, err))
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, target, body)
	if err != nil {
		return nil, observability.FailSpan(span, fmt.Errorf("%s: create request: %w", cl.op, err))
	}
	req.Header.Set("Accept", "application/json")
	if cl.in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, observability.FailSpan(span, fmt.Errorf("%s: %s %s: %w", cl.op, cl.method, target, err))
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, observability.FailSpan(span, fmt.Errorf("%s: read response: %w", cl.op, err))
	}

	if err := errmap.FromHTTPStatus(resp.StatusCode, raw); err != nil {
		return resp.Header, observability.FailSpan(span, fmt.Errorf("%s: %w", cl.op, err))
	}

	if cl.out != nil && len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, cl.out); err != nil {
			return resp.Header, observability.FailSpan(span, fmt.Errorf("%s: %w: %w", cl.op, domain.ErrMalformedBody, err))
		}
	}

	observability.LoggerFromContext(ctx).Debug("dictionary service call",
		"op", cl.op,
		"method", cl.method,
		"url", target,
		"status", resp.StatusCode,
	)
	return resp.Header, nil
}

// list performs a GET returning a JSON array plus the x-total-count header.
func (c *Client) list(ctx context.Context, op string, opts ListOptions, segments ...string) (Page, error) {
	var items []Document
	header, err := c.do(ctx, call{
		op:       op,
		method:   http.MethodGet,
		segments: segments,
		query:    opts.values(),
		out:      &items,
	})
	if err != nil {
		return Page{}, err
	}

	page := Page{Items: items}
	if page.Items == nil {
		page.Items = []Document{}
	}
	if raw := strings.TrimSpace(header.Get(domain.TotalCountHeader)); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Page{}, fmt.Errorf("%s: %w: %s header %q", op, domain.ErrMalformedBody, domain.TotalCountHeader, raw)
		}
		page.Total = n
		page.HasTotal = true
	}
	return page, nil
}
