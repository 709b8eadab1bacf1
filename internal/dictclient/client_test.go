package dictclient_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aelexs/dictsmoke/internal/auth"
	"github.com/aelexs/dictsmoke/internal/dictclient"
	"github.com/aelexs/dictsmoke/internal/domain"
	"github.com/aelexs/dictsmoke/internal/errmap"
)

// recorded is one request seen by the fake service.
type recorded struct {
	Method        string
	Path          string // escaped
	Query         string
	Body          string
	Authorization string
}

// fakeService answers every request with the next queued response and
// records what it received.
type fakeService struct {
	mu       sync.Mutex
	requests []recorded
	status   int
	body     string
	header   map[string]string
}

func (f *fakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, recorded{
		Method:        r.Method,
		Path:          r.URL.EscapedPath(),
		Query:         r.URL.RawQuery,
		Body:          string(b),
		Authorization: r.Header.Get("Authorization"),
	})
	status, body, header := f.status, f.body, f.header
	f.mu.Unlock()

	for k, v := range header {
		w.Header().Set(k, v)
	}
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func (f *fakeService) respond(status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status, f.body = status, body
}

func (f *fakeService) last(t *testing.T) recorded {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests, "no request reached the service")
	return f.requests[len(f.requests)-1]
}

func (f *fakeService) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func newClient(t *testing.T) (*dictclient.Client, *fakeService) {
	t.Helper()
	svc := &fakeService{}
	srv := httptest.NewServer(svc)
	t.Cleanup(srv.Close)

	c, err := dictclient.New(srv.URL+"/api/v4", srv.Client())
	require.NoError(t, err)
	return c, svc
}

var sseRef = dictclient.ContentRef{
	Type:    domain.DictionaryTypeSSE,
	Version: "1.0.7",
	Kind:    domain.ContentCommands,
}

func TestNew(t *testing.T) {
	t.Run("rejects relative URL", func(t *testing.T) {
		_, err := dictclient.New("/api/v4", nil)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("defaults http client", func(t *testing.T) {
		c, err := dictclient.New("http://localhost:5000/api/v4", nil)
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:5000/api/v4", c.BaseURL())
	})
}

func TestHealth(t *testing.T) {
	c, svc := newClient(t)
	svc.respond(http.StatusOK, `{"status":"OK"}`)

	h, err := c.Health(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "OK", h.Status)
	assert.Len(t, h.Fields, 1)
	req := svc.last(t)
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/api/v4/health", req.Path)
}

func TestDictionaries(t *testing.T) {
	ctx := context.Background()

	t.Run("create sends body and unwraps dictionary_info", func(t *testing.T) {
		c, svc := newClient(t)
		svc.respond(http.StatusOK, `{"dictionary_info":{"dictionary_type":"sse","dictionary_version":"1.0.7","state":"NOT_PUBLISHED","dictionary_description":"smoke"}}`)

		d, err := c.CreateDictionary(ctx, domain.DictionaryTypeSSE, dictclient.DictionaryInput{
			Description: "smoke",
			Version:     "1.0.7",
		})
		require.NoError(t, err)

		assert.Equal(t, domain.DictionaryTypeSSE, d.Type)
		assert.Equal(t, "1.0.7", d.Version)
		assert.Equal(t, domain.StateNotPublished, d.State)

		req := svc.last(t)
		assert.Equal(t, http.MethodPost, req.Method)
		assert.Equal(t, "/api/v4/dictionaries/sse/versions", req.Path)
		assert.JSONEq(t, `{"dictionary_description":"smoke","dictionary_version":"1.0.7","state":"NOT_PUBLISHED"}`, req.Body)
	})

	t.Run("create conflict", func(t *testing.T) {
		c, svc := newClient(t)
		svc.respond(http.StatusConflict, `{"error":"Conflict","message":"version exists"}`)

		_, err := c.CreateDictionary(ctx, domain.DictionaryTypeSSE, dictclient.DictionaryInput{Version: "1.0.7"})
		require.ErrorIs(t, err, domain.ErrConflict)
		assert.Contains(t, err.Error(), "version exists")
		assert.Equal(t, http.StatusConflict, errmap.StatusCode(err))
	})

	t.Run("create without envelope is malformed", func(t *testing.T) {
		c, svc := newClient(t)
		svc.respond(http.StatusOK, `{}`)

		_, err := c.CreateDictionary(ctx, domain.DictionaryTypeSSE, dictclient.DictionaryInput{Version: "1.0.7"})
		assert.ErrorIs(t, err, domain.ErrMalformedBody)
	})

	t.Run("invalid type never reaches the service", func(t *testing.T) {
		c, svc := newClient(t)

		_, err := c.GetDictionary(ctx, "ground", "1.0.0")
		require.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Zero(t, svc.count())
	})

	t.Run("get flat document", func(t *testing.T) {
		c, svc := newClient(t)
		svc.respond(http.StatusOK, `{"dictionary_type":"sse","dictionary_version":"1.0.7","state":"PUBLISHED"}`)

		d, err := c.GetDictionary(ctx, domain.DictionaryTypeSSE, "1.0.7")
		require.NoError(t, err)
		assert.Equal(t, domain.StatePublished, d.State)
		assert.Equal(t, "/api/v4/dictionaries/sse/versions/1.0.7", svc.last(t).Path)
	})

	t.Run("get missing", func(t *testing.T) {
		c, svc := newClient(t)
		svc.respond(http.StatusNotFound, `{"error":"Not Found","message":"no such version"}`)

		_, err := c.GetDictionary(ctx, domain.DictionaryTypeFlight, "9.9.1")
		assert.True(t, domain.IsNotFound(err))
	})

	t.Run("update sends only set fields", func(t *testing.T) {
		c, svc := newClient(t)
		svc.respond(http.StatusOK, `{"dictionary_info":{"dictionary_type":"sse","dictionary_version":"1.0.7","state":"PUBLISHED"}}`)

		d, err := c.UpdateDictionary(ctx, domain.DictionaryTypeSSE, "1.0.7", dictclient.DictionaryUpdate{
			State: domain.StatePublished,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StatePublished, d.State)

		req := svc.last(t)
		assert.Equal(t, http.MethodPatch, req.Method)
		assert.JSONEq(t, `{"state":"PUBLISHED"}`, req.Body)
	})

	t.Run("delete no content", func(t *testing.T) {
		c, svc := newClient(t)
		svc.respond(http.StatusNoContent, "")

		require.NoError(t, c.DeleteDictionary(ctx, domain.DictionaryTypeSSE, "1.0.7"))
		req := svc.last(t)
		assert.Equal(t, http.MethodDelete, req.Method)
		assert.Equal(t, "/api/v4/dictionaries/sse/versions/1.0.7", req.Path)
	})
}

func TestList(t *testing.T) {
	ctx := context.Background()

	t.Run("query parameters and total count", func(t *testing.T) {
		c, svc := newClient(t)
		svc.header = map[string]string{"x-total-count": "42"}
		svc.respond(http.StatusOK, `[{"dictionary_version":"1.0.1"},{"dictionary_version":"1.0.2"}]`)

		page, err := c.ListDictionaries(ctx, domain.DictionaryTypeSSE, dictclient.ListOptions{
			Limit:  2,
			Offset: 4,
			Sort:   "desc",
		})
		require.NoError(t, err)

		assert.Len(t, page.Items, 2)
		assert.Equal(t, "1.0.2", page.Items[1].String("dictionary_version"))
		assert.True(t, page.HasTotal)
		assert.Equal(t, 42, page.Total)
		assert.Equal(t, "limit=2&offset=4&sort=desc", svc.last(t).Query)
	})

	t.Run("filters are sorted and wild is sent", func(t *testing.T) {
		c, svc := newClient(t)
		svc.respond(http.StatusOK, `[]`)

		page, err := c.ListContent(ctx, sseRef, dictclient.ListOptions{
			Wild:    true,
			Filters: map[string]string{"command_stem": "TEST", "cmd_type": "FSW"},
		})
		require.NoError(t, err)

		assert.NotNil(t, page.Items)
		assert.Empty(t, page.Items)
		assert.False(t, page.HasTotal)
		req := svc.last(t)
		assert.Equal(t, "/api/v4/dictionaries/sse/versions/1.0.7/cmds", req.Path)
		assert.Equal(t, "cmd_type=FSW&command_stem=TEST&wild=true", req.Query)
	})

	t.Run("bad total count header", func(t *testing.T) {
		c, svc := newClient(t)
		svc.header = map[string]string{"x-total-count": "many"}
		svc.respond(http.StatusOK, `[]`)

		_, err := c.ListCustomScripts(ctx, dictclient.ListOptions{})
		assert.ErrorIs(t, err, domain.ErrMalformedBody)
	})

	t.Run("non-array body", func(t *testing.T) {
		c, svc := newClient(t)
		svc.respond(http.StatusOK, `{"items":[]}`)

		_, err := c.ListVerificationItems(ctx, dictclient.ListOptions{})
		assert.ErrorIs(t, err, domain.ErrMalformedBody)
	})
}

func TestContent(t *testing.T) {
	ctx := context.Background()

	t.Run("create posts array", func(t *testing.T) {
		c, svc := newClient(t)
		svc.respond(http.StatusCreated, `[{"command_stem":"TEST_CMD_1"}]`)

		out, err := c.CreateContent(ctx, sseRef, []dictclient.Document{{"command_stem": "TEST_CMD_1"}})
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, "TEST_CMD_1", out[0].String("command_stem"))

		req := svc.last(t)
		assert.Equal(t, http.MethodPost, req.Method)
		assert.JSONEq(t, `[{"command_stem":"TEST_CMD_1"}]`, req.Body)
	})

	t.Run("item path is escaped", func(t *testing.T) {
		c, svc := newClient(t)
		svc.respond(http.StatusOK, `{"command_stem":"A/B C"}`)

		doc, err := c.GetContent(ctx, sseRef, "A/B C")
		require.NoError(t, err)
		assert.Equal(t, "A/B C", doc.String("command_stem"))
		assert.Equal(t, "/api/v4/dictionaries/sse/versions/1.0.7/cmds/A%2FB%20C", svc.last(t).Path)
	})

	t.Run("dot segments rejected", func(t *testing.T) {
		c, _ := newClient(t)

		_, err := c.GetContent(ctx, sseRef, "..")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("unknown kind rejected", func(t *testing.T) {
		c, _ := newClient(t)
		ref := sseRef
		ref.Kind = "telemetry"

		_, err := c.ListContent(ctx, ref, dictclient.ListOptions{})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("update and delete", func(t *testing.T) {
		c, svc := newClient(t)
		svc.respond(http.StatusOK, `{"command_stem":"TEST_CMD_1","cmd_description":"changed"}`)

		doc, err := c.UpdateContent(ctx, sseRef, "TEST_CMD_1", dictclient.Document{"cmd_description": "changed"})
		require.NoError(t, err)
		assert.Equal(t, "changed", doc.String("cmd_description"))
		assert.Equal(t, http.MethodPatch, svc.last(t).Method)

		svc.respond(http.StatusNoContent, "")
		require.NoError(t, c.DeleteContent(ctx, sseRef, "TEST_CMD_1"))
		assert.Equal(t, http.MethodDelete, svc.last(t).Method)
	})

	t.Run("bulk query", func(t *testing.T) {
		c, svc := newClient(t)
		svc.respond(http.StatusOK, `[{"command_stem":"TEST_CMD_1"}]`)

		out, err := c.BulkQueryContent(ctx, sseRef, []string{"TEST_CMD_1", "MISSING"})
		require.NoError(t, err)
		assert.Len(t, out, 1)

		req := svc.last(t)
		assert.Equal(t, "/api/v4/dictionaries/sse/versions/1.0.7/cmds/bulk_query", req.Path)
		assert.JSONEq(t, `["TEST_CMD_1","MISSING"]`, req.Body)
	})
}

func TestContentRefKeyField(t *testing.T) {
	tests := map[domain.ContentKind]string{
		domain.ContentCommands: "command_stem",
		domain.ContentEVRs:     "evr_id",
		domain.ContentChannels: "channel_id",
		domain.ContentMIL1553:  "mil1553_name",
		"other":                "",
	}
	for kind, want := range tests {
		assert.Equal(t, want, dictclient.ContentRef{Kind: kind}.KeyField(), string(kind))
	}
}

func TestCollections(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		call   func(*dictclient.Client) error
		method string
		path   string
	}{
		{
			name: "create custom scripts",
			call: func(c *dictclient.Client) error {
				_, err := c.CreateCustomScripts(ctx, []dictclient.Document{{"script_id": "s1"}})
				return err
			},
			method: http.MethodPost,
			path:   "/api/v4/custom_scripts",
		},
		{
			name: "get custom script",
			call: func(c *dictclient.Client) error {
				_, err := c.GetCustomScript(ctx, "s1")
				return err
			},
			method: http.MethodGet,
			path:   "/api/v4/custom_scripts/s1",
		},
		{
			name: "update custom script",
			call: func(c *dictclient.Client) error {
				_, err := c.UpdateCustomScript(ctx, "s1", dictclient.Document{"status": "INACTIVE"})
				return err
			},
			method: http.MethodPatch,
			path:   "/api/v4/custom_scripts/s1",
		},
		{
			name:   "delete custom script",
			call:   func(c *dictclient.Client) error { return c.DeleteCustomScript(ctx, "s1") },
			method: http.MethodDelete,
			path:   "/api/v4/custom_scripts/s1",
		},
		{
			name: "bulk query custom scripts",
			call: func(c *dictclient.Client) error {
				_, err := c.BulkQueryCustomScripts(ctx, []string{"s1"})
				return err
			},
			method: http.MethodPost,
			path:   "/api/v4/custom_scripts/bulk_query",
		},
		{
			name: "create verification items",
			call: func(c *dictclient.Client) error {
				_, err := c.CreateVerificationItems(ctx, []dictclient.Document{{"vi_id": "v1"}})
				return err
			},
			method: http.MethodPost,
			path:   "/api/v4/vnv/vis",
		},
		{
			name: "get verification item",
			call: func(c *dictclient.Client) error {
				_, err := c.GetVerificationItem(ctx, "v1")
				return err
			},
			method: http.MethodGet,
			path:   "/api/v4/vnv/vis/v1",
		},
		{
			name: "update verification item",
			call: func(c *dictclient.Client) error {
				_, err := c.UpdateVerificationItem(ctx, "v1", dictclient.Document{"vi_type": "Test"})
				return err
			},
			method: http.MethodPatch,
			path:   "/api/v4/vnv/vis/v1",
		},
		{
			name:   "delete verification item",
			call:   func(c *dictclient.Client) error { return c.DeleteVerificationItem(ctx, "v1") },
			method: http.MethodDelete,
			path:   "/api/v4/vnv/vis/v1",
		},
		{
			name: "bulk query verification items",
			call: func(c *dictclient.Client) error {
				_, err := c.BulkQueryVerificationItems(ctx, []string{"v1"})
				return err
			},
			method: http.MethodPost,
			path:   "/api/v4/vnv/vis/bulk",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, svc := newClient(t)

			require.NoError(t, tt.call(c))

			req := svc.last(t)
			assert.Equal(t, tt.method, req.Method)
			assert.Equal(t, tt.path, req.Path)
		})
	}
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusBadRequest, domain.ErrInvalidInput},
		{http.StatusUnauthorized, domain.ErrUnauthorized},
		{http.StatusForbidden, domain.ErrUnauthorized},
		{http.StatusNotFound, domain.ErrNotFound},
		{http.StatusConflict, domain.ErrConflict},
		{http.StatusInternalServerError, domain.ErrUnexpectedStatus},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c, svc := newClient(t)
			svc.respond(tt.status, `{"error":"x","message":"y"}`)

			_, err := c.GetCustomScript(context.Background(), "s1")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSessionTransportAttachesBearer(t *testing.T) {
	svc := &fakeService{}
	srv := httptest.NewServer(svc)
	t.Cleanup(srv.Close)

	session := auth.NewSession()
	httpClient := &http.Client{Transport: session.Transport(srv.Client().Transport)}
	c, err := dictclient.New(srv.URL+"/api/v4", httpClient)
	require.NoError(t, err)

	svc.respond(http.StatusOK, `{"status":"OK"}`)
	_, err = c.Health(context.Background())
	require.NoError(t, err)
	assert.Empty(t, svc.last(t).Authorization, "empty session sends no header")

	session.SetToken("abc", time.Now().Add(time.Hour))
	_, err = c.GetCustomScript(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", svc.last(t).Authorization)
}

func TestContextCancellation(t *testing.T) {
	c, svc := newClient(t)
	svc.respond(http.StatusOK, `{"status":"OK"}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Health(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
