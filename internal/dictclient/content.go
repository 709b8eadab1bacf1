package dictclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aelexs/dictsmoke/internal/domain"
)

// ContentRef addresses one content collection inside a dictionary version,
// e.g. /dictionaries/sse/versions/1.0.3/cmds.
type ContentRef struct {
	Type    domain.DictionaryType
	Version string
	Kind    domain.ContentKind
}

// KeyField returns the document field that identifies items of the kind.
func (r ContentRef) KeyField() string {
	switch r.Kind {
	case domain.ContentCommands:
		return "command_stem"
	case domain.ContentEVRs:
		return "evr_id"
	case domain.ContentChannels:
		return "channel_id"
	case domain.ContentMIL1553:
		return "mil1553_name"
	}
	return ""
}

func (r ContentRef) segments(op string, extra ...string) ([]string, error) {
	if err := checkType(op, r.Type); err != nil {
		return nil, err
	}
	if !domain.IsValidContentKind(r.Kind) {
		return nil, fmt.Errorf("%s: content kind %q: %w", op, r.Kind, domain.ErrInvalidInput)
	}
	segs := []string{dictionariesPath, string(r.Type), versionsPath, r.Version, string(r.Kind)}
	return append(segs, extra...), nil
}

// CreateContent adds items to the collection. The service answers 201 with
// the created items.
func (c *Client) CreateContent(ctx context.Context, ref ContentRef, items []Document) ([]Document, error) {
	const op = "create content"
	segs, err := ref.segments(op)
	if err != nil {
		return nil, err
	}

	var out []Document
	if _, err := c.do(ctx, call{op: op, method: http.MethodPost, segments: segs, in: items, out: &out}); err != nil {
		return nil, err
	}
	return out, nil
}

// ListContent lists the collection. Filter on ref.KeyField() to find one item.
func (c *Client) ListContent(ctx context.Context, ref ContentRef, opts ListOptions) (Page, error) {
	const op = "list content"
	segs, err := ref.segments(op)
	if err != nil {
		return Page{}, err
	}
	return c.list(ctx, op, opts, segs...)
}

// GetContent fetches one item by key.
func (c *Client) GetContent(ctx context.Context, ref ContentRef, key string) (Document, error) {
	const op = "get content"
	segs, err := ref.segments(op, key)
	if err != nil {
		return nil, err
	}

	var out Document
	if _, err := c.do(ctx, call{op: op, method: http.MethodGet, segments: segs, out: &out}); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateContent patches one item and returns the stored document.
func (c *Client) UpdateContent(ctx context.Context, ref ContentRef, key string, patch Document) (Document, error) {
	const op = "update content"
	segs, err := ref.segments(op, key)
	if err != nil {
		return nil, err
	}

	var out Document
	if _, err := c.do(ctx, call{op: op, method: http.MethodPatch, segments: segs, in: patch, out: &out}); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteContent removes one item.
func (c *Client) DeleteContent(ctx context.Context, ref ContentRef, key string) error {
	const op = "delete content"
	segs, err := ref.segments(op, key)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, call{op: op, method: http.MethodDelete, segments: segs})
	return err
}

// BulkQueryContent fetches the items whose keys are listed. Unknown keys
// are absent from the result rather than an error.
func (c *Client) BulkQueryContent(ctx context.Context, ref ContentRef, keys []string) ([]Document, error) {
	const op = "bulk query content"
	segs, err := ref.segments(op, "bulk_query")
	if err != nil {
		return nil, err
	}

	var out []Document
	if _, err := c.do(ctx, call{op: op, method: http.MethodPost, segments: segs, in: keys, out: &out}); err != nil {
		return nil, err
	}
	return out, nil
}
