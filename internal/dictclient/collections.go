package dictclient

import (
	"context"
	"net/http"
)

// collection is a top-level resource with the create/list/get/update/
// delete/bulk shape shared by custom scripts and verification items.
type collection struct {
	name string
	path []string
	bulk string
}

var (
	customScripts = collection{
		name: "custom script",
		path: []string{"custom_scripts"},
		bulk: "bulk_query",
	}
	verificationItems = collection{
		name: "verification item",
		path: []string{"vnv", "vis"},
		bulk: "bulk",
	}
)

func (col collection) at(extra ...string) []string {
	segs := make([]string, 0, len(col.path)+len(extra))
	segs = append(segs, col.path...)
	return append(segs, extra...)
}

func (c *Client) createIn(ctx context.Context, col collection, items []Document) ([]Document, error) {
	var out []Document
	if _, err := c.do(ctx, call{
		op:       "create " + col.name + "s",
		method:   http.MethodPost,
		segments: col.at(),
		in:       items,
		out:      &out,
	}); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) getIn(ctx context.Context, col collection, id string) (Document, error) {
	var out Document
	if _, err := c.do(ctx, call{
		op:       "get " + col.name,
		method:   http.MethodGet,
		segments: col.at(id),
		out:      &out,
	}); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) updateIn(ctx context.Context, col collection, id string, patch Document) (Document, error) {
	var out Document
	if _, err := c.do(ctx, call{
		op:       "update " + col.name,
		method:   http.MethodPatch,
		segments: col.at(id),
		in:       patch,
		out:      &out,
	}); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) deleteIn(ctx context.Context, col collection, id string) error {
	_, err := c.do(ctx, call{
		op:       "delete " + col.name,
		method:   http.MethodDelete,
		segments: col.at(id),
	})
	return err
}

func (c *Client) bulkIn(ctx context.Context, col collection, ids []string) ([]Document, error) {
	var out []Document
	if _, err := c.do(ctx, call{
		op:       "bulk query " + col.name + "s",
		method:   http.MethodPost,
		segments: col.at(col.bulk),
		in:       ids,
		out:      &out,
	}); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateCustomScripts registers scripts; the service answers 201 with them.
func (c *Client) CreateCustomScripts(ctx context.Context, scripts []Document) ([]Document, error) {
	return c.createIn(ctx, customScripts, scripts)
}

// ListCustomScripts lists scripts, e.g. Filters{"status": "ACTIVE"}.
func (c *Client) ListCustomScripts(ctx context.Context, opts ListOptions) (Page, error) {
	return c.list(ctx, "list custom scripts", opts, customScripts.at()...)
}

// GetCustomScript fetches one script by id.
func (c *Client) GetCustomScript(ctx context.Context, id string) (Document, error) {
	return c.getIn(ctx, customScripts, id)
}

// UpdateCustomScript patches a script and returns the stored document.
func (c *Client) UpdateCustomScript(ctx context.Context, id string, patch Document) (Document, error) {
	return c.updateIn(ctx, customScripts, id, patch)
}

// DeleteCustomScript removes a script.
func (c *Client) DeleteCustomScript(ctx context.Context, id string) error {
	return c.deleteIn(ctx, customScripts, id)
}

// BulkQueryCustomScripts fetches the scripts with the given ids in one request.
func (c *Client) BulkQueryCustomScripts(ctx context.Context, ids []string) ([]Document, error) {
	return c.bulkIn(ctx, customScripts, ids)
}

// CreateVerificationItems registers V&V items.
func (c *Client) CreateVerificationItems(ctx context.Context, items []Document) ([]Document, error) {
	return c.createIn(ctx, verificationItems, items)
}

// ListVerificationItems lists V&V items. The service answers 404 rather
// than an empty page when nothing matches.
func (c *Client) ListVerificationItems(ctx context.Context, opts ListOptions) (Page, error) {
	return c.list(ctx, "list verification items", opts, verificationItems.at()...)
}

// GetVerificationItem fetches one V&V item by id.
func (c *Client) GetVerificationItem(ctx context.Context, id string) (Document, error) {
	return c.getIn(ctx, verificationItems, id)
}

// UpdateVerificationItem patches a V&V item and returns the stored document.
func (c *Client) UpdateVerificationItem(ctx context.Context, id string, patch Document) (Document, error) {
	return c.updateIn(ctx, verificationItems, id, patch)
}

// DeleteVerificationItem removes a V&V item.
func (c *Client) DeleteVerificationItem(ctx context.Context, id string) error {
	return c.deleteIn(ctx, verificationItems, id)
}

// BulkQueryVerificationItems fetches the V&V items with the given ids in one request.
func (c *Client) BulkQueryVerificationItems(ctx context.Context, ids []string) ([]Document, error) {
	return c.bulkIn(ctx, verificationItems, ids)
}
