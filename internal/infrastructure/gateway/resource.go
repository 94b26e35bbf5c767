package gateway

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"

	"github.com/sanadcare/admin-console/internal/core/ports"
)

// List fetches a collection. query is forwarded as is (page, search, filters).
func (c *Client) List(ctx context.Context, path string, query url.Values) (*ports.Envelope, error) {
	return c.do(ctx, resty.MethodGet, resourcePath(path), nil, query)
}

// Show fetches one item.
func (c *Client) Show(ctx context.Context, path, id string) (*ports.Envelope, error) {
	return c.do(ctx, resty.MethodGet, resourcePath(path, id), nil, nil)
}

// Create posts a new item.
func (c *Client) Create(ctx context.Context, path string, body json.RawMessage) (*ports.Envelope, error) {
	return c.do(ctx, resty.MethodPost, resourcePath(path), body, nil)
}

// Update replaces an item.
func (c *Client) Update(ctx context.Context, path, id string, body json.RawMessage) (*ports.Envelope, error) {
	return c.do(ctx, resty.MethodPut, resourcePath(path, id), body, nil)
}

// Delete removes an item.
func (c *Client) Delete(ctx context.Context, path, id string) (*ports.Envelope, error) {
	return c.do(ctx, resty.MethodDelete, resourcePath(path, id), nil, nil)
}

// ToggleStatus flips an item's active flag.
func (c *Client) ToggleStatus(ctx context.Context, path, id string, body json.RawMessage) (*ports.Envelope, error) {
	return c.do(ctx, resty.MethodPatch, resourcePath(path, id, "toggle-status"), body, nil)
}

// Perform sends a non-CRUD action.
func (c *Client) Perform(ctx context.Context, a ports.Action) (*ports.Envelope, error) {
	var segments []string
	if a.ID != "" {
		segments = append(segments, a.ID)
	}
	if a.Name != "" {
		segments = append(segments, a.Name)
	}
	return c.do(ctx, a.Method, resourcePath(a.Path, segments...), a.Body, a.Query)
}

func (c *Client) do(ctx context.Context, method, path string, body json.RawMessage, query url.Values) (*ports.Envelope, error) {
	var out ports.Envelope
	req := c.request(ctx).SetResult(&out)
	if len(body) > 0 {
		req.SetHeader("Content-Type", "application/json").SetBody([]byte(body))
	}
	if len(query) > 0 {
		req.SetQueryParamsFromValues(query)
	}

	if _, err := req.Execute(method, path); err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, classify(err))
	}
	return &out, nil
}

// resourcePath joins a page path with escaped segments.
func resourcePath(base string, segments ...string) string {
	p := "/" + strings.Trim(base, "/")
	for _, s := range segments {
		p += "/" + url.PathEscape(s)
	}
	return p
}
