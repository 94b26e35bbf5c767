package ports

import (
	"context"
	"net/url"

	"github.com/goccy/go-json"
)

// Envelope is the upstream's standard response body.
type Envelope struct {
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	Meta    json.RawMessage `json:"meta,omitempty"`
}

// Action is a call outside the CRUD verbs, such as PUT /doctors/7/verify or
// PATCH /api/notifications/mark-all-read. ID and Name are appended to Path
// when set.
type Action struct {
	Method string
	Path   string
	ID     string
	Name   string
	Query  url.Values
	Body   json.RawMessage
}

// ResourceGateway proxies the dashboard's CRUD screens to the upstream API.
type ResourceGateway interface {
	List(ctx context.Context, path string, query url.Values) (*Envelope, error)
	Show(ctx context.Context, path, id string) (*Envelope, error)
	Create(ctx context.Context, path string, body json.RawMessage) (*Envelope, error)
	Update(ctx context.Context, path, id string, body json.RawMessage) (*Envelope, error)
	Delete(ctx context.Context, path, id string) (*Envelope, error)
	ToggleStatus(ctx context.Context, path, id string, body json.RawMessage) (*Envelope, error)
	Perform(ctx context.Context, a Action) (*Envelope, error)
}
