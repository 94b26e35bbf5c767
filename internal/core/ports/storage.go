package ports

import "context"

// Storage is the durable key/value scope of a single browser. It replaces the
// browser's localStorage: values are strings, JSON where structured.
type Storage interface {
	// All returns every key held by the scope. An unknown scope is empty.
	All(ctx context.Context) (map[string]string, error)
	Get(ctx context.Context, key string) (string, bool, error)
	// Set writes all pairs in one step.
	Set(ctx context.Context, values map[string]string) error
	Remove(ctx context.Context, keys ...string) error
}

// StorageProvider hands out the storage scope of a browser session id.
type StorageProvider interface {
	Scope(sessionID string) Storage
}
