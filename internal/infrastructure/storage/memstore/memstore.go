// Package memstore keeps browser storage scopes in process memory. Used for
// local development (STORAGE_DRIVER=memory) and tests; nothing survives a restart.
package memstore

import (
	"context"
	"sync"

	"github.com/sanadcare/admin-console/internal/core/ports"
)

// Provider owns all scopes.
type Provider struct {
	mu     sync.Mutex
	scopes map[string]map[string]string
}

// New returns an empty provider.
func New() *Provider {
	return &Provider{scopes: make(map[string]map[string]string)}
}

// Scope returns the storage of sessionID.
func (p *Provider) Scope(sessionID string) ports.Storage {
	return &Storage{p: p, id: sessionID}
}

// Storage is one browser's scope.
type Storage struct {
	p  *Provider
	id string
}

func (s *Storage) All(_ context.Context) (map[string]string, error) {
	s.p.mu.Lock()
	defer s.p.mu.Unlock()

	out := make(map[string]string, len(s.p.scopes[s.id]))
	for k, v := range s.p.scopes[s.id] {
		out[k] = v
	}
	return out, nil
}

func (s *Storage) Get(_ context.Context, key string) (string, bool, error) {
	s.p.mu.Lock()
	defer s.p.mu.Unlock()

	v, ok := s.p.scopes[s.id][key]
	return v, ok, nil
}

func (s *Storage) Set(_ context.Context, values map[string]string) error {
	s.p.mu.Lock()
	defer s.p.mu.Unlock()

	scope, ok := s.p.scopes[s.id]
	if !ok {
		scope = make(map[string]string, len(values))
		s.p.scopes[s.id] = scope
	}
	for k, v := range values {
		scope[k] = v
	}
	return nil
}

func (s *Storage) Remove(_ context.Context, keys ...string) error {
	s.p.mu.Lock()
	defer s.p.mu.Unlock()

	scope := s.p.scopes[s.id]
	for _, k := range keys {
		delete(scope, k)
	}
	if len(scope) == 0 {
		delete(s.p.scopes, s.id)
	}
	return nil
}
