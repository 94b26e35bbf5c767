// Package flash queues notifications in a browser's storage scope until the
// next page render drains them.
package flash

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/sanadcare/admin-console/internal/core/domain"
	"github.com/sanadcare/admin-console/internal/core/ports"
)

// MaxQueued bounds the queue; the oldest entries are dropped first.
const MaxQueued = 20

// Queue implements ports.Notifier on top of a storage scope.
type Queue struct {
	store ports.Storage
}

var _ ports.Notifier = (*Queue)(nil)

// New returns a queue over store.
func New(store ports.Storage) *Queue {
	return &Queue{store: store}
}

// Notify appends n to the queue.
func (q *Queue) Notify(ctx context.Context, n domain.Notification) error {
	pending, err := q.load(ctx)
	if err != nil {
		return err
	}
	pending = append(pending, n)
	if len(pending) > MaxQueued {
		pending = pending[len(pending)-MaxQueued:]
	}

	raw, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("notify: encode: %w", err)
	}
	if err := q.store.Set(ctx, map[string]string{domain.KeyNotifications: string(raw)}); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	return nil
}

// Drain returns the queued notifications in order and empties the queue.
func (q *Queue) Drain(ctx context.Context) ([]domain.Notification, error) {
	pending, err := q.load(ctx)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return []domain.Notification{}, nil
	}
	if err := q.store.Remove(ctx, domain.KeyNotifications); err != nil {
		return nil, fmt.Errorf("drain notifications: %w", err)
	}
	return pending, nil
}

// load treats an unreadable queue as empty.
func (q *Queue) load(ctx context.Context) ([]domain.Notification, error) {
	raw, ok, err := q.store.Get(ctx, domain.KeyNotifications)
	if err != nil {
		return nil, fmt.Errorf("load notifications: %w", err)
	}
	if !ok || raw == "" {
		return nil, nil
	}
	var pending []domain.Notification
	if err := json.Unmarshal([]byte(raw), &pending); err != nil {
		return nil, nil
	}
	return pending, nil
}
