// Package memory keeps the notification feed in process memory.
package memory

import (
	"context"
	"sync"

	"github.com/anastasipancheva/miniapppass/internal/notification/entity"
)

// DefaultRetention bounds the feed when no cap is configured.
const DefaultRetention = 500

// Feed is an append-only ring of the most recent notifications.
type Feed struct {
	mu        sync.RWMutex
	items     []entity.Notification
	retention int
}

func NewFeed(retention int) *Feed {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Feed{retention: retention, items: make([]entity.Notification, 0, min(retention, 64))}
}

// Append stores n, dropping the oldest entry once the cap is reached.
func (f *Feed) Append(_ context.Context, n entity.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.items) == f.retention {
		copy(f.items, f.items[1:])
		f.items = f.items[:len(f.items)-1]
	}
	f.items = append(f.items, n)
}

// Latest returns up to limit entries, newest first. A limit of zero or less
// returns everything retained.
func (f *Feed) Latest(_ context.Context, limit int) []entity.Notification {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if limit <= 0 || limit > len(f.items) {
		limit = len(f.items)
	}

	out := make([]entity.Notification, 0, limit)
	for i := len(f.items) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.items[i])
	}
	return out
}

func (f *Feed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.items)
}
