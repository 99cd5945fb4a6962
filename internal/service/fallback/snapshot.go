// Package fallback keeps the last successfully loaded copy of a collection so
// reads can be served while the document store is unreachable.
package fallback

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Snapshot caches the last good result of a list query.
type Snapshot[T any] struct {
	name   string
	key    func(T) string
	logger *zap.Logger

	mu     sync.RWMutex
	items  []T
	loaded bool
}

// NewSnapshot builds an empty snapshot; key identifies an item for Put.
func NewSnapshot[T any](name string, key func(T) string, logger *zap.Logger) *Snapshot[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Snapshot[T]{name: name, key: key, logger: logger}
}

// Load runs fetch and remembers its result. When fetch fails after an earlier
// success, the remembered items are returned instead of the error.
func (s *Snapshot[T]) Load(ctx context.Context, fetch func(context.Context) ([]T, error)) ([]T, error) {
	items, err := fetch(ctx)
	if err == nil {
		s.mu.Lock()
		s.items = append(make([]T, 0, len(items)), items...)
		s.loaded = true
		s.mu.Unlock()
		return items, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return nil, err
	}
	s.logger.Warn("serving cached copy", zap.String("collection", s.name), zap.Error(err))
	return append(make([]T, 0, len(s.items)), s.items...), nil
}

// Put inserts or replaces one item in the cached copy.
func (s *Snapshot[T]) Put(item T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.key(item)
	for i := range s.items {
		if s.key(s.items[i]) == id {
			s.items[i] = item
			return
		}
	}
	s.items = append(s.items, item)
}
