package core

import "context"

// MemoryStore is the long term memory of a single researcher. A store is
// scoped to one trader: callers never pass a namespace, they are handed the
// store that belongs to them. Implementations must be safe for concurrent use.
type MemoryStore interface {
	Store(ctx context.Context, entity, content string, metadata map[string]any) (string, error)
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
	Delete(ctx context.Context, memoryID string) error
	Close() error
}
