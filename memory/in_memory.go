package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/tradingfloor/core"
)

// ErrNotFound is returned when deleting an unknown memory id.
var ErrNotFound = errors.New("memory not found")

// StoredMemory is the internal representation persisted by InMemoryStore.
type StoredMemory struct {
	ID        string
	Entity    string
	Content   string
	Metadata  map[string]any
	CreatedAt time.Time
}

// InMemoryStore is a naive process-local MemoryStore.
//
// Search is a linear scan scoring each memory by the fraction of query terms
// it contains. Suitable for tests and dry runs.
type InMemoryStore struct {
	mu      sync.RWMutex
	storage map[string]StoredMemory
	now     func() time.Time
}

// NewInMemoryStore creates a new in-memory memory store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		storage: make(map[string]StoredMemory),
		now:     time.Now,
	}
}

// Store appends a new memory and returns its id.
func (m *InMemoryStore) Store(_ context.Context, entity, content string, metadata map[string]any) (string, error) {
	if content == "" {
		return "", fmt.Errorf("empty memory content")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	id := uuid.NewString()
	m.storage[id] = StoredMemory{
		ID:        id,
		Entity:    entity,
		Content:   content,
		Metadata:  copyMetadata(metadata),
		CreatedAt: m.now(),
	}
	return id, nil
}

// Search returns up to limit memories matching query, best score first and
// newest first among equal scores. An empty query lists the newest memories.
func (m *InMemoryStore) Search(_ context.Context, query string, limit int) ([]core.SearchResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	terms := queryTerms(query)
	results := make([]core.SearchResult, 0)
	for _, stored := range m.storage {
		score := matchScore(terms, stored.Entity+" "+stored.Content)
		if score == 0 {
			continue
		}
		results = append(results, core.SearchResult{
			ID:        stored.ID,
			Entity:    stored.Entity,
			Content:   stored.Content,
			Score:     score,
			CreatedAt: stored.CreatedAt,
			Metadata:  copyMetadata(stored.Metadata),
		})
	}
	return rank(results, limit), nil
}

// Delete removes a stored memory entry by id.
func (m *InMemoryStore) Delete(_ context.Context, memoryID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.storage[memoryID]; !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, memoryID)
	}
	delete(m.storage, memoryID)
	return nil
}

// Close is a no-op.
func (m *InMemoryStore) Close() error { return nil }

func rank(results []core.SearchResult, limit int) []core.SearchResult {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

func copyMetadata(md map[string]any) map[string]any {
	out := make(map[string]any, len(md))
	for k, v := range md {
		out[k] = v
	}
	return out
}
