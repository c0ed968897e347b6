package logstore

import (
	"context"
	"sync"
	"time"
)

// MemorySink keeps records in process memory. Used by tests and dry runs.
type MemorySink struct {
	mu      sync.Mutex
	records []Record
}

// NewMemorySink creates an empty MemorySink.
func NewMemorySink() *MemorySink { return &MemorySink{} }

// Write implements Sink.
func (s *MemorySink) Write(_ context.Context, name, category, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, Record{
		Timestamp: time.Now().UTC(),
		Name:      normalizeName(name),
		Category:  category,
		Message:   message,
	})
	return nil
}

// Read implements Sink.
func (s *MemorySink) Read(_ context.Context, name string, lastN int) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name = normalizeName(name)
	var matched []Record
	for _, r := range s.records {
		if r.Name == name {
			matched = append(matched, r)
		}
	}
	if n := readLimit(lastN); len(matched) > n {
		matched = matched[len(matched)-n:]
	}
	return matched, nil
}

// Records returns every record, optionally filtered by category.
func (s *MemorySink) Records(category string) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Record
	for _, r := range s.records {
		if category == "" || r.Category == category {
			out = append(out, r)
		}
	}
	return out
}
