package core

import "time"

// SearchResult represents a retrieved memory item with a relevance score and arbitrary metadata.
type SearchResult struct {
	ID        string
	Entity    string
	Content   string
	Score     float64
	CreatedAt time.Time
	Metadata  map[string]any
}
