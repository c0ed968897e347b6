// Package logstore is the append-only record of what each trader did. Every
// record is keyed by trader name and category; the UI and the `logs` command
// read the most recent records back per trader.
package logstore

import (
	"context"
	"time"

	"github.com/hupe1980/tradingfloor/core"
)

// Categories written by traders and the lifecycle hook.
const (
	CategoryTrace      = "trace"
	CategoryAgent      = "agent"
	CategoryFunction   = "function"
	CategoryGeneration = "generation"
	CategoryResponse   = "response"
)

// DefaultReadLimit is the number of records Read returns when lastN <= 0.
const DefaultReadLimit = 10

// Record is one log entry.
type Record struct {
	Timestamp time.Time `json:"timestamp"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
}

// Sink stores records. Implementations must accept concurrent writes from
// every trader; each Write is a single atomic append.
type Sink interface {
	Write(ctx context.Context, name, category, message string) error
	// Read returns the last lastN records for name in chronological order.
	Read(ctx context.Context, name string, lastN int) ([]Record, error)
}

// normalizeName keys records the same way trader memory is keyed.
func normalizeName(name string) string {
	return core.TraderKey(name)
}

func readLimit(lastN int) int {
	if lastN <= 0 {
		return DefaultReadLimit
	}
	return lastN
}
