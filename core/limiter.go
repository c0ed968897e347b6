package core

import (
	"errors"
	"sync"
)

// ErrTurnLimit is returned by TurnLimiter.Take once the budget is spent.
var ErrTurnLimit = errors.New("turn limit reached")

// TurnLimiter caps the number of model turns an agent may take within one
// invocation. A zero max means unlimited.
type TurnLimiter struct {
	mu    sync.Mutex
	max   int
	taken int
}

// NewTurnLimiter creates a limiter allowing max turns.
func NewTurnLimiter(max int) *TurnLimiter {
	return &TurnLimiter{max: max}
}

// Take consumes one turn. It returns ErrTurnLimit without consuming when the
// budget is already exhausted.
func (l *TurnLimiter) Take() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.max > 0 && l.taken >= l.max {
		return ErrTurnLimit
	}
	l.taken++

	return nil
}

// Taken returns the number of turns consumed so far.
func (l *TurnLimiter) Taken() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.taken
}

// Remaining returns how many turns are left, or -1 when unlimited.
func (l *TurnLimiter) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.max == 0 {
		return -1
	}

	return l.max - l.taken
}
