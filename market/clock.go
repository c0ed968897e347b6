// Package market answers whether the US equity market is open.
//
// Two clocks are provided: SessionClock computes NYSE regular hours from a
// built-in holiday calendar, PolygonClock asks Polygon's market status API.
// Both report calendar failures as ErrCalendarUnavailable; callers treat that
// the same as a closed market.
package market

import (
	"context"
	"errors"
	"time"
)

// ErrCalendarUnavailable means the clock could not decide. The market must
// then be treated as closed.
var ErrCalendarUnavailable = errors.New("market calendar unavailable")

// Clock reports whether the market is open at a given instant.
type Clock interface {
	IsOpen(ctx context.Context, now time.Time) (bool, error)
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func(ctx context.Context, now time.Time) (bool, error)

// IsOpen implements Clock.
func (f ClockFunc) IsOpen(ctx context.Context, now time.Time) (bool, error) { return f(ctx, now) }

// IsOpen is the fail-closed wrapper around a clock: any error yields false.
func IsOpen(ctx context.Context, c Clock, now time.Time) (bool, error) {
	open, err := c.IsOpen(ctx, now)
	if err != nil {
		return false, err
	}
	return open, nil
}
