package market

import (
	"context"
	"fmt"
	"time"
	_ "time/tzdata" // America/New_York on hosts without zoneinfo
)

const dateLayout = "2006-01-02"

// nyseHolidays lists full-day closures.
var nyseHolidays = map[string]string{
	"2025-01-01": "New Year's Day",
	"2025-01-09": "National Day of Mourning",
	"2025-01-20": "Martin Luther King Jr. Day",
	"2025-02-17": "Washington's Birthday",
	"2025-04-18": "Good Friday",
	"2025-05-26": "Memorial Day",
	"2025-06-19": "Juneteenth",
	"2025-07-04": "Independence Day",
	"2025-09-01": "Labor Day",
	"2025-11-27": "Thanksgiving Day",
	"2025-12-25": "Christmas Day",
	"2026-01-01": "New Year's Day",
	"2026-01-19": "Martin Luther King Jr. Day",
	"2026-02-16": "Washington's Birthday",
	"2026-04-03": "Good Friday",
	"2026-05-25": "Memorial Day",
	"2026-06-19": "Juneteenth",
	"2026-07-03": "Independence Day (observed)",
	"2026-09-07": "Labor Day",
	"2026-11-26": "Thanksgiving Day",
	"2026-12-25": "Christmas Day",
	"2027-01-01": "New Year's Day",
	"2027-01-18": "Martin Luther King Jr. Day",
	"2027-02-15": "Washington's Birthday",
	"2027-03-26": "Good Friday",
	"2027-05-31": "Memorial Day",
	"2027-06-18": "Juneteenth (observed)",
	"2027-07-05": "Independence Day (observed)",
	"2027-09-06": "Labor Day",
	"2027-11-25": "Thanksgiving Day",
	"2027-12-24": "Christmas Day (observed)",
}

// nyseEarlyCloses lists 13:00 closes.
var nyseEarlyCloses = map[string]bool{
	"2025-07-03": true,
	"2025-11-28": true,
	"2025-12-24": true,
	"2026-11-27": true,
	"2026-12-24": true,
	"2027-11-26": true,
}

// SessionClock implements NYSE regular trading hours, 09:30 to 16:00
// America/New_York on weekdays that are not exchange holidays.
type SessionClock struct {
	loc       *time.Location
	firstYear int
	lastYear  int
	holidays  map[string]string
	early     map[string]bool
}

// NewSessionClock loads the New York time zone and the built-in calendar.
func NewSessionClock() (*SessionClock, error) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return nil, fmt.Errorf("%w: load America/New_York: %v", ErrCalendarUnavailable, err)
	}
	return &SessionClock{
		loc:       loc,
		firstYear: 2025,
		lastYear:  2027,
		holidays:  nyseHolidays,
		early:     nyseEarlyCloses,
	}, nil
}

// IsOpen implements Clock. Instants outside the years covered by the
// calendar yield ErrCalendarUnavailable.
func (c *SessionClock) IsOpen(_ context.Context, now time.Time) (bool, error) {
	local := now.In(c.loc)
	if local.Year() < c.firstYear || local.Year() > c.lastYear {
		return false, fmt.Errorf("%w: no calendar for %d", ErrCalendarUnavailable, local.Year())
	}

	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return false, nil
	}

	day := local.Format(dateLayout)
	if _, ok := c.holidays[day]; ok {
		return false, nil
	}

	open := time.Date(local.Year(), local.Month(), local.Day(), 9, 30, 0, 0, c.loc)
	closeHour := 16
	if c.early[day] {
		closeHour = 13
	}
	closing := time.Date(local.Year(), local.Month(), local.Day(), closeHour, 0, 0, 0, c.loc)

	return !local.Before(open) && local.Before(closing), nil
}

// Holiday returns the holiday name for the New York date of t, if any.
func (c *SessionClock) Holiday(t time.Time) (string, bool) {
	name, ok := c.holidays[t.In(c.loc).Format(dateLayout)]
	return name, ok
}
