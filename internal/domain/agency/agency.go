package agency

import (
	"time"

	"github.com/google/uuid"
)

// DefaultCutoff is the local time-of-day after which same-day installments
// become overdue, used when an agency has no cutoff configured.
const DefaultCutoff = "17:00"

// Agency represents a single tenant. All timing decisions for its payment
// plans are made in the agency's own timezone.
type Agency struct {
	ID            uuid.UUID
	Name          string
	Timezone      string // IANA zone name, e.g. "Australia/Brisbane"
	OverdueCutoff string // local wall-clock "HH:MM"
	DueSoonDays   int    // upcoming-payment reminder window, in days
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// LocalClock is the agency-local decision input derived from a UTC instant:
// the local calendar date (at midnight) and the minute of the local day.
type LocalClock struct {
	Date        time.Time
	MinuteOfDay int
}

// Location resolves the agency's IANA timezone. If the stored zone is empty
// or invalid it returns UTC and ok=false; callers are expected to log the
// fallback rather than silently accept it.
func (a *Agency) Location() (loc *time.Location, ok bool) {
	if a.Timezone == "" {
		return time.UTC, false
	}
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return time.UTC, false
	}
	return loc, true
}

// ClockAt converts a UTC instant into the agency-local clock. ok mirrors
// Location: false means the UTC fallback was used.
func (a *Agency) ClockAt(now time.Time) (LocalClock, bool) {
	loc, ok := a.Location()
	local := now.In(loc)
	y, m, d := local.Date()
	return LocalClock{
		Date:        time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		MinuteOfDay: local.Hour()*60 + local.Minute(),
	}, ok
}

// CutoffMinute parses the agency's overdue cutoff into minutes after local
// midnight. A missing or malformed value falls back to DefaultCutoff.
func (a *Agency) CutoffMinute() int {
	m, err := parseCutoff(a.OverdueCutoff)
	if err != nil {
		m, _ = parseCutoff(DefaultCutoff)
	}
	return m
}

func parseCutoff(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}
