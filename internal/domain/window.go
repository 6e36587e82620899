package domain

import (
	"fmt"
	"time"
)

// minutesPerDay is the number of minutes in a civil day.
const minutesPerDay = 24 * 60

// TimeOfDay is a wall-clock time expressed as minutes since midnight,
// in the range [0, 1440). It carries no date or zone information.
type TimeOfDay int

// ParseTimeOfDay parses a "15:04" formatted clock string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid time %q, want HH:MM", ErrValidation, s)
	}
	return TimeOfDay(t.Hour()*60 + t.Minute()), nil
}

// Valid reports whether t lies within a single day.
func (t TimeOfDay) Valid() bool {
	return t >= 0 && t < minutesPerDay
}

// String formats t as "15:04".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// SpanMinutes returns the number of minutes from start to end, wrapping past
// midnight when end is not after start. An overnight span such as
// 22:00 → 02:00 yields 240, never a negative value.
func SpanMinutes(start, end TimeOfDay) int {
	if end > start {
		return int(end - start)
	}
	return int(minutesPerDay - start + end)
}

// DateRange is an inclusive range of calendar dates. End is nil for a
// single-day range. Dates are compared at day granularity; callers store
// them as UTC midnights.
type DateRange struct {
	Start time.Time
	End   *time.Time
}

// EndDate returns the last covered date: End when set, otherwise Start.
func (r DateRange) EndDate() time.Time {
	if r.End != nil {
		return *r.End
	}
	return r.Start
}

// Validate checks that the range is well-formed: a non-zero start and, when
// an end date is given, an end not before the start.
func (r DateRange) Validate() error {
	if r.Start.IsZero() {
		return fmt.Errorf("%w: start date is required", ErrValidation)
	}
	if r.End != nil && r.End.Before(r.Start) {
		return fmt.Errorf("%w: end date before start date", ErrValidation)
	}
	return nil
}

// Overlaps reports whether r and o share at least one calendar date.
// Both ranges are inclusive on both ends.
func (r DateRange) Overlaps(o DateRange) bool {
	return !r.Start.After(o.EndDate()) && !o.Start.After(r.EndDate())
}

// ElapsedBy reports whether the whole range lies strictly before the date
// part of now.
func (r DateRange) ElapsedBy(now time.Time) bool {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return r.EndDate().Before(today)
}

// TimeWindow is the occupancy window of a service booking: an inclusive
// date range plus a daily time span. A multi-day window occupies the same
// time-of-day span on every covered date.
//
// Single-day windows never cross midnight: EndTime must be strictly after
// StartTime. When an explicit end date is set the daily span may wrap past
// midnight (a two-night 14:00 → 11:00 stay); a wrapped span occupies
// [StartTime, 24:00) plus [00:00, EndTime) on every covered date.
type TimeWindow struct {
	Dates     DateRange
	StartTime TimeOfDay
	EndTime   TimeOfDay
}

// Validate checks the date range and the daily span.
func (w TimeWindow) Validate() error {
	if err := w.Dates.Validate(); err != nil {
		return err
	}
	if !w.StartTime.Valid() || !w.EndTime.Valid() {
		return fmt.Errorf("%w: time of day out of range", ErrValidation)
	}
	if w.EndTime <= w.StartTime && w.Dates.End == nil {
		return fmt.Errorf("%w: end time must be after start time on a single-day booking", ErrValidation)
	}
	return nil
}

// DurationMinutes returns the length of the daily span.
func (w TimeWindow) DurationMinutes() int {
	return SpanMinutes(w.StartTime, w.EndTime)
}

// Overlaps reports whether two windows occupy any common date at an
// overlapping time of day. The daily span comparison is half-open: a window
// ending at 12:00 does not collide with one starting at 12:00.
func (w TimeWindow) Overlaps(o TimeWindow) bool {
	if !w.Dates.Overlaps(o.Dates) {
		return false
	}
	return spansCollide(w.StartTime, w.EndTime, o.StartTime, o.EndTime)
}

// spansCollide compares two half-open daily spans. A span whose end is not
// after its start wraps past midnight and occupies [start, 24:00) plus
// [00:00, end); two wrapped spans always share the minutes around midnight.
func spansCollide(aStart, aEnd, bStart, bEnd TimeOfDay) bool {
	aWraps := aEnd <= aStart
	bWraps := bEnd <= bStart
	switch {
	case aWraps && bWraps:
		return true
	case aWraps:
		return bStart < aEnd || bEnd > aStart
	case bWraps:
		return aStart < bEnd || aEnd > bStart
	default:
		return aStart < bEnd && bStart < aEnd
	}
}
