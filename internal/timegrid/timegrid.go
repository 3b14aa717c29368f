// Package timegrid models the minute-grained calendar grid the scheduling
// engine operates on: times of day, calendar dates, and half-open intervals
// confined to a single day.
package timegrid

import (
	"errors"
	"fmt"
	"time"
)

// MinutesPerDay bounds valid TimeOfDay values.
const MinutesPerDay = 24 * 60

// ErrInvalidInterval indicates a malformed day interval: out-of-range
// endpoints, or start at/after end.
var ErrInvalidInterval = errors.New("timegrid: invalid interval")

// ErrInvalidTimeOfDay indicates a time of day outside [0, 1440).
var ErrInvalidTimeOfDay = errors.New("timegrid: time of day out of range")

// ErrInvalidDate indicates a date that does not exist on the calendar.
var ErrInvalidDate = errors.New("timegrid: invalid date")

// TimeOfDay is a clock time expressed as minutes since midnight.
// Comparisons are purely numeric.
type TimeOfDay int

// NewTimeOfDay validates hours and minutes and returns the corresponding
// minutes-since-midnight value.
func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: %02d:%02d", ErrInvalidTimeOfDay, hour, minute)
	}
	return TimeOfDay(hour*60 + minute), nil
}

// ParseTimeOfDay parses an "HH:MM" clock string.
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(value, "%d:%d", &hour, &minute); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, value)
	}
	return NewTimeOfDay(hour, minute)
}

// Valid reports whether the value lies inside [0, MinutesPerDay).
func (t TimeOfDay) Valid() bool {
	return t >= 0 && t < MinutesPerDay
}

// Minutes returns the raw minutes-since-midnight value.
func (t TimeOfDay) Minutes() int {
	return int(t)
}

// String renders the time as "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// Date identifies a single calendar day. The zero value is not a valid
// date; construct through NewDate or ParseDate.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate validates the calendar day and returns it.
func NewDate(year int, month time.Month, day int) (Date, error) {
	d := Date{Year: year, Month: month, Day: day}
	if !d.Valid() {
		return Date{}, fmt.Errorf("%w: %04d-%02d-%02d", ErrInvalidDate, year, int(month), day)
	}
	return d, nil
}

// MustDate is a construction helper for fixtures and tests; it panics on
// invalid input.
func MustDate(year int, month time.Month, day int) Date {
	d, err := NewDate(year, month, day)
	if err != nil {
		panic(err)
	}
	return d
}

// ParseDate parses a "YYYY-MM-DD" date string.
func ParseDate(value string) (Date, error) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// DateOf truncates an instant to its calendar day in the instant's location.
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Valid reports whether the date exists on the calendar.
func (d Date) Valid() bool {
	if d.Year == 0 {
		return false
	}
	t := d.toTime()
	return t.Year() == d.Year && t.Month() == d.Month && t.Day() == d.Day
}

// Weekday returns the day of week, 0=Sunday through 6=Saturday.
func (d Date) Weekday() time.Weekday {
	return d.toTime().Weekday()
}

// WeekOfMonth returns the one-based ordinal of the date's weekday within
// its month: the 1st through 7th fall in week 1, the 8th through 14th in
// week 2, and so on.
func (d Date) WeekOfMonth() int {
	return (d.Day-1)/7 + 1
}

// Equal reports whether two dates identify the same calendar day.
func (d Date) Equal(other Date) bool {
	return d.Year == other.Year && d.Month == other.Month && d.Day == other.Day
}

// Before reports whether d falls strictly earlier than other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// IsZero reports whether the date is the zero value.
func (d Date) IsZero() bool {
	return d == Date{}
}

// String renders the date as "YYYY-MM-DD".
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) toTime() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// DayInterval is a half-open time span [Start, End) on a single calendar
// day. Construct through NewDayInterval; the invariant Start < End holds
// for every value it returns.
type DayInterval struct {
	Date  Date
	Start TimeOfDay
	End   TimeOfDay
}

// NewDayInterval validates endpoints and ordering before returning the
// interval. Zero-length and inverted intervals are rejected.
func NewDayInterval(date Date, start, end TimeOfDay) (DayInterval, error) {
	if !date.Valid() {
		return DayInterval{}, fmt.Errorf("%w: date %s", ErrInvalidInterval, date)
	}
	if !start.Valid() || !end.Valid() {
		return DayInterval{}, fmt.Errorf("%w: endpoints outside [0, %d)", ErrInvalidInterval, MinutesPerDay)
	}
	if start >= end {
		return DayInterval{}, fmt.Errorf("%w: start %s not before end %s", ErrInvalidInterval, start, end)
	}
	return DayInterval{Date: date, Start: start, End: end}, nil
}

// Overlaps reports whether two intervals share any instant. Intervals on
// different dates never overlap, and touching endpoints do not conflict.
func (i DayInterval) Overlaps(other DayInterval) bool {
	if !i.Date.Equal(other.Date) {
		return false
	}
	return i.Start < other.End && other.Start < i.End
}

// Contains reports whether the interval fully covers other: same date,
// and [other.Start, other.End) inside [i.Start, i.End).
func (i DayInterval) Contains(other DayInterval) bool {
	if !i.Date.Equal(other.Date) {
		return false
	}
	return i.Start <= other.Start && other.End <= i.End
}

// String renders the interval as "YYYY-MM-DD HH:MM-HH:MM".
func (i DayInterval) String() string {
	return fmt.Sprintf("%s %s-%s", i.Date, i.Start, i.End)
}
