// Package recurrence decides whether a resource's availability declaration
// applies on a given calendar date.
package recurrence

import (
	"time"

	"github.com/example/training-console/internal/timegrid"
)

// ResourceKind discriminates the two entities subject to scheduling.
type ResourceKind string

const (
	// ResourceTrainer identifies a trainer availability owner.
	ResourceTrainer ResourceKind = "trainer"
	// ResourceRoom identifies a room availability owner.
	ResourceRoom ResourceKind = "room"
)

// Valid reports whether the kind is one of the supported resource kinds.
func (k ResourceKind) Valid() bool {
	return k == ResourceTrainer || k == ResourceRoom
}

// ResourceRef identifies the owner of an availability rule.
type ResourceRef struct {
	Kind ResourceKind
	ID   string
}

// Kind enumerates supported recurrence patterns.
type Kind string

const (
	// KindWeekly applies on every occurrence of the rule's weekday on or
	// after the anchor date, indefinitely.
	KindWeekly Kind = "weekly"
	// KindMonthly applies on the rule's weekday in the same ordinal
	// week-of-month as the anchor date (e.g. every 2nd Tuesday).
	KindMonthly Kind = "monthly"
	// KindOneOff applies on the rule's explicit date only.
	KindOneOff Kind = "one-off"
)

// Valid reports whether the kind is a recognised recurrence pattern.
func (k Kind) Valid() bool {
	switch k {
	case KindWeekly, KindMonthly, KindOneOff:
		return true
	}
	return false
}

// Rule is an operator-declared time window during which a trainer or room
// may be booked. Anchor is the rule's creation date; it fixes the start of
// weekly applicability and the ordinal week for monthly rules. Date is set
// for one-off rules only.
type Rule struct {
	ID       string
	Resource ResourceRef
	Weekday  time.Weekday
	Start    timegrid.TimeOfDay
	End      timegrid.TimeOfDay
	Kind     Kind
	Date     *timegrid.Date
	Anchor   timegrid.Date
	Active   bool
	Note     string
}

// Window returns the rule's declared time window on the given date.
func (r Rule) Window(date timegrid.Date) timegrid.DayInterval {
	return timegrid.DayInterval{Date: date, Start: r.Start, End: r.End}
}

// AppliesOn reports whether the rule contributes availability on the given
// date. Inactive rules and unrecognised recurrence kinds never apply; the
// default is deny so that new patterns stay inert until supported.
func (r Rule) AppliesOn(date timegrid.Date) bool {
	if !r.Active {
		return false
	}

	switch r.Kind {
	case KindOneOff:
		return r.Date != nil && r.Date.Equal(date)
	case KindWeekly:
		if date.Weekday() != r.Weekday {
			return false
		}
		return !date.Before(r.Anchor)
	case KindMonthly:
		if date.Weekday() != r.Weekday {
			return false
		}
		if date.Before(r.Anchor) {
			return false
		}
		return date.WeekOfMonth() == r.Anchor.WeekOfMonth()
	default:
		return false
	}
}
