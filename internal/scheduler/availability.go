package scheduler

import (
	"github.com/example/training-console/internal/recurrence"
	"github.com/example/training-console/internal/timegrid"
)

// IsAvailable reports whether the resource declares itself available for
// the whole candidate interval. A resource is available when at least one
// of its active rules applies on the interval's date and that rule's own
// window fully contains the interval. Partial coverage does not count, and
// adjacent windows are never stitched together: the slot must fit inside a
// single declared window.
//
// An empty resourceID is trivially available by convention (a seance with
// no room bound has no room constraint to satisfy).
func IsAvailable(kind recurrence.ResourceKind, resourceID string, interval timegrid.DayInterval, rules []recurrence.Rule) bool {
	if resourceID == "" {
		return true
	}

	for _, rule := range rules {
		if rule.Resource.Kind != kind || rule.Resource.ID != resourceID {
			continue
		}
		if !rule.AppliesOn(interval.Date) {
			continue
		}
		if rule.Window(interval.Date).Contains(interval) {
			return true
		}
	}

	return false
}
