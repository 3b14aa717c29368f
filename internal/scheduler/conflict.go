// Package scheduler is the conflict-detection and availability-resolution
// engine. Every operation is a pure function of the snapshots passed in:
// the engine holds no state and performs no I/O, so it is safe to call
// concurrently. It is advisory only — callers decide whether to commit a
// booking, and the persistence layer's exclusion guard remains the final
// authority against check-then-act races.
package scheduler

import (
	"sort"

	"github.com/example/training-console/internal/recurrence"
	"github.com/example/training-console/internal/timegrid"
)

// SeanceStatus tracks the lifecycle of a scheduled seance.
type SeanceStatus string

const (
	// StatusPlanned marks a seance that is booked and upcoming.
	StatusPlanned SeanceStatus = "planned"
	// StatusCompleted marks a seance that has taken place.
	StatusCompleted SeanceStatus = "completed"
	// StatusCancelled marks a seance whose slot has been freed. Cancelled
	// seances do not participate in conflict detection.
	StatusCancelled SeanceStatus = "cancelled"
)

// Seance is a scheduled session meeting as seen by the engine. CourseName
// and TrainerName are denormalized display context supplied by the caller
// from the seance's associated session and trainer records.
type Seance struct {
	ID          string
	Date        timegrid.Date
	Start       timegrid.TimeOfDay
	End         timegrid.TimeOfDay
	RoomID      *string
	TrainerID   string
	SessionID   string
	ModuleID    string
	Status      SeanceStatus
	CourseName  string
	TrainerName string
}

// Interval returns the seance's occupied time span.
func (s Seance) Interval() timegrid.DayInterval {
	return timegrid.DayInterval{Date: s.Date, Start: s.Start, End: s.End}
}

// resourceID returns the seance's id for the requested resource kind, or
// "" when the seance does not bind that resource.
func (s Seance) resourceID(kind recurrence.ResourceKind) string {
	switch kind {
	case recurrence.ResourceRoom:
		if s.RoomID == nil {
			return ""
		}
		return *s.RoomID
	case recurrence.ResourceTrainer:
		return s.TrainerID
	}
	return ""
}

// ConflictRecord describes one existing seance that overlaps a candidate,
// with enough context for operator display.
type ConflictRecord struct {
	SeanceID    string
	Date        timegrid.Date
	Start       timegrid.TimeOfDay
	End         timegrid.TimeOfDay
	CourseName  string
	TrainerName string
}

// FindConflicts returns every non-cancelled seance bound to the resource
// that overlaps the candidate interval, excluding the seance identified by
// excludeSeanceID (empty means exclude nothing; used when re-checking a
// booking being edited). Results are ordered by start time ascending, ties
// broken by seance id. The input slice is never mutated.
func FindConflicts(kind recurrence.ResourceKind, resourceID string, interval timegrid.DayInterval, existing []Seance, excludeSeanceID string) []ConflictRecord {
	if resourceID == "" {
		return nil
	}

	conflicts := make([]ConflictRecord, 0)
	for _, seance := range existing {
		if seance.Status == StatusCancelled {
			continue
		}
		if excludeSeanceID != "" && seance.ID == excludeSeanceID {
			continue
		}
		if seance.resourceID(kind) != resourceID {
			continue
		}
		if !seance.Interval().Overlaps(interval) {
			continue
		}
		conflicts = append(conflicts, ConflictRecord{
			SeanceID:    seance.ID,
			Date:        seance.Date,
			Start:       seance.Start,
			End:         seance.End,
			CourseName:  seance.CourseName,
			TrainerName: seance.TrainerName,
		})
	}

	if len(conflicts) == 0 {
		return nil
	}

	sort.Slice(conflicts, func(i, j int) bool {
		if conflicts[i].Start == conflicts[j].Start {
			return conflicts[i].SeanceID < conflicts[j].SeanceID
		}
		return conflicts[i].Start < conflicts[j].Start
	})

	return conflicts
}
