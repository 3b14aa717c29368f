package scheduler

import (
	"errors"
	"fmt"

	"github.com/example/training-console/internal/recurrence"
	"github.com/example/training-console/internal/timegrid"
)

// ErrUnknownResource indicates a resource kind outside {room, trainer}.
var ErrUnknownResource = errors.New("scheduler: unknown resource kind")

// Candidate is a booking request to evaluate: a prospective seance before
// it is committed. ExcludeSeanceID carries the seance's own id when an
// existing booking is being re-checked during an edit.
type Candidate struct {
	Date            timegrid.Date
	Start           timegrid.TimeOfDay
	End             timegrid.TimeOfDay
	RoomID          *string
	TrainerID       string
	ExcludeSeanceID string
}

// Verdict is the composed scheduling answer for a candidate booking.
// Availability and conflict-freedom are independent conditions: a resource
// is schedulable iff its Available flag is true and its conflict list is
// empty. The verdict reports facts; it never blocks a booking by itself.
type Verdict struct {
	RoomAvailable    bool
	RoomConflicts    []ConflictRecord
	TrainerAvailable bool
	TrainerConflicts []ConflictRecord
}

// Schedulable reports whether both resources are available and conflict
// free.
func (v Verdict) Schedulable() bool {
	return v.RoomAvailable && v.TrainerAvailable &&
		len(v.RoomConflicts) == 0 && len(v.TrainerConflicts) == 0
}

// HasConflicts reports whether any existing seance overlaps the candidate.
func (v Verdict) HasConflicts() bool {
	return len(v.RoomConflicts) > 0 || len(v.TrainerConflicts) > 0
}

// BuildVerdict validates the candidate interval and composes availability
// and conflict results for the room (when bound) and the trainer. The
// interval is validated first: a malformed candidate is a caller bug and
// aborts before any availability or conflict computation runs. Given a
// well-formed candidate the function is total and deterministic.
func BuildVerdict(candidate Candidate, rules []recurrence.Rule, existing []Seance) (Verdict, error) {
	interval, err := timegrid.NewDayInterval(candidate.Date, candidate.Start, candidate.End)
	if err != nil {
		return Verdict{}, err
	}
	if candidate.TrainerID == "" {
		return Verdict{}, fmt.Errorf("%w: candidate has no trainer", ErrUnknownResource)
	}

	verdict := Verdict{
		// No room bound means no room constraint.
		RoomAvailable: true,
	}

	if candidate.RoomID != nil && *candidate.RoomID != "" {
		roomID := *candidate.RoomID
		verdict.RoomAvailable = IsAvailable(recurrence.ResourceRoom, roomID, interval, rules)
		verdict.RoomConflicts = FindConflicts(recurrence.ResourceRoom, roomID, interval, existing, candidate.ExcludeSeanceID)
	}

	verdict.TrainerAvailable = IsAvailable(recurrence.ResourceTrainer, candidate.TrainerID, interval, rules)
	verdict.TrainerConflicts = FindConflicts(recurrence.ResourceTrainer, candidate.TrainerID, interval, existing, candidate.ExcludeSeanceID)

	return verdict, nil
}
