package scheduler

import (
	"reflect"
	"testing"
	"time"

	"github.com/example/training-console/internal/recurrence"
	"github.com/example/training-console/internal/timegrid"
)

func strptr(s string) *string { return &s }

func plannedSeance(id string, date timegrid.Date, start, end timegrid.TimeOfDay, roomID *string, trainerID string) Seance {
	return Seance{
		ID:          id,
		Date:        date,
		Start:       start,
		End:         end,
		RoomID:      roomID,
		TrainerID:   trainerID,
		SessionID:   "session-1",
		Status:      StatusPlanned,
		CourseName:  "Go Fundamentals",
		TrainerName: "Ada Martin",
	}
}

func TestFindConflicts(t *testing.T) {
	tuesday := timegrid.MustDate(2025, time.March, 4)
	candidate := interval(t, tuesday, 540, 660) // 09:00-11:00

	t.Run("room overlap is reported", func(t *testing.T) {
		existing := []Seance{
			plannedSeance("s1", tuesday, 600, 720, strptr("room-1"), "trainer-2"),
		}
		got := FindConflicts(recurrence.ResourceRoom, "room-1", candidate, existing, "")
		if len(got) != 1 || got[0].SeanceID != "s1" {
			t.Fatalf("got %+v, want single conflict with s1", got)
		}
		if got[0].CourseName != "Go Fundamentals" || got[0].TrainerName != "Ada Martin" {
			t.Fatalf("conflict record lost denormalized context: %+v", got[0])
		}
	})

	t.Run("other rooms do not conflict", func(t *testing.T) {
		existing := []Seance{
			plannedSeance("s1", tuesday, 600, 720, strptr("room-2"), "trainer-2"),
			plannedSeance("s2", tuesday, 600, 720, nil, "trainer-2"),
		}
		if got := FindConflicts(recurrence.ResourceRoom, "room-1", candidate, existing, ""); got != nil {
			t.Fatalf("expected no conflicts, got %+v", got)
		}
	})

	t.Run("trainer overlap is reported", func(t *testing.T) {
		existing := []Seance{
			plannedSeance("s1", tuesday, 600, 720, nil, "trainer-1"),
		}
		got := FindConflicts(recurrence.ResourceTrainer, "trainer-1", candidate, existing, "")
		if len(got) != 1 || got[0].SeanceID != "s1" {
			t.Fatalf("got %+v, want single conflict with s1", got)
		}
	})

	t.Run("cancelled seances are excluded", func(t *testing.T) {
		cancelled := plannedSeance("s1", tuesday, 600, 720, strptr("room-1"), "trainer-1")
		cancelled.Status = StatusCancelled
		if got := FindConflicts(recurrence.ResourceRoom, "room-1", candidate, []Seance{cancelled}, ""); got != nil {
			t.Fatalf("cancelled seance must not conflict, got %+v", got)
		}
	})

	t.Run("completed seances still conflict", func(t *testing.T) {
		completed := plannedSeance("s1", tuesday, 600, 720, strptr("room-1"), "trainer-1")
		completed.Status = StatusCompleted
		if got := FindConflicts(recurrence.ResourceRoom, "room-1", candidate, []Seance{completed}, ""); len(got) != 1 {
			t.Fatalf("completed seance should conflict, got %+v", got)
		}
	})

	t.Run("exclude id skips the seance being edited", func(t *testing.T) {
		existing := []Seance{
			plannedSeance("s1", tuesday, 540, 660, strptr("room-1"), "trainer-1"),
			plannedSeance("s2", tuesday, 600, 720, strptr("room-1"), "trainer-1"),
		}
		got := FindConflicts(recurrence.ResourceRoom, "room-1", candidate, existing, "s1")
		if len(got) != 1 || got[0].SeanceID != "s2" {
			t.Fatalf("got %+v, want only s2", got)
		}
	})

	t.Run("touching seances do not conflict", func(t *testing.T) {
		existing := []Seance{
			plannedSeance("s1", tuesday, 480, 540, strptr("room-1"), "trainer-1"), // ends 09:00
			plannedSeance("s2", tuesday, 660, 720, strptr("room-1"), "trainer-1"), // starts 11:00
		}
		if got := FindConflicts(recurrence.ResourceRoom, "room-1", candidate, existing, ""); got != nil {
			t.Fatalf("back-to-back seances must not conflict, got %+v", got)
		}
	})

	t.Run("seances on another date do not conflict", func(t *testing.T) {
		wednesday := timegrid.MustDate(2025, time.March, 5)
		existing := []Seance{
			plannedSeance("s1", wednesday, 540, 660, strptr("room-1"), "trainer-1"),
		}
		if got := FindConflicts(recurrence.ResourceRoom, "room-1", candidate, existing, ""); got != nil {
			t.Fatalf("expected no conflicts across dates, got %+v", got)
		}
	})

	t.Run("ordering by start then seance id", func(t *testing.T) {
		existing := []Seance{
			plannedSeance("s-later", tuesday, 620, 700, strptr("room-1"), "trainer-1"),
			plannedSeance("s-b", tuesday, 540, 600, strptr("room-1"), "trainer-1"),
			plannedSeance("s-a", tuesday, 540, 620, strptr("room-1"), "trainer-1"),
		}
		got := FindConflicts(recurrence.ResourceRoom, "room-1", candidate, existing, "")
		ids := make([]string, 0, len(got))
		for _, record := range got {
			ids = append(ids, record.SeanceID)
		}
		want := []string{"s-a", "s-b", "s-later"}
		if !reflect.DeepEqual(ids, want) {
			t.Fatalf("got order %v, want %v", ids, want)
		}
	})

	t.Run("input slice is not mutated", func(t *testing.T) {
		existing := []Seance{
			plannedSeance("s-2", tuesday, 600, 720, strptr("room-1"), "trainer-1"),
			plannedSeance("s-1", tuesday, 540, 660, strptr("room-1"), "trainer-1"),
		}
		snapshot := append([]Seance(nil), existing...)
		FindConflicts(recurrence.ResourceRoom, "room-1", candidate, existing, "")
		if !reflect.DeepEqual(existing, snapshot) {
			t.Fatal("FindConflicts must not reorder or mutate its input")
		}
	})

	t.Run("empty resource id yields no conflicts", func(t *testing.T) {
		existing := []Seance{
			plannedSeance("s1", tuesday, 540, 660, nil, "trainer-1"),
		}
		if got := FindConflicts(recurrence.ResourceRoom, "", candidate, existing, ""); got != nil {
			t.Fatalf("unbound resource has nothing to conflict with, got %+v", got)
		}
	})
}
