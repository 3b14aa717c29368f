package scheduler

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/example/training-console/internal/recurrence"
	"github.com/example/training-console/internal/timegrid"
)

func TestBuildVerdictScenarioA(t *testing.T) {
	// Room R1 open every Tuesday 08:00-18:00; candidate Tuesday
	// 09:00-11:00 with no existing seances.
	roomRef := recurrence.ResourceRef{Kind: recurrence.ResourceRoom, ID: "R1"}
	trainerRef := recurrence.ResourceRef{Kind: recurrence.ResourceTrainer, ID: "trainer-1"}
	rules := []recurrence.Rule{
		weeklyRule("room-rule", roomRef, time.Tuesday, 480, 1080),
		weeklyRule("trainer-rule", trainerRef, time.Tuesday, 480, 1080),
	}

	verdict, err := BuildVerdict(Candidate{
		Date:      timegrid.MustDate(2025, time.March, 4),
		Start:     540,
		End:       660,
		RoomID:    strptr("R1"),
		TrainerID: "trainer-1",
	}, rules, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !verdict.RoomAvailable {
		t.Error("room should be available")
	}
	if len(verdict.RoomConflicts) != 0 {
		t.Errorf("expected no room conflicts, got %+v", verdict.RoomConflicts)
	}
	if !verdict.Schedulable() {
		t.Error("verdict should be schedulable")
	}
}

func TestBuildVerdictScenarioB(t *testing.T) {
	// Same room and rule; an existing seance occupies Tuesday 10:00-12:00
	// in R1. Candidate 09:00-11:00 overlaps it for an hour.
	roomRef := recurrence.ResourceRef{Kind: recurrence.ResourceRoom, ID: "R1"}
	rules := []recurrence.Rule{
		weeklyRule("room-rule", roomRef, time.Tuesday, 480, 1080),
	}
	tuesday := timegrid.MustDate(2025, time.March, 4)
	existing := []Seance{
		plannedSeance("s1", tuesday, 600, 720, strptr("R1"), "trainer-2"),
	}

	verdict, err := BuildVerdict(Candidate{
		Date:      tuesday,
		Start:     540,
		End:       660,
		RoomID:    strptr("R1"),
		TrainerID: "trainer-1",
	}, rules, existing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !verdict.RoomAvailable {
		t.Error("availability is independent of conflicts; room rule still covers the slot")
	}
	if len(verdict.RoomConflicts) != 1 || verdict.RoomConflicts[0].SeanceID != "s1" {
		t.Fatalf("expected conflict with s1, got %+v", verdict.RoomConflicts)
	}
	if verdict.Schedulable() {
		t.Error("conflicted verdict must not be schedulable")
	}
	if !verdict.HasConflicts() {
		t.Error("HasConflicts should report the room overlap")
	}
}

func TestBuildVerdictScenarioC(t *testing.T) {
	// Trainer has only a one-off rule for 2025-03-05 14:00-17:00. The
	// candidate falls on the same weekday one week later.
	oneOffDate := timegrid.MustDate(2025, time.March, 5)
	rule := recurrence.Rule{
		ID:       "one-off",
		Resource: recurrence.ResourceRef{Kind: recurrence.ResourceTrainer, ID: "trainer-1"},
		Weekday:  oneOffDate.Weekday(),
		Start:    840,  // 14:00
		End:      1020, // 17:00
		Kind:     recurrence.KindOneOff,
		Date:     &oneOffDate,
		Anchor:   oneOffDate,
		Active:   true,
	}

	verdict, err := BuildVerdict(Candidate{
		Date:      timegrid.MustDate(2025, time.March, 12),
		Start:     840,
		End:       960,
		TrainerID: "trainer-1",
	}, []recurrence.Rule{rule}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if verdict.TrainerAvailable {
		t.Error("one-off rule must not apply a week later")
	}
}

func TestBuildVerdictScenarioD(t *testing.T) {
	// Inverted candidate interval fails fast before any lookup.
	_, err := BuildVerdict(Candidate{
		Date:      timegrid.MustDate(2025, time.March, 4),
		Start:     600, // 10:00
		End:       540, // 09:00
		TrainerID: "trainer-1",
	}, nil, nil)

	if !errors.Is(err, timegrid.ErrInvalidInterval) {
		t.Fatalf("expected ErrInvalidInterval, got %v", err)
	}
}

func TestBuildVerdictRequiresTrainer(t *testing.T) {
	_, err := BuildVerdict(Candidate{
		Date:  timegrid.MustDate(2025, time.March, 4),
		Start: 540,
		End:   660,
	}, nil, nil)

	if !errors.Is(err, ErrUnknownResource) {
		t.Fatalf("expected ErrUnknownResource, got %v", err)
	}
}

func TestBuildVerdictWithoutRoom(t *testing.T) {
	trainerRef := recurrence.ResourceRef{Kind: recurrence.ResourceTrainer, ID: "trainer-1"}
	rules := []recurrence.Rule{
		weeklyRule("trainer-rule", trainerRef, time.Tuesday, 480, 1080),
	}
	tuesday := timegrid.MustDate(2025, time.March, 4)
	existing := []Seance{
		// A busy room elsewhere must not matter for a room-less candidate.
		plannedSeance("s1", tuesday, 540, 660, strptr("R1"), "trainer-2"),
	}

	verdict, err := BuildVerdict(Candidate{
		Date:      tuesday,
		Start:     540,
		End:       660,
		TrainerID: "trainer-1",
	}, rules, existing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !verdict.RoomAvailable {
		t.Error("absent room id means no room constraint")
	}
	if verdict.RoomConflicts != nil {
		t.Errorf("expected no room conflicts, got %+v", verdict.RoomConflicts)
	}
	if !verdict.Schedulable() {
		t.Error("candidate should be schedulable")
	}
}

func TestBuildVerdictExcludesEditedSeance(t *testing.T) {
	roomRef := recurrence.ResourceRef{Kind: recurrence.ResourceRoom, ID: "R1"}
	trainerRef := recurrence.ResourceRef{Kind: recurrence.ResourceTrainer, ID: "trainer-1"}
	rules := []recurrence.Rule{
		weeklyRule("room-rule", roomRef, time.Tuesday, 480, 1080),
		weeklyRule("trainer-rule", trainerRef, time.Tuesday, 480, 1080),
	}
	tuesday := timegrid.MustDate(2025, time.March, 4)
	existing := []Seance{
		plannedSeance("s1", tuesday, 540, 660, strptr("R1"), "trainer-1"),
	}

	verdict, err := BuildVerdict(Candidate{
		Date:            tuesday,
		Start:           540,
		End:             660,
		RoomID:          strptr("R1"),
		TrainerID:       "trainer-1",
		ExcludeSeanceID: "s1",
	}, rules, existing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !verdict.Schedulable() {
		t.Fatalf("editing a seance must not conflict with itself: %+v", verdict)
	}
}

func TestBuildVerdictIdempotent(t *testing.T) {
	roomRef := recurrence.ResourceRef{Kind: recurrence.ResourceRoom, ID: "R1"}
	rules := []recurrence.Rule{
		weeklyRule("room-rule", roomRef, time.Tuesday, 480, 1080),
	}
	tuesday := timegrid.MustDate(2025, time.March, 4)
	existing := []Seance{
		plannedSeance("s1", tuesday, 600, 720, strptr("R1"), "trainer-2"),
		plannedSeance("s2", tuesday, 600, 700, strptr("R1"), "trainer-3"),
	}
	candidate := Candidate{
		Date:      tuesday,
		Start:     540,
		End:       660,
		RoomID:    strptr("R1"),
		TrainerID: "trainer-1",
	}

	first, err := BuildVerdict(candidate, rules, existing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := BuildVerdict(candidate, rules, existing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("verdicts differ between identical calls:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}
