package recurrence

import (
	"testing"
	"time"

	"github.com/example/training-console/internal/timegrid"
)

func trainerRule(kind Kind) Rule {
	return Rule{
		ID:       "rule-1",
		Resource: ResourceRef{Kind: ResourceTrainer, ID: "trainer-1"},
		Weekday:  time.Tuesday,
		Start:    480,  // 08:00
		End:      1080, // 18:00
		Kind:     kind,
		Anchor:   timegrid.MustDate(2025, time.January, 7), // 1st Tuesday
		Active:   true,
	}
}

func TestAppliesOnWeekly(t *testing.T) {
	rule := trainerRule(KindWeekly)

	tests := []struct {
		name string
		date timegrid.Date
		want bool
	}{
		{name: "anchor date itself", date: timegrid.MustDate(2025, time.January, 7), want: true},
		{name: "later tuesday", date: timegrid.MustDate(2025, time.March, 4), want: true},
		{name: "tuesday a year later", date: timegrid.MustDate(2026, time.January, 6), want: true},
		{name: "wrong weekday", date: timegrid.MustDate(2025, time.March, 5), want: false},
		{name: "tuesday before anchor", date: timegrid.MustDate(2024, time.December, 31), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rule.AppliesOn(tt.date); got != tt.want {
				t.Fatalf("AppliesOn(%s) = %v, want %v", tt.date, got, tt.want)
			}
		})
	}
}

func TestAppliesOnMonthly(t *testing.T) {
	// Anchored on the 2nd Tuesday of January 2025.
	rule := trainerRule(KindMonthly)
	rule.Anchor = timegrid.MustDate(2025, time.January, 14)

	tests := []struct {
		name string
		date timegrid.Date
		want bool
	}{
		{name: "second tuesday of february", date: timegrid.MustDate(2025, time.February, 11), want: true},
		{name: "second tuesday of march", date: timegrid.MustDate(2025, time.March, 11), want: true},
		{name: "first tuesday of march", date: timegrid.MustDate(2025, time.March, 4), want: false},
		{name: "third tuesday of march", date: timegrid.MustDate(2025, time.March, 18), want: false},
		{name: "second wednesday of march", date: timegrid.MustDate(2025, time.March, 12), want: false},
		{name: "before anchor", date: timegrid.MustDate(2024, time.December, 10), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rule.AppliesOn(tt.date); got != tt.want {
				t.Fatalf("AppliesOn(%s) = %v, want %v", tt.date, got, tt.want)
			}
		})
	}
}

func TestAppliesOnMonthlyFifthOrdinal(t *testing.T) {
	// Anchored on the 5th Thursday of January 2025 (the 30th).
	rule := trainerRule(KindMonthly)
	rule.Weekday = time.Thursday
	rule.Anchor = timegrid.MustDate(2025, time.January, 30)

	// May 2025 has a 5th Thursday; February does not have one at all.
	if !rule.AppliesOn(timegrid.MustDate(2025, time.May, 29)) {
		t.Fatal("expected rule to apply on the 5th Thursday of May")
	}
	if rule.AppliesOn(timegrid.MustDate(2025, time.February, 27)) {
		t.Fatal("4th Thursday must not match a 5th-ordinal anchor")
	}
}

func TestAppliesOnOneOff(t *testing.T) {
	rule := trainerRule(KindOneOff)
	ruleDate := timegrid.MustDate(2025, time.March, 5)
	rule.Date = &ruleDate
	rule.Weekday = ruleDate.Weekday()

	if !rule.AppliesOn(ruleDate) {
		t.Fatal("one-off rule must apply on its own date")
	}
	// Same weekday one week later: still inapplicable.
	if rule.AppliesOn(timegrid.MustDate(2025, time.March, 12)) {
		t.Fatal("one-off rule must not apply on a different date")
	}
}

func TestAppliesOnOneOffWithoutDate(t *testing.T) {
	rule := trainerRule(KindOneOff)
	rule.Date = nil

	if rule.AppliesOn(timegrid.MustDate(2025, time.March, 5)) {
		t.Fatal("one-off rule without a date must never apply")
	}
}

func TestAppliesOnDefaultDeny(t *testing.T) {
	t.Run("inactive rule", func(t *testing.T) {
		rule := trainerRule(KindWeekly)
		rule.Active = false
		if rule.AppliesOn(timegrid.MustDate(2025, time.March, 4)) {
			t.Fatal("inactive rule must never apply")
		}
	})

	t.Run("unrecognised kind", func(t *testing.T) {
		rule := trainerRule(Kind("biweekly"))
		if rule.AppliesOn(timegrid.MustDate(2025, time.March, 4)) {
			t.Fatal("unknown recurrence kind must never apply")
		}
	})
}

func TestKindValid(t *testing.T) {
	for _, kind := range []Kind{KindWeekly, KindMonthly, KindOneOff} {
		if !kind.Valid() {
			t.Errorf("%q should be valid", kind)
		}
	}
	if Kind("daily").Valid() {
		t.Error("unsupported kind reported valid")
	}
}

func TestResourceKindValid(t *testing.T) {
	if !ResourceTrainer.Valid() || !ResourceRoom.Valid() {
		t.Fatal("supported resource kinds reported invalid")
	}
	if ResourceKind("course").Valid() {
		t.Fatal("unknown resource kind reported valid")
	}
}
