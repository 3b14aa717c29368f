package scheduler

import (
	"testing"
	"time"

	"github.com/example/training-console/internal/recurrence"
	"github.com/example/training-console/internal/timegrid"
)

func weeklyRule(id string, resource recurrence.ResourceRef, weekday time.Weekday, start, end timegrid.TimeOfDay) recurrence.Rule {
	return recurrence.Rule{
		ID:       id,
		Resource: resource,
		Weekday:  weekday,
		Start:    start,
		End:      end,
		Kind:     recurrence.KindWeekly,
		Anchor:   timegrid.MustDate(2025, time.January, 1),
		Active:   true,
	}
}

func interval(t *testing.T, date timegrid.Date, start, end timegrid.TimeOfDay) timegrid.DayInterval {
	t.Helper()
	iv, err := timegrid.NewDayInterval(date, start, end)
	if err != nil {
		t.Fatalf("interval: %v", err)
	}
	return iv
}

func TestIsAvailable(t *testing.T) {
	trainer := recurrence.ResourceRef{Kind: recurrence.ResourceTrainer, ID: "trainer-1"}
	tuesday := timegrid.MustDate(2025, time.March, 4)

	t.Run("empty rule set is never available", func(t *testing.T) {
		iv := interval(t, tuesday, 540, 660)
		if IsAvailable(recurrence.ResourceTrainer, "trainer-1", iv, nil) {
			t.Fatal("no rules should mean unavailable")
		}
	})

	t.Run("slot inside a declared window", func(t *testing.T) {
		rules := []recurrence.Rule{
			weeklyRule("r1", trainer, time.Tuesday, 480, 1080),
		}
		iv := interval(t, tuesday, 540, 660)
		if !IsAvailable(recurrence.ResourceTrainer, "trainer-1", iv, rules) {
			t.Fatal("slot fits inside the declared window")
		}
	})

	t.Run("slot exactly matching the window", func(t *testing.T) {
		rules := []recurrence.Rule{
			weeklyRule("r1", trainer, time.Tuesday, 540, 660),
		}
		iv := interval(t, tuesday, 540, 660)
		if !IsAvailable(recurrence.ResourceTrainer, "trainer-1", iv, rules) {
			t.Fatal("slot equal to the declared window should count")
		}
	})

	t.Run("partial overlap of the window does not count", func(t *testing.T) {
		rules := []recurrence.Rule{
			weeklyRule("r1", trainer, time.Tuesday, 540, 600),
		}
		iv := interval(t, tuesday, 570, 660)
		if IsAvailable(recurrence.ResourceTrainer, "trainer-1", iv, rules) {
			t.Fatal("slot extending past the window must not count")
		}
	})

	t.Run("no stitching across adjacent windows", func(t *testing.T) {
		// 08:00-10:00 and 10:00-12:00 jointly cover 09:00-11:00, but no
		// single window does.
		rules := []recurrence.Rule{
			weeklyRule("r1", trainer, time.Tuesday, 480, 600),
			weeklyRule("r2", trainer, time.Tuesday, 600, 720),
		}
		iv := interval(t, tuesday, 540, 660)
		if IsAvailable(recurrence.ResourceTrainer, "trainer-1", iv, rules) {
			t.Fatal("adjacent windows must not be stitched together")
		}
	})

	t.Run("rules of other resources are ignored", func(t *testing.T) {
		otherTrainer := recurrence.ResourceRef{Kind: recurrence.ResourceTrainer, ID: "trainer-2"}
		room := recurrence.ResourceRef{Kind: recurrence.ResourceRoom, ID: "trainer-1"}
		rules := []recurrence.Rule{
			weeklyRule("r1", otherTrainer, time.Tuesday, 480, 1080),
			weeklyRule("r2", room, time.Tuesday, 480, 1080),
		}
		iv := interval(t, tuesday, 540, 660)
		if IsAvailable(recurrence.ResourceTrainer, "trainer-1", iv, rules) {
			t.Fatal("rules owned by other resources must not contribute")
		}
	})

	t.Run("inactive rule does not contribute", func(t *testing.T) {
		rule := weeklyRule("r1", trainer, time.Tuesday, 480, 1080)
		rule.Active = false
		iv := interval(t, tuesday, 540, 660)
		if IsAvailable(recurrence.ResourceTrainer, "trainer-1", iv, []recurrence.Rule{rule}) {
			t.Fatal("inactive rule must not make the resource available")
		}
	})

	t.Run("absent resource id is trivially available", func(t *testing.T) {
		iv := interval(t, tuesday, 540, 660)
		if !IsAvailable(recurrence.ResourceRoom, "", iv, nil) {
			t.Fatal("unbound resource has no availability constraint")
		}
	})
}
