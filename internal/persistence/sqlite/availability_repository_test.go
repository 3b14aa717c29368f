package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/example/training-console/internal/persistence"
)

func testRule(id, kind, resourceID string, weekday, start, end int) persistence.AvailabilityRule {
	return persistence.AvailabilityRule{
		ID:           id,
		ResourceKind: kind,
		ResourceID:   resourceID,
		Weekday:      weekday,
		StartMinute:  start,
		EndMinute:    end,
		Recurrence:   "weekly",
		AnchorDate:   "2025-01-07",
		Active:       true,
	}
}

func TestAvailabilityRuleRoundTrip(t *testing.T) {
	pool := openTestPool(t)
	repo := NewAvailabilityRuleRepository(pool)
	ctx := context.Background()

	rule := testRule("r1", "trainer", "trainer-1", 2, 480, 1080)
	note := "mardi uniquement"
	rule.Note = &note

	if err := repo.CreateRule(ctx, rule); err != nil {
		t.Fatalf("CreateRule failed: %v", err)
	}

	got, err := repo.GetRule(ctx, "r1")
	if err != nil {
		t.Fatalf("GetRule failed: %v", err)
	}
	if got.ResourceKind != "trainer" || got.ResourceID != "trainer-1" {
		t.Fatalf("resource mismatch: %+v", got)
	}
	if got.StartMinute != 480 || got.EndMinute != 1080 || got.Weekday != 2 {
		t.Fatalf("window mismatch: %+v", got)
	}
	if got.Note == nil || *got.Note != note {
		t.Fatalf("note lost: %+v", got)
	}
	if !got.Active {
		t.Fatal("rule should be active")
	}
}

func TestAvailabilityRuleConstraints(t *testing.T) {
	pool := openTestPool(t)
	repo := NewAvailabilityRuleRepository(pool)
	ctx := context.Background()

	tests := []struct {
		name string
		rule persistence.AvailabilityRule
	}{
		{"inverted window", testRule("bad1", "trainer", "t1", 2, 600, 540)},
		{"unknown resource kind", testRule("bad2", "vehicle", "v1", 2, 480, 540)},
		{"unknown recurrence", func() persistence.AvailabilityRule {
			rule := testRule("bad3", "trainer", "t1", 2, 480, 540)
			rule.Recurrence = "biweekly"
			return rule
		}()},
		{"one-off without date", func() persistence.AvailabilityRule {
			rule := testRule("bad4", "trainer", "t1", 2, 480, 540)
			rule.Recurrence = "one-off"
			return rule
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.CreateRule(ctx, tt.rule)
			if !errors.Is(err, persistence.ErrConstraintViolation) {
				t.Fatalf("expected ErrConstraintViolation, got %v", err)
			}
		})
	}
}

func TestListRulesFilters(t *testing.T) {
	pool := openTestPool(t)
	repo := NewAvailabilityRuleRepository(pool)
	ctx := context.Background()

	rules := []persistence.AvailabilityRule{
		testRule("r1", "trainer", "trainer-1", 2, 480, 1080),
		testRule("r2", "trainer", "trainer-2", 2, 480, 1080),
		testRule("r3", "room", "room-1", 2, 480, 1080),
	}
	for _, rule := range rules {
		if err := repo.CreateRule(ctx, rule); err != nil {
			t.Fatalf("CreateRule %s failed: %v", rule.ID, err)
		}
	}
	if err := repo.SetRuleActive(ctx, "r2", false); err != nil {
		t.Fatalf("SetRuleActive failed: %v", err)
	}

	t.Run("by resource", func(t *testing.T) {
		got, err := repo.ListRules(ctx, persistence.AvailabilityRuleFilter{
			ResourceKind: "trainer",
			ResourceID:   "trainer-1",
		})
		if err != nil {
			t.Fatalf("ListRules failed: %v", err)
		}
		if len(got) != 1 || got[0].ID != "r1" {
			t.Fatalf("unexpected result: %+v", got)
		}
	})

	t.Run("active only", func(t *testing.T) {
		got, err := repo.ListRules(ctx, persistence.AvailabilityRuleFilter{
			ResourceKind: "trainer",
			ActiveOnly:   true,
		})
		if err != nil {
			t.Fatalf("ListRules failed: %v", err)
		}
		if len(got) != 1 || got[0].ID != "r1" {
			t.Fatalf("deactivated rule should be filtered out: %+v", got)
		}
	})

	t.Run("reactivation restores the rule", func(t *testing.T) {
		if err := repo.SetRuleActive(ctx, "r2", true); err != nil {
			t.Fatalf("SetRuleActive failed: %v", err)
		}
		got, err := repo.ListRules(ctx, persistence.AvailabilityRuleFilter{
			ResourceKind: "trainer",
			ActiveOnly:   true,
		})
		if err != nil {
			t.Fatalf("ListRules failed: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected both trainer rules, got %+v", got)
		}
	})

	t.Run("delete removes the rule", func(t *testing.T) {
		if err := repo.DeleteRule(ctx, "r3"); err != nil {
			t.Fatalf("DeleteRule failed: %v", err)
		}
		if _, err := repo.GetRule(ctx, "r3"); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}
