// Package testfixtures provides deterministic clocks, identifier generators
// and canned domain records shared by service and repository tests.
package testfixtures

import (
	"time"

	"github.com/example/training-console/internal/persistence"
)

// ReferenceTime returns the shared instant tests anchor to. It falls on a
// Tuesday so weekly rule fixtures line up with seance fixtures.
func ReferenceTime() time.Time {
	return time.Date(2025, time.March, 4, 8, 0, 0, 0, time.UTC)
}

// ReferenceDate returns ReferenceTime's calendar day as YYYY-MM-DD.
func ReferenceDate() string {
	return ReferenceTime().Format("2006-01-02")
}

// SampleTrainer returns a trainer record with the given id.
func SampleTrainer(id string) persistence.Trainer {
	return persistence.Trainer{
		ID:        id,
		FirstName: "Ada",
		LastName:  "Martin",
		Email:     id + "@example.com",
	}
}

// SampleRoom returns a room record with the given id.
func SampleRoom(id string) persistence.Room {
	return persistence.Room{
		ID:       id,
		Name:     "Salle " + id,
		Capacity: 12,
	}
}

// WeeklyRule returns an active weekly availability rule for the resource,
// open Tuesdays 08:00 to 18:00 and anchored before ReferenceTime.
func WeeklyRule(id, resourceKind, resourceID string) persistence.AvailabilityRule {
	return persistence.AvailabilityRule{
		ID:           id,
		ResourceKind: resourceKind,
		ResourceID:   resourceID,
		Weekday:      int(time.Tuesday),
		StartMinute:  480,
		EndMinute:    1080,
		Recurrence:   "weekly",
		AnchorDate:   "2025-01-07",
		Active:       true,
	}
}

// PlannedSeance returns a planned seance on the reference date.
func PlannedSeance(id, trainerID string, roomID *string, start, end int) persistence.Seance {
	return persistence.Seance{
		ID:          id,
		SessionID:   "session-1",
		TrainerID:   trainerID,
		RoomID:      roomID,
		Date:        ReferenceDate(),
		StartMinute: start,
		EndMinute:   end,
		Status:      "planned",
	}
}
