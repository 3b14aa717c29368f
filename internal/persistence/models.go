package persistence

import "time"

// Trainer represents an instructor who can be booked for seances.
type Trainer struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	Phone     *string
	Specialty *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DisplayName returns the trainer's name as rendered in conflict records.
func (t Trainer) DisplayName() string {
	if t.FirstName == "" {
		return t.LastName
	}
	if t.LastName == "" {
		return t.FirstName
	}
	return t.FirstName + " " + t.LastName
}

// Room represents a training room catalog entry.
type Room struct {
	ID        string
	Name      string
	Location  *string
	Capacity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Course represents a course in the training catalog.
type Course struct {
	ID        string
	Title     string
	Reference *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Session represents one delivery of a course, grouping its seances.
type Session struct {
	ID        string
	CourseID  string
	Label     string
	StartDate string
	EndDate   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AvailabilityRule stores an operator-declared availability window for a
// trainer or room. Date is set for one-off rules only; AnchorDate records
// the creation day the recurrence expander anchors weekly and monthly
// applicability to.
type AvailabilityRule struct {
	ID           string
	ResourceKind string
	ResourceID   string
	Weekday      int
	StartMinute  int
	EndMinute    int
	Recurrence   string
	Date         *string
	AnchorDate   string
	Active       bool
	Note         *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Seance represents a scheduled session meeting. Date is stored as
// YYYY-MM-DD and the time span as minutes since midnight, matching the
// engine's half-open interval model.
type Seance struct {
	ID          string
	SessionID   string
	ModuleID    *string
	TrainerID   string
	RoomID      *string
	Date        string
	StartMinute int
	EndMinute   int
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SeanceWithContext is a seance row joined with the denormalized display
// context conflict records carry: the course title of the seance's session
// and its trainer's display name.
type SeanceWithContext struct {
	Seance
	CourseTitle string
	TrainerName string
}
