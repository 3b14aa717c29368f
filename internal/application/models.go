package application

import (
	"time"

	"github.com/example/training-console/internal/persistence"
	"github.com/example/training-console/internal/timegrid"
)

// Principal identifies the acting user for authorization decisions.
type Principal struct {
	UserID  string
	IsAdmin bool
}

// TrainerInput carries user supplied trainer attributes.
type TrainerInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     *string
	Specialty *string
}

// CreateTrainerParams bundles the principal and input for CreateTrainer.
type CreateTrainerParams struct {
	Principal Principal
	Input     TrainerInput
}

// UpdateTrainerParams bundles the principal, target and input for UpdateTrainer.
type UpdateTrainerParams struct {
	Principal Principal
	TrainerID string
	Input     TrainerInput
}

// Trainer is the application view of a trainer record.
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

// DisplayName renders the trainer name the way conflict records show it.
func (t Trainer) DisplayName() string {
	return persistence.Trainer{FirstName: t.FirstName, LastName: t.LastName}.DisplayName()
}

// RoomInput carries user supplied room attributes.
type RoomInput struct {
	Name     string
	Location *string
	Capacity int
}

// CreateRoomParams bundles the principal and input for CreateRoom.
type CreateRoomParams struct {
	Principal Principal
	Input     RoomInput
}

// UpdateRoomParams bundles the principal, target and input for UpdateRoom.
type UpdateRoomParams struct {
	Principal Principal
	RoomID    string
	Input     RoomInput
}

// Room is the application view of a room record.
type Room struct {
	ID        string
	Name      string
	Location  *string
	Capacity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SeanceInput carries the user supplied fields of a seance. Date uses
// YYYY-MM-DD and the times use HH:MM.
type SeanceInput struct {
	SessionID string
	ModuleID  *string
	TrainerID string
	RoomID    *string
	Date      string
	Start     string
	End       string
}

// CheckSeanceParams asks for an advisory verdict without writing anything.
// ExcludeSeanceID is set when the candidate is an edit of an existing seance.
type CheckSeanceParams struct {
	Principal       Principal
	Input           SeanceInput
	ExcludeSeanceID string
}

// ScheduleSeanceParams bundles the principal and input for ScheduleSeance.
type ScheduleSeanceParams struct {
	Principal Principal
	Input     SeanceInput
}

// RescheduleSeanceParams bundles the principal, target and new slot for
// RescheduleSeance.
type RescheduleSeanceParams struct {
	Principal Principal
	SeanceID  string
	Input     SeanceInput
}

// Seance is the application view of a scheduled seance.
type Seance struct {
	ID        string
	SessionID string
	ModuleID  *string
	TrainerID string
	RoomID    *string
	Date      timegrid.Date
	Start     timegrid.TimeOfDay
	End       timegrid.TimeOfDay
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DaySeance is a seance of the requested day enriched with display context.
type DaySeance struct {
	Seance
	CourseTitle string
	TrainerName string
}

// RuleInput carries the user supplied fields of an availability rule. Start
// and End use HH:MM; Date is required for one-off rules.
type RuleInput struct {
	ResourceKind string
	ResourceID   string
	Weekday      time.Weekday
	Start        string
	End          string
	Recurrence   string
	Date         *string
	Note         *string
}

// DeclareRuleParams bundles the principal and input for DeclareRule.
type DeclareRuleParams struct {
	Principal Principal
	Input     RuleInput
}

// Rule is the application view of an availability rule.
type Rule struct {
	ID           string
	ResourceKind string
	ResourceID   string
	Weekday      time.Weekday
	Start        timegrid.TimeOfDay
	End          timegrid.TimeOfDay
	Recurrence   string
	Date         *timegrid.Date
	Anchor       timegrid.Date
	Active       bool
	Note         *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func trainerFromRecord(record persistence.Trainer) Trainer {
	return Trainer{
		ID:        record.ID,
		FirstName: record.FirstName,
		LastName:  record.LastName,
		Email:     record.Email,
		Phone:     record.Phone,
		Specialty: record.Specialty,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}

func roomFromRecord(record persistence.Room) Room {
	return Room{
		ID:        record.ID,
		Name:      record.Name,
		Location:  record.Location,
		Capacity:  record.Capacity,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}
