package persistence

import "context"

// TrainerRepository exposes CRUD operations for trainers.
type TrainerRepository interface {
	CreateTrainer(ctx context.Context, trainer Trainer) error
	UpdateTrainer(ctx context.Context, trainer Trainer) error
	GetTrainer(ctx context.Context, id string) (Trainer, error)
	ListTrainers(ctx context.Context) ([]Trainer, error)
	DeleteTrainer(ctx context.Context, id string) error
}

// RoomRepository exposes CRUD operations for rooms.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) error
	UpdateRoom(ctx context.Context, room Room) error
	GetRoom(ctx context.Context, id string) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
	DeleteRoom(ctx context.Context, id string) error
}

// CourseRepository stores course catalog entries.
type CourseRepository interface {
	CreateCourse(ctx context.Context, course Course) error
	GetCourse(ctx context.Context, id string) (Course, error)
	ListCourses(ctx context.Context) ([]Course, error)
}

// SessionRepository stores course sessions.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) error
	GetSession(ctx context.Context, id string) (Session, error)
	ListSessionsForCourse(ctx context.Context, courseID string) ([]Session, error)
}

// AvailabilityRuleFilter narrows rule queries.
type AvailabilityRuleFilter struct {
	ResourceKind string
	ResourceID   string
	ActiveOnly   bool
}

// AvailabilityRuleRepository stores availability declarations. SetRuleActive
// is the soft-disable used for temporary suspensions; DeleteRule removes a
// rule permanently.
type AvailabilityRuleRepository interface {
	CreateRule(ctx context.Context, rule AvailabilityRule) error
	GetRule(ctx context.Context, id string) (AvailabilityRule, error)
	ListRules(ctx context.Context, filter AvailabilityRuleFilter) ([]AvailabilityRule, error)
	SetRuleActive(ctx context.Context, id string, active bool) error
	DeleteRule(ctx context.Context, id string) error
}

// SeanceFilter narrows seance queries. Statuses empty means all statuses.
type SeanceFilter struct {
	Date      string
	TrainerID string
	RoomID    string
	SessionID string
	Statuses  []string
}

// SeanceRepository stores scheduled seances. CreateSeance and
// UpdateSeance enforce the overlap exclusion constraint inside their
// write transaction: a non-cancelled seance for the same trainer or room
// overlapping the written interval causes ErrOverlap. This guard, not the
// scheduling engine's advisory verdict, is the final authority against
// concurrent double booking.
type SeanceRepository interface {
	CreateSeance(ctx context.Context, seance Seance) error
	UpdateSeance(ctx context.Context, seance Seance) error
	GetSeance(ctx context.Context, id string) (Seance, error)
	ListSeances(ctx context.Context, filter SeanceFilter) ([]Seance, error)
	// ListForDay returns the day's seances joined with course title and
	// trainer name, restricted to those binding the given trainer or room
	// when either id is non-empty. This is the snapshot the scheduling
	// engine consumes.
	ListForDay(ctx context.Context, date string, trainerID, roomID string) ([]SeanceWithContext, error)
	SetSeanceStatus(ctx context.Context, id string, status string) error
	DeleteSeance(ctx context.Context, id string) error
}
