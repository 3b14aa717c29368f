package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/training-console/internal/persistence"
	"github.com/example/training-console/internal/recurrence"
	"github.com/example/training-console/internal/scheduler"
	"github.com/example/training-console/internal/timegrid"
)

// SeanceStore captures the seance persistence operations needed by the
// planning service.
type SeanceStore interface {
	CreateSeance(ctx context.Context, seance persistence.Seance) error
	UpdateSeance(ctx context.Context, seance persistence.Seance) error
	GetSeance(ctx context.Context, id string) (persistence.Seance, error)
	ListForDay(ctx context.Context, date string, trainerID, roomID string) ([]persistence.SeanceWithContext, error)
	SetSeanceStatus(ctx context.Context, id string, status string) error
}

// RuleStore captures the availability rule lookups needed by the planning
// service.
type RuleStore interface {
	ListRules(ctx context.Context, filter persistence.AvailabilityRuleFilter) ([]persistence.AvailabilityRule, error)
}

// SessionStore captures the course session lookups needed by the planning
// service.
type SessionStore interface {
	GetSession(ctx context.Context, id string) (persistence.Session, error)
}

// PlanningService orchestrates seance scheduling: it computes advisory
// verdicts from declared availability and existing bookings, and persists
// seance writes behind the repository's overlap guard.
//
// The verdict is informational. An operator may schedule over an
// availability gap; only a hard overlap rejected by the guard blocks the
// write.
type PlanningService struct {
	seances     SeanceStore
	rules       RuleStore
	sessions    SessionStore
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewPlanningService constructs a planning service with the provided dependencies.
func NewPlanningService(seances SeanceStore, rules RuleStore, sessions SessionStore, idGenerator func() string, now func() time.Time) *PlanningService {
	return NewPlanningServiceWithLogger(seances, rules, sessions, idGenerator, now, nil)
}

// NewPlanningServiceWithLogger constructs a planning service with a specified logger.
func NewPlanningServiceWithLogger(seances SeanceStore, rules RuleStore, sessions SessionStore, idGenerator func() string, now func() time.Time, logger *slog.Logger) *PlanningService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &PlanningService{
		seances:     seances,
		rules:       rules,
		sessions:    sessions,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *PlanningService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "PlanningService", operation, attrs...)
}

// CheckSeance evaluates a candidate slot and returns the advisory verdict
// without writing anything. Any authenticated user may ask.
func (s *PlanningService) CheckSeance(ctx context.Context, params CheckSeanceParams) (verdict scheduler.Verdict, err error) {
	if s == nil {
		err = fmt.Errorf("PlanningService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CheckSeance",
		"principal_id", params.Principal.UserID,
		"trainer_id", params.Input.TrainerID,
		"date", params.Input.Date,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to check seance", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("schedulable", verdict.Schedulable()).InfoContext(ctx, "seance checked")
	}()

	candidate, vErr := parseSeanceCandidate(params.Input, params.ExcludeSeanceID)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	verdict, err = s.evaluate(ctx, candidate)
	return
}

// ScheduleSeance persists a new seance after computing its verdict. The
// verdict is returned alongside the created seance so callers can surface
// warnings; an availability gap does not block the write, a hard overlap
// does.
func (s *PlanningService) ScheduleSeance(ctx context.Context, params ScheduleSeanceParams) (seance Seance, verdict scheduler.Verdict, err error) {
	if s == nil {
		err = fmt.Errorf("PlanningService is nil")
		return
	}

	logger := s.loggerWith(ctx, "ScheduleSeance",
		"principal_id", params.Principal.UserID,
		"trainer_id", params.Input.TrainerID,
		"date", params.Input.Date,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to schedule seance", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("seance_id", seance.ID, "conflicts", verdict.HasConflicts()).InfoContext(ctx, "seance scheduled")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	candidate, vErr := parseSeanceCandidate(params.Input, "")
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if _, err = s.sessions.GetSession(ctx, params.Input.SessionID); err != nil {
		err = mapSeanceRepoError(err)
		return
	}

	verdict, err = s.evaluate(ctx, candidate)
	if err != nil {
		return
	}

	record := persistence.Seance{
		ID:          s.idGenerator(),
		SessionID:   params.Input.SessionID,
		ModuleID:    normalizeOptionalString(params.Input.ModuleID),
		TrainerID:   strings.TrimSpace(params.Input.TrainerID),
		RoomID:      normalizeOptionalString(params.Input.RoomID),
		Date:        candidate.Date.String(),
		StartMinute: candidate.Start.Minutes(),
		EndMinute:   candidate.End.Minutes(),
		Status:      string(scheduler.StatusPlanned),
	}

	if err = s.seances.CreateSeance(ctx, record); err != nil {
		err = mapSeanceRepoError(err)
		return
	}

	seance, err = s.loadSeance(ctx, record.ID)
	return
}

// RescheduleSeance moves an existing seance to a new slot. The seance being
// moved is excluded from its own conflict evaluation.
func (s *PlanningService) RescheduleSeance(ctx context.Context, params RescheduleSeanceParams) (seance Seance, verdict scheduler.Verdict, err error) {
	if s == nil {
		err = fmt.Errorf("PlanningService is nil")
		return
	}

	logger := s.loggerWith(ctx, "RescheduleSeance",
		"principal_id", params.Principal.UserID,
		"seance_id", params.SeanceID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to reschedule seance", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("conflicts", verdict.HasConflicts()).InfoContext(ctx, "seance rescheduled")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	var existing persistence.Seance
	existing, err = s.seances.GetSeance(ctx, params.SeanceID)
	if err != nil {
		err = mapSeanceRepoError(err)
		return
	}

	candidate, vErr := parseSeanceCandidate(params.Input, params.SeanceID)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	verdict, err = s.evaluate(ctx, candidate)
	if err != nil {
		return
	}

	updated := existing
	updated.SessionID = params.Input.SessionID
	updated.ModuleID = normalizeOptionalString(params.Input.ModuleID)
	updated.TrainerID = strings.TrimSpace(params.Input.TrainerID)
	updated.RoomID = normalizeOptionalString(params.Input.RoomID)
	updated.Date = candidate.Date.String()
	updated.StartMinute = candidate.Start.Minutes()
	updated.EndMinute = candidate.End.Minutes()

	if err = s.seances.UpdateSeance(ctx, updated); err != nil {
		err = mapSeanceRepoError(err)
		return
	}

	seance, err = s.loadSeance(ctx, params.SeanceID)
	return
}

// CancelSeance transitions a seance to cancelled. Cancelled seances stop
// participating in conflict detection and their slot becomes reusable.
func (s *PlanningService) CancelSeance(ctx context.Context, principal Principal, seanceID string) error {
	return s.setStatus(ctx, principal, seanceID, scheduler.StatusCancelled, "CancelSeance", "seance cancelled")
}

// CompleteSeance transitions a seance to completed. Completed seances keep
// blocking their slot.
func (s *PlanningService) CompleteSeance(ctx context.Context, principal Principal, seanceID string) error {
	return s.setStatus(ctx, principal, seanceID, scheduler.StatusCompleted, "CompleteSeance", "seance completed")
}

func (s *PlanningService) setStatus(ctx context.Context, principal Principal, seanceID string, status scheduler.SeanceStatus, operation, message string) error {
	if s == nil {
		return fmt.Errorf("PlanningService is nil")
	}
	if !principal.IsAdmin {
		return ErrUnauthorized
	}

	logger := s.loggerWith(ctx, operation,
		"principal_id", principal.UserID,
		"seance_id", seanceID,
	)

	if err := s.seances.SetSeanceStatus(ctx, seanceID, string(status)); err != nil {
		err = mapSeanceRepoError(err)
		logger.ErrorContext(ctx, "failed to update seance status", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, message)
	return nil
}

// ListSeancesForDay returns the seances of one calendar day with their
// display context, ordered by start time.
func (s *PlanningService) ListSeancesForDay(ctx context.Context, principal Principal, date string) (seances []DaySeance, err error) {
	if s == nil {
		err = fmt.Errorf("PlanningService is nil")
		return
	}

	logger := s.loggerWith(ctx, "ListSeancesForDay",
		"principal_id", principal.UserID,
		"date", date,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list seances", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(seances)).InfoContext(ctx, "seances listed")
	}()

	if _, parseErr := timegrid.ParseDate(date); parseErr != nil {
		vErr := &ValidationError{}
		vErr.add("date", "date must use the YYYY-MM-DD format")
		err = vErr
		return
	}

	var records []persistence.SeanceWithContext
	records, err = s.seances.ListForDay(ctx, date, "", "")
	if err != nil {
		err = mapSeanceRepoError(err)
		return
	}

	for _, record := range records {
		var item DaySeance
		item.Seance, err = seanceFromRecord(record.Seance)
		if err != nil {
			return
		}
		item.CourseTitle = record.CourseTitle
		item.TrainerName = record.TrainerName
		seances = append(seances, item)
	}

	return
}

// evaluate loads the rule and seance snapshot relevant to the candidate and
// runs the scheduling engine over it.
func (s *PlanningService) evaluate(ctx context.Context, candidate scheduler.Candidate) (scheduler.Verdict, error) {
	var roomID string
	if candidate.RoomID != nil {
		roomID = *candidate.RoomID
	}

	rules, err := s.loadRules(ctx, candidate.TrainerID, roomID)
	if err != nil {
		return scheduler.Verdict{}, err
	}

	existing, err := s.loadDaySnapshot(ctx, candidate.Date.String(), candidate.TrainerID, roomID)
	if err != nil {
		return scheduler.Verdict{}, err
	}

	return scheduler.BuildVerdict(candidate, rules, existing)
}

func (s *PlanningService) loadRules(ctx context.Context, trainerID, roomID string) ([]recurrence.Rule, error) {
	var rules []recurrence.Rule

	load := func(kind, resourceID string) error {
		if resourceID == "" {
			return nil
		}
		records, err := s.rules.ListRules(ctx, persistence.AvailabilityRuleFilter{
			ResourceKind: kind,
			ResourceID:   resourceID,
		})
		if err != nil {
			return mapSeanceRepoError(err)
		}
		for _, record := range records {
			rule, err := ruleRecordToEngine(record)
			if err != nil {
				return err
			}
			rules = append(rules, rule)
		}
		return nil
	}

	if err := load(string(recurrence.ResourceTrainer), trainerID); err != nil {
		return nil, err
	}
	if err := load(string(recurrence.ResourceRoom), roomID); err != nil {
		return nil, err
	}

	return rules, nil
}

func (s *PlanningService) loadDaySnapshot(ctx context.Context, date, trainerID, roomID string) ([]scheduler.Seance, error) {
	records, err := s.seances.ListForDay(ctx, date, trainerID, roomID)
	if err != nil {
		return nil, mapSeanceRepoError(err)
	}

	seances := make([]scheduler.Seance, 0, len(records))
	for _, record := range records {
		seance, err := seanceRecordToEngine(record)
		if err != nil {
			return nil, err
		}
		seances = append(seances, seance)
	}

	return seances, nil
}

func (s *PlanningService) loadSeance(ctx context.Context, id string) (Seance, error) {
	record, err := s.seances.GetSeance(ctx, id)
	if err != nil {
		return Seance{}, mapSeanceRepoError(err)
	}
	return seanceFromRecord(record)
}

// parseSeanceCandidate validates the textual input and converts it to an
// engine candidate. All field problems are reported together.
func parseSeanceCandidate(input SeanceInput, excludeSeanceID string) (scheduler.Candidate, *ValidationError) {
	vErr := &ValidationError{}
	var candidate scheduler.Candidate

	if strings.TrimSpace(input.SessionID) == "" {
		vErr.add("sessionId", "session is required")
	}

	trainerID := strings.TrimSpace(input.TrainerID)
	if trainerID == "" {
		vErr.add("trainerId", "trainer is required")
	}

	date, err := timegrid.ParseDate(input.Date)
	if err != nil {
		vErr.add("date", "date must use the YYYY-MM-DD format")
	}

	start, err := timegrid.ParseTimeOfDay(input.Start)
	if err != nil {
		vErr.add("start", "start must use the HH:MM format")
	}

	end, err := timegrid.ParseTimeOfDay(input.End)
	if err != nil {
		vErr.add("end", "end must use the HH:MM format")
	}

	if !vErr.HasErrors() && start >= end {
		vErr.add("end", "end must be after start")
	}

	if vErr.HasErrors() {
		return candidate, vErr
	}

	candidate = scheduler.Candidate{
		Date:            date,
		Start:           start,
		End:             end,
		RoomID:          normalizeOptionalString(input.RoomID),
		TrainerID:       trainerID,
		ExcludeSeanceID: excludeSeanceID,
	}

	return candidate, vErr
}

func ruleRecordToEngine(record persistence.AvailabilityRule) (recurrence.Rule, error) {
	anchor, err := timegrid.ParseDate(record.AnchorDate)
	if err != nil {
		return recurrence.Rule{}, fmt.Errorf("rule %s has invalid anchor date: %w", record.ID, err)
	}

	rule := recurrence.Rule{
		ID: record.ID,
		Resource: recurrence.ResourceRef{
			Kind: recurrence.ResourceKind(record.ResourceKind),
			ID:   record.ResourceID,
		},
		Weekday: time.Weekday(record.Weekday),
		Start:   timegrid.TimeOfDay(record.StartMinute),
		End:     timegrid.TimeOfDay(record.EndMinute),
		Kind:    recurrence.Kind(record.Recurrence),
		Anchor:  anchor,
		Active:  record.Active,
	}
	if record.Note != nil {
		rule.Note = *record.Note
	}
	if record.Date != nil {
		date, err := timegrid.ParseDate(*record.Date)
		if err != nil {
			return recurrence.Rule{}, fmt.Errorf("rule %s has invalid date: %w", record.ID, err)
		}
		rule.Date = &date
	}

	return rule, nil
}

func seanceRecordToEngine(record persistence.SeanceWithContext) (scheduler.Seance, error) {
	date, err := timegrid.ParseDate(record.Date)
	if err != nil {
		return scheduler.Seance{}, fmt.Errorf("seance %s has invalid date: %w", record.ID, err)
	}

	var moduleID string
	if record.ModuleID != nil {
		moduleID = *record.ModuleID
	}

	return scheduler.Seance{
		ID:          record.ID,
		Date:        date,
		Start:       timegrid.TimeOfDay(record.StartMinute),
		End:         timegrid.TimeOfDay(record.EndMinute),
		RoomID:      record.RoomID,
		TrainerID:   record.TrainerID,
		SessionID:   record.SessionID,
		ModuleID:    moduleID,
		Status:      scheduler.SeanceStatus(record.Status),
		CourseName:  record.CourseTitle,
		TrainerName: record.TrainerName,
	}, nil
}

func seanceFromRecord(record persistence.Seance) (Seance, error) {
	date, err := timegrid.ParseDate(record.Date)
	if err != nil {
		return Seance{}, fmt.Errorf("seance %s has invalid date: %w", record.ID, err)
	}

	return Seance{
		ID:        record.ID,
		SessionID: record.SessionID,
		ModuleID:  record.ModuleID,
		TrainerID: record.TrainerID,
		RoomID:    record.RoomID,
		Date:      date,
		Start:     timegrid.TimeOfDay(record.StartMinute),
		End:       timegrid.TimeOfDay(record.EndMinute),
		Status:    record.Status,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}, nil
}

func mapSeanceRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrOverlap) {
		return ErrSeanceOverlap
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrForeignKeyViolation) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("end", "end must be after start")
		return vErr
	}
	return err
}
