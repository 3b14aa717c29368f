package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/training-console/internal/persistence"
	"github.com/example/training-console/internal/recurrence"
	"github.com/example/training-console/internal/scheduler"
	"github.com/example/training-console/internal/timegrid"
)

// AvailabilityRuleStore captures the rule persistence operations needed by
// the availability service.
type AvailabilityRuleStore interface {
	CreateRule(ctx context.Context, rule persistence.AvailabilityRule) error
	GetRule(ctx context.Context, id string) (persistence.AvailabilityRule, error)
	ListRules(ctx context.Context, filter persistence.AvailabilityRuleFilter) ([]persistence.AvailabilityRule, error)
	SetRuleActive(ctx context.Context, id string, active bool) error
	DeleteRule(ctx context.Context, id string) error
}

// AvailabilityService manages declared availability windows for trainers and
// rooms.
type AvailabilityService struct {
	rules       AvailabilityRuleStore
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewAvailabilityService constructs an availability service with the provided dependencies.
func NewAvailabilityService(rules AvailabilityRuleStore, idGenerator func() string, now func() time.Time) *AvailabilityService {
	return NewAvailabilityServiceWithLogger(rules, idGenerator, now, nil)
}

// NewAvailabilityServiceWithLogger constructs an availability service with a specified logger.
func NewAvailabilityServiceWithLogger(rules AvailabilityRuleStore, idGenerator func() string, now func() time.Time, logger *slog.Logger) *AvailabilityService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &AvailabilityService{rules: rules, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *AvailabilityService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AvailabilityService", operation, attrs...)
}

// DeclareRule validates and persists a new availability rule. The rule is
// anchored to the declaration day: weekly and monthly rules never apply to
// dates before their anchor.
func (s *AvailabilityService) DeclareRule(ctx context.Context, params DeclareRuleParams) (rule Rule, err error) {
	if s == nil {
		err = fmt.Errorf("AvailabilityService is nil")
		return
	}

	logger := s.loggerWith(ctx, "DeclareRule",
		"principal_id", params.Principal.UserID,
		"resource_kind", params.Input.ResourceKind,
		"resource_id", params.Input.ResourceID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to declare rule", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("rule_id", rule.ID).InfoContext(ctx, "availability rule declared")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	record, vErr := buildRuleRecord(params.Input, s.idGenerator(), s.now())
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if err = s.rules.CreateRule(ctx, record); err != nil {
		err = mapSeanceRepoError(err)
		return
	}

	var persisted persistence.AvailabilityRule
	persisted, err = s.rules.GetRule(ctx, record.ID)
	if err != nil {
		err = mapSeanceRepoError(err)
		return
	}

	rule, err = ruleViewFromRecord(persisted)
	return
}

// DeactivateRule suspends a rule without deleting it. Deactivated rules stop
// contributing availability immediately.
func (s *AvailabilityService) DeactivateRule(ctx context.Context, principal Principal, ruleID string) error {
	return s.setActive(ctx, principal, ruleID, false, "DeactivateRule", "availability rule deactivated")
}

// ReactivateRule re-enables a previously deactivated rule.
func (s *AvailabilityService) ReactivateRule(ctx context.Context, principal Principal, ruleID string) error {
	return s.setActive(ctx, principal, ruleID, true, "ReactivateRule", "availability rule reactivated")
}

func (s *AvailabilityService) setActive(ctx context.Context, principal Principal, ruleID string, active bool, operation, message string) error {
	if s == nil {
		return fmt.Errorf("AvailabilityService is nil")
	}
	if !principal.IsAdmin {
		return ErrUnauthorized
	}

	logger := s.loggerWith(ctx, operation,
		"principal_id", principal.UserID,
		"rule_id", ruleID,
	)

	if err := s.rules.SetRuleActive(ctx, ruleID, active); err != nil {
		err = mapSeanceRepoError(err)
		logger.ErrorContext(ctx, "failed to update rule state", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, message)
	return nil
}

// DeleteRule removes a rule permanently.
func (s *AvailabilityService) DeleteRule(ctx context.Context, principal Principal, ruleID string) error {
	if s == nil {
		return fmt.Errorf("AvailabilityService is nil")
	}
	if !principal.IsAdmin {
		return ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "DeleteRule",
		"principal_id", principal.UserID,
		"rule_id", ruleID,
	)

	if err := s.rules.DeleteRule(ctx, ruleID); err != nil {
		err = mapSeanceRepoError(err)
		logger.ErrorContext(ctx, "failed to delete rule", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "availability rule deleted")
	return nil
}

// ListRulesForResource returns all rules declared for one trainer or room,
// active and inactive alike.
func (s *AvailabilityService) ListRulesForResource(ctx context.Context, principal Principal, resourceKind, resourceID string) (rules []Rule, err error) {
	if s == nil {
		err = fmt.Errorf("AvailabilityService is nil")
		return
	}

	logger := s.loggerWith(ctx, "ListRulesForResource",
		"principal_id", principal.UserID,
		"resource_kind", resourceKind,
		"resource_id", resourceID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list rules", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(rules)).InfoContext(ctx, "availability rules listed")
	}()

	if !recurrence.ResourceKind(resourceKind).Valid() {
		err = fmt.Errorf("%w: %q", scheduler.ErrUnknownResource, resourceKind)
		return
	}

	var records []persistence.AvailabilityRule
	records, err = s.rules.ListRules(ctx, persistence.AvailabilityRuleFilter{
		ResourceKind: resourceKind,
		ResourceID:   resourceID,
	})
	if err != nil {
		err = mapSeanceRepoError(err)
		return
	}

	for _, record := range records {
		var rule Rule
		rule, err = ruleViewFromRecord(record)
		if err != nil {
			return
		}
		rules = append(rules, rule)
	}

	return
}

// buildRuleRecord validates the input and assembles the persistence record.
// One-off rules take their weekday from their date; weekly and monthly rules
// are anchored to the declaration day.
func buildRuleRecord(input RuleInput, id string, now time.Time) (persistence.AvailabilityRule, *ValidationError) {
	vErr := &ValidationError{}

	kind := strings.TrimSpace(input.ResourceKind)
	if !recurrence.ResourceKind(kind).Valid() {
		vErr.add("resourceKind", "resource kind must be trainer or room")
	}

	resourceID := strings.TrimSpace(input.ResourceID)
	if resourceID == "" {
		vErr.add("resourceId", "resource is required")
	}

	recurrenceKind := strings.TrimSpace(input.Recurrence)
	if !recurrence.Kind(recurrenceKind).Valid() {
		vErr.add("recurrence", "recurrence must be weekly, monthly or one-off")
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

	weekday := input.Weekday
	var oneOffDate *string
	if recurrence.Kind(recurrenceKind) == recurrence.KindOneOff {
		if input.Date == nil {
			vErr.add("date", "one-off rules require a date")
		} else if date, err := timegrid.ParseDate(*input.Date); err != nil {
			vErr.add("date", "date must use the YYYY-MM-DD format")
		} else {
			weekday = date.Weekday()
			value := date.String()
			oneOffDate = &value
		}
	} else if weekday < time.Sunday || weekday > time.Saturday {
		vErr.add("weekday", "weekday must be between Sunday and Saturday")
	}

	if vErr.HasErrors() {
		return persistence.AvailabilityRule{}, vErr
	}

	return persistence.AvailabilityRule{
		ID:           id,
		ResourceKind: kind,
		ResourceID:   resourceID,
		Weekday:      int(weekday),
		StartMinute:  start.Minutes(),
		EndMinute:    end.Minutes(),
		Recurrence:   recurrenceKind,
		Date:         oneOffDate,
		AnchorDate:   timegrid.DateOf(now).String(),
		Active:       true,
		Note:         normalizeOptionalString(input.Note),
	}, vErr
}

func ruleViewFromRecord(record persistence.AvailabilityRule) (Rule, error) {
	anchor, err := timegrid.ParseDate(record.AnchorDate)
	if err != nil {
		return Rule{}, fmt.Errorf("rule %s has invalid anchor date: %w", record.ID, err)
	}

	rule := Rule{
		ID:           record.ID,
		ResourceKind: record.ResourceKind,
		ResourceID:   record.ResourceID,
		Weekday:      time.Weekday(record.Weekday),
		Start:        timegrid.TimeOfDay(record.StartMinute),
		End:          timegrid.TimeOfDay(record.EndMinute),
		Recurrence:   record.Recurrence,
		Anchor:       anchor,
		Active:       record.Active,
		Note:         record.Note,
		CreatedAt:    record.CreatedAt,
		UpdatedAt:    record.UpdatedAt,
	}
	if record.Date != nil {
		date, err := timegrid.ParseDate(*record.Date)
		if err != nil {
			return Rule{}, fmt.Errorf("rule %s has invalid date: %w", record.ID, err)
		}
		rule.Date = &date
	}

	return rule, nil
}
