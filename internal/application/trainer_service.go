package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/training-console/internal/persistence"
)

// TrainerStore captures the trainer persistence operations needed by the service.
type TrainerStore interface {
	CreateTrainer(ctx context.Context, trainer persistence.Trainer) error
	UpdateTrainer(ctx context.Context, trainer persistence.Trainer) error
	GetTrainer(ctx context.Context, id string) (persistence.Trainer, error)
	ListTrainers(ctx context.Context) ([]persistence.Trainer, error)
	DeleteTrainer(ctx context.Context, id string) error
}

// TrainerService orchestrates validation, authorization, and persistence for trainers.
type TrainerService struct {
	trainers    TrainerStore
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewTrainerService constructs a trainer service with the provided dependencies.
func NewTrainerService(trainers TrainerStore, idGenerator func() string, now func() time.Time) *TrainerService {
	return NewTrainerServiceWithLogger(trainers, idGenerator, now, nil)
}

// NewTrainerServiceWithLogger constructs a trainer service with a specified logger.
func NewTrainerServiceWithLogger(trainers TrainerStore, idGenerator func() string, now func() time.Time, logger *slog.Logger) *TrainerService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &TrainerService{trainers: trainers, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *TrainerService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "TrainerService", operation, attrs...)
}

// CreateTrainer validates input and persists a new trainer for administrators.
func (s *TrainerService) CreateTrainer(ctx context.Context, params CreateTrainerParams) (trainer Trainer, err error) {
	if s == nil {
		err = fmt.Errorf("TrainerService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateTrainer",
		"principal_id", params.Principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create trainer", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("trainer_id", trainer.ID).InfoContext(ctx, "trainer created")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	vErr := validateTrainerInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	record := persistence.Trainer{
		ID:        s.idGenerator(),
		FirstName: strings.TrimSpace(params.Input.FirstName),
		LastName:  strings.TrimSpace(params.Input.LastName),
		Email:     strings.TrimSpace(params.Input.Email),
		Phone:     normalizeOptionalString(params.Input.Phone),
		Specialty: normalizeOptionalString(params.Input.Specialty),
	}

	if err = s.trainers.CreateTrainer(ctx, record); err != nil {
		err = mapCatalogRepoError(err)
		return
	}

	var persisted persistence.Trainer
	persisted, err = s.trainers.GetTrainer(ctx, record.ID)
	if err != nil {
		err = mapCatalogRepoError(err)
		return
	}

	trainer = trainerFromRecord(persisted)
	return
}

// UpdateTrainer validates input and updates an existing trainer for administrators.
func (s *TrainerService) UpdateTrainer(ctx context.Context, params UpdateTrainerParams) (trainer Trainer, err error) {
	if s == nil {
		err = fmt.Errorf("TrainerService is nil")
		return
	}

	logger := s.loggerWith(ctx, "UpdateTrainer",
		"principal_id", params.Principal.UserID,
		"trainer_id", params.TrainerID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update trainer", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "trainer updated")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	var existing persistence.Trainer
	existing, err = s.trainers.GetTrainer(ctx, params.TrainerID)
	if err != nil {
		err = mapCatalogRepoError(err)
		return
	}

	vErr := validateTrainerInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	updated := existing
	updated.FirstName = strings.TrimSpace(params.Input.FirstName)
	updated.LastName = strings.TrimSpace(params.Input.LastName)
	updated.Email = strings.TrimSpace(params.Input.Email)
	updated.Phone = normalizeOptionalString(params.Input.Phone)
	updated.Specialty = normalizeOptionalString(params.Input.Specialty)

	if err = s.trainers.UpdateTrainer(ctx, updated); err != nil {
		err = mapCatalogRepoError(err)
		return
	}

	var persisted persistence.Trainer
	persisted, err = s.trainers.GetTrainer(ctx, params.TrainerID)
	if err != nil {
		err = mapCatalogRepoError(err)
		return
	}

	trainer = trainerFromRecord(persisted)
	return
}

// DeleteTrainer removes an existing trainer when requested by an administrator.
func (s *TrainerService) DeleteTrainer(ctx context.Context, principal Principal, trainerID string) error {
	if s == nil {
		return fmt.Errorf("TrainerService is nil")
	}
	if !principal.IsAdmin {
		return ErrUnauthorized
	}

	logger := s.loggerWith(ctx, "DeleteTrainer",
		"principal_id", principal.UserID,
		"trainer_id", trainerID,
	)

	if err := s.trainers.DeleteTrainer(ctx, trainerID); err != nil {
		err = mapCatalogRepoError(err)
		logger.ErrorContext(ctx, "failed to delete trainer", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "trainer deleted")
	return nil
}

// ListTrainers returns the catalog of trainers for any authenticated user.
func (s *TrainerService) ListTrainers(ctx context.Context, principal Principal) (trainers []Trainer, err error) {
	if s == nil {
		err = fmt.Errorf("TrainerService is nil")
		return
	}

	logger := s.loggerWith(ctx, "ListTrainers",
		"principal_id", principal.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list trainers", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(trainers)).InfoContext(ctx, "trainers listed")
	}()

	var records []persistence.Trainer
	records, err = s.trainers.ListTrainers(ctx)
	if err != nil {
		err = mapCatalogRepoError(err)
		return
	}

	trainers = make([]Trainer, 0, len(records))
	for _, record := range records {
		trainers = append(trainers, trainerFromRecord(record))
	}

	sort.Slice(trainers, func(i, j int) bool {
		left := strings.ToLower(trainers[i].DisplayName())
		right := strings.ToLower(trainers[j].DisplayName())
		if left == right {
			return trainers[i].ID < trainers[j].ID
		}
		return left < right
	})

	return
}

func validateTrainerInput(input TrainerInput) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.FirstName) == "" && strings.TrimSpace(input.LastName) == "" {
		vErr.add("lastName", "a name is required")
	}
	email := strings.TrimSpace(input.Email)
	if email == "" {
		vErr.add("email", "email is required")
	} else if !strings.Contains(email, "@") {
		vErr.add("email", "email must contain @")
	}

	return vErr
}
