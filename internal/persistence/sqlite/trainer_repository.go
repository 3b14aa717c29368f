package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/training-console/internal/persistence"
)

// TrainerRepository implements persistence.TrainerRepository using SQLite.
type TrainerRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewTrainerRepository creates a new SQLite trainer repository.
func NewTrainerRepository(pool *ConnectionPool) *TrainerRepository {
	return &TrainerRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateTrainer inserts a new trainer into the database.
func (r *TrainerRepository) CreateTrainer(ctx context.Context, trainer persistence.Trainer) error {
	if trainer.ID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	trainer.CreatedAt = now
	trainer.UpdatedAt = now

	query := `
		INSERT INTO trainers (id, first_name, last_name, email, phone, specialty, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.helper.Exec(ctx, query,
		trainer.ID,
		trainer.FirstName,
		trainer.LastName,
		trainer.Email,
		nullString(trainer.Phone),
		nullString(trainer.Specialty),
		trainer.CreatedAt.Format(time.RFC3339),
		trainer.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	return nil
}

// UpdateTrainer updates an existing trainer.
func (r *TrainerRepository) UpdateTrainer(ctx context.Context, trainer persistence.Trainer) error {
	if trainer.ID == "" {
		return persistence.ErrNotFound
	}

	trainer.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE trainers
		SET first_name = ?, last_name = ?, email = ?, phone = ?, specialty = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.helper.Exec(ctx, query,
		trainer.FirstName,
		trainer.LastName,
		trainer.Email,
		nullString(trainer.Phone),
		nullString(trainer.Specialty),
		trainer.UpdatedAt.Format(time.RFC3339),
		trainer.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}

	return nil
}

// GetTrainer retrieves a trainer by ID.
func (r *TrainerRepository) GetTrainer(ctx context.Context, id string) (persistence.Trainer, error) {
	if id == "" {
		return persistence.Trainer{}, persistence.ErrNotFound
	}

	query := `
		SELECT id, first_name, last_name, email, phone, specialty, created_at, updated_at
		FROM trainers
		WHERE id = ?
	`

	trainer, err := scanTrainer(r.helper.QueryRow(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Trainer{}, persistence.ErrNotFound
		}
		return persistence.Trainer{}, r.mapper.MapError(err)
	}

	return trainer, nil
}

// ListTrainers lists all trainers ordered by name.
func (r *TrainerRepository) ListTrainers(ctx context.Context) ([]persistence.Trainer, error) {
	query := `
		SELECT id, first_name, last_name, email, phone, specialty, created_at, updated_at
		FROM trainers
		ORDER BY last_name ASC, first_name ASC, id ASC
	`

	rows, err := r.helper.Query(ctx, query)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var trainers []persistence.Trainer
	for rows.Next() {
		trainer, err := scanTrainer(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		trainers = append(trainers, trainer)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return trainers, nil
}

// DeleteTrainer removes a trainer by ID.
func (r *TrainerRepository) DeleteTrainer(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.helper.Exec(ctx, "DELETE FROM trainers WHERE id = ?", id)
	if err != nil {
		return r.mapper.MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}

	return nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scan helpers.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTrainer(row rowScanner) (persistence.Trainer, error) {
	var trainer persistence.Trainer
	var phone, specialty sql.NullString
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&trainer.ID,
		&trainer.FirstName,
		&trainer.LastName,
		&trainer.Email,
		&phone,
		&specialty,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.Trainer{}, err
	}

	if phone.Valid {
		trainer.Phone = &phone.String
	}
	if specialty.Valid {
		trainer.Specialty = &specialty.String
	}

	if trainer.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return persistence.Trainer{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if trainer.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
		return persistence.Trainer{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return trainer, nil
}

// nullString converts an optional string to its sql representation.
func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
