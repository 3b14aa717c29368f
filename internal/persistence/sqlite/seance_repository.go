package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/training-console/internal/persistence"
)

// SeanceRepository implements persistence.SeanceRepository using SQLite.
//
// Writes re-check the overlap constraint inside their transaction. The
// scheduling engine's verdict is computed from a snapshot that may be stale
// by the time the write lands; the guard here is what actually prevents a
// trainer or room from being double booked.
type SeanceRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
	retry  *RetryHelper
}

// NewSeanceRepository creates a new SQLite seance repository.
func NewSeanceRepository(pool *ConnectionPool) *SeanceRepository {
	return &SeanceRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
		retry:  NewRetryHelper(DefaultRetryConfig()),
	}
}

// CreateSeance inserts a new seance, enforcing the overlap exclusion
// constraint for its trainer and room.
func (r *SeanceRepository) CreateSeance(ctx context.Context, seance persistence.Seance) error {
	if seance.ID == "" {
		return persistence.ErrConstraintViolation
	}
	if seance.StartMinute >= seance.EndMinute {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	seance.CreatedAt = now
	seance.UpdatedAt = now

	// The write transaction is retried as a whole when SQLite reports the
	// database as locked or busy.
	return r.retry.WithRetry(ctx, func() error {
		return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			if err := r.checkOverlap(tx, seance); err != nil {
				return err
			}

			query := `
				INSERT INTO seances (id, session_id, module_id, trainer_id, room_id, date, start_minute, end_minute, status, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`

			_, err := r.helper.ExecTx(tx, query,
				seance.ID,
				seance.SessionID,
				nullString(seance.ModuleID),
				seance.TrainerID,
				nullString(seance.RoomID),
				seance.Date,
				seance.StartMinute,
				seance.EndMinute,
				seance.Status,
				seance.CreatedAt.Format(time.RFC3339),
				seance.UpdatedAt.Format(time.RFC3339),
			)
			if err != nil {
				return r.mapper.MapError(err)
			}

			return nil
		})
	})
}

// UpdateSeance rewrites an existing seance, re-running the overlap guard
// against all other seances.
func (r *SeanceRepository) UpdateSeance(ctx context.Context, seance persistence.Seance) error {
	if seance.ID == "" {
		return persistence.ErrNotFound
	}
	if seance.StartMinute >= seance.EndMinute {
		return persistence.ErrConstraintViolation
	}

	seance.UpdatedAt = time.Now().UTC()

	return r.retry.WithRetry(ctx, func() error {
		return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			if err := r.checkOverlap(tx, seance); err != nil {
				return err
			}

			query := `
				UPDATE seances
				SET session_id = ?, module_id = ?, trainer_id = ?, room_id = ?, date = ?, start_minute = ?, end_minute = ?, status = ?, updated_at = ?
				WHERE id = ?
			`

			result, err := r.helper.ExecTx(tx, query,
				seance.SessionID,
				nullString(seance.ModuleID),
				seance.TrainerID,
				nullString(seance.RoomID),
				seance.Date,
				seance.StartMinute,
				seance.EndMinute,
				seance.Status,
				seance.UpdatedAt.Format(time.RFC3339),
				seance.ID,
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
		})
	})
}

// checkOverlap looks for a non-cancelled seance sharing the trainer or the
// room on the same date with an intersecting half-open interval. The row
// being written is excluded so updates do not collide with themselves.
func (r *SeanceRepository) checkOverlap(tx *sql.Tx, seance persistence.Seance) error {
	if seance.Status == "cancelled" {
		return nil
	}

	query := `
		SELECT COUNT(*)
		FROM seances
		WHERE date = ?
		  AND id != ?
		  AND status != 'cancelled'
		  AND start_minute < ?
		  AND ? < end_minute
		  AND (trainer_id = ?`
	args := []interface{}{
		seance.Date,
		seance.ID,
		seance.EndMinute,
		seance.StartMinute,
		seance.TrainerID,
	}

	if seance.RoomID != nil && *seance.RoomID != "" {
		query += " OR room_id = ?"
		args = append(args, *seance.RoomID)
	}
	query += ")"

	var count int
	if err := r.helper.QueryRowTx(tx, query, args...).Scan(&count); err != nil {
		return r.mapper.MapError(err)
	}
	if count > 0 {
		return persistence.ErrOverlap
	}

	return nil
}

// GetSeance retrieves a seance by ID.
func (r *SeanceRepository) GetSeance(ctx context.Context, id string) (persistence.Seance, error) {
	if id == "" {
		return persistence.Seance{}, persistence.ErrNotFound
	}

	query := seanceSelect + " WHERE id = ?"

	seance, err := scanSeance(r.helper.QueryRow(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Seance{}, persistence.ErrNotFound
		}
		return persistence.Seance{}, r.mapper.MapError(err)
	}

	return seance, nil
}

// ListSeances lists seances matching the filter, ordered by date, start
// time, then ID.
func (r *SeanceRepository) ListSeances(ctx context.Context, filter persistence.SeanceFilter) ([]persistence.Seance, error) {
	query, args := buildSeanceListQuery(filter)

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var seances []persistence.Seance
	for rows.Next() {
		seance, err := scanSeance(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		seances = append(seances, seance)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return seances, nil
}

// ListForDay returns the day's seances joined with course title and trainer
// name. When trainerID or roomID is non-empty the result is restricted to
// seances binding either resource.
func (r *SeanceRepository) ListForDay(ctx context.Context, date string, trainerID, roomID string) ([]persistence.SeanceWithContext, error) {
	query := `
		SELECT s.id, s.session_id, s.module_id, s.trainer_id, s.room_id, s.date, s.start_minute, s.end_minute, s.status, s.created_at, s.updated_at,
		       c.title, t.first_name, t.last_name
		FROM seances s
		JOIN course_sessions cs ON s.session_id = cs.id
		JOIN courses c ON cs.course_id = c.id
		JOIN trainers t ON s.trainer_id = t.id
		WHERE s.date = ?
	`
	args := []interface{}{date}

	var resourceConditions []string
	if trainerID != "" {
		resourceConditions = append(resourceConditions, "s.trainer_id = ?")
		args = append(args, trainerID)
	}
	if roomID != "" {
		resourceConditions = append(resourceConditions, "s.room_id = ?")
		args = append(args, roomID)
	}
	if len(resourceConditions) > 0 {
		query += " AND (" + strings.Join(resourceConditions, " OR ") + ")"
	}

	query += " ORDER BY s.start_minute ASC, s.id ASC"

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var results []persistence.SeanceWithContext
	for rows.Next() {
		var item persistence.SeanceWithContext
		var moduleID, roomCol sql.NullString
		var createdAtStr, updatedAtStr string
		var firstName, lastName string

		err := rows.Scan(
			&item.ID,
			&item.SessionID,
			&moduleID,
			&item.TrainerID,
			&roomCol,
			&item.Date,
			&item.StartMinute,
			&item.EndMinute,
			&item.Status,
			&createdAtStr,
			&updatedAtStr,
			&item.CourseTitle,
			&firstName,
			&lastName,
		)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}

		if moduleID.Valid {
			item.ModuleID = &moduleID.String
		}
		if roomCol.Valid {
			item.RoomID = &roomCol.String
		}
		item.TrainerName = persistence.Trainer{FirstName: firstName, LastName: lastName}.DisplayName()

		if item.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		if item.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
			return nil, fmt.Errorf("failed to parse updated_at: %w", err)
		}

		results = append(results, item)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return results, nil
}

// SetSeanceStatus transitions a seance to the given status.
func (r *SeanceRepository) SetSeanceStatus(ctx context.Context, id string, status string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.helper.Exec(ctx,
		"UPDATE seances SET status = ?, updated_at = ? WHERE id = ?",
		status,
		time.Now().UTC().Format(time.RFC3339),
		id,
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

// DeleteSeance removes a seance by ID.
func (r *SeanceRepository) DeleteSeance(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.helper.Exec(ctx, "DELETE FROM seances WHERE id = ?", id)
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

const seanceSelect = `
	SELECT id, session_id, module_id, trainer_id, room_id, date, start_minute, end_minute, status, created_at, updated_at
	FROM seances
`

func buildSeanceListQuery(filter persistence.SeanceFilter) (string, []interface{}) {
	query := seanceSelect

	var conditions []string
	var args []interface{}

	if filter.Date != "" {
		conditions = append(conditions, "date = ?")
		args = append(args, filter.Date)
	}
	if filter.TrainerID != "" {
		conditions = append(conditions, "trainer_id = ?")
		args = append(args, filter.TrainerID)
	}
	if filter.RoomID != "" {
		conditions = append(conditions, "room_id = ?")
		args = append(args, filter.RoomID)
	}
	if filter.SessionID != "" {
		conditions = append(conditions, "session_id = ?")
		args = append(args, filter.SessionID)
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			placeholders[i] = "?"
			args = append(args, status)
		}
		conditions = append(conditions, "status IN ("+strings.Join(placeholders, ",")+")")
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY date ASC, start_minute ASC, id ASC"

	return query, args
}

func scanSeance(row rowScanner) (persistence.Seance, error) {
	var seance persistence.Seance
	var moduleID, roomID sql.NullString
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&seance.ID,
		&seance.SessionID,
		&moduleID,
		&seance.TrainerID,
		&roomID,
		&seance.Date,
		&seance.StartMinute,
		&seance.EndMinute,
		&seance.Status,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.Seance{}, err
	}

	if moduleID.Valid {
		seance.ModuleID = &moduleID.String
	}
	if roomID.Valid {
		seance.RoomID = &roomID.String
	}

	if seance.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return persistence.Seance{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if seance.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
		return persistence.Seance{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return seance, nil
}
