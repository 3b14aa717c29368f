package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/training-console/internal/persistence"
)

// AvailabilityRuleRepository implements persistence.AvailabilityRuleRepository
// using SQLite.
type AvailabilityRuleRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
	retry  *RetryHelper
}

// NewAvailabilityRuleRepository creates a new SQLite availability rule
// repository.
func NewAvailabilityRuleRepository(pool *ConnectionPool) *AvailabilityRuleRepository {
	return &AvailabilityRuleRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
		retry:  NewRetryHelper(DefaultRetryConfig()),
	}
}

// CreateRule inserts a new availability rule into the database.
func (r *AvailabilityRuleRepository) CreateRule(ctx context.Context, rule persistence.AvailabilityRule) error {
	if rule.ID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	rule.CreatedAt = now
	rule.UpdatedAt = now

	query := `
		INSERT INTO availability_rules
			(id, resource_kind, resource_id, weekday, start_minute, end_minute, recurrence, date, anchor_date, active, note, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	// WithRetry maps any final error to the persistence sentinels.
	return r.retry.WithRetry(ctx, func() error {
		_, err := r.helper.Exec(ctx, query,
			rule.ID,
			rule.ResourceKind,
			rule.ResourceID,
			rule.Weekday,
			rule.StartMinute,
			rule.EndMinute,
			rule.Recurrence,
			nullString(rule.Date),
			rule.AnchorDate,
			boolToInt(rule.Active),
			nullString(rule.Note),
			rule.CreatedAt.Format(time.RFC3339),
			rule.UpdatedAt.Format(time.RFC3339),
		)
		return err
	})
}

// GetRule retrieves an availability rule by ID.
func (r *AvailabilityRuleRepository) GetRule(ctx context.Context, id string) (persistence.AvailabilityRule, error) {
	if id == "" {
		return persistence.AvailabilityRule{}, persistence.ErrNotFound
	}

	query := ruleSelect + " WHERE id = ?"

	rule, err := scanRule(r.helper.QueryRow(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.AvailabilityRule{}, persistence.ErrNotFound
		}
		return persistence.AvailabilityRule{}, r.mapper.MapError(err)
	}

	return rule, nil
}

// ListRules lists availability rules matching the filter.
func (r *AvailabilityRuleRepository) ListRules(ctx context.Context, filter persistence.AvailabilityRuleFilter) ([]persistence.AvailabilityRule, error) {
	query, args := buildRuleListQuery(filter)

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var rules []persistence.AvailabilityRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return rules, nil
}

// SetRuleActive enables or disables a rule without deleting it.
func (r *AvailabilityRuleRepository) SetRuleActive(ctx context.Context, id string, active bool) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.helper.Exec(ctx,
		"UPDATE availability_rules SET active = ?, updated_at = ? WHERE id = ?",
		boolToInt(active),
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

// DeleteRule removes a rule by ID.
func (r *AvailabilityRuleRepository) DeleteRule(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.helper.Exec(ctx, "DELETE FROM availability_rules WHERE id = ?", id)
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

const ruleSelect = `
	SELECT id, resource_kind, resource_id, weekday, start_minute, end_minute, recurrence, date, anchor_date, active, note, created_at, updated_at
	FROM availability_rules
`

func buildRuleListQuery(filter persistence.AvailabilityRuleFilter) (string, []interface{}) {
	query := ruleSelect

	var conditions []string
	var args []interface{}

	if filter.ResourceKind != "" {
		conditions = append(conditions, "resource_kind = ?")
		args = append(args, filter.ResourceKind)
	}
	if filter.ResourceID != "" {
		conditions = append(conditions, "resource_id = ?")
		args = append(args, filter.ResourceID)
	}
	if filter.ActiveOnly {
		conditions = append(conditions, "active = 1")
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY resource_kind ASC, resource_id ASC, weekday ASC, start_minute ASC, id ASC"

	return query, args
}

func scanRule(row rowScanner) (persistence.AvailabilityRule, error) {
	var rule persistence.AvailabilityRule
	var date, note sql.NullString
	var active int
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&rule.ID,
		&rule.ResourceKind,
		&rule.ResourceID,
		&rule.Weekday,
		&rule.StartMinute,
		&rule.EndMinute,
		&rule.Recurrence,
		&date,
		&rule.AnchorDate,
		&active,
		&note,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.AvailabilityRule{}, err
	}

	if date.Valid {
		rule.Date = &date.String
	}
	if note.Valid {
		rule.Note = &note.String
	}
	rule.Active = active != 0

	if rule.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return persistence.AvailabilityRule{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if rule.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
		return persistence.AvailabilityRule{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return rule, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
