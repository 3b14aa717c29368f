package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/training-console/internal/persistence"
)

// CourseRepository implements persistence.CourseRepository using SQLite.
type CourseRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewCourseRepository creates a new SQLite course repository.
func NewCourseRepository(pool *ConnectionPool) *CourseRepository {
	return &CourseRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateCourse inserts a new course into the database.
func (r *CourseRepository) CreateCourse(ctx context.Context, course persistence.Course) error {
	if course.ID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	course.CreatedAt = now
	course.UpdatedAt = now

	query := `
		INSERT INTO courses (id, title, reference, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.helper.Exec(ctx, query,
		course.ID,
		course.Title,
		nullString(course.Reference),
		course.CreatedAt.Format(time.RFC3339),
		course.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	return nil
}

// GetCourse retrieves a course by ID.
func (r *CourseRepository) GetCourse(ctx context.Context, id string) (persistence.Course, error) {
	if id == "" {
		return persistence.Course{}, persistence.ErrNotFound
	}

	query := `
		SELECT id, title, reference, created_at, updated_at
		FROM courses
		WHERE id = ?
	`

	course, err := scanCourse(r.helper.QueryRow(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Course{}, persistence.ErrNotFound
		}
		return persistence.Course{}, r.mapper.MapError(err)
	}

	return course, nil
}

// ListCourses lists all courses ordered by title.
func (r *CourseRepository) ListCourses(ctx context.Context) ([]persistence.Course, error) {
	query := `
		SELECT id, title, reference, created_at, updated_at
		FROM courses
		ORDER BY title ASC, id ASC
	`

	rows, err := r.helper.Query(ctx, query)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var courses []persistence.Course
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		courses = append(courses, course)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return courses, nil
}

func scanCourse(row rowScanner) (persistence.Course, error) {
	var course persistence.Course
	var reference sql.NullString
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&course.ID,
		&course.Title,
		&reference,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.Course{}, err
	}

	if reference.Valid {
		course.Reference = &reference.String
	}

	if course.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return persistence.Course{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if course.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
		return persistence.Course{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return course, nil
}

// SessionRepository implements persistence.SessionRepository using SQLite.
type SessionRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewSessionRepository creates a new SQLite session repository.
func NewSessionRepository(pool *ConnectionPool) *SessionRepository {
	return &SessionRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateSession inserts a new course session into the database.
func (r *SessionRepository) CreateSession(ctx context.Context, session persistence.Session) error {
	if session.ID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now

	query := `
		INSERT INTO course_sessions (id, course_id, label, start_date, end_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.helper.Exec(ctx, query,
		session.ID,
		session.CourseID,
		session.Label,
		session.StartDate,
		session.EndDate,
		session.CreatedAt.Format(time.RFC3339),
		session.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	return nil
}

// GetSession retrieves a course session by ID.
func (r *SessionRepository) GetSession(ctx context.Context, id string) (persistence.Session, error) {
	if id == "" {
		return persistence.Session{}, persistence.ErrNotFound
	}

	query := `
		SELECT id, course_id, label, start_date, end_date, created_at, updated_at
		FROM course_sessions
		WHERE id = ?
	`

	session, err := scanSession(r.helper.QueryRow(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Session{}, persistence.ErrNotFound
		}
		return persistence.Session{}, r.mapper.MapError(err)
	}

	return session, nil
}

// ListSessionsForCourse lists sessions of a course ordered by start date.
func (r *SessionRepository) ListSessionsForCourse(ctx context.Context, courseID string) ([]persistence.Session, error) {
	query := `
		SELECT id, course_id, label, start_date, end_date, created_at, updated_at
		FROM course_sessions
		WHERE course_id = ?
		ORDER BY start_date ASC, id ASC
	`

	rows, err := r.helper.Query(ctx, query, courseID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var sessions []persistence.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return sessions, nil
}

func scanSession(row rowScanner) (persistence.Session, error) {
	var session persistence.Session
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&session.ID,
		&session.CourseID,
		&session.Label,
		&session.StartDate,
		&session.EndDate,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.Session{}, err
	}

	if session.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return persistence.Session{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if session.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
		return persistence.Session{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return session, nil
}
