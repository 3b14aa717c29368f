package migration

import (
	"errors"
	"fmt"
)

var (
	// ErrMigrationFailed indicates a migration statement could not be
	// executed.
	ErrMigrationFailed = errors.New("migration execution failed")
	// ErrVersionConflict indicates the schema_migrations table references
	// a version this binary does not carry.
	ErrVersionConflict = errors.New("migration version conflict")
)

// MigrationError carries the failing version and operation for diagnostics.
type MigrationError struct {
	Version   string
	Operation string
	Err       error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("migration %s: %s: %v", e.Version, e.Operation, e.Err)
}

func (e *MigrationError) Unwrap() error {
	return e.Err
}

// NewMigrationError wraps err with version and operation context.
func NewMigrationError(version, operation string, err error) *MigrationError {
	return &MigrationError{Version: version, Operation: operation, Err: err}
}
