package migration

import (
	"errors"
	"fmt"
)

var (
	// ErrMigrationFailed indicates that executing a migration failed.
	ErrMigrationFailed = errors.New("migration execution failed")
	// ErrInvalidMigrationFile indicates a malformed embedded migration file.
	ErrInvalidMigrationFile = errors.New("invalid migration file")
	// ErrDuplicateVersion indicates two embedded files share a version.
	ErrDuplicateVersion = errors.New("duplicate migration version")
)

// Error wraps a migration failure with the version and operation context.
type Error struct {
	Version   string
	Operation string
	Err       error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Version != "" {
		return fmt.Sprintf("migration %s: %s: %v", e.Version, e.Operation, e.Err)
	}
	return fmt.Sprintf("migration: %s: %v", e.Operation, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(version, operation string, err error) *Error {
	return &Error{Version: version, Operation: operation, Err: err}
}
