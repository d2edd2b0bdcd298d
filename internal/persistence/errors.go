package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("persistence: duplicate")
	// ErrConstraintViolation is returned when a check constraint rejects a write.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
	// ErrForeignKeyViolation is returned when a referenced record is missing.
	ErrForeignKeyViolation = errors.New("persistence: foreign key violation")
	// ErrUnavailable is returned when the store is unreachable or a
	// transaction could not be completed; safe to retry with backoff.
	ErrUnavailable = errors.New("persistence: storage unavailable")
)

// RoomConflictError reports that an event insert was rejected because one or
// more requested rooms are already claimed over an overlapping interval.
type RoomConflictError struct {
	RoomIDs []int64
}

// Error implements the error interface.
func (e *RoomConflictError) Error() string {
	return "persistence: room already booked for the requested interval"
}
