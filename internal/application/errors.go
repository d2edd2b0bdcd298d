package application

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrAlreadyExists is returned when a uniqueness rule rejects the request.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrConflict is returned when a booking would double-allocate a room.
	ErrConflict = errors.New("application: room conflict")
	// ErrUnavailable is returned when the storage backend cannot serve the
	// request right now; callers may retry.
	ErrUnavailable = errors.New("application: storage unavailable")
	// ErrInvalidToken is returned when a reset token is unknown, expired or
	// already consumed. The three cases are deliberately indistinguishable.
	ErrInvalidToken = errors.New("application: invalid reset token")
	// ErrInvalidCredentials is returned when a password does not match its hash.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
)

// ConflictError reports which rooms were already claimed over the requested
// interval. It unwraps to ErrConflict so callers can match either way.
type ConflictError struct {
	RoomIDs []int64
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	if e == nil || len(e.RoomIDs) == 0 {
		return "room conflict"
	}
	ids := make([]string, len(e.RoomIDs))
	for i, id := range e.RoomIDs {
		ids[i] = fmt.Sprintf("%d", id)
	}
	sort.Strings(ids)
	return fmt.Sprintf("room conflict: rooms %s already booked", strings.Join(ids, ", "))
}

// Unwrap lets errors.Is(err, ErrConflict) succeed.
func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
