package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/example/office-booking/internal/persistence"
)

// EventStore captures the persistence interactions needed by the booking
// orchestrator.
type EventStore interface {
	CreateEvent(ctx context.Context, event persistence.Event) (persistence.Event, error)
	GetEvent(ctx context.Context, id int64) (persistence.Event, error)
	DeleteEvent(ctx context.Context, id int64) error
}

// RoomDirectory exposes room existence checks.
type RoomDirectory interface {
	MissingRoomIDs(ctx context.Context, ids []int64) ([]int64, error)
}

// UserDirectory exposes user existence checks.
type UserDirectory interface {
	MissingUserIDs(ctx context.Context, ids []int64) ([]int64, error)
}

// CacheInvalidator drops stale availability answers after bookings change.
type CacheInvalidator interface {
	Invalidate()
}

// BookingService orchestrates validation, room locking and persistence for
// event bookings. The safety invariant: no two committed events may claim the
// same room over overlapping intervals. It holds through two layers: per-room
// locks serialize bookings in-process, and the repository re-runs the overlap
// check inside the insert transaction.
type BookingService struct {
	events       EventStore
	rooms        RoomDirectory
	users        UserDirectory
	locks        *roomLockTable
	availability CacheInvalidator
	now          func() time.Time
	logger       *slog.Logger
}

// NewBookingService wires dependencies for booking operations. availability
// may be nil when no cache needs invalidating.
func NewBookingService(events EventStore, rooms RoomDirectory, users UserDirectory, availability CacheInvalidator, logger *slog.Logger, now func() time.Time) *BookingService {
	if now == nil {
		now = time.Now
	}
	return &BookingService{
		events:       events,
		rooms:        rooms,
		users:        users,
		locks:        newRoomLockTable(),
		availability: availability,
		now:          now,
		logger:       logger,
	}
}

// CreateEvent validates the request, verifies referenced records exist, then
// performs the locked check-and-insert. On conflict the returned error
// unwraps to ErrConflict and names the contended rooms.
func (s *BookingService) CreateEvent(ctx context.Context, input CreateEventInput) (persistence.Event, error) {
	if s == nil {
		return persistence.Event{}, fmt.Errorf("BookingService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "booking", "create_event")

	vErr := &ValidationError{}
	validateEventCore(input, vErr)
	if vErr.HasErrors() {
		logger.Warn("booking rejected", "error_kind", ErrorKind(vErr))
		return persistence.Event{}, vErr
	}

	roomIDs := uniqueIDs(input.RoomIDs)
	attendeeIDs := uniqueIDs(input.AttendeeIDs)

	if err := s.ensureRoomsExist(ctx, roomIDs); err != nil {
		logger.Warn("booking rejected", "error_kind", ErrorKind(err))
		return persistence.Event{}, err
	}
	participants := attendeeIDs
	if input.OrganizerID != nil {
		participants = append(slices.Clone(attendeeIDs), *input.OrganizerID)
	}
	if err := s.ensureUsersExist(ctx, participants); err != nil {
		logger.Warn("booking rejected", "error_kind", ErrorKind(err))
		return persistence.Event{}, err
	}

	event := persistence.Event{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Start:       input.Start,
		End:         input.End,
		OrganizerID: input.OrganizerID,
		RoomIDs:     roomIDs,
		AttendeeIDs: attendeeIDs,
	}

	release := s.locks.Acquire(roomIDs)
	defer release()

	persisted, err := s.events.CreateEvent(ctx, event)
	if err != nil {
		mapped := mapRepositoryError(err)
		logger.Warn("booking failed", "error", err, "error_kind", ErrorKind(mapped))
		return persistence.Event{}, mapped
	}

	if s.availability != nil {
		s.availability.Invalidate()
	}

	logger.Info("event booked", "event_id", persisted.ID, "rooms", len(roomIDs))
	return persisted, nil
}

// GetEvent loads one booking by id.
func (s *BookingService) GetEvent(ctx context.Context, id int64) (persistence.Event, error) {
	if id <= 0 {
		vErr := &ValidationError{}
		vErr.add("event_id", "event id must be positive")
		return persistence.Event{}, vErr
	}
	event, err := s.events.GetEvent(ctx, id)
	if err != nil {
		return persistence.Event{}, mapRepositoryError(err)
	}
	return event, nil
}

// DeleteEvent removes a booking and releases its room claims.
func (s *BookingService) DeleteEvent(ctx context.Context, id int64) error {
	logger := serviceLogger(ctx, s.logger, "booking", "delete_event", "event_id", id)

	if id <= 0 {
		vErr := &ValidationError{}
		vErr.add("event_id", "event id must be positive")
		return vErr
	}

	if err := s.events.DeleteEvent(ctx, id); err != nil {
		mapped := mapRepositoryError(err)
		logger.Warn("deletion failed", "error_kind", ErrorKind(mapped))
		return mapped
	}

	if s.availability != nil {
		s.availability.Invalidate()
	}

	logger.Info("event deleted")
	return nil
}

func (s *BookingService) ensureRoomsExist(ctx context.Context, ids []int64) error {
	if s.rooms == nil {
		return nil
	}
	missing, err := s.rooms.MissingRoomIDs(ctx, ids)
	if err != nil {
		return mapRepositoryError(err)
	}
	if len(missing) == 0 {
		return nil
	}
	vErr := &ValidationError{}
	vErr.add("room_ids", fmt.Sprintf("unknown room ids: %s", joinIDs(missing)))
	return vErr
}

func (s *BookingService) ensureUsersExist(ctx context.Context, ids []int64) error {
	if s.users == nil || len(ids) == 0 {
		return nil
	}
	missing, err := s.users.MissingUserIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return mapRepositoryError(err)
	}
	if len(missing) == 0 {
		return nil
	}
	vErr := &ValidationError{}
	vErr.add("attendee_ids", fmt.Sprintf("unknown user ids: %s", joinIDs(missing)))
	return vErr
}

func validateEventCore(input CreateEventInput, vErr *ValidationError) {
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}

	validateInterval(input.Start, input.End, vErr)

	if len(input.RoomIDs) == 0 {
		vErr.add("room_ids", "at least one room is required")
	}
	for _, id := range input.RoomIDs {
		if id <= 0 {
			vErr.add("room_ids", "room ids must be positive")
			break
		}
	}
	for _, id := range input.AttendeeIDs {
		if id <= 0 {
			vErr.add("attendee_ids", "attendee ids must be positive")
			break
		}
	}
	if input.OrganizerID != nil && *input.OrganizerID <= 0 {
		vErr.add("organizer_id", "organizer id must be positive")
	}
}

func uniqueIDs(ids []int64) []int64 {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, ", ")
}

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	var conflict *persistence.RoomConflictError
	if errors.As(err, &conflict) {
		return &ConflictError{RoomIDs: slices.Clone(conflict.RoomIDs)}
	}

	switch {
	case errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrDuplicate):
		return ErrAlreadyExists
	case errors.Is(err, persistence.ErrUnavailable):
		return ErrUnavailable
	case errors.Is(err, persistence.ErrConstraintViolation):
		vErr := &ValidationError{}
		vErr.add("time", "start time must be before end time")
		return vErr
	case errors.Is(err, persistence.ErrForeignKeyViolation):
		vErr := &ValidationError{}
		vErr.add("references", "related records are missing")
		return vErr
	}
	return err
}
