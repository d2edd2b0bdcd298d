package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/example/office-booking/internal/persistence"
)

// RoomProbe answers whether a room is free of overlapping claims.
type RoomProbe interface {
	RoomAvailable(ctx context.Context, roomID int64, start, end time.Time) (bool, error)
}

// RoomLister enumerates the room catalog.
type RoomLister interface {
	ListRooms(ctx context.Context, companyID *int64) ([]persistence.Room, error)
}

// AvailabilityService answers availability probes against committed bookings.
// Answers are advisory: only CreateEvent's locked check-and-insert is
// authoritative, so a true here can be stale by the time a booking follows.
type AvailabilityService struct {
	events RoomProbe
	rooms  RoomLister
	cache  *availabilityCache
	logger *slog.Logger
}

// NewAvailabilityService wires dependencies for availability probes.
func NewAvailabilityService(events RoomProbe, rooms RoomLister, logger *slog.Logger, now func() time.Time) *AvailabilityService {
	return &AvailabilityService{
		events: events,
		rooms:  rooms,
		cache:  newAvailabilityCache(0, 0, now),
		logger: logger,
	}
}

// IsAvailable reports whether the room has no committed claim overlapping
// [start, end). Bad arguments are validation errors, never availability
// answers.
func (s *AvailabilityService) IsAvailable(ctx context.Context, roomID int64, start, end time.Time) (bool, error) {
	logger := serviceLogger(ctx, s.logger, "availability", "is_available", "room_id", roomID)

	if err := validateProbe(roomID, start, end); err != nil {
		logger.Warn("availability probe rejected", "error_kind", ErrorKind(err))
		return false, err
	}

	key := availabilityCacheKey(roomID, start, end)
	if available, ok := s.cache.Get(key); ok {
		return available, nil
	}

	available, err := s.events.RoomAvailable(ctx, roomID, start, end)
	if err != nil {
		mapped := mapRepositoryError(err)
		logger.Error("availability probe failed", "error", err, "error_kind", ErrorKind(mapped))
		return false, mapped
	}

	s.cache.Store(key, available)
	logger.Debug("availability probe answered", "available", available)
	return available, nil
}

// AvailableRooms returns the rooms with no committed claim overlapping
// [start, end), optionally scoped to one company.
func (s *AvailabilityService) AvailableRooms(ctx context.Context, start, end time.Time, companyID *int64) ([]persistence.Room, error) {
	logger := serviceLogger(ctx, s.logger, "availability", "available_rooms")

	vErr := &ValidationError{}
	validateInterval(start, end, vErr)
	if vErr.HasErrors() {
		logger.Warn("room search rejected", "error_kind", ErrorKind(vErr))
		return nil, vErr
	}

	rooms, err := s.rooms.ListRooms(ctx, companyID)
	if err != nil {
		mapped := mapRepositoryError(err)
		logger.Error("room listing failed", "error", err, "error_kind", ErrorKind(mapped))
		return nil, mapped
	}

	available := make([]persistence.Room, 0, len(rooms))
	for _, room := range rooms {
		free, err := s.IsAvailable(ctx, room.ID, start, end)
		if err != nil {
			return nil, err
		}
		if free {
			available = append(available, room)
		}
	}
	return available, nil
}

// Invalidate drops every cached availability answer. Called after any
// mutation of committed bookings.
func (s *AvailabilityService) Invalidate() {
	if s == nil {
		return
	}
	s.cache.Invalidate()
}

func validateProbe(roomID int64, start, end time.Time) error {
	vErr := &ValidationError{}
	if roomID <= 0 {
		vErr.add("room_id", "room id must be positive")
	}
	validateInterval(start, end, vErr)
	if vErr.HasErrors() {
		return vErr
	}
	return nil
}

func validateInterval(start, end time.Time, vErr *ValidationError) {
	if start.IsZero() {
		vErr.add("start_time", "start time is required")
	}
	if end.IsZero() {
		vErr.add("end_time", "end time is required")
	}
	if !start.IsZero() && !end.IsZero() && !start.Before(end) {
		vErr.add("time", "start time must be before end time")
	}
}
