package application

import (
	"context"
	"log/slog"
	"strings"

	"github.com/example/office-booking/internal/persistence"
)

// RoomCatalog captures the persistence interactions needed by room
// administration.
type RoomCatalog interface {
	CreateRoom(ctx context.Context, room persistence.Room) (persistence.Room, error)
	GetRoom(ctx context.Context, id int64) (persistence.Room, error)
	ListRooms(ctx context.Context, companyID *int64) ([]persistence.Room, error)
	DeleteRoom(ctx context.Context, id int64) error
}

// RoomService provides the thin admin surface over the room catalog.
type RoomService struct {
	rooms  RoomCatalog
	logger *slog.Logger
}

// NewRoomService wires dependencies for room administration.
func NewRoomService(rooms RoomCatalog, logger *slog.Logger) *RoomService {
	return &RoomService{rooms: rooms, logger: logger}
}

// CreateRoom validates and persists a new room.
func (s *RoomService) CreateRoom(ctx context.Context, input RoomInput) (persistence.Room, error) {
	logger := serviceLogger(ctx, s.logger, "room", "create_room")

	vErr := &ValidationError{}
	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if input.Capacity != nil && *input.Capacity <= 0 {
		vErr.add("capacity", "capacity must be positive")
	}
	if input.CompanyID <= 0 {
		vErr.add("company_id", "company id must be positive")
	}
	if vErr.HasErrors() {
		logger.Warn("room rejected", "error_kind", ErrorKind(vErr))
		return persistence.Room{}, vErr
	}

	room, err := s.rooms.CreateRoom(ctx, persistence.Room{
		Name:      strings.TrimSpace(input.Name),
		Capacity:  input.Capacity,
		Location:  input.Location,
		CompanyID: input.CompanyID,
	})
	if err != nil {
		mapped := mapRepositoryError(err)
		logger.Error("room creation failed", "error", err, "error_kind", ErrorKind(mapped))
		return persistence.Room{}, mapped
	}

	logger.Info("room created", "room_id", room.ID)
	return room, nil
}

// GetRoom loads one room by id.
func (s *RoomService) GetRoom(ctx context.Context, id int64) (persistence.Room, error) {
	if id <= 0 {
		vErr := &ValidationError{}
		vErr.add("room_id", "room id must be positive")
		return persistence.Room{}, vErr
	}
	room, err := s.rooms.GetRoom(ctx, id)
	if err != nil {
		return persistence.Room{}, mapRepositoryError(err)
	}
	return room, nil
}

// ListRooms enumerates rooms, optionally scoped to one company.
func (s *RoomService) ListRooms(ctx context.Context, companyID *int64) ([]persistence.Room, error) {
	rooms, err := s.rooms.ListRooms(ctx, companyID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return rooms, nil
}

// DeleteRoom removes a room; its historical claims cascade away with it.
func (s *RoomService) DeleteRoom(ctx context.Context, id int64) error {
	logger := serviceLogger(ctx, s.logger, "room", "delete_room", "room_id", id)

	if id <= 0 {
		vErr := &ValidationError{}
		vErr.add("room_id", "room id must be positive")
		return vErr
	}
	if err := s.rooms.DeleteRoom(ctx, id); err != nil {
		mapped := mapRepositoryError(err)
		logger.Warn("room deletion failed", "error_kind", ErrorKind(mapped))
		return mapped
	}
	logger.Info("room deleted")
	return nil
}
