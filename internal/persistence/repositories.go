package persistence

import (
	"context"
	"time"
)

// EventFilter narrows event queries. The time bounds express the half-open
// interval overlap predicate: an event matches when its interval intersects
// [IntersectsStart, IntersectsEnd).
type EventFilter struct {
	// ParticipantID restricts results to events the user organizes or
	// attends. Zero means no participant restriction.
	ParticipantID int64
	// IntersectsStart, when set, excludes events ending at or before it.
	IntersectsStart *time.Time
	// IntersectsEnd, when set, excludes events starting at or after it.
	IntersectsEnd *time.Time
	// StartsAtOrAfter, when set, excludes events starting before it.
	StartsAtOrAfter *time.Time
}

// EventRepository stores events together with their room claims and
// attendee rows. CreateEvent must perform the room-overlap check and the
// insert as one atomic unit and return a *RoomConflictError when any
// requested room is already claimed over an overlapping interval.
type EventRepository interface {
	CreateEvent(ctx context.Context, event Event) (Event, error)
	GetEvent(ctx context.Context, id int64) (Event, error)
	ListEvents(ctx context.Context, filter EventFilter) ([]Event, error)
	DeleteEvent(ctx context.Context, id int64) error
	// RoomAvailable reports whether no stored event claims the room over an
	// interval overlapping [start, end).
	RoomAvailable(ctx context.Context, roomID int64, start, end time.Time) (bool, error)
}

// RoomRepository exposes CRUD operations for rooms.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) (Room, error)
	GetRoom(ctx context.Context, id int64) (Room, error)
	ListRooms(ctx context.Context, companyID *int64) ([]Room, error)
	DeleteRoom(ctx context.Context, id int64) error
	// MissingRoomIDs returns the subset of ids with no room record.
	MissingRoomIDs(ctx context.Context, ids []int64) ([]int64, error)
}

// UserRepository exposes CRUD operations for users.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) (User, error)
	GetUser(ctx context.Context, id int64) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	UpdatePasswordHash(ctx context.Context, userID int64, passwordHash string, updatedAt time.Time) error
	DeleteUser(ctx context.Context, id int64) error
	// MissingUserIDs returns the subset of ids with no user record.
	MissingUserIDs(ctx context.Context, ids []int64) ([]int64, error)
}

// CompanyRepository stores the company records that own rooms.
type CompanyRepository interface {
	CreateCompany(ctx context.Context, company Company) (Company, error)
	GetCompany(ctx context.Context, id int64) (Company, error)
}
