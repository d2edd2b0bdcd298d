package persistence

import "time"

// Company represents an organization that owns rooms.
type Company struct {
	ID      int64
	Name    string
	Address *string
}

// User represents an employee account in the booking domain.
type User struct {
	ID           int64
	Email        string
	FirstName    string
	LastName     string
	Role         string
	CompanyID    *int64
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Room represents a bookable meeting room owned by a company.
type Room struct {
	ID        int64
	Name      string
	Capacity  *int
	Location  *string
	CompanyID int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Event represents a booking stored in persistence. RoomIDs and AttendeeIDs
// are materialized from the event_rooms and attendees join tables; both are
// replaced as a whole, never patched.
type Event struct {
	ID          int64
	Name        string
	Description *string
	Start       time.Time
	End         time.Time
	OrganizerID *int64
	RoomIDs     []int64
	AttendeeIDs []int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
