package application

import "time"

// CreateEventInput captures caller provided booking fields.
type CreateEventInput struct {
	Name        string
	Description *string
	Start       time.Time
	End         time.Time
	OrganizerID *int64
	RoomIDs     []int64
	AttendeeIDs []int64
}

// RoomInput captures caller provided room fields.
type RoomInput struct {
	Name      string
	Capacity  *int
	Location  *string
	CompanyID int64
}

// UserInput captures caller provided user attributes.
type UserInput struct {
	Email     string
	FirstName string
	LastName  string
	Role      string
	CompanyID *int64
	Password  string
}
