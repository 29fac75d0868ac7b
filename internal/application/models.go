package application

import (
	"strings"
	"time"
)

// Role is the authorization level of a user.
type Role string

const (
	RoleAdmin Role = "Admin"
	RoleUser  Role = "User"
)

// ParseRole maps stored or submitted role names onto a Role. Anything other
// than Admin is an ordinary user.
func ParseRole(value string) Role {
	if strings.EqualFold(strings.TrimSpace(value), string(RoleAdmin)) {
		return RoleAdmin
	}
	return RoleUser
}

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	Name  string
	Email string
	Role  Role
}

// IsAdmin reports whether the principal holds the Admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Authenticated reports whether the principal identifies a user at all.
func (p Principal) Authenticated() bool {
	return strings.TrimSpace(p.Email) != ""
}

// User is an account without its password hash.
type User struct {
	Name  string
	Email string
	Role  Role
}

// Principal returns the acting identity for u.
func (u User) Principal() Principal {
	return Principal{Name: u.Name, Email: u.Email, Role: u.Role}
}

// Session is the authenticated identity bound to the current client.
type Session struct {
	Token      string
	User       User
	IsLoggedIn bool
}

// RegisterParams captures the registration form.
type RegisterParams struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	Role            Role
}

// Room is a bookable space.
type Room struct {
	ID          string
	Name        string
	Description string
	Capacity    int
}

// RoomInput captures caller provided room fields. Capacity is the raw form
// value and is coerced leniently.
type RoomInput struct {
	Name        string
	Description string
	Capacity    string
}

// RoomPatch carries the fields to change on a room; nil fields are kept.
type RoomPatch struct {
	Name        *string
	Description *string
	Capacity    *string
}

// CreateRoomParams wraps the data required to create a room.
type CreateRoomParams struct {
	Principal Principal
	Input     RoomInput
}

// UpdateRoomParams wraps the data required to update a room.
type UpdateRoomParams struct {
	Principal Principal
	RoomID    string
	Patch     RoomPatch
}

// Booking is a reserved interval on a room.
type Booking struct {
	ID           string
	RoomID       string
	Title        string
	Description  string
	Start        time.Time
	End          time.Time
	UserName     string
	AuthorEmail  string
	Participants []string
}

// BookingInput captures caller provided booking fields. Participants is the
// free-text, comma separated list of emails.
type BookingInput struct {
	RoomID       string
	Title        string
	Description  string
	Start        time.Time
	End          time.Time
	Participants string
}

// CreateBookingParams wraps the data required to create a booking.
type CreateBookingParams struct {
	Principal Principal
	Input     BookingInput
}

// UpdateBookingParams wraps the data required to update a booking.
type UpdateBookingParams struct {
	Principal Principal
	BookingID string
	Input     BookingInput
}

// BookingFilter narrows ListBookings.
type BookingFilter struct {
	RoomID      string
	OnlyFuture  bool
	SortByStart bool
}

// ConflictWarning reports an overlapping booking in the same room. Overlaps
// are allowed; warnings only inform the caller.
type ConflictWarning struct {
	BookingID string
	RoomID    string
}

// DeletePolicy decides who may cancel a booking.
type DeletePolicy string

const (
	// DeleteAdminOnly lets only administrators cancel bookings, authors included.
	DeleteAdminOnly DeletePolicy = "admin-only"
	// DeleteAdminOrAuthor additionally lets the author cancel their own booking.
	DeleteAdminOrAuthor DeletePolicy = "admin-or-author"
)

// ParseDeletePolicy validates a configured policy name.
func ParseDeletePolicy(value string) (DeletePolicy, bool) {
	switch DeletePolicy(strings.ToLower(strings.TrimSpace(value))) {
	case "", DeleteAdminOnly:
		return DeleteAdminOnly, true
	case DeleteAdminOrAuthor:
		return DeleteAdminOrAuthor, true
	default:
		return DeleteAdminOnly, false
	}
}
