package dashboard

import "github.com/example/room-booking/internal/application"

// Status is the loading state of a slice.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// AuthState is the observable session slice.
type AuthState struct {
	User       application.User
	IsLoggedIn bool
	Status     Status
	Error      string
}

// RoomsState is the observable room slice.
type RoomsState struct {
	Items  []application.Room
	Status Status
	Error  string
}

// BookingsState is the observable booking slice. Warnings holds the overlaps
// reported by the last create or update.
type BookingsState struct {
	Items    []application.Booking
	Warnings []application.ConflictWarning
	Status   Status
	Error    string
}

func (s RoomsState) clone() RoomsState {
	s.Items = append([]application.Room(nil), s.Items...)
	return s
}

func (s BookingsState) clone() BookingsState {
	items := make([]application.Booking, len(s.Items))
	for i, booking := range s.Items {
		booking.Participants = append([]string(nil), booking.Participants...)
		items[i] = booking
	}
	s.Items = items
	s.Warnings = append([]application.ConflictWarning(nil), s.Warnings...)
	return s
}
