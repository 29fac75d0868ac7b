package scheduler

import "time"

// Booking is the slice of a booking the interval logic needs.
type Booking struct {
	ID     string
	RoomID string
	Start  time.Time
	End    time.Time
}

// ConflictType describes the type of conflict detected between bookings.
type ConflictType string

// ConflictTypeRoom indicates a room is double-booked.
const ConflictTypeRoom ConflictType = "room"

// Conflict details an overlapping booking that callers can present to users.
// Conflicts are informational; the ledger never rejects an overlap.
type Conflict struct {
	WithBookingID string
	Type          ConflictType
	RoomID        string
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) share any instant.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// DetectConflicts returns the existing bookings in the candidate's room whose
// interval overlaps the candidate. The candidate itself is skipped by ID.
func DetectConflicts(existing []Booking, candidate Booking) []Conflict {
	var conflicts []Conflict
	for _, other := range existing {
		if other.ID == candidate.ID || other.RoomID != candidate.RoomID {
			continue
		}
		if !Overlaps(other.Start, other.End, candidate.Start, candidate.End) {
			continue
		}
		conflicts = append(conflicts, Conflict{
			WithBookingID: other.ID,
			Type:          ConflictTypeRoom,
			RoomID:        other.RoomID,
		})
	}
	return conflicts
}

// IsFree reports whether no booking in roomID overlaps [start, end).
func IsFree(existing []Booking, roomID string, start, end time.Time) bool {
	return len(DetectConflicts(existing, Booking{RoomID: roomID, Start: start, End: end})) == 0
}
