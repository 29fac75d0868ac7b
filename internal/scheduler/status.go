package scheduler

import (
	"sort"
	"time"
)

// Status is the derived display state of a booking.
type Status string

const (
	StatusUpcoming Status = "upcoming"
	StatusPast     Status = "past"
)

// StatusAt classifies b relative to now. A booking stays upcoming until its
// end time has passed.
func StatusAt(b Booking, now time.Time) Status {
	if b.End.After(now) {
		return StatusUpcoming
	}
	return StatusPast
}

// StartsBefore is the ordering used by SortByStart: start time, then ID.
func StartsBefore(a, b Booking) bool {
	if a.Start.Equal(b.Start) {
		return a.ID < b.ID
	}
	return a.Start.Before(b.Start)
}

// SortByStart orders bookings by start time, breaking ties by ID.
func SortByStart(bookings []Booking) {
	sort.SliceStable(bookings, func(i, j int) bool {
		return StartsBefore(bookings[i], bookings[j])
	})
}

// NearestUpcoming returns at most limit upcoming bookings ordered by start.
// A non-positive limit returns every upcoming booking.
func NearestUpcoming(bookings []Booking, now time.Time, limit int) []Booking {
	upcoming := make([]Booking, 0, len(bookings))
	for _, b := range bookings {
		if StatusAt(b, now) == StatusUpcoming {
			upcoming = append(upcoming, b)
		}
	}
	SortByStart(upcoming)
	if limit > 0 && len(upcoming) > limit {
		upcoming = upcoming[:limit]
	}
	return upcoming
}
