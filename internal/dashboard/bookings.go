package dashboard

import (
	"context"
	"time"

	"github.com/example/room-booking/internal/application"
)

func (c *Controller) beginBookings() {
	c.setBookings(func(s *BookingsState) {
		s.Status = StatusLoading
		s.Error = ""
		s.Warnings = nil
	})
}

func (c *Controller) failBookings(err error) {
	c.setBookings(func(s *BookingsState) {
		s.Status = StatusFailed
		s.Error = describe(err, msgBookingNotFound, msgOperationFailed)
	})
}

// rejectBookings records a failure found before dispatching.
func (c *Controller) rejectBookings(err error) *Pending {
	c.failBookings(err)
	return resolved(err)
}

// LoadBookings replaces the booking slice with the bookings matching filter.
func (c *Controller) LoadBookings(ctx context.Context, filter application.BookingFilter) *Pending {
	c.beginBookings()
	return c.dispatch(ctx, "bookings.list", func(ctx context.Context) error {
		bookings, err := c.bookings.ListBookings(ctx, filter)
		if err != nil {
			c.failBookings(err)
			return err
		}
		c.setBookings(func(s *BookingsState) {
			s.Items = bookings
			s.Status = StatusSucceeded
		})
		return nil
	})
}

// CreateBooking books a room as the logged in user. An empty or inverted
// time range fails without dispatching.
func (c *Controller) CreateBooking(ctx context.Context, input application.BookingInput) *Pending {
	if !input.End.After(input.Start) {
		return c.rejectBookings(application.ErrInvalidTimeRange)
	}
	principal := c.Principal()
	c.beginBookings()
	return c.dispatch(ctx, "bookings.create", func(ctx context.Context) error {
		booking, warnings, err := c.bookings.CreateBooking(ctx, application.CreateBookingParams{Principal: principal, Input: input})
		if err != nil {
			c.failBookings(err)
			return err
		}
		c.setBookings(func(s *BookingsState) {
			s.Items = append(s.Items, booking)
			s.Warnings = warnings
			s.Status = StatusSucceeded
		})
		return nil
	})
}

// UpdateBooking edits the booking with the given id. The time range is
// checked before dispatching only when the submitted form carries one.
func (c *Controller) UpdateBooking(ctx context.Context, bookingID string, input application.BookingInput) *Pending {
	hasRange := !input.Start.IsZero() || !input.End.IsZero()
	if hasRange && !input.End.After(input.Start) {
		return c.rejectBookings(application.ErrInvalidTimeRange)
	}
	principal := c.Principal()
	c.beginBookings()
	return c.dispatch(ctx, "bookings.update", func(ctx context.Context) error {
		booking, warnings, err := c.bookings.UpdateBooking(ctx, application.UpdateBookingParams{
			Principal: principal,
			BookingID: bookingID,
			Input:     input,
		})
		if err != nil {
			c.failBookings(err)
			return err
		}
		c.setBookings(func(s *BookingsState) {
			for i := range s.Items {
				if s.Items[i].ID == booking.ID {
					s.Items[i] = booking
				}
			}
			s.Warnings = warnings
			s.Status = StatusSucceeded
		})
		return nil
	})
}

// DeleteBooking cancels the booking with the given id.
func (c *Controller) DeleteBooking(ctx context.Context, bookingID string) *Pending {
	principal := c.Principal()
	c.beginBookings()
	return c.dispatch(ctx, "bookings.delete", func(ctx context.Context) error {
		if err := c.bookings.DeleteBooking(ctx, principal, bookingID); err != nil {
			c.failBookings(err)
			return err
		}
		c.setBookings(func(s *BookingsState) {
			kept := s.Items[:0:0]
			for _, booking := range s.Items {
				if booking.ID != bookingID {
					kept = append(kept, booking)
				}
			}
			s.Items = kept
			s.Status = StatusSucceeded
		})
		return nil
	})
}

// IsRoomFree reports whether no booking of the room overlaps [start, end).
// It waits for the answer and leaves the booking slice alone unless the check
// fails.
func (c *Controller) IsRoomFree(ctx context.Context, roomID string, start, end time.Time) (bool, error) {
	if !start.Before(end) {
		c.failBookings(application.ErrInvalidTimeRange)
		return false, application.ErrInvalidTimeRange
	}
	var free bool
	err := c.dispatch(ctx, "bookings.free", func(ctx context.Context) error {
		var err error
		free, err = c.bookings.IsRoomFree(ctx, roomID, start, end)
		if err != nil {
			c.failBookings(err)
		}
		return err
	}).Wait()
	return free, err
}
