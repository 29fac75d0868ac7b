package dashboard

import (
	"context"

	"github.com/example/room-booking/internal/application"
)

func (c *Controller) beginRooms() {
	c.setRooms(func(s *RoomsState) {
		s.Status = StatusLoading
		s.Error = ""
	})
}

func (c *Controller) failRooms(err error) {
	c.setRooms(func(s *RoomsState) {
		s.Status = StatusFailed
		s.Error = describe(err, msgRoomNotFound, msgOperationFailed)
	})
}

// LoadRooms replaces the room slice with the stored rooms.
func (c *Controller) LoadRooms(ctx context.Context) *Pending {
	c.beginRooms()
	return c.dispatch(ctx, "rooms.list", func(ctx context.Context) error {
		rooms, err := c.rooms.ListRooms(ctx)
		if err != nil {
			c.failRooms(err)
			return err
		}
		c.setRooms(func(s *RoomsState) {
			s.Items = rooms
			s.Status = StatusSucceeded
		})
		return nil
	})
}

// CreateRoom adds a room as the logged in user.
func (c *Controller) CreateRoom(ctx context.Context, input application.RoomInput) *Pending {
	principal := c.Principal()
	c.beginRooms()
	return c.dispatch(ctx, "rooms.create", func(ctx context.Context) error {
		room, err := c.rooms.CreateRoom(ctx, application.CreateRoomParams{Principal: principal, Input: input})
		if err != nil {
			c.failRooms(err)
			return err
		}
		c.setRooms(func(s *RoomsState) {
			s.Items = append(s.Items, room)
			s.Status = StatusSucceeded
		})
		return nil
	})
}

// UpdateRoom applies patch to the room with the given id.
func (c *Controller) UpdateRoom(ctx context.Context, roomID string, patch application.RoomPatch) *Pending {
	principal := c.Principal()
	c.beginRooms()
	return c.dispatch(ctx, "rooms.update", func(ctx context.Context) error {
		room, err := c.rooms.UpdateRoom(ctx, application.UpdateRoomParams{Principal: principal, RoomID: roomID, Patch: patch})
		if err != nil {
			c.failRooms(err)
			return err
		}
		c.setRooms(func(s *RoomsState) {
			for i := range s.Items {
				if s.Items[i].ID == room.ID {
					s.Items[i] = room
				}
			}
			s.Status = StatusSucceeded
		})
		return nil
	})
}

// DeleteRoom removes the room with the given id. When deletes cascade, the
// room's bookings also leave the booking slice.
func (c *Controller) DeleteRoom(ctx context.Context, roomID string) *Pending {
	principal := c.Principal()
	c.beginRooms()
	return c.dispatch(ctx, "rooms.delete", func(ctx context.Context) error {
		if err := c.rooms.DeleteRoom(ctx, principal, roomID); err != nil {
			c.failRooms(err)
			return err
		}
		c.setRooms(func(s *RoomsState) {
			kept := s.Items[:0:0]
			for _, room := range s.Items {
				if room.ID != roomID {
					kept = append(kept, room)
				}
			}
			s.Items = kept
			s.Status = StatusSucceeded
		})
		if c.rooms.CascadesDeletes() {
			c.setBookings(func(s *BookingsState) {
				kept := s.Items[:0:0]
				for _, booking := range s.Items {
					if booking.RoomID != roomID {
						kept = append(kept, booking)
					}
				}
				s.Items = kept
			})
		}
		return nil
	})
}
