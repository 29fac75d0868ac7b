package dashboard

import (
	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/scheduler"
)

// UpcomingPerRoom is how many upcoming bookings the overview shows per room.
const UpcomingPerRoom = 3

// RoomOverview pairs a room with its nearest upcoming bookings.
type RoomOverview struct {
	Room     application.Room
	Upcoming []application.Booking
}

// Overview lists every room in the room slice with up to UpcomingPerRoom of
// its upcoming bookings, earliest first.
func (c *Controller) Overview() []RoomOverview {
	rooms := c.Rooms().Items
	bookings := c.Bookings().Items
	now := c.now()

	byRoom := make(map[string][]scheduler.Booking, len(rooms))
	byID := make(map[string]application.Booking, len(bookings))
	for _, booking := range bookings {
		byID[booking.ID] = booking
		byRoom[booking.RoomID] = append(byRoom[booking.RoomID], scheduler.Booking{
			ID:     booking.ID,
			RoomID: booking.RoomID,
			Start:  booking.Start,
			End:    booking.End,
		})
	}

	out := make([]RoomOverview, 0, len(rooms))
	for _, room := range rooms {
		nearest := scheduler.NearestUpcoming(byRoom[room.ID], now, UpcomingPerRoom)
		upcoming := make([]application.Booking, 0, len(nearest))
		for _, interval := range nearest {
			upcoming = append(upcoming, byID[interval.ID])
		}
		out = append(out, RoomOverview{Room: room, Upcoming: upcoming})
	}
	return out
}
