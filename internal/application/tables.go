package application

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/example/room-booking/internal/persistence"
)

// UserTable reads and replaces the persisted user table.
type UserTable interface {
	Users(ctx context.Context) ([]persistence.UserRecord, error)
	SaveUsers(ctx context.Context, users []persistence.UserRecord) error
}

// TokenSlot holds the persisted session token.
type TokenSlot interface {
	Token(ctx context.Context) (string, bool, error)
	SaveToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
}

// RoomTable reads and replaces the persisted room table.
type RoomTable interface {
	Rooms(ctx context.Context) ([]persistence.RoomRecord, error)
	SaveRooms(ctx context.Context, rooms []persistence.RoomRecord) error
}

// BookingTable reads and replaces the persisted booking table.
type BookingTable interface {
	Bookings(ctx context.Context) ([]persistence.BookingRecord, error)
	SaveBookings(ctx context.Context, bookings []persistence.BookingRecord) error
}

func userFromRecord(record persistence.UserRecord) User {
	return User{Name: record.Name, Email: record.Email, Role: ParseRole(record.Role)}
}

func roomFromRecord(record persistence.RoomRecord) Room {
	return Room{
		ID:          record.ID,
		Name:        record.Name,
		Description: record.Description,
		Capacity:    record.Capacity,
	}
}

func roomToRecord(room Room) persistence.RoomRecord {
	return persistence.RoomRecord{
		ID:          room.ID,
		Name:        room.Name,
		Description: room.Description,
		Capacity:    room.Capacity,
	}
}

func bookingFromRecord(record persistence.BookingRecord) Booking {
	return Booking{
		ID:           record.ID,
		RoomID:       record.RoomID,
		Title:        record.Title,
		Description:  record.Description,
		Start:        record.StartTime,
		End:          record.EndTime,
		UserName:     record.UserName,
		AuthorEmail:  record.AuthorEmail,
		Participants: append([]string(nil), record.Participants...),
	}
}

func bookingToRecord(booking Booking) persistence.BookingRecord {
	participants := booking.Participants
	if participants == nil {
		participants = []string{}
	}
	return persistence.BookingRecord{
		ID:           booking.ID,
		RoomID:       booking.RoomID,
		Title:        booking.Title,
		Description:  booking.Description,
		StartTime:    booking.Start,
		EndTime:      booking.End,
		UserName:     booking.UserName,
		AuthorEmail:  booking.AuthorEmail,
		Participants: append([]string{}, participants...),
	}
}

// nextSequentialID returns prefix followed by one more than the largest
// numeric suffix among ids with that prefix.
func nextSequentialID(prefix string, ids []string) string {
	highest := 0
	for _, id := range ids {
		suffix, ok := strings.CutPrefix(id, prefix)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}
		if n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("%s%d", prefix, highest+1)
}
