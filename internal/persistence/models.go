package persistence

import "time"

// UserRecord is a row of the user table. Password holds the argon2id hash once
// stored; seed records carry the plaintext until the table hashes them.
type UserRecord struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// RoomRecord is a row of the room table.
type RoomRecord struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Capacity    int    `json:"capacity"`
}

// BookingRecord is a row of the booking table.
type BookingRecord struct {
	ID           string    `json:"id"`
	RoomID       string    `json:"roomId"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	StartTime    time.Time `json:"startTime"`
	EndTime      time.Time `json:"endTime"`
	UserName     string    `json:"userName"`
	AuthorEmail  string    `json:"authorEmail,omitempty"`
	Participants []string  `json:"participants"`
}

func cloneBooking(record BookingRecord) BookingRecord {
	if record.Participants != nil {
		participants := make([]string, len(record.Participants))
		copy(participants, record.Participants)
		record.Participants = participants
	}
	return record
}
