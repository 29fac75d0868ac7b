package persistence

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/tidwall/jsonc"
)

// Seed holds the records inserted the first time each table is read.
type Seed struct {
	Users    []UserRecord    `json:"users"`
	Rooms    []RoomRecord    `json:"rooms"`
	Bookings []BookingRecord `json:"bookings"`
}

// DefaultSeed returns the built-in identities, rooms and bookings.
func DefaultSeed() Seed {
	day := time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)
	return Seed{
		Users: []UserRecord{
			{Name: "Адміністратор", Email: "admin@app.com", Password: "123456", Role: "Admin"},
			{Name: "Звичайний Користувач", Email: "user@app.com", Password: "123456", Role: "User"},
		},
		Rooms: []RoomRecord{
			{ID: "r1", Name: "Кімната 1", Description: "Головна переговорна, 12 місць, проектор", Capacity: 12},
			{ID: "r2", Name: "Кімната 2", Description: "Мала кімната, 4 місця, ідеально для one-to-one", Capacity: 4},
			{ID: "r3", Name: "Кімната 3", Description: "Для командних зустрічей, 8 місць, дошка", Capacity: 8},
		},
		Bookings: []BookingRecord{
			{
				ID:           "b1",
				RoomID:       "r2",
				Title:        "Запуск Проекту Альфа",
				Description:  "Фінальна зустріч перед запуском.",
				StartTime:    day.Add(10 * time.Hour),
				EndTime:      day.Add(11 * time.Hour),
				UserName:     "Адміністратор",
				AuthorEmail:  "admin@app.com",
				Participants: []string{"user@app.com", "team@app.com"},
			},
			{
				ID:           "b2",
				RoomID:       "r2",
				Title:        "Щоденний стендап",
				Description:  "Коротке оновлення статусу.",
				StartTime:    day.Add(14 * time.Hour),
				EndTime:      day.Add(14*time.Hour + 15*time.Minute),
				UserName:     "Звичайний Користувач",
				AuthorEmail:  "user@app.com",
				Participants: []string{"admin@app.com"},
			},
		},
	}
}

// ParseSeed decodes a JSONC seed document. Comments and trailing commas are
// allowed. Sections left out of the document fall back to the defaults.
func ParseSeed(data []byte) (Seed, error) {
	var parsed struct {
		Users    *[]UserRecord    `json:"users"`
		Rooms    *[]RoomRecord    `json:"rooms"`
		Bookings *[]BookingRecord `json:"bookings"`
	}
	if err := json.Unmarshal(jsonc.ToJSON(data), &parsed); err != nil {
		return Seed{}, fmt.Errorf("persistence: parse seed: %w", err)
	}

	seed := DefaultSeed()
	if parsed.Users != nil {
		seed.Users = *parsed.Users
	}
	if parsed.Rooms != nil {
		seed.Rooms = *parsed.Rooms
	}
	if parsed.Bookings != nil {
		seed.Bookings = *parsed.Bookings
	}
	return seed, nil
}

// LoadSeedFile reads a JSONC seed document from disk.
func LoadSeedFile(path string) (Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("persistence: read seed file: %w", err)
	}
	return ParseSeed(data)
}
