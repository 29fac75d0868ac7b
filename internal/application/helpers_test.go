package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/persistence/memory"
)

var cheapArgon2idParams = Argon2idParams{
	Memory:      8,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  8,
	KeyLength:   16,
}

var (
	testAdmin = Principal{Name: "Адміністратор", Email: "admin@app.com", Role: RoleAdmin}
	testUser  = Principal{Name: "Звичайний Користувач", Email: "user@app.com", Role: RoleUser}
	testGuest = Principal{Name: "Guest", Email: "guest@app.com", Role: RoleUser}
)

var testNow = time.Date(2025, time.September, 30, 9, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestTables(t *testing.T) (*persistence.Tables, *memory.Store) {
	t.Helper()
	store := memory.New()
	return persistence.NewTables(store, nil, persistence.DefaultSeed(), PasswordHasher(cheapArgon2idParams)), store
}

type testServices struct {
	tables   *persistence.Tables
	sessions *SessionService
	rooms    *RoomService
	bookings *BookingService
}

func newTestServices(t *testing.T) testServices {
	t.Helper()
	tables, _ := newTestTables(t)
	logger := discardLogger()
	rooms := NewRoomServiceWithLogger(tables, nil, logger)
	return testServices{
		tables:   tables,
		sessions: NewSessionServiceWithLogger(tables, tables, cheapArgon2idParams, logger),
		rooms:    rooms,
		bookings: NewBookingServiceWithLogger(tables, rooms, nil, func() time.Time { return testNow }, logger),
	}
}

var errStoreDown = errors.New("store down")

// failingTables fails every read and write.
type failingTables struct{}

func (failingTables) Users(context.Context) ([]persistence.UserRecord, error) {
	return nil, errStoreDown
}

func (failingTables) SaveUsers(context.Context, []persistence.UserRecord) error {
	return errStoreDown
}

func (failingTables) Rooms(context.Context) ([]persistence.RoomRecord, error) {
	return nil, errStoreDown
}

func (failingTables) SaveRooms(context.Context, []persistence.RoomRecord) error {
	return errStoreDown
}

func (failingTables) Bookings(context.Context) ([]persistence.BookingRecord, error) {
	return nil, errStoreDown
}

func (failingTables) SaveBookings(context.Context, []persistence.BookingRecord) error {
	return errStoreDown
}

func (failingTables) Token(context.Context) (string, bool, error) {
	return "", false, errStoreDown
}

func (failingTables) SaveToken(context.Context, string) error {
	return errStoreDown
}

func (failingTables) ClearToken(context.Context) error {
	return errStoreDown
}

// countingUsers records how often the user table is read.
type countingUsers struct {
	UserTable
	reads int
}

func (c *countingUsers) Users(ctx context.Context) ([]persistence.UserRecord, error) {
	c.reads++
	return c.UserTable.Users(ctx)
}

func at(hour, minute int) time.Time {
	return time.Date(2025, time.October, 2, hour, minute, 0, 0, time.UTC)
}
