package testfixtures

import (
	"io"
	"log/slog"
	"testing"

	"github.com/example/room-booking/internal/application"
	"github.com/example/room-booking/internal/dashboard"
	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/persistence/memory"
)

// FastArgon2idParams keeps password hashing cheap in tests.
var FastArgon2idParams = application.Argon2idParams{
	Memory:      8,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  8,
	KeyLength:   16,
}

// Services wires the application services over a single store with
// deterministic time and no simulated latency.
type Services struct {
	Store    persistence.Store
	Tables   *persistence.Tables
	Sessions *application.SessionService
	Rooms    *application.RoomService
	Bookings *application.BookingService
	Clock    *Clock
	Logger   *slog.Logger
}

type serviceOptions struct {
	store   persistence.Store
	clock   *Clock
	ids     *IDGenerator
	seed    *persistence.Seed
	policy  application.DeletePolicy
	cascade bool
	logger  *slog.Logger
}

// ServicesOption configures NewServices.
type ServicesOption func(*serviceOptions)

// WithStore replaces the default in-memory store.
func WithStore(store persistence.Store) ServicesOption {
	return func(o *serviceOptions) { o.store = store }
}

// WithClock overrides the clock shared by the services.
func WithClock(clock *Clock) ServicesOption {
	return func(o *serviceOptions) { o.clock = clock }
}

// WithIDGenerator makes rooms and bookings take ids from generator instead of
// the r<N>/b<N> sequence.
func WithIDGenerator(generator *IDGenerator) ServicesOption {
	return func(o *serviceOptions) { o.ids = generator }
}

// WithSeed replaces the built-in seed records.
func WithSeed(seed persistence.Seed) ServicesOption {
	return func(o *serviceOptions) { o.seed = &seed }
}

// WithDeletePolicy sets the booking cancellation policy.
func WithDeletePolicy(policy application.DeletePolicy) ServicesOption {
	return func(o *serviceOptions) { o.policy = policy }
}

// WithCascade makes room deletion remove the room's bookings.
func WithCascade() ServicesOption {
	return func(o *serviceOptions) { o.cascade = true }
}

// WithLogger routes service logs to logger instead of discarding them.
func WithLogger(logger *slog.Logger) ServicesOption {
	return func(o *serviceOptions) { o.logger = logger }
}

// NewServices builds the services for a test.
func NewServices(tb testing.TB, opts ...ServicesOption) *Services {
	tb.Helper()

	o := serviceOptions{policy: application.DeleteAdminOnly}
	for _, opt := range opts {
		opt(&o)
	}
	if o.store == nil {
		o.store = memory.New()
	}
	if o.clock == nil {
		o.clock = NewClock(ReferenceTime())
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	seed := persistence.DefaultSeed()
	if o.seed != nil {
		seed = *o.seed
	}

	var idGen func() string
	if o.ids != nil {
		idGen = o.ids.NextFunc()
	}

	tables := persistence.NewTables(o.store, nil, seed, application.PasswordHasher(FastArgon2idParams))
	rooms := application.NewRoomServiceWithLogger(tables, idGen, o.logger)
	bookings := application.NewBookingServiceWithLogger(tables, rooms, idGen, o.clock.NowFunc(), o.logger)
	bookings.SetDeletePolicy(o.policy)
	if o.cascade {
		rooms.CascadeDeletesTo(bookings)
	}

	return &Services{
		Store:    o.store,
		Tables:   tables,
		Sessions: application.NewSessionServiceWithLogger(tables, tables, FastArgon2idParams, o.logger),
		Rooms:    rooms,
		Bookings: bookings,
		Clock:    o.clock,
		Logger:   o.logger,
	}
}

// Controller returns a dashboard controller over s.
func (s *Services) Controller() *dashboard.Controller {
	return dashboard.New(s.Sessions, s.Rooms, s.Bookings, s.Clock.NowFunc(), s.Logger)
}
