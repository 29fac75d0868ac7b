package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/example/room-booking/internal/application"
)

// ErrBusy is returned when an auth request is submitted while another is
// still in flight.
var ErrBusy = errors.New("dashboard: operation already in progress")

// Sessions is the subset of the session service the controller drives.
type Sessions interface {
	Register(ctx context.Context, params application.RegisterParams) (application.Session, error)
	Login(ctx context.Context, email, password string) (application.Session, error)
	Logout(ctx context.Context) error
	RestoreSession(ctx context.Context, token string) (application.Session, bool)
	Current() application.Session
}

// Rooms is the subset of the room service the controller drives.
type Rooms interface {
	ListRooms(ctx context.Context) ([]application.Room, error)
	CreateRoom(ctx context.Context, params application.CreateRoomParams) (application.Room, error)
	UpdateRoom(ctx context.Context, params application.UpdateRoomParams) (application.Room, error)
	DeleteRoom(ctx context.Context, principal application.Principal, roomID string) error
	CascadesDeletes() bool
}

// Bookings is the subset of the booking service the controller drives.
type Bookings interface {
	ListBookings(ctx context.Context, filter application.BookingFilter) ([]application.Booking, error)
	CreateBooking(ctx context.Context, params application.CreateBookingParams) (application.Booking, []application.ConflictWarning, error)
	UpdateBooking(ctx context.Context, params application.UpdateBookingParams) (application.Booking, []application.ConflictWarning, error)
	DeleteBooking(ctx context.Context, principal application.Principal, bookingID string) error
	CanManage(booking application.Booking, principal application.Principal) bool
	IsRoomFree(ctx context.Context, roomID string, start, end time.Time) (bool, error)
}

// Controller composes the services behind asynchronous operations and keeps
// the observable state of the auth, room and booking slices.
type Controller struct {
	sessions Sessions
	rooms    Rooms
	bookings Bookings
	now      func() time.Time
	logger   *slog.Logger

	mu           sync.RWMutex
	authState    AuthState
	roomsState   RoomsState
	bookingState BookingsState

	inflight sync.WaitGroup
}

// New constructs a controller. A nil logger selects slog.Default.
func New(sessions Sessions, rooms Rooms, bookings Bookings, now func() time.Time, logger *slog.Logger) *Controller {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		sessions:     sessions,
		rooms:        rooms,
		bookings:     bookings,
		now:          now,
		logger:       logger.With("component", "dashboard"),
		authState:    AuthState{Status: StatusIdle},
		roomsState:   RoomsState{Status: StatusIdle},
		bookingState: BookingsState{Status: StatusIdle},
	}
}

// Auth returns a snapshot of the auth slice.
func (c *Controller) Auth() AuthState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.authState
}

// Rooms returns a snapshot of the room slice.
func (c *Controller) Rooms() RoomsState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomsState.clone()
}

// Bookings returns a snapshot of the booking slice.
func (c *Controller) Bookings() BookingsState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bookingState.clone()
}

// Loading reports whether any slice has an operation in flight.
func (c *Controller) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.authState.Status == StatusLoading ||
		c.roomsState.Status == StatusLoading ||
		c.bookingState.Status == StatusLoading
}

// Wait blocks until every dispatched operation has finished.
func (c *Controller) Wait() {
	c.inflight.Wait()
}

// Principal returns the identity of the logged in user, or the zero
// Principal.
func (c *Controller) Principal() application.Principal {
	auth := c.Auth()
	if !auth.IsLoggedIn {
		return application.Principal{}
	}
	return auth.User.Principal()
}

// IsAdmin reports whether the logged in user is an administrator.
func (c *Controller) IsAdmin() bool {
	return c.Principal().IsAdmin()
}

// CanManage reports whether the logged in user may cancel booking.
func (c *Controller) CanManage(booking application.Booking) bool {
	principal := c.Principal()
	if !principal.Authenticated() {
		return false
	}
	return c.bookings.CanManage(booking, principal)
}

// CanEditForParticipation reports whether the logged in user may open a
// booking for editing, which for non-authors means joining it.
func (c *Controller) CanEditForParticipation() bool {
	return c.Auth().IsLoggedIn
}

// dispatch runs op on its own goroutine. Cancelling ctx does not abort an
// operation that has started.
func (c *Controller) dispatch(ctx context.Context, name string, op func(context.Context) error) *Pending {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithoutCancel(ctx)

	pending := newPending()
	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		err := op(ctx)
		if err != nil {
			c.logger.WarnContext(ctx, "operation failed", "operation", name, "error", err, "error_kind", application.ErrorKind(err))
		}
		pending.resolve(err)
	}()
	return pending
}

func (c *Controller) setAuth(update func(*AuthState)) {
	c.mu.Lock()
	update(&c.authState)
	c.mu.Unlock()
}

func (c *Controller) setRooms(update func(*RoomsState)) {
	c.mu.Lock()
	update(&c.roomsState)
	c.mu.Unlock()
}

func (c *Controller) setBookings(update func(*BookingsState)) {
	c.mu.Lock()
	update(&c.bookingState)
	c.mu.Unlock()
}
