package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/scheduler"
)

// RoomLookup answers whether a booking may reference a room.
type RoomLookup interface {
	RoomExists(ctx context.Context, roomID string) (bool, error)
}

// BookingService owns the booking table: time range checks, participation
// and the rules for who may change or cancel a booking.
type BookingService struct {
	bookings    BookingTable
	rooms       RoomLookup
	idGenerator func() string
	now         func() time.Time
	policy      DeletePolicy
	latency     time.Duration
	logger      *slog.Logger
}

// NewBookingService constructs a booking service with the provided dependencies.
// A nil idGenerator assigns sequential ids of the form b1, b2, ...
func NewBookingService(bookings BookingTable, rooms RoomLookup, idGenerator func() string, now func() time.Time) *BookingService {
	return NewBookingServiceWithLogger(bookings, rooms, idGenerator, now, nil)
}

// NewBookingServiceWithLogger constructs a booking service with a specified logger.
func NewBookingServiceWithLogger(bookings BookingTable, rooms RoomLookup, idGenerator func() string, now func() time.Time, logger *slog.Logger) *BookingService {
	if now == nil {
		now = time.Now
	}
	return &BookingService{
		bookings:    bookings,
		rooms:       rooms,
		idGenerator: idGenerator,
		now:         now,
		policy:      DeleteAdminOnly,
		logger:      defaultLogger(logger),
	}
}

// SetLatency sets the simulated round-trip delay applied to every operation.
func (s *BookingService) SetLatency(latency time.Duration) {
	if s != nil {
		s.latency = latency
	}
}

// SetDeletePolicy chooses who may cancel bookings. Unknown values fall back
// to DeleteAdminOnly.
func (s *BookingService) SetDeletePolicy(policy DeletePolicy) {
	if s == nil {
		return
	}
	if policy != DeleteAdminOrAuthor {
		policy = DeleteAdminOnly
	}
	s.policy = policy
}

// DeletePolicy reports the active cancellation policy.
func (s *BookingService) DeletePolicy() DeletePolicy {
	if s == nil {
		return DeleteAdminOnly
	}
	return s.policy
}

func (s *BookingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BookingService", operation, attrs...)
}

// ListBookings returns bookings matching filter. Without SortByStart the
// table order is kept.
func (s *BookingService) ListBookings(ctx context.Context, filter BookingFilter) (bookings []Booking, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}
	if s.bookings == nil {
		return nil, nil
	}

	logger := s.loggerWith(ctx, "ListBookings",
		"room_id", filter.RoomID,
		"only_future", filter.OnlyFuture,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list bookings", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(bookings)).InfoContext(ctx, "bookings listed")
	}()

	roundTrip(s.latency)

	var records []persistence.BookingRecord
	records, err = s.bookings.Bookings(ctx)
	if err != nil {
		err = operationFailed(err)
		return
	}

	now := s.now()
	bookings = make([]Booking, 0, len(records))
	for _, record := range records {
		if filter.RoomID != "" && record.RoomID != filter.RoomID {
			continue
		}
		booking := bookingFromRecord(record)
		if filter.OnlyFuture && scheduler.StatusAt(toInterval(booking), now) != scheduler.StatusUpcoming {
			continue
		}
		bookings = append(bookings, booking)
	}

	if filter.SortByStart {
		sortBookingsByStart(bookings)
	}
	return
}

// CreateBooking records a booking for any authenticated principal. Overlaps
// with other bookings of the room are allowed and reported as warnings.
func (s *BookingService) CreateBooking(ctx context.Context, params CreateBookingParams) (booking Booking, warnings []ConflictWarning, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}

	input := params.Input
	logger := s.loggerWith(ctx, "CreateBooking",
		"principal_email", params.Principal.Email,
		"room_id", input.RoomID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create booking", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With(
			"booking_id", booking.ID,
			"conflict_count", len(warnings),
		).InfoContext(ctx, "booking created")
	}()

	if !params.Principal.Authenticated() {
		err = ErrUnauthorized
		return
	}
	if !input.End.After(input.Start) {
		err = ErrInvalidTimeRange
		return
	}

	vErr := &ValidationError{}
	if strings.TrimSpace(input.Title) == "" {
		vErr.add("title", "title is required")
	}
	if strings.TrimSpace(input.RoomID) == "" {
		vErr.add("roomId", "room is required")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}
	if s.bookings == nil {
		err = fmt.Errorf("booking table not configured")
		return
	}

	roundTrip(s.latency)

	if s.rooms != nil {
		var exists bool
		exists, err = s.rooms.RoomExists(ctx, input.RoomID)
		if err != nil {
			return
		}
		if !exists {
			vErr.add("roomId", "room does not exist")
			err = vErr
			return
		}
	}

	var records []persistence.BookingRecord
	records, err = s.bookings.Bookings(ctx)
	if err != nil {
		err = operationFailed(err)
		return
	}

	booking = Booking{
		ID:           s.nextID(records),
		RoomID:       input.RoomID,
		Title:        strings.TrimSpace(input.Title),
		Description:  strings.TrimSpace(input.Description),
		Start:        input.Start,
		End:          input.End,
		UserName:     params.Principal.Name,
		AuthorEmail:  params.Principal.Email,
		Participants: ParseParticipants(input.Participants),
	}
	warnings = conflictWarnings(records, booking)

	if err = s.bookings.SaveBookings(ctx, append(records, bookingToRecord(booking))); err != nil {
		err = operationFailed(err)
		booking, warnings = Booking{}, nil
		return
	}
	return
}

// UpdateBooking edits a booking. The author and administrators may change
// title, description, time and participants. Any other principal only joins:
// their email is added to the participants and the rest of the input is
// ignored. A submitted time range is checked for every principal; a
// participation-only request may leave Start and End zero.
func (s *BookingService) UpdateBooking(ctx context.Context, params UpdateBookingParams) (booking Booking, warnings []ConflictWarning, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}

	input := params.Input
	logger := s.loggerWith(ctx, "UpdateBooking",
		"principal_email", params.Principal.Email,
		"booking_id", params.BookingID,
	)
	joined := false
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update booking", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With(
			"participation_only", joined,
			"conflict_count", len(warnings),
		).InfoContext(ctx, "booking updated")
	}()

	if !params.Principal.Authenticated() {
		err = ErrUnauthorized
		return
	}
	hasRange := !input.Start.IsZero() || !input.End.IsZero()
	if hasRange && !input.End.After(input.Start) {
		err = ErrInvalidTimeRange
		return
	}
	if s.bookings == nil {
		err = fmt.Errorf("booking table not configured")
		return
	}

	roundTrip(s.latency)

	var records []persistence.BookingRecord
	records, err = s.bookings.Bookings(ctx)
	if err != nil {
		err = operationFailed(err)
		return
	}

	idx := indexBooking(records, params.BookingID)
	if idx < 0 {
		err = ErrNotFound
		return
	}

	updated := bookingFromRecord(records[idx])
	if params.Principal.IsAdmin() || isAuthor(updated, params.Principal) {
		if !hasRange {
			err = ErrInvalidTimeRange
			return
		}
		if strings.TrimSpace(input.Title) == "" {
			vErr := &ValidationError{}
			vErr.add("title", "title is required")
			err = vErr
			return
		}
		updated.Title = strings.TrimSpace(input.Title)
		updated.Description = strings.TrimSpace(input.Description)
		updated.Start = input.Start
		updated.End = input.End
		updated.Participants = ParseParticipants(input.Participants)
		warnings = conflictWarnings(records, updated)
	} else {
		joined = true
		if !containsString(updated.Participants, params.Principal.Email) {
			updated.Participants = append(updated.Participants, params.Principal.Email)
		}
	}

	records[idx] = bookingToRecord(updated)
	if err = s.bookings.SaveBookings(ctx, records); err != nil {
		err = operationFailed(err)
		warnings = nil
		return
	}

	booking = updated
	return
}

// DeleteBooking cancels a booking. Under DeleteAdminOnly authorship grants
// nothing; under DeleteAdminOrAuthor the author may also cancel.
func (s *BookingService) DeleteBooking(ctx context.Context, principal Principal, bookingID string) (err error) {
	if s == nil {
		return fmt.Errorf("BookingService is nil")
	}

	logger := s.loggerWith(ctx, "DeleteBooking",
		"principal_email", principal.Email,
		"booking_id", bookingID,
		"policy", s.policy,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete booking", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "booking deleted")
	}()

	if !principal.Authenticated() {
		err = ErrUnauthorized
		return
	}
	if s.policy == DeleteAdminOnly && !principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}
	if s.bookings == nil {
		err = fmt.Errorf("booking table not configured")
		return
	}

	roundTrip(s.latency)

	var records []persistence.BookingRecord
	records, err = s.bookings.Bookings(ctx)
	if err != nil {
		err = operationFailed(err)
		return
	}

	idx := indexBooking(records, bookingID)
	if idx < 0 {
		err = ErrNotFound
		return
	}
	if !s.CanManage(bookingFromRecord(records[idx]), principal) {
		err = ErrUnauthorized
		return
	}

	remaining := append(records[:idx:idx], records[idx+1:]...)
	if err = s.bookings.SaveBookings(ctx, remaining); err != nil {
		err = operationFailed(err)
	}
	return
}

// CanManage reports whether principal may cancel booking under the active
// policy.
func (s *BookingService) CanManage(booking Booking, principal Principal) bool {
	if principal.IsAdmin() {
		return true
	}
	return s.DeletePolicy() == DeleteAdminOrAuthor && isAuthor(booking, principal)
}

// CanEdit reports whether principal may change the schedule of booking rather
// than only join it.
func CanEdit(booking Booking, principal Principal) bool {
	return principal.IsAdmin() || isAuthor(booking, principal)
}

// IsRoomFree reports whether no booking of the room overlaps [start, end).
func (s *BookingService) IsRoomFree(ctx context.Context, roomID string, start, end time.Time) (free bool, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}
	if !end.After(start) {
		err = ErrInvalidTimeRange
		return
	}
	if s.bookings == nil {
		return true, nil
	}

	roundTrip(s.latency)

	records, err := s.bookings.Bookings(ctx)
	if err != nil {
		err = operationFailed(err)
		return
	}

	intervals := make([]scheduler.Booking, 0, len(records))
	for _, record := range records {
		intervals = append(intervals, toInterval(bookingFromRecord(record)))
	}
	free = scheduler.IsFree(intervals, roomID, start, end)

	s.loggerWith(ctx, "IsRoomFree", "room_id", roomID).
		DebugContext(ctx, "room availability checked", "free", free)
	return
}

// DeleteBookingsForRoom removes every booking that references roomID and
// returns how many were removed.
func (s *BookingService) DeleteBookingsForRoom(ctx context.Context, roomID string) (removed int, err error) {
	if s == nil {
		err = fmt.Errorf("BookingService is nil")
		return
	}
	if s.bookings == nil {
		return 0, nil
	}

	logger := s.loggerWith(ctx, "DeleteBookingsForRoom", "room_id", roomID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete room bookings", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("removed", removed).InfoContext(ctx, "room bookings deleted")
	}()

	var records []persistence.BookingRecord
	records, err = s.bookings.Bookings(ctx)
	if err != nil {
		err = operationFailed(err)
		return
	}

	kept := make([]persistence.BookingRecord, 0, len(records))
	for _, record := range records {
		if record.RoomID == roomID {
			removed++
			continue
		}
		kept = append(kept, record)
	}
	if removed == 0 {
		return
	}

	if err = s.bookings.SaveBookings(ctx, kept); err != nil {
		err = operationFailed(err)
		removed = 0
	}
	return
}

// Status reports whether booking is upcoming or past.
func (s *BookingService) Status(booking Booking) scheduler.Status {
	now := time.Now
	if s != nil {
		now = s.now
	}
	return scheduler.StatusAt(toInterval(booking), now())
}

func (s *BookingService) nextID(records []persistence.BookingRecord) string {
	if s.idGenerator != nil {
		if id := s.idGenerator(); id != "" {
			return id
		}
	}
	ids := make([]string, 0, len(records))
	for _, record := range records {
		ids = append(ids, record.ID)
	}
	return nextSequentialID("b", ids)
}

func isAuthor(booking Booking, principal Principal) bool {
	return principal.Email != "" && booking.AuthorEmail == principal.Email
}

func indexBooking(records []persistence.BookingRecord, bookingID string) int {
	for i, record := range records {
		if record.ID == bookingID {
			return i
		}
	}
	return -1
}

func toInterval(booking Booking) scheduler.Booking {
	return scheduler.Booking{ID: booking.ID, RoomID: booking.RoomID, Start: booking.Start, End: booking.End}
}

func conflictWarnings(records []persistence.BookingRecord, candidate Booking) []ConflictWarning {
	existing := make([]scheduler.Booking, 0, len(records))
	for _, record := range records {
		existing = append(existing, scheduler.Booking{
			ID:     record.ID,
			RoomID: record.RoomID,
			Start:  record.StartTime,
			End:    record.EndTime,
		})
	}
	conflicts := scheduler.DetectConflicts(existing, toInterval(candidate))
	if len(conflicts) == 0 {
		return nil
	}
	warnings := make([]ConflictWarning, 0, len(conflicts))
	for _, conflict := range conflicts {
		warnings = append(warnings, ConflictWarning{BookingID: conflict.WithBookingID, RoomID: conflict.RoomID})
	}
	return warnings
}

func sortBookingsByStart(bookings []Booking) {
	sort.SliceStable(bookings, func(i, j int) bool {
		return scheduler.StartsBefore(toInterval(bookings[i]), toInterval(bookings[j]))
	})
}
