package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

// BookingPurger removes every booking of a room. RoomService calls it after a
// room is deleted when cascading deletes are enabled.
type BookingPurger interface {
	DeleteBookingsForRoom(ctx context.Context, roomID string) (int, error)
}

// RoomService owns the room table and its admin-only mutation rules.
type RoomService struct {
	rooms       RoomTable
	idGenerator func() string
	latency     time.Duration
	purger      BookingPurger
	logger      *slog.Logger
}

// NewRoomService constructs a room service with the provided dependencies.
// A nil idGenerator assigns sequential ids of the form r1, r2, ...
func NewRoomService(rooms RoomTable, idGenerator func() string) *RoomService {
	return NewRoomServiceWithLogger(rooms, idGenerator, nil)
}

// NewRoomServiceWithLogger constructs a room service with a specified logger.
func NewRoomServiceWithLogger(rooms RoomTable, idGenerator func() string, logger *slog.Logger) *RoomService {
	return &RoomService{rooms: rooms, idGenerator: idGenerator, logger: defaultLogger(logger)}
}

// SetLatency sets the simulated round-trip delay applied to every operation.
func (s *RoomService) SetLatency(latency time.Duration) {
	if s != nil {
		s.latency = latency
	}
}

// CascadesDeletes reports whether DeleteRoom also removes the room's bookings.
func (s *RoomService) CascadesDeletes() bool {
	return s != nil && s.purger != nil
}

// CascadeDeletesTo makes DeleteRoom also remove the room's bookings. A nil
// purger turns cascading off.
func (s *RoomService) CascadeDeletesTo(purger BookingPurger) {
	if s != nil {
		s.purger = purger
	}
}

func (s *RoomService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RoomService", operation, attrs...)
}

// ListRooms returns every room in insertion order.
func (s *RoomService) ListRooms(ctx context.Context) (rooms []Room, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}
	if s.rooms == nil {
		return nil, nil
	}

	logger := s.loggerWith(ctx, "ListRooms")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list rooms", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(rooms)).InfoContext(ctx, "rooms listed")
	}()

	roundTrip(s.latency)

	var records []persistence.RoomRecord
	records, err = s.rooms.Rooms(ctx)
	if err != nil {
		err = operationFailed(err)
		return
	}

	rooms = make([]Room, 0, len(records))
	for _, record := range records {
		rooms = append(rooms, roomFromRecord(record))
	}
	return
}

// GetRoom returns the room with the given id.
func (s *RoomService) GetRoom(ctx context.Context, roomID string) (Room, error) {
	if s == nil {
		return Room{}, fmt.Errorf("RoomService is nil")
	}
	if s.rooms == nil {
		return Room{}, ErrNotFound
	}
	records, err := s.rooms.Rooms(ctx)
	if err != nil {
		return Room{}, operationFailed(err)
	}
	if idx := indexRoom(records, roomID); idx >= 0 {
		return roomFromRecord(records[idx]), nil
	}
	return Room{}, ErrNotFound
}

// RoomExists reports whether a room with the given id is in the table.
func (s *RoomService) RoomExists(ctx context.Context, roomID string) (bool, error) {
	if _, err := s.GetRoom(ctx, roomID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// CreateRoom appends a new room. Only administrators may create rooms.
func (s *RoomService) CreateRoom(ctx context.Context, params CreateRoomParams) (room Room, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateRoom",
		"principal_email", params.Principal.Email,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create room", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("room_id", room.ID).InfoContext(ctx, "room created")
	}()

	if !params.Principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}

	name := strings.TrimSpace(params.Input.Name)
	if name == "" {
		vErr := &ValidationError{}
		vErr.add("name", "name is required")
		err = vErr
		return
	}
	if s.rooms == nil {
		err = fmt.Errorf("room table not configured")
		return
	}

	roundTrip(s.latency)

	var records []persistence.RoomRecord
	records, err = s.rooms.Rooms(ctx)
	if err != nil {
		err = operationFailed(err)
		return
	}

	room = Room{
		ID:          s.nextID(records),
		Name:        name,
		Description: strings.TrimSpace(params.Input.Description),
		Capacity:    CoerceCapacity(params.Input.Capacity),
	}

	if err = s.rooms.SaveRooms(ctx, append(records, roomToRecord(room))); err != nil {
		err = operationFailed(err)
		room = Room{}
		return
	}
	return
}

// UpdateRoom applies the non-nil fields of the patch. The room id never
// changes.
func (s *RoomService) UpdateRoom(ctx context.Context, params UpdateRoomParams) (room Room, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}

	logger := s.loggerWith(ctx, "UpdateRoom",
		"principal_email", params.Principal.Email,
		"room_id", params.RoomID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update room", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "room updated")
	}()

	if !params.Principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}
	if params.Patch.Name != nil && strings.TrimSpace(*params.Patch.Name) == "" {
		vErr := &ValidationError{}
		vErr.add("name", "name is required")
		err = vErr
		return
	}
	if s.rooms == nil {
		err = fmt.Errorf("room table not configured")
		return
	}

	roundTrip(s.latency)

	var records []persistence.RoomRecord
	records, err = s.rooms.Rooms(ctx)
	if err != nil {
		err = operationFailed(err)
		return
	}

	idx := indexRoom(records, params.RoomID)
	if idx < 0 {
		err = ErrNotFound
		return
	}

	updated := roomFromRecord(records[idx])
	if params.Patch.Name != nil {
		updated.Name = strings.TrimSpace(*params.Patch.Name)
	}
	if params.Patch.Description != nil {
		updated.Description = strings.TrimSpace(*params.Patch.Description)
	}
	if params.Patch.Capacity != nil {
		updated.Capacity = CoerceCapacity(*params.Patch.Capacity)
	}
	records[idx] = roomToRecord(updated)

	if err = s.rooms.SaveRooms(ctx, records); err != nil {
		err = operationFailed(err)
		return
	}

	room = updated
	return
}

// DeleteRoom removes a room. Its bookings are kept unless cascading deletes
// were enabled with CascadeDeletesTo.
func (s *RoomService) DeleteRoom(ctx context.Context, principal Principal, roomID string) (err error) {
	if s == nil {
		return fmt.Errorf("RoomService is nil")
	}

	logger := s.loggerWith(ctx, "DeleteRoom",
		"principal_email", principal.Email,
		"room_id", roomID,
	)
	purged := 0
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete room", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("bookings_removed", purged).InfoContext(ctx, "room deleted")
	}()

	if !principal.IsAdmin() {
		err = ErrUnauthorized
		return
	}
	if s.rooms == nil {
		err = fmt.Errorf("room table not configured")
		return
	}

	roundTrip(s.latency)

	var records []persistence.RoomRecord
	records, err = s.rooms.Rooms(ctx)
	if err != nil {
		err = operationFailed(err)
		return
	}

	idx := indexRoom(records, roomID)
	if idx < 0 {
		err = ErrNotFound
		return
	}

	remaining := append(records[:idx:idx], records[idx+1:]...)
	if err = s.rooms.SaveRooms(ctx, remaining); err != nil {
		err = operationFailed(err)
		return
	}

	if s.purger == nil {
		return
	}
	purged, err = s.purger.DeleteBookingsForRoom(ctx, roomID)
	if err != nil {
		if !errors.Is(err, ErrOperationFailed) {
			err = operationFailed(err)
		}
		if restoreErr := s.rooms.SaveRooms(ctx, records); restoreErr != nil {
			err = fmt.Errorf("%w (restoring rooms: %v)", err, restoreErr)
		}
		purged = 0
	}
	return
}

func (s *RoomService) nextID(records []persistence.RoomRecord) string {
	if s.idGenerator != nil {
		if id := s.idGenerator(); id != "" {
			return id
		}
	}
	ids := make([]string, 0, len(records))
	for _, record := range records {
		ids = append(ids, record.ID)
	}
	return nextSequentialID("r", ids)
}

// CoerceCapacity turns a raw capacity field into a room capacity. Numeric
// text is truncated toward zero; anything that is not a finite, non-negative
// number becomes 0.
func CoerceCapacity(raw string) int {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return 0
	}
	if value > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(value)
}

func indexRoom(records []persistence.RoomRecord, roomID string) int {
	for i, record := range records {
		if record.ID == roomID {
			return i
		}
	}
	return -1
}
