package persistence

import (
	"context"
	"errors"
	"fmt"
)

// PasswordHasher turns a seed user's plaintext password into the stored hash.
type PasswordHasher func(password string) (string, error)

// Tables reads and writes the three snapshot tables and the session token slot.
//
// Every write replaces the whole snapshot for its key. Seeds are written the
// first time a table key is read and found absent; later reads never re-seed,
// even when the stored table is empty.
type Tables struct {
	store Store
	codec Codec
	seed  Seed
	hash  PasswordHasher
}

// NewTables wires a store with the codec used for snapshots. A nil codec
// selects JSON; a nil hasher stores seed passwords unchanged.
func NewTables(store Store, codec Codec, seed Seed, hash PasswordHasher) *Tables {
	if codec == nil {
		codec = JSONCodec{}
	}
	return &Tables{store: store, codec: codec, seed: seed, hash: hash}
}

// Users returns the user table, seeding it on first access.
func (t *Tables) Users(ctx context.Context) ([]UserRecord, error) {
	return load(ctx, t, UsersKey, func() ([]UserRecord, error) {
		out := make([]UserRecord, 0, len(t.seed.Users))
		for _, user := range t.seed.Users {
			if t.hash != nil {
				hashed, err := t.hash(user.Password)
				if err != nil {
					return nil, fmt.Errorf("persistence: hash seed password for %s: %w", user.Email, err)
				}
				user.Password = hashed
			}
			out = append(out, user)
		}
		return out, nil
	})
}

// SaveUsers replaces the user table.
func (t *Tables) SaveUsers(ctx context.Context, users []UserRecord) error {
	return save(ctx, t, UsersKey, users)
}

// Rooms returns the room table, seeding it on first access.
func (t *Tables) Rooms(ctx context.Context) ([]RoomRecord, error) {
	return load(ctx, t, RoomsKey, func() ([]RoomRecord, error) {
		out := make([]RoomRecord, len(t.seed.Rooms))
		copy(out, t.seed.Rooms)
		return out, nil
	})
}

// SaveRooms replaces the room table.
func (t *Tables) SaveRooms(ctx context.Context, rooms []RoomRecord) error {
	return save(ctx, t, RoomsKey, rooms)
}

// Bookings returns the booking table, seeding it on first access.
func (t *Tables) Bookings(ctx context.Context) ([]BookingRecord, error) {
	return load(ctx, t, BookingsKey, func() ([]BookingRecord, error) {
		out := make([]BookingRecord, 0, len(t.seed.Bookings))
		for _, booking := range t.seed.Bookings {
			out = append(out, cloneBooking(booking))
		}
		return out, nil
	})
}

// SaveBookings replaces the booking table.
func (t *Tables) SaveBookings(ctx context.Context, bookings []BookingRecord) error {
	return save(ctx, t, BookingsKey, bookings)
}

// Token returns the persisted session token, if any.
func (t *Tables) Token(ctx context.Context) (string, bool, error) {
	if t == nil || t.store == nil {
		return "", false, errors.New("persistence: store not configured")
	}
	value, ok, err := t.store.Get(ctx, TokenKey)
	if err != nil || !ok {
		return "", false, err
	}
	return string(value), len(value) > 0, nil
}

// SaveToken persists the session token.
func (t *Tables) SaveToken(ctx context.Context, token string) error {
	if t == nil || t.store == nil {
		return errors.New("persistence: store not configured")
	}
	return t.store.Set(ctx, TokenKey, []byte(token))
}

// ClearToken removes the persisted session token. Clearing an absent token is
// not an error.
func (t *Tables) ClearToken(ctx context.Context) error {
	if t == nil || t.store == nil {
		return errors.New("persistence: store not configured")
	}
	return t.store.Delete(ctx, TokenKey)
}

func load[T any](ctx context.Context, t *Tables, key string, seed func() ([]T, error)) ([]T, error) {
	if t == nil || t.store == nil {
		return nil, errors.New("persistence: store not configured")
	}

	data, ok, err := t.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("persistence: read %s: %w", key, err)
	}
	if !ok {
		records, err := seed()
		if err != nil {
			return nil, err
		}
		if err := save(ctx, t, key, records); err != nil {
			return nil, err
		}
		return records, nil
	}

	var records []T
	if err := t.codec.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}
	return records, nil
}

func save[T any](ctx context.Context, t *Tables, key string, records []T) error {
	if t == nil || t.store == nil {
		return errors.New("persistence: store not configured")
	}
	if records == nil {
		records = []T{}
	}
	data, err := t.codec.Marshal(records)
	if err != nil {
		return fmt.Errorf("persistence: encode %s: %w", key, err)
	}
	if err := t.store.Set(ctx, key, data); err != nil {
		return fmt.Errorf("persistence: write %s: %w", key, err)
	}
	return nil
}
