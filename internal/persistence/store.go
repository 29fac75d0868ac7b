package persistence

import "context"

// Keys under which the snapshots are stored. The names match the layout the
// browser console used, so a dump of one store can seed another.
const (
	UsersKey    = "users"
	RoomsKey    = "meeting_rooms_data"
	BookingsKey = "meeting_bookings_data"
	TokenKey    = "authToken"
)

// Store is the durable key-value port every table is persisted through.
//
// Get reports ok=false when the key is absent. Implementations hold whole
// values; there is no compare-and-swap, so the last Set for a key wins.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
