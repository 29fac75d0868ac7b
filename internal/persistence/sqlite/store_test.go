package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/room-booking/internal/persistence"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "nested", "booking.db")
	store, err := Open(context.Background(), dsn)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store, dsn
}

func TestStore_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	if _, ok, err := store.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected absent key, ok=%v err=%v", ok, err)
	}

	if err := store.Set(ctx, "k", []byte("one")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Set(ctx, "k", []byte("two")); err != nil {
		t.Fatalf("overwriting Set failed: %v", err)
	}
	value, ok, err := store.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("expected value, ok=%v err=%v", ok, err)
	}
	if string(value) != "two" {
		t.Fatalf("expected last write to win, got %q", value)
	}

	if err := store.Set(ctx, "empty", nil); err != nil {
		t.Fatalf("Set with nil value failed: %v", err)
	}
	if value, ok, _ := store.Get(ctx, "empty"); !ok || len(value) != 0 {
		t.Fatalf("expected empty present value, got %q ok=%v", value, ok)
	}

	keys, err := store.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys failed: %v", err)
	}
	if len(keys) != 2 || keys[0] != "empty" || keys[1] != "k" {
		t.Fatalf("unexpected keys: %v", keys)
	}

	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("second Delete failed: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "k"); ok {
		t.Fatalf("expected key to be deleted")
	}
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	store, dsn := newTestStore(t)

	tables := persistence.NewTables(store, nil, persistence.DefaultSeed(), nil)
	rooms, err := tables.Rooms(ctx)
	if err != nil {
		t.Fatalf("Rooms failed: %v", err)
	}
	rooms = append(rooms, persistence.RoomRecord{ID: "r4", Name: "Focus Room", Capacity: 2})
	if err := tables.SaveRooms(ctx, rooms); err != nil {
		t.Fatalf("SaveRooms failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := Open(ctx, dsn)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	loaded, err := persistence.NewTables(reopened, nil, persistence.Seed{}, nil).Rooms(ctx)
	if err != nil {
		t.Fatalf("Rooms after reopen failed: %v", err)
	}
	if len(loaded) != 4 || loaded[3].Name != "Focus Room" {
		t.Fatalf("unexpected rooms after reopen: %+v", loaded)
	}
}

func TestValidateConfig(t *testing.T) {
	t.Parallel()

	if err := validateConfig(Config{}); err == nil {
		t.Fatalf("expected error for empty DSN")
	}
	if err := validateConfig(Config{DSN: "x.db", JournalMode: "bogus"}); err == nil {
		t.Fatalf("expected error for invalid journal mode")
	}
	if err := validateConfig(Config{DSN: "x.db", Synchronous: "sometimes"}); err == nil {
		t.Fatalf("expected error for invalid synchronous mode")
	}
	if err := validateConfig(DefaultConfig("x.db")); err != nil {
		t.Fatalf("expected default config to be valid, got %v", err)
	}
}

func TestDatabasePath(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"booking.db":                    "booking.db",
		"file:data/booking.db?cache=sh": "data/booking.db",
		":memory:":                      "",
		"file::memory:":                 "",
		"file:mem.db?mode=memory":       "",
	}
	for dsn, want := range cases {
		if got := databasePath(dsn); got != want {
			t.Fatalf("databasePath(%q) = %q, want %q", dsn, got, want)
		}
	}
}

func TestStore_MigrationsRecordedOnce(t *testing.T) {
	ctx := context.Background()
	store, dsn := newTestStore(t)

	applied, err := store.AppliedMigrations(ctx)
	if err != nil {
		t.Fatalf("AppliedMigrations failed: %v", err)
	}
	if len(applied) != len(migrations) || applied[0].Version != "001" {
		t.Fatalf("expected %d applied migrations, got %+v", len(migrations), applied)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := Open(ctx, dsn)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	again, err := reopened.AppliedMigrations(ctx)
	if err != nil {
		t.Fatalf("AppliedMigrations after reopen failed: %v", err)
	}
	if len(again) != len(applied) {
		t.Fatalf("expected migrations to be applied once, got %+v", again)
	}
}
