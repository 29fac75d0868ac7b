package persistence_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/example/room-booking/internal/persistence"
	"github.com/example/room-booking/internal/persistence/memory"
)

func TestParseCodec(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		compress bool
		want     string
	}{
		{name: "", want: "json"},
		{name: "JSON", want: "json"},
		{name: "cbor", want: "cbor"},
		{name: "json", compress: true, want: "json+zstd"},
		{name: "cbor", compress: true, want: "cbor+zstd"},
	}
	for _, tc := range cases {
		codec, err := persistence.ParseCodec(tc.name, tc.compress)
		if err != nil {
			t.Fatalf("ParseCodec(%q, %v) returned error: %v", tc.name, tc.compress, err)
		}
		if codec.Name() != tc.want {
			t.Fatalf("ParseCodec(%q, %v) = %q, want %q", tc.name, tc.compress, codec.Name(), tc.want)
		}
	}

	if _, err := persistence.ParseCodec("xml", false); err == nil {
		t.Fatalf("expected error for unknown codec")
	}
}

func TestCodecs_TablesRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		name     string
		compress bool
	}{
		{"json", false},
		{"cbor", false},
		{"json", true},
		{"cbor", true},
	} {
		codec, err := persistence.ParseCodec(tc.name, tc.compress)
		if err != nil {
			t.Fatalf("ParseCodec returned error: %v", err)
		}
		t.Run(codec.Name(), func(t *testing.T) {
			ctx := context.Background()
			tables := persistence.NewTables(memory.New(), codec, persistence.DefaultSeed(), nil)

			seeded, err := tables.Bookings(ctx)
			if err != nil {
				t.Fatalf("Bookings returned error: %v", err)
			}
			reloaded, err := tables.Bookings(ctx)
			if err != nil {
				t.Fatalf("Bookings reload returned error: %v", err)
			}
			if len(reloaded) != len(seeded) {
				t.Fatalf("expected %d bookings, got %d", len(seeded), len(reloaded))
			}
			for i := range seeded {
				if reloaded[i].ID != seeded[i].ID || !reloaded[i].EndTime.Equal(seeded[i].EndTime) {
					t.Fatalf("booking %d did not round-trip: %+v vs %+v", i, reloaded[i], seeded[i])
				}
				if len(reloaded[i].Participants) != len(seeded[i].Participants) {
					t.Fatalf("participants did not round-trip: %v", reloaded[i].Participants)
				}
			}
		})
	}
}

func TestCBORCodec_Deterministic(t *testing.T) {
	t.Parallel()

	codec, err := persistence.NewCBORCodec()
	if err != nil {
		t.Fatalf("NewCBORCodec returned error: %v", err)
	}
	rooms := persistence.DefaultSeed().Rooms
	first, err := codec.Marshal(rooms)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	second, err := codec.Marshal(rooms)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("expected identical encodings")
	}
}
