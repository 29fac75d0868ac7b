package memory

import (
	"context"
	"testing"
)

func TestStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("reports absent keys", func(t *testing.T) {
		store := New()
		_, ok, err := store.Get(ctx, "missing")
		if err != nil {
			t.Fatalf("Get returned error: %v", err)
		}
		if ok {
			t.Fatalf("expected absent key")
		}
	})

	t.Run("copies values on set and get", func(t *testing.T) {
		store := New()
		value := []byte("alpha")
		if err := store.Set(ctx, "k", value); err != nil {
			t.Fatalf("Set returned error: %v", err)
		}
		value[0] = 'X'

		got, ok, err := store.Get(ctx, "k")
		if err != nil || !ok {
			t.Fatalf("expected stored value, ok=%v err=%v", ok, err)
		}
		if string(got) != "alpha" {
			t.Fatalf("expected stored copy to be unchanged, got %q", got)
		}
		got[0] = 'Y'
		again, _, _ := store.Get(ctx, "k")
		if string(again) != "alpha" {
			t.Fatalf("expected returned copy to be detached, got %q", again)
		}
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		store := New()
		_ = store.Set(ctx, "k", []byte("v"))
		if err := store.Delete(ctx, "k"); err != nil {
			t.Fatalf("Delete returned error: %v", err)
		}
		if err := store.Delete(ctx, "k"); err != nil {
			t.Fatalf("second Delete returned error: %v", err)
		}
		if keys := store.Keys(); len(keys) != 0 {
			t.Fatalf("expected no keys, got %v", keys)
		}
	})
}
