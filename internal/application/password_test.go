package application

import "testing"

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("123456", cheapArgon2idParams)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if !CheckPassword(hash, "123456") {
		t.Fatalf("expected password to match")
	}
	if CheckPassword(hash, "654321") {
		t.Fatalf("expected wrong password to be rejected")
	}
	if CheckPassword("plain", "plain") {
		t.Fatalf("expected malformed hash to never match")
	}
	if err := verifyPassword("$argon2id$v=1$m=8,t=1,p=1$AAAA$AAAA", "x"); err != ErrIncompatiblePasswordVersion {
		t.Fatalf("expected ErrIncompatiblePasswordVersion, got %v", err)
	}
}

func TestDeriveToken(t *testing.T) {
	a := DeriveToken("admin@app.com")
	if a != DeriveToken("admin@app.com") {
		t.Fatalf("expected stable token")
	}
	if a == DeriveToken("user@app.com") {
		t.Fatalf("expected distinct tokens per email")
	}
	if len(a) != 64 {
		t.Fatalf("expected 32-byte hex token, got %d chars", len(a))
	}
}

func TestNextSequentialID(t *testing.T) {
	if got := nextSequentialID("r", []string{"r1", "r7", "x9", "r-custom"}); got != "r8" {
		t.Fatalf("expected r8, got %q", got)
	}
	if got := nextSequentialID("b", nil); got != "b1" {
		t.Fatalf("expected b1, got %q", got)
	}
}
