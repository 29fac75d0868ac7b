package application

import (
	"context"
	"errors"
	"testing"
)

func TestSessionService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("accepts seeded administrator", func(t *testing.T) {
		svc := newTestServices(t)

		session, err := svc.sessions.Login(ctx, "admin@app.com", "123456")
		if err != nil {
			t.Fatalf("Login returned error: %v", err)
		}
		if session.User.Role != RoleAdmin {
			t.Fatalf("expected Admin role, got %q", session.User.Role)
		}
		if !session.IsLoggedIn || session.Token != DeriveToken("admin@app.com") {
			t.Fatalf("unexpected session %+v", session)
		}
		if current := svc.sessions.Current(); current.User.Email != "admin@app.com" {
			t.Fatalf("expected current session for admin, got %+v", current)
		}

		token, ok, err := svc.tables.Token(ctx)
		if err != nil || !ok || token != session.Token {
			t.Fatalf("expected persisted token %q, got %q ok=%v err=%v", session.Token, token, ok, err)
		}
	})

	t.Run("rejects wrong password and unknown email alike", func(t *testing.T) {
		svc := newTestServices(t)

		_, wrongPassword := svc.sessions.Login(ctx, "admin@app.com", "wrong")
		_, unknownEmail := svc.sessions.Login(ctx, "nobody@app.com", "123456")

		if !errors.Is(wrongPassword, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", wrongPassword)
		}
		if !errors.Is(unknownEmail, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", unknownEmail)
		}
		if svc.sessions.Current().IsLoggedIn {
			t.Fatalf("expected no active session after failed logins")
		}
	})

	t.Run("email lookup is case sensitive", func(t *testing.T) {
		svc := newTestServices(t)

		if _, err := svc.sessions.Login(ctx, "ADMIN@app.com", "123456"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("surfaces store failures", func(t *testing.T) {
		svc := NewSessionServiceWithLogger(failingTables{}, failingTables{}, cheapArgon2idParams, discardLogger())

		_, err := svc.Login(ctx, "admin@app.com", "123456")
		if !errors.Is(err, ErrOperationFailed) || !errors.Is(err, errStoreDown) {
			t.Fatalf("expected wrapped ErrOperationFailed, got %v", err)
		}
	})
}

func TestSessionService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects mismatched passwords without touching storage", func(t *testing.T) {
		svc := NewSessionServiceWithLogger(failingTables{}, failingTables{}, cheapArgon2idParams, discardLogger())

		_, err := svc.Register(ctx, RegisterParams{
			Name: "New", Email: "new@app.com", Password: "one", ConfirmPassword: "two",
		})
		if !errors.Is(err, ErrPasswordMismatch) {
			t.Fatalf("expected ErrPasswordMismatch, got %v", err)
		}
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		svc := newTestServices(t)

		_, err := svc.sessions.Register(ctx, RegisterParams{
			Name: "Copy", Email: "user@app.com", Password: "pw", ConfirmPassword: "pw",
		})
		if !errors.Is(err, ErrDuplicateEmail) {
			t.Fatalf("expected ErrDuplicateEmail, got %v", err)
		}
	})

	t.Run("registers and logs in a fresh user", func(t *testing.T) {
		svc := newTestServices(t)

		session, err := svc.sessions.Register(ctx, RegisterParams{
			Name: "Olena", Email: "olena@app.com", Password: "secret", ConfirmPassword: "secret",
		})
		if err != nil {
			t.Fatalf("Register returned error: %v", err)
		}
		if !session.IsLoggedIn || session.User.Role != RoleUser {
			t.Fatalf("unexpected session %+v", session)
		}

		users, err := svc.tables.Users(ctx)
		if err != nil {
			t.Fatalf("Users returned error: %v", err)
		}
		if len(users) != 3 || users[2].Email != "olena@app.com" {
			t.Fatalf("expected appended user, got %+v", users)
		}
		if users[2].Password == "secret" {
			t.Fatalf("expected password to be hashed")
		}

		if err := svc.sessions.Logout(ctx); err != nil {
			t.Fatalf("Logout returned error: %v", err)
		}
		if _, err := svc.sessions.Login(ctx, "olena@app.com", "secret"); err != nil {
			t.Fatalf("expected new user to log in, got %v", err)
		}
	})

	t.Run("keeps requested admin role", func(t *testing.T) {
		svc := newTestServices(t)

		session, err := svc.sessions.Register(ctx, RegisterParams{
			Name: "Boss", Email: "boss@app.com", Password: "pw", ConfirmPassword: "pw", Role: RoleAdmin,
		})
		if err != nil {
			t.Fatalf("Register returned error: %v", err)
		}
		if session.User.Role != RoleAdmin {
			t.Fatalf("expected Admin role, got %q", session.User.Role)
		}
	})

	t.Run("requires name and email", func(t *testing.T) {
		svc := newTestServices(t)

		_, err := svc.sessions.Register(ctx, RegisterParams{Password: "pw", ConfirmPassword: "pw"})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["email"]; !ok {
			t.Fatalf("expected email error, got %v", vErr.FieldErrors)
		}
	})
}

func TestSessionService_RestoreSession(t *testing.T) {
	ctx := context.Background()

	t.Run("restores from the persisted token", func(t *testing.T) {
		tables, _ := newTestTables(t)
		first := NewSessionServiceWithLogger(tables, tables, cheapArgon2idParams, discardLogger())
		if _, err := first.Login(ctx, "user@app.com", "123456"); err != nil {
			t.Fatalf("Login returned error: %v", err)
		}

		second := NewSessionServiceWithLogger(tables, tables, cheapArgon2idParams, discardLogger())
		session, ok := second.RestoreSession(ctx, "")
		if !ok {
			t.Fatalf("expected session to be restored")
		}
		if session.User.Email != "user@app.com" || session.User.Role != RoleUser {
			t.Fatalf("unexpected restored user %+v", session.User)
		}
	})

	t.Run("treats unknown token as absent", func(t *testing.T) {
		svc := newTestServices(t)

		if _, ok := svc.sessions.RestoreSession(ctx, "not-a-token"); ok {
			t.Fatalf("expected unknown token to be rejected")
		}
		if svc.sessions.Current().IsLoggedIn {
			t.Fatalf("expected no active session")
		}
	})

	t.Run("never fails on store errors", func(t *testing.T) {
		svc := NewSessionServiceWithLogger(failingTables{}, failingTables{}, cheapArgon2idParams, discardLogger())

		if _, ok := svc.RestoreSession(ctx, ""); ok {
			t.Fatalf("expected restore to report absent session")
		}
		if _, ok := svc.RestoreSession(ctx, DeriveToken("admin@app.com")); ok {
			t.Fatalf("expected restore to report absent session")
		}
	})

	t.Run("caches token resolution", func(t *testing.T) {
		tables, _ := newTestTables(t)
		users := &countingUsers{UserTable: tables}
		svc := NewSessionServiceWithLogger(users, tables, cheapArgon2idParams, discardLogger())
		token := DeriveToken("admin@app.com")

		for i := 0; i < 3; i++ {
			if _, ok := svc.RestoreSession(ctx, token); !ok {
				t.Fatalf("expected restore %d to succeed", i)
			}
		}
		if users.reads != 1 {
			t.Fatalf("expected a single user table read, got %d", users.reads)
		}
	})
}

func TestSessionService_Logout(t *testing.T) {
	ctx := context.Background()
	svc := newTestServices(t)

	if _, err := svc.sessions.Login(ctx, "admin@app.com", "123456"); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if err := svc.sessions.Logout(ctx); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if err := svc.sessions.Logout(ctx); err != nil {
		t.Fatalf("second Logout returned error: %v", err)
	}

	if svc.sessions.Current().IsLoggedIn {
		t.Fatalf("expected session to be cleared")
	}
	if _, ok, _ := svc.tables.Token(ctx); ok {
		t.Fatalf("expected persisted token to be removed")
	}
	if _, ok := svc.sessions.RestoreSession(ctx, ""); ok {
		t.Fatalf("expected nothing to restore after logout")
	}
}
