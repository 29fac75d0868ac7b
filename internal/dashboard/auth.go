package dashboard

import (
	"context"

	"github.com/example/room-booking/internal/application"
)

// beginAuth marks the auth slice as loading unless a request is already in
// flight.
func (c *Controller) beginAuth() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.authState.Status == StatusLoading {
		return false
	}
	c.authState.Status = StatusLoading
	c.authState.Error = ""
	return true
}

func (c *Controller) finishAuth(session application.Session, err error, fallback string) {
	c.setAuth(func(s *AuthState) {
		if err != nil {
			s.Status = StatusFailed
			s.Error = describe(err, "", fallback)
			return
		}
		s.Status = StatusSucceeded
		s.Error = ""
		s.User = session.User
		s.IsLoggedIn = session.IsLoggedIn
	})
}

// Restore resolves the persisted token into a session. A missing or unknown
// token leaves the client logged out without an error.
func (c *Controller) Restore(ctx context.Context) *Pending {
	if !c.beginAuth() {
		return resolved(ErrBusy)
	}
	return c.dispatch(ctx, "restore", func(ctx context.Context) error {
		session, ok := c.sessions.RestoreSession(ctx, "")
		c.setAuth(func(s *AuthState) {
			s.Status = StatusSucceeded
			s.User = session.User
			s.IsLoggedIn = ok
		})
		return nil
	})
}

// Login checks credentials and, on success, logs the user in.
func (c *Controller) Login(ctx context.Context, email, password string) *Pending {
	if !c.beginAuth() {
		return resolved(ErrBusy)
	}
	return c.dispatch(ctx, "login", func(ctx context.Context) error {
		session, err := c.sessions.Login(ctx, email, password)
		c.finishAuth(session, err, msgLoginFailed)
		return err
	})
}

// Register creates an account and logs it in. Mismatched passwords fail
// without dispatching.
func (c *Controller) Register(ctx context.Context, params application.RegisterParams) *Pending {
	if params.Password != params.ConfirmPassword {
		busy := false
		c.setAuth(func(s *AuthState) {
			if s.Status == StatusLoading {
				busy = true
				return
			}
			s.Status = StatusFailed
			s.Error = msgPasswordMismatch
		})
		if busy {
			return resolved(ErrBusy)
		}
		return resolved(application.ErrPasswordMismatch)
	}
	if !c.beginAuth() {
		return resolved(ErrBusy)
	}
	return c.dispatch(ctx, "register", func(ctx context.Context) error {
		session, err := c.sessions.Register(ctx, params)
		c.finishAuth(session, err, msgRegisterFailed)
		return err
	})
}

// Logout ends the session. The auth slice is cleared even when removing the
// persisted token fails.
func (c *Controller) Logout(ctx context.Context) *Pending {
	if !c.beginAuth() {
		return resolved(ErrBusy)
	}
	return c.dispatch(ctx, "logout", func(ctx context.Context) error {
		err := c.sessions.Logout(ctx)
		c.setAuth(func(s *AuthState) {
			s.User = application.User{}
			s.IsLoggedIn = false
			if err != nil {
				s.Status = StatusFailed
				s.Error = describe(err, "", msgOperationFailed)
				return
			}
			s.Status = StatusSucceeded
			s.Error = ""
		})
		return err
	})
}
