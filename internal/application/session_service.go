package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/example/room-booking/internal/persistence"
)

// SessionService registers users, checks credentials and tracks the session
// bound to the current client.
type SessionService struct {
	users   UserTable
	tokens  TokenSlot
	params  Argon2idParams
	latency time.Duration
	cache   *sessionCache
	logger  *slog.Logger

	mu      sync.RWMutex
	current Session
}

// NewSessionService constructs a session service with the provided dependencies.
func NewSessionService(users UserTable, tokens TokenSlot, params Argon2idParams) *SessionService {
	return NewSessionServiceWithLogger(users, tokens, params, nil)
}

// NewSessionServiceWithLogger constructs a session service with a specified logger.
func NewSessionServiceWithLogger(users UserTable, tokens TokenSlot, params Argon2idParams, logger *slog.Logger) *SessionService {
	if params.KeyLength == 0 {
		params = DefaultArgon2idParams
	}
	return &SessionService{
		users:  users,
		tokens: tokens,
		params: params,
		cache:  newSessionCache(defaultSessionCacheSize, defaultSessionCacheTTL),
		logger: defaultLogger(logger),
	}
}

// SetLatency sets the simulated round-trip delay applied to every operation.
func (s *SessionService) SetLatency(latency time.Duration) {
	if s != nil {
		s.latency = latency
	}
}

func (s *SessionService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "SessionService", operation, attrs...)
}

// Current returns the active session, which is the zero Session when nobody
// is logged in.
func (s *SessionService) Current() Session {
	if s == nil {
		return Session{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Register appends a new user and logs them in.
func (s *SessionService) Register(ctx context.Context, params RegisterParams) (session Session, err error) {
	if s == nil {
		err = fmt.Errorf("SessionService is nil")
		return
	}

	email := strings.TrimSpace(params.Email)
	logger := s.loggerWith(ctx, "Register", "email", email)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "registration failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("role", session.User.Role).InfoContext(ctx, "user registered")
	}()

	if params.Password != params.ConfirmPassword {
		err = ErrPasswordMismatch
		return
	}

	vErr := &ValidationError{}
	if strings.TrimSpace(params.Name) == "" {
		vErr.add("name", "name is required")
	}
	if email == "" {
		vErr.add("email", "email is required")
	}
	if params.Password == "" {
		vErr.add("password", "password is required")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}
	if s.users == nil {
		err = fmt.Errorf("user table not configured")
		return
	}

	roundTrip(s.latency)

	var users []persistence.UserRecord
	users, err = s.users.Users(ctx)
	if err != nil {
		err = operationFailed(err)
		return
	}
	for _, existing := range users {
		if existing.Email == email {
			err = ErrDuplicateEmail
			return
		}
	}

	role := params.Role
	if role != RoleAdmin {
		role = RoleUser
	}

	var hashed string
	hashed, err = HashPassword(params.Password, s.params)
	if err != nil {
		err = operationFailed(err)
		return
	}

	record := persistence.UserRecord{
		Name:     strings.TrimSpace(params.Name),
		Email:    email,
		Password: hashed,
		Role:     string(role),
	}
	if err = s.users.SaveUsers(ctx, append(users, record)); err != nil {
		err = operationFailed(err)
		return
	}

	session, err = s.establish(ctx, userFromRecord(record))
	return
}

// Login checks an email and password pair. Unknown emails and wrong passwords
// fail with the same ErrInvalidCredentials.
func (s *SessionService) Login(ctx context.Context, email, password string) (session Session, err error) {
	if s == nil {
		err = fmt.Errorf("SessionService is nil")
		return
	}

	email = strings.TrimSpace(email)
	logger := s.loggerWith(ctx, "Login", "email", email)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "login failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("role", session.User.Role).InfoContext(ctx, "login succeeded")
	}()

	if email == "" || password == "" {
		err = ErrInvalidCredentials
		return
	}
	if s.users == nil {
		err = fmt.Errorf("user table not configured")
		return
	}

	roundTrip(s.latency)

	var users []persistence.UserRecord
	users, err = s.users.Users(ctx)
	if err != nil {
		err = operationFailed(err)
		return
	}

	for _, record := range users {
		if record.Email != email {
			continue
		}
		if !CheckPassword(record.Password, password) {
			break
		}
		session, err = s.establish(ctx, userFromRecord(record))
		return
	}

	err = ErrInvalidCredentials
	return
}

// RestoreSession resolves token back to a user and makes that the active
// session. An empty token reads the persisted one. Any failure leaves the
// client logged out and reports false.
func (s *SessionService) RestoreSession(ctx context.Context, token string) (Session, bool) {
	if s == nil {
		return Session{}, false
	}

	logger := s.loggerWith(ctx, "RestoreSession")

	roundTrip(s.latency)

	if token == "" && s.tokens != nil {
		persisted, ok, err := s.tokens.Token(ctx)
		if err != nil {
			logger.WarnContext(ctx, "failed to read persisted token", "error", err)
			return Session{}, false
		}
		if ok {
			token = persisted
		}
	}
	if token == "" {
		logger.DebugContext(ctx, "no session to restore")
		return Session{}, false
	}

	user, ok := s.cache.Get(token)
	if !ok {
		user, ok = s.resolveToken(ctx, logger, token)
		if !ok {
			return Session{}, false
		}
		s.cache.Set(token, user)
	}

	session := Session{Token: token, User: user, IsLoggedIn: true}
	s.setCurrent(session)
	logger.With("email", user.Email).InfoContext(ctx, "session restored")
	return session, true
}

func (s *SessionService) resolveToken(ctx context.Context, logger *slog.Logger, token string) (User, bool) {
	if s.users == nil {
		return User{}, false
	}
	users, err := s.users.Users(ctx)
	if err != nil {
		logger.WarnContext(ctx, "failed to read users", "error", err)
		return User{}, false
	}
	for _, record := range users {
		if DeriveToken(record.Email) == token {
			return userFromRecord(record), true
		}
	}
	logger.InfoContext(ctx, "token does not match any user")
	return User{}, false
}

// Logout clears the active session and the persisted token. Logging out
// without a session is not an error.
func (s *SessionService) Logout(ctx context.Context) (err error) {
	if s == nil {
		return fmt.Errorf("SessionService is nil")
	}

	previous := s.Current()
	logger := s.loggerWith(ctx, "Logout", "email", previous.User.Email)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "logout failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "logged out")
	}()

	roundTrip(s.latency)

	s.setCurrent(Session{})
	s.cache.Invalidate(previous.Token)

	if s.tokens != nil {
		if clearErr := s.tokens.ClearToken(ctx); clearErr != nil {
			err = operationFailed(clearErr)
		}
	}
	return
}

func (s *SessionService) establish(ctx context.Context, user User) (Session, error) {
	session := Session{Token: DeriveToken(user.Email), User: user, IsLoggedIn: true}
	if s.tokens != nil {
		if err := s.tokens.SaveToken(ctx, session.Token); err != nil {
			return Session{}, operationFailed(err)
		}
	}
	s.cache.Set(session.Token, user)
	s.setCurrent(session)
	return session, nil
}

func (s *SessionService) setCurrent(session Session) {
	s.mu.Lock()
	s.current = session
	s.mu.Unlock()
}
