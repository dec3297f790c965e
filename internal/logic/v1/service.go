package v1

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/quizcards-service/internal/core/domain"
	"github.com/duynhne/quizcards-service/internal/events"
	"github.com/duynhne/quizcards-service/internal/logger"
	"github.com/duynhne/quizcards-service/middleware"
)

// AuthService implements login, logout and per-request authentication.
// It depends on repository interfaces (injected via constructor) and
// MUST NOT access the database directly.
type AuthService struct {
	users    domain.UserRepository
	sessions domain.SessionRepository
	tokens   *TokenProjector
	events   events.Publisher
	strict   bool
	now      func() time.Time
}

// AuthOption customizes an AuthService.
type AuthOption func(*AuthService)

// WithClock overrides the clock used for issuance and expiry checks.
func WithClock(now func() time.Time) AuthOption {
	return func(s *AuthService) { s.now = now }
}

// WithEvents publishes login and logout events through p.
func WithEvents(p events.Publisher) AuthOption {
	return func(s *AuthService) { s.events = p }
}

// WithStrictSession makes Authenticate require a live session row in
// addition to a valid token.
func WithStrictSession(strict bool) AuthOption {
	return func(s *AuthService) { s.strict = strict }
}

// NewAuthService creates a new AuthService. The session lifetime is the
// token projector's TTL.
func NewAuthService(users domain.UserRepository, sessions domain.SessionRepository, tokens *TokenProjector, opts ...AuthOption) *AuthService {
	s := &AuthService{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		events:   events.NopPublisher{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login verifies credentials, refuses a second live session and issues a
// new session row and signed token.
func (s *AuthService) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.login", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	user, err := s.verifyCredentials(ctx, req.Login, req.Password)
	if err != nil {
		span.SetAttributes(attribute.Bool("auth.success", false))
		span.AddEvent("authentication.failed")
		return nil, err
	}
	span.SetAttributes(attribute.String("user.id", user.ID))

	issuedAt := s.now().UTC().Truncate(time.Second)

	existing, err := s.sessions.Get(ctx, user.ID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("read session of %s: %v: %w", user.ID, err, ErrSessionPersistence)
	}
	if existing != nil && existing.Live(issuedAt) {
		span.AddEvent("session.conflict")
		return nil, fmt.Errorf("login %s: session live until %s: %w",
			user.ID, existing.ExpiresAt.Format(time.RFC3339), ErrConcurrentSession)
	}

	signed, expiresAt, err := s.tokens.Encode(user.ID, user.Role, issuedAt)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("login %s: %v: %w", user.ID, err, ErrSessionPersistence)
	}
	opaque, err := newSessionToken()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("login %s: %v: %w", user.ID, err, ErrSessionPersistence)
	}

	// The write itself re-checks expiry, so a concurrent login that slipped
	// past the read above still loses here.
	if err := s.sessions.Issue(ctx, user.ID, opaque, issuedAt, expiresAt); err != nil {
		if errors.Is(err, domain.ErrSessionActive) {
			span.AddEvent("session.conflict")
			return nil, fmt.Errorf("login %s: %w", user.ID, ErrConcurrentSession)
		}
		span.RecordError(err)
		return nil, fmt.Errorf("login %s: %v: %w", user.ID, err, ErrSessionPersistence)
	}

	s.publish(ctx, events.UserLoggedIn, events.SessionEvent{
		UserID:    user.ID,
		Role:      string(user.Role),
		ExpiresAt: expiresAt,
		At:        issuedAt,
	})

	span.SetAttributes(attribute.Bool("auth.success", true))
	span.AddEvent("user.authenticated")

	return &domain.AuthResponse{
		Token:     signed,
		ExpiresAt: expiresAt,
		User:      sessionUser(user),
	}, nil
}

// verifyCredentials resolves login as an email or username and checks the
// password. Unknown users and wrong passwords produce the same error.
func (s *AuthService) verifyCredentials(ctx context.Context, login, password string) (*domain.User, error) {
	user, err := s.users.FindByLogin(ctx, login)
	if err != nil {
		return nil, fmt.Errorf("lookup %q: %w", login, err)
	}
	if user == nil {
		passwordMatches(string(dummyHash), password)
		return nil, fmt.Errorf("authenticate %q: %w", login, ErrInvalidCredentials)
	}
	if !passwordMatches(user.PasswordHash, password) {
		return nil, fmt.Errorf("authenticate %q: %w", login, ErrInvalidCredentials)
	}
	return user, nil
}

// Logout deletes the caller's session row. The signed token is not revoked;
// in strict mode the missing row rejects it on the next request.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	ctx, span := middleware.StartSpan(ctx, "auth.logout", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("user.id", userID),
	))
	defer span.End()

	n, err := s.sessions.Delete(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("logout %s: %w", userID, err)
	}
	span.SetAttributes(attribute.Int64("sessions.deleted", n))

	s.publish(ctx, events.UserLoggedOut, events.SessionEvent{UserID: userID, At: s.now().UTC()})
	return nil
}

// Authenticate decodes a bearer token into the caller's identity.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.Identity, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.authenticate", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Bool("auth.strict", s.strict),
	))
	defer span.End()

	id, err := s.tokens.Decode(token)
	if err != nil {
		span.SetAttributes(attribute.Bool("session.valid", false))
		return nil, err
	}

	if s.strict {
		row, err := s.sessions.Get(ctx, id.UserID)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("read session of %s: %w", id.UserID, err)
		}
		if row == nil || !row.Live(s.now()) {
			span.SetAttributes(attribute.Bool("session.valid", false))
			return nil, fmt.Errorf("no live session for %s: %w", id.UserID, ErrUnauthenticated)
		}
		// The row and the token share one expiry per login; a mismatch means
		// the token belongs to a session that was replaced.
		if !row.ExpiresAt.Equal(id.ExpiresAt) {
			span.SetAttributes(attribute.Bool("session.valid", false))
			return nil, fmt.Errorf("token of %s is not bound to the current session: %w", id.UserID, ErrUnauthenticated)
		}
	}

	span.SetAttributes(
		attribute.String("user.id", id.UserID),
		attribute.Bool("session.valid", true),
	)
	return id, nil
}

// Session rebuilds the client-facing session view for an authenticated caller.
func (s *AuthService) Session(ctx context.Context, id *domain.Identity) (*domain.SessionView, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.session", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("user.id", id.UserID),
	))
	defer span.End()

	user, err := s.users.GetByID(ctx, id.UserID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("load user %s: %w", id.UserID, err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %s no longer exists: %w", id.UserID, ErrUnauthenticated)
	}

	view := sessionUser(user)
	// The token's role is authoritative for this session.
	view.Role = id.Role
	return &domain.SessionView{User: view, ExpiresAt: id.ExpiresAt}, nil
}

func (s *AuthService) publish(ctx context.Context, event string, payload any) {
	if err := s.events.Publish(ctx, event, payload); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Str("event", event).Msg("Event publish failed")
	}
}

func sessionUser(u *domain.User) domain.SessionUser {
	return domain.SessionUser{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Username,
		Role:  u.Role,
	}
}
