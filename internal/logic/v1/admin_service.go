package v1

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/quizcards-service/internal/core/domain"
	"github.com/duynhne/quizcards-service/internal/events"
	"github.com/duynhne/quizcards-service/internal/logger"
	"github.com/duynhne/quizcards-service/middleware"
)

// minAlternatives is the smallest answer set a question may have.
const minAlternatives = 4

// AdminService manages the question bank, the user roster and sessions.
// Callers must already have checked the ADMIN role.
type AdminService struct {
	users     domain.UserRepository
	sessions  domain.SessionRepository
	questions domain.QuestionRepository
	events    events.Publisher
	now       func() time.Time
}

func NewAdminService(users domain.UserRepository, sessions domain.SessionRepository, questions domain.QuestionRepository, publisher events.Publisher) *AdminService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &AdminService{
		users:     users,
		sessions:  sessions,
		questions: questions,
		events:    publisher,
		now:       time.Now,
	}
}

func (s *AdminService) ListQuestions(ctx context.Context) ([]domain.QuestionView, error) {
	ctx, span := middleware.StartSpan(ctx, "admin.list_questions", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	rows, err := s.questions.ListWithAuthor(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list questions: %w", err)
	}
	out := make([]domain.QuestionView, 0, len(rows))
	for i := range rows {
		out = append(out, questionView(&rows[i]))
	}
	return out, nil
}

// CreateQuestion adds a question authored by authorID.
func (s *AdminService) CreateQuestion(ctx context.Context, authorID string, in domain.QuestionInput) (*domain.QuestionView, error) {
	ctx, span := middleware.StartSpan(ctx, "admin.create_question", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("user.id", authorID),
	))
	defer span.End()

	if err := validateQuestion(in); err != nil {
		return nil, err
	}

	q := &domain.Question{
		ID:            uuid.NewString(),
		Statement:     strings.TrimSpace(in.Statement),
		Alternatives:  in.Alternatives,
		CorrectAnswer: *in.CorrectAnswer,
		Subject:       strings.TrimSpace(in.Subject),
		CreatedBy:     authorID,
	}
	if err := s.questions.Create(ctx, q); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("create question: %w", err)
	}
	return s.loadQuestion(ctx, q.ID)
}

// UpdateQuestion replaces the content of question id. The author is kept.
func (s *AdminService) UpdateQuestion(ctx context.Context, id string, in domain.QuestionInput) (*domain.QuestionView, error) {
	ctx, span := middleware.StartSpan(ctx, "admin.update_question", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("question.id", id),
	))
	defer span.End()

	if err := validateQuestion(in); err != nil {
		return nil, err
	}

	ok, err := s.questions.Update(ctx, &domain.Question{
		ID:            id,
		Statement:     strings.TrimSpace(in.Statement),
		Alternatives:  in.Alternatives,
		CorrectAnswer: *in.CorrectAnswer,
		Subject:       strings.TrimSpace(in.Subject),
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("update question %s: %w", id, err)
	}
	if !ok {
		return nil, fmt.Errorf("question %s: %w", id, ErrNotFound)
	}
	return s.loadQuestion(ctx, id)
}

// DeleteQuestion removes question id and every answer to it.
func (s *AdminService) DeleteQuestion(ctx context.Context, id string) error {
	ctx, span := middleware.StartSpan(ctx, "admin.delete_question", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("question.id", id),
	))
	defer span.End()

	ok, err := s.questions.Delete(ctx, id)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("delete question %s: %w", id, err)
	}
	if !ok {
		return fmt.Errorf("question %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *AdminService) loadQuestion(ctx context.Context, id string) (*domain.QuestionView, error) {
	q, err := s.questions.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload question %s: %w", id, err)
	}
	if q == nil {
		return nil, fmt.Errorf("question %s: %w", id, ErrNotFound)
	}
	view := questionView(q)
	return &view, nil
}

func validateQuestion(in domain.QuestionInput) error {
	if strings.TrimSpace(in.Statement) == "" || strings.TrimSpace(in.Subject) == "" || in.CorrectAnswer == nil {
		return fmt.Errorf("missing required fields: %w", ErrValidation)
	}
	if len(in.Alternatives) < minAlternatives {
		return fmt.Errorf("must provide at least %d alternatives: %w", minAlternatives, ErrValidation)
	}
	for i, alt := range in.Alternatives {
		if strings.TrimSpace(alt) == "" {
			return fmt.Errorf("alternative %d is empty: %w", i, ErrValidation)
		}
	}
	if *in.CorrectAnswer < 0 || *in.CorrectAnswer >= len(in.Alternatives) {
		return fmt.Errorf("invalid correct answer index %d: %w", *in.CorrectAnswer, ErrValidation)
	}
	return nil
}

// ListUsers returns every user with its answer count, newest first.
func (s *AdminService) ListUsers(ctx context.Context) ([]domain.UserView, error) {
	ctx, span := middleware.StartSpan(ctx, "admin.list_users", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	rows, err := s.users.List(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]domain.UserView, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.UserView{
			ID:          r.ID,
			Email:       r.Email,
			Username:    r.Username,
			Role:        r.Role,
			LastLogin:   r.LastLogin,
			CreatedAt:   r.CreatedAt,
			AnswerCount: r.AnswerCount,
		})
	}
	return out, nil
}

// CreateUser adds a user with a bcrypt-hashed password.
func (s *AdminService) CreateUser(ctx context.Context, in domain.UserInput) (*domain.UserView, error) {
	ctx, span := middleware.StartSpan(ctx, "admin.create_user", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("username", in.Username),
	))
	defer span.End()

	if err := validateUser(in); err != nil {
		return nil, err
	}
	if in.Password == "" {
		return nil, fmt.Errorf("password is required: %w", ErrValidation)
	}

	exists, err := s.users.ExistsByEmailOrUsername(ctx, in.Email, in.Username, "")
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("create user %q: %w", in.Username, ErrUserExists)
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	u := &domain.User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		Username:     in.Username,
		PasswordHash: hash,
		Role:         in.Role,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, fmt.Errorf("create user %q: %w", in.Username, ErrUserExists)
		}
		span.RecordError(err)
		return nil, fmt.Errorf("create user: %w", err)
	}

	return &domain.UserView{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}, nil
}

// UpdateUser changes email, username and role of user id. The new email and
// username must not belong to any other user. A role change revokes the
// user's session.
func (s *AdminService) UpdateUser(ctx context.Context, actorID, id string, in domain.UserInput) (*domain.UserView, error) {
	ctx, span := middleware.StartSpan(ctx, "admin.update_user", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("user.id", id),
	))
	defer span.End()

	if err := validateUser(in); err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsByEmailOrUsername(ctx, in.Email, in.Username, id)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("update user %s: %w", id, ErrUserExists)
	}

	prev, err := s.users.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("load user %s: %w", id, err)
	}
	if prev == nil {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}

	ok, err := s.users.UpdateProfile(ctx, id, in.Email, in.Username, in.Role)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, fmt.Errorf("update user %s: %w", id, ErrUserExists)
		}
		span.RecordError(err)
		return nil, fmt.Errorf("update user %s: %w", id, err)
	}
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}

	if prev.Role != in.Role {
		n, err := s.sessions.Delete(ctx, id)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("revoke session of %s: %w", id, err)
		}
		span.SetAttributes(attribute.Int64("sessions.deleted", n))
		if n > 0 {
			s.publishCleared(ctx, actorID, id, n)
		}
	}

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload user %s: %w", id, err)
	}
	if u == nil {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return &domain.UserView{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		Role:      u.Role,
		LastLogin: u.LastLogin,
		CreatedAt: u.CreatedAt,
	}, nil
}

// DeleteUser removes user id with its answers, authored questions and
// session. Administrators cannot delete themselves.
func (s *AdminService) DeleteUser(ctx context.Context, actorID, id string) error {
	ctx, span := middleware.StartSpan(ctx, "admin.delete_user", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("user.id", id),
	))
	defer span.End()

	if actorID == id {
		return fmt.Errorf("delete user %s: %w", id, ErrSelfDelete)
	}

	ok, err := s.users.Delete(ctx, id)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	if !ok {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return nil
}

var validate = validator.New()

func validateUser(in domain.UserInput) error {
	if strings.TrimSpace(in.Email) == "" || strings.TrimSpace(in.Username) == "" {
		return fmt.Errorf("missing required fields: %w", ErrValidation)
	}
	if err := validate.Var(in.Email, "email"); err != nil {
		return fmt.Errorf("invalid email %q: %w", in.Email, ErrValidation)
	}
	if !in.Role.Valid() {
		return fmt.Errorf("invalid role %q: %w", in.Role, ErrValidation)
	}
	return nil
}

// ClearUserSession deletes the session row of userID so the user can log in
// again immediately.
func (s *AdminService) ClearUserSession(ctx context.Context, actorID, userID string) (int64, error) {
	ctx, span := middleware.StartSpan(ctx, "admin.clear_user_session", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("user.id", userID),
	))
	defer span.End()

	n, err := s.sessions.Delete(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("clear session of %s: %w", userID, err)
	}
	s.publishCleared(ctx, actorID, userID, n)
	return n, nil
}

// ClearAllSessions deletes every session row.
func (s *AdminService) ClearAllSessions(ctx context.Context, actorID string) (int64, error) {
	ctx, span := middleware.StartSpan(ctx, "admin.clear_sessions", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	n, err := s.sessions.DeleteAll(ctx)
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("clear sessions: %w", err)
	}
	span.SetAttributes(attribute.Int64("sessions.deleted", n))
	s.publishCleared(ctx, actorID, "", n)
	return n, nil
}

func (s *AdminService) publishCleared(ctx context.Context, actorID, userID string, n int64) {
	err := s.events.Publish(ctx, events.SessionsCleared, events.SessionsClearedEvent{
		ActorID: actorID,
		UserID:  userID,
		Count:   n,
		At:      s.now().UTC(),
	})
	if err != nil {
		logger.FromContext(ctx).Warn().Err(err).Msg("Event publish failed")
	}
}
