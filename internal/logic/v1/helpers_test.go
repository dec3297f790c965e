package v1

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/duynhne/quizcards-service/internal/core/dbtest"
	"github.com/duynhne/quizcards-service/internal/core/domain"
	"github.com/duynhne/quizcards-service/internal/core/repository"
)

const testSecret = "0123456789abcdef0123456789abcdef"

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// fakeClock is a settable clock shared by the service and the token projector.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// recordingPublisher keeps every published event in memory.
type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(_ context.Context, event string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() {}

func (p *recordingPublisher) Events() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

type testEnv struct {
	db        *gorm.DB
	clock     *fakeClock
	events    *recordingPublisher
	users     *repository.GormUserRepository
	sessions  *repository.GormSessionRepository
	questions *repository.GormQuestionRepository
	answers   *repository.GormAnswerRepository
	tokens    *TokenProjector
	auth      *AuthService
	quiz      *QuizService
	admin     *AdminService
}

func newTestEnv(t *testing.T, strict bool) *testEnv {
	t.Helper()

	db := dbtest.New(t)
	env := &testEnv{
		db:        db,
		clock:     &fakeClock{now: t0},
		events:    &recordingPublisher{},
		users:     repository.NewUserRepository(db),
		sessions:  repository.NewSessionRepository(db),
		questions: repository.NewQuestionRepository(db),
		answers:   repository.NewAnswerRepository(db),
	}
	env.tokens = NewTokenProjector([]byte(testSecret), 10*time.Minute, WithTokenClock(env.clock.Now))
	env.auth = NewAuthService(env.users, env.sessions, env.tokens,
		WithClock(env.clock.Now),
		WithEvents(env.events),
		WithStrictSession(strict),
	)
	env.quiz = NewQuizService(env.questions, env.answers, env.events)
	env.quiz.now = env.clock.Now
	env.admin = NewAdminService(env.users, env.sessions, env.questions, env.events)
	env.admin.now = env.clock.Now
	return env
}

func (e *testEnv) createUser(t *testing.T, username, password string, role domain.Role) *domain.User {
	t.Helper()
	hash, err := HashPassword(password)
	require.NoError(t, err)
	u := &domain.User{
		ID:           uuid.NewString(),
		Email:        username + "@example.com",
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	}
	require.NoError(t, e.users.Create(context.Background(), u))
	return u
}

func (e *testEnv) createQuestion(t *testing.T, authorID, statement string, correct int) *domain.QuestionView {
	t.Helper()
	q, err := e.admin.CreateQuestion(context.Background(), authorID, domain.QuestionInput{
		Statement:     statement,
		Alternatives:  []string{"a", "b", "c", "d"},
		CorrectAnswer: &correct,
		Subject:       "General",
	})
	require.NoError(t, err)
	return q
}

func (e *testEnv) sessionCount(t *testing.T, userID string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&domain.Session{}).Where("user_id = ?", userID).Count(&n).Error)
	return n
}

func login(name, password string) domain.LoginRequest {
	return domain.LoginRequest{Login: name, Password: password}
}
