package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/duynhne/quizcards-service/internal/core/dbtest"
	"github.com/duynhne/quizcards-service/internal/core/domain"
	"github.com/duynhne/quizcards-service/internal/core/repository"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func createUser(t *testing.T, db *gorm.DB, username string, role domain.Role) *domain.User {
	t.Helper()
	u := &domain.User{
		ID:           uuid.NewString(),
		Email:        username + "@example.com",
		Username:     username,
		PasswordHash: "x",
		Role:         role,
	}
	require.NoError(t, repository.NewUserRepository(db).Create(context.Background(), u))
	return u
}

func createQuestion(t *testing.T, db *gorm.DB, author string, statement string, createdAt time.Time) *domain.Question {
	t.Helper()
	q := &domain.Question{
		ID:            uuid.NewString(),
		Statement:     statement,
		Alternatives:  []string{"a", "b", "c", "d"},
		CorrectAnswer: 2,
		Subject:       "General",
		CreatedBy:     author,
		CreatedAt:     createdAt,
	}
	require.NoError(t, repository.NewQuestionRepository(db).Create(context.Background(), q))
	return q
}

func TestUserRepository_FindByLogin(t *testing.T) {
	db := dbtest.New(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()
	alice := createUser(t, db, "alice", domain.RoleCommon)

	tests := []struct {
		name  string
		login string
		found bool
	}{
		{"by email", "alice@example.com", true},
		{"by username", "alice", true},
		{"unknown", "bob", false},
		{"case sensitive", "ALICE", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := repo.FindByLogin(ctx, tt.login)
			require.NoError(t, err)
			if !tt.found {
				assert.Nil(t, u)
				return
			}
			require.NotNil(t, u)
			assert.Equal(t, alice.ID, u.ID)
		})
	}
}

func TestUserRepository_CreateDuplicate(t *testing.T) {
	db := dbtest.New(t)
	repo := repository.NewUserRepository(db)
	createUser(t, db, "alice", domain.RoleCommon)

	err := repo.Create(context.Background(), &domain.User{
		ID:           uuid.NewString(),
		Email:        "alice@example.com",
		Username:     "other",
		PasswordHash: "x",
		Role:         domain.RoleCommon,
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestUserRepository_ExistsExcludesSelf(t *testing.T) {
	db := dbtest.New(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()
	alice := createUser(t, db, "alice", domain.RoleCommon)

	exists, err := repo.ExistsByEmailOrUsername(ctx, "alice@example.com", "whatever", "")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByEmailOrUsername(ctx, "alice@example.com", "alice", alice.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUserRepository_UpdateProfile(t *testing.T) {
	db := dbtest.New(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()
	alice := createUser(t, db, "alice", domain.RoleCommon)

	ok, err := repo.UpdateProfile(ctx, alice.ID, "a@new.io", "alice2", domain.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@new.io", got.Email)
	assert.Equal(t, "alice2", got.Username)
	assert.Equal(t, domain.RoleAdmin, got.Role)

	ok, err = repo.UpdateProfile(ctx, uuid.NewString(), "x@y.z", "nobody", domain.RoleCommon)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUserRepository_ListCountsAnswers(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	admin := createUser(t, db, "admin", domain.RoleAdmin)
	alice := createUser(t, db, "alice", domain.RoleCommon)
	q1 := createQuestion(t, db, admin.ID, "Q1", t0)
	q2 := createQuestion(t, db, admin.ID, "Q2", t0.Add(time.Minute))

	answers := repository.NewAnswerRepository(db)
	for _, q := range []*domain.Question{q1, q2} {
		require.NoError(t, answers.Create(ctx, &domain.Answer{
			ID: uuid.NewString(), UserID: alice.ID, QuestionID: q.ID, SelectedAnswer: 2, IsCorrect: true, AnsweredAt: t0,
		}))
	}

	rows, err := repository.NewUserRepository(db).List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	counts := map[string]int64{}
	for _, r := range rows {
		counts[r.Username] = r.AnswerCount
	}
	assert.Equal(t, int64(2), counts["alice"])
	assert.Equal(t, int64(0), counts["admin"])
}

func TestUserRepository_DeleteCascades(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	admin := createUser(t, db, "admin", domain.RoleAdmin)
	alice := createUser(t, db, "alice", domain.RoleCommon)
	q := createQuestion(t, db, admin.ID, "Q1", t0)

	require.NoError(t, repository.NewAnswerRepository(db).Create(ctx, &domain.Answer{
		ID: uuid.NewString(), UserID: alice.ID, QuestionID: q.ID, SelectedAnswer: 1, AnsweredAt: t0,
	}))
	sessions := repository.NewSessionRepository(db)
	require.NoError(t, sessions.Issue(ctx, admin.ID, "tok-admin", t0, t0.Add(10*time.Minute)))

	users := repository.NewUserRepository(db)
	ok, err := users.Delete(ctx, admin.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	var n int64
	require.NoError(t, db.Model(&domain.Question{}).Count(&n).Error)
	assert.Zero(t, n, "authored questions removed")
	require.NoError(t, db.Model(&domain.Answer{}).Count(&n).Error)
	assert.Zero(t, n, "answers to authored questions removed")

	s, err := sessions.Get(ctx, admin.ID)
	require.NoError(t, err)
	assert.Nil(t, s)

	ok, err = users.Delete(ctx, admin.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSessionRepository_IssueRespectsLiveRow(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	alice := createUser(t, db, "alice", domain.RoleCommon)
	repo := repository.NewSessionRepository(db)
	ttl := 10 * time.Minute

	require.NoError(t, repo.Issue(ctx, alice.ID, "tok-1", t0, t0.Add(ttl)))

	// Still live one minute later.
	err := repo.Issue(ctx, alice.ID, "tok-2", t0.Add(time.Minute), t0.Add(time.Minute+ttl))
	assert.ErrorIs(t, err, domain.ErrSessionActive)

	s, err := repo.Get(ctx, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "tok-1", s.Token)

	// Expired rows are overwritten in place.
	later := t0.Add(11 * time.Minute)
	require.NoError(t, repo.Issue(ctx, alice.ID, "tok-3", later, later.Add(ttl)))

	s, err = repo.Get(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "tok-3", s.Token)
	assert.True(t, s.ExpiresAt.Equal(later.Add(ttl)))

	var count int64
	require.NoError(t, db.Model(&domain.Session{}).Where("user_id = ?", alice.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSessionRepository_IssueAtExactExpiry(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	alice := createUser(t, db, "alice", domain.RoleCommon)
	repo := repository.NewSessionRepository(db)

	require.NoError(t, repo.Issue(ctx, alice.ID, "tok-1", t0, t0.Add(time.Minute)))
	assert.NoError(t, repo.Issue(ctx, alice.ID, "tok-2", t0.Add(time.Minute), t0.Add(2*time.Minute)))
}

func TestSessionRepository_IssueStampsLastLogin(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	alice := createUser(t, db, "alice", domain.RoleCommon)

	require.NoError(t, repository.NewSessionRepository(db).Issue(ctx, alice.ID, "tok", t0, t0.Add(time.Minute)))

	got, err := repository.NewUserRepository(db).GetByID(ctx, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLogin)
	assert.True(t, got.LastLogin.Equal(t0))
}

func TestSessionRepository_IssueUnknownUserRollsBack(t *testing.T) {
	db := dbtest.New(t)
	repo := repository.NewSessionRepository(db)

	err := repo.Issue(context.Background(), uuid.NewString(), "tok", t0, t0.Add(time.Minute))
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&domain.Session{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSessionRepository_Delete(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	alice := createUser(t, db, "alice", domain.RoleCommon)
	bob := createUser(t, db, "bob", domain.RoleCommon)
	repo := repository.NewSessionRepository(db)

	require.NoError(t, repo.Issue(ctx, alice.ID, "tok-a", t0, t0.Add(time.Minute)))
	require.NoError(t, repo.Issue(ctx, bob.ID, "tok-b", t0, t0.Add(time.Minute)))

	n, err := repo.Delete(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.Delete(ctx, alice.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = repo.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestQuestionRepository_ListUnanswered(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	admin := createUser(t, db, "admin", domain.RoleAdmin)
	alice := createUser(t, db, "alice", domain.RoleCommon)
	newer := createQuestion(t, db, admin.ID, "newer", t0.Add(time.Hour))
	older := createQuestion(t, db, admin.ID, "older", t0)
	answered := createQuestion(t, db, admin.ID, "answered", t0.Add(time.Minute))

	require.NoError(t, repository.NewAnswerRepository(db).Create(ctx, &domain.Answer{
		ID: uuid.NewString(), UserID: alice.ID, QuestionID: answered.ID, SelectedAnswer: 0, AnsweredAt: t0,
	}))

	got, err := repository.NewQuestionRepository(db).ListUnanswered(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, older.ID, got[0].ID)
	assert.Equal(t, newer.ID, got[1].ID)
	assert.Equal(t, []string{"a", "b", "c", "d"}, got[0].Alternatives)
}

func TestQuestionRepository_UpdateAndDelete(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	admin := createUser(t, db, "admin", domain.RoleAdmin)
	q := createQuestion(t, db, admin.ID, "Q", t0)
	repo := repository.NewQuestionRepository(db)

	ok, err := repo.Update(ctx, &domain.Question{
		ID:            q.ID,
		Statement:     "Q edited",
		Alternatives:  []string{"w", "x", "y", "z", "v"},
		CorrectAnswer: 4,
		Subject:       "Math",
	})
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.GetByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, "Q edited", got.Statement)
	assert.Equal(t, 4, got.CorrectAnswer)
	assert.Len(t, got.Alternatives, 5)
	assert.Equal(t, admin.ID, got.CreatedBy)
	assert.Equal(t, "admin", got.Author.Username)

	require.NoError(t, repository.NewAnswerRepository(db).Create(ctx, &domain.Answer{
		ID: uuid.NewString(), UserID: admin.ID, QuestionID: q.ID, SelectedAnswer: 4, IsCorrect: true, AnsweredAt: t0,
	}))

	ok, err = repo.Delete(ctx, q.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	var n int64
	require.NoError(t, db.Model(&domain.Answer{}).Count(&n).Error)
	assert.Zero(t, n)

	got, err = repo.GetByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	ok, err = repo.Update(ctx, &domain.Question{ID: q.ID, Statement: "gone", Alternatives: []string{"a"}, Subject: "x"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestQuestionRepository_ExistsAndCount(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	admin := createUser(t, db, "admin", domain.RoleAdmin)
	createQuestion(t, db, admin.ID, "What is 2+2?", t0)
	repo := repository.NewQuestionRepository(db)

	exists, err := repo.ExistsByStatement(ctx, "What is 2+2?")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByStatement(ctx, "What is 3+3?")
	require.NoError(t, err)
	assert.False(t, exists)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestAnswerRepository(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()
	admin := createUser(t, db, "admin", domain.RoleAdmin)
	alice := createUser(t, db, "alice", domain.RoleCommon)
	q1 := createQuestion(t, db, admin.ID, "Q1", t0)
	q2 := createQuestion(t, db, admin.ID, "Q2", t0)
	q3 := createQuestion(t, db, admin.ID, "Q3", t0)
	repo := repository.NewAnswerRepository(db)

	total, correct, err := repo.Stats(ctx, alice.ID)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Zero(t, correct)

	for i, q := range []*domain.Question{q1, q2, q3} {
		require.NoError(t, repo.Create(ctx, &domain.Answer{
			ID:             uuid.NewString(),
			UserID:         alice.ID,
			QuestionID:     q.ID,
			SelectedAnswer: i,
			IsCorrect:      i == 2,
			AnsweredAt:     t0.Add(time.Duration(i) * time.Minute),
		}))
	}

	err = repo.Create(ctx, &domain.Answer{
		ID: uuid.NewString(), UserID: alice.ID, QuestionID: q1.ID, SelectedAnswer: 2, AnsweredAt: t0,
	})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	exists, err := repo.Exists(ctx, alice.ID, q1.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	total, correct, err = repo.Stats(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, int64(1), correct)

	list, err := repo.ListByUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, q3.ID, list[0].QuestionID, "newest first")
	assert.Equal(t, "Q3", list[0].Question.Statement)
}
