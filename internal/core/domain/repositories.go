package domain

import (
	"context"
	"time"
)

// UserRepository defines the data-access contract for users.
// Lookups return (nil, nil) when nothing matches.
type UserRepository interface {
	// FindByLogin returns the user whose email or username equals login.
	FindByLogin(ctx context.Context, login string) (*User, error)

	GetByID(ctx context.Context, id string) (*User, error)

	// List returns every user with its answer count, newest first.
	List(ctx context.Context) ([]UserSummary, error)

	// ExistsByEmailOrUsername reports whether another user (excluding
	// excludeID, which may be empty) already holds the email or username.
	ExistsByEmailOrUsername(ctx context.Context, email, username, excludeID string) (bool, error)

	Create(ctx context.Context, user *User) error

	// UpdateProfile sets email, username and role. Returns false when the
	// user does not exist.
	UpdateProfile(ctx context.Context, id, email, username string, role Role) (bool, error)

	// Delete removes the user together with its answers, authored questions
	// (and their answers) and session. Returns false when nothing was deleted.
	Delete(ctx context.Context, id string) (bool, error)
}

// SessionRepository defines the data-access contract for the per-user
// session row.
type SessionRepository interface {
	// Get returns the session row of userID, expired or not.
	Get(ctx context.Context, userID string) (*Session, error)

	// Issue writes the user's session row and stamps users.last_login in one
	// transaction. The row is inserted, or overwritten only when the existing
	// row expired at or before issuedAt; otherwise ErrSessionActive.
	Issue(ctx context.Context, userID, token string, issuedAt, expiresAt time.Time) error

	// Delete removes the user's session row, returning the rows affected.
	Delete(ctx context.Context, userID string) (int64, error)

	// DeleteAll removes every session row.
	DeleteAll(ctx context.Context) (int64, error)
}

// QuestionRepository defines the data-access contract for the question bank.
type QuestionRepository interface {
	// ListUnanswered returns questions userID has not answered, oldest first.
	ListUnanswered(ctx context.Context, userID string) ([]Question, error)

	// ListWithAuthor returns every question with its author loaded, newest first.
	ListWithAuthor(ctx context.Context) ([]Question, error)

	GetByID(ctx context.Context, id string) (*Question, error)
	ExistsByStatement(ctx context.Context, statement string) (bool, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, q *Question) error

	// Update replaces statement, alternatives, answer and subject. Returns
	// false when the question does not exist.
	Update(ctx context.Context, q *Question) (bool, error)

	// Delete removes the question and its answers.
	Delete(ctx context.Context, id string) (bool, error)
}

// AnswerRepository defines the data-access contract for user answers.
type AnswerRepository interface {
	// Create stores the answer; ErrDuplicate when the user already answered.
	Create(ctx context.Context, a *Answer) error

	Exists(ctx context.Context, userID, questionID string) (bool, error)

	// ListByUser returns the user's answers with questions loaded, newest first.
	ListByUser(ctx context.Context, userID string) ([]Answer, error)

	// Stats returns how many answers the user gave and how many were correct.
	Stats(ctx context.Context, userID string) (total, correct int64, err error)
}
