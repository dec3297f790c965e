package v1

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/duynhne/quizcards-service/internal/core/domain"
)

// SeedUser is a fixture account.
type SeedUser struct {
	Email    string
	Username string
	Password string
	Role     domain.Role
}

// SeedData is the fixture set loaded by the seed command. Questions are
// authored by the first ADMIN in Users.
type SeedData struct {
	Users     []SeedUser
	Questions []domain.QuestionInput
}

func intPtr(v int) *int { return &v }

// DefaultSeed is the development fixture set.
var DefaultSeed = SeedData{
	Users: []SeedUser{
		{Email: "admin@example.com", Username: "admin", Password: "admin123", Role: domain.RoleAdmin},
		{Email: "user@example.com", Username: "student", Password: "user123", Role: domain.RoleCommon},
	},
	Questions: []domain.QuestionInput{
		{
			Statement:     "What is the capital of France?",
			Alternatives:  []string{"London", "Berlin", "Paris", "Madrid"},
			CorrectAnswer: intPtr(2),
			Subject:       "Geography",
		},
		{
			Statement:     "Which programming language is known for its use in web development and has a snake as its mascot?",
			Alternatives:  []string{"Java", "Python", "JavaScript", "C++"},
			CorrectAnswer: intPtr(1),
			Subject:       "Programming",
		},
		{
			Statement:     "What is 2 + 2?",
			Alternatives:  []string{"3", "4", "5", "6"},
			CorrectAnswer: intPtr(1),
			Subject:       "Mathematics",
		},
		{
			Statement:     "Who wrote 'Romeo and Juliet'?",
			Alternatives:  []string{"Charles Dickens", "William Shakespeare", "Jane Austen", "Mark Twain"},
			CorrectAnswer: intPtr(1),
			Subject:       "Literature",
		},
		{
			Statement:     "What is the largest planet in our solar system?",
			Alternatives:  []string{"Earth", "Mars", "Jupiter", "Saturn"},
			CorrectAnswer: intPtr(2),
			Subject:       "Astronomy",
		},
	},
}

// SeedResult counts what a seed run created.
type SeedResult struct {
	UsersCreated     int
	QuestionsCreated int
}

// Seed loads data idempotently: existing users (by email or username) are
// left untouched and questions whose statement already exists are skipped.
func Seed(ctx context.Context, users domain.UserRepository, questions domain.QuestionRepository, admin *AdminService, data SeedData) (*SeedResult, error) {
	log := zerolog.Ctx(ctx)
	res := &SeedResult{}

	var authorID string
	for _, su := range data.Users {
		_, err := admin.CreateUser(ctx, domain.UserInput{
			Email:    su.Email,
			Username: su.Username,
			Password: su.Password,
			Role:     su.Role,
		})
		switch {
		case err == nil:
			res.UsersCreated++
			log.Info().Str("email", su.Email).Str("role", string(su.Role)).Msg("Seeded user")
		case errors.Is(err, ErrUserExists):
			log.Debug().Str("email", su.Email).Msg("User already present")
		default:
			return res, fmt.Errorf("seed user %s: %w", su.Email, err)
		}

		if authorID == "" && su.Role == domain.RoleAdmin {
			u, err := users.FindByLogin(ctx, su.Email)
			if err != nil {
				return res, fmt.Errorf("resolve author %s: %w", su.Email, err)
			}
			if u != nil {
				authorID = u.ID
			}
		}
	}

	if len(data.Questions) > 0 && authorID == "" {
		return res, fmt.Errorf("seed questions: no admin author: %w", ErrValidation)
	}

	for _, q := range data.Questions {
		exists, err := questions.ExistsByStatement(ctx, q.Statement)
		if err != nil {
			return res, fmt.Errorf("seed question: %w", err)
		}
		if exists {
			continue
		}
		if _, err := admin.CreateQuestion(ctx, authorID, q); err != nil {
			return res, fmt.Errorf("seed question %q: %w", q.Statement, err)
		}
		res.QuestionsCreated++
	}

	return res, nil
}
