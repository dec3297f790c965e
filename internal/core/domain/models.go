package domain

import "time"

// User is the root identity record.
type User struct {
	ID           string     `gorm:"primaryKey;type:varchar(36)"`
	Email        string     `gorm:"size:255;uniqueIndex;not null"`
	Username     string     `gorm:"size:64;uniqueIndex;not null"`
	PasswordHash string     `gorm:"size:255;not null"`
	Role         Role       `gorm:"type:varchar(16);not null;default:'COMMON'"`
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (User) TableName() string { return "users" }

// Session marks the single live login of a user. UserID is the primary key,
// so a user can never own more than one row.
type Session struct {
	UserID    string    `gorm:"primaryKey;type:varchar(36)"`
	Token     string    `gorm:"size:64;uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (Session) TableName() string { return "sessions" }

// Live reports whether the session is still unexpired at now.
func (s *Session) Live(now time.Time) bool {
	return s.ExpiresAt.After(now)
}

// Question is a multiple-choice item of the question bank.
type Question struct {
	ID            string   `gorm:"primaryKey;type:varchar(36)"`
	Statement     string   `gorm:"type:text;not null"`
	Alternatives  []string `gorm:"type:text;serializer:json;not null"`
	CorrectAnswer int      `gorm:"not null"`
	Subject       string   `gorm:"size:128;index;not null"`
	CreatedBy     string   `gorm:"type:varchar(36);index;not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Author User `gorm:"foreignKey:CreatedBy;constraint:OnDelete:CASCADE"`
}

func (Question) TableName() string { return "questions" }

// Answer is one user's answer to one question; (UserID, QuestionID) is unique.
type Answer struct {
	ID             string    `gorm:"primaryKey;type:varchar(36)"`
	UserID         string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_answers_user_question"`
	QuestionID     string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_answers_user_question;index"`
	SelectedAnswer int       `gorm:"not null"`
	IsCorrect      bool      `gorm:"not null"`
	AnsweredAt     time.Time `gorm:"index;not null"`

	User     User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Question Question `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
}

func (Answer) TableName() string { return "answers" }

// UserSummary is a user row with its answer count, for the admin roster.
type UserSummary struct {
	ID          string
	Email       string
	Username    string
	Role        Role
	LastLogin   *time.Time
	CreatedAt   time.Time
	AnswerCount int64
}
