package domain

import "time"

// QuestionView is a question as served to clients.
type QuestionView struct {
	ID            string    `json:"id"`
	Statement     string    `json:"statement"`
	Alternatives  []string  `json:"alternatives"`
	CorrectAnswer int       `json:"correct_answer"`
	Subject       string    `json:"subject"`
	Author        string    `json:"author,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// AnswerRequest submits one answer. SelectedAnswer is a pointer so that 0
// passes the required check.
type AnswerRequest struct {
	QuestionID     string `json:"question_id" binding:"required"`
	SelectedAnswer *int   `json:"selected_answer" binding:"required"`
}

// AnswerResult reports whether a submitted answer was correct.
type AnswerResult struct {
	ID            string `json:"id"`
	IsCorrect     bool   `json:"is_correct"`
	CorrectAnswer int    `json:"correct_answer"`
}

// Flashcard is one past answer with its question.
type Flashcard struct {
	ID             string       `json:"id"`
	Question       QuestionView `json:"question"`
	SelectedAnswer int          `json:"selected_answer"`
	IsCorrect      bool         `json:"is_correct"`
	AnsweredAt     time.Time    `json:"answered_at"`
}

// UserStats summarizes a user's answers. Accuracy is a percentage.
type UserStats struct {
	TotalAnswered  int64   `json:"total_answered"`
	CorrectAnswers int64   `json:"correct_answers"`
	Accuracy       float64 `json:"accuracy"`
	TotalQuestions int64   `json:"total_questions"`
}

// QuestionInput creates or replaces a question.
type QuestionInput struct {
	Statement     string   `json:"statement" binding:"required"`
	Alternatives  []string `json:"alternatives" binding:"required"`
	CorrectAnswer *int     `json:"correct_answer" binding:"required"`
	Subject       string   `json:"subject" binding:"required"`
}

// UserInput creates or updates a user. Password is required on create and
// ignored on update.
type UserInput struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password"`
	Role     Role   `json:"role" binding:"required"`
}

// UserView is a user as listed to administrators.
type UserView struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Username    string     `json:"username"`
	Role        Role       `json:"role"`
	LastLogin   *time.Time `json:"last_login"`
	CreatedAt   time.Time  `json:"created_at"`
	AnswerCount int64      `json:"answer_count"`
}

// ClearedSessions reports how many session rows an admin action removed.
type ClearedSessions struct {
	Deleted int64 `json:"deleted"`
}
