package events

import "time"

// SessionEvent is published on login and logout.
type SessionEvent struct {
	UserID    string    `json:"user_id"`
	Role      string    `json:"role,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
	At        time.Time `json:"at"`
}

// SessionsClearedEvent is published when an administrator clears sessions.
// UserID is empty when every session was cleared.
type SessionsClearedEvent struct {
	ActorID string    `json:"actor_id"`
	UserID  string    `json:"user_id,omitempty"`
	Count   int64     `json:"count"`
	At      time.Time `json:"at"`
}

// AnswerEvent is published after an answer is stored.
type AnswerEvent struct {
	UserID     string    `json:"user_id"`
	QuestionID string    `json:"question_id"`
	IsCorrect  bool      `json:"is_correct"`
	At         time.Time `json:"at"`
}
