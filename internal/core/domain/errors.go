package domain

import "errors"

// Repository-level conditions the logic layer needs to tell apart from
// generic storage failures.
var (
	// ErrSessionActive is returned by SessionRepository.Issue when another
	// unexpired session already owns the user's row.
	ErrSessionActive = errors.New("session already active")

	// ErrDuplicate indicates a unique constraint violation.
	ErrDuplicate = errors.New("duplicate record")
)
