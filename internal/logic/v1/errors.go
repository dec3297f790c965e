// Package v1 provides the quiz service business logic for API version 1.
//
// Error Handling:
// This package defines sentinel errors for every failure a handler needs to
// tell apart. Services wrap them with context using fmt.Errorf("%w") and
// handlers dispatch on them with errors.Is.
//
// Example Usage:
//
//	if user == nil {
//	    return nil, fmt.Errorf("authenticate %q: %w", login, ErrInvalidCredentials)
//	}
//
// Error Checking (in handlers):
//
//	switch {
//	case errors.Is(err, logicv1.ErrInvalidCredentials):
//	    c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
//	case errors.Is(err, logicv1.ErrConcurrentSession):
//	    c.JSON(http.StatusConflict, gin.H{"error": "User already logged in on another device"})
//	default:
//	    c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
//	}
package v1

import "errors"

// Sentinel errors for authentication and session operations.
var (
	// ErrInvalidCredentials covers both an unknown login and a wrong
	// password. Callers must not be able to tell the two apart.
	// HTTP Status: 401 Unauthorized
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrConcurrentSession indicates the user already holds an unexpired
	// session on another device.
	// HTTP Status: 409 Conflict
	ErrConcurrentSession = errors.New("user already logged in on another device")

	// ErrSessionPersistence indicates the session row could not be written.
	// The login is not reported successful.
	// HTTP Status: 500 Internal Server Error
	ErrSessionPersistence = errors.New("session persistence failed")

	// ErrUnauthenticated indicates a missing, malformed, tampered or expired
	// token, or (in strict mode) a token whose session row is gone.
	// HTTP Status: 401 Unauthorized
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden indicates the caller's role may not use the endpoint.
	// HTTP Status: 403 Forbidden
	ErrForbidden = errors.New("forbidden")
)

// Sentinel errors for quiz and admin operations.
var (
	// HTTP Status: 404 Not Found
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates a malformed request body.
	// HTTP Status: 400 Bad Request
	ErrValidation = errors.New("validation failed")

	// HTTP Status: 409 Conflict
	ErrAlreadyAnswered = errors.New("question already answered")

	// ErrUserExists indicates the email or username is taken.
	// HTTP Status: 409 Conflict
	ErrUserExists = errors.New("user already exists")

	// ErrSelfDelete indicates an administrator tried to delete their own account.
	// HTTP Status: 400 Bad Request
	ErrSelfDelete = errors.New("cannot delete own account")
)
