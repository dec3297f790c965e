package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	logicv1 "github.com/duynhne/quizcards-service/internal/logic/v1"
	"github.com/duynhne/quizcards-service/internal/logger"
)

// statusFor maps a logic error to its HTTP status and client message.
// Invalid credentials never say which part was wrong.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, logicv1.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials"
	case errors.Is(err, logicv1.ErrConcurrentSession):
		return http.StatusConflict, "User already logged in on another device"
	case errors.Is(err, logicv1.ErrUnauthenticated):
		return http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, logicv1.ErrForbidden):
		return http.StatusForbidden, "Forbidden"
	case errors.Is(err, logicv1.ErrNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, logicv1.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, logicv1.ErrAlreadyAnswered):
		return http.StatusConflict, "Question already answered"
	case errors.Is(err, logicv1.ErrUserExists):
		return http.StatusConflict, "Email or username already exists"
	case errors.Is(err, logicv1.ErrSelfDelete):
		return http.StatusBadRequest, "Cannot delete your own account"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// fail logs err, records it on span and writes the mapped error response.
func fail(c *gin.Context, span trace.Span, err error, msg string) {
	span.RecordError(err)
	status, body := statusFor(err)

	log := logger.FromContext(c.Request.Context())
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Msg(msg)
	} else {
		log.Warn().Err(err).Int("status", status).Msg(msg)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": body})
}
