package v1

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/quizcards-service/internal/core/domain"
	logicv1 "github.com/duynhne/quizcards-service/internal/logic/v1"
	"github.com/duynhne/quizcards-service/internal/logger"
	"github.com/duynhne/quizcards-service/middleware"
)

const identityKey = "identity"

// startSpan opens the web-layer span and carries it on the request context.
func startSpan(c *gin.Context) trace.Span {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.FullPath()),
	))
	c.Request = c.Request.WithContext(ctx)
	return span
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", errors.New("authorization header required")
	}
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", errors.New("invalid authorization format")
	}
	return strings.TrimSpace(header[len(prefix):]), nil
}

// RequireSession authenticates the bearer token and stores the caller's
// identity on the context.
func (h *Handler) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		id, err := h.auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			status, body := statusFor(err)
			if status >= http.StatusInternalServerError {
				logger.FromContext(c.Request.Context()).Error().Err(err).Msg("Authentication failed")
			}
			c.AbortWithStatusJSON(status, gin.H{"error": body})
			return
		}

		c.Set(identityKey, id)
		c.Set(middleware.ContextUserIDKey, id.UserID)
		c.Next()
	}
}

// RequireRole admits only callers whose token carries one of roles. It must
// run after RequireSession.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := identityFrom(c)
		if id == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		for _, r := range roles {
			if id.Role == r {
				c.Next()
				return
			}
		}
		status, body := statusFor(logicv1.ErrForbidden)
		c.AbortWithStatusJSON(status, gin.H{"error": body})
	}
}

func identityFrom(c *gin.Context) *domain.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	id, _ := v.(*domain.Identity)
	return id
}

// Login handles POST /api/v1/auth/login.
func (h *Handler) Login(c *gin.Context) {
	span := startSpan(c)
	defer span.End()
	log := logger.FromContext(c.Request.Context())

	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.SetAttributes(attribute.Bool("request.valid", false))
		span.RecordError(err)
		log.Warn().Err(err).Msg("Invalid request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	span.SetAttributes(attribute.Bool("request.valid", true))

	response, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, logicv1.ErrInvalidCredentials):
			middleware.RecordLogin(middleware.LoginInvalidCreds)
		case errors.Is(err, logicv1.ErrConcurrentSession):
			middleware.RecordLogin(middleware.LoginConcurrentSession)
		default:
			middleware.RecordLogin(middleware.LoginError)
		}
		fail(c, span, err, "Login failed")
		return
	}

	middleware.RecordLogin(middleware.LoginSuccess)
	c.Set(middleware.ContextUserIDKey, response.User.ID)
	log.Info().Str("user_id", response.User.ID).Msg("Login successful")
	c.JSON(http.StatusOK, response)
}

// Logout handles POST /api/v1/auth/logout.
func (h *Handler) Logout(c *gin.Context) {
	span := startSpan(c)
	defer span.End()

	id := identityFrom(c)
	if err := h.auth.Logout(c.Request.Context(), id.UserID); err != nil {
		fail(c, span, err, "Logout failed")
		return
	}

	logger.FromContext(c.Request.Context()).Info().Str("user_id", id.UserID).Msg("Logout successful")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetSession handles GET /api/v1/auth/session.
func (h *Handler) GetSession(c *gin.Context) {
	span := startSpan(c)
	defer span.End()

	view, err := h.auth.Session(c.Request.Context(), identityFrom(c))
	if err != nil {
		fail(c, span, err, "Session lookup failed")
		return
	}
	c.JSON(http.StatusOK, view)
}
