package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/duynhne/quizcards-service/internal/core/domain"
	logicv1 "github.com/duynhne/quizcards-service/internal/logic/v1"
	"github.com/duynhne/quizcards-service/middleware"
)

// Handler groups HTTP handlers for the quiz API v1.
// Dependencies are injected via the constructor, no global state.
type Handler struct {
	auth    *logicv1.AuthService
	quiz    *logicv1.QuizService
	admin   *logicv1.AdminService
	limiter middleware.Limiter
}

// HandlerOption customizes a Handler.
type HandlerOption func(*Handler)

// WithLoginLimiter throttles POST /auth/login through l.
func WithLoginLimiter(l middleware.Limiter) HandlerOption {
	return func(h *Handler) { h.limiter = l }
}

// NewHandler creates a new Handler with the given services.
func NewHandler(auth *logicv1.AuthService, quiz *logicv1.QuizService, admin *logicv1.AdminService, opts ...HandlerOption) *Handler {
	h := &Handler{auth: auth, quiz: quiz, admin: admin}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterRoutes registers all API v1 routes on the given router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	loginChain := []gin.HandlerFunc{}
	if h.limiter != nil {
		loginChain = append(loginChain, middleware.LoginRateLimit(h.limiter))
	}
	rg.POST("/auth/login", append(loginChain, h.Login)...)

	authed := rg.Group("", h.RequireSession())
	{
		authed.POST("/auth/logout", h.Logout)
		authed.GET("/auth/session", h.GetSession)

		authed.GET("/questions", h.ListQuestions)
		authed.POST("/questions/answer", h.SubmitAnswer)
		authed.GET("/flashcards", h.ListFlashcards)
		authed.GET("/user/stats", h.GetStats)
	}

	admin := authed.Group("/admin", RequireRole(domain.RoleAdmin))
	{
		admin.GET("/questions", h.AdminListQuestions)
		admin.POST("/questions", h.AdminCreateQuestion)
		admin.PUT("/questions/:id", h.AdminUpdateQuestion)
		admin.DELETE("/questions/:id", h.AdminDeleteQuestion)

		admin.GET("/users", h.AdminListUsers)
		admin.POST("/users", h.AdminCreateUser)
		admin.PUT("/users/:id", h.AdminUpdateUser)
		admin.DELETE("/users/:id", h.AdminDeleteUser)

		admin.DELETE("/users/:id/session", h.AdminClearUserSession)
		admin.DELETE("/sessions", h.AdminClearSessions)
	}
}
