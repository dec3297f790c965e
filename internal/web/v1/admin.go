package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/duynhne/quizcards-service/internal/core/domain"
	"github.com/duynhne/quizcards-service/internal/logger"
)

func (h *Handler) AdminListQuestions(c *gin.Context) {
	span := startSpan(c)
	defer span.End()

	questions, err := h.admin.ListQuestions(c.Request.Context())
	if err != nil {
		fail(c, span, err, "List questions failed")
		return
	}
	c.JSON(http.StatusOK, questions)
}

func (h *Handler) AdminCreateQuestion(c *gin.Context) {
	span := startSpan(c)
	defer span.End()

	var in domain.QuestionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	q, err := h.admin.CreateQuestion(c.Request.Context(), identityFrom(c).UserID, in)
	if err != nil {
		fail(c, span, err, "Create question failed")
		return
	}
	logger.FromContext(c.Request.Context()).Info().Str("question_id", q.ID).Msg("Question created")
	c.JSON(http.StatusCreated, q)
}

func (h *Handler) AdminUpdateQuestion(c *gin.Context) {
	span := startSpan(c)
	defer span.End()

	var in domain.QuestionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	q, err := h.admin.UpdateQuestion(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		fail(c, span, err, "Update question failed")
		return
	}
	c.JSON(http.StatusOK, q)
}

func (h *Handler) AdminDeleteQuestion(c *gin.Context) {
	span := startSpan(c)
	defer span.End()

	if err := h.admin.DeleteQuestion(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, span, err, "Delete question failed")
		return
	}
	logger.FromContext(c.Request.Context()).Info().Str("question_id", c.Param("id")).Msg("Question deleted")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) AdminListUsers(c *gin.Context) {
	span := startSpan(c)
	defer span.End()

	users, err := h.admin.ListUsers(c.Request.Context())
	if err != nil {
		fail(c, span, err, "List users failed")
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) AdminCreateUser(c *gin.Context) {
	span := startSpan(c)
	defer span.End()

	var in domain.UserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	u, err := h.admin.CreateUser(c.Request.Context(), in)
	if err != nil {
		fail(c, span, err, "Create user failed")
		return
	}
	logger.FromContext(c.Request.Context()).Info().Str("created_user_id", u.ID).Msg("User created")
	c.JSON(http.StatusCreated, u)
}

func (h *Handler) AdminUpdateUser(c *gin.Context) {
	span := startSpan(c)
	defer span.End()

	var in domain.UserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	u, err := h.admin.UpdateUser(c.Request.Context(), identityFrom(c).UserID, c.Param("id"), in)
	if err != nil {
		fail(c, span, err, "Update user failed")
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) AdminDeleteUser(c *gin.Context) {
	span := startSpan(c)
	defer span.End()

	if err := h.admin.DeleteUser(c.Request.Context(), identityFrom(c).UserID, c.Param("id")); err != nil {
		fail(c, span, err, "Delete user failed")
		return
	}
	logger.FromContext(c.Request.Context()).Info().Str("deleted_user_id", c.Param("id")).Msg("User deleted")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// AdminClearUserSession handles DELETE /api/v1/admin/users/:id/session.
func (h *Handler) AdminClearUserSession(c *gin.Context) {
	span := startSpan(c)
	defer span.End()

	n, err := h.admin.ClearUserSession(c.Request.Context(), identityFrom(c).UserID, c.Param("id"))
	if err != nil {
		fail(c, span, err, "Clear session failed")
		return
	}
	c.JSON(http.StatusOK, domain.ClearedSessions{Deleted: n})
}

// AdminClearSessions handles DELETE /api/v1/admin/sessions.
func (h *Handler) AdminClearSessions(c *gin.Context) {
	span := startSpan(c)
	defer span.End()

	n, err := h.admin.ClearAllSessions(c.Request.Context(), identityFrom(c).UserID)
	if err != nil {
		fail(c, span, err, "Clear sessions failed")
		return
	}
	logger.FromContext(c.Request.Context()).Info().Int64("deleted", n).Msg("All sessions cleared")
	c.JSON(http.StatusOK, domain.ClearedSessions{Deleted: n})
}
