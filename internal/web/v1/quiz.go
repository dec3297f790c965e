package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/duynhne/quizcards-service/internal/core/domain"
	"github.com/duynhne/quizcards-service/internal/logger"
)

// ListQuestions handles GET /api/v1/questions.
func (h *Handler) ListQuestions(c *gin.Context) {
	span := startSpan(c)
	defer span.End()

	questions, err := h.quiz.Questions(c.Request.Context(), identityFrom(c).UserID)
	if err != nil {
		fail(c, span, err, "List questions failed")
		return
	}
	c.JSON(http.StatusOK, questions)
}

// SubmitAnswer handles POST /api/v1/questions/answer.
func (h *Handler) SubmitAnswer(c *gin.Context) {
	span := startSpan(c)
	defer span.End()

	var req domain.AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	userID := identityFrom(c).UserID
	result, err := h.quiz.Answer(c.Request.Context(), userID, req)
	if err != nil {
		fail(c, span, err, "Submit answer failed")
		return
	}

	logger.FromContext(c.Request.Context()).Info().
		Str("question_id", req.QuestionID).
		Bool("correct", result.IsCorrect).
		Msg("Answer recorded")
	c.JSON(http.StatusOK, result)
}

// ListFlashcards handles GET /api/v1/flashcards.
func (h *Handler) ListFlashcards(c *gin.Context) {
	span := startSpan(c)
	defer span.End()

	cards, err := h.quiz.Flashcards(c.Request.Context(), identityFrom(c).UserID)
	if err != nil {
		fail(c, span, err, "List flashcards failed")
		return
	}
	c.JSON(http.StatusOK, cards)
}

// GetStats handles GET /api/v1/user/stats.
func (h *Handler) GetStats(c *gin.Context) {
	span := startSpan(c)
	defer span.End()

	stats, err := h.quiz.Stats(c.Request.Context(), identityFrom(c).UserID)
	if err != nil {
		fail(c, span, err, "Load stats failed")
		return
	}
	c.JSON(http.StatusOK, stats)
}
