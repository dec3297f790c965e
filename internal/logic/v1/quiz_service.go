package v1

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/quizcards-service/internal/core/domain"
	"github.com/duynhne/quizcards-service/internal/events"
	"github.com/duynhne/quizcards-service/internal/logger"
	"github.com/duynhne/quizcards-service/middleware"
)

// QuizService serves questions, records answers and reports progress.
type QuizService struct {
	questions domain.QuestionRepository
	answers   domain.AnswerRepository
	events    events.Publisher
	now       func() time.Time
}

func NewQuizService(questions domain.QuestionRepository, answers domain.AnswerRepository, publisher events.Publisher) *QuizService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &QuizService{
		questions: questions,
		answers:   answers,
		events:    publisher,
		now:       time.Now,
	}
}

// Questions returns the questions userID has not answered yet, oldest first.
func (s *QuizService) Questions(ctx context.Context, userID string) ([]domain.QuestionView, error) {
	ctx, span := middleware.StartSpan(ctx, "quiz.questions", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("user.id", userID),
	))
	defer span.End()

	rows, err := s.questions.ListUnanswered(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list questions: %w", err)
	}

	out := make([]domain.QuestionView, 0, len(rows))
	for i := range rows {
		out = append(out, questionView(&rows[i]))
	}
	span.SetAttributes(attribute.Int("questions.count", len(out)))
	return out, nil
}

// Answer stores userID's answer to a question. A question can be answered
// once per user.
func (s *QuizService) Answer(ctx context.Context, userID string, req domain.AnswerRequest) (*domain.AnswerResult, error) {
	ctx, span := middleware.StartSpan(ctx, "quiz.answer", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("user.id", userID),
		attribute.String("question.id", req.QuestionID),
	))
	defer span.End()

	if req.QuestionID == "" || req.SelectedAnswer == nil {
		return nil, fmt.Errorf("answer: missing fields: %w", ErrValidation)
	}

	q, err := s.questions.GetByID(ctx, req.QuestionID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("load question %s: %w", req.QuestionID, err)
	}
	if q == nil {
		return nil, fmt.Errorf("question %s: %w", req.QuestionID, ErrNotFound)
	}

	answered, err := s.answers.Exists(ctx, userID, q.ID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("check answer: %w", err)
	}
	if answered {
		return nil, fmt.Errorf("question %s: %w", q.ID, ErrAlreadyAnswered)
	}

	a := &domain.Answer{
		ID:             uuid.NewString(),
		UserID:         userID,
		QuestionID:     q.ID,
		SelectedAnswer: *req.SelectedAnswer,
		IsCorrect:      *req.SelectedAnswer == q.CorrectAnswer,
		AnsweredAt:     s.now().UTC(),
	}
	if err := s.answers.Create(ctx, a); err != nil {
		// Lost a race with a concurrent submit for the same question.
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, fmt.Errorf("question %s: %w", q.ID, ErrAlreadyAnswered)
		}
		span.RecordError(err)
		return nil, fmt.Errorf("store answer: %w", err)
	}

	if err := s.events.Publish(ctx, events.AnswerSubmitted, events.AnswerEvent{
		UserID:     userID,
		QuestionID: q.ID,
		IsCorrect:  a.IsCorrect,
		At:         a.AnsweredAt,
	}); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Msg("Event publish failed")
	}

	span.SetAttributes(attribute.Bool("answer.correct", a.IsCorrect))
	return &domain.AnswerResult{
		ID:            a.ID,
		IsCorrect:     a.IsCorrect,
		CorrectAnswer: q.CorrectAnswer,
	}, nil
}

// Flashcards returns every answer of userID with its question, newest first.
func (s *QuizService) Flashcards(ctx context.Context, userID string) ([]domain.Flashcard, error) {
	ctx, span := middleware.StartSpan(ctx, "quiz.flashcards", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("user.id", userID),
	))
	defer span.End()

	rows, err := s.answers.ListByUser(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list flashcards: %w", err)
	}

	out := make([]domain.Flashcard, 0, len(rows))
	for i := range rows {
		out = append(out, domain.Flashcard{
			ID:             rows[i].ID,
			Question:       questionView(&rows[i].Question),
			SelectedAnswer: rows[i].SelectedAnswer,
			IsCorrect:      rows[i].IsCorrect,
			AnsweredAt:     rows[i].AnsweredAt,
		})
	}
	return out, nil
}

// Stats reports answered, correct and total question counts. Accuracy is 0
// when nothing has been answered.
func (s *QuizService) Stats(ctx context.Context, userID string) (*domain.UserStats, error) {
	ctx, span := middleware.StartSpan(ctx, "quiz.stats", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("user.id", userID),
	))
	defer span.End()

	total, correct, err := s.answers.Stats(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("answer stats: %w", err)
	}
	questions, err := s.questions.Count(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("count questions: %w", err)
	}

	stats := &domain.UserStats{
		TotalAnswered:  total,
		CorrectAnswers: correct,
		TotalQuestions: questions,
	}
	if total > 0 {
		stats.Accuracy = float64(correct) / float64(total) * 100
	}
	return stats, nil
}

func questionView(q *domain.Question) domain.QuestionView {
	alternatives := q.Alternatives
	if alternatives == nil {
		alternatives = []string{}
	}
	return domain.QuestionView{
		ID:            q.ID,
		Statement:     q.Statement,
		Alternatives:  alternatives,
		CorrectAnswer: q.CorrectAnswer,
		Subject:       q.Subject,
		Author:        q.Author.Username,
		CreatedAt:     q.CreatedAt,
	}
}
