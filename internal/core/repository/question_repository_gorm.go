package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/duynhne/quizcards-service/internal/core/domain"
)

// GormQuestionRepository implements domain.QuestionRepository on gorm.
type GormQuestionRepository struct {
	db *gorm.DB
}

// NewQuestionRepository creates a new GormQuestionRepository.
func NewQuestionRepository(db *gorm.DB) *GormQuestionRepository {
	return &GormQuestionRepository{db: db}
}

func (r *GormQuestionRepository) ListUnanswered(ctx context.Context, userID string) ([]domain.Question, error) {
	db := r.db.WithContext(ctx)
	answered := db.Model(&domain.Answer{}).Select("question_id").Where("user_id = ?", userID)

	var questions []domain.Question
	err := db.
		Where("id NOT IN (?)", answered).
		Order("created_at ASC").
		Find(&questions).Error
	if err != nil {
		return nil, fmt.Errorf("list unanswered questions for user %s: %w", userID, err)
	}
	return questions, nil
}

func (r *GormQuestionRepository) ListWithAuthor(ctx context.Context) ([]domain.Question, error) {
	var questions []domain.Question
	err := r.db.WithContext(ctx).
		Preload("Author").
		Order("created_at DESC").
		Find(&questions).Error
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return questions, nil
}

func (r *GormQuestionRepository) GetByID(ctx context.Context, id string) (*domain.Question, error) {
	var q domain.Question
	err := r.db.WithContext(ctx).Preload("Author").Where("id = ?", id).First(&q).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get question %s: %w", id, err)
	}
	return &q, nil
}

func (r *GormQuestionRepository) ExistsByStatement(ctx context.Context, statement string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Question{}).Where("statement = ?", statement).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check question statement: %w", err)
	}
	return count > 0, nil
}

func (r *GormQuestionRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Question{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return count, nil
}

func (r *GormQuestionRepository) Create(ctx context.Context, q *domain.Question) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(q).Error; err != nil {
		return fmt.Errorf("create question: %w", err)
	}
	return nil
}

func (r *GormQuestionRepository) Update(ctx context.Context, q *domain.Question) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Question{ID: q.ID}).
		Select("Statement", "Alternatives", "CorrectAnswer", "Subject", "UpdatedAt").
		Updates(q)
	if res.Error != nil {
		return false, fmt.Errorf("update question %s: %w", q.ID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *GormQuestionRepository) Delete(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("question_id = ?", id).Delete(&domain.Answer{}).Error; err != nil {
			return fmt.Errorf("delete answers: %w", err)
		}
		res := tx.Where("id = ?", id).Delete(&domain.Question{})
		if res.Error != nil {
			return fmt.Errorf("delete question: %w", res.Error)
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("delete question %s: %w", id, err)
	}
	return deleted, nil
}
