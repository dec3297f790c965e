package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/duynhne/quizcards-service/internal/core/domain"
)

// GormAnswerRepository implements domain.AnswerRepository on gorm.
type GormAnswerRepository struct {
	db *gorm.DB
}

// NewAnswerRepository creates a new GormAnswerRepository.
func NewAnswerRepository(db *gorm.DB) *GormAnswerRepository {
	return &GormAnswerRepository{db: db}
}

func (r *GormAnswerRepository) Create(ctx context.Context, a *domain.Answer) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(a).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("create answer: %w", domain.ErrDuplicate)
		}
		return fmt.Errorf("create answer: %w", err)
	}
	return nil
}

func (r *GormAnswerRepository) Exists(ctx context.Context, userID, questionID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Answer{}).
		Where("user_id = ? AND question_id = ?", userID, questionID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check answer: %w", err)
	}
	return count > 0, nil
}

func (r *GormAnswerRepository) ListByUser(ctx context.Context, userID string) ([]domain.Answer, error) {
	var answers []domain.Answer
	err := r.db.WithContext(ctx).
		Preload("Question").
		Where("user_id = ?", userID).
		Order("answered_at DESC").
		Find(&answers).Error
	if err != nil {
		return nil, fmt.Errorf("list answers for user %s: %w", userID, err)
	}
	return answers, nil
}

func (r *GormAnswerRepository) Stats(ctx context.Context, userID string) (int64, int64, error) {
	var row struct {
		Total   int64
		Correct int64
	}
	err := r.db.WithContext(ctx).
		Model(&domain.Answer{}).
		Select("COUNT(*) AS total, COALESCE(SUM(CASE WHEN is_correct THEN 1 ELSE 0 END), 0) AS correct").
		Where("user_id = ?", userID).
		Scan(&row).Error
	if err != nil {
		return 0, 0, fmt.Errorf("answer stats for user %s: %w", userID, err)
	}
	return row.Total, row.Correct, nil
}
