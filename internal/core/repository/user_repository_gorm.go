package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/duynhne/quizcards-service/internal/core/domain"
)

// GormUserRepository implements domain.UserRepository on gorm.
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new GormUserRepository.
func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) FindByLogin(ctx context.Context, login string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).
		Where("email = ? OR username = ?", login, login).
		Order("created_at ASC").
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user by login: %w", err)
	}
	return &user, nil
}

func (r *GormUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return &user, nil
}

func (r *GormUserRepository) List(ctx context.Context) ([]domain.UserSummary, error) {
	var rows []domain.UserSummary
	err := r.db.WithContext(ctx).
		Model(&domain.User{}).
		Select("users.id, users.email, users.username, users.role, users.last_login, users.created_at, COUNT(answers.id) AS answer_count").
		Joins("LEFT JOIN answers ON answers.user_id = users.id").
		Group("users.id").
		Order("users.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return rows, nil
}

func (r *GormUserRepository) ExistsByEmailOrUsername(ctx context.Context, email, username, excludeID string) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("(email = ? OR username = ?)", email, username)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("check existing user: %w", err)
	}
	return count > 0, nil
}

func (r *GormUserRepository) Create(ctx context.Context, user *domain.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("create user %s: %w", user.Username, domain.ErrDuplicate)
		}
		return fmt.Errorf("create user %s: %w", user.Username, err)
	}
	return nil
}

func (r *GormUserRepository) UpdateProfile(ctx context.Context, id, email, username string, role domain.Role) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"email":    email,
			"username": username,
			"role":     string(role),
		})
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return false, fmt.Errorf("update user %s: %w", id, domain.ErrDuplicate)
		}
		return false, fmt.Errorf("update user %s: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *GormUserRepository) Delete(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		authored := tx.Model(&domain.Question{}).Select("id").Where("created_by = ?", id)

		if err := tx.Where("user_id = ? OR question_id IN (?)", id, authored).
			Delete(&domain.Answer{}).Error; err != nil {
			return fmt.Errorf("delete answers: %w", err)
		}
		if err := tx.Where("created_by = ?", id).Delete(&domain.Question{}).Error; err != nil {
			return fmt.Errorf("delete questions: %w", err)
		}
		if err := tx.Where("user_id = ?", id).Delete(&domain.Session{}).Error; err != nil {
			return fmt.Errorf("delete session: %w", err)
		}

		res := tx.Where("id = ?", id).Delete(&domain.User{})
		if res.Error != nil {
			return fmt.Errorf("delete user: %w", res.Error)
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("delete user %s: %w", id, err)
	}
	return deleted, nil
}
