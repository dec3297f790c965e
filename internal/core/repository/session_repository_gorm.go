package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/duynhne/quizcards-service/internal/core/domain"
)

// GormSessionRepository implements domain.SessionRepository on gorm.
type GormSessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates a new GormSessionRepository.
func NewSessionRepository(db *gorm.DB) *GormSessionRepository {
	return &GormSessionRepository{db: db}
}

func (r *GormSessionRepository) Get(ctx context.Context, userID string) (*domain.Session, error) {
	var s domain.Session
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session for user %s: %w", userID, err)
	}
	return &s, nil
}

// Issue performs an insert-if-absent-or-expired on the user's row. The
// conflict branch only fires when the stored expiry is not after issuedAt,
// so two concurrent logins cannot both win: the loser sees zero affected
// rows.
func (r *GormSessionRepository) Issue(ctx context.Context, userID, token string, issuedAt, expiresAt time.Time) error {
	issuedAt = issuedAt.UTC()
	expiresAt = expiresAt.UTC()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := domain.Session{
			UserID:    userID,
			Token:     token,
			ExpiresAt: expiresAt,
			CreatedAt: issuedAt,
			UpdatedAt: issuedAt,
		}

		res := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"token":      token,
				"expires_at": expiresAt,
				"updated_at": issuedAt,
			}),
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Expr{SQL: "sessions.expires_at <= ?", Vars: []interface{}{issuedAt}},
			}},
		}).Create(&row)
		if res.Error != nil {
			return fmt.Errorf("upsert session for user %s: %w", userID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("upsert session for user %s: %w", userID, domain.ErrSessionActive)
		}

		res = tx.Model(&domain.User{}).Where("id = ?", userID).Update("last_login", issuedAt)
		if res.Error != nil {
			return fmt.Errorf("stamp last_login for user %s: %w", userID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("stamp last_login: user %s: %w", userID, gorm.ErrRecordNotFound)
		}
		return nil
	})
}

func (r *GormSessionRepository) Delete(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.Session{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete session for user %s: %w", userID, res.Error)
	}
	return res.RowsAffected, nil
}

func (r *GormSessionRepository) DeleteAll(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Where("1 = 1").Delete(&domain.Session{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete all sessions: %w", res.Error)
	}
	return res.RowsAffected, nil
}
