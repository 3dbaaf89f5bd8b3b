package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ecohistorias/eco-api/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrTokenUnusable is returned when the token is unknown, expired or already used.
	ErrTokenUnusable = errors.New("password reset repository: token unusable")
	// ErrUpdatePassword is returned when writing the new hash fails inside the reset transaction.
	ErrUpdatePassword = errors.New("password reset repository: update password failed")
)

// GormPasswordResetRepository is a GORM implementation of PasswordResetRepository
type GormPasswordResetRepository struct {
	db *gorm.DB
}

// NewPasswordResetRepository creates a new PasswordResetRepository
func NewPasswordResetRepository(db *gorm.DB) PasswordResetRepository {
	return &GormPasswordResetRepository{db: db}
}

func (r *GormPasswordResetRepository) Create(ctx context.Context, token *models.PasswordResetToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *GormPasswordResetRepository) FindByToken(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	var rt models.PasswordResetToken
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&rt).Error; err != nil {
		return nil, err
	}
	return &rt, nil
}

// Consume claims the token with a conditional update, so of two concurrent
// consumers exactly one sees a changed row.
func (r *GormPasswordResetRepository) Consume(ctx context.Context, token string, now time.Time, passwordHash string) (string, error) {
	var userID string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rt models.PasswordResetToken
		if err := tx.Where("token = ?", token).First(&rt).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTokenUnusable
			}
			return err
		}

		claimed := tx.Model(&models.PasswordResetToken{}).
			Where("id = ? AND used_at IS NULL AND expires_at > ?", rt.ID, now).
			Update("used_at", now)
		if claimed.Error != nil {
			return claimed.Error
		}
		if claimed.RowsAffected != 1 {
			return ErrTokenUnusable
		}

		if err := tx.Model(&models.User{}).
			Where("id = ?", rt.UserID).
			Update("password_hash", passwordHash).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrUpdatePassword, err)
		}

		userID = rt.UserID
		return nil
	})
	if err != nil {
		return "", err
	}
	return userID, nil
}
