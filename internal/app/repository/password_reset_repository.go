package repository

import (
	"context"
	"errors"
	"time"

	"github.com/omsapp/oms-backend/internal/app/model"
	"github.com/omsapp/oms-backend/pkg/logger"
	"gorm.io/gorm"
)

// ErrResetTokenConsumed is returned when a token was used or expired between lookup and redemption
var ErrResetTokenConsumed = errors.New("password reset token already consumed")

type PasswordResetRepository interface {
	Create(ctx context.Context, reset *model.PasswordReset) error
	FindUnusedByTokenHash(ctx context.Context, tokenHash string) (*model.PasswordReset, error)
	Redeem(ctx context.Context, reset *model.PasswordReset, passwordHash string, now time.Time) error
	DeleteStale(ctx context.Context, now time.Time, retention time.Duration) (int64, error)
}

type passwordResetRepository struct {
	db *gorm.DB
}

func NewPasswordResetRepository(db *gorm.DB) PasswordResetRepository {
	return &passwordResetRepository{db: db}
}

func (r *passwordResetRepository) Create(ctx context.Context, reset *model.PasswordReset) error {
	logger.Debug("Creating password reset in database", map[string]interface{}{
		"user_id": reset.UserID,
	})

	if err := r.db.WithContext(ctx).Create(reset).Error; err != nil {
		logger.Error("Failed to create password reset in database", err, map[string]interface{}{
			"user_id": reset.UserID,
		})
		return err
	}

	logger.Debug("Password reset created in database", map[string]interface{}{
		"id":         reset.ID,
		"user_id":    reset.UserID,
		"expires_at": reset.ExpiresAt,
	})
	return nil
}

func (r *passwordResetRepository) FindUnusedByTokenHash(ctx context.Context, tokenHash string) (*model.PasswordReset, error) {
	logger.Debug("Finding password reset by token hash in database")

	var reset model.PasswordReset
	err := r.db.WithContext(ctx).
		Where("token_hash = ? AND used = ?", tokenHash, false).
		First(&reset).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error("Failed to find password reset by token hash in database", err)
		}
		return nil, err
	}
	return &reset, nil
}

// Redeem consumes the token and replaces the owner's password in one transaction.
// The token row is claimed with a conditional update so two concurrent redemptions
// cannot both succeed.
func (r *passwordResetRepository) Redeem(ctx context.Context, reset *model.PasswordReset, passwordHash string, now time.Time) error {
	logger.Debug("Redeeming password reset in database", map[string]interface{}{
		"id":      reset.ID,
		"user_id": reset.UserID,
	})

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		claim := tx.Model(&model.PasswordReset{}).
			Where("id = ? AND used = ? AND expires_at > ?", reset.ID, false, now).
			UpdateColumns(map[string]interface{}{
				"used":    true,
				"used_at": now,
			})
		if claim.Error != nil {
			return claim.Error
		}
		if claim.RowsAffected != 1 {
			return ErrResetTokenConsumed
		}

		update := tx.Model(&model.User{}).
			Where("id = ?", reset.UserID).
			UpdateColumns(map[string]interface{}{
				"password_hash":       passwordHash,
				"is_password_changed": true,
				"updated_at":          now,
			})
		if update.Error != nil {
			return update.Error
		}
		if update.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil && !errors.Is(err, ErrResetTokenConsumed) {
		logger.Error("Failed to redeem password reset in database", err, map[string]interface{}{
			"id": reset.ID,
		})
	}
	return err
}

// DeleteStale removes tokens that can no longer be redeemed and are older than retention
func (r *passwordResetRepository) DeleteStale(ctx context.Context, now time.Time, retention time.Duration) (int64, error) {
	logger.Debug("Deleting stale password resets from database")

	cutoff := now.Add(-retention)
	result := r.db.WithContext(ctx).
		Where("(expires_at < ? OR used = ?) AND created_at < ?", now, true, cutoff).
		Delete(&model.PasswordReset{})
	if result.Error != nil {
		logger.Error("Failed to delete stale password resets from database", result.Error)
		return 0, result.Error
	}

	logger.Debug("Stale password resets deleted from database", map[string]interface{}{
		"count": result.RowsAffected,
	})
	return result.RowsAffected, nil
}
