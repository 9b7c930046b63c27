package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/omsapp/oms-backend/internal/app/model"
	"github.com/omsapp/oms-backend/internal/app/repository"
	"github.com/omsapp/oms-backend/pkg/logger"
	"github.com/omsapp/oms-backend/pkg/util"
	"gorm.io/gorm"
)

var ErrInvalidResetToken = errors.New("invalid or expired reset token")

const (
	// ResetTokenExpiry is the duration for which a reset token is valid
	ResetTokenExpiry = 1 * time.Hour
	// ResetTokenRetention is how long spent tokens are kept before cleanup
	ResetTokenRetention = 24 * time.Hour
)

// ResetThrottle limits how often a reset can be requested for one address
type ResetThrottle interface {
	Allow(ctx context.Context, email string) (bool, error)
}

// ResetNotifier delivers a freshly issued reset token to its owner
type ResetNotifier interface {
	SendPasswordReset(ctx context.Context, email, firstName, token string) error
}

type PasswordResetService interface {
	RequestReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	PurgeStaleTokens(ctx context.Context) (int64, error)
}

type passwordResetService struct {
	resetRepo repository.PasswordResetRepository
	userRepo  repository.UserRepository
	notifier  ResetNotifier
	throttle  ResetThrottle
	now       func() time.Time
}

// NewPasswordResetService wires the reset flow. throttle may be nil.
func NewPasswordResetService(
	resetRepo repository.PasswordResetRepository,
	userRepo repository.UserRepository,
	notifier ResetNotifier,
	throttle ResetThrottle,
) PasswordResetService {
	return &passwordResetService{
		resetRepo: resetRepo,
		userRepo:  userRepo,
		notifier:  notifier,
		throttle:  throttle,
		now:       time.Now,
	}
}

// RequestReset issues a token for a known address. Unknown addresses and throttled
// requests return nil so callers cannot tell them apart.
func (s *passwordResetService) RequestReset(ctx context.Context, email string) error {
	logger.Info("Processing password reset request")

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Debug("Password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("find user: %w", err)
	}

	if s.throttle != nil {
		allowed, err := s.throttle.Allow(ctx, email)
		if err != nil {
			// a throttle outage must not block resets
			logger.Warn("Reset throttle unavailable", map[string]interface{}{
				"error": err.Error(),
			})
		} else if !allowed {
			logger.Info("Password reset throttled", map[string]interface{}{
				"user_id": user.ID,
			})
			return nil
		}
	}

	token, err := util.GenerateResetToken()
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}

	reset := &model.PasswordReset{
		UserID:    user.ID,
		TokenHash: util.HashResetToken(token),
		ExpiresAt: s.now().Add(ResetTokenExpiry),
	}
	if err := s.resetRepo.Create(ctx, reset); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	if s.notifier != nil {
		if err := s.notifier.SendPasswordReset(ctx, user.Email, user.FirstName, token); err != nil {
			logger.Error("Failed to dispatch password reset email", err, map[string]interface{}{
				"user_id": user.ID,
			})
		}
	}

	logger.Info("Password reset token issued", map[string]interface{}{
		"user_id":    user.ID,
		"expires_at": reset.ExpiresAt,
	})
	return nil
}

func (s *passwordResetService) ResetPassword(ctx context.Context, token, newPassword string) error {
	now := s.now()

	reset, err := s.resetRepo.FindUnusedByTokenHash(ctx, util.HashResetToken(token))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Invalid reset token provided")
			return ErrInvalidResetToken
		}
		return fmt.Errorf("find reset token: %w", err)
	}

	if !reset.IsValidAt(now) {
		logger.Warn("Expired reset token provided", map[string]interface{}{
			"user_id":    reset.UserID,
			"expires_at": reset.ExpiresAt,
		})
		return ErrInvalidResetToken
	}

	hashed, err := util.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.resetRepo.Redeem(ctx, reset, hashed, now); err != nil {
		if errors.Is(err, repository.ErrResetTokenConsumed) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("redeem reset token: %w", err)
	}

	logger.Info("Password reset completed", map[string]interface{}{
		"user_id": reset.UserID,
	})
	return nil
}

func (s *passwordResetService) PurgeStaleTokens(ctx context.Context) (int64, error) {
	return s.resetRepo.DeleteStale(ctx, s.now(), ResetTokenRetention)
}
