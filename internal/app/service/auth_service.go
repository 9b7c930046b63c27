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

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrUserNotFound       = errors.New("user not found")
	ErrIncorrectPassword  = errors.New("current password is incorrect")
)

// LoginResult is a signed session together with the user it was issued for
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *model.User
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error
	GetUserByID(ctx context.Context, id uint) (*model.User, error)
}

type authService struct {
	userRepo  repository.UserRepository
	tokenOpts util.TokenOptions
}

func NewAuthService(userRepo repository.UserRepository, tokenOpts util.TokenOptions) AuthService {
	return &authService{
		userRepo:  userRepo,
		tokenOpts: tokenOpts,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	logger.Info("Login attempt", map[string]interface{}{
		"email": email,
	})

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.BurnPasswordCheck(password)
			logger.Warn("Login failed: user not found", map[string]interface{}{
				"email": email,
			})
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !util.VerifyPassword(user.PasswordHash, password) {
		logger.Warn("Login failed: invalid password", map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		logger.Warn("Login failed: account inactive", map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, ErrAccountInactive
	}

	token, expiresAt, err := util.GenerateToken(util.TokenSubject{
		UserID:    user.ID,
		Email:     user.Email,
		Role:      string(user.Role),
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}, s.tokenOpts)
	if err != nil {
		logger.Error("Failed to generate token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, err
	}

	logger.Info("User logged in successfully", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})

	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (s *authService) ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if !util.VerifyPassword(user.PasswordHash, currentPassword) {
		logger.Warn("Change password failed: current password mismatch", map[string]interface{}{
			"user_id": userID,
		})
		return ErrIncorrectPassword
	}

	hashed, err := util.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, hashed); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("update password: %w", err)
	}

	logger.Info("Password changed", map[string]interface{}{
		"user_id": userID,
	})
	return nil
}

func (s *authService) GetUserByID(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}
