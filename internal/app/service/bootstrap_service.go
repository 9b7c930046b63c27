package service

import (
	"context"
	"fmt"

	"github.com/omsapp/oms-backend/internal/app/model"
	"github.com/omsapp/oms-backend/internal/app/repository"
	"github.com/omsapp/oms-backend/pkg/logger"
	"github.com/omsapp/oms-backend/pkg/util"
)

// AdminSeed describes the administrator created on an empty user table
type AdminSeed struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type BootstrapService interface {
	// EnsureAdmin creates the seed administrator unless an Admin already exists.
	// It reports whether a user was created.
	EnsureAdmin(ctx context.Context, seed AdminSeed) (bool, error)
}

type bootstrapService struct {
	userRepo repository.UserRepository
}

func NewBootstrapService(userRepo repository.UserRepository) BootstrapService {
	return &bootstrapService{userRepo: userRepo}
}

func (s *bootstrapService) EnsureAdmin(ctx context.Context, seed AdminSeed) (bool, error) {
	exists, err := s.userRepo.ExistsByRole(ctx, model.RoleAdmin)
	if err != nil {
		return false, fmt.Errorf("check admin: %w", err)
	}
	if exists {
		logger.Debug("Admin user already present, skipping seed")
		return false, nil
	}

	if seed.FirstName == "" {
		seed.FirstName = "Admin"
	}
	if seed.LastName == "" {
		seed.LastName = "User"
	}

	hashed, err := util.HashPassword(seed.Password)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}

	admin := &model.User{
		Email:             seed.Email,
		PasswordHash:      hashed,
		Role:              model.RoleAdmin,
		FirstName:         seed.FirstName,
		LastName:          seed.LastName,
		IsActive:          true,
		IsPasswordChanged: false,
	}
	if err := s.userRepo.Create(ctx, admin); err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}

	logger.Info("Seeded admin user", map[string]interface{}{
		"user_id": admin.ID,
		"email":   admin.Email,
	})
	return true, nil
}
