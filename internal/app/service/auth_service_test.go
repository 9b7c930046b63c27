package service

import (
	"context"
	"testing"
	"time"

	"github.com/omsapp/oms-backend/internal/app/model"
	"github.com/omsapp/oms-backend/internal/app/repository"
	"github.com/omsapp/oms-backend/internal/db"
	"github.com/omsapp/oms-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testTokenOptions = util.TokenOptions{
	Secret:   "test-jwt-secret",
	Issuer:   "OMS",
	Audience: "OMS",
	TTL:      24 * time.Hour,
}

func setupAuthServiceTest(t *testing.T) (AuthService, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	userRepo := repository.NewUserRepository(testDB)
	return NewAuthService(userRepo, testTokenOptions), testDB
}

func createTestUser(t *testing.T, testDB *gorm.DB, email, password string, role model.UserRole, active bool) *model.User {
	t.Helper()
	hashed, err := util.HashPassword(password)
	require.NoError(t, err)

	user := &model.User{
		Email:        email,
		PasswordHash: hashed,
		Role:         role,
		FirstName:    "Jane",
		LastName:     "Doe",
		IsActive:     active,
	}
	require.NoError(t, testDB.Create(user).Error)
	return user
}

func TestAuthService_Login(t *testing.T) {
	authService, testDB := setupAuthServiceTest(t)
	ctx := context.Background()

	createTestUser(t, testDB, "admin@oms.com", "Admin@123", model.RoleAdmin, true)
	createTestUser(t, testDB, "gone@oms.com", "password123", model.RoleCustomer, false)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "Valid credentials", email: "admin@oms.com", password: "Admin@123"},
		{name: "Wrong password", email: "admin@oms.com", password: "nope", wantErr: ErrInvalidCredentials},
		{name: "Unknown email", email: "nobody@oms.com", password: "Admin@123", wantErr: ErrInvalidCredentials},
		{name: "Email is case-sensitive", email: "ADMIN@oms.com", password: "Admin@123", wantErr: ErrInvalidCredentials},
		{name: "Inactive account", email: "gone@oms.com", password: "password123", wantErr: ErrAccountInactive},
		{name: "Inactive account with wrong password", email: "gone@oms.com", password: "bad", wantErr: ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := authService.Login(ctx, tt.email, tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, result)
				return
			}

			require.NoError(t, err)
			assert.True(t, result.User.RequiresPasswordChange())

			claims, err := util.ValidateToken(result.Token, testTokenOptions)
			require.NoError(t, err)
			assert.Equal(t, result.User.ID, claims.UserID)
			assert.Equal(t, "admin@oms.com", claims.Email)
			assert.Equal(t, string(model.RoleAdmin), claims.Role)
			assert.Equal(t, "Jane", claims.FirstName)
		})
	}
}

func TestAuthService_ChangePassword(t *testing.T) {
	authService, testDB := setupAuthServiceTest(t)
	ctx := context.Background()

	user := createTestUser(t, testDB, "jane@example.com", "old-password", model.RoleCustomer, true)

	assert.ErrorIs(t, authService.ChangePassword(ctx, 9999, "old-password", "new-password"), ErrUserNotFound)
	assert.ErrorIs(t, authService.ChangePassword(ctx, user.ID, "wrong", "new-password"), ErrIncorrectPassword)

	require.NoError(t, authService.ChangePassword(ctx, user.ID, "old-password", "new-password"))

	_, err := authService.Login(ctx, "jane@example.com", "old-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	result, err := authService.Login(ctx, "jane@example.com", "new-password")
	require.NoError(t, err)
	assert.False(t, result.User.RequiresPasswordChange())
}

func TestAuthService_GetUserByID(t *testing.T) {
	authService, testDB := setupAuthServiceTest(t)
	ctx := context.Background()

	user := createTestUser(t, testDB, "jane@example.com", "password", model.RoleCustomer, true)

	found, err := authService.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, found.Email)

	_, err = authService.GetUserByID(ctx, 9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
