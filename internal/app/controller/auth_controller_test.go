package controller

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/omsapp/oms-backend/internal/app/model"
	"github.com/omsapp/oms-backend/internal/app/repository"
	"github.com/omsapp/oms-backend/internal/app/service"
	apperrors "github.com/omsapp/oms-backend/internal/errors"
	"github.com/omsapp/oms-backend/internal/middleware"
	"github.com/omsapp/oms-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAuthControllerTest(t *testing.T) (*gin.Engine, *gorm.DB, *captureNotifier) {
	testDB := setupTestDB(t)

	userRepo := repository.NewUserRepository(testDB)
	notifier := &captureNotifier{}
	authService := service.NewAuthService(userRepo, testTokenOptions)
	resetService := service.NewPasswordResetService(
		repository.NewPasswordResetRepository(testDB),
		userRepo,
		notifier,
		nil,
	)

	ctrl := NewAuthController(authService, resetService)
	authMiddleware := middleware.NewAuthMiddleware(testTokenOptions)

	router := gin.New()
	router.POST("/login", ctrl.Login)
	router.POST("/forgot-password", ctrl.ForgotPassword)
	router.POST("/reset-password", ctrl.ResetPassword)
	router.POST("/change-password", authMiddleware.Authenticate(), ctrl.ChangePassword)
	router.GET("/me", authMiddleware.Authenticate(), ctrl.GetMe)

	return router, testDB, notifier
}

func TestAuthController_Login(t *testing.T) {
	router, testDB, _ := setupAuthControllerTest(t)
	createTestUser(t, testDB, "admin@oms.com", "Admin@123", model.RoleAdmin, true)
	createTestUser(t, testDB, "gone@oms.com", "secret123", model.RoleCustomer, false)

	tests := []struct {
		name         string
		body         interface{}
		expectedCode int
		expectedErr  string
		expectedMsg  string
	}{
		{
			name:         "Wrong password",
			body:         LoginRequest{Email: "admin@oms.com", Password: "nope"},
			expectedCode: http.StatusUnauthorized,
			expectedErr:  apperrors.AuthInvalidCredentials,
			expectedMsg:  "Invalid email or password",
		},
		{
			name:         "Unknown email",
			body:         LoginRequest{Email: "nobody@oms.com", Password: "Admin@123"},
			expectedCode: http.StatusUnauthorized,
			expectedErr:  apperrors.AuthInvalidCredentials,
			expectedMsg:  "Invalid email or password",
		},
		{
			name:         "Inactive account",
			body:         LoginRequest{Email: "gone@oms.com", Password: "secret123"},
			expectedCode: http.StatusUnauthorized,
			expectedErr:  apperrors.AuthAccountInactive,
			expectedMsg:  "Account is inactive",
		},
		{
			name:         "Malformed email is an unknown account",
			body:         LoginRequest{Email: "not-an-email", Password: "Admin@123"},
			expectedCode: http.StatusUnauthorized,
			expectedErr:  apperrors.AuthInvalidCredentials,
			expectedMsg:  "Invalid email or password",
		},
		{
			name:         "Missing password",
			body:         map[string]string{"email": "admin@oms.com"},
			expectedCode: http.StatusBadRequest,
			expectedErr:  apperrors.ValidationInvalidInput,
		},
		{
			name:         "Malformed JSON",
			body:         "{not json",
			expectedCode: http.StatusBadRequest,
			expectedErr:  apperrors.ValidationInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(router, http.MethodPost, "/login", tt.body, "")

			require.Equal(t, tt.expectedCode, w.Code)
			body := decodeError(t, w)
			assert.Equal(t, tt.expectedErr, body.Error)
			if tt.expectedMsg != "" {
				assert.Equal(t, tt.expectedMsg, body.Message)
			}
		})
	}
}

func TestAuthController_Login_Success(t *testing.T) {
	router, testDB, _ := setupAuthControllerTest(t)
	createTestUser(t, testDB, "admin@oms.com", "Admin@123", model.RoleAdmin, true)

	w := doJSON(router, http.MethodPost, "/login", LoginRequest{Email: "admin@oms.com", Password: "Admin@123"}, "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody[LoginResponse](t, w)
	assert.Equal(t, "admin@oms.com", resp.Email)
	assert.Equal(t, "Admin", resp.Role)
	assert.True(t, resp.RequiresPasswordChange)

	claims, err := util.ValidateToken(resp.Token, testTokenOptions)
	require.NoError(t, err)
	assert.Equal(t, "admin@oms.com", claims.Email)
}

func TestAuthController_ForgotPassword_IsUniform(t *testing.T) {
	router, testDB, notifier := setupAuthControllerTest(t)
	createTestUser(t, testDB, "user@oms.com", "secret123", model.RoleCustomer, true)

	for _, email := range []string{"user@oms.com", "unknown@oms.com"} {
		w := doJSON(router, http.MethodPost, "/forgot-password", ForgotPasswordRequest{Email: email}, "")
		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody[map[string]string](t, w)
		assert.Equal(t, ForgotPasswordMessage, body["message"])
	}

	sent, ok := notifier.last()
	require.True(t, ok)
	assert.Equal(t, "user@oms.com", sent.email)

	w := doJSON(router, http.MethodPost, "/forgot-password", map[string]string{}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthController_ResetPassword_Flow(t *testing.T) {
	router, testDB, notifier := setupAuthControllerTest(t)
	createTestUser(t, testDB, "user@oms.com", "secret123", model.RoleCustomer, true)

	w := doJSON(router, http.MethodPost, "/forgot-password", ForgotPasswordRequest{Email: "user@oms.com"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	sent, ok := notifier.last()
	require.True(t, ok)

	w = doJSON(router, http.MethodPost, "/reset-password", ResetPasswordRequest{Token: sent.token, NewPassword: "short"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodPost, "/reset-password", ResetPasswordRequest{Token: sent.token, NewPassword: "brand-new-pass"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Password reset successfully", decodeBody[map[string]string](t, w)["message"])

	w = doJSON(router, http.MethodPost, "/reset-password", ResetPasswordRequest{Token: sent.token, NewPassword: "another-pass"}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, apperrors.AuthResetTokenInvalid, body.Error)
	assert.Equal(t, "Invalid or expired reset token", body.Message)

	w = doJSON(router, http.MethodPost, "/login", LoginRequest{Email: "user@oms.com", Password: "brand-new-pass"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decodeBody[LoginResponse](t, w).RequiresPasswordChange)
}

func TestAuthController_ChangePassword(t *testing.T) {
	router, testDB, _ := setupAuthControllerTest(t)
	user := createTestUser(t, testDB, "user@oms.com", "secret123", model.RoleCustomer, true)
	auth := bearerFor(t, user)

	tests := []struct {
		name         string
		auth         string
		body         interface{}
		expectedCode int
		expectedMsg  string
	}{
		{
			name:         "No token",
			body:         ChangePasswordRequest{CurrentPassword: "secret123", NewPassword: "newsecret"},
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "Wrong current password",
			auth:         auth,
			body:         ChangePasswordRequest{CurrentPassword: "wrong", NewPassword: "newsecret"},
			expectedCode: http.StatusBadRequest,
			expectedMsg:  "Current password is incorrect",
		},
		{
			name:         "New password too short",
			auth:         auth,
			body:         ChangePasswordRequest{CurrentPassword: "secret123", NewPassword: "abc"},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "Success",
			auth:         auth,
			body:         ChangePasswordRequest{CurrentPassword: "secret123", NewPassword: "newsecret"},
			expectedCode: http.StatusOK,
			expectedMsg:  "Password changed successfully",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(router, http.MethodPost, "/change-password", tt.body, tt.auth)

			require.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedMsg != "" {
				assert.Equal(t, tt.expectedMsg, decodeBody[map[string]string](t, w)["message"])
			}
		})
	}

	w := doJSON(router, http.MethodPost, "/login", LoginRequest{Email: "user@oms.com", Password: "newsecret"}, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthController_GetMe(t *testing.T) {
	router, testDB, _ := setupAuthControllerTest(t)
	user := createTestUser(t, testDB, "admin@oms.com", "Admin@123", model.RoleAdmin, true)

	w := doJSON(router, http.MethodGet, "/me", nil, bearerFor(t, user))
	require.Equal(t, http.StatusOK, w.Code)

	me := decodeBody[MeResponse](t, w)
	assert.Equal(t, user.ID, me.ID)
	assert.Equal(t, "Admin", me.Role)
	assert.True(t, me.IsActive)

	ghost := &model.User{ID: 9999, Email: "ghost@oms.com", Role: model.RoleAdmin}
	w = doJSON(router, http.MethodGet, "/me", nil, bearerFor(t, ghost))
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "User not found", decodeError(t, w).Message)
}
