package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/omsapp/oms-backend/internal/app/service"
	apperrors "github.com/omsapp/oms-backend/internal/errors"
	"github.com/omsapp/oms-backend/internal/middleware"
)

// ForgotPasswordMessage is returned for every forgot-password request, known address or not
const ForgotPasswordMessage = "If the email exists, a password reset link has been sent."

type AuthController struct {
	authService          service.AuthService
	passwordResetService service.PasswordResetService
}

func NewAuthController(authService service.AuthService, passwordResetService service.PasswordResetService) *AuthController {
	return &AuthController{
		authService:          authService,
		passwordResetService: passwordResetService,
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token                  string `json:"token"`
	Email                  string `json:"email"`
	Role                   string `json:"role"`
	FirstName              string `json:"firstName"`
	LastName               string `json:"lastName"`
	RequiresPasswordChange bool   `json:"requiresPasswordChange"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

// bcrypt ignores nothing past 72 bytes; it rejects longer input outright
type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=6,max=72"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6,max=72"`
}

type MeResponse struct {
	ID                     uint   `json:"id"`
	Email                  string `json:"email"`
	Role                   string `json:"role"`
	FirstName              string `json:"firstName"`
	LastName               string `json:"lastName"`
	IsActive               bool   `json:"isActive"`
	RequiresPasswordChange bool   `json:"requiresPasswordChange"`
}

// Login handles credential login
// POST /api/auth/login
func (ctrl *AuthController) Login(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid login request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Email and password are required")
		return
	}

	result, err := ctrl.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthInvalidCredentials, "Invalid email or password")
		case errors.Is(err, service.ErrAccountInactive):
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthAccountInactive, "Account is inactive")
		default:
			log.Error("Login failed", err)
			apperrors.InternalError(c, "")
		}
		return
	}

	user := result.User
	c.JSON(http.StatusOK, LoginResponse{
		Token:                  result.Token,
		Email:                  user.Email,
		Role:                   string(user.Role),
		FirstName:              user.FirstName,
		LastName:               user.LastName,
		RequiresPasswordChange: user.RequiresPasswordChange(),
	})
}

// ForgotPassword issues a reset link when the address is known
// POST /api/auth/forgot-password
func (ctrl *AuthController) ForgotPassword(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationRequired, "Email is required")
		return
	}

	if err := ctrl.passwordResetService.RequestReset(c.Request.Context(), req.Email); err != nil {
		log.Error("Failed to process password reset request", err)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": ForgotPasswordMessage,
	})
}

// ResetPassword redeems a reset token
// POST /api/auth/reset-password
func (ctrl *AuthController) ResetPassword(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid reset password request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Token and a new password of 6 to 72 characters are required")
		return
	}

	if err := ctrl.passwordResetService.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		if errors.Is(err, service.ErrInvalidResetToken) {
			apperrors.BadRequest(c, apperrors.AuthResetTokenInvalid, "Invalid or expired reset token")
			return
		}
		log.Error("Failed to reset password", err)
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password reset successfully",
	})
}

// ChangePassword replaces the caller's password
// POST /api/auth/change-password
func (ctrl *AuthController) ChangePassword(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid change password request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Current password and a new password of 6 to 72 characters are required")
		return
	}

	if err := ctrl.authService.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			apperrors.Unauthorized(c, "User not found")
		case errors.Is(err, service.ErrIncorrectPassword):
			apperrors.BadRequest(c, apperrors.AuthPasswordMismatch, "Current password is incorrect")
		default:
			log.Error("Failed to change password", err, map[string]interface{}{
				"user_id": userID,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password changed successfully",
	})
}

// GetMe returns the authenticated user
// GET /api/auth/me
func (ctrl *AuthController) GetMe(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	user, err := ctrl.authService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.Unauthorized(c, "User not found")
			return
		}
		log.Error("Failed to load current user", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, MeResponse{
		ID:                     user.ID,
		Email:                  user.Email,
		Role:                   string(user.Role),
		FirstName:              user.FirstName,
		LastName:               user.LastName,
		IsActive:               user.IsActive,
		RequiresPasswordChange: user.RequiresPasswordChange(),
	})
}
