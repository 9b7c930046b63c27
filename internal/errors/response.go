package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// fallbackMessages fill in replies written with an empty message
var fallbackMessages = map[int]string{
	http.StatusUnauthorized:        "Authentication required",
	http.StatusForbidden:           "Access denied",
	http.StatusTooManyRequests:     "Too many requests. Please slow down",
	http.StatusInternalServerError: "An unexpected error occurred. Please try again later",
}

// RespondWithError writes an error body with the given status and code
func RespondWithError(c *gin.Context, status int, code string, message string) {
	if message == "" {
		message = fallbackMessages[status]
	}
	c.JSON(status, ErrorResponse{Error: code, Message: message})
}

func Unauthorized(c *gin.Context, message string) {
	RespondWithError(c, http.StatusUnauthorized, AuthUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	RespondWithError(c, http.StatusForbidden, AuthzForbidden, message)
}

func BadRequest(c *gin.Context, code string, message string) {
	RespondWithError(c, http.StatusBadRequest, code, message)
}

func NotFound(c *gin.Context, code string, message string) {
	RespondWithError(c, http.StatusNotFound, code, message)
}

func TooManyRequests(c *gin.Context) {
	RespondWithError(c, http.StatusTooManyRequests, RateLimited, "")
}

// InternalError never carries driver or stack detail to the client
func InternalError(c *gin.Context, message string) {
	RespondWithError(c, http.StatusInternalServerError, InternalServerError, message)
}
