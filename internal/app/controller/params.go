package controller

import (
	"strconv"

	"github.com/gin-gonic/gin"
	apperrors "github.com/omsapp/oms-backend/internal/errors"
)

// parseIDParam reads a positive numeric path parameter, writing a 400 when it is not one
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid ID")
		return 0, false
	}
	return uint(id), true
}
