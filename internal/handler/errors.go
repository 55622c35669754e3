package handler

import (
	"errors"
	"net/http"

	"linkmint/internal/domain"

	"github.com/gin-gonic/gin"
)

// respondError maps domain sentinels to status codes. Validation failures
// keep their specific message so the user knows which precondition to fix.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrTransientStore):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "temporary storage error, retry later"})
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrWindowClosed),
		errors.Is(err, domain.ErrUPIMismatch),
		errors.Is(err, domain.ErrOTPInvalid),
		errors.Is(err, domain.ErrOTPExpired),
		errors.Is(err, domain.ErrOTPConsumed),
		errors.Is(err, domain.ErrReasonRequired),
		errors.Is(err, domain.ErrInvalidStateTransition):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
