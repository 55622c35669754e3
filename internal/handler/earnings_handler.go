package handler

import (
	"net/http"

	"linkmint/internal/middleware"
	"linkmint/internal/service"

	"github.com/gin-gonic/gin"
)

type EarningsHandler struct {
	earnings *service.EarningsService
}

func NewEarningsHandler(earnings *service.EarningsService) *EarningsHandler {
	return &EarningsHandler{earnings: earnings}
}

// GetSummary returns the current user's lifetime total, IST current-month
// total and available balance.
func (h *EarningsHandler) GetSummary(c *gin.Context) {
	userID := middleware.GetUserID(c)
	sum, err := h.earnings.GetSummary(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

// ListReferrals returns the current user's referral ledger rows.
func (h *EarningsHandler) ListReferrals(c *gin.Context) {
	userID := middleware.GetUserID(c)
	list, err := h.earnings.ListReferrals(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"referrals": list})
}
