package handler

import (
	"net/http"

	"linkmint/internal/domain"
	"linkmint/internal/middleware"
	"linkmint/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type WithdrawalHandler struct {
	withdrawals *service.WithdrawalService
	otps        *service.OTPService
}

func NewWithdrawalHandler(withdrawals *service.WithdrawalService, otps *service.OTPService) *WithdrawalHandler {
	return &WithdrawalHandler{withdrawals: withdrawals, otps: otps}
}

// RequestOTP sends a withdrawal OTP to the user's verified email.
func (h *WithdrawalHandler) RequestOTP(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if err := h.otps.Issue(userID, domain.OTPPurposeWithdrawal); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "otp sent"})
}

// Create files a withdrawal request for the current user.
func (h *WithdrawalHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		Amount decimal.Decimal `json:"amount" binding:"required"`
		UPI    string          `json:"upi" binding:"required,max=64"`
		OTP    string          `json:"otp" binding:"required,len=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	w, err := h.withdrawals.Create(userID, req.Amount, req.UPI, req.OTP)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, w)
}

// List returns the current user's withdrawal history.
func (h *WithdrawalHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)
	list, err := h.withdrawals.List(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawals": list})
}
