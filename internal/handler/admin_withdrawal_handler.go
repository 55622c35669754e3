package handler

import (
	"net/http"
	"strconv"

	"linkmint/internal/service"

	"github.com/gin-gonic/gin"
)

type AdminWithdrawalHandler struct {
	withdrawals *service.WithdrawalService
}

func NewAdminWithdrawalHandler(withdrawals *service.WithdrawalService) *AdminWithdrawalHandler {
	return &AdminWithdrawalHandler{withdrawals: withdrawals}
}

// List returns all withdrawal requests, optionally filtered by ?status=.
func (h *AdminWithdrawalHandler) List(c *gin.Context) {
	list, err := h.withdrawals.ListAll(c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"withdrawals": list})
}

func (h *AdminWithdrawalHandler) Approve(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}
	w, err := h.withdrawals.Approve(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

func (h *AdminWithdrawalHandler) Reject(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}
	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	w, err := h.withdrawals.Reject(id, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

// Bulk applies approve/reject across many requests with per-item partial
// success; failures come back alongside the ids that went through.
func (h *AdminWithdrawalHandler) Bulk(c *gin.Context) {
	var req struct {
		Action string `json:"action" binding:"required,oneof=approve reject"`
		IDs    []uint `json:"ids" binding:"required,min=1"`
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.withdrawals.BulkApply(req.Action, req.IDs, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Export streams all withdrawal requests as a CSV attachment.
func (h *AdminWithdrawalHandler) Export(c *gin.Context) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="withdrawals.csv"`)
	if err := h.withdrawals.ExportCSV(c.Writer); err != nil {
		respondError(c, err)
		return
	}
}

func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	return uint(id), err
}
