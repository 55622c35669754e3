package handler

import (
	"net/http"

	"linkmint/internal/service"

	"github.com/gin-gonic/gin"
)

type ViewHandler struct {
	earnings *service.EarningsService
}

func NewViewHandler(earnings *service.EarningsService) *ViewHandler {
	return &ViewHandler{earnings: earnings}
}

// Record is called by the interstitial sequencer once per completed view.
// The sequencer supplies the idempotency key, so its own retries are safe.
func (h *ViewHandler) Record(c *gin.Context) {
	var req struct {
		LinkID  uint   `json:"link_id" binding:"required"`
		ViewKey string `json:"view_key" binding:"required,max=64"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	credited, err := h.earnings.RecordViewRetry(c.Request.Context(), req.LinkID, req.ViewKey)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"link_id":  req.LinkID,
		"view_key": req.ViewKey,
		"credited": credited,
	})
}
