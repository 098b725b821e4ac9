package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yadnesh111/AgriSaarthi/pkg/models"
	"github.com/yadnesh111/AgriSaarthi/pkg/services"
)

// AdvisoryHandler serves the LLM-backed advice endpoints.
type AdvisoryHandler struct {
	advisory *services.AdvisoryService
}

// NewAdvisoryHandler creates an AdvisoryHandler.
func NewAdvisoryHandler(advisory *services.AdvisoryService) *AdvisoryHandler {
	return &AdvisoryHandler{advisory: advisory}
}

// FertilizerAdvice returns advice in the requested language plus the
// English original.
func (h *AdvisoryHandler) FertilizerAdvice(c *gin.Context) {
	var req models.FertilizerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	advice, err := h.advisory.FertilizerAdvice(c.Request.Context(), req)
	if err != nil {
		respondError(c, "error", err)
		return
	}

	c.JSON(http.StatusOK, advice)
}

// GenerateCalendar returns a dated activity calendar as plain text lines.
func (h *AdvisoryHandler) GenerateCalendar(c *gin.Context) {
	var req models.CalendarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	calendar, err := h.advisory.GenerateCalendar(c.Request.Context(), req)
	if err != nil {
		respondError(c, "error", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"calendar": calendar})
}
