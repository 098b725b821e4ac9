package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yadnesh111/AgriSaarthi/pkg/models"
)

// KrishiGPT answers a farmer question. Errors are reported under "response"
// so chat frontends can render them in place of an answer.
func (h *AdvisoryHandler) KrishiGPT(c *gin.Context) {
	var req models.KrishiGPTRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"response": "invalid request body: " + err.Error()})
		return
	}

	answer, err := h.advisory.ChatAnswer(c.Request.Context(), req.Query, req.Language, req.History)
	if err != nil {
		respondError(c, "response", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"response": answer})
}
