package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yadnesh111/AgriSaarthi/pkg/services"
)

// ContentHandler serves news and short videos.
type ContentHandler struct {
	news  *services.NewsService
	reels *services.ReelsService
}

// NewContentHandler creates a ContentHandler.
func NewContentHandler(news *services.NewsService, reels *services.ReelsService) *ContentHandler {
	return &ContentHandler{news: news, reels: reels}
}

// GetNews returns summarized agriculture news for the optional district.
func (h *ContentHandler) GetNews(c *gin.Context) {
	articles, err := h.news.LatestNews(c.Request.Context(), c.Query("district"))
	if err != nil {
		respondError(c, "error", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"articles": articles})
}

// GetReels returns short farming videos.
func (h *ContentHandler) GetReels(c *gin.Context) {
	reels, err := h.reels.FetchReels(c.Request.Context())
	if err != nil {
		respondError(c, "error", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reels": reels})
}
