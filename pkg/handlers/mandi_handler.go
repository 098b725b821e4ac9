package handlers

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yadnesh111/AgriSaarthi/pkg/apperr"
	"github.com/yadnesh111/AgriSaarthi/pkg/models"
	"github.com/yadnesh111/AgriSaarthi/pkg/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// MandiHandler serves market price data and forecasts.
type MandiHandler struct {
	mandi *services.MandiService
	trend *services.PriceTrendService
}

// NewMandiHandler creates a MandiHandler.
func NewMandiHandler(mandi *services.MandiService, trend *services.PriceTrendService) *MandiHandler {
	return &MandiHandler{mandi: mandi, trend: trend}
}

func (h *MandiHandler) fetchSorted(c *gin.Context) ([]models.RawRecord, bool) {
	var filter models.PriceFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}

	records, err := h.mandi.FetchPrices(c.Request.Context(), filter)
	if err != nil {
		respondError(c, "error", err)
		return nil, false
	}
	if records == nil {
		records = []models.RawRecord{}
	}
	services.SortByArrivalDesc(records)
	return records, true
}

// GetMandiRates returns records for the optional state, district and
// commodity filters, newest arrival first.
func (h *MandiHandler) GetMandiRates(c *gin.Context) {
	records, ok := h.fetchSorted(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

// GetBestMandi returns the market paying the highest modal price.
func (h *MandiHandler) GetBestMandi(c *gin.Context) {
	commodity := strings.TrimSpace(c.Query("commodity"))
	if commodity == "" {
		respondError(c, "error", apperr.MissingFields("commodity"))
		return
	}

	records, ok := h.fetchSorted(c)
	if !ok {
		return
	}

	best, found := services.BestMarket(records, commodity)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "no mandi rates found for " + commodity})
		return
	}
	c.JSON(http.StatusOK, gin.H{"best": best})
}

// ExportMandiRates returns the same records as GetMandiRates as an xlsx file.
func (h *MandiHandler) ExportMandiRates(c *gin.Context) {
	records, ok := h.fetchSorted(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := services.ExportRecordsXLSX(records, &buf); err != nil {
		respondError(c, "error", err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="mandi-rates.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// PredictPriceTrend returns recent history and a three day projection for
// one market.
func (h *MandiHandler) PredictPriceTrend(c *gin.Context) {
	state := strings.TrimSpace(c.Query("state"))
	market := strings.TrimSpace(c.Query("market"))
	commodity := strings.TrimSpace(c.Query("commodity"))

	var missing []string
	for _, field := range [][2]string{{"state", state}, {"market", market}, {"commodity", commodity}} {
		if field[1] == "" {
			missing = append(missing, field[0])
		}
	}
	if len(missing) > 0 {
		respondError(c, "error", apperr.MissingFields(missing...))
		return
	}

	result, err := h.trend.PredictTrend(c.Request.Context(), state, market, commodity)
	if err != nil {
		respondError(c, "error", err)
		return
	}
	c.JSON(http.StatusOK, result)
}
