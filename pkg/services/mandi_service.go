package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/yadnesh111/AgriSaarthi/pkg/apperr"
	"github.com/yadnesh111/AgriSaarthi/pkg/models"
)

// Field names used by the data.gov.in commodity price resource.
const (
	FieldState       = "state"
	FieldDistrict    = "district"
	FieldMarket      = "market"
	FieldCommodity   = "commodity"
	FieldVariety     = "variety"
	FieldArrivalDate = "arrival_date"
	FieldMinPrice    = "min_price"
	FieldMaxPrice    = "max_price"
	FieldModalPrice  = "modal_price"
)

var arrivalDateLayouts = []string{"02/01/2006", "2006-01-02", "02-01-2006"}

// MandiService fetches commodity price records from the open data API.
type MandiService struct {
	client  *resty.Client
	baseURL string
	apiKey  string
	limit   int
}

// NewMandiService creates a MandiService. limit caps the records per call.
func NewMandiService(baseURL, apiKey string, limit int, timeout time.Duration) *MandiService {
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetHeader("Accept", "application/json")

	return &MandiService{
		client:  client,
		baseURL: baseURL,
		apiKey:  apiKey,
		limit:   limit,
	}
}

type mandiResponse struct {
	Records []models.RawRecord `json:"records"`
}

// FetchPrices issues one request with the given filters and returns the
// "records" field verbatim. Only the first page is read.
func (s *MandiService) FetchPrices(ctx context.Context, filter models.PriceFilter) ([]models.RawRecord, error) {
	params := map[string]string{
		"api-key": s.apiKey,
		"format":  "json",
		"limit":   strconv.Itoa(s.limit),
	}
	if v := strings.TrimSpace(filter.State); v != "" {
		params["filters[state]"] = v
	}
	if v := strings.TrimSpace(filter.District); v != "" {
		params["filters[district]"] = v
	}
	if v := strings.TrimSpace(filter.Commodity); v != "" {
		params["filters[commodity]"] = v
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(s.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch mandi prices: %w", err)
	}

	if !resp.IsSuccess() {
		return nil, &apperr.DataSourceError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	var body mandiResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, &apperr.MalformedResponseError{Provider: "data.gov.in", Reason: err.Error()}
	}
	if body.Records == nil {
		return []models.RawRecord{}, nil
	}
	return body.Records, nil
}

// ParseArrivalDate parses the arrival dates the data source emits.
func ParseArrivalDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range arrivalDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParsePrice parses a price field into a decimal.
func ParsePrice(record models.RawRecord, field string) (decimal.Decimal, bool) {
	raw := strings.ReplaceAll(record.String(field), ",", "")
	if raw == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// SortByArrivalDesc orders records newest first. Records whose arrival date
// is missing or unparseable sort last; ties keep their upstream order.
func SortByArrivalDesc(records []models.RawRecord) {
	type dated struct {
		record models.RawRecord
		date   time.Time
	}
	entries := make([]dated, len(records))
	for i, r := range records {
		t, _ := ParseArrivalDate(r.String(FieldArrivalDate))
		entries[i] = dated{record: r, date: t}
	}
	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].date.After(entries[b].date)
	})
	for i, e := range entries {
		records[i] = e.record
	}
}

// BestMarket returns the record with the highest modal price for commodity.
func BestMarket(records []models.RawRecord, commodity string) (models.RawRecord, bool) {
	var best models.RawRecord
	var bestPrice decimal.Decimal
	found := false
	for _, r := range records {
		if !strings.EqualFold(r.String(FieldCommodity), strings.TrimSpace(commodity)) {
			continue
		}
		price, ok := ParsePrice(r, FieldModalPrice)
		if !ok {
			continue
		}
		if !found || price.GreaterThan(bestPrice) {
			best, bestPrice, found = r, price, true
		}
	}
	return best, found
}
