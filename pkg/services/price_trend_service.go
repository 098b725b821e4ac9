package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/yadnesh111/AgriSaarthi/pkg/apperr"
	"github.com/yadnesh111/AgriSaarthi/pkg/models"
)

const (
	trendHistorySize  = 15
	trendForecastDays = 3
)

// PriceFetcher is the subset of MandiService the forecaster needs.
type PriceFetcher interface {
	FetchPrices(ctx context.Context, filter models.PriceFilter) ([]models.RawRecord, error)
}

// PriceTrendService projects near-future modal prices for one market.
// The projection is a straight-line extrapolation with no confidence measure.
type PriceTrendService struct {
	fetcher PriceFetcher
}

// NewPriceTrendService creates a PriceTrendService.
func NewPriceTrendService(fetcher PriceFetcher) *PriceTrendService {
	return &PriceTrendService{fetcher: fetcher}
}

// PredictTrend fetches state+commodity prices, keeps the requested market,
// fits a line over elapsed days and projects the next three calendar days.
func (s *PriceTrendService) PredictTrend(ctx context.Context, state, market, commodity string) (*models.TrendResult, error) {
	records, err := s.fetcher.FetchPrices(ctx, models.PriceFilter{State: state, Commodity: commodity})
	if err != nil {
		return nil, err
	}

	var matched []models.RawRecord
	for _, r := range records {
		if r.String(FieldMarket) == market {
			matched = append(matched, r)
		}
	}
	if len(matched) == 0 {
		return nil, fmt.Errorf("%w for market %q", apperr.ErrNoData, market)
	}

	series := cleanPriceSeries(matched)
	if len(series) == 0 {
		return nil, fmt.Errorf("%w for market %q", apperr.ErrInvalidData, market)
	}
	if dropped := len(matched) - len(series); dropped > 0 {
		log.Debug().Int("dropped", dropped).Str("market", market).Msg("discarded unparseable price records")
	}

	sort.SliceStable(series, func(i, j int) bool {
		return series[i].Date.Before(series[j].Date)
	})

	first := series[0].Date
	x := make([]float64, len(series))
	y := make([]float64, len(series))
	for i, p := range series {
		x[i] = elapsedDays(first, p)
		y[i] = p.ModalPrice
	}

	fit, err := LinearRegression(x, y)
	if err != nil {
		return nil, fmt.Errorf("failed to fit price trend: %w", err)
	}

	last := series[len(series)-1]
	lastX := x[len(x)-1]
	prediction := make([]models.PricePoint, 0, trendForecastDays)
	for step := 1; step <= trendForecastDays; step++ {
		price := decimal.NewFromFloat(fit.Predict(lastX + float64(step))).Round(2)
		prediction = append(prediction, models.PricePoint{
			Market:     last.Market,
			Commodity:  last.Commodity,
			Date:       last.Date.AddDate(0, 0, step),
			ModalPrice: price.InexactFloat64(),
		})
	}

	history := series
	if len(history) > trendHistorySize {
		history = history[len(history)-trendHistorySize:]
	}

	return &models.TrendResult{
		History:    history,
		Prediction: prediction,
	}, nil
}

func cleanPriceSeries(records []models.RawRecord) []models.PricePoint {
	series := make([]models.PricePoint, 0, len(records))
	for _, r := range records {
		date, ok := ParseArrivalDate(r.String(FieldArrivalDate))
		if !ok {
			continue
		}
		price, ok := ParsePrice(r, FieldModalPrice)
		if !ok {
			continue
		}
		series = append(series, models.PricePoint{
			Market:     r.String(FieldMarket),
			Commodity:  r.String(FieldCommodity),
			Date:       date,
			ModalPrice: price.InexactFloat64(),
		})
	}
	return series
}

func elapsedDays(first time.Time, p models.PricePoint) float64 {
	return p.Date.Sub(first).Hours() / 24
}
