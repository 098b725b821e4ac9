package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// RawRecord is one mandi price record exactly as the data source returns it.
// Values are usually strings; no coercion happens until forecasting.
type RawRecord map[string]any

// String returns the value for key formatted as a trimmed string.
func (r RawRecord) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

// PriceFilter holds the optional mandi filters. Empty fields are not sent.
type PriceFilter struct {
	State     string `form:"state"`
	District  string `form:"district"`
	Commodity string `form:"commodity"`
}

// PricePoint is a cleaned observation or a projected price.
type PricePoint struct {
	Market     string    `json:"market"`
	Commodity  string    `json:"commodity"`
	Date       time.Time `json:"-"`
	ModalPrice float64   `json:"modal_price"`
}

// MarshalJSON writes the arrival date as YYYY-MM-DD.
func (p PricePoint) MarshalJSON() ([]byte, error) {
	type alias PricePoint
	return json.Marshal(struct {
		alias
		ArrivalDate string `json:"arrival_date"`
	}{
		alias:       alias(p),
		ArrivalDate: p.Date.Format("2006-01-02"),
	})
}

// TrendResult is the response of GET /predict-price-trend.
type TrendResult struct {
	History    []PricePoint `json:"history"`
	Prediction []PricePoint `json:"prediction"`
}

// RegressionResult holds a fitted line y = Slope*x + Intercept.
type RegressionResult struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	RSquared  float64 `json:"r_squared"`
}

// Predict evaluates the fitted line at x.
func (r RegressionResult) Predict(x float64) float64 {
	return r.Slope*x + r.Intercept
}

// FlexString accepts either a JSON string or a JSON number.
// Frontends send soil_ph and farmSize both ways.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*f = FlexString(n.String())
	return nil
}

// KrishiGPTRequest is the body of POST /krishigpt and POST /chat.
// History alternates farmer and assistant turns, starting with the farmer.
type KrishiGPTRequest struct {
	Query    string   `json:"query"`
	Language string   `json:"language,omitempty"`
	History  []string `json:"history,omitempty"`
}

// FertilizerRequest is the body of POST /fertilizer-advice.
type FertilizerRequest struct {
	Crop     string     `json:"crop"`
	SoilPH   FlexString `json:"soil_ph"`
	CropAge  FlexString `json:"crop_age,omitempty"`
	Weather  string     `json:"weather"`
	Language string     `json:"language,omitempty"`
}

// FertilizerAdvice is the response of POST /fertilizer-advice.
type FertilizerAdvice struct {
	AIAdvice       string `json:"ai_advice"`
	EnglishVersion string `json:"english_version"`
}

// CalendarRequest is the body of POST /generate-calendar.
type CalendarRequest struct {
	Crop       string     `json:"crop"`
	SowingDate string     `json:"sowingDate"`
	SoilType   string     `json:"soilType"`
	FarmSize   FlexString `json:"farmSize"`
	Location   string     `json:"location"`
	Language   string     `json:"language,omitempty"`
}

// DiagnosisResponse is the response of POST /diagnose.
type DiagnosisResponse struct {
	Diagnosis  string  `json:"diagnosis"`
	Disease    string  `json:"disease"`
	Confidence float64 `json:"confidence"`
	Language   string  `json:"language"`
	Symptoms   string  `json:"symptoms"`
}

// Prediction is one class returned by the vision inference service.
type Prediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// NewsArticle is one summarized news item.
type NewsArticle struct {
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	URL       string `json:"url"`
	Published string `json:"published"`
}

// Reel is one short farming video.
type Reel struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
	VideoID     string `json:"videoId"`
}
