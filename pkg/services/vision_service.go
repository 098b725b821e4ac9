package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/yadnesh111/AgriSaarthi/pkg/apperr"
	"github.com/yadnesh111/AgriSaarthi/pkg/models"
)

const visionProvider = "huggingface"

// Growth stages reported by POST /upload-crop-photo.
const (
	StageEarly      = "Early"
	StageVegetative = "Vegetative"
	StageFlowering  = "Flowering"
	StageFruiting   = "Fruiting"
	StageHarvest    = "Harvest"
)

// Checked in order; the first stage with a matching keyword wins.
var growthStageKeywords = []struct {
	stage    string
	keywords []string
}{
	{StageHarvest, []string{"harvest", "mature", "ripe"}},
	{StageFruiting, []string{"fruit", "pod", "grain", "boll"}},
	{StageFlowering, []string{"flower", "bloom", "tassel", "heading"}},
	{StageVegetative, []string{"vegetative", "tillering", "leaf", "leaves"}},
	{StageEarly, []string{"early", "seedling", "germination", "sprout"}},
}

// VisionService classifies crop photos with a hosted inference API.
type VisionService struct {
	client           *resty.Client
	apiKey           string
	cropModels       map[string]string
	growthStageModel string
}

// NewVisionService creates a VisionService. cropModels maps a lower-case crop
// name to the disease classification model for it.
func NewVisionService(baseURL, apiKey string, cropModels map[string]string, growthStageModel string, timeout time.Duration) *VisionService {
	client := resty.New()
	client.SetBaseURL(strings.TrimSuffix(baseURL, "/"))
	client.SetTimeout(timeout)

	return &VisionService{
		client:           client,
		apiKey:           apiKey,
		cropModels:       cropModels,
		growthStageModel: growthStageModel,
	}
}

// ModelForCrop returns the disease model for crop.
func (s *VisionService) ModelForCrop(crop string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(crop))
	model, ok := s.cropModels[key]
	if !ok || model == "" {
		supported := make([]string, 0, len(s.cropModels))
		for name := range s.cropModels {
			supported = append(supported, name)
		}
		sort.Strings(supported)
		return "", apperr.Invalid("unsupported crop %q, expected one of: %s", crop, strings.Join(supported, ", "))
	}
	return model, nil
}

// Classify posts image to model and returns predictions, best first.
func (s *VisionService) Classify(ctx context.Context, model string, image []byte, contentType string) ([]models.Prediction, error) {
	if len(image) == 0 {
		return nil, apperr.Invalid("image is empty")
	}
	if contentType == "" {
		contentType = http.DetectContentType(image)
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(s.apiKey).
		SetHeader("Content-Type", contentType).
		SetBody(image).
		Post("/" + strings.TrimPrefix(model, "/"))
	if err != nil {
		return nil, fmt.Errorf("vision request failed: %w", err)
	}

	if !resp.IsSuccess() {
		return nil, &apperr.UpstreamError{
			Provider:   visionProvider,
			StatusCode: resp.StatusCode(),
			Body:       resp.String(),
		}
	}

	var predictions []models.Prediction
	if err := json.Unmarshal(resp.Body(), &predictions); err != nil {
		return nil, &apperr.MalformedResponseError{Provider: visionProvider, Reason: err.Error()}
	}
	if len(predictions) == 0 {
		return nil, &apperr.MalformedResponseError{Provider: visionProvider, Reason: "no predictions"}
	}

	sort.SliceStable(predictions, func(i, j int) bool {
		return predictions[i].Score > predictions[j].Score
	})
	return predictions, nil
}

// DiagnoseCrop classifies a leaf photo with the crop's disease model and
// returns the top prediction.
func (s *VisionService) DiagnoseCrop(ctx context.Context, crop string, image []byte, contentType string) (*models.Prediction, error) {
	model, err := s.ModelForCrop(crop)
	if err != nil {
		return nil, err
	}
	predictions, err := s.Classify(ctx, model, image, contentType)
	if err != nil {
		return nil, err
	}
	return &predictions[0], nil
}

// GrowthStage classifies a crop photo and maps the top label to a stage.
func (s *VisionService) GrowthStage(ctx context.Context, image []byte, contentType string) (string, error) {
	if s.growthStageModel == "" {
		return "", fmt.Errorf("GROWTH_STAGE_MODEL is not configured")
	}
	predictions, err := s.Classify(ctx, s.growthStageModel, image, contentType)
	if err != nil {
		return "", err
	}
	return GrowthStageFromLabel(predictions[0].Label), nil
}

// GrowthStageFromLabel maps a free-form classifier label to a growth stage.
// Labels with no known keyword are treated as Vegetative.
func GrowthStageFromLabel(label string) string {
	lower := strings.ToLower(label)
	for _, entry := range growthStageKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(lower, keyword) {
				return entry.stage
			}
		}
	}
	return StageVegetative
}
