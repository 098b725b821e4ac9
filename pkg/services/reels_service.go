package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/yadnesh111/AgriSaarthi/pkg/apperr"
	"github.com/yadnesh111/AgriSaarthi/pkg/models"
)

const youtubeProvider = "youtube"

// ReelsService searches short farming videos on YouTube.
type ReelsService struct {
	client *resty.Client
	apiKey string
	query  string
	limit  int
}

// NewReelsService creates a ReelsService.
func NewReelsService(baseURL, apiKey, query string, limit int, timeout time.Duration) *ReelsService {
	client := resty.New()
	client.SetBaseURL(strings.TrimSuffix(baseURL, "/"))
	client.SetTimeout(timeout)

	return &ReelsService{
		client: client,
		apiKey: apiKey,
		query:  query,
		limit:  limit,
	}
}

type youtubeThumbnail struct {
	URL string `json:"url"`
}

type youtubeSearchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title       string                      `json:"title"`
			Description string                      `json:"description"`
			Thumbnails  map[string]youtubeThumbnail `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

// FetchReels returns short videos matching the configured query.
func (s *ReelsService) FetchReels(ctx context.Context) ([]models.Reel, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("YOUTUBE_API_KEY is not configured")
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"part":          "snippet",
			"type":          "video",
			"videoDuration": "short",
			"q":             s.query,
			"maxResults":    strconv.Itoa(s.limit),
			"key":           s.apiKey,
		}).
		Get("/search")
	if err != nil {
		return nil, fmt.Errorf("youtube search failed: %w", err)
	}

	if !resp.IsSuccess() {
		return nil, &apperr.UpstreamError{
			Provider:   youtubeProvider,
			StatusCode: resp.StatusCode(),
			Body:       resp.String(),
		}
	}

	var body youtubeSearchResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, &apperr.MalformedResponseError{Provider: youtubeProvider, Reason: err.Error()}
	}

	reels := make([]models.Reel, 0, len(body.Items))
	for _, item := range body.Items {
		if item.ID.VideoID == "" {
			continue
		}
		reels = append(reels, models.Reel{
			Title:       item.Snippet.Title,
			Description: item.Snippet.Description,
			Thumbnail:   pickThumbnail(item.Snippet.Thumbnails),
			VideoID:     item.ID.VideoID,
		})
	}
	return reels, nil
}

func pickThumbnail(thumbnails map[string]youtubeThumbnail) string {
	for _, size := range []string{"high", "medium", "default"} {
		if t, ok := thumbnails[size]; ok && t.URL != "" {
			return t.URL
		}
	}
	return ""
}
