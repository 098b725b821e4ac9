package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yadnesh111/AgriSaarthi/pkg/apperr"
)

func TestFetchReels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "snippet", q.Get("part"))
		assert.Equal(t, "video", q.Get("type"))
		assert.Equal(t, "short", q.Get("videoDuration"))
		assert.Equal(t, "farming tips", q.Get("q"))
		assert.Equal(t, "5", q.Get("maxResults"))
		assert.Equal(t, "yt-key", q.Get("key"))

		w.Write([]byte(`{"items":[
			{"id":{"kind":"youtube#video","videoId":"abc123"},"snippet":{"title":"Drip irrigation","description":"Save water",
			 "thumbnails":{"default":{"url":"https://i.ytimg.com/d.jpg"},"high":{"url":"https://i.ytimg.com/h.jpg"}}}},
			{"id":{"kind":"youtube#channel","channelId":"xyz"},"snippet":{"title":"A channel"}},
			{"id":{"videoId":"def456"},"snippet":{"title":"Mulching","description":"","thumbnails":{"medium":{"url":"https://i.ytimg.com/m.jpg"}}}}
		]}`))
	}))
	defer server.Close()

	service := NewReelsService(server.URL, "yt-key", "farming tips", 5, 5*time.Second)
	reels, err := service.FetchReels(context.Background())
	require.NoError(t, err)

	require.Len(t, reels, 2)
	assert.Equal(t, "abc123", reels[0].VideoID)
	assert.Equal(t, "Drip irrigation", reels[0].Title)
	assert.Equal(t, "https://i.ytimg.com/h.jpg", reels[0].Thumbnail)
	assert.Equal(t, "https://i.ytimg.com/m.jpg", reels[1].Thumbnail)
}

func TestFetchReelsUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":403,"message":"quotaExceeded"}}`))
	}))
	defer server.Close()

	service := NewReelsService(server.URL, "yt-key", "farming", 5, 5*time.Second)
	_, err := service.FetchReels(context.Background())

	var upstreamErr *apperr.UpstreamError
	require.True(t, errors.As(err, &upstreamErr))
	assert.Equal(t, "youtube", upstreamErr.Provider)
	assert.Contains(t, err.Error(), "quotaExceeded")
}

func TestFetchReelsRequiresKey(t *testing.T) {
	service := NewReelsService("http://127.0.0.1:1", "", "farming", 5, time.Second)
	_, err := service.FetchReels(context.Background())
	assert.ErrorContains(t, err, "YOUTUBE_API_KEY")
}
