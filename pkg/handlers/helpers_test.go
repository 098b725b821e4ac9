package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yadnesh111/AgriSaarthi/pkg/apperr"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func multipartRequest(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if field != "" {
		part, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.WriteField("crop", "rice"))
	require.NoError(t, mw.Close())

	req, _ := http.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func uploadRouter(scratch string, got **upload, gotErr *error) *gin.Engine {
	router := gin.New()
	router.POST("/upload", func(c *gin.Context) {
		*got, *gotErr = readUpload(c, scratch, "image")
		c.Status(http.StatusNoContent)
	})
	return router
}

func TestReadUpload(t *testing.T) {
	scratch := t.TempDir()
	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)

	var got *upload
	var err error
	w := httptest.NewRecorder()
	uploadRouter(scratch, &got, &err).ServeHTTP(w, multipartRequest(t, "image", "leaf.PNG", png))

	require.NoError(t, err)
	assert.Equal(t, png, got.data)
	assert.Equal(t, "image/png", got.contentType)

	entries, readErr := os.ReadDir(scratch)
	require.NoError(t, readErr)
	assert.Empty(t, entries, "staged upload should be removed")
}

func TestReadUploadMissingAndEmpty(t *testing.T) {
	scratch := t.TempDir()

	var got *upload
	var err error
	w := httptest.NewRecorder()
	uploadRouter(scratch, &got, &err).ServeHTTP(w, multipartRequest(t, "", "", nil))

	var vErr *apperr.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, []string{"image"}, vErr.Fields)
	assert.Nil(t, got)

	w = httptest.NewRecorder()
	uploadRouter(scratch, &got, &err).ServeHTTP(w, multipartRequest(t, "image", "leaf.jpg", nil))
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "image is empty", vErr.Error())
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", apperr.MissingFields("crop"), http.StatusBadRequest},
		{"no data", fmt.Errorf("market Pune: %w", apperr.ErrNoData), http.StatusBadRequest},
		{"upstream", &apperr.UpstreamError{Provider: "openrouter", StatusCode: 502, Body: "bad gateway"}, http.StatusInternalServerError},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/x", func(c *gin.Context) { respondError(c, "error", tt.err) })

			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, "/x", nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), `"error":`)
		})
	}
}

func TestHealthCheck(t *testing.T) {
	router := gin.New()
	router.Use(RequestLogger())
	router.GET("/health", HealthCheck)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
