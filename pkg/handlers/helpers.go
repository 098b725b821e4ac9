package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/yadnesh111/AgriSaarthi/pkg/apperr"
)

// respondError writes err under key with the status apperr maps it to.
func respondError(c *gin.Context, key string, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	}
	c.JSON(status, gin.H{key: err.Error()})
}

// upload is an image read from a multipart request.
type upload struct {
	data        []byte
	contentType string
}

// readUpload stores the multipart file field in scratchDir under a random
// name, reads it back and removes it before returning.
func readUpload(c *gin.Context, scratchDir, field string) (*upload, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return nil, apperr.MissingFields(field)
	}

	if scratchDir == "" {
		scratchDir = os.TempDir()
	}
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	path := filepath.Join(scratchDir, "upload-"+uuid.NewString()+ext)

	if err := c.SaveUploadedFile(fileHeader, path); err != nil {
		return nil, fmt.Errorf("failed to save upload: %w", err)
	}
	defer func() {
		if err := os.Remove(path); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("failed to remove upload")
		}
	}()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, apperr.Invalid("%s is empty", field)
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	return &upload{data: data, contentType: contentType}, nil
}
