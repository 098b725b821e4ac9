package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yadnesh111/AgriSaarthi/pkg/models"
	"github.com/yadnesh111/AgriSaarthi/pkg/prompts"
	"github.com/yadnesh111/AgriSaarthi/pkg/services"
)

const defaultDiagnosisCrop = "tomato"

// VisionHandler serves the photo based endpoints.
type VisionHandler struct {
	vision     *services.VisionService
	advisory   *services.AdvisoryService
	scratchDir string
}

// NewVisionHandler creates a VisionHandler. Uploads are staged in scratchDir.
func NewVisionHandler(vision *services.VisionService, advisory *services.AdvisoryService, scratchDir string) *VisionHandler {
	return &VisionHandler{
		vision:     vision,
		advisory:   advisory,
		scratchDir: scratchDir,
	}
}

// Diagnose classifies a leaf photo and explains the remedy.
func (h *VisionHandler) Diagnose(c *gin.Context) {
	crop := strings.TrimSpace(c.PostForm("crop"))
	if crop == "" {
		crop = defaultDiagnosisCrop
	}
	// The caller's code is echoed as sent; the prompt resolves unknown codes
	// to English.
	language := strings.TrimSpace(c.PostForm("language"))
	if language == "" {
		language = prompts.DefaultLanguageCode
	}
	symptoms := strings.TrimSpace(c.PostForm("symptoms"))

	if _, err := h.vision.ModelForCrop(crop); err != nil {
		respondError(c, "error", err)
		return
	}

	image, err := readUpload(c, h.scratchDir, "image")
	if err != nil {
		respondError(c, "error", err)
		return
	}

	ctx := c.Request.Context()
	prediction, err := h.vision.DiagnoseCrop(ctx, crop, image.data, image.contentType)
	if err != nil {
		respondError(c, "error", err)
		return
	}

	remedy, err := h.advisory.DiagnosisRemedy(ctx, crop, prediction.Label, symptoms, language)
	if err != nil {
		respondError(c, "error", err)
		return
	}

	c.JSON(http.StatusOK, models.DiagnosisResponse{
		Diagnosis:  remedy,
		Disease:    prediction.Label,
		Confidence: prediction.Score,
		Language:   language,
		Symptoms:   symptoms,
	})
}

// UploadCropPhoto reports the growth stage visible in a crop photo.
func (h *VisionHandler) UploadCropPhoto(c *gin.Context) {
	image, err := readUpload(c, h.scratchDir, "image")
	if err != nil {
		respondError(c, "error", err)
		return
	}

	stage, err := h.vision.GrowthStage(c.Request.Context(), image.data, image.contentType)
	if err != nil {
		respondError(c, "error", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"growth_stage": stage})
}
