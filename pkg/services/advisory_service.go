package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	config "github.com/yadnesh111/AgriSaarthi/configs"
	"github.com/yadnesh111/AgriSaarthi/pkg/apperr"
	"github.com/yadnesh111/AgriSaarthi/pkg/models"
	"github.com/yadnesh111/AgriSaarthi/pkg/openrouter"
	"github.com/yadnesh111/AgriSaarthi/pkg/prompts"
)

const (
	// DefaultCropDurationDays is used when the model gives no usable estimate.
	DefaultCropDurationDays = 120
	minCropDurationDays     = 7
	maxCropDurationDays     = 400

	// NewsSummaryPlaceholder replaces a summary that could not be generated.
	NewsSummaryPlaceholder = "Summary not available."
)

var firstNumber = regexp.MustCompile(`\d+`)

// Completer sends a chat completion request.
type Completer interface {
	Complete(ctx context.Context, messages []openrouter.ChatMessage, opts openrouter.CompletionOptions) (string, error)
}

// ModelSet names the completion model used per use case.
type ModelSet struct {
	Chat      string
	Advice    string
	Calendar  string
	News      string
	Translate string
}

// AdvisoryService sequences prompt building, completion and translation.
type AdvisoryService struct {
	completer Completer
	models    ModelSet
	persona   *config.SystemPromptConfig
}

// NewAdvisoryService creates an AdvisoryService. A nil persona falls back to
// the built-in KrishiGPT persona.
func NewAdvisoryService(completer Completer, modelSet ModelSet, persona *config.SystemPromptConfig) *AdvisoryService {
	if persona == nil {
		persona = config.DefaultSystemPrompt()
	}
	return &AdvisoryService{
		completer: completer,
		models:    modelSet,
		persona:   persona,
	}
}

func (s *AdvisoryService) ask(ctx context.Context, opts openrouter.CompletionOptions, withPersona bool, prompt string) (string, error) {
	messages := make([]openrouter.ChatMessage, 0, 2)
	if withPersona {
		messages = append(messages, openrouter.ChatMessage{Role: openrouter.RoleSystem, Content: s.persona.BuildSystemPrompt()})
	}
	messages = append(messages, openrouter.ChatMessage{Role: openrouter.RoleUser, Content: prompt})
	return s.completer.Complete(ctx, messages, opts)
}

// Translate rewrites text into lang. English input is returned as is and no
// request is made.
func (s *AdvisoryService) Translate(ctx context.Context, text string, lang prompts.Language) (string, error) {
	if lang.IsDefault() {
		return text, nil
	}
	prompt, err := prompts.BuildTranslationPrompt(prompts.Context{"text": text, "language": lang.Code})
	if err != nil {
		return "", err
	}
	translated, err := s.ask(ctx, openrouter.CompletionOptions{Model: s.models.Translate, Temperature: 0.3}, false, prompt)
	if err != nil {
		return "", fmt.Errorf("translation to %s failed: %w", lang.Name, err)
	}
	return translated, nil
}

// FertilizerAdvice generates English advice, then translates it when the
// requested language is not English.
func (s *AdvisoryService) FertilizerAdvice(ctx context.Context, req models.FertilizerRequest) (*models.FertilizerAdvice, error) {
	prompt, err := prompts.BuildFertilizerPrompt(prompts.Context{
		"crop":     req.Crop,
		"soil_ph":  string(req.SoilPH),
		"crop_age": string(req.CropAge),
		"weather":  req.Weather,
		"language": prompts.DefaultLanguageCode,
	})
	if err != nil {
		return nil, err
	}

	english, err := s.ask(ctx, openrouter.CompletionOptions{Model: s.models.Advice, Temperature: 0.5, MaxTokens: 600}, true, prompt)
	if err != nil {
		return nil, fmt.Errorf("fertilizer advice failed: %w", err)
	}

	localized, err := s.Translate(ctx, english, prompts.ResolveLanguage(req.Language))
	if err != nil {
		return nil, err
	}

	return &models.FertilizerAdvice{
		AIAdvice:       localized,
		EnglishVersion: english,
	}, nil
}

// ChatAnswer answers a KrishiGPT question. history alternates farmer and
// assistant turns, starting with the farmer.
func (s *AdvisoryService) ChatAnswer(ctx context.Context, query, language string, history []string) (string, error) {
	if ok, response := s.persona.CheckSpecialCommand(query); ok {
		return response, nil
	}

	prompt, err := prompts.BuildChatPrompt(prompts.Context{"query": query, "language": language})
	if err != nil {
		return "", err
	}

	messages := make([]openrouter.ChatMessage, 0, len(history)+2)
	messages = append(messages, openrouter.ChatMessage{Role: openrouter.RoleSystem, Content: s.persona.BuildSystemPrompt()})
	for i, turn := range history {
		role := openrouter.RoleUser
		if i%2 == 1 {
			role = openrouter.RoleAssistant
		}
		messages = append(messages, openrouter.ChatMessage{Role: role, Content: turn})
	}
	messages = append(messages, openrouter.ChatMessage{Role: openrouter.RoleUser, Content: prompt})

	answer, err := s.completer.Complete(ctx, messages, openrouter.CompletionOptions{Model: s.models.Chat, Temperature: 0.7, MaxTokens: 800})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	return answer, nil
}

// DiagnosisRemedy explains a classified disease in the requested language.
func (s *AdvisoryService) DiagnosisRemedy(ctx context.Context, crop, disease, symptoms, language string) (string, error) {
	prompt, err := prompts.BuildDiagnosisPrompt(prompts.Context{
		"crop":     crop,
		"disease":  disease,
		"symptoms": symptoms,
		"language": language,
	})
	if err != nil {
		return "", err
	}

	remedy, err := s.ask(ctx, openrouter.CompletionOptions{Model: s.models.Advice, Temperature: 0.5, MaxTokens: 800}, true, prompt)
	if err != nil {
		return "", fmt.Errorf("diagnosis remedy failed: %w", err)
	}
	return remedy, nil
}

// EstimateDuration asks the model how long crop takes to harvest. It never
// fails: any error or unusable reply yields DefaultCropDurationDays, and
// parsed values are clamped to [7, 400].
func (s *AdvisoryService) EstimateDuration(ctx context.Context, crop, location string) int {
	prompt, err := prompts.BuildCalendarDurationPrompt(prompts.Context{"crop": crop, "location": location})
	if err != nil {
		log.Warn().Err(err).Msg("duration prompt invalid, using default")
		return DefaultCropDurationDays
	}

	reply, err := s.ask(ctx, openrouter.CompletionOptions{Model: s.models.Calendar, Temperature: 0, MaxTokens: 20}, false, prompt)
	if err != nil {
		log.Warn().Err(err).Str("crop", crop).Msg("duration estimate failed, using default")
		return DefaultCropDurationDays
	}

	match := firstNumber.FindString(reply)
	days, err := strconv.Atoi(match)
	if errors.Is(err, strconv.ErrRange) {
		return maxCropDurationDays
	}
	if err != nil {
		log.Warn().Str("crop", crop).Str("reply", reply).Msg("no duration in model reply, using default")
		return DefaultCropDurationDays
	}

	switch {
	case days < minCropDurationDays:
		return minCropDurationDays
	case days > maxCropDurationDays:
		return maxCropDurationDays
	}
	return days
}

// GenerateCalendar builds a dated activity list from sowing to harvest.
func (s *AdvisoryService) GenerateCalendar(ctx context.Context, req models.CalendarRequest) (string, error) {
	var missing []string
	for _, field := range []struct{ name, value string }{
		{"crop", req.Crop},
		{"sowingDate", req.SowingDate},
		{"soilType", req.SoilType},
		{"farmSize", string(req.FarmSize)},
		{"location", req.Location},
	} {
		if strings.TrimSpace(field.value) == "" {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		return "", apperr.MissingFields(missing...)
	}

	sowing, err := time.Parse("2006-01-02", strings.TrimSpace(req.SowingDate))
	if err != nil {
		return "", apperr.Invalid("sowingDate must be YYYY-MM-DD, got %q", req.SowingDate)
	}

	days := s.EstimateDuration(ctx, req.Crop, req.Location)
	harvest := sowing.AddDate(0, 0, days)

	prompt, err := prompts.BuildCalendarSchedulePrompt(prompts.Context{
		"crop":          req.Crop,
		"sowing_date":   sowing.Format("January 2, 2006"),
		"harvest_date":  harvest.Format("January 2, 2006"),
		"duration_days": strconv.Itoa(days),
		"soil_type":     req.SoilType,
		"farm_size":     string(req.FarmSize),
		"location":      req.Location,
		"language":      req.Language,
	})
	if err != nil {
		return "", err
	}

	calendar, err := s.ask(ctx, openrouter.CompletionOptions{Model: s.models.Calendar, Temperature: 0.5, MaxTokens: 1500}, true, prompt)
	if err != nil {
		return "", fmt.Errorf("calendar generation failed: %w", err)
	}
	return calendar, nil
}

// SummarizeArticle condenses one news item.
func (s *AdvisoryService) SummarizeArticle(ctx context.Context, title, content string) (string, error) {
	prompt, err := prompts.BuildNewsSummaryPrompt(prompts.Context{"title": title, "content": content})
	if err != nil {
		return "", err
	}
	return s.ask(ctx, openrouter.CompletionOptions{Model: s.models.News, Temperature: 0.3, MaxTokens: 200}, false, prompt)
}
