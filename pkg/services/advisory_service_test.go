package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "github.com/yadnesh111/AgriSaarthi/configs"
	"github.com/yadnesh111/AgriSaarthi/pkg/apperr"
	"github.com/yadnesh111/AgriSaarthi/pkg/models"
	"github.com/yadnesh111/AgriSaarthi/pkg/openrouter"
)

type completerCall struct {
	messages []openrouter.ChatMessage
	opts     openrouter.CompletionOptions
}

// fakeCompleter records calls and answers with reply.
type fakeCompleter struct {
	mu    sync.Mutex
	calls []completerCall
	reply func(call completerCall) (string, error)
}

func (f *fakeCompleter) Complete(ctx context.Context, messages []openrouter.ChatMessage, opts openrouter.CompletionOptions) (string, error) {
	call := completerCall{messages: messages, opts: opts}
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
	if f.reply == nil {
		return "ok", nil
	}
	return f.reply(call)
}

func (c completerCall) lastPrompt() string {
	return c.messages[len(c.messages)-1].Content
}

var testModels = ModelSet{Chat: "chat-model", Advice: "advice-model", Calendar: "calendar-model", News: "news-model", Translate: "translate-model"}

func translatingReply(call completerCall) (string, error) {
	if strings.HasPrefix(call.lastPrompt(), "Translate the following text") {
		return "गेहूं के लिए 50 किलो यूरिया", nil
	}
	return "Apply 50 kg urea per acre for wheat.", nil
}

func TestFertilizerAdviceEnglishMakesOneCall(t *testing.T) {
	completer := &fakeCompleter{reply: translatingReply}
	service := NewAdvisoryService(completer, testModels, nil)

	advice, err := service.FertilizerAdvice(context.Background(), models.FertilizerRequest{
		Crop: "wheat", SoilPH: "6.5", Weather: "sunny", Language: "en",
	})
	require.NoError(t, err)

	require.Len(t, completer.calls, 1)
	assert.Equal(t, "advice-model", completer.calls[0].opts.Model)
	assert.Equal(t, advice.EnglishVersion, advice.AIAdvice)
	assert.Equal(t, "Apply 50 kg urea per acre for wheat.", advice.EnglishVersion)
}

func TestFertilizerAdviceHindiTranslates(t *testing.T) {
	completer := &fakeCompleter{reply: translatingReply}
	service := NewAdvisoryService(completer, testModels, nil)

	advice, err := service.FertilizerAdvice(context.Background(), models.FertilizerRequest{
		Crop: "wheat", SoilPH: "6.5", Weather: "sunny", Language: "hi",
	})
	require.NoError(t, err)

	require.Len(t, completer.calls, 2)
	assert.Equal(t, "translate-model", completer.calls[1].opts.Model)
	assert.Contains(t, completer.calls[1].lastPrompt(), "into Hindi")
	assert.Contains(t, completer.calls[1].lastPrompt(), advice.EnglishVersion)
	// The English prompt is the same whatever language was requested.
	assert.Contains(t, completer.calls[0].lastPrompt(), "Respond in English.")

	assert.Equal(t, "Apply 50 kg urea per acre for wheat.", advice.EnglishVersion)
	assert.NotEqual(t, advice.EnglishVersion, advice.AIAdvice)
}

func TestFertilizerAdviceMissingFields(t *testing.T) {
	completer := &fakeCompleter{}
	service := NewAdvisoryService(completer, testModels, nil)

	_, err := service.FertilizerAdvice(context.Background(), models.FertilizerRequest{Crop: "wheat"})

	var validationErr *apperr.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, []string{"soil_ph", "weather"}, validationErr.Fields)
	assert.Empty(t, completer.calls)
}

func TestFertilizerAdviceUpstreamFailure(t *testing.T) {
	upstream := &apperr.UpstreamError{Provider: "openrouter", StatusCode: 500, Body: "overloaded"}
	completer := &fakeCompleter{reply: func(completerCall) (string, error) { return "", upstream }}
	service := NewAdvisoryService(completer, testModels, nil)

	_, err := service.FertilizerAdvice(context.Background(), models.FertilizerRequest{
		Crop: "wheat", SoilPH: "6.5", Weather: "sunny",
	})
	assert.ErrorIs(t, err, upstream)
	assert.Contains(t, err.Error(), "overloaded")
}

func TestChatAnswerBuildsConversation(t *testing.T) {
	completer := &fakeCompleter{}
	service := NewAdvisoryService(completer, testModels, config.DefaultSystemPrompt())

	_, err := service.ChatAnswer(context.Background(), "Which crop for Rabi?", "mr", []string{"hello", "namaste, how can I help?"})
	require.NoError(t, err)

	require.Len(t, completer.calls, 1)
	messages := completer.calls[0].messages
	require.Len(t, messages, 4)
	assert.Equal(t, openrouter.RoleSystem, messages[0].Role)
	assert.Contains(t, messages[0].Content, "KrishiGPT")
	assert.Equal(t, openrouter.RoleUser, messages[1].Role)
	assert.Equal(t, openrouter.RoleAssistant, messages[2].Role)
	assert.Equal(t, openrouter.RoleUser, messages[3].Role)
	assert.Contains(t, messages[3].Content, "Which crop for Rabi?")
	assert.Contains(t, messages[3].Content, "Marathi")
	assert.Equal(t, "chat-model", completer.calls[0].opts.Model)
}

func TestChatAnswerHelpCommand(t *testing.T) {
	completer := &fakeCompleter{}
	service := NewAdvisoryService(completer, testModels, nil)

	answer, err := service.ChatAnswer(context.Background(), "मदद", "hi", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, answer)
	assert.Empty(t, completer.calls)
}

func TestChatAnswerRequiresQuery(t *testing.T) {
	service := NewAdvisoryService(&fakeCompleter{}, testModels, nil)
	_, err := service.ChatAnswer(context.Background(), "  ", "en", nil)
	assert.Equal(t, 400, apperr.HTTPStatus(err))
}

func TestEstimateDuration(t *testing.T) {
	testCases := []struct {
		name     string
		reply    string
		err      error
		expected int
	}{
		{"plain number", "110", nil, 110},
		{"number in sentence", "Wheat takes about 125-140 days.", nil, 125},
		{"too small", "2 days", nil, 7},
		{"too large", "900", nil, 400},
		{"overflow", "99999999999999999999999", nil, 400},
		{"no digits", "It depends on the variety.", nil, DefaultCropDurationDays},
		{"upstream error", "", errors.New("timeout"), DefaultCropDurationDays},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			completer := &fakeCompleter{reply: func(completerCall) (string, error) { return tc.reply, tc.err }}
			service := NewAdvisoryService(completer, testModels, nil)

			assert.Equal(t, tc.expected, service.EstimateDuration(context.Background(), "wheat", "Pune"))
		})
	}
}

func TestGenerateCalendar(t *testing.T) {
	completer := &fakeCompleter{reply: func(call completerCall) (string, error) {
		if strings.Contains(call.lastPrompt(), "single whole number") {
			return "100", nil
		}
		return "June 16, 2024: Prepare land\nJune 20, 2024: First irrigation", nil
	}}
	service := NewAdvisoryService(completer, testModels, nil)

	calendar, err := service.GenerateCalendar(context.Background(), models.CalendarRequest{
		Crop: "rice", SowingDate: "2024-06-15", SoilType: "clay", FarmSize: "2", Location: "Nashik", Language: "hi",
	})
	require.NoError(t, err)
	assert.Contains(t, calendar, "June 16, 2024: Prepare land")

	require.Len(t, completer.calls, 2)
	schedule := completer.calls[1].lastPrompt()
	assert.Contains(t, schedule, "Sowing date: June 15, 2024")
	assert.Contains(t, schedule, "Expected harvest date: September 23, 2024")
	assert.Contains(t, schedule, "Crop duration: 100 days")
	assert.Contains(t, schedule, "Hindi")
}

func TestGenerateCalendarFallsBackOnDurationFailure(t *testing.T) {
	completer := &fakeCompleter{reply: func(call completerCall) (string, error) {
		if strings.Contains(call.lastPrompt(), "single whole number") {
			return "", errors.New("provider down")
		}
		return "calendar", nil
	}}
	service := NewAdvisoryService(completer, testModels, nil)

	_, err := service.GenerateCalendar(context.Background(), models.CalendarRequest{
		Crop: "rice", SowingDate: "2024-06-15", SoilType: "clay", FarmSize: "2", Location: "Nashik",
	})
	require.NoError(t, err)
	assert.Contains(t, completer.calls[1].lastPrompt(), "Crop duration: 120 days")
}

func TestGenerateCalendarValidation(t *testing.T) {
	service := NewAdvisoryService(&fakeCompleter{}, testModels, nil)

	_, err := service.GenerateCalendar(context.Background(), models.CalendarRequest{Crop: "rice"})
	var validationErr *apperr.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, []string{"sowingDate", "soilType", "farmSize", "location"}, validationErr.Fields)

	_, err = service.GenerateCalendar(context.Background(), models.CalendarRequest{
		Crop: "rice", SowingDate: "15/06/2024", SoilType: "clay", FarmSize: "2", Location: "Nashik",
	})
	assert.Equal(t, 400, apperr.HTTPStatus(err))
}

func TestDiagnosisRemedy(t *testing.T) {
	completer := &fakeCompleter{}
	service := NewAdvisoryService(completer, testModels, nil)

	_, err := service.DiagnosisRemedy(context.Background(), "tomato", "Tomato___Late_blight", "dark spots", "hi")
	require.NoError(t, err)

	require.Len(t, completer.calls, 1)
	prompt := completer.calls[0].lastPrompt()
	assert.Contains(t, prompt, "Tomato___Late_blight")
	assert.Contains(t, prompt, "dark spots")
	assert.Contains(t, prompt, "Hindi")
}
