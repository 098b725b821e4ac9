// Package prompts renders the natural-language instructions sent to the
// completion provider. Every builder is pure: the same Context always yields
// the same text.
package prompts

import (
	"fmt"
	"strings"

	lcprompts "github.com/tmc/langchaingo/prompts"

	"github.com/yadnesh111/AgriSaarthi/pkg/apperr"
)

// Context carries the named inputs of one prompt. The "language" key holds a
// language code understood by ResolveLanguage.
type Context map[string]string

// Get returns the trimmed value for key, or "" if absent.
func (c Context) Get(key string) string {
	return strings.TrimSpace(c[key])
}

// Language resolves the context's language code.
func (c Context) Language() Language {
	return ResolveLanguage(c.Get("language"))
}

type builder struct {
	required []string
	optional []string
	template lcprompts.PromptTemplate
	// directiveOnRequest drops the language directive when the context has
	// no language code, leaving the reply language to the system prompt.
	directiveOnRequest bool
}

func newBuilder(tmpl string, required, optional []string) builder {
	vars := append(append([]string{"language", "directive"}, required...), optional...)
	return builder{
		required: required,
		optional: optional,
		template: lcprompts.NewPromptTemplate(tmpl, vars),
	}
}

func (b builder) withDirectiveOnRequest() builder {
	b.directiveOnRequest = true
	return b
}

func (b builder) build(ctx Context) (string, error) {
	var missing []string
	for _, key := range b.required {
		if ctx.Get(key) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return "", apperr.MissingFields(missing...)
	}

	lang := ctx.Language()
	directive := lang.Directive()
	if b.directiveOnRequest && ctx.Get("language") == "" {
		directive = ""
	}
	values := map[string]any{
		"language":  lang.Name,
		"directive": directive,
	}
	for _, key := range b.required {
		values[key] = ctx.Get(key)
	}
	for _, key := range b.optional {
		values[key] = ctx.Get(key)
	}

	text, err := b.template.Format(values)
	if err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return strings.TrimSpace(text), nil
}

var (
	diagnosisBuilder = newBuilder(`A farmer's {{if .crop}}{{.crop}}{{else}}crop{{end}} plant has been identified with the condition "{{.disease}}".
{{- if .symptoms}}
The farmer describes these symptoms: {{.symptoms}}.
{{- end}}
Explain in a few short paragraphs:
1. What this condition is and how it spreads.
2. Immediate treatment steps, including organic options and commonly available chemical options with doses.
3. How to prevent it next season.
If the condition is "healthy", confirm the plant looks healthy and give brief care tips instead.
{{.directive}}`,
		[]string{"disease"}, []string{"crop", "symptoms"})

	chatBuilder = newBuilder(`{{.query}}

{{.directive}}`,
		[]string{"query"}, nil).withDirectiveOnRequest()

	fertilizerBuilder = newBuilder(`Recommend a fertilizer plan for the following field.
Crop: {{.crop}}
Soil pH: {{.soil_ph}}
Current weather: {{.weather}}
{{- if .crop_age}}
Crop age: {{.crop_age}} days
{{- end}}
Include the fertilizer names, quantity per acre, timing of application and any precautions for the weather.
Keep the answer practical and under 200 words.
{{.directive}}`,
		[]string{"crop", "soil_ph", "weather"}, []string{"crop_age"})

	calendarDurationBuilder = newBuilder(`How many days does {{.crop}} usually take from sowing to harvest
{{- if .location}} in {{.location}}{{end}}?
Reply with a single whole number of days and nothing else.`,
		[]string{"crop"}, []string{"location"})

	calendarScheduleBuilder = newBuilder(`Create a farming activity calendar for {{.crop}}.
Sowing date: {{.sowing_date}}
{{- if .harvest_date}}
Expected harvest date: {{.harvest_date}}
{{- end}}
Crop duration: {{.duration_days}} days
Soil type: {{.soil_type}}
Farm size: {{.farm_size}} acres
Location: {{.location}}
List every activity from land preparation to harvest, including irrigation, fertilizer, weeding and pest control.
Write one activity per line in exactly this format:
Month D, YYYY: activity
Do not add headings, numbering or any other text.
{{.directive}}`,
		[]string{"crop", "sowing_date", "soil_type", "farm_size", "location", "duration_days"}, []string{"harvest_date"})

	newsSummaryBuilder = newBuilder(`Summarize this agriculture news item for a farmer in two or three sentences.
Title: {{.title}}
{{- if .content}}
Content: {{.content}}
{{- end}}
{{.directive}}`,
		[]string{"title"}, []string{"content"})

	translationBuilder = newBuilder(`Translate the following text into {{.language}}.
Keep numbers, units and product names unchanged. Return only the translation.

{{.text}}`,
		[]string{"text"}, nil)
)

// BuildDiagnosisPrompt asks for a remedy for a classified disease.
// Requires "disease"; "crop" and "symptoms" are optional.
func BuildDiagnosisPrompt(ctx Context) (string, error) {
	return diagnosisBuilder.build(ctx)
}

// BuildChatPrompt wraps a free-form farmer question. Without a language code
// the reply language is not pinned.
func BuildChatPrompt(ctx Context) (string, error) {
	return chatBuilder.build(ctx)
}

// BuildFertilizerPrompt requires "crop", "soil_ph" and "weather".
func BuildFertilizerPrompt(ctx Context) (string, error) {
	return fertilizerBuilder.build(ctx)
}

// BuildCalendarDurationPrompt asks for the crop duration in days.
func BuildCalendarDurationPrompt(ctx Context) (string, error) {
	return calendarDurationBuilder.build(ctx)
}

// BuildCalendarSchedulePrompt asks for the dated activity list.
func BuildCalendarSchedulePrompt(ctx Context) (string, error) {
	return calendarScheduleBuilder.build(ctx)
}

// BuildNewsSummaryPrompt requires "title"; "content" is optional.
func BuildNewsSummaryPrompt(ctx Context) (string, error) {
	return newsSummaryBuilder.build(ctx)
}

// BuildTranslationPrompt translates "text" into the context's language.
func BuildTranslationPrompt(ctx Context) (string, error) {
	return translationBuilder.build(ctx)
}
