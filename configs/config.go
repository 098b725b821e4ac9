package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	DefaultLLMTimeout  = 60 * time.Second
	DefaultHTTPTimeout = 30 * time.Second
)

// DefaultCropModels maps each supported crop to the image-classification model
// used for disease diagnosis.
var DefaultCropModels = map[string]string{
	"tomato":    "linkanjarad/mobilenet_v2_1.0_224-plant-disease-identification",
	"potato":    "linkanjarad/mobilenet_v2_1.0_224-plant-disease-identification",
	"maize":     "linkanjarad/mobilenet_v2_1.0_224-plant-disease-identification",
	"rice":      "linkanjarad/mobilenet_v2_1.0_224-plant-disease-identification",
	"wheat":     "linkanjarad/mobilenet_v2_1.0_224-plant-disease-identification",
	"cotton":    "linkanjarad/mobilenet_v2_1.0_224-plant-disease-identification",
	"sugarcane": "linkanjarad/mobilenet_v2_1.0_224-plant-disease-identification",
}

// Config holds the application configuration
type Config struct {
	Port        string
	Environment string
	LogLevel    string
	CORSOrigins []string

	// Completion provider (OpenAI compatible)
	OpenRouterAPIKey  string
	OpenRouterBaseURL string
	ChatModel         string
	AdviceModel       string
	CalendarModel     string
	NewsModel         string
	TranslateModel    string
	LLMTimeout        time.Duration

	// Vision inference
	HuggingFaceAPIKey  string
	HuggingFaceBaseURL string
	CropModels         map[string]string
	GrowthStageModel   string

	// data.gov.in mandi prices
	DataGovAPIKey  string
	DataGovBaseURL string
	MandiPageLimit int

	// YouTube reels
	YouTubeAPIKey  string
	YouTubeBaseURL string
	ReelsQuery     string
	ReelsLimit     int

	// News
	NewsSearchURL string
	NewsFeeds     []string
	NewsLimit     int

	HTTPTimeout      time.Duration
	ScratchDir       string
	SystemPromptPath string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cropModels := parseCropModels(v.GetString("CROP_MODELS"))
	if len(cropModels) == 0 {
		cropModels = make(map[string]string, len(DefaultCropModels))
		for crop, model := range DefaultCropModels {
			cropModels[crop] = model
		}
	}

	return &Config{
		Port:        v.GetString("PORT"),
		Environment: v.GetString("ENVIRONMENT"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		CORSOrigins: splitList(v.GetString("CORS_ORIGINS")),

		OpenRouterAPIKey:  v.GetString("OPENROUTER_API_KEY"),
		OpenRouterBaseURL: v.GetString("OPENROUTER_BASE_URL"),
		ChatModel:         v.GetString("CHAT_MODEL"),
		AdviceModel:       v.GetString("ADVICE_MODEL"),
		CalendarModel:     v.GetString("CALENDAR_MODEL"),
		NewsModel:         v.GetString("NEWS_MODEL"),
		TranslateModel:    v.GetString("TRANSLATE_MODEL"),
		LLMTimeout:        timeout(v, "LLM_TIMEOUT", DefaultLLMTimeout),

		HuggingFaceAPIKey:  v.GetString("HF_API_KEY"),
		HuggingFaceBaseURL: v.GetString("HF_BASE_URL"),
		CropModels:         cropModels,
		GrowthStageModel:   v.GetString("GROWTH_STAGE_MODEL"),

		DataGovAPIKey:  v.GetString("DATA_GOV_API_KEY"),
		DataGovBaseURL: v.GetString("DATA_GOV_BASE_URL"),
		MandiPageLimit: v.GetInt("MANDI_PAGE_LIMIT"),

		YouTubeAPIKey:  v.GetString("YOUTUBE_API_KEY"),
		YouTubeBaseURL: v.GetString("YOUTUBE_BASE_URL"),
		ReelsQuery:     v.GetString("REELS_QUERY"),
		ReelsLimit:     v.GetInt("REELS_LIMIT"),

		NewsSearchURL: v.GetString("NEWS_SEARCH_URL"),
		NewsFeeds:     splitList(v.GetString("NEWS_FEEDS")),
		NewsLimit:     v.GetInt("NEWS_LIMIT"),

		HTTPTimeout:      timeout(v, "HTTP_TIMEOUT", DefaultHTTPTimeout),
		ScratchDir:       v.GetString("SCRATCH_DIR"),
		SystemPromptPath: v.GetString("SYSTEM_PROMPT_PATH"),
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ORIGINS", "")

	v.SetDefault("OPENROUTER_API_KEY", "")
	v.SetDefault("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1")
	v.SetDefault("CHAT_MODEL", "openai/gpt-3.5-turbo")
	v.SetDefault("ADVICE_MODEL", "openai/gpt-3.5-turbo")
	v.SetDefault("CALENDAR_MODEL", "openai/gpt-3.5-turbo")
	v.SetDefault("NEWS_MODEL", "openai/gpt-3.5-turbo")
	v.SetDefault("TRANSLATE_MODEL", "openai/gpt-3.5-turbo")
	v.SetDefault("LLM_TIMEOUT", DefaultLLMTimeout.String())

	v.SetDefault("HF_API_KEY", "")
	v.SetDefault("HF_BASE_URL", "https://api-inference.huggingface.co/models")
	v.SetDefault("CROP_MODELS", "")
	v.SetDefault("GROWTH_STAGE_MODEL", "")

	v.SetDefault("DATA_GOV_API_KEY", "")
	v.SetDefault("DATA_GOV_BASE_URL", "https://api.data.gov.in/resource/9ef84268-d588-465a-a308-a864a43d0070")
	v.SetDefault("MANDI_PAGE_LIMIT", 100)

	v.SetDefault("YOUTUBE_API_KEY", "")
	v.SetDefault("YOUTUBE_BASE_URL", "https://www.googleapis.com/youtube/v3")
	v.SetDefault("REELS_QUERY", "farming tips india shorts")
	v.SetDefault("REELS_LIMIT", 10)

	v.SetDefault("NEWS_SEARCH_URL", "https://news.google.com/rss/search")
	v.SetDefault("NEWS_FEEDS", "https://www.thehindubusinessline.com/economy/agri-business/feeder/default.rss")
	v.SetDefault("NEWS_LIMIT", 6)

	v.SetDefault("HTTP_TIMEOUT", DefaultHTTPTimeout.String())
	v.SetDefault("SCRATCH_DIR", "")
	v.SetDefault("SYSTEM_PROMPT_PATH", "configs/system_prompt.yaml")
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// timeout reads a positive duration. A bare integer is taken as seconds;
// anything unparseable or not positive falls back to def.
func timeout(v *viper.Viper, key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(v.GetString(key))

	var d time.Duration
	if secs, err := strconv.Atoi(raw); err == nil {
		d = time.Duration(secs) * time.Second
	} else if parsed, err := time.ParseDuration(raw); err == nil {
		d = parsed
	}

	if d <= 0 {
		log.Warn().Str("key", key).Str("value", raw).Dur("default", def).Msg("invalid timeout, using default")
		return def
	}
	return d
}

// splitList splits a comma separated value, dropping empty entries.
func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// parseCropModels parses "tomato=org/model,potato=org/other".
func parseCropModels(value string) map[string]string {
	models := make(map[string]string)
	for _, pair := range splitList(value) {
		crop, model, ok := strings.Cut(pair, "=")
		crop = strings.ToLower(strings.TrimSpace(crop))
		model = strings.TrimSpace(model)
		if !ok || crop == "" || model == "" {
			continue
		}
		models[crop] = model
	}
	return models
}
