// Package server assembles the HTTP router shared by the standalone server
// and the serverless entry point.
package server

import (
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	config "github.com/yadnesh111/AgriSaarthi/configs"
	"github.com/yadnesh111/AgriSaarthi/pkg/handlers"
	"github.com/yadnesh111/AgriSaarthi/pkg/openrouter"
	"github.com/yadnesh111/AgriSaarthi/pkg/services"
)

// NewRouter builds every service from cfg and registers the routes.
func NewRouter(cfg *config.Config) *gin.Engine {
	persona, err := config.LoadSystemPrompt(cfg.SystemPromptPath)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.SystemPromptPath).Msg("using built-in KrishiGPT persona")
		persona = config.DefaultSystemPrompt()
	}

	// Services
	llm := openrouter.NewClient(cfg.OpenRouterBaseURL, cfg.OpenRouterAPIKey, cfg.LLMTimeout)
	advisoryService := services.NewAdvisoryService(llm, services.ModelSet{
		Chat:      cfg.ChatModel,
		Advice:    cfg.AdviceModel,
		Calendar:  cfg.CalendarModel,
		News:      cfg.NewsModel,
		Translate: cfg.TranslateModel,
	}, persona)
	mandiService := services.NewMandiService(cfg.DataGovBaseURL, cfg.DataGovAPIKey, cfg.MandiPageLimit, cfg.HTTPTimeout)
	trendService := services.NewPriceTrendService(mandiService)
	visionService := services.NewVisionService(cfg.HuggingFaceBaseURL, cfg.HuggingFaceAPIKey, cfg.CropModels, cfg.GrowthStageModel, cfg.HTTPTimeout)
	newsService := services.NewNewsService(services.NewsConfig{
		SearchURL: cfg.NewsSearchURL,
		Feeds:     cfg.NewsFeeds,
		Limit:     cfg.NewsLimit,
		Timeout:   cfg.HTTPTimeout,
	}, advisoryService)
	reelsService := services.NewReelsService(cfg.YouTubeBaseURL, cfg.YouTubeAPIKey, cfg.ReelsQuery, cfg.ReelsLimit, cfg.HTTPTimeout)

	// Handlers
	advisoryHandler := handlers.NewAdvisoryHandler(advisoryService)
	mandiHandler := handlers.NewMandiHandler(mandiService, trendService)
	visionHandler := handlers.NewVisionHandler(visionService, advisoryService, cfg.ScratchDir)
	contentHandler := handlers.NewContentHandler(newsService, reelsService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(handlers.RequestLogger())
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	r.GET("/health", handlers.HealthCheck)

	r.POST("/diagnose", visionHandler.Diagnose)
	r.POST("/upload-crop-photo", visionHandler.UploadCropPhoto)

	r.POST("/krishigpt", advisoryHandler.KrishiGPT)
	r.POST("/chat", advisoryHandler.KrishiGPT)
	r.POST("/fertilizer-advice", advisoryHandler.FertilizerAdvice)
	r.POST("/generate-calendar", advisoryHandler.GenerateCalendar)

	mandi := r.Group("/mandi-rates")
	{
		mandi.GET("", mandiHandler.GetMandiRates)
		mandi.GET("/best", mandiHandler.GetBestMandi)
		mandi.GET("/export", mandiHandler.ExportMandiRates)
	}
	r.GET("/predict-price-trend", mandiHandler.PredictPriceTrend)

	r.GET("/news", contentHandler.GetNews)
	r.GET("/reels", contentHandler.GetReels)

	return r
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	if len(origins) == 0 || slices.Contains(origins, "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	c.AllowHeaders = append(c.AllowHeaders, "Authorization")
	return c
}
