// Package handler is the serverless entry point. The platform injects the
// environment, so no dotenv file is read here.
package handler

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	config "github.com/yadnesh111/AgriSaarthi/configs"
	"github.com/yadnesh111/AgriSaarthi/internal/logging"
	"github.com/yadnesh111/AgriSaarthi/pkg/server"
)

var (
	app  *gin.Engine
	once sync.Once
)

// setupApp builds the router once per function instance.
func setupApp() *gin.Engine {
	once.Do(func() {
		cfg := config.LoadConfig()
		logging.Setup(cfg.LogLevel, cfg.Environment)
		if cfg.IsProduction() {
			gin.SetMode(gin.ReleaseMode)
		}
		app = server.NewRouter(cfg)
	})
	return app
}

// Handler serves every request routed to the function.
func Handler(w http.ResponseWriter, r *http.Request) {
	setupApp().ServeHTTP(w, r)
}
