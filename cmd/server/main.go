package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"staff_sync_backend/internal/app"
	"staff_sync_backend/internal/config"
	"staff_sync_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	utils.InitLogger(cfg.LogLevel, cfg.LogFormat)
	if cfg.LogFormat == "json" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize application")
	}
	defer application.Dispose()

	if err := application.Init(ctx); err != nil {
		utils.LogError(err, "Failed to prepare database")
		return
	}
	utils.LogInfo("Frontend should be configured to make API calls", map[string]interface{}{"url": "http://localhost:" + cfg.Port + "/api/v1"})

	if err := application.Run(ctx); err != nil {
		utils.LogError(err, "Server stopped with error")
	}
}
