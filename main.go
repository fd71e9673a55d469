package main

import (
	"go.uber.org/zap"

	"github.com/scottshadow56/Precision-N-back/internal/config"
	"github.com/scottshadow56/Precision-N-back/internal/database"
	logger "github.com/scottshadow56/Precision-N-back/internal/logging"
	"github.com/scottshadow56/Precision-N-back/internal/models"
	"github.com/scottshadow56/Precision-N-back/internal/router"
)

func main() {
	// Bootstrap logger with built-in defaults until the config is loaded.
	log, err := logger.Init(".", nil)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}

	// Load configuration
	if err := config.Init(".", log); err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Rebuild the logger with the configured rotation settings.
	configured, err := logger.Init(".", &config.Conf.Logging)
	if err != nil {
		log.Fatal("Failed to initialize configured logger", zap.Error(err))
	}
	log.Sync()
	log = configured
	defer log.Sync()

	// Initialize Database
	database.Init(log)

	// Load game presets at startup
	presets, err := models.LoadPresets(config.Conf.Server.PresetsPath)
	if err != nil {
		log.Fatal("Failed to load presets", zap.Error(err))
	}

	// Setup router, passing the logger to it
	r := router.Setup(log, presets)

	// Start the Gin server
	port := ":" + config.Conf.Server.Port
	log.Info("Server listening on http://localhost" + port)
	if err := r.Run(port); err != nil {
		log.Fatal("Failed to run Gin server", zap.Error(err))
	}
}
