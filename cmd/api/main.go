package main

import (
	"os"
	"strings"
	"time"

	"ewaste-marketplace-api-server/config"
	"ewaste-marketplace-api-server/internal/api/routes"
	"ewaste-marketplace-api-server/internal/database"
	"ewaste-marketplace-api-server/internal/s3"
	"ewaste-marketplace-api-server/internal/socket"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// 1. Structured logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// 2. Load .env (optional) and configuration
	_ = godotenv.Load()
	cfg, err := config.LoadConfig("./config")
	if err != nil {
		log.Fatal().Err(err).Msg("Could not load config")
	}

	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	// 3. Database
	db, err := database.Connect(cfg.Mongo)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	if err := database.EnsureIndexes(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to create indexes")
	}
	if err := database.SeedAdmin(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed admin account")
	}

	// 4. File storage (optional, image uploads are disabled without it)
	var s3Uploader *s3.Uploader
	if cfg.S3.Bucket != "" {
		s3Uploader, err = s3.NewUploader(cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize S3 uploader")
		}
	} else {
		log.Warn().Msg("S3 bucket not configured, image uploads disabled")
	}

	// 5. WebSocket hub
	wsHub := socket.NewHub()

	// 6. Router
	router := routes.SetupRouter(cfg, db, s3Uploader, wsHub)

	// 7. Start server
	log.Info().Str("port", cfg.Server.Port).Msg("Starting API server")
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatal().Err(err).Msg("Failed to run server")
	}
}
