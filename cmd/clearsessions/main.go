// Command clearsessions deletes every session row, releasing users locked
// out by a session they never signed out of.
package main

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/duynhne/quizcards-service/config"
	database "github.com/duynhne/quizcards-service/internal/core"
	"github.com/duynhne/quizcards-service/internal/core/repository"
	"github.com/duynhne/quizcards-service/internal/logger"
)

func main() {
	cfg := config.Load()
	logger.Setup(cfg.Logging.Level)
	if cfg.Database.DSN == "" {
		log.Fatal().Msg("DB_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	db, err := database.OpenGorm(pool, cfg.Database.LogQueries)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open gorm")
	}

	n, err := repository.NewSessionRepository(db).DeleteAll(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Error clearing sessions")
	}
	log.Info().Int64("count", n).Msg("Cleared sessions")
}
