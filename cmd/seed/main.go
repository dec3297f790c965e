// Command seed loads the development accounts and sample questions. It is
// safe to run repeatedly.
package main

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/duynhne/quizcards-service/config"
	database "github.com/duynhne/quizcards-service/internal/core"
	"github.com/duynhne/quizcards-service/internal/core/repository"
	"github.com/duynhne/quizcards-service/internal/events"
	"github.com/duynhne/quizcards-service/internal/logger"
	logicv1 "github.com/duynhne/quizcards-service/internal/logic/v1"
)

func main() {
	cfg := config.Load()
	logger.Setup(cfg.Logging.Level)
	if cfg.Database.DSN == "" {
		log.Fatal().Msg("DB_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	ctx = log.Logger.WithContext(ctx)

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	db, err := database.OpenGorm(pool, cfg.Database.LogQueries)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open gorm")
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate schema")
	}

	users := repository.NewUserRepository(db)
	questions := repository.NewQuestionRepository(db)
	admin := logicv1.NewAdminService(users, repository.NewSessionRepository(db), questions, events.NopPublisher{})

	res, err := logicv1.Seed(ctx, users, questions, admin, logicv1.DefaultSeed)
	if err != nil {
		log.Fatal().Err(err).Msg("Seeding failed")
	}

	log.Info().
		Int("users_created", res.UsersCreated).
		Int("questions_created", res.QuestionsCreated).
		Msg("Database seeded successfully")
	for _, u := range logicv1.DefaultSeed.Users {
		log.Info().Str("email", u.Email).Str("password", u.Password).Str("role", string(u.Role)).Msg("Seed account")
	}
}
