package main

import (
	"github.com/rayansh0071505/portfolio-api/services"

	"github.com/alphabatem/common/context"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Warn().Err(err).Msg("No .env file loaded")
	}

	ctx, err := context.NewCtx(
		&services.MonitoringService{},
		&services.SqliteService{},
		&services.CacheService{},
		&services.JWTService{},

		&services.BlocklistService{},
		&services.RateLimitService{},
		&services.QuotaService{},
		&services.EmailService{},
		&services.ConversationService{},
		&services.SecurityService{},

		&services.KnowledgeService{},
		&services.AssistantService{},

		&services.HttpService{},
	)
	if err != nil {
		log.Fatal().Err(err)
		return
	}

	err = ctx.Run()
	if err != nil {
		log.Fatal().Err(err)
		return
	}
}
