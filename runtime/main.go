package main

import (
	"github.com/excel-master-lab/excel_quest_api/services"

	"github.com/alphabatem/common/context"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// @title Excel Quest API
// @version 1.0
// @description Gamified Excel tutorial backend
func main() {
	err := godotenv.Load()
	if err != nil {
		log.Warn().Err(err).Msg("No .env file loaded")
	}

	ctx, err := context.NewCtx(
		&services.SqliteService{},
		&services.PostgresService{},
		&services.RedisService{},
		&services.MinIOService{},

		&services.CatalogService{},
		&services.ProgressService{},
		&services.RecordService{},
		&services.MediaService{},
		&services.TutorService{},
		&services.ChatService{},
		&services.CompletionService{},

		&services.RateLimitService{},
		&services.MonitoringService{},
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
