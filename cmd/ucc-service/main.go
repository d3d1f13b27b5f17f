package main

import (
	"context"
	"fmt"
	"os"

	"github.com/highwaynet/ucc-service/internal/auth"
	"github.com/highwaynet/ucc-service/internal/blob"
	"github.com/highwaynet/ucc-service/internal/config"
	"github.com/highwaynet/ucc-service/internal/db"
	"github.com/highwaynet/ucc-service/internal/excel"
	httphandler "github.com/highwaynet/ucc-service/internal/http"
	"github.com/highwaynet/ucc-service/internal/http/middleware"
	"github.com/highwaynet/ucc-service/internal/logger"
	"github.com/highwaynet/ucc-service/internal/pdf"
	"github.com/highwaynet/ucc-service/internal/repository"
	"github.com/highwaynet/ucc-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	objectStore, err := blob.NewS3Store(context.Background(), cfg.S3)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init object store")
	}

	contractRepo := repository.NewContractRepository(database)
	listRepo := repository.NewListRepository(database)
	stretchRepo := repository.NewStretchRepository(database)
	documentRepo := repository.NewDocumentRepository(database)
	changeLogRepo := repository.NewChangeLogRepository(database)

	draftService := service.NewDraftService(contractRepo, stretchRepo, changeLogRepo, cfg, log)
	uccService := service.NewUCCService(contractRepo, documentRepo, changeLogRepo, cfg, log)
	listService := service.NewContractListService(listRepo, log)
	documentService := service.NewDocumentService(documentRepo, objectStore, contractRepo, changeLogRepo, cfg, log)
	changeLogService := service.NewChangeLogService(changeLogRepo)
	stretchService := service.NewStretchService(stretchRepo)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(
		draftService,
		uccService,
		listService,
		documentService,
		changeLogService,
		stretchService,
		excel.NewGenerator(),
		pdf.NewGenerator(),
		log,
	)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting ucc service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
