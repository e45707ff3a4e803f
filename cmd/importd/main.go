package main

import (
	"log/slog"
	"os"

	"github.com/KarthikShivasankar/immuneml-prototype/internal/core/domain"
	"github.com/KarthikShivasankar/immuneml-prototype/internal/core/services/importer"
	"github.com/KarthikShivasankar/immuneml-prototype/internal/infrastructure/cache"
	"github.com/KarthikShivasankar/immuneml-prototype/internal/infrastructure/database"
	"github.com/KarthikShivasankar/immuneml-prototype/internal/infrastructure/database/repositories"
	"github.com/KarthikShivasankar/immuneml-prototype/internal/infrastructure/queue"
	"github.com/KarthikShivasankar/immuneml-prototype/internal/infrastructure/storage"
	"github.com/KarthikShivasankar/immuneml-prototype/internal/pkg/config"
	"github.com/KarthikShivasankar/immuneml-prototype/internal/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	log := logger.Initialize(cfg.Environment)
	cfg.LogConfig()

	db, err := database.NewPostgresDB(&cfg.Database, log)
	if err != nil {
		log.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	if err := db.AutoMigrate(&domain.ImportBatch{}); err != nil {
		log.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	redisCache, err := cache.NewRedisCache(&cfg.Redis, log)
	if err != nil {
		log.Error("failed to connect to redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer redisCache.Close()

	store, err := storage.NewLocalStorage(&storage.LocalStorageConfig{
		BasePath: cfg.StorageBasePath,
	}, log)
	if err != nil {
		log.Error("failed to initialize storage", slog.Any("error", err))
		os.Exit(1)
	}

	batchRepo := repositories.NewImportBatchRepository(db.DB, log)
	importSvc := importer.NewService(logger.NewServiceLogger("importer"))

	handler := queue.NewImportTaskHandler(importSvc, batchRepo, redisCache, store, log)

	server := queue.NewAsynqServer(cfg, log)
	server.HandleFunc(queue.TaskTypeImportDataset, handler.ProcessTask)

	log.Info("import worker starting",
		slog.Int("concurrency", cfg.WorkerConcurrency),
		slog.String("storage_path", cfg.StorageBasePath))

	// Run blocks until SIGINT/SIGTERM and drains in-flight tasks.
	if err := server.Start(); err != nil {
		log.Error("worker stopped with error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("import worker stopped")
}
