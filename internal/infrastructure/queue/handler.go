package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/KarthikShivasankar/immuneml-prototype/internal/core/services/importer"
	"github.com/KarthikShivasankar/immuneml-prototype/internal/infrastructure/cache"
	"github.com/KarthikShivasankar/immuneml-prototype/internal/infrastructure/database/repositories"
	"github.com/KarthikShivasankar/immuneml-prototype/internal/infrastructure/storage"
	apperrors "github.com/KarthikShivasankar/immuneml-prototype/internal/pkg/errors"
)

// ImportTaskHandler processes import:dataset tasks: it runs the importer,
// records progress and batch state, and stores the resulting dataset.
type ImportTaskHandler struct {
	importer *importer.Service
	batches  *repositories.ImportBatchRepository
	progress *cache.RedisCache
	storage  *storage.LocalStorage
	logger   *slog.Logger
}

// NewImportTaskHandler creates the handler for import tasks
func NewImportTaskHandler(
	svc *importer.Service,
	batches *repositories.ImportBatchRepository,
	progress *cache.RedisCache,
	store *storage.LocalStorage,
	logger *slog.Logger,
) *ImportTaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImportTaskHandler{
		importer: svc,
		batches:  batches,
		progress: progress,
		storage:  store,
		logger:   logger,
	}
}

// ProcessTask handles one import:dataset task
func (h *ImportTaskHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseImportTask(task)
	if err != nil {
		// Malformed payloads will never succeed
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	batchID := payload.BatchID.String()
	h.logger.Info("processing import task",
		slog.String("batch_id", batchID),
		slog.String("dataset_name", payload.DatasetName))

	if err := h.batches.UpdateStatus(ctx, payload.BatchID, "parsing"); err != nil {
		return err
	}
	if err := h.progress.SetProgress(ctx, batchID, "parsing", 0, 0); err != nil {
		h.logger.Warn("failed to record progress", slog.Any("error", err))
	}

	ds, stats, err := h.importer.ImportDataset(ctx, payload.Params, payload.DatasetName)
	if err != nil {
		if markErr := h.batches.MarkFailed(ctx, payload.BatchID, err); markErr != nil {
			h.logger.Error("failed to mark batch failed", slog.Any("error", markErr))
		}
		if progErr := h.progress.SetProgress(ctx, batchID, "failed", 0, 0); progErr != nil {
			h.logger.Warn("failed to record progress", slog.Any("error", progErr))
		}
		// Format errors are deterministic; retrying cannot change the outcome
		if apperrors.IsAppError(err) {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}

	data, err := json.Marshal(ds)
	if err != nil {
		return fmt.Errorf("failed to serialize dataset: %w", err)
	}
	if _, err := h.storage.SaveCleaned(ctx, batchID, payload.DatasetName+".json", data); err != nil {
		return err
	}

	if err := h.batches.MarkCompleted(ctx, payload.BatchID, stats.TotalRows, stats.ImportedRows); err != nil {
		return err
	}
	if err := h.progress.SetProgress(ctx, batchID, "completed", stats.TotalRows, stats.ImportedRows); err != nil {
		h.logger.Warn("failed to record progress", slog.Any("error", err))
	}

	h.logger.Info("import task completed",
		slog.String("batch_id", batchID),
		slog.Int("total_rows", stats.TotalRows),
		slog.Int("imported_rows", stats.ImportedRows))

	return nil
}
