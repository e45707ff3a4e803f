package repositories

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/KarthikShivasankar/immuneml-prototype/internal/core/domain"
)

// ImportBatchRepository persists import batch bookkeeping using GORM
type ImportBatchRepository struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewImportBatchRepository creates a new repository instance
func NewImportBatchRepository(db *gorm.DB, logger *slog.Logger) *ImportBatchRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &ImportBatchRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new import batch row
func (r *ImportBatchRepository) Create(ctx context.Context, batch *domain.ImportBatch) error {
	err := r.db.WithContext(ctx).Create(batch).Error
	if err != nil {
		r.logger.Error("failed to create import batch",
			slog.String("dataset_name", batch.DatasetName),
			slog.Any("error", err))
		return fmt.Errorf("failed to create import batch: %w", err)
	}

	r.logger.Info("import batch created",
		slog.String("batch_id", batch.ID.String()),
		slog.String("dataset_name", batch.DatasetName))

	return nil
}

// GetByID loads a batch by its ID
func (r *ImportBatchRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ImportBatch, error) {
	var batch domain.ImportBatch

	err := r.db.WithContext(ctx).First(&batch, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("import batch not found: %s", id)
		}
		return nil, fmt.Errorf("database query failed: %w", err)
	}

	return &batch, nil
}

// GetByFileHash finds a previous batch with the same source content, used
// for import idempotency.
func (r *ImportBatchRepository) GetByFileHash(ctx context.Context, hash string) (*domain.ImportBatch, error) {
	var batch domain.ImportBatch

	err := r.db.WithContext(ctx).First(&batch, "file_hash = ?", hash).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("database query failed: %w", err)
	}

	return &batch, nil
}

// UpdateStatus transitions a batch to a new status
func (r *ImportBatchRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	if !domain.IsValidStatus(status) {
		return fmt.Errorf("invalid batch status: %s", status)
	}

	err := r.db.WithContext(ctx).
		Model(&domain.ImportBatch{}).
		Where("id = ?", id).
		Update("status", status).
		Error

	if err != nil {
		r.logger.Error("failed to update batch status",
			slog.String("batch_id", id.String()),
			slog.String("status", status),
			slog.Any("error", err))
		return fmt.Errorf("failed to update status: %w", err)
	}

	return nil
}

// MarkCompleted records the final row counts and completion time
func (r *ImportBatchRepository) MarkCompleted(ctx context.Context, id uuid.UUID, totalRows, importedRows int) error {
	now := time.Now().UTC()

	err := r.db.WithContext(ctx).
		Model(&domain.ImportBatch{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        "completed",
			"total_rows":    totalRows,
			"imported_rows": importedRows,
			"completed_at":  &now,
		}).
		Error

	if err != nil {
		r.logger.Error("failed to mark batch completed",
			slog.String("batch_id", id.String()),
			slog.Any("error", err))
		return fmt.Errorf("failed to mark batch completed: %w", err)
	}

	r.logger.Info("import batch completed",
		slog.String("batch_id", id.String()),
		slog.Int("total_rows", totalRows),
		slog.Int("imported_rows", importedRows))

	return nil
}

// MarkFailed records a terminal failure with its cause
func (r *ImportBatchRepository) MarkFailed(ctx context.Context, id uuid.UUID, cause error) error {
	err := r.db.WithContext(ctx).
		Model(&domain.ImportBatch{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        "failed",
			"error_message": cause.Error(),
		}).
		Error

	if err != nil {
		return fmt.Errorf("failed to mark batch failed: %w", err)
	}

	return nil
}

// ListRecent returns the most recent batches, newest first
func (r *ImportBatchRepository) ListRecent(ctx context.Context, limit int) ([]domain.ImportBatch, error) {
	var batches []domain.ImportBatch

	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&batches).
		Error

	if err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}

	return batches, nil
}
