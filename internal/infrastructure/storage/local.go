package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// LocalStorage keeps imported dataset files on the local filesystem,
// grouped by import batch ID.
type LocalStorage struct {
	basePath string
	logger   *slog.Logger
}

// LocalStorageConfig configures local dataset storage
type LocalStorageConfig struct {
	BasePath string // Base directory for datasets (e.g., "/tmp/repertoire-datasets")
}

// FileMetadata describes a stored file
type FileMetadata struct {
	BatchID      string
	OriginalName string
	StoredPath   string
	Size         int64
	Hash         string
	CreatedAt    time.Time
}

// NewLocalStorage creates a new local storage instance
func NewLocalStorage(cfg *LocalStorageConfig, logger *slog.Logger) (*LocalStorage, error) {
	if err := os.MkdirAll(cfg.BasePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &LocalStorage{
		basePath: cfg.BasePath,
		logger:   logger,
	}, nil
}

// SaveSource copies a source file into the batch directory, hashing it on
// the way so batches can be matched by content.
func (s *LocalStorage) SaveSource(ctx context.Context, batchID string, filename string, reader io.Reader) (*FileMetadata, error) {
	sourceDir := filepath.Join(s.basePath, "source", batchID)
	if err := os.MkdirAll(sourceDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create source directory: %w", err)
	}

	safeName := filepath.Base(filename)
	destPath := filepath.Join(sourceDir, safeName)

	destFile, err := os.Create(destPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer destFile.Close()

	// Calculate hash while copying
	hash := sha256.New()
	size, err := io.Copy(io.MultiWriter(destFile, hash), reader)
	if err != nil {
		return nil, fmt.Errorf("failed to copy file: %w", err)
	}

	fileHash := hex.EncodeToString(hash.Sum(nil))

	metadata := &FileMetadata{
		BatchID:      batchID,
		OriginalName: filename,
		StoredPath:   destPath,
		Size:         size,
		Hash:         fileHash,
		CreatedAt:    time.Now(),
	}

	s.logger.Info("source file stored",
		slog.String("batch_id", batchID),
		slog.String("filename", filename),
		slog.Int64("size", size),
		slog.String("hash", fileHash))

	return metadata, nil
}

// SaveCleaned stores a cleaned dataset file for a batch
func (s *LocalStorage) SaveCleaned(ctx context.Context, batchID string, filename string, data []byte) (string, error) {
	cleanedDir := filepath.Join(s.basePath, "cleaned", batchID)
	if err := os.MkdirAll(cleanedDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create cleaned directory: %w", err)
	}

	filePath := filepath.Join(cleanedDir, filepath.Base(filename))
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write cleaned file: %w", err)
	}

	s.logger.Info("cleaned dataset saved",
		slog.String("batch_id", batchID),
		slog.String("filename", filename),
		slog.Int("size", len(data)))

	return filePath, nil
}

// GetCleaned retrieves a cleaned dataset file
func (s *LocalStorage) GetCleaned(ctx context.Context, batchID string, filename string) ([]byte, error) {
	filePath := filepath.Join(s.basePath, "cleaned", batchID, filepath.Base(filename))

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("cleaned file not found: %s/%s", batchID, filename)
		}
		return nil, fmt.Errorf("failed to read cleaned file: %w", err)
	}

	return data, nil
}

// ListCleaned lists all cleaned files for a batch
func (s *LocalStorage) ListCleaned(ctx context.Context, batchID string) ([]string, error) {
	cleanedDir := filepath.Join(s.basePath, "cleaned", batchID)

	entries, err := os.ReadDir(cleanedDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cleaned directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() {
			files = append(files, entry.Name())
		}
	}
	return files, nil
}

// DeleteBatch removes all files associated with a batch
func (s *LocalStorage) DeleteBatch(ctx context.Context, batchID string) error {
	for _, sub := range []string{"source", "cleaned"} {
		dir := filepath.Join(s.basePath, sub, batchID)
		if err := os.RemoveAll(dir); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete %s directory: %w", sub, err)
		}
	}

	s.logger.Info("batch files deleted",
		slog.String("batch_id", batchID))

	return nil
}

// CleanupOldFiles removes batch directories older than the given duration
func (s *LocalStorage) CleanupOldFiles(ctx context.Context, olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan)

	for _, sub := range []string{"source", "cleaned"} {
		dir := filepath.Join(s.basePath, sub)
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return err
		}

		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			if info.ModTime().Before(cutoff) {
				path := filepath.Join(dir, entry.Name())
				if err := os.RemoveAll(path); err != nil {
					s.logger.Warn("failed to remove directory",
						slog.String("path", path),
						slog.Any("error", err))
				}
			}
		}
	}

	s.logger.Info("cleanup completed",
		slog.Duration("older_than", olderThan))

	return nil
}
