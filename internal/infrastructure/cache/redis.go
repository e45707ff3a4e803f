package cache

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/KarthikShivasankar/immuneml-prototype/internal/pkg/config"
)

// RedisCache tracks import progress so clients can poll while a batch is
// being processed by the worker.
type RedisCache struct {
	client *redis.Client
	logger *slog.Logger
}

// progressTTL bounds how long finished batch progress lingers
const progressTTL = 24 * time.Hour

// NewRedisCache creates a new Redis cache client
func NewRedisCache(cfg *config.RedisConfig, logger *slog.Logger) (*RedisCache, error) {
	if logger == nil {
		logger = slog.Default()
	}

	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  time.Duration(cfg.DialTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	logger.Info("redis connection established",
		slog.String("host", cfg.Host),
		slog.Int("port", cfg.Port),
		slog.Int("db", cfg.DB),
	)

	return &RedisCache{
		client: client,
		logger: logger,
	}, nil
}

// Close closes the Redis connection
func (r *RedisCache) Close() error {
	r.logger.Info("closing redis connection")
	return r.client.Close()
}

// Ping checks if Redis is alive
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func progressKey(batchID string) string {
	return "import:progress:" + batchID
}

// SetProgress stores the progress snapshot of a batch
func (r *RedisCache) SetProgress(ctx context.Context, batchID string, status string, totalRows, importedRows int) error {
	key := progressKey(batchID)

	if err := r.client.HSet(ctx, key,
		"status", status,
		"total_rows", totalRows,
		"imported_rows", importedRows,
	).Err(); err != nil {
		return fmt.Errorf("failed to set import progress: %w", err)
	}

	return r.client.Expire(ctx, key, progressTTL).Err()
}

// GetProgress returns the progress snapshot of a batch. A missing key
// yields an empty status.
func (r *RedisCache) GetProgress(ctx context.Context, batchID string) (status string, totalRows, importedRows int, err error) {
	fields, err := r.client.HGetAll(ctx, progressKey(batchID)).Result()
	if err != nil {
		return "", 0, 0, fmt.Errorf("failed to get import progress: %w", err)
	}

	status = fields["status"]
	totalRows, _ = strconv.Atoi(fields["total_rows"])
	importedRows, _ = strconv.Atoi(fields["imported_rows"])
	return status, totalRows, importedRows, nil
}
