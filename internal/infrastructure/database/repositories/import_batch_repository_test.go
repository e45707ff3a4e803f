package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/KarthikShivasankar/immuneml-prototype/internal/core/domain"
)

// setupRepo creates a PostgreSQL testcontainer and a repository over it
func setupRepo(t *testing.T) *ImportBatchRepository {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate postgres container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	db, err := gorm.Open(pgdriver.Open(connStr), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	if err := db.AutoMigrate(&domain.ImportBatch{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return NewImportBatchRepository(db, nil)
}

func TestImportBatchRepository_CreateAndGetByID(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	batch := &domain.ImportBatch{
		DatasetName: "study1",
		SourcePath:  "/data/igor",
		FileHash:    "hash-1",
	}
	require.NoError(t, repo.Create(ctx, batch))
	assert.NotEqual(t, uuid.Nil, batch.ID)

	loaded, err := repo.GetByID(ctx, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, "study1", loaded.DatasetName)
	assert.Equal(t, "queued", loaded.Status)
}

func TestImportBatchRepository_GetByID_NotFound(t *testing.T) {
	repo := setupRepo(t)

	_, err := repo.GetByID(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "import batch not found")
}

func TestImportBatchRepository_GetByFileHash(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	batch := &domain.ImportBatch{DatasetName: "study2", FileHash: "hash-2"}
	require.NoError(t, repo.Create(ctx, batch))

	found, err := repo.GetByFileHash(ctx, "hash-2")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, batch.ID, found.ID)

	missing, err := repo.GetByFileHash(ctx, "no-such-hash")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestImportBatchRepository_UpdateStatus(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	batch := &domain.ImportBatch{DatasetName: "study3", FileHash: "hash-3"}
	require.NoError(t, repo.Create(ctx, batch))

	require.NoError(t, repo.UpdateStatus(ctx, batch.ID, "parsing"))

	loaded, err := repo.GetByID(ctx, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, "parsing", loaded.Status)

	err = repo.UpdateStatus(ctx, batch.ID, "running")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid batch status")
}

func TestImportBatchRepository_MarkCompleted(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	batch := &domain.ImportBatch{DatasetName: "study4", FileHash: "hash-4"}
	require.NoError(t, repo.Create(ctx, batch))

	require.NoError(t, repo.MarkCompleted(ctx, batch.ID, 10, 7))

	loaded, err := repo.GetByID(ctx, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, "completed", loaded.Status)
	assert.Equal(t, 10, loaded.TotalRows)
	assert.Equal(t, 7, loaded.ImportedRows)
	require.NotNil(t, loaded.CompletedAt)
}

func TestImportBatchRepository_MarkFailed(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	batch := &domain.ImportBatch{DatasetName: "study5", FileHash: "hash-5"}
	require.NoError(t, repo.Create(ctx, batch))

	require.NoError(t, repo.MarkFailed(ctx, batch.ID, errors.New("anchor column missing")))

	loaded, err := repo.GetByID(ctx, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, "failed", loaded.Status)
	assert.Equal(t, "anchor column missing", loaded.ErrorMessage)
}

func TestImportBatchRepository_ListRecent(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	for i, name := range []string{"first", "second", "third"} {
		batch := &domain.ImportBatch{
			DatasetName: name,
			FileHash:    uuid.NewString(),
			CreatedAt:   time.Now().UTC().Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Create(ctx, batch))
	}

	batches, err := repo.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Equal(t, "third", batches[0].DatasetName)
	assert.Equal(t, "second", batches[1].DatasetName)
}
