package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStorage(t *testing.T) *LocalStorage {
	store, err := NewLocalStorage(&LocalStorageConfig{BasePath: t.TempDir()}, nil)
	require.NoError(t, err)
	return store
}

func TestLocalStorage_SaveSource(t *testing.T) {
	store := setupStorage(t)
	ctx := context.Background()

	content := []byte("seq_index,nt_CDR3\n0,TGTGCCAGCAGTTTC\n")
	meta, err := store.SaveSource(ctx, "batch-1", "igor.csv", bytes.NewReader(content))

	require.NoError(t, err)
	assert.Equal(t, "batch-1", meta.BatchID)
	assert.Equal(t, "igor.csv", meta.OriginalName)
	assert.Equal(t, int64(len(content)), meta.Size)

	expectedHash := sha256.Sum256(content)
	assert.Equal(t, hex.EncodeToString(expectedHash[:]), meta.Hash)

	stored, err := os.ReadFile(meta.StoredPath)
	require.NoError(t, err)
	assert.Equal(t, content, stored)
}

func TestLocalStorage_SaveSource_StripsPathComponents(t *testing.T) {
	store := setupStorage(t)

	meta, err := store.SaveSource(context.Background(), "batch-1", "../../evil.csv", bytes.NewReader([]byte("x")))
	require.NoError(t, err)
	assert.Equal(t, "evil.csv", filepath.Base(meta.StoredPath))
	assert.Contains(t, meta.StoredPath, filepath.Join("source", "batch-1"))
}

func TestLocalStorage_CleanedRoundTrip(t *testing.T) {
	store := setupStorage(t)
	ctx := context.Background()

	data := []byte(`{"name":"d1"}`)
	path, err := store.SaveCleaned(ctx, "batch-2", "d1.json", data)
	require.NoError(t, err)
	assert.FileExists(t, path)

	got, err := store.GetCleaned(ctx, "batch-2", "d1.json")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	files, err := store.ListCleaned(ctx, "batch-2")
	require.NoError(t, err)
	assert.Equal(t, []string{"d1.json"}, files)
}

func TestLocalStorage_GetCleaned_NotFound(t *testing.T) {
	store := setupStorage(t)

	_, err := store.GetCleaned(context.Background(), "no-such-batch", "missing.json")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestLocalStorage_ListCleaned_MissingBatch(t *testing.T) {
	store := setupStorage(t)

	files, err := store.ListCleaned(context.Background(), "no-such-batch")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestLocalStorage_DeleteBatch(t *testing.T) {
	store := setupStorage(t)
	ctx := context.Background()

	_, err := store.SaveSource(ctx, "batch-3", "in.csv", bytes.NewReader([]byte("a,b\n")))
	require.NoError(t, err)
	_, err = store.SaveCleaned(ctx, "batch-3", "out.json", []byte("{}"))
	require.NoError(t, err)

	require.NoError(t, store.DeleteBatch(ctx, "batch-3"))

	files, err := store.ListCleaned(ctx, "batch-3")
	require.NoError(t, err)
	assert.Empty(t, files)

	// Deleting an absent batch is not an error.
	assert.NoError(t, store.DeleteBatch(ctx, "batch-3"))
}
