package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grcworks/requirement-gathering-backend/internal/apperrors"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	key, err := store.Save(ctx, []byte("evidence"), "policy.pdf", "application/pdf")
	require.NoError(t, err)
	assert.Contains(t, key, "policy.pdf")

	data, err := store.Read(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("evidence"), data)

	require.NoError(t, store.Delete(ctx, key))
	_, err = store.Read(ctx, key)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestLocalStorageKeysAreUnique(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	key1, err := store.Save(ctx, []byte("a"), "report.png", "image/png")
	require.NoError(t, err)
	key2, err := store.Save(ctx, []byte("b"), "report.png", "image/png")
	require.NoError(t, err)
	assert.NotEqual(t, key1, key2)
}

func TestLocalStorageStripsPathComponents(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStorage(dir)
	require.NoError(t, err)

	ctx := context.Background()
	key, err := store.Save(ctx, []byte("x"), "../../etc/passwd", "application/pdf")
	require.NoError(t, err)
	assert.NotContains(t, key, "/")

	data, err := store.Read(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), data)

	require.NoError(t, store.Delete(ctx, "missing-key"), "deleting a missing key is a no-op")
}
