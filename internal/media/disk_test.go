package media

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStoreWritesUniqueFiles(t *testing.T) {
	dir := t.TempDir()
	storage := NewDiskStorage(dir)

	first, err := storage.Store(context.Background(), []byte("one"), "photos/a.png")
	require.NoError(t, err)
	second, err := storage.Store(context.Background(), []byte("two"), "photos/a.png")
	require.NoError(t, err)

	require.NotEqual(t, first, second)
	require.True(t, strings.HasSuffix(first, ".png"))

	raw, err := os.ReadFile(first)
	require.NoError(t, err)
	require.Equal(t, "one", string(raw))
}

func TestStoreCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "media")
	storage := NewDiskStorage(dir)

	ref, err := storage.Store(context.Background(), []byte("x"), "")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(ref, dir))
	require.True(t, strings.HasSuffix(ref, ".jpg"), "unknown extension falls back to jpg")
}

func TestStoreRejectsEmptyPayload(t *testing.T) {
	storage := NewDiskStorage(t.TempDir())

	_, err := storage.Store(context.Background(), nil, "a.jpg")
	require.Error(t, err)
}
