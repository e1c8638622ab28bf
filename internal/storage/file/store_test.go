package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/m3rciful/ribbonbot/internal/domain"
)

func TestLoadMissingFile(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "products.json"))

	products, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, products)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	store := New(path)

	in := []domain.Product{
		{ID: 1, Name: "Роза", Description: "красная", PhotoRef: "media/a.jpg"},
		{ID: 2, Name: "Пион", Description: "розовый", PhotoRef: "media/b.jpg"},
	}
	require.NoError(t, store.Save(context.Background(), in))

	out, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestSaveOverwritesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "products.json")
	store := New(path)

	require.NoError(t, store.Save(context.Background(), []domain.Product{{ID: 1, Name: "a"}}))
	require.NoError(t, store.Save(context.Background(), []domain.Product{{ID: 2, Name: "b"}}))

	out, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, int64(2), out[0].ID)

	// No temp files left behind after the rename.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestLoadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := New(path).Load(context.Background())
	require.Error(t, err)
}
