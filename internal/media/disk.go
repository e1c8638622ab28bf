// Package media persists uploaded product photos.
package media

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Storage turns raw uploaded image bytes into a stable reference the catalog
// can keep and the transport can render again later.
type Storage interface {
	Store(ctx context.Context, raw []byte, hint string) (string, error)
}

// DiskStorage writes photos into a flat media directory.
type DiskStorage struct {
	dir string
}

// NewDiskStorage creates a DiskStorage rooted at dir.
func NewDiskStorage(dir string) *DiskStorage {
	return &DiskStorage{dir: dir}
}

// Store writes the image under a unique name and returns its path as the reference.
func (d *DiskStorage) Store(_ context.Context, raw []byte, hint string) (string, error) {
	if len(raw) == 0 {
		return "", fmt.Errorf("empty image payload")
	}
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}

	suffix := make([]byte, 8)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("generate media name: %w", err)
	}
	name := fmt.Sprintf("bouquet_%s%s", hex.EncodeToString(suffix), normalizeExt(hint))
	path := filepath.Join(d.dir, name)

	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

func normalizeExt(hint string) string {
	ext := strings.ToLower(filepath.Ext(hint))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
		return ext
	}
	return ".jpg"
}
