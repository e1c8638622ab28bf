package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const minimal = `
telegram:
  token: "123:abc"
shop:
  admin_ids: [42]
`

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimal))
	require.NoError(t, err)

	require.Equal(t, StorageFile, cfg.Shop.Storage)
	require.Equal(t, "data/products.json", cfg.Shop.ProductsPath)
	require.Equal(t, "data/media", cfg.Shop.MediaDir)
	require.NotEmpty(t, cfg.Shop.WelcomeText)
	require.Equal(t, "longpoll", cfg.Core.Telegram.RunMode)
}

func TestLoadRequiresAdmins(t *testing.T) {
	_, err := Load(writeConfig(t, `
telegram:
  token: "123:abc"
shop:
  admin_ids: []
`))
	require.ErrorContains(t, err, "admin_ids")
}

func TestLoadRejectsInvalidAdminID(t *testing.T) {
	_, err := Load(writeConfig(t, `
telegram:
  token: "123:abc"
shop:
  admin_ids: [-5]
`))
	require.ErrorContains(t, err, "invalid id")
}

func TestLoadRejectsUnknownStorage(t *testing.T) {
	_, err := Load(writeConfig(t, `
telegram:
  token: "123:abc"
shop:
  admin_ids: [42]
  storage: redis
`))
	require.ErrorContains(t, err, "shop.storage")
}

func TestLoadPostgresNeedsDatabase(t *testing.T) {
	_, err := Load(writeConfig(t, `
telegram:
  token: "123:abc"
shop:
  admin_ids: [42]
  storage: postgres
`))
	require.ErrorContains(t, err, "database")
}

func TestLoadPostgresComplete(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
telegram:
  token: "123:abc"
database:
  host: localhost
  name: shop
shop:
  admin_ids: [42]
  storage: postgres
`))
	require.NoError(t, err)
	require.Equal(t, StoragePostgres, cfg.Shop.Storage)
}
