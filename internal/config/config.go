// Package config aggregates the application configuration: the reusable core
// settings plus the shop-specific section.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "github.com/m3rciful/ribbonbot/core/config"
	"github.com/m3rciful/ribbonbot/core/database"
)

// Storage backend selectors for the product catalog.
const (
	StorageFile     = "file"
	StoragePostgres = "postgres"
)

// ShopConfig holds the storefront settings.
type ShopConfig struct {
	// AdminIDs lists Telegram identities allowed to manage the catalog.
	AdminIDs []int64 `yaml:"admin_ids" envconfig:"SHOP_ADMIN_IDS"`
	// Storage selects the catalog backend: "file" or "postgres".
	Storage string `yaml:"storage" envconfig:"SHOP_STORAGE"`
	// ProductsPath is the catalog JSON path for the file backend.
	ProductsPath string `yaml:"products_path" envconfig:"SHOP_PRODUCTS_PATH"`
	// MediaDir is where uploaded product photos are written.
	MediaDir string `yaml:"media_dir" envconfig:"SHOP_MEDIA_DIR"`
	// SessionTTLMinutes bounds how long an abandoned dialog draft survives; 0 disables expiry.
	SessionTTLMinutes int `yaml:"session_ttl_minutes" envconfig:"SHOP_SESSION_TTL_MINUTES"`

	WelcomeText  string `yaml:"welcome_text"`
	AboutText    string `yaml:"about_text"`
	ContactsText string `yaml:"contacts_text"`
}

// Config is the full application configuration.
type Config struct {
	Core     coreconfig.Config `yaml:",inline"`
	Database database.Config   `yaml:"database"`
	Shop     ShopConfig        `yaml:"shop"`
}

// CoreConfig exposes the embedded core section.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Core
}

// Load reads configuration from a YAML file, applies environment overrides,
// and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := coreconfig.Normalize(&cfg.Core); err != nil {
		return nil, err
	}
	if err := normalizeShop(&cfg.Shop); err != nil {
		return nil, err
	}
	if cfg.Shop.Storage == StoragePostgres {
		if cfg.Database.Host == "" || cfg.Database.Name == "" {
			return nil, fmt.Errorf("database.host and database.name are required for postgres storage")
		}
	}
	return &cfg, nil
}

func normalizeShop(shop *ShopConfig) error {
	if len(shop.AdminIDs) == 0 {
		return fmt.Errorf("shop.admin_ids must list at least one administrator")
	}
	for _, id := range shop.AdminIDs {
		if id <= 0 {
			return fmt.Errorf("shop.admin_ids contains invalid id %d", id)
		}
	}

	storage := strings.ToLower(strings.TrimSpace(shop.Storage))
	if storage == "" {
		storage = StorageFile
	}
	switch storage {
	case StorageFile:
		if shop.ProductsPath == "" {
			shop.ProductsPath = "data/products.json"
		}
	case StoragePostgres:
	default:
		return fmt.Errorf("invalid shop.storage %q; allowed: file, postgres", shop.Storage)
	}
	shop.Storage = storage

	if shop.MediaDir == "" {
		shop.MediaDir = "data/media"
	}
	if shop.SessionTTLMinutes < 0 {
		return fmt.Errorf("shop.session_ttl_minutes must be >= 0")
	}

	if shop.WelcomeText == "" {
		shop.WelcomeText = "Добро пожаловать в наш магазин лент и букетов! 🎀"
	}
	if shop.AboutText == "" {
		shop.AboutText = "Мы делаем букеты из атласных лент ручной работы."
	}
	if shop.ContactsText == "" {
		shop.ContactsText = "Свяжитесь с нами: @ribbon_shop"
	}
	return nil
}
