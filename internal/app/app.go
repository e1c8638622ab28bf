// Package app bootstraps the storefront: storage, catalog, sessions, flows,
// and the Telegram runtime wiring.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	corecmd "github.com/m3rciful/ribbonbot/core/cmd"
	"github.com/m3rciful/ribbonbot/core/database"
	"github.com/m3rciful/ribbonbot/core/logger"
	coretelegram "github.com/m3rciful/ribbonbot/core/telegram"
	"github.com/m3rciful/ribbonbot/internal/admin"
	"github.com/m3rciful/ribbonbot/internal/auth"
	"github.com/m3rciful/ribbonbot/internal/bot"
	"github.com/m3rciful/ribbonbot/internal/catalog"
	"github.com/m3rciful/ribbonbot/internal/config"
	"github.com/m3rciful/ribbonbot/internal/media"
	"github.com/m3rciful/ribbonbot/internal/order"
	"github.com/m3rciful/ribbonbot/internal/session"
	filestore "github.com/m3rciful/ribbonbot/internal/storage/file"
	pgstore "github.com/m3rciful/ribbonbot/internal/storage/postgres"
)

// App holds the bootstrapped application graph.
type App struct {
	cfg      *config.Config
	catalog  *catalog.Repository
	sessions *session.Store
	notifier *bot.Notifier
	handlers *bot.Handlers
}

// LoadConfig adapts config.Load to the runner's carrier interface.
func LoadConfig(path string) (corecmd.ConfigCarrier, error) {
	return config.Load(path)
}

// Bootstrap builds the application from a loaded configuration.
func Bootstrap(carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
	cfg, ok := carrier.(*config.Config)
	if !ok {
		return nil, fmt.Errorf("app: unexpected config type %T", carrier)
	}
	return New(cfg)
}

// New assembles the application graph from configuration.
func New(cfg *config.Config) (*App, error) {
	if err := logger.InitLogger(&cfg.Core); err != nil {
		return nil, fmt.Errorf("app: logger init: %w", err)
	}

	store, err := buildStore(cfg)
	if err != nil {
		return nil, err
	}

	cat := catalog.New(store)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := cat.Load(ctx); err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	sessions := session.NewStore(time.Duration(cfg.Shop.SessionTTLMinutes) * time.Minute)
	roles := auth.NewRoles(cfg.Shop.AdminIDs)
	notifier := bot.NewNotifier()

	orders := order.NewFlow(sessions, cat, notifier, roles)
	admins := admin.NewFlow(sessions, cat, media.NewDiskStorage(cfg.Shop.MediaDir), notifier, roles)
	handlers := bot.NewHandlers(cfg.Shop, cat, sessions, orders, admins, roles)

	logger.L.With("component", "app").Info("app assembled",
		slog.String("event", "bootstrap"),
		slog.String("storage", cfg.Shop.Storage),
		slog.Int("products", cat.Len()),
		slog.Int("admins", len(cfg.Shop.AdminIDs)),
	)

	return &App{
		cfg:      cfg,
		catalog:  cat,
		sessions: sessions,
		notifier: notifier,
		handlers: handlers,
	}, nil
}

// buildStore selects the catalog backend. The postgres path runs migrations
// before handing out the store.
func buildStore(cfg *config.Config) (catalog.Store, error) {
	switch cfg.Shop.Storage {
	case config.StoragePostgres:
		if err := database.RunMigrations(cfg.Database); err != nil {
			return nil, fmt.Errorf("app: migrations: %w", err)
		}
		db, err := database.Connect(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("app: database: %w", err)
		}
		return pgstore.New(db), nil
	default:
		return filestore.New(cfg.Shop.ProductsPath), nil
	}
}

// TelegramRunOptions builds the bot runtime wiring.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := bot.BuildRegistry(a.handlers)
	routes := bot.BuildRoutes(a.handlers, reg)

	return coretelegram.RunOptions{
		Config:   &a.cfg.Core,
		Registry: reg,
		Routes:   routes,
		OnStart: func(_ context.Context, rt coretelegram.Runtime) error {
			a.notifier.Bind(rt.Bot)
			return nil
		},
		OnStop: func(_ context.Context, _ coretelegram.Runtime) error {
			a.sessions.Close()
			return nil
		},
	}, nil
}
