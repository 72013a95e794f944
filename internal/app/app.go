package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/belajar-alkitab-backend/internal/data/db"
	apphttp "github.com/yungbote/belajar-alkitab-backend/internal/http"
	httpH "github.com/yungbote/belajar-alkitab-backend/internal/http/handlers"
	"github.com/yungbote/belajar-alkitab-backend/internal/observability"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/envutil"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/logger"
	"github.com/yungbote/belajar-alkitab-backend/internal/realtime"
	"github.com/yungbote/belajar-alkitab-backend/internal/realtime/bus"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Repos    Repos
	Services Services
	Hub      *realtime.SSEHub
	Bus      bus.Bus
	Server   *apphttp.Server

	pg           *db.PostgresService
	shutdownOTel func(context.Context) error
	cancel       context.CancelFunc
}

// New loads configuration from the environment, connects to Postgres and
// wires the application.
func New(ctx context.Context) (*App, error) {
	if err := envutil.LoadDotEnv(); err != nil {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg := LoadConfig()
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.LogMode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	shutdownOTel := observability.InitOTel(ctx, log, cfg.Otel)

	pg, err := db.NewPostgresService(cfg.Postgres, log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if cfg.AutoMigrate {
		if err := pg.AutoMigrateAll(); err != nil {
			_ = pg.Close()
			log.Sync()
			return nil, fmt.Errorf("postgres automigrate: %w", err)
		}
	}

	a, err := Build(ctx, log, cfg, pg.DB())
	if err != nil {
		_ = pg.Close()
		log.Sync()
		return nil, err
	}
	a.pg = pg
	a.shutdownOTel = shutdownOTel
	return a, nil
}

// Build wires every layer on top of an open database.
func Build(ctx context.Context, log *logger.Logger, cfg Config, theDB *gorm.DB) (*App, error) {
	if err := httpH.RegisterValidators(); err != nil {
		return nil, err
	}
	store, err := resolveObjectStore(ctx, log, cfg.Storage)
	if err != nil {
		return nil, err
	}
	b, err := resolveBus(ctx, log, cfg)
	if err != nil {
		return nil, err
	}
	hub := realtime.NewSSEHub(log)
	hub.SetHeartbeat(cfg.SSEHeartbeat)

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, reposet, b, store)
	handlerset := wireHandlers(theDB, log, cfg, serviceset, hub)
	middleware := wireMiddleware(log, serviceset)
	server := wireServer(log, cfg, handlerset, middleware)
	server.OnShutdown(hub.Close)

	return &App{
		Log:      log,
		DB:       theDB,
		Cfg:      cfg,
		Repos:    reposet,
		Services: serviceset,
		Hub:      hub,
		Bus:      b,
		Server:   server,
	}, nil
}

// Start connects the change feed to the SSE hub and the progress cache.
func (a *App) Start(ctx context.Context) error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	if err := a.Services.Notifier.Start(ctx, a.Hub); err != nil {
		cancel()
		return fmt.Errorf("start change feed: %w", err)
	}
	a.cancel = cancel
	return nil
}

func (a *App) Run() error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("HTTP server listening", "addr", a.Cfg.Addr())
	return a.Server.Run()
}

// Shutdown ends SSE streams and drains HTTP, then stops the feed and
// releases backends.
func (a *App) Shutdown(ctx context.Context) error {
	if a == nil {
		return nil
	}
	var errs []error
	if a.Server != nil {
		if err := a.Server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
	}
	if a.Hub != nil {
		a.Hub.Close()
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Bus != nil {
		if err := a.Bus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close bus: %w", err))
		}
	}
	if a.shutdownOTel != nil {
		if err := a.shutdownOTel(ctx); err != nil {
			errs = append(errs, fmt.Errorf("otel shutdown: %w", err))
		}
	}
	if a.pg != nil {
		if err := a.pg.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close postgres: %w", err))
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
	return errors.Join(errs...)
}
