package app

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mentora-app/mentora-backend/internal/db"
	"github.com/mentora-app/mentora-backend/internal/handlers"
	"github.com/mentora-app/mentora-backend/internal/logger"
	"github.com/mentora-app/mentora-backend/internal/middleware"
	"github.com/mentora-app/mentora-backend/internal/observability"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Services Services

	otelShutdown func(context.Context) error
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "mentora-backend",
		Environment: cfg.Environment,
		Version:     cfg.Version,
	})

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	theDB := pg.DB()

	clients, err := wireClients(log)
	if err != nil {
		log.Sync()
		return nil, err
	}

	reposet := wireRepos(theDB, log)

	serviceset, err := wireServices(log, reposet, clients)
	if err != nil {
		log.Sync()
		return nil, err
	}

	insightHandler := handlers.NewInsightHandler(serviceset.Insight)
	authMiddleware := middleware.NewAuthMiddleware(log, cfg.JWTSecretKey)
	router := wireRouter(cfg, insightHandler, authMiddleware)

	return &App{
		Log:          log,
		DB:           theDB,
		Router:       router,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		otelShutdown: otelShutdown,
	}, nil
}

func (a *App) Run() error {
	a.Log.Info("Starting server", "port", a.Cfg.ServerPort)
	return a.Router.Run(":" + a.Cfg.ServerPort)
}

func (a *App) Shutdown(ctx context.Context) {
	a.Services.PreferenceProfile.Stop()
	if a.otelShutdown != nil {
		_ = a.otelShutdown(ctx)
	}
	a.Log.Sync()
}
