// Package app wires configuration, storage, repositories, services, and
// handlers into a runnable application.
package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"

	"github.com/filegate/filegate/internal/config"
	"github.com/filegate/filegate/internal/db"
	"github.com/filegate/filegate/internal/handler"
	"github.com/filegate/filegate/internal/notify"
	"github.com/filegate/filegate/internal/repository"
	"github.com/filegate/filegate/internal/routes"
	"github.com/filegate/filegate/internal/service"
	"github.com/filegate/filegate/internal/storage"
)

type App struct {
	Config  *config.Config
	DB      *sqlx.DB
	Sweeper *service.Sweeper
	Handler http.Handler
}

func New(cfg *config.Config) (*App, error) {
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}

	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	store, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to init storage: %w", err)
	}

	// Repositories
	linkRepo := repository.NewLinkRepository(database)
	userRepo := repository.NewUserRepository(database)
	fileRepo := repository.NewFileRepository(database)
	logRepo := repository.NewAccessLogRepository(database)

	// Expiry notifications go to Telegram when a bot token is configured.
	var notifier service.Notifier
	if cfg.BotToken != "" {
		notifier = notify.NewTelegram(cfg.BotToken)
	} else {
		slog.Warn("no bot token configured, expiry notifications will only be logged")
		notifier = notify.Log{}
	}

	// Services
	limiter := service.NewRateLimiter(logRepo, cfg.RateLimit, cfg.RateLimitWindow, cfg.RateLimitFailOpen, cfg.RateLimitExemptPremium)
	linkSvc := service.NewLinkService(linkRepo, cfg.MasterSecret, cfg.AppURL, cfg.BotUsername, cfg.FreeLinkExpiry, cfg.AdminUserID)
	fileSvc := service.NewFileService(fileRepo, store)
	userSvc := service.NewUserService(userRepo, fileRepo, linkRepo)
	gateway := service.NewAccessGateway(linkRepo, fileRepo, logRepo, limiter, cfg.MasterSecret)
	sweeper := service.NewSweeper(linkRepo, userRepo, notifier, cfg.LinkSweepInterval, cfg.PremiumSweepInterval)

	h := routes.Handlers{
		Access: handler.NewAccessHandler(gateway, fileSvc),
		File:   handler.NewFileHandler(fileSvc, linkSvc, userSvc, cfg.MaxUploadSize),
		Link:   handler.NewLinkHandler(linkSvc),
		Me:     handler.NewMeHandler(userSvc),
		Admin:  handler.NewAdminHandler(userSvc),
		Health: handler.NewHealthHandler(database),
	}

	return &App{
		Config:  cfg,
		DB:      database,
		Sweeper: sweeper,
		Handler: routes.New(cfg, h),
	}, nil
}

func (a *App) Close() error {
	return db.Close(a.DB)
}
