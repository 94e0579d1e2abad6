// Package app wires the repository, services and HTTP handlers of the API.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/wadjakorntonsri/paylinks/pkg/adapters/export"
	"github.com/wadjakorntonsri/paylinks/pkg/adapters/handler"
	"github.com/wadjakorntonsri/paylinks/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/paylinks/pkg/adapters/storage"
	"github.com/wadjakorntonsri/paylinks/pkg/config"
	"github.com/wadjakorntonsri/paylinks/pkg/core/services"
	"github.com/wadjakorntonsri/paylinks/pkg/ports"
	"go.uber.org/zap"
)

type App struct {
	Handler http.Handler
	repo    *sqlite.SQLiteRepository
}

func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	// Initialize Repository
	repo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	attachments, err := storage.NewDiskStore(cfg.UploadDir)
	if err != nil {
		repo.Close()
		return nil, err
	}

	// Initialize Services
	auth := services.NewAuthService(repo, cfg.JWTSecret, cfg.AllowedEmails)
	if err := auth.SeedAdmin(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		repo.Close()
		return nil, fmt.Errorf("seed admin: %w", err)
	}
	if cfg.AdminEmail != "" {
		logger.Info("admin account ready", zap.String("email", cfg.AdminEmail))
	}

	svc := handler.Services{
		Auth:        auth,
		Links:       services.NewLinkService(repo),
		Submissions: services.NewSubmissionService(repo, attachments),
		Attachments: attachments,
		Exporters:   []ports.SummaryExporter{export.NewXLSXExporter(), export.NewPDFExporter()},
	}

	return &App{
		Handler: handler.NewRouter(cfg, svc, logger),
		repo:    repo,
	}, nil
}

func (a *App) Close() error {
	return a.repo.Close()
}
