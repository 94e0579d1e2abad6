package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wadjakorntonsri/paylinks/pkg/client"
	"github.com/wadjakorntonsri/paylinks/pkg/config"
	"github.com/wadjakorntonsri/paylinks/pkg/web"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger, err := config.NewLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	webCfg := web.Config{
		Addr:              ":" + cfg.DashboardPort,
		APIBaseURL:        cfg.APIBaseURL,
		Secure:            cfg.IsProduction(),
		AttachmentEnabled: cfg.AttachmentsEnabled,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	if cfg.GoogleEnabled() {
		webCfg.GoogleLoginURL = cfg.APIBaseURL + "/admin/auth/google/login"
	}

	api := client.New(cfg.APIBaseURL, nil)
	if err := web.Run(ctx, webCfg, api, logger); err != nil {
		logger.Fatal("dashboard stopped", zap.Error(err))
	}
}
