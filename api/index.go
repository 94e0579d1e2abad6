package handler

import (
	"context"
	"net/http"

	"github.com/wadjakorntonsri/paylinks/pkg/app"
	"github.com/wadjakorntonsri/paylinks/pkg/config"
	"go.uber.org/zap"
)

var mux http.Handler

func init() {
	cfg := config.Load()

	logger, err := config.NewLogger(cfg)
	if err != nil {
		panic(err)
	}

	// Note: On Vercel, db.sqlite is ephemeral unless using a remote SQL/Turso URL in DATABASE_URL
	api, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("failed to start api", zap.Error(err))
	}
	mux = api.Handler
}

// Handler is the entrypoint for Vercel
func Handler(w http.ResponseWriter, r *http.Request) {
	mux.ServeHTTP(w, r)
}
