package config

import (
	"reflect"
	"testing"
)

func TestLoad(t *testing.T) {
	t.Setenv("ALLOWED_EMAILS", " a@example.com, ,b@example.com ")
	t.Setenv("FRONTEND_URL", "https://pay.example/")
	t.Setenv("PORT", "9090")

	cfg := Load()
	if cfg.Port != "9090" {
		t.Errorf("port = %s", cfg.Port)
	}
	if cfg.FrontendURL != "https://pay.example" {
		t.Errorf("frontend url = %s", cfg.FrontendURL)
	}
	if want := []string{"a@example.com", "b@example.com"}; !reflect.DeepEqual(cfg.AllowedEmails, want) {
		t.Errorf("allowed emails = %v", cfg.AllowedEmails)
	}
	if cfg.GoogleEnabled() {
		t.Error("google should be disabled without credentials")
	}
	if !cfg.AttachmentsEnabled {
		t.Error("attachments should default to enabled")
	}

	t.Setenv("ATTACHMENTS_ENABLED", "false")
	if Load().AttachmentsEnabled {
		t.Error("ATTACHMENTS_ENABLED=false should disable attachments")
	}
}

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	logger, err := NewLogger(&Config{AppEnv: "production", LogLevel: "loud"})
	if err != nil {
		t.Fatal(err)
	}
	if !logger.Core().Enabled(0) || logger.Core().Enabled(-1) {
		t.Error("expected info level")
	}
}
