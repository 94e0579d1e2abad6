package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port               string
	DashboardPort      string
	DatabaseURL        string
	AppEnv             string
	LogLevel           string
	BaseURL            string
	APIBaseURL         string
	FrontendURL        string
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	AllowedEmails      []string
	JWTSecret          string
	AdminEmail         string
	AdminPassword      string
	AdminName          string
	UploadDir          string
	AttachmentsEnabled bool
}

func Load() *Config {
	_ = godotenv.Load() // Ignore error if .env not found (e.g. prod)

	return &Config{
		Port:               getEnv("PORT", "8080"),
		DashboardPort:      getEnv("DASHBOARD_PORT", "3000"),
		DatabaseURL:        getEnv("DATABASE_URL", "file:db.sqlite"),
		AppEnv:             getEnv("APP_ENV", "local"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		BaseURL:            getEnv("BASE_URL", "http://localhost:8080"),
		APIBaseURL:         getEnv("API_BASE_URL", "http://localhost:8080"),
		FrontendURL:        strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:8080/admin/auth/google/callback"),
		AllowedEmails:      splitList(getEnv("ALLOWED_EMAILS", "")),
		JWTSecret:          getEnv("JWT_SECRET", "secret"),
		AdminEmail:         getEnv("ADMIN_EMAIL", ""),
		AdminPassword:      getEnv("ADMIN_PASSWORD", ""),
		AdminName:          getEnv("ADMIN_NAME", "Admin"),
		UploadDir:          getEnv("UPLOAD_DIR", "uploads"),
		AttachmentsEnabled: getEnv("ATTACHMENTS_ENABLED", "true") != "false",
	}
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GoogleEnabled reports whether admin sign-in through Google is configured
func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
