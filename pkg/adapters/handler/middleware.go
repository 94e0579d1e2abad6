package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/wadjakorntonsri/paylinks/pkg/config"
	"github.com/wadjakorntonsri/paylinks/pkg/core/domain"
	"github.com/wadjakorntonsri/paylinks/pkg/ports"
	"go.uber.org/zap"
)

type ctxKey int

const claimsKey ctxKey = iota

type Middleware struct {
	auth        ports.AuthService
	logger      *zap.Logger
	frontendURL string
}

func NewMiddleware(cfg *config.Config, auth ports.AuthService, logger *zap.Logger) *Middleware {
	return &Middleware{
		auth:        auth,
		logger:      logger,
		frontendURL: cfg.FrontendURL,
	}
}

// RequireRole verifies the session token for role from its cookie or a bearer header
func (m *Middleware) RequireRole(role domain.Role, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := bearerToken(r)
		if tokenString == "" {
			if cookie, err := r.Cookie(cookieName(role)); err == nil {
				tokenString = cookie.Value
			}
		}
		if tokenString == "" {
			writeMessage(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		claims, err := m.auth.ParseToken(tokenString)
		if err != nil || claims.Role != role {
			writeMessage(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAny accepts a session of either role
func (m *Middleware) RequireAny(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, role := range []domain.Role{domain.RoleAdmin, domain.RoleEmployee} {
			if c, err := r.Cookie(cookieName(role)); err == nil {
				if claims, err := m.auth.ParseToken(c.Value); err == nil && claims.Role == role {
					next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
					return
				}
			}
		}
		if t := bearerToken(r); t != "" {
			if claims, err := m.auth.ParseToken(t); err == nil {
				next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
				return
			}
		}
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
	})
}

// CORS lets the configured frontend call the API with credentials
func (m *Middleware) CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" && origin == m.frontendURL {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Add("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Logger records one line per request
func (m *Middleware) Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		m.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", sw.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func claimsFrom(ctx context.Context) *domain.Claims {
	claims, _ := ctx.Value(claimsKey).(*domain.Claims)
	return claims
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

func cookieName(role domain.Role) string {
	return string(role) + "_token"
}
