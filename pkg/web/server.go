// Package web serves the admin and employee dashboards as server-rendered HTML
// on top of the paylinks API.
package web

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
	"github.com/wadjakorntonsri/paylinks/pkg/client"
	"github.com/wadjakorntonsri/paylinks/pkg/core/domain"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templatesFS embed.FS

type Config struct {
	Addr              string
	APIBaseURL        string
	Secure            bool
	AttachmentEnabled bool
	GoogleLoginURL    string
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
}

type Server struct {
	api    *client.Client
	cfg    Config
	logger *zap.Logger
	pages  map[string]*template.Template
}

type ctxKey int

const (
	sessionKey ctxKey = iota
	identityKey
)

var funcs = template.FuncMap{
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
	"date":  func(t time.Time) string { return t.Local().Format("02 Jan 2006 15:04") },
	"inc":   func(n int) int { return n + 1 },
	"dec":   func(n int) int { return n - 1 },
}

func NewServer(cfg Config, api *client.Client, logger *zap.Logger) *Server {
	s := &Server{api: api, cfg: cfg, logger: logger, pages: map[string]*template.Template{}}
	for _, name := range []string{"admin_login", "admin_dashboard", "link_history", "link_summary", "employee_login", "employee_dashboard", "employee_link"} {
		s.pages[name] = template.Must(template.New("layout.html").Funcs(funcs).ParseFS(templatesFS, "templates/layout.html", "templates/"+name+".html"))
	}
	return s
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(s.withSession)

	r.Get("/", s.home)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/admin", func(r chi.Router) {
		r.Get("/login", s.adminLoginPage)
		r.Post("/login", s.adminLogin)
		r.Get("/sso", s.adminSSO)
		r.HandleFunc("/logout", s.logout(domain.RoleAdmin))

		r.Group(func(r chi.Router) {
			r.Use(s.gate(domain.RoleAdmin))
			r.Get("/dashboard", s.adminDashboard)
			r.Post("/links", s.createLink)
			r.Get("/link-history", s.linkHistory)
			r.Get("/link-history/view", s.linkSummary)
			r.Get("/link-history/export", s.exportSummary)
			r.Get("/link-history/qr", s.linkQR)
			r.Get("/attachments/{name}", s.attachment(domain.RoleAdmin))
		})
	})

	r.Route("/employee", func(r chi.Router) {
		r.Get("/login", s.employeeLoginPage)
		r.Post("/login", s.employeeLogin)
		r.HandleFunc("/logout", s.logout(domain.RoleEmployee))

		r.Group(func(r chi.Router) {
			r.Use(s.gate(domain.RoleEmployee))
			r.Get("/dashboard", s.employeeDashboard)
			r.Get("/links/{id}", s.employeeLink)
			r.Post("/links/{id}/entries", s.submitEntry)
			r.Get("/attachments/{name}", s.attachment(domain.RoleEmployee))
		})
	})

	return r
}

// Run serves until ctx is cancelled
func Run(ctx context.Context, cfg Config, api *client.Client, logger *zap.Logger) error {
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           NewServer(cfg, api, logger).Routes(),
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("dashboard listening", zap.String("addr", cfg.Addr), zap.String("api", cfg.APIBaseURL))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) home(w http.ResponseWriter, r *http.Request) {
	if _, ok := sessionFrom(r).Identity(domain.RoleEmployee); ok {
		redirect(w, r, client.DashboardRoute(domain.RoleEmployee))
		return
	}
	redirect(w, r, client.LoginRoute(domain.RoleEmployee))
}

// --- middleware ---

func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := client.NewSession(newCookieStore(w, r, s.cfg.Secure))
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey, session)))
	})
}

// gate sends visitors without a stored identity for role to its login page, with an empty body
func (s *Server) gate(role domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := client.Gate(sessionFrom(r), role)
			if !res.Allowed {
				redirect(w, r, res.Redirect)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey, res.Identity)))
		})
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func sessionFrom(r *http.Request) *client.Session {
	return r.Context().Value(sessionKey).(*client.Session)
}

func identityFrom(r *http.Request) client.Identity {
	id, _ := r.Context().Value(identityKey).(client.Identity)
	return id
}

// --- helpers ---

// redirect answers with a bare 302 and no body
func redirect(w http.ResponseWriter, r *http.Request, to string) {
	w.Header().Set("Location", to)
	w.WriteHeader(http.StatusFound)
}

// expire handles a stale token: the whole session is cleared and the role signs in again
func (s *Server) expire(w http.ResponseWriter, r *http.Request, role domain.Role) {
	_ = sessionFrom(r).Logout()
	redirect(w, r, client.LoginRoute(role))
}

func (s *Server) render(w http.ResponseWriter, name string, data pageData) {
	var buf bytes.Buffer
	if err := s.pages[name].Execute(&buf, data); err != nil {
		s.logger.Error("template render failed", zap.String("page", name), zap.Error(err))
		http.Error(w, "template render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// proxy streams a download from the API
func (s *Server) proxy(w http.ResponseWriter, r *http.Request, role domain.Role, resp *http.Response, err error) {
	if errors.Is(err, client.ErrUnauthorized) {
		s.expire(w, r, role)
		return
	}
	if err != nil {
		http.Error(w, client.Message(err, "download failed"), http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()
	for _, h := range []string{"Content-Type", "Content-Disposition", "Cache-Control"} {
		if v := resp.Header.Get(h); v != "" {
			w.Header().Set(h, v)
		}
	}
	_, _ = io.Copy(w, resp.Body)
}

func (s *Server) attachment(role domain.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := s.api.Attachment(r.Context(), identityFrom(r).Token, chi.URLParam(r, "name"))
		s.proxy(w, r, role, resp, err)
	}
}

func parsePositiveInt(raw string, fallback int) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
