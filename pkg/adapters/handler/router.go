package handler

import (
	"net/http"

	"github.com/wadjakorntonsri/paylinks/pkg/config"
	"github.com/wadjakorntonsri/paylinks/pkg/core/domain"
	"github.com/wadjakorntonsri/paylinks/pkg/ports"
	"go.uber.org/zap"
)

// Services bundles what the API needs
type Services struct {
	Auth        ports.AuthService
	Links       ports.LinkService
	Submissions ports.SubmissionService
	Attachments ports.AttachmentStore
	Exporters   []ports.SummaryExporter
}

// NewRouter creates and configures the main application router
func NewRouter(cfg *config.Config, svc Services, logger *zap.Logger) http.Handler {
	mw := NewMiddleware(cfg, svc.Auth, logger)
	authHandler := NewAuthHandler(cfg, svc.Auth, logger)
	admin := NewAdminHandler(svc.Auth, svc.Links, svc.Submissions, svc.Exporters, cfg.FrontendURL, logger)
	employee := NewEmployeeHandler(svc.Links, svc.Submissions, svc.Attachments, logger)

	mux := http.NewServeMux()

	// Public Routes
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	})
	mux.HandleFunc("POST /admin/login", authHandler.AdminLogin)
	mux.HandleFunc("POST /admin/logout", authHandler.AdminLogout)
	if cfg.GoogleEnabled() {
		mux.HandleFunc("GET /admin/auth/google/login", authHandler.GoogleLogin)
		mux.HandleFunc("GET /admin/auth/google/callback", authHandler.GoogleCallback)
	}
	mux.HandleFunc("POST /employee/register", authHandler.EmployeeRegister)
	mux.HandleFunc("POST /employee/login", authHandler.EmployeeLogin)
	mux.HandleFunc("POST /employee/logout", authHandler.EmployeeLogout)

	adminOnly := func(h http.HandlerFunc) http.Handler { return mw.RequireRole(domain.RoleAdmin, h) }
	employeeOnly := func(h http.HandlerFunc) http.Handler { return mw.RequireRole(domain.RoleEmployee, h) }

	// Admin Routes
	mux.Handle("GET /admin/check", adminOnly(authHandler.AdminCheck))
	mux.Handle("GET /admin/employees", adminOnly(admin.Employees))
	mux.Handle("POST /admin/links", adminOnly(admin.CreateLink))
	mux.Handle("GET /admin/links", adminOnly(admin.ListLinks))
	mux.Handle("POST /admin/employees/links", adminOnly(admin.EmployeeLinks))
	mux.Handle("POST /admin/employees/links/entries", adminOnly(admin.EmployeeEntries))
	mux.Handle("POST /admin/links/summary", adminOnly(admin.Summary))
	mux.Handle("GET /admin/links/{id}/export", adminOnly(admin.Export))
	mux.Handle("GET /admin/links/{id}/qr.png", adminOnly(admin.QRCode))

	// Employee Routes
	mux.Handle("GET /employee/check", employeeOnly(authHandler.EmployeeCheck))
	mux.Handle("GET /employee/links", employeeOnly(employee.Links))
	mux.Handle("POST /employee/links/entries", employeeOnly(employee.Entries))
	mux.Handle("POST /employee/links/{id}/entries", employeeOnly(employee.Submit))

	mux.Handle("GET /attachments/{name}", mw.RequireAny(http.HandlerFunc(employee.Attachment)))

	return mw.Logger(mw.CORS(mux))
}
