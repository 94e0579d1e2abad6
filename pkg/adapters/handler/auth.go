package handler

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/wadjakorntonsri/paylinks/pkg/config"
	"github.com/wadjakorntonsri/paylinks/pkg/core/domain"
	"github.com/wadjakorntonsri/paylinks/pkg/ports"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	sessionTTL    = 24 * time.Hour
	googleUserURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

type AuthHandler struct {
	auth         ports.AuthService
	logger       *zap.Logger
	oauthConfig  *oauth2.Config
	userInfoURL  string
	frontendURL  string
	isProduction bool
}

type GoogleUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
}

type credentialsRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func NewAuthHandler(cfg *config.Config, auth ports.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		logger: logger,
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		userInfoURL:  googleUserURL,
		frontendURL:  cfg.FrontendURL,
		isProduction: cfg.IsProduction(),
	}
}

// --- Admin ---

func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	admin, token, err := h.auth.LoginAdmin(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	h.setSession(w, domain.RoleAdmin, token)
	h.logger.Info("admin signed in", zap.String("admin_id", admin.ID))
	writeJSON(w, http.StatusOK, map[string]string{
		"message":   "login successful",
		"adminId":   admin.ID,
		"adminName": admin.Name,
		"token":     token,
	})
}

func (h *AuthHandler) AdminCheck(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	admin, err := h.auth.CurrentAdmin(r.Context(), claims.Subject)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"adminId": admin.ID, "adminName": admin.Name})
}

func (h *AuthHandler) AdminLogout(w http.ResponseWriter, r *http.Request) {
	h.clearSession(w, domain.RoleAdmin)
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// GoogleLogin starts the OAuth flow for admins
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	state := h.generateStateOauthCookie(w)
	http.Redirect(w, r, h.oauthConfig.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	oauthState, err := r.Cookie("oauthstate")
	if err != nil {
		h.logger.Warn("oauth callback without state cookie", zap.Error(err))
		http.Redirect(w, r, h.frontendURL+"/admin/login", http.StatusTemporaryRedirect)
		return
	}
	if r.FormValue("state") != oauthState.Value {
		h.logger.Warn("oauth state mismatch")
		writeMessage(w, http.StatusBadRequest, "invalid oauth state")
		return
	}

	googleUser, err := h.fetchGoogleUser(r.Context(), r.FormValue("code"))
	if err != nil {
		h.logger.Error("google sign-in failed", zap.Error(err))
		writeMessage(w, http.StatusBadGateway, "google sign-in failed")
		return
	}
	if !googleUser.VerifiedEmail {
		writeMessage(w, http.StatusForbidden, "email is not verified")
		return
	}

	admin, token, err := h.auth.LoginAdminByEmail(r.Context(), googleUser.Email)
	if err != nil {
		h.logger.Warn("google sign-in rejected", zap.String("email", googleUser.Email), zap.Error(err))
		writeError(w, h.logger, r, err)
		return
	}

	h.setSession(w, domain.RoleAdmin, token)
	h.logger.Info("admin signed in with google", zap.String("admin_id", admin.ID))
	http.Redirect(w, r, h.frontendURL+"/admin/sso?token="+url.QueryEscape(token), http.StatusTemporaryRedirect)
}

func (h *AuthHandler) fetchGoogleUser(ctx context.Context, code string) (*GoogleUser, error) {
	token, err := h.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}

	resp, err := h.oauthConfig.Client(ctx, token).Get(h.userInfoURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var user GoogleUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// --- Employee ---

func (h *AuthHandler) EmployeeRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	employee, token, err := h.auth.RegisterEmployee(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	h.setSession(w, domain.RoleEmployee, token)
	h.logger.Info("employee registered", zap.String("employee_id", employee.Code))
	writeJSON(w, http.StatusCreated, map[string]string{
		"message":    "registration successful",
		"employeeId": employee.Code,
		"name":       employee.Name,
		"token":      token,
	})
}

func (h *AuthHandler) EmployeeLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	employee, token, err := h.auth.LoginEmployee(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	h.setSession(w, domain.RoleEmployee, token)
	writeJSON(w, http.StatusOK, map[string]string{
		"message":    "login successful",
		"employeeId": employee.Code,
		"name":       employee.Name,
		"token":      token,
	})
}

func (h *AuthHandler) EmployeeCheck(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	employee, err := h.auth.CurrentEmployee(r.Context(), claims.Subject)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"employeeId": employee.Code, "name": employee.Name})
}

func (h *AuthHandler) EmployeeLogout(w http.ResponseWriter, r *http.Request) {
	h.clearSession(w, domain.RoleEmployee)
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *AuthHandler) setSession(w http.ResponseWriter, role domain.Role, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName(role),
		Value:    token,
		Expires:  time.Now().Add(sessionTTL),
		Path:     "/",
		HttpOnly: true,
		Secure:   h.isProduction, // Set based on environment
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSession(w http.ResponseWriter, role domain.Role) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName(role),
		Value:    "",
		Expires:  time.Now().Add(-1 * time.Hour),
		MaxAge:   -1,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) generateStateOauthCookie(w http.ResponseWriter) string {
	b := make([]byte, 16)
	rand.Read(b)
	state := base64.URLEncoding.EncodeToString(b)
	http.SetCookie(w, &http.Cookie{
		Name:     "oauthstate",
		Value:    state,
		Expires:  time.Now().Add(20 * time.Minute),
		Path:     "/",
		HttpOnly: true,
		Secure:   h.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
	return state
}
