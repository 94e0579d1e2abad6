package handler

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/skip2/go-qrcode"
	"github.com/wadjakorntonsri/paylinks/pkg/core/domain"
	"github.com/wadjakorntonsri/paylinks/pkg/ports"
	"go.uber.org/zap"
)

const qrSize = 256

type AdminHandler struct {
	links       ports.LinkService
	submissions ports.SubmissionService
	auth        ports.AuthService
	exporters   map[string]ports.SummaryExporter
	frontendURL string
	logger      *zap.Logger
}

func NewAdminHandler(
	auth ports.AuthService,
	links ports.LinkService,
	submissions ports.SubmissionService,
	exporters []ports.SummaryExporter,
	frontendURL string,
	logger *zap.Logger,
) *AdminHandler {
	byFormat := make(map[string]ports.SummaryExporter, len(exporters))
	for _, e := range exporters {
		byFormat[e.Extension()] = e
	}
	return &AdminHandler{
		links:       links,
		submissions: submissions,
		auth:        auth,
		exporters:   byFormat,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

type createLinkRequest struct {
	Title   string `json:"title" validate:"required"`
	AdminID string `json:"adminId"`
}

type employeeLinksRequest struct {
	EmployeeID string `json:"employeeId" validate:"required"`
	Page       int    `json:"page" validate:"gte=0"`
	Limit      int    `json:"limit" validate:"gte=0"`
}

type adminEntriesRequest struct {
	LinkID     string `json:"linkId" validate:"required"`
	EmployeeID string `json:"employeeId" validate:"required"`
	Page       int    `json:"page" validate:"gte=0"`
	Limit      int    `json:"limit" validate:"gte=0"`
}

type summaryRequest struct {
	LinkID string `json:"linkId" validate:"required"`
}

type linksPageResponse struct {
	Links []domain.Link `json:"links"`
	Page  int           `json:"page"`
	Pages int           `json:"pages"`
}

type adminEntriesResponse struct {
	Entries     []domain.Submission `json:"entries"`
	TotalAmount string              `json:"totalAmount"`
	Page        int                 `json:"page"`
	Pages       int                 `json:"pages"`
}

func (h *AdminHandler) Employees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.auth.ListEmployees(r.Context())
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, employees)
}

func (h *AdminHandler) CreateLink(w http.ResponseWriter, r *http.Request) {
	var req createLinkRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	claims := claimsFrom(r.Context())
	if req.AdminID != "" && req.AdminID != claims.Subject {
		writeMessage(w, http.StatusForbidden, "adminId does not match the signed-in admin")
		return
	}

	link, err := h.links.CreateLink(r.Context(), req.Title, claims.Subject)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	h.logger.Info("link created", zap.String("link_id", link.ID), zap.String("admin_id", claims.Subject))
	writeJSON(w, http.StatusCreated, map[string]string{
		"link": link.ShareURL(h.frontendURL),
		"id":   link.ID,
	})
}

func (h *AdminHandler) ListLinks(w http.ResponseWriter, r *http.Request) {
	links, err := h.links.History(r.Context())
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, links)
}

func (h *AdminHandler) EmployeeLinks(w http.ResponseWriter, r *http.Request) {
	var req employeeLinksRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	page, err := h.links.LinksForEmployee(r.Context(), req.EmployeeID, req.Page, req.Limit)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, linksPageResponse{Links: page.Items, Page: page.Page, Pages: page.Pages})
}

func (h *AdminHandler) EmployeeEntries(w http.ResponseWriter, r *http.Request) {
	var req adminEntriesRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	page, err := h.submissions.List(r.Context(), req.LinkID, req.EmployeeID, req.Page, req.Limit)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, adminEntriesResponse{
		Entries:     page.Entries,
		TotalAmount: page.TotalAmount.StringFixed(2),
		Page:        page.Page,
		Pages:       page.Pages,
	})
}

func (h *AdminHandler) Summary(w http.ResponseWriter, r *http.Request) {
	var req summaryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	summary, err := h.links.Summary(r.Context(), req.LinkID)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Export downloads the link summary; format defaults to xlsx
func (h *AdminHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "xlsx"
	}
	exporter, ok := h.exporters[format]
	if !ok {
		writeMessage(w, http.StatusBadRequest, "unsupported format: "+format)
		return
	}

	summary, err := h.links.Summary(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	filename := strings.Trim(unsafeFilename.ReplaceAllString(summary.Title, "_"), "_")
	if filename == "" {
		filename = "summary"
	}
	w.Header().Set("Content-Type", exporter.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.%s"`, filename, exporter.Extension()))
	if err := exporter.Export(w, summary); err != nil {
		h.logger.Error("export failed", zap.String("format", format), zap.Error(err))
	}
}

// QRCode renders the shareable URL of a link
func (h *AdminHandler) QRCode(w http.ResponseWriter, r *http.Request) {
	link, err := h.links.GetLink(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	png, err := qrcode.Encode(link.ShareURL(h.frontendURL), qrcode.Medium, qrSize)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	_, _ = w.Write(png)
}
