package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/wadjakorntonsri/paylinks/pkg/core/domain"
	"github.com/wadjakorntonsri/paylinks/pkg/ports"
	"go.uber.org/zap"
)

const maxMultipartMemory = 12 << 20

type EmployeeHandler struct {
	links       ports.LinkService
	submissions ports.SubmissionService
	attachments ports.AttachmentStore
	logger      *zap.Logger
}

func NewEmployeeHandler(links ports.LinkService, submissions ports.SubmissionService, attachments ports.AttachmentStore, logger *zap.Logger) *EmployeeHandler {
	return &EmployeeHandler{
		links:       links,
		submissions: submissions,
		attachments: attachments,
		logger:      logger,
	}
}

type employeeEntriesRequest struct {
	LinkID     string `json:"linkId" validate:"required"`
	EmployeeID string `json:"employeeId"`
	Page       int    `json:"page" validate:"gte=0"`
	Limit      int    `json:"limit" validate:"gte=0"`
}

type employeeEntriesResponse struct {
	Entries     []domain.Submission `json:"entries"`
	TotalAmount string              `json:"totalAmount"`
	IsLatest    bool                `json:"isLatest"`
	Page        int                 `json:"page"`
	Pages       int                 `json:"pages"`
}

// textValue accepts a JSON string or number
type textValue string

func (t *textValue) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = textValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*t = textValue(n.String())
	return nil
}

type submitRequest struct {
	Name       string    `json:"name"`
	UpiID      string    `json:"upiId"`
	Amount     textValue `json:"amount"`
	EmployeeID string    `json:"employeeId"`
}

func (h *EmployeeHandler) Links(w http.ResponseWriter, r *http.Request) {
	links, err := h.links.EmployeeLinks(r.Context())
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, links)
}

func (h *EmployeeHandler) Entries(w http.ResponseWriter, r *http.Request) {
	var req employeeEntriesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	claims := claimsFrom(r.Context())
	if req.EmployeeID != "" && req.EmployeeID != claims.Subject {
		writeMessage(w, http.StatusForbidden, "employeeId does not match the signed-in employee")
		return
	}

	page, err := h.submissions.List(r.Context(), req.LinkID, claims.Subject, req.Page, req.Limit)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, employeeEntriesResponse{
		Entries:     page.Entries,
		TotalAmount: page.TotalAmount.StringFixed(2),
		IsLatest:    page.IsLatest,
		Page:        page.Page,
		Pages:       page.Pages,
	})
}

// Submit takes JSON, or multipart form data when a receipt image is attached
func (h *EmployeeHandler) Submit(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	in := domain.NewSubmission{LinkID: r.PathValue("id"), EmployeeCode: claims.Subject}
	var employeeID string

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		r.Body = http.MaxBytesReader(w, r.Body, maxMultipartMemory)
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid form data")
			return
		}
		in.Name = r.FormValue("name")
		in.UpiID = r.FormValue("upiId")
		in.Amount = r.FormValue("amount")
		employeeID = r.FormValue("employeeId")

		file, header, err := r.FormFile("image")
		switch {
		case err == nil:
			defer file.Close()
			in.Image, in.ImageName = file, header.Filename
		case !errors.Is(err, http.ErrMissingFile):
			writeMessage(w, http.StatusBadRequest, "invalid image upload")
			return
		}
	} else {
		var req submitRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		in.Name, in.UpiID, in.Amount = req.Name, req.UpiID, string(req.Amount)
		employeeID = req.EmployeeID
	}

	if employeeID != "" && employeeID != claims.Subject {
		writeMessage(w, http.StatusForbidden, "employeeId does not match the signed-in employee")
		return
	}

	sub, err := h.submissions.Create(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}

	h.logger.Info("submission created",
		zap.String("link_id", sub.LinkID),
		zap.String("employee_id", sub.EmployeeID),
		zap.Bool("attachment", sub.Attachment != ""),
	)
	writeJSON(w, http.StatusCreated, sub)
}

func (h *EmployeeHandler) Attachment(w http.ResponseWriter, r *http.Request) {
	if h.attachments == nil {
		writeMessage(w, http.StatusNotFound, domain.ErrNotFound.Error())
		return
	}
	rc, contentType, err := h.attachments.Open(r.PathValue("name"))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=86400")
	_, _ = io.Copy(w, rc)
}
