package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wadjakorntonsri/paylinks/pkg/core/domain"
	"github.com/wadjakorntonsri/paylinks/pkg/ports"
)

type SubmissionService struct {
	repo        ports.LinkRepository
	attachments ports.AttachmentStore
	now         func() time.Time
}

// NewSubmissionService builds the service. attachments may be nil, in which case uploaded images are rejected.
func NewSubmissionService(repo ports.LinkRepository, attachments ports.AttachmentStore) *SubmissionService {
	return &SubmissionService{repo: repo, attachments: attachments, now: time.Now}
}

// List returns one page of the (link, employee) scope. The total covers every page.
func (s *SubmissionService) List(ctx context.Context, linkID, employeeCode string, page, limit int) (*domain.SubmissionPage, error) {
	if linkID == "" {
		return nil, domain.Invalid("linkId is required")
	}
	link, err := s.repo.GetLink(ctx, linkID)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, domain.ErrNotFound
	}

	count, sum, err := s.repo.SubmissionTotals(ctx, linkID, employeeCode)
	if err != nil {
		return nil, err
	}
	p := domain.NewPaging(page, limit, count)

	entries, err := s.repo.ListSubmissions(ctx, linkID, employeeCode, p.Limit, p.Offset())
	if err != nil {
		return nil, err
	}

	latest, err := s.repo.GetLatestLink(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.SubmissionPage{
		Entries:     entries,
		TotalAmount: domain.FromPaise(sum),
		IsLatest:    latest != nil && latest.ID == linkID,
		Page:        p.Page,
		Pages:       p.Pages,
	}, nil
}

func (s *SubmissionService) Create(ctx context.Context, in domain.NewSubmission) (*domain.Submission, error) {
	name := strings.TrimSpace(in.Name)
	upi := strings.TrimSpace(in.UpiID)
	var missing []string
	if name == "" {
		missing = append(missing, "name")
	}
	if upi == "" {
		missing = append(missing, "upiId")
	}
	if strings.TrimSpace(in.Amount) == "" {
		missing = append(missing, "amount")
	}
	if len(missing) > 0 {
		return nil, &domain.ValidationError{Fields: missing}
	}

	amount, err := ParseAmount(in.Amount)
	if err != nil {
		return nil, err
	}

	link, err := s.repo.GetLink(ctx, in.LinkID)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, domain.ErrNotFound
	}
	latest, err := s.repo.GetLatestLink(ctx)
	if err != nil {
		return nil, err
	}
	if latest == nil || latest.ID != link.ID {
		return nil, domain.ErrLinkNotLatest
	}

	sub := &domain.Submission{
		ID:         uuid.NewString(),
		LinkID:     link.ID,
		EmployeeID: in.EmployeeCode,
		Name:       name,
		UpiID:      upi,
		Amount:     amount,
		CreatedAt:  s.now().UTC(),
	}

	if in.Image != nil {
		if s.attachments == nil {
			return nil, domain.Invalid("attachments are not enabled")
		}
		stored, err := s.attachments.Save(ctx, in.ImageName, in.Image)
		if err != nil {
			return nil, err
		}
		sub.Attachment = stored
	}

	if err := s.repo.CreateSubmission(ctx, sub); err != nil {
		return nil, fmt.Errorf("create submission: %w", err)
	}
	return sub, nil
}

// ParseAmount accepts a non-negative decimal up to domain.MaxAmount and rounds it to two places
func ParseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, domain.Invalid("amount must be a number")
	}
	if amount.IsNegative() {
		return decimal.Zero, domain.Invalid("amount must not be negative")
	}
	amount = amount.Round(2)
	if amount.GreaterThan(domain.MaxAmount) {
		return decimal.Zero, domain.Invalid("amount is too large")
	}
	return amount, nil
}

var _ ports.SubmissionService = (*SubmissionService)(nil)
