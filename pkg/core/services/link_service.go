package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wadjakorntonsri/paylinks/pkg/core/domain"
	"github.com/wadjakorntonsri/paylinks/pkg/ports"
)

type LinkService struct {
	repo ports.LinkRepository
	now  func() time.Time
}

func NewLinkService(repo ports.LinkRepository) *LinkService {
	return &LinkService{repo: repo, now: time.Now}
}

func (s *LinkService) CreateLink(ctx context.Context, title, adminID string) (*domain.Link, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, domain.Invalid("title is required")
	}

	link := &domain.Link{
		ID:        uuid.NewString(),
		Title:     title,
		CreatedBy: adminID,
		CreatedAt: s.now().UTC(),
		IsLatest:  true,
	}
	if err := s.repo.CreateLink(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}

func (s *LinkService) GetLink(ctx context.Context, id string) (*domain.Link, error) {
	link, err := s.repo.GetLink(ctx, id)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, domain.ErrNotFound
	}
	if err := s.markLatest(ctx, []*domain.Link{link}); err != nil {
		return nil, err
	}
	return link, nil
}

// History lists every link, newest first
func (s *LinkService) History(ctx context.Context) ([]domain.Link, error) {
	return s.repo.ListLinks(ctx)
}

// EmployeeLinks is the history with the link still open for submissions flagged
func (s *LinkService) EmployeeLinks(ctx context.Context) ([]domain.Link, error) {
	links, err := s.repo.ListLinks(ctx)
	if err != nil {
		return nil, err
	}
	// Newest first, so the first row is the latest
	if len(links) > 0 {
		links[0].IsLatest = true
	}
	return links, nil
}

// LinksForEmployee pages through the links an employee has submitted to
func (s *LinkService) LinksForEmployee(ctx context.Context, employeeCode string, page, limit int) (*domain.Page[domain.Link], error) {
	if employeeCode == "" {
		return nil, domain.Invalid("employeeId is required")
	}

	total, err := s.repo.CountEmployeeLinks(ctx, employeeCode)
	if err != nil {
		return nil, err
	}
	p := domain.NewPaging(page, limit, total)

	links, err := s.repo.ListEmployeeLinks(ctx, employeeCode, p.Limit, p.Offset())
	if err != nil {
		return nil, err
	}

	ptrs := make([]*domain.Link, len(links))
	for i := range links {
		ptrs[i] = &links[i]
	}
	if err := s.markLatest(ctx, ptrs); err != nil {
		return nil, err
	}

	return &domain.Page[domain.Link]{Items: links, Page: p.Page, Pages: p.Pages}, nil
}

func (s *LinkService) Summary(ctx context.Context, linkID string) (*domain.LinkSummary, error) {
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

	rows, err := s.repo.SummarizeLink(ctx, linkID)
	if err != nil {
		return nil, err
	}

	grand := decimal.Zero
	for _, r := range rows {
		grand = grand.Add(r.EmployeeTotal)
	}
	return &domain.LinkSummary{Title: link.Title, Rows: rows, GrandTotal: grand}, nil
}

func (s *LinkService) markLatest(ctx context.Context, links []*domain.Link) error {
	if len(links) == 0 {
		return nil
	}
	latest, err := s.repo.GetLatestLink(ctx)
	if err != nil {
		return err
	}
	for _, l := range links {
		l.IsLatest = latest != nil && latest.ID == l.ID
	}
	return nil
}

var _ ports.LinkService = (*LinkService)(nil)
