package ports

import (
	"context"
	"io"

	"github.com/wadjakorntonsri/paylinks/pkg/core/domain"
)

// AccountRepository stores admins and employees
type AccountRepository interface {
	CreateAdmin(ctx context.Context, admin *domain.Admin) error
	GetAdminByEmail(ctx context.Context, email string) (*domain.Admin, error)
	GetAdminByID(ctx context.Context, id string) (*domain.Admin, error)

	CreateEmployee(ctx context.Context, employee *domain.Employee) error
	GetEmployeeByEmail(ctx context.Context, email string) (*domain.Employee, error)
	GetEmployeeByCode(ctx context.Context, code string) (*domain.Employee, error)
	ListEmployees(ctx context.Context) ([]domain.Employee, error)
}

// LinkRepository defines storage operations for links and their submissions
type LinkRepository interface {
	CreateLink(ctx context.Context, link *domain.Link) error
	GetLink(ctx context.Context, id string) (*domain.Link, error)
	GetLatestLink(ctx context.Context) (*domain.Link, error)
	ListLinks(ctx context.Context) ([]domain.Link, error)

	// Links an employee has submitted to, newest first
	ListEmployeeLinks(ctx context.Context, employeeCode string, limit, offset int) ([]domain.Link, error)
	CountEmployeeLinks(ctx context.Context, employeeCode string) (int64, error)

	CreateSubmission(ctx context.Context, sub *domain.Submission) error
	ListSubmissions(ctx context.Context, linkID, employeeCode string, limit, offset int) ([]domain.Submission, error)
	// Count and exact SUM over the whole (link, employee) scope
	SubmissionTotals(ctx context.Context, linkID, employeeCode string) (int64, int64, error)
	SummarizeLink(ctx context.Context, linkID string) ([]domain.EmployeeTotal, error)

	Dump(ctx context.Context) (*domain.Dump, error) // For migration
	Import(ctx context.Context, dump *domain.Dump) error
}

// AttachmentStore keeps receipt images uploaded with a submission
type AttachmentStore interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
	Open(name string) (io.ReadCloser, string, error)
}

// SummaryExporter renders a link summary as a downloadable document
type SummaryExporter interface {
	ContentType() string
	Extension() string
	Export(w io.Writer, summary *domain.LinkSummary) error
}

// AuthService defines account and session operations
type AuthService interface {
	RegisterEmployee(ctx context.Context, name, email, password string) (*domain.Employee, string, error)
	LoginEmployee(ctx context.Context, email, password string) (*domain.Employee, string, error)
	LoginAdmin(ctx context.Context, email, password string) (*domain.Admin, string, error)
	LoginAdminByEmail(ctx context.Context, email string) (*domain.Admin, string, error)
	SeedAdmin(ctx context.Context, name, email, password string) error
	ParseToken(token string) (*domain.Claims, error)
	CurrentAdmin(ctx context.Context, id string) (*domain.Admin, error)
	CurrentEmployee(ctx context.Context, code string) (*domain.Employee, error)
	ListEmployees(ctx context.Context) ([]domain.Employee, error)
}

// LinkService defines the business logic for links
type LinkService interface {
	CreateLink(ctx context.Context, title, adminID string) (*domain.Link, error)
	History(ctx context.Context) ([]domain.Link, error)
	EmployeeLinks(ctx context.Context) ([]domain.Link, error)
	LinksForEmployee(ctx context.Context, employeeCode string, page, limit int) (*domain.Page[domain.Link], error)
	Summary(ctx context.Context, linkID string) (*domain.LinkSummary, error)
	GetLink(ctx context.Context, id string) (*domain.Link, error)
}

// SubmissionService defines the business logic for payment entries
type SubmissionService interface {
	List(ctx context.Context, linkID, employeeCode string, page, limit int) (*domain.SubmissionPage, error)
	Create(ctx context.Context, in domain.NewSubmission) (*domain.Submission, error)
}
