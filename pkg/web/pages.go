package web

import (
	"net/url"

	"github.com/shopspring/decimal"
	"github.com/wadjakorntonsri/paylinks/pkg/client"
	"github.com/wadjakorntonsri/paylinks/pkg/core/domain"
)

type pageData struct {
	Title    string
	Error    string
	Notice   string
	Identity client.Identity
	Search   string

	GoogleLoginURL string

	// Admin dashboard
	Employees      []domain.Employee
	EmployeesError string
	CreatedLink    *client.CreatedLink
	Drill          *drillView

	// Link history
	Links        []domain.Link
	LinksError   string
	Summary      *domain.LinkSummary
	SummaryID    string
	SummaryError string

	// Employee link page
	Link              *domain.Link
	Entries           *pagerView
	FormOffered       bool
	FormOpen          bool
	FormError         string
	FormName          string
	FormUpiID         string
	FormAmount        string
	AttachmentEnabled bool
}

// pagerView is a paginator flattened for a template
type pagerView struct {
	Page    int
	Pages   int
	HasPrev bool
	HasNext bool
	Error   string

	Links   []domain.Link
	Entries []domain.Submission
	Total   decimal.Decimal
}

// drillView carries the admin drill-down state; every link rebuilds it from query params
type drillView struct {
	Employee     string
	EmployeeName string
	Link         string
	LinkTitle    string
	Search       string
	Links        *pagerView
	Entries      *pagerView
}

// URL returns the dashboard address for a drill-down state
func (d *drillView) URL(emp string, lpage int, link string, spage int) string {
	q := url.Values{}
	if d.Search != "" {
		q.Set("q", d.Search)
	}
	if emp != "" {
		q.Set("emp", emp)
		if lpage > 1 {
			q.Set("lpage", itoa(lpage))
		}
	}
	if emp != "" && link != "" {
		q.Set("link", link)
		if spage > 1 {
			q.Set("spage", itoa(spage))
		}
	}
	if len(q) == 0 {
		return "/admin/dashboard"
	}
	return "/admin/dashboard?" + q.Encode()
}

func linkPagerView(p *client.Paginator[*client.LinkPage], loadFailed string) *pagerView {
	if !p.IsOpen() {
		return nil
	}
	v := &pagerView{Page: p.Page(), Pages: p.Pages(), HasPrev: p.HasPrev(), HasNext: p.HasNext()}
	if page, ok := p.Current(); ok {
		v.Links = page.Links
	}
	if p.Err() != nil {
		v.Error = client.Message(p.Err(), loadFailed)
	}
	return v
}

func entryPagerView(p *client.Paginator[*client.EntryPage], loadFailed string) *pagerView {
	if !p.IsOpen() {
		return nil
	}
	v := &pagerView{Page: p.Page(), Pages: p.Pages(), HasPrev: p.HasPrev(), HasNext: p.HasNext(), Total: decimal.Zero}
	if page, ok := p.Current(); ok {
		v.Entries = page.Entries
		v.Total = page.TotalAmount
	}
	if p.Err() != nil {
		v.Error = client.Message(p.Err(), loadFailed)
	}
	return v
}
