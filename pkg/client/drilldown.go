package client

import (
	"context"

	"github.com/shopspring/decimal"
)

// Drilldown is the admin view: an employee's links, then one link's entries for that employee.
// Switching or closing the employee also closes the link.
type Drilldown struct {
	Links   *Paginator[*LinkPage]
	Entries *Paginator[*EntryPage]

	employee string
}

func NewDrilldown(c *Client, token string, size int) *Drilldown {
	d := &Drilldown{}
	d.Links = NewPaginator(func(ctx context.Context, employeeID string, page, limit int) (*LinkPage, error) {
		return c.EmployeeLinks(ctx, token, employeeID, page, limit)
	}, size)
	d.Entries = NewPaginator(func(ctx context.Context, linkID string, page, limit int) (*EntryPage, error) {
		return c.EmployeeEntries(ctx, token, linkID, d.employee, page, limit)
	}, size)
	return d
}

// OpenEmployee lists the links of employeeID from page 1
func (d *Drilldown) OpenEmployee(ctx context.Context, employeeID string) error {
	d.Entries.Close()
	d.employee = employeeID
	return d.Links.Open(ctx, employeeID)
}

// OpenLink lists the open employee's entries for linkID from page 1
func (d *Drilldown) OpenLink(ctx context.Context, linkID string) error {
	if !d.Links.IsOpen() {
		return nil
	}
	return d.Entries.Open(ctx, linkID)
}

// RestoreEmployee reopens employeeID at page, closing any open link
func (d *Drilldown) RestoreEmployee(ctx context.Context, employeeID string, page int) error {
	d.Entries.Close()
	d.employee = employeeID
	return d.Links.Restore(ctx, employeeID, page)
}

func (d *Drilldown) RestoreLink(ctx context.Context, linkID string, page int) error {
	if !d.Links.IsOpen() {
		return nil
	}
	return d.Entries.Restore(ctx, linkID, page)
}

func (d *Drilldown) CloseEmployee() {
	d.Entries.Close()
	d.Links.Close()
	d.employee = ""
}

func (d *Drilldown) CloseLink() {
	d.Entries.Close()
}

func (d *Drilldown) Employee() string {
	return d.employee
}

// Total is the backend total of the open link, zero when none is open
func (d *Drilldown) Total() decimal.Decimal {
	page, ok := d.Entries.Current()
	if !ok {
		return decimal.Zero
	}
	return page.TotalAmount
}
