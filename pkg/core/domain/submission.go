package domain

import (
	"encoding/json"
	"io"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Submission is one payment entry tied to a link and an employee
type Submission struct {
	ID         string          `json:"id"`
	LinkID     string          `json:"linkId"`
	EmployeeID string          `json:"employeeId"` // Employee code
	Name       string          `json:"name"`
	UpiID      string          `json:"upiId"`
	Amount     decimal.Decimal `json:"amount"`
	Attachment string          `json:"attachment,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// EmployeeTotal is one row of a link summary
type EmployeeTotal struct {
	EmployeeID    string          `json:"employeeId"`
	Name          string          `json:"name"`
	EntryCount    int64           `json:"entryCount"`
	EmployeeTotal decimal.Decimal `json:"employeeTotal"`
}

// LinkSummary aggregates every submission of a link per employee
type LinkSummary struct {
	Title      string          `json:"title"`
	Rows       []EmployeeTotal `json:"rows"`
	GrandTotal decimal.Decimal `json:"grandTotal"`
}

// Money fields go on the wire as strings with two decimals, e.g. "250.00"

func (s Submission) MarshalJSON() ([]byte, error) {
	type plain Submission
	return json.Marshal(struct {
		plain
		Amount string `json:"amount"`
	}{plain(s), s.Amount.StringFixed(paiseFactor)})
}

func (t EmployeeTotal) MarshalJSON() ([]byte, error) {
	type plain EmployeeTotal
	return json.Marshal(struct {
		plain
		EmployeeTotal string `json:"employeeTotal"`
	}{plain(t), t.EmployeeTotal.StringFixed(paiseFactor)})
}

func (l LinkSummary) MarshalJSON() ([]byte, error) {
	type plain LinkSummary
	return json.Marshal(struct {
		plain
		GrandTotal string `json:"grandTotal"`
	}{plain(l), l.GrandTotal.StringFixed(paiseFactor)})
}

// paiseFactor converts between rupees and the stored integer unit
const paiseFactor = 2

// MaxAmountPaise bounds a single entry so a million of them still SUM inside int64
const MaxAmountPaise = math.MaxInt64 / 1_000_000

// MaxAmount is MaxAmountPaise in rupees
var MaxAmount = FromPaise(MaxAmountPaise)

// ToPaise returns the amount in the smallest currency unit
func ToPaise(d decimal.Decimal) int64 {
	return d.Round(paiseFactor).Shift(paiseFactor).IntPart()
}

// FromPaise converts a stored integer amount back to rupees
func FromPaise(p int64) decimal.Decimal {
	return decimal.New(p, -paiseFactor)
}

// SubmissionPage is one page of entries plus the total over the whole scope
type SubmissionPage struct {
	Entries     []Submission    `json:"entries"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	IsLatest    bool            `json:"isLatest"`
	Page        int             `json:"page"`
	Pages       int             `json:"pages"`
}

// NewSubmission is the input for creating a submission
type NewSubmission struct {
	LinkID       string
	EmployeeCode string
	Name         string
	UpiID        string
	Amount       string
	// Optional receipt image
	ImageName string
	Image     io.Reader
}
