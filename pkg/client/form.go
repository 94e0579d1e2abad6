package client

import (
	"context"
	"errors"
	"strings"
	"sync"
)

const SubmitFailed = "Failed to submit entry."

// ErrFormClosed is returned by Submit when the form is not open or its link no longer accepts entries
var ErrFormClosed = errors.New("entry form is not open")

// EntryForm collects one submission for the link an entries paginator has open
type EntryForm struct {
	client            *Client
	token             string
	employeeID        string
	entries           *Paginator[*EntryPage]
	AttachmentEnabled bool

	mu         sync.Mutex
	open       bool
	name       string
	upiID      string
	amount     string
	attachment *Attachment
	message    string
}

func NewEntryForm(c *Client, token, employeeID string, entries *Paginator[*EntryPage], attachmentEnabled bool) *EntryForm {
	return &EntryForm{
		client:            c,
		token:             token,
		employeeID:        employeeID,
		entries:           entries,
		AttachmentEnabled: attachmentEnabled,
	}
}

// Offered reports whether the open link still accepts submissions
func (f *EntryForm) Offered() bool {
	page, ok := f.entries.Current()
	return ok && page.IsLatest
}

func (f *EntryForm) Open() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Offered() {
		f.open = true
	}
}

func (f *EntryForm) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

func (f *EntryForm) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = false
	f.reset()
}

// Set fills the text fields. Amount stays text; the backend validates it.
func (f *EntryForm) Set(name, upiID, amount string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.name, f.upiID, f.amount = name, upiID, amount
}

// Attach sets the receipt image; ignored unless attachments are enabled
func (f *EntryForm) Attach(att *Attachment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.AttachmentEnabled {
		f.attachment = att
	}
}

// Values returns the text fields as typed
func (f *EntryForm) Values() (name, upiID, amount string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.name, f.upiID, f.amount
}

// Ready is true once every text field is non-empty
func (f *EntryForm) Ready() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ready()
}

func (f *EntryForm) ready() bool {
	return strings.TrimSpace(f.name) != "" && strings.TrimSpace(f.upiID) != "" && strings.TrimSpace(f.amount) != ""
}

// Message is the inline error of the last failed submit
func (f *EntryForm) Message() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.message
}

// Submit sends the entry once. On success the form clears and closes and the paginator reloads its current page.
// On failure the form stays open with a message. Nothing is sent unless the form is open on a link that is offered.
func (f *EntryForm) Submit(ctx context.Context) error {
	f.mu.Lock()
	if !f.open || !f.Offered() {
		f.mu.Unlock()
		return ErrFormClosed
	}
	if !f.ready() {
		f.mu.Unlock()
		return nil
	}
	entry := Entry{Name: f.name, UpiID: f.upiID, Amount: f.amount, EmployeeID: f.employeeID}
	var att *Attachment
	if f.AttachmentEnabled {
		att = f.attachment
	}
	linkID := f.entries.Parent()
	f.mu.Unlock()

	_, err := f.client.Submit(ctx, f.token, linkID, entry, att)

	f.mu.Lock()
	if err != nil {
		f.message = Message(err, SubmitFailed)
		f.mu.Unlock()
		return err
	}
	f.open = false
	f.reset()
	f.mu.Unlock()

	return f.entries.Reload(ctx)
}

func (f *EntryForm) reset() {
	f.name, f.upiID, f.amount, f.attachment, f.message = "", "", "", nil, ""
}
