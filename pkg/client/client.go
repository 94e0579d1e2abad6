// Package client talks to the paylinks API and holds the state machines the
// dashboards are built from: session, gate, filter list, paginator and entry form.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wadjakorntonsri/paylinks/pkg/core/domain"
)

// ErrUnauthorized matches any APIError with status 401
var ErrUnauthorized = errors.New("unauthorized")

// APIError is a non-2xx response from the API
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return e.Message
}

func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// Message returns the backend message of err, or fallback when there is none
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" && apiErr.Status < 500 {
		return apiErr.Message
	}
	return fallback
}

// Identity is what a successful sign-in leaves behind
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Token string `json:"token"`
}

type CreatedLink struct {
	Link string `json:"link"`
	ID   string `json:"id"`
}

// LinkPage is one page of the links an employee has submitted to
type LinkPage struct {
	Links []domain.Link `json:"links"`
	Page  int           `json:"page"`
	Pages int           `json:"pages"`
}

func (p *LinkPage) PageNumber() int { return p.Page }
func (p *LinkPage) PageCount() int  { return p.Pages }

// EntryPage is one page of submissions plus the total over the whole scope
type EntryPage struct {
	Entries     []domain.Submission `json:"entries"`
	TotalAmount decimal.Decimal     `json:"totalAmount"`
	IsLatest    bool                `json:"isLatest"`
	Page        int                 `json:"page"`
	Pages       int                 `json:"pages"`
}

func (p *EntryPage) PageNumber() int { return p.Page }
func (p *EntryPage) PageCount() int  { return p.Pages }

// Entry is the input of a new submission
type Entry struct {
	Name       string
	UpiID      string
	Amount     string
	EmployeeID string
}

// Attachment is an optional receipt image sent with an entry
type Attachment struct {
	Filename string
	Content  io.Reader
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// --- Admin ---

func (c *Client) AdminLogin(ctx context.Context, email, password string) (Identity, error) {
	var out struct {
		AdminID   string `json:"adminId"`
		AdminName string `json:"adminName"`
		Token     string `json:"token"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/admin/login", "", map[string]string{"email": email, "password": password}, &out)
	return Identity{ID: out.AdminID, Name: out.AdminName, Token: out.Token}, err
}

func (c *Client) AdminCheck(ctx context.Context, token string) (Identity, error) {
	var out struct {
		AdminID   string `json:"adminId"`
		AdminName string `json:"adminName"`
	}
	err := c.doJSON(ctx, http.MethodGet, "/admin/check", token, nil, &out)
	return Identity{ID: out.AdminID, Name: out.AdminName, Token: token}, err
}

func (c *Client) Employees(ctx context.Context, token string) ([]domain.Employee, error) {
	var out []domain.Employee
	err := c.doJSON(ctx, http.MethodGet, "/admin/employees", token, nil, &out)
	return out, err
}

func (c *Client) CreateLink(ctx context.Context, token, title, adminID string) (*CreatedLink, error) {
	var out CreatedLink
	if err := c.doJSON(ctx, http.MethodPost, "/admin/links", token, map[string]string{"title": title, "adminId": adminID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) LinkHistory(ctx context.Context, token string) ([]domain.Link, error) {
	var out []domain.Link
	err := c.doJSON(ctx, http.MethodGet, "/admin/links", token, nil, &out)
	return out, err
}

func (c *Client) EmployeeLinks(ctx context.Context, token, employeeID string, page, limit int) (*LinkPage, error) {
	var out LinkPage
	body := map[string]interface{}{"employeeId": employeeID, "page": page, "limit": limit}
	if err := c.doJSON(ctx, http.MethodPost, "/admin/employees/links", token, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) EmployeeEntries(ctx context.Context, token, linkID, employeeID string, page, limit int) (*EntryPage, error) {
	var out EntryPage
	body := map[string]interface{}{"linkId": linkID, "employeeId": employeeID, "page": page, "limit": limit}
	if err := c.doJSON(ctx, http.MethodPost, "/admin/employees/links/entries", token, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Summary(ctx context.Context, token, linkID string) (*domain.LinkSummary, error) {
	var out domain.LinkSummary
	if err := c.doJSON(ctx, http.MethodPost, "/admin/links/summary", token, map[string]string{"linkId": linkID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Export downloads a summary document. The caller closes the body.
func (c *Client) Export(ctx context.Context, token, linkID, format string) (*http.Response, error) {
	return c.download(ctx, token, "/admin/links/"+url.PathEscape(linkID)+"/export?format="+url.QueryEscape(format))
}

func (c *Client) QRCode(ctx context.Context, token, linkID string) (*http.Response, error) {
	return c.download(ctx, token, "/admin/links/"+url.PathEscape(linkID)+"/qr.png")
}

// --- Employee ---

func (c *Client) EmployeeRegister(ctx context.Context, name, email, password string) (Identity, error) {
	return c.employeeAuth(ctx, "/employee/register", map[string]string{"name": name, "email": email, "password": password})
}

func (c *Client) EmployeeLogin(ctx context.Context, email, password string) (Identity, error) {
	return c.employeeAuth(ctx, "/employee/login", map[string]string{"email": email, "password": password})
}

func (c *Client) employeeAuth(ctx context.Context, path string, body map[string]string) (Identity, error) {
	var out struct {
		EmployeeID string `json:"employeeId"`
		Name       string `json:"name"`
		Token      string `json:"token"`
	}
	err := c.doJSON(ctx, http.MethodPost, path, "", body, &out)
	return Identity{ID: out.EmployeeID, Name: out.Name, Token: out.Token}, err
}

func (c *Client) EmployeeCheck(ctx context.Context, token string) (Identity, error) {
	var out struct {
		EmployeeID string `json:"employeeId"`
		Name       string `json:"name"`
	}
	err := c.doJSON(ctx, http.MethodGet, "/employee/check", token, nil, &out)
	return Identity{ID: out.EmployeeID, Name: out.Name, Token: token}, err
}

func (c *Client) MyLinks(ctx context.Context, token string) ([]domain.Link, error) {
	var out []domain.Link
	err := c.doJSON(ctx, http.MethodGet, "/employee/links", token, nil, &out)
	return out, err
}

func (c *Client) MyEntries(ctx context.Context, token, linkID, employeeID string, page, limit int) (*EntryPage, error) {
	var out EntryPage
	body := map[string]interface{}{"linkId": linkID, "employeeId": employeeID, "page": page, "limit": limit}
	if err := c.doJSON(ctx, http.MethodPost, "/employee/links/entries", token, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Submit posts JSON, or multipart form data when att is set
func (c *Client) Submit(ctx context.Context, token, linkID string, e Entry, att *Attachment) (*domain.Submission, error) {
	path := "/employee/links/" + url.PathEscape(linkID) + "/entries"
	var out domain.Submission

	if att == nil {
		body := map[string]string{"name": e.Name, "upiId": e.UpiID, "amount": e.Amount, "employeeId": e.EmployeeID}
		if err := c.doJSON(ctx, http.MethodPost, path, token, body, &out); err != nil {
			return nil, err
		}
		return &out, nil
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range map[string]string{"name": e.Name, "upiId": e.UpiID, "amount": e.Amount, "employeeId": e.EmployeeID} {
		if err := mw.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	part, err := mw.CreateFormFile("image", att.Filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, att.Content); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, token, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if err := c.send(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Attachment fetches a stored receipt image. The caller closes the body.
func (c *Client) Attachment(ctx context.Context, token, name string) (*http.Response, error) {
	return c.download(ctx, token, "/attachments/"+url.PathEscape(name))
}

// --- transport ---

func (c *Client) newRequest(ctx context.Context, method, path, token string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (c *Client) doJSON(ctx context.Context, method, path, token string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := c.newRequest(ctx, method, path, token, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return readAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", req.URL.Path, err)
	}
	return nil
}

func (c *Client) download(ctx context.Context, token, path string) (*http.Response, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, readAPIError(resp)
	}
	return resp, nil
}

func readAPIError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body)
	return &APIError{Status: resp.StatusCode, Message: body.Error}
}
