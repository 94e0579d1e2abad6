package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/wadjakorntonsri/paylinks/pkg/app"
	"github.com/wadjakorntonsri/paylinks/pkg/client"
	"github.com/wadjakorntonsri/paylinks/pkg/config"
	"github.com/wadjakorntonsri/paylinks/pkg/core/domain"
	"go.uber.org/zap"
)

func newDashboard(t *testing.T) (*httptest.Server, *client.Client) {
	t.Helper()
	cfg := &config.Config{
		DatabaseURL:   fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_")),
		JWTSecret:     "web-secret",
		FrontendURL:   "https://pay.example",
		UploadDir:     t.TempDir(),
		AdminEmail:    "admin@example.com",
		AdminPassword: "adminpass",
		AdminName:     "Priya",
	}
	api, err := app.New(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	apiServer := httptest.NewServer(api.Handler)
	apiClient := client.New(apiServer.URL, apiServer.Client())

	dash := httptest.NewServer(NewServer(Config{APIBaseURL: apiServer.URL}, apiClient, zap.NewNop()).Routes())
	t.Cleanup(func() {
		dash.Close()
		apiServer.Close()
		api.Close()
	})
	return dash, apiClient
}

func browser(t *testing.T) *http.Client {
	jar, _ := cookiejar.New(nil)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return string(b)
}

func TestGateRedirectsWithoutRendering(t *testing.T) {
	dash, _ := newDashboard(t)
	b := browser(t)

	tests := []struct {
		path string
		want string
	}{
		{"/admin/dashboard", "/admin/login"},
		{"/admin/link-history", "/admin/login"},
		{"/employee/dashboard", "/employee/login"},
		{"/employee/links/some-id", "/employee/login"},
		{"/", "/employee/login"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := b.Get(dash.URL + tt.path)
			if err != nil {
				t.Fatal(err)
			}
			body := readBody(t, resp)
			if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != tt.want {
				t.Errorf("status %d location %q", resp.StatusCode, resp.Header.Get("Location"))
			}
			if body != "" {
				t.Errorf("protected content rendered: %q", body)
			}
		})
	}
}

func TestEmployeeFlow(t *testing.T) {
	dash, api := newDashboard(t)
	ctx := context.Background()

	admin, err := api.AdminLogin(ctx, "admin@example.com", "adminpass")
	if err != nil {
		t.Fatal(err)
	}
	link, err := api.CreateLink(ctx, admin.Token, "March Batch", admin.ID)
	if err != nil {
		t.Fatal(err)
	}

	b := browser(t)
	resp, err := b.PostForm(dash.URL+"/employee/login", url.Values{
		"action": {"register"}, "name": {"Asha"}, "email": {"asha@example.com"}, "password": {"secret1"},
	})
	if err != nil {
		t.Fatal(err)
	}
	readBody(t, resp)
	if resp.Header.Get("Location") != "/employee/dashboard" {
		t.Fatalf("register redirect = %q", resp.Header.Get("Location"))
	}

	// Signed in: the login page bounces back to the dashboard
	resp, _ = b.Get(dash.URL + "/employee/login")
	readBody(t, resp)
	if resp.Header.Get("Location") != "/employee/dashboard" {
		t.Errorf("login page with session: %q", resp.Header.Get("Location"))
	}

	resp, _ = b.Get(dash.URL + "/employee/dashboard")
	if body := readBody(t, resp); !strings.Contains(body, "March Batch") {
		t.Errorf("dashboard missing link: %s", body)
	}

	resp, _ = b.Get(dash.URL + "/employee/links/" + link.ID + "?form=open")
	if body := readBody(t, resp); !strings.Contains(body, `name="upiId"`) {
		t.Error("latest link should render the entry form")
	}

	// Missing amount keeps the form open with the typed values
	resp, _ = b.PostForm(dash.URL+"/employee/links/"+link.ID+"/entries", url.Values{"name": {"Asha"}, "upiId": {"asha@upi"}})
	if body := readBody(t, resp); !strings.Contains(body, "are required") || !strings.Contains(body, `value="asha@upi"`) {
		t.Errorf("incomplete form: %s", body)
	}

	resp, _ = b.PostForm(dash.URL+"/employee/links/"+link.ID+"/entries", url.Values{"name": {"Asha"}, "upiId": {"asha@upi"}, "amount": {"250"}, "page": {"1"}})
	readBody(t, resp)
	if !strings.HasPrefix(resp.Header.Get("Location"), "/employee/links/"+link.ID+"?page=1") {
		t.Fatalf("submit redirect = %q", resp.Header.Get("Location"))
	}

	resp, _ = b.Get(dash.URL + "/employee/links/" + link.ID)
	if body := readBody(t, resp); !strings.Contains(body, "Total: 250.00") {
		t.Errorf("entries page missing total: %s", body)
	}

	// An older link never offers the form
	if _, err := api.CreateLink(ctx, admin.Token, "April Batch", admin.ID); err != nil {
		t.Fatal(err)
	}
	resp, _ = b.Get(dash.URL + "/employee/links/" + link.ID + "?form=open")
	if body := readBody(t, resp); strings.Contains(body, `name="upiId"`) || strings.Contains(body, "Add entry") {
		t.Error("closed link rendered a submit control")
	}
	resp, _ = b.PostForm(dash.URL+"/employee/links/"+link.ID+"/entries", url.Values{"name": {"Asha"}, "upiId": {"asha@upi"}, "amount": {"5"}})
	readBody(t, resp)
	if loc := resp.Header.Get("Location"); resp.StatusCode != http.StatusFound || !strings.Contains(loc, "error=") {
		t.Errorf("post to a closed link: status %d location %q", resp.StatusCode, loc)
	}

	// Logout clears both roles
	resp, _ = b.Get(dash.URL + "/employee/logout")
	readBody(t, resp)
	resp, _ = b.Get(dash.URL + "/employee/dashboard")
	readBody(t, resp)
	if resp.Header.Get("Location") != "/employee/login" {
		t.Errorf("after logout: %q", resp.Header.Get("Location"))
	}
}

func TestAdminDrilldownPage(t *testing.T) {
	dash, api := newDashboard(t)
	ctx := context.Background()

	b := browser(t)
	resp, err := b.PostForm(dash.URL+"/admin/login", url.Values{"email": {"admin@example.com"}, "password": {"adminpass"}})
	if err != nil {
		t.Fatal(err)
	}
	readBody(t, resp)
	if resp.Header.Get("Location") != "/admin/dashboard" {
		t.Fatalf("admin login redirect = %q", resp.Header.Get("Location"))
	}

	resp, _ = b.PostForm(dash.URL+"/admin/links", url.Values{"title": {"March Batch"}})
	readBody(t, resp)
	loc := resp.Header.Get("Location")
	if !strings.Contains(loc, "created=") {
		t.Fatalf("create link redirect = %q", loc)
	}
	resp, _ = b.Get(dash.URL + loc)
	if body := readBody(t, resp); !strings.Contains(body, "https://pay.example/employee/links/") {
		t.Error("created share link not shown")
	}

	emp, _ := api.EmployeeRegister(ctx, "Asha", "asha@example.com", "secret1")
	links, _ := api.MyLinks(ctx, emp.Token)
	for i := 0; i < 12; i++ {
		if _, err := api.Submit(ctx, emp.Token, links[0].ID, client.Entry{Name: "Asha", UpiID: "asha@upi", Amount: "10"}, nil); err != nil {
			t.Fatal(err)
		}
	}

	resp, _ = b.Get(dash.URL + "/admin/dashboard?q=ash")
	if body := readBody(t, resp); !strings.Contains(body, "Asha") {
		t.Error("search should match Asha")
	}
	resp, _ = b.Get(dash.URL + "/admin/dashboard?q=zzz")
	if body := readBody(t, resp); !strings.Contains(body, "No employees found.") {
		t.Error("search should match nobody")
	}

	resp, _ = b.Get(dash.URL + "/admin/dashboard?emp=" + emp.ID + "&link=" + links[0].ID + "&spage=2")
	body := readBody(t, resp)
	if !strings.Contains(body, "Page 2 of 2") || !strings.Contains(body, "Total: 120.00") {
		t.Errorf("drill-down page 2: %s", body)
	}

	resp, _ = b.Get(dash.URL + "/admin/link-history/view?id=" + links[0].ID)
	if body := readBody(t, resp); !strings.Contains(body, "120.00") || !strings.Contains(body, "Asha") {
		t.Errorf("summary page: %s", body)
	}

	resp, _ = b.Get(dash.URL + "/admin/link-history/export?id=" + links[0].ID + "&format=pdf")
	if body := readBody(t, resp); !strings.HasPrefix(body, "%PDF") {
		t.Error("export did not proxy a PDF")
	}
}

func TestStaleTokenSignsOut(t *testing.T) {
	dash, _ := newDashboard(t)
	b := browser(t)

	u, _ := url.Parse(dash.URL)
	rec := httptest.NewRecorder()
	store := newCookieStore(rec, httptest.NewRequest("GET", "/", nil), false)
	_ = store.Save(domain.RoleAdmin, client.Identity{ID: "ghost", Name: "Ghost", Token: "expired"})
	b.Jar.SetCookies(u, rec.Result().Cookies())

	resp, err := b.Get(dash.URL + "/admin/dashboard")
	if err != nil {
		t.Fatal(err)
	}
	readBody(t, resp)
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/admin/login" {
		t.Errorf("stale token: status %d location %q", resp.StatusCode, resp.Header.Get("Location"))
	}
}

func TestEmployeeDashboardLinksFailure(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":"internal server error"}`)
	}))
	defer api.Close()
	dash := httptest.NewServer(NewServer(Config{APIBaseURL: api.URL}, client.New(api.URL, api.Client()), zap.NewNop()).Routes())
	defer dash.Close()

	b := browser(t)
	u, _ := url.Parse(dash.URL)
	rec := httptest.NewRecorder()
	store := newCookieStore(rec, httptest.NewRequest("GET", "/", nil), false)
	_ = store.Save(domain.RoleEmployee, client.Identity{ID: "EMP0001", Name: "Asha", Token: "token"})
	b.Jar.SetCookies(u, rec.Result().Cookies())

	resp, err := b.Get(dash.URL + "/employee/dashboard")
	if err != nil {
		t.Fatal(err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "Failed to load links.") {
		t.Errorf("status %d body %s", resp.StatusCode, body)
	}
	if strings.Contains(body, "internal server error") {
		t.Error("server error message leaked into the page")
	}
}
