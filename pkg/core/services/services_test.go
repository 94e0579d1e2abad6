package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wadjakorntonsri/paylinks/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/paylinks/pkg/core/domain"
)

func newTestRepo(t *testing.T) *sqlite.SQLiteRepository {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	repo, err := sqlite.NewSQLiteRepository(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("Failed to init db: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

// tick returns a clock that advances one second per call
func tick() func() time.Time {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	n := 0
	return func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
}

func TestCreateLink(t *testing.T) {
	repo := newTestRepo(t)
	links := NewLinkService(repo)
	ctx := context.Background()

	link, err := links.CreateLink(ctx, "  March Batch ", "admin-1")
	if err != nil {
		t.Fatalf("CreateLink: %v", err)
	}
	if link.Title != "March Batch" || link.ID == "" {
		t.Errorf("unexpected link %+v", link)
	}
	if got := link.ShareURL("https://pay.example"); got != "https://pay.example/employee/links/"+link.ID {
		t.Errorf("share url = %s", got)
	}

	history, err := links.History(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 1 || history[0].Title != "March Batch" {
		t.Errorf("history = %+v", history)
	}

	if _, err := links.CreateLink(ctx, "   ", "admin-1"); !domain.IsValidation(err) {
		t.Errorf("empty title: expected validation error, got %v", err)
	}
}

func TestTotalCoversEveryPage(t *testing.T) {
	repo := newTestRepo(t)
	links := NewLinkService(repo)
	subs := NewSubmissionService(repo, nil)
	clock := tick()
	links.now, subs.now = clock, clock
	ctx := context.Background()

	link, err := links.CreateLink(ctx, "April", "admin-1")
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= 12; i++ {
		_, err := subs.Create(ctx, domain.NewSubmission{
			LinkID:       link.ID,
			EmployeeCode: "EMP0001",
			Name:         fmt.Sprintf("Payer %d", i),
			UpiID:        "payer@upi",
			Amount:       "10.50",
		})
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	want := decimal.RequireFromString("126")
	for page, size := range map[int]int{1: 10, 2: 2} {
		got, err := subs.List(ctx, link.ID, "EMP0001", page, 10)
		if err != nil {
			t.Fatal(err)
		}
		if len(got.Entries) != size {
			t.Errorf("page %d: %d entries, want %d", page, len(got.Entries), size)
		}
		if got.Pages != 2 || got.Page != page {
			t.Errorf("page %d: page=%d pages=%d", page, got.Page, got.Pages)
		}
		if !got.TotalAmount.Equal(want) {
			t.Errorf("page %d: total %s, want %s", page, got.TotalAmount, want)
		}
	}

	first, _ := subs.List(ctx, link.ID, "EMP0001", 1, 10)
	if first.Entries[0].Name != "Payer 12" {
		t.Errorf("newest first: got %s", first.Entries[0].Name)
	}

	clamped, err := subs.List(ctx, link.ID, "EMP0001", 9, 10)
	if err != nil {
		t.Fatal(err)
	}
	if clamped.Page != 2 {
		t.Errorf("past the end should clamp to 2, got %d", clamped.Page)
	}
}

func TestSubmitAndAdminSeesEntry(t *testing.T) {
	repo := newTestRepo(t)
	auth := NewAuthService(repo, "secret", nil)
	links := NewLinkService(repo)
	subs := NewSubmissionService(repo, nil)
	ctx := context.Background()

	employee, token, err := auth.RegisterEmployee(ctx, "Asha", "asha@example.com", "hunter22")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if employee.Code != "EMP0001" || token == "" {
		t.Errorf("unexpected employee %+v", employee)
	}

	link, _ := links.CreateLink(ctx, "March Batch", "admin-1")
	if _, err := subs.Create(ctx, domain.NewSubmission{
		LinkID: link.ID, EmployeeCode: employee.Code, Name: "Asha", UpiID: "asha@upi", Amount: "250",
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	page, err := subs.List(ctx, link.ID, employee.Code, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Entries) != 1 || !page.TotalAmount.Equal(decimal.NewFromInt(250)) || !page.IsLatest {
		t.Errorf("employee view = %+v", page)
	}

	adminLinks, err := links.LinksForEmployee(ctx, employee.Code, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(adminLinks.Items) != 1 || adminLinks.Items[0].ID != link.ID || adminLinks.Pages != 1 {
		t.Errorf("admin links = %+v", adminLinks)
	}

	summary, err := links.Summary(ctx, link.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(summary.Rows) != 1 || summary.Rows[0].Name != "Asha" || summary.Rows[0].EntryCount != 1 {
		t.Errorf("summary rows = %+v", summary.Rows)
	}
	if !summary.GrandTotal.Equal(decimal.NewFromInt(250)) {
		t.Errorf("grand total = %s", summary.GrandTotal)
	}
}

func TestOnlyLatestLinkAcceptsSubmissions(t *testing.T) {
	repo := newTestRepo(t)
	links := NewLinkService(repo)
	subs := NewSubmissionService(repo, nil)
	clock := tick()
	links.now, subs.now = clock, clock
	ctx := context.Background()

	old, _ := links.CreateLink(ctx, "February", "admin-1")
	latest, _ := links.CreateLink(ctx, "March", "admin-1")

	_, err := subs.Create(ctx, domain.NewSubmission{
		LinkID: old.ID, EmployeeCode: "EMP0001", Name: "A", UpiID: "a@upi", Amount: "1",
	})
	if !errors.Is(err, domain.ErrLinkNotLatest) {
		t.Errorf("expected ErrLinkNotLatest, got %v", err)
	}

	page, err := subs.List(ctx, old.ID, "EMP0001", 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if page.IsLatest {
		t.Error("old link reported as latest")
	}
	if page.Page != 1 || page.Pages != 1 || len(page.Entries) != 0 {
		t.Errorf("empty scope = %+v", page)
	}

	all, _ := links.EmployeeLinks(ctx)
	if len(all) != 2 || all[0].ID != latest.ID || !all[0].IsLatest || all[1].IsLatest {
		t.Errorf("employee links = %+v", all)
	}
}

func TestCreateSubmissionValidation(t *testing.T) {
	repo := newTestRepo(t)
	links := NewLinkService(repo)
	subs := NewSubmissionService(repo, nil)
	ctx := context.Background()
	link, _ := links.CreateLink(ctx, "May", "admin-1")

	tests := []struct {
		name string
		in   domain.NewSubmission
	}{
		{"missing name", domain.NewSubmission{UpiID: "x@upi", Amount: "1"}},
		{"missing upi", domain.NewSubmission{Name: "X", Amount: "1"}},
		{"missing amount", domain.NewSubmission{Name: "X", UpiID: "x@upi"}},
		{"not a number", domain.NewSubmission{Name: "X", UpiID: "x@upi", Amount: "ten"}},
		{"negative", domain.NewSubmission{Name: "X", UpiID: "x@upi", Amount: "-5"}},
		{"too large", domain.NewSubmission{Name: "X", UpiID: "x@upi", Amount: "100000000000000000"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.in.LinkID = link.ID
			tt.in.EmployeeCode = "EMP0001"
			if _, err := subs.Create(ctx, tt.in); !domain.IsValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}

	if _, err := subs.Create(ctx, domain.NewSubmission{LinkID: "missing", Name: "X", UpiID: "x@upi", Amount: "1"}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("unknown link: expected ErrNotFound, got %v", err)
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"250", "250"},
		{" 10.505 ", "10.51"},
		{"0", "0"},
		{domain.MaxAmount.String(), domain.MaxAmount.String()},
	}
	for _, tt := range tests {
		got, err := ParseAmount(tt.in)
		if err != nil {
			t.Fatalf("ParseAmount(%q): %v", tt.in, err)
		}
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("ParseAmount(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}

	for _, in := range []string{"100000000000000000", "50000000000000000", domain.MaxAmount.Add(decimal.New(1, -2)).String()} {
		if _, err := ParseAmount(in); !domain.IsValidation(err) {
			t.Errorf("ParseAmount(%q): expected validation error, got %v", in, err)
		}
	}
}

func TestTotalOfLargeAmounts(t *testing.T) {
	repo := newTestRepo(t)
	links := NewLinkService(repo)
	subs := NewSubmissionService(repo, nil)
	clock := tick()
	links.now, subs.now = clock, clock
	ctx := context.Background()

	link, err := links.CreateLink(ctx, "Bulk", "admin-1")
	if err != nil {
		t.Fatal(err)
	}
	const n = 12
	for i := 0; i < n; i++ {
		_, err := subs.Create(ctx, domain.NewSubmission{
			LinkID:       link.ID,
			EmployeeCode: "EMP0001",
			Name:         "Payer",
			UpiID:        "payer@upi",
			Amount:       domain.MaxAmount.String(),
		})
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	want := domain.MaxAmount.Mul(decimal.NewFromInt(n))
	for page := 1; page <= 2; page++ {
		got, err := subs.List(ctx, link.ID, "EMP0001", page, 10)
		if err != nil {
			t.Fatalf("page %d: %v", page, err)
		}
		if !got.TotalAmount.Equal(want) {
			t.Errorf("page %d: total %s, want %s", page, got.TotalAmount, want)
		}
		for _, e := range got.Entries {
			if !e.Amount.Equal(domain.MaxAmount) {
				t.Errorf("stored amount %s, want %s", e.Amount, domain.MaxAmount)
			}
		}
	}

	summary, err := links.Summary(ctx, link.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !summary.GrandTotal.Equal(want) {
		t.Errorf("grand total %s, want %s", summary.GrandTotal, want)
	}
}

func TestAuthFlows(t *testing.T) {
	repo := newTestRepo(t)
	auth := NewAuthService(repo, "secret", []string{"Boss@Example.com"})
	ctx := context.Background()

	if _, _, err := auth.RegisterEmployee(ctx, "Ravi", "ravi@example.com", "secret1"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := auth.RegisterEmployee(ctx, "Ravi 2", "RAVI@example.com", "secret1"); !errors.Is(err, domain.ErrEmailTaken) {
		t.Errorf("duplicate email: got %v", err)
	}
	if _, _, err := auth.RegisterEmployee(ctx, "Short", "short@example.com", "abc"); !domain.IsValidation(err) {
		t.Errorf("short password: got %v", err)
	}

	second, _, err := auth.RegisterEmployee(ctx, "Meera", "meera@example.com", "secret2")
	if err != nil {
		t.Fatal(err)
	}
	if second.Code != "EMP0002" {
		t.Errorf("second code = %s", second.Code)
	}

	emp, token, err := auth.LoginEmployee(ctx, "ravi@example.com", "secret1")
	if err != nil {
		t.Fatal(err)
	}
	claims, err := auth.ParseToken(token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.Role != domain.RoleEmployee || claims.Subject != emp.Code {
		t.Errorf("claims = %+v", claims)
	}
	if _, _, err := auth.LoginEmployee(ctx, "ravi@example.com", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("bad password: got %v", err)
	}

	if err := auth.SeedAdmin(ctx, "Root", "root@example.com", "rootpass"); err != nil {
		t.Fatal(err)
	}
	if err := auth.SeedAdmin(ctx, "Root", "root@example.com", "rootpass"); err != nil {
		t.Errorf("seeding twice should be a no-op: %v", err)
	}
	admin, adminToken, err := auth.LoginAdmin(ctx, "root@example.com", "rootpass")
	if err != nil {
		t.Fatal(err)
	}
	adminClaims, _ := auth.ParseToken(adminToken)
	if adminClaims.Role != domain.RoleAdmin || adminClaims.Subject != admin.ID {
		t.Errorf("admin claims = %+v", adminClaims)
	}

	if _, _, err := auth.LoginAdminByEmail(ctx, "stranger@example.com"); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("unlisted email: got %v", err)
	}
	boss, _, err := auth.LoginAdminByEmail(ctx, "boss@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if boss.Name != "boss" {
		t.Errorf("boss name = %s", boss.Name)
	}

	if _, err := auth.ParseToken("garbage"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Errorf("garbage token: got %v", err)
	}
	other := NewAuthService(repo, "other-secret", nil)
	if _, err := other.ParseToken(token); err == nil {
		t.Error("token signed with another secret was accepted")
	}
}
