package client

import (
	"context"
	"errors"
	"testing"

	"github.com/wadjakorntonsri/paylinks/pkg/core/domain"
)

func TestGate(t *testing.T) {
	s := NewSession(NewMemoryStore())

	res := Gate(s, domain.RoleAdmin)
	if res.Allowed || res.Redirect != "/admin/login" {
		t.Errorf("no identity: %+v", res)
	}
	if res := Gate(s, domain.RoleEmployee); res.Allowed || res.Redirect != "/employee/login" {
		t.Errorf("no identity: %+v", res)
	}

	_ = s.SignIn(domain.RoleEmployee, Identity{ID: "EMP0001", Name: "Asha", Token: "t"})
	if res := Gate(s, domain.RoleEmployee); !res.Allowed || res.Identity.ID != "EMP0001" {
		t.Errorf("employee gate: %+v", res)
	}
	// Roles are stored independently
	if res := Gate(s, domain.RoleAdmin); res.Allowed {
		t.Error("employee identity opened the admin gate")
	}
}

func TestLogoutClearsEverything(t *testing.T) {
	s := NewSession(NewMemoryStore())
	_ = s.SignIn(domain.RoleAdmin, Identity{ID: "a", Token: "t"})
	_ = s.SignIn(domain.RoleEmployee, Identity{ID: "e", Token: "t"})

	cache := NewPageCache[*EntryPage]()
	cache.Put("link", 1, &EntryPage{Page: 1, Pages: 1})
	s.Track(cache)

	if err := s.Logout(); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Identity(domain.RoleAdmin); ok {
		t.Error("admin survived logout")
	}
	if _, ok := s.Identity(domain.RoleEmployee); ok {
		t.Error("employee survived logout")
	}
	if _, ok := cache.Get("link", 1); ok {
		t.Error("cache survived logout")
	}
}

func TestFilterList(t *testing.T) {
	employees := []domain.Employee{
		{Name: "Asha Rao", Email: "asha@example.com"},
		{Name: "Ravi", Email: "ravi@corp.example"},
	}
	f := NewFilterList(func(e domain.Employee) []string { return []string{e.Name, e.Email} }, EmployeesLoadFailed)

	calls := 0
	fetch := func(ctx context.Context) ([]domain.Employee, error) {
		calls++
		return employees, nil
	}
	_ = f.Load(context.Background(), fetch)
	_ = f.Load(context.Background(), fetch)
	if calls != 1 {
		t.Errorf("loaded %d times", calls)
	}

	tests := []struct {
		query string
		want  int
	}{
		{"", 2},
		{"ASHA", 1},
		{"corp", 1},
		{"a", 2},
		{"zzz", 0},
	}
	for _, tt := range tests {
		if got := f.Filter(tt.query); len(got) != tt.want {
			t.Errorf("Filter(%q) = %d items, want %d", tt.query, len(got), tt.want)
		}
	}
}

func TestFilterListFailures(t *testing.T) {
	f := NewFilterList(func(l domain.Link) []string { return []string{l.Title} }, LinkHistoryLoadFailed)

	err := f.Load(context.Background(), func(ctx context.Context) ([]domain.Link, error) {
		return nil, &APIError{Status: 401}
	})
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}

	err = f.Load(context.Background(), func(ctx context.Context) ([]domain.Link, error) {
		return nil, &APIError{Status: 500, Message: "db down"}
	})
	if err != nil {
		t.Errorf("transient failure should not be returned: %v", err)
	}
	if f.Message() != LinkHistoryLoadFailed || len(f.Filter("")) != 0 {
		t.Errorf("message=%q items=%d", f.Message(), len(f.Filter("")))
	}
}

func TestMessage(t *testing.T) {
	if got := Message(&APIError{Status: 409, Message: "link is no longer accepting submissions"}, SubmitFailed); got != "link is no longer accepting submissions" {
		t.Errorf("conflict message = %q", got)
	}
	if got := Message(&APIError{Status: 500, Message: "internal server error"}, SubmitFailed); got != SubmitFailed {
		t.Errorf("server error message = %q", got)
	}
	if got := Message(errors.New("dial tcp: refused"), SubmitFailed); got != SubmitFailed {
		t.Errorf("network error message = %q", got)
	}
}
