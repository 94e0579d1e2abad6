package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestFormSendsNothingUnlessOffered(t *testing.T) {
	ctx := context.Background()
	var posts int32
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&posts, 1)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"s1"}`))
	}))
	defer api.Close()
	c := New(api.URL, api.Client())

	latest := false
	entries := NewPaginator(func(ctx context.Context, linkID string, page, size int) (*EntryPage, error) {
		return &EntryPage{Page: 1, Pages: 1, IsLatest: latest}, nil
	}, EmployeePageSize)
	_ = entries.Open(ctx, "old-link")

	form := NewEntryForm(c, "token", "EMP0001", entries, false)
	form.Open()
	form.Set("Asha", "asha@upi", "250")
	if form.IsOpen() {
		t.Error("form opened on a link that is not latest")
	}
	if err := form.Submit(ctx); !errors.Is(err, ErrFormClosed) {
		t.Errorf("submit on a closed link: %v", err)
	}

	latest = true
	_ = entries.Reload(ctx)
	form.Set("Asha", "asha@upi", "250")
	if err := form.Submit(ctx); !errors.Is(err, ErrFormClosed) {
		t.Errorf("submit without opening: %v", err)
	}
	if n := atomic.LoadInt32(&posts); n != 0 {
		t.Fatalf("%d requests sent for a closed form", n)
	}

	form.Open()
	if err := form.Submit(ctx); err != nil {
		t.Fatal(err)
	}
	if n := atomic.LoadInt32(&posts); n != 1 {
		t.Errorf("open form sent %d requests", n)
	}
}
