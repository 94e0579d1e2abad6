package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestNewPaging(t *testing.T) {
	tests := []struct {
		name      string
		page      int
		limit     int
		total     int64
		wantPage  int
		wantPages int
		wantOff   int
	}{
		{name: "empty scope", page: 1, limit: 10, total: 0, wantPage: 1, wantPages: 1, wantOff: 0},
		{name: "empty scope page 5", page: 5, limit: 10, total: 0, wantPage: 1, wantPages: 1, wantOff: 0},
		{name: "exact fit", page: 1, limit: 10, total: 10, wantPage: 1, wantPages: 1, wantOff: 0},
		{name: "twelve rows page 2", page: 2, limit: 10, total: 12, wantPage: 2, wantPages: 2, wantOff: 10},
		{name: "past the end", page: 9, limit: 10, total: 12, wantPage: 2, wantPages: 2, wantOff: 10},
		{name: "zero page", page: 0, limit: 10, total: 12, wantPage: 1, wantPages: 2, wantOff: 0},
		{name: "default limit", page: 1, limit: 0, total: 25, wantPage: 1, wantPages: 3, wantOff: 0},
		{name: "capped limit", page: 1, limit: 1000, total: 250, wantPage: 1, wantPages: 3, wantOff: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPaging(tt.page, tt.limit, tt.total)
			if p.Page != tt.wantPage || p.Pages != tt.wantPages || p.Offset() != tt.wantOff {
				t.Errorf("got page=%d pages=%d offset=%d, want page=%d pages=%d offset=%d",
					p.Page, p.Pages, p.Offset(), tt.wantPage, tt.wantPages, tt.wantOff)
			}
			if p.Page < 1 || p.Page > p.Pages {
				t.Errorf("page %d outside [1, %d]", p.Page, p.Pages)
			}
		})
	}
}

func TestPaiseRoundTrip(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"250", 25000},
		{"0.1", 10},
		{"19.999", 2000},
		{"0", 0},
	}
	for _, tt := range tests {
		d := decimal.RequireFromString(tt.in)
		if got := ToPaise(d); got != tt.want {
			t.Errorf("ToPaise(%s) = %d, want %d", tt.in, got, tt.want)
		}
	}
	if got := FromPaise(25000).StringFixed(2); got != "250.00" {
		t.Errorf("FromPaise(25000) = %s, want 250.00", got)
	}
}
