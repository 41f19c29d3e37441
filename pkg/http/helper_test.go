package http

import (
	"net/http/httptest"
	"testing"
)

func TestExtractPageLimit(t *testing.T) {
	cases := []struct {
		name      string
		url       string
		wantPage  int
		wantLimit int
		wantErr   bool
	}{
		{"defaults", "/api/hotels", 1, 10, false},
		{"explicit values", "/api/hotels?page=3&limit=25", 3, 25, false},
		{"limit capped", "/api/hotels?limit=500", 1, 100, false},
		{"zero page rejected", "/api/hotels?page=0", 0, 0, true},
		{"negative limit rejected", "/api/hotels?limit=-5", 0, 0, true},
		{"garbage page rejected", "/api/hotels?page=abc", 0, 0, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tc.url, nil)
			page, limit, err := ExtractPageLimit(r)

			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ExtractPageLimit: %v", err)
			}
			if page != tc.wantPage || limit != tc.wantLimit {
				t.Errorf("got page=%d limit=%d, want page=%d limit=%d", page, limit, tc.wantPage, tc.wantLimit)
			}
		})
	}
}

func TestOffset(t *testing.T) {
	cases := []struct {
		page, limit int
		want        int64
	}{
		{1, 10, 0},
		{2, 10, 10},
		{5, 25, 100},
	}

	for _, tc := range cases {
		if got := Offset(tc.page, tc.limit); got != tc.want {
			t.Errorf("Offset(%d, %d) = %d, want %d", tc.page, tc.limit, got, tc.want)
		}
	}
}

func TestNewPagination(t *testing.T) {
	cases := []struct {
		name      string
		total     int64
		limit     int
		wantPages int64
	}{
		{"exact fit", 100, 10, 10},
		{"partial last page", 101, 10, 11},
		{"empty", 0, 10, 0},
		{"single short page", 3, 10, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewPagination(1, tc.limit, tc.total)
			if p.Pages != tc.wantPages {
				t.Errorf("pages = %d, want %d", p.Pages, tc.wantPages)
			}
		})
	}
}
