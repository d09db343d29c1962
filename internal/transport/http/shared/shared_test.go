package shared

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	day, err := ParseDate("2026-01-05")
	if err != nil {
		t.Fatalf("day parse: %v", err)
	}
	if day != time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("day = %v", day)
	}

	ts, err := ParseDate("2026-03-15T12:30:00Z")
	if err != nil {
		t.Fatalf("timestamp parse: %v", err)
	}
	if ts.Hour() != 12 || ts.Minute() != 30 {
		t.Fatalf("timestamp = %v", ts)
	}

	if zero, err := ParseDate(""); err != nil || !zero.IsZero() {
		t.Fatalf("empty value: %v / %v", zero, err)
	}
	if _, err := ParseDate("05/01/2026"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestParsePagination(t *testing.T) {
	cases := []struct {
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"", 50, 0},
		{"limit=10&offset=30", 10, 30},
		{"limit=500", 200, 0},
		{"limit=-3&offset=-1", 50, 0},
		{"page=3", 50, 100},
		{"page=2&limit=10", 10, 10},
		{"page=2&offset=5", 50, 5}, // explicit offset wins
	}
	for _, tc := range cases {
		r := httptest.NewRequest("GET", "/?"+tc.query, nil)
		got := ParsePagination(r, 50, 200)
		if got.Limit != tc.wantLimit || got.Offset != tc.wantOffset {
			t.Fatalf("query %q: got %+v, want limit %d offset %d", tc.query, got, tc.wantLimit, tc.wantOffset)
		}
	}
}
