package dateparam

import (
	"net/http/httptest"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in       string
		want     time.Time
		dateOnly bool
		wantErr  bool
	}{
		{"2025-06-14", time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC), true, false},
		{" 2025-06-14 ", time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC), true, false},
		{"2025-06-14T18:30:00Z", time.Date(2025, 6, 14, 18, 30, 0, 0, time.UTC), false, false},
		{"2025-06-14T18:30:00+02:00", time.Date(2025, 6, 14, 16, 30, 0, 0, time.UTC), false, false},
		{"14/06/2025", time.Time{}, false, true},
		{"", time.Time{}, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, dateOnly, err := Parse(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !got.Equal(tt.want) || dateOnly != tt.dateOnly {
				t.Errorf("Parse(%q) = %v, %v; want %v, %v", tt.in, got, dateOnly, tt.want, tt.dateOnly)
			}
		})
	}
}

func TestFromRequest_DateOnlyEndCoversWholeDay(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/reports/quotes?start=2025-06-01&end=2025-06-30", nil)
	rg, err := FromRequest(req)
	if err != nil {
		t.Fatal(err)
	}
	if !rg.From.Equal(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("From = %v", rg.From)
	}
	if !rg.To.Equal(time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("To = %v, want start of next day", rg.To)
	}
	if rg.Label() != "2025-06-01 to 2025-06-30" {
		t.Errorf("Label() = %q", rg.Label())
	}
}

func TestFromRequest_TimestampEndInclusive(t *testing.T) {
	req := httptest.NewRequest("GET", "/?end=2025-06-30T12:00:00Z", nil)
	rg, err := FromRequest(req)
	if err != nil {
		t.Fatal(err)
	}
	end := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)
	if !end.Before(rg.To) {
		t.Errorf("To = %v should be after %v", rg.To, end)
	}
	if !rg.From.IsZero() {
		t.Errorf("From should be open, got %v", rg.From)
	}
}

func TestFromRequest_Errors(t *testing.T) {
	for _, q := range []string{"?start=bad", "?end=2025-13-01", "?start=2025-06-02&end=2025-06-01"} {
		if _, err := FromRequest(httptest.NewRequest("GET", "/"+q, nil)); err == nil {
			t.Errorf("FromRequest(%s) should fail", q)
		}
	}
}

func TestFromRequest_SameDayIsValid(t *testing.T) {
	rg, err := FromRequest(httptest.NewRequest("GET", "/?start=2025-06-01&end=2025-06-01", nil))
	if err != nil {
		t.Fatalf("same-day range rejected: %v", err)
	}
	if rg.To.Sub(rg.From) != 24*time.Hour {
		t.Errorf("span = %v, want 24h", rg.To.Sub(rg.From))
	}
}

func TestRange_Filter(t *testing.T) {
	if f := (Range{}).Filter("created_at"); len(f) != 0 {
		t.Errorf("open range filter = %v, want empty", f)
	}

	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	f := Range{From: from}.Filter("created_at")
	cond, ok := f["created_at"].(bson.M)
	if !ok {
		t.Fatalf("filter = %v", f)
	}
	if cond["$gte"] != from {
		t.Errorf("$gte = %v", cond["$gte"])
	}
	if _, has := cond["$lt"]; has {
		t.Error("unexpected $lt for open end")
	}
}
